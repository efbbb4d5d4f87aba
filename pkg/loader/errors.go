package loader

import "errors"

// Sentinel errors identifying why a key/certificate bundle could not
// be loaded. Callers distinguish these with errors.Is; internal/cliutil
// maps each to a stable process exit code.
var (
	// ErrNoPEMBlock means the input contained no PEM-armored data at all.
	ErrNoPEMBlock = errors.New("loader: no PEM block found")

	// ErrUnsupportedKeyType means a PEM block's type header was not one
	// of the private key forms this package understands.
	ErrUnsupportedKeyType = errors.New("loader: unsupported private key PEM type")

	// ErrKeyDecryption means an encrypted private key's passphrase was
	// wrong, or decryption otherwise failed.
	ErrKeyDecryption = errors.New("loader: private key decryption failed. Invalid password?")

	// ErrNoPrivateKey means the input carried no private key at all.
	ErrNoPrivateKey = errors.New("loader: no private key found in input")

	// ErrNoCertificate means the input carried no certificate at all.
	ErrNoCertificate = errors.New("loader: no certificate found in input")

	// ErrKeyAmbiguous means the input carried more than one private key
	// (PEM) or more than one localKeyId-distinct key (PKCS#12) and the
	// caller did not disambiguate.
	ErrKeyAmbiguous = errors.New("loader: input carries more than one private key")

	// ErrNotRSA means a loaded private key or certificate used an
	// algorithm other than RSA; this toolkit's signature profile is
	// RSA-SHA1 only.
	ErrNotRSA = errors.New("loader: key is not RSA")
)
