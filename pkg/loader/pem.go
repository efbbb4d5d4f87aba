// Package loader reads signing-key material and trust-chain certificates
// off disk, in either plain PEM form (PKCS#1/PKCS#5/PKCS#8, optionally
// PBES2-encrypted) or PKCS#12 form, and assembles them into a
// credential.Bundle. It never performs network I/O.
package loader

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/youmark/pkcs8"

	"github.com/fed4fire/speaksfor/pkg/credential"
)

// FromPEM parses PEM-encoded data containing exactly one RSA private
// key and one or more certificates, and returns the assembled Bundle.
// If the key is encrypted, passphrase decrypts it; passphrase is
// ignored for unencrypted keys. The first certificate that matches the
// key's public modulus becomes Chain[0]; the rest follow in the order
// they appeared in the input.
func FromPEM(data []byte, passphrase []byte) (*credential.Bundle, error) {
	var (
		key   *rsa.PrivateKey
		certs []*x509.Certificate
	)

	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}

		switch block.Type {
		case "RSA PRIVATE KEY", "PRIVATE KEY", "ENCRYPTED PRIVATE KEY":
			if key != nil {
				return nil, ErrKeyAmbiguous
			}
			parsed, err := parsePrivateKeyBlock(block, passphrase)
			if err != nil {
				return nil, err
			}
			key = parsed
		case "CERTIFICATE":
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("loader: parse certificate: %w", err)
			}
			certs = append(certs, cert)
		}
	}

	if key == nil {
		return nil, ErrNoPrivateKey
	}
	if len(certs) == 0 {
		return nil, ErrNoCertificate
	}

	return assembleBundle(key, certs)
}

// parsePrivateKeyBlock decodes a single private-key PEM block,
// decrypting it first if its type indicates PKCS#8 encryption.
func parsePrivateKeyBlock(block *pem.Block, passphrase []byte) (*rsa.PrivateKey, error) {
	switch block.Type {
	case "RSA PRIVATE KEY":
		der := block.Bytes
		//nolint:staticcheck // x509.IsEncryptedPEMBlock/DecryptPEMBlock are deprecated but
		// still the only stdlib path for legacy PKCS#1 "Proc-Type: 4,ENCRYPTED" armor.
		if x509.IsEncryptedPEMBlock(block) {
			decrypted, err := x509.DecryptPEMBlock(block, passphrase) //nolint:staticcheck
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrKeyDecryption, err)
			}
			der = decrypted
		}
		key, err := x509.ParsePKCS1PrivateKey(der)
		if err != nil {
			return nil, fmt.Errorf("loader: parse PKCS#1 private key: %w", err)
		}
		return key, nil

	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("loader: parse PKCS#8 private key: %w", err)
		}
		return asRSAKey(parsed)

	case "ENCRYPTED PRIVATE KEY":
		parsed, err := pkcs8.ParsePKCS8PrivateKey(block.Bytes, passphrase)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyDecryption, err)
		}
		return asRSAKey(parsed)

	default:
		return nil, ErrUnsupportedKeyType
	}
}

func asRSAKey(key any) (*rsa.PrivateKey, error) {
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, ErrNotRSA
	}
	return rsaKey, nil
}

// assembleBundle reorders certs so the one whose public key matches
// key comes first, then validates the resulting Bundle invariant.
func assembleBundle(key *rsa.PrivateKey, certs []*x509.Certificate) (*credential.Bundle, error) {
	leafIdx := -1
	for i, c := range certs {
		pub, ok := c.PublicKey.(*rsa.PublicKey)
		if !ok {
			continue
		}
		if pub.N.Cmp(key.N) == 0 && pub.E == key.E {
			leafIdx = i
			break
		}
	}
	if leafIdx == -1 {
		return nil, credential.ErrKeyMismatch
	}

	chain := make([]*x509.Certificate, 0, len(certs))
	chain = append(chain, certs[leafIdx])
	for i, c := range certs {
		if i != leafIdx {
			chain = append(chain, c)
		}
	}

	bundle := &credential.Bundle{PrivateKey: key, Chain: chain}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return bundle, nil
}

// LoadCertificate reads a single PEM-encoded certificate from disk,
// the form used for the --tool-cert flag's public-only certificates
// and for ad hoc certificate inspection.
func LoadCertificate(data []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrNoPEMBlock
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("loader: parse certificate: %w", err)
	}
	return cert, nil
}
