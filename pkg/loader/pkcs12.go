package loader

import (
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"strings"

	"software.sslmate.com/src/go-pkcs12"

	"github.com/fed4fire/speaksfor/pkg/credential"
)

// FromPKCS12 parses a .p12/.pfx file and returns the assembled Bundle.
// PKCS#12 archives may legally carry more than one private key under
// distinct localKeyId attributes; since this toolkit has no way to ask
// which one the caller means, more than one key is treated as
// ErrKeyAmbiguous rather than silently picking one.
func FromPKCS12(data []byte, password string) (*credential.Bundle, error) {
	key, leaf, cas, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		if isAmbiguousKeyError(err) {
			return nil, ErrKeyAmbiguous
		}
		return nil, fmt.Errorf("%w: %v", ErrKeyDecryption, err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, ErrNotRSA
	}
	if leaf == nil {
		return nil, ErrNoCertificate
	}

	chain := append([]*x509.Certificate{leaf}, cas...)
	bundle := &credential.Bundle{PrivateKey: rsaKey, Chain: chain}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return bundle, nil
}

// isAmbiguousKeyError recognizes go-pkcs12's own complaint about an
// archive containing more than one key or certificate bag, which it
// reports as a plain error rather than a typed one.
func isAmbiguousKeyError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "expected exactly one") || strings.Contains(msg, "multiple")
}
