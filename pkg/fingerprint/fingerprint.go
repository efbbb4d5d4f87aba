// Package fingerprint computes the SHA-1 "keyid" that identifies an RSA
// public key as an ABAC principal, and renders RSA key material and
// certificates in the base64 line-wrapped form XML-DSig expects.
package fingerprint

import (
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // required by the deployed Fed4FIRE keyid/RSA-SHA1 profile, see spec §4.B/§9
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"

	"github.com/fed4fire/speaksfor/pkg/credential"
)

// lineWidth is the column at which base64 output wraps, per XML-DSig
// convention and spec §4.B ("base64-wrapped at column 64").
const lineWidth = 64

// KeyIDOf computes the lowercase-hex SHA-1 digest of the DER-encoded
// SubjectPublicKeyInfo of pub. This matches
// `openssl x509 -pubkey | openssl rsa -pubin -outform DER | sha1`.
func KeyIDOf(pub *rsa.PublicKey) (credential.KeyID, error) {
	var id credential.KeyID
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return id, fmt.Errorf("fingerprint: marshal public key: %w", err)
	}
	sum := sha1.Sum(der)
	id = credential.KeyID(sum)
	return id, nil
}

// KeyIDOfCert computes the KeyID of a certificate's RSA public key.
func KeyIDOfCert(cert *x509.Certificate) (credential.KeyID, error) {
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return credential.KeyID{}, fmt.Errorf("fingerprint: certificate does not carry an RSA public key")
	}
	return KeyIDOf(pub)
}

// EncodePositiveInteger renders i as a big-endian two's-complement byte
// sequence with a leading 0x00 inserted whenever the high bit of the
// first byte would otherwise be set, so the value reads unambiguously
// as non-negative (the convention XML-DSig's RSAKeyValue requires for
// Modulus/Exponent).
func EncodePositiveInteger(i *big.Int) []byte {
	b := i.Bytes()
	if len(b) == 0 {
		return []byte{0x00}
	}
	if b[0]&0x80 != 0 {
		padded := make([]byte, len(b)+1)
		copy(padded[1:], b)
		return padded
	}
	return b
}

// Base64Wrapped base64-encodes data and wraps it at lineWidth columns
// using "\n" line separators only, never "\r\n".
func Base64Wrapped(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var b strings.Builder
	for i := 0; i < len(encoded); i += lineWidth {
		end := i + lineWidth
		if end > len(encoded) {
			end = len(encoded)
		}
		b.WriteString(encoded[i:end])
		if end < len(encoded) {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// StripPEMArmor removes "-----BEGIN ...-----"/"-----END ...-----" armor
// lines from a PEM block, concatenates the remaining base64 body lines,
// normalizes line endings to LF, and trims surrounding whitespace —
// the exact transform needed to embed a certificate's DER-base64 body
// as an X509Certificate element's text content.
func StripPEMArmor(pemBlock []byte) []byte {
	normalized := strings.ReplaceAll(string(pemBlock), "\r\n", "\n")
	var lines []string
	for _, line := range strings.Split(normalized, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "-----") {
			continue
		}
		lines = append(lines, line)
	}
	return []byte(strings.TrimSpace(strings.Join(lines, "\n")))
}
