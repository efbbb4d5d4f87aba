// Package credential defines the data model shared by the speaks-for
// signer and verifier: certificate bundles, key identifiers, and the
// parsed view of a signed ABAC credential document.
package credential

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// ErrKeyMismatch is returned when a loaded bundle's certificate does not
// carry the public key matching the loaded private key.
var ErrKeyMismatch = errors.New("credential: certificate public key does not match private key")

// Bundle is an owned signing key paired with its certificate chain.
// Chain[0] is always the end-entity certificate matching PrivateKey.
type Bundle struct {
	PrivateKey *rsa.PrivateKey
	Chain      []*x509.Certificate
}

// Leaf returns the end-entity certificate, or nil if the bundle is empty.
func (b *Bundle) Leaf() *x509.Certificate {
	if len(b.Chain) == 0 {
		return nil
	}
	return b.Chain[0]
}

// Validate checks the Bundle invariant: the leaf certificate's public key
// must equal the private key's public key.
func (b *Bundle) Validate() error {
	leaf := b.Leaf()
	if leaf == nil || b.PrivateKey == nil {
		return errors.New("credential: bundle missing private key or certificate chain")
	}
	pub, ok := leaf.PublicKey.(*rsa.PublicKey)
	if !ok {
		return errors.New("credential: leaf certificate does not hold an RSA public key")
	}
	if pub.N.Cmp(b.PrivateKey.N) != 0 || pub.E != b.PrivateKey.E {
		return ErrKeyMismatch
	}
	return nil
}

// KeyID is the lowercase-hex SHA-1 digest of a certificate's public key,
// DER-encoded as SubjectPublicKeyInfo. It is the ABAC principal identifier.
type KeyID [20]byte

// String renders the KeyID as lowercase hex.
func (k KeyID) String() string {
	return hex.EncodeToString(k[:])
}

// Equal reports whether two KeyIDs are identical.
func (k KeyID) Equal(other KeyID) bool {
	return k == other
}

// IsZero reports whether the KeyID was never populated.
func (k KeyID) IsZero() bool {
	return k == KeyID{}
}

// KeyIDFromHex parses a lowercase or uppercase hex string into a KeyID.
func KeyIDFromHex(s string) (KeyID, error) {
	var id KeyID
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return id, err
	}
	if len(b) != len(id) {
		return id, errors.New("credential: keyid must be 20 bytes (40 hex chars)")
	}
	copy(id[:], b)
	return id, nil
}

// AltName is one SubjectAltName entry surfaced from a parsed certificate.
type AltName struct {
	Type  string // "URI", "DNS", "email", ...
	Value string
}

// PublicIDPrefix is the URI scheme marking a tool's human-readable identity.
const PublicIDPrefix = "urn:publicid:"

// PublicID returns the first URI altName beginning with PublicIDPrefix,
// or "" if none is present. Its absence is informational, not fatal.
func PublicID(names []AltName) string {
	for _, n := range names {
		if n.Type == "URI" && strings.HasPrefix(n.Value, PublicIDPrefix) {
			return n.Value
		}
	}
	return ""
}

// AltNamesOf extracts SubjectAltName entries from a parsed certificate.
func AltNamesOf(cert *x509.Certificate) []AltName {
	var names []AltName
	for _, u := range cert.URIs {
		names = append(names, AltName{Type: "URI", Value: u.String()})
	}
	for _, d := range cert.DNSNames {
		names = append(names, AltName{Type: "DNS", Value: d})
	}
	for _, e := range cert.EmailAddresses {
		names = append(names, AltName{Type: "email", Value: e})
	}
	return names
}

// Document is the parsed view of a signed speaks-for credential, as
// produced by the verifier's schema and signature stages.
type Document struct {
	Expires          time.Time
	HeadKeyID        KeyID
	TailKeyID        KeyID
	SignatureElement *etree.Element
	SigningChain     []*x509.Certificate
}
