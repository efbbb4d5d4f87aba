// Package verifier runs a signed speaks-for credential through a
// strictly sequential pipeline — schema, signature, trust chain,
// expiration, then keyid binding — stopping at the first stage that
// fails. It performs no network I/O and consults no revocation list.
package verifier

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/leifj/signedxml"

	_ "github.com/fed4fire/speaksfor/pkg/canon" // registers Exclusive C14N into signedxml's algorithm registry
	"github.com/fed4fire/speaksfor/pkg/credential"
	"github.com/fed4fire/speaksfor/pkg/fingerprint"
	"github.com/fed4fire/speaksfor/pkg/trust"
)

// referenceIDAttribute matches pkg/builder's referenceIDAttribute: the
// Reference URI fragment is matched against this attribute name.
const referenceIDAttribute = "id"

// ExpectedBinding optionally narrows who the head and/or tail of the
// ABAC rule must be, beyond the binding Verify always enforces: the
// head keyid must equal the signing certificate's keyid. A zero
// KeyID here means "no additional constraint on this side".
type ExpectedBinding struct {
	HeadKeyID credential.KeyID
	TailKeyID credential.KeyID
}

// Options configures one Verify call.
type Options struct {
	Trust    *trust.Store
	Expected ExpectedBinding
	Now      time.Time // verification time; zero means time.Now()
}

// Verify runs raw through the full pipeline and returns the parsed
// Document on success. The returned error, when non-nil, always wraps
// exactly one of this package's sentinel errors.
func Verify(raw []byte, opts Options) (*credential.Document, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	// Stage 1: schema.
	parsed, err := checkSchema(raw)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputParse, err)
	}
	credEl := doc.Root().FindElement("./credential")
	if credEl == nil {
		return nil, fmt.Errorf("%w: no <credential> element", ErrSchemaInvalid)
	}
	sigEl := doc.Root().FindElement("./signatures/Signature")
	if sigEl == nil {
		return nil, fmt.Errorf("%w: no Signature element", ErrSchemaInvalid)
	}

	// Stage 2: signature.
	chain, err := verifySignature(doc, sigEl)
	if err != nil {
		return nil, err
	}

	// Stage 3: trust chain.
	if opts.Trust != nil {
		switch outcome := opts.Trust.Verify(chain, now); outcome {
		case trust.Trusted:
			// continue
		case trust.Expired:
			return nil, ErrTrustChainExpired
		default:
			return nil, ErrTrustChainNotTrusted
		}
	}

	// Stage 4: expiration.
	expires, err := time.Parse(time.RFC3339, parsed.Credential.Expires)
	if err != nil {
		return nil, fmt.Errorf("%w: unparsable expires timestamp: %v", ErrSchemaInvalid, err)
	}
	if now.After(expires) {
		return nil, ErrExpired
	}

	headID, err := credential.KeyIDFromHex(parsed.Credential.ABAC.RT0.Head.Principal.KeyID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed head keyid: %v", ErrSchemaInvalid, err)
	}
	tailID, err := credential.KeyIDFromHex(parsed.Credential.ABAC.RT0.Tail.Principal.KeyID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed tail keyid: %v", ErrSchemaInvalid, err)
	}

	// Stage 5: the ABAC head must always be the signing certificate —
	// this is the cryptographic binding the whole credential rests on,
	// not an opt-in check.
	signerID, err := fingerprint.KeyIDOfCert(chain[0])
	if err != nil {
		return nil, fmt.Errorf("%w: signing certificate keyid: %v", ErrSignatureInvalid, err)
	}
	if !signerID.Equal(headID) {
		return nil, fmt.Errorf("%w: head keyid %s does not match signing certificate %s",
			ErrKeyBindingMismatch, headID, signerID)
	}
	if !opts.Expected.HeadKeyID.IsZero() && !opts.Expected.HeadKeyID.Equal(headID) {
		return nil, fmt.Errorf("%w: head keyid %s does not match expected %s",
			ErrKeyBindingMismatch, headID, opts.Expected.HeadKeyID)
	}

	// Stage 6: tail keyid binding, only when the caller asked for it.
	if !opts.Expected.TailKeyID.IsZero() && !opts.Expected.TailKeyID.Equal(tailID) {
		return nil, fmt.Errorf("%w: tail keyid %s does not match expected %s",
			ErrKeyBindingMismatch, tailID, opts.Expected.TailKeyID)
	}

	return &credential.Document{
		Expires:          expires,
		HeadKeyID:        headID,
		TailKeyID:        tailID,
		SignatureElement: sigEl,
		SigningChain:     chain,
	}, nil
}

// verifySignature hands the document to signedxml, which recomputes
// the Reference digest and SignedInfo signature exactly as
// builder.Sign produced them — canonicalizing through the same
// pkg/canon Exclusive C14N registered under its algorithm URI — and
// checks the result against the leaf certificate carried in KeyInfo.
func verifySignature(doc *etree.Document, sigEl *etree.Element) ([]*x509.Certificate, error) {
	chain, err := extractChain(sigEl)
	if err != nil {
		return nil, err
	}
	leaf := chain[0]
	if _, ok := leaf.PublicKey.(*rsa.PublicKey); !ok {
		return nil, fmt.Errorf("%w: leaf certificate is not RSA", ErrSignatureInvalid)
	}

	docXML, err := doc.WriteToString()
	if err != nil {
		return nil, fmt.Errorf("%w: serialize document: %v", ErrSignatureInvalid, err)
	}

	validator, err := signedxml.NewValidator(docXML)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	validator.Certificates = append(validator.Certificates, *leaf)
	validator.SetReferenceIDAttribute(referenceIDAttribute)

	if _, err := validator.ValidateReferences(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	return chain, nil
}

// extractChain reads every X509Certificate element under KeyInfo,
// leaf first as builder.Sign writes them, and parses them as DER.
func extractChain(sigEl *etree.Element) ([]*x509.Certificate, error) {
	certEls := sigEl.FindElements("./KeyInfo/X509Data/X509Certificate")
	if len(certEls) == 0 {
		return nil, fmt.Errorf("%w: no X509Certificate elements in KeyInfo", ErrTrustChainMalformed)
	}
	chain := make([]*x509.Certificate, 0, len(certEls))
	for _, el := range certEls {
		der, err := base64.StdEncoding.DecodeString(stripWhitespace(el.Text()))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTrustChainMalformed, err)
		}
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTrustChainMalformed, err)
		}
		chain = append(chain, cert)
	}
	return chain, nil
}

func stripWhitespace(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\n', '\r', '\t', ' ':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ExpectedKeyIDFor turns a certificate into the KeyID form
// ExpectedBinding compares against, so callers (e.g. the CLI, given a
// --tail-cert flag) don't need to import pkg/fingerprint separately.
func ExpectedKeyIDFor(cert *x509.Certificate) (credential.KeyID, error) {
	return fingerprint.KeyIDOfCert(cert)
}
