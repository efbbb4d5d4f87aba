// Package builder assembles and signs speaks-for credentials: an
// enveloped XML-DSig signature over a literal-rendered <credential>
// element binding a head (user) key to a tail (tool) key via a single
// ABAC RT0 "speaks_for" rule. Signing itself is delegated to
// signedxml, canonicalizing through this toolkit's pkg/canon
// Exclusive C14N registered under its algorithm URI.
package builder

import (
	"crypto/x509"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leifj/signedxml"

	_ "github.com/fed4fire/speaksfor/pkg/canon" // registers Exclusive C14N into signedxml's algorithm registry
	"github.com/fed4fire/speaksfor/pkg/credential"
	"github.com/fed4fire/speaksfor/pkg/fingerprint"
)

// referenceIDAttribute is the XML attribute signedxml matches a
// Reference's URI fragment against to find the element it covers.
// The credential template carries the same value on both "xml:id"
// and plain "id" so this can point at either.
const referenceIDAttribute = "id"

// Request describes one speaks-for credential to build: the owner's
// signing bundle (its leaf certificate's keyid becomes the ABAC head),
// the tool certificate being delegated to (its keyid becomes the ABAC
// tail), and how long the resulting credential is valid.
type Request struct {
	Owner        *credential.Bundle
	ToolCert     *x509.Certificate
	ValidityDays int
	Role         string // optional, e.g. "authority"; "" for an unqualified speaks_for
}

// Sign renders, signs, and returns the complete <signed-credential>
// document as bytes. now is the credential's issuance timestamp (UTC);
// passing it in rather than calling time.Now() keeps the function
// deterministic and testable.
func Sign(req Request, now time.Time) ([]byte, error) {
	if req.Owner == nil {
		return nil, fmt.Errorf("builder: owner bundle is required")
	}
	if req.ToolCert == nil {
		return nil, fmt.Errorf("builder: tool certificate is required")
	}
	if err := req.Owner.Validate(); err != nil {
		return nil, fmt.Errorf("builder: owner bundle invalid: %w", err)
	}
	if req.ValidityDays <= 0 {
		return nil, fmt.Errorf("builder: validity days must be positive")
	}

	headID, err := fingerprint.KeyIDOfCert(req.Owner.Leaf())
	if err != nil {
		return nil, fmt.Errorf("builder: head keyid: %w", err)
	}
	tailID, err := fingerprint.KeyIDOfCert(req.ToolCert)
	if err != nil {
		return nil, fmt.Errorf("builder: tail keyid: %w", err)
	}

	refID := "ref0"
	expires := now.Add(time.Duration(req.ValidityDays) * 24 * time.Hour)

	f := fields{
		ID:        refID,
		Type:      "abac",
		Serial:    uuid.NewString(),
		OwnerGID:  req.Owner.Leaf().Subject.CommonName,
		TargetGID: req.ToolCert.Subject.CommonName,
		UUID:      uuid.NewString(),
		Expires:   expires.UTC().Format(time.RFC3339),
		HeadKeyID: headID.String(),
		TailKeyID: tailID.String(),
		Role:      req.Role,
	}

	credentialXML := renderCredential(f)

	certDERs := make([][]byte, 0, len(req.Owner.Chain))
	for _, c := range req.Owner.Chain {
		certDERs = append(certDERs, c.Raw)
	}

	unsignedBlock := renderUnsignedSignaturesBlock(refID, &req.Owner.PrivateKey.PublicKey, renderX509Data(certDERs))
	unsignedXML := renderSignedCredential(credentialXML, unsignedBlock)

	signer, err := signedxml.NewSigner(unsignedXML)
	if err != nil {
		return nil, fmt.Errorf("builder: parse document for signing: %w", err)
	}
	signer.SetReferenceIDAttribute(referenceIDAttribute)

	signedXML, err := signer.Sign(req.Owner.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("builder: sign credential: %w", err)
	}

	return []byte(signedXML), nil
}
