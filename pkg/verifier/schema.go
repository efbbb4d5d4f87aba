package verifier

import (
	_ "embed"
	"encoding/xml"
	"fmt"

	"github.com/fed4fire/speaksfor/pkg/credential"
)

// credentialXSD is carried for documentation and for operators who
// want to run an external (e.g. xmllint) validation pass alongside
// this toolkit's own structural check; it is never executed as real
// XSD processing here, since no pure-Go XSD validator exists among
// this toolkit's dependencies without pulling in cgo.
//
//go:embed resources/credential.xsd
var credentialXSD []byte

// CredentialXSD returns the bundled reference schema.
func CredentialXSD() []byte {
	return credentialXSD
}

// checkSchema unmarshals raw into the expected struct shape and
// confirms every field the later stages depend on is present and
// non-empty. This stands in for true XSD validation: it is a
// structural Go-level check, not a byte-for-byte grammar conformance
// check, but it catches the same class of malformed-input mistake
// (missing required element, wrong nesting) that matters here.
func checkSchema(raw []byte) (credential.SignedCredentialXML, error) {
	var doc credential.SignedCredentialXML
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("%w: %v", ErrInputParse, err)
	}

	c := doc.Credential
	switch {
	case c.ID == "":
		return doc, fmt.Errorf("%w: missing credential id", ErrSchemaInvalid)
	case c.Expires == "":
		return doc, fmt.Errorf("%w: missing expires", ErrSchemaInvalid)
	case c.ABAC.RT0.Head.Principal.KeyID == "":
		return doc, fmt.Errorf("%w: missing abac/rt0/head keyid", ErrSchemaInvalid)
	case c.ABAC.RT0.Head.Role == "":
		return doc, fmt.Errorf("%w: missing abac/rt0/head role (the speaks-for assertion itself)", ErrSchemaInvalid)
	case c.ABAC.RT0.Tail.Principal.KeyID == "":
		return doc, fmt.Errorf("%w: missing abac/rt0/tail keyid", ErrSchemaInvalid)
	}

	return doc, nil
}
