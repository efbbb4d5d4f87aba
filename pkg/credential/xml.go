package credential

import "encoding/xml"

// SignedCredentialXML is the root element of a speaks-for credential
// document, mirroring the <signed-credential> shape in credential.xsd.
// The verifier's schema stage (§4.E Stage 1) unmarshals into this tree
// to check structural validity; it never round-trips through Marshal —
// the builder renders bytes directly from a literal template
// (pkg/builder/template.go) so canonicalization sees exactly the bytes
// the template author wrote, not whatever encoding/xml chooses to emit.
type SignedCredentialXML struct {
	XMLName    xml.Name      `xml:"signed-credential"`
	Credential CredentialXML `xml:"credential"`
}

// CredentialXML is the <credential> element carrying the ABAC rule.
// The "id" attribute (not "xml:id") is the one the spec designates
// authoritative for XML-DSig reference resolution.
type CredentialXML struct {
	ID        string  `xml:"id,attr"`
	Type      string  `xml:"type"`
	Serial    string  `xml:"serial"`
	OwnerGID  string  `xml:"owner_gid"`
	TargetGID string  `xml:"target_gid"`
	UUID      string  `xml:"uuid"`
	Expires   string  `xml:"expires"`
	ABAC      ABACXML `xml:"abac"`
}

// ABACXML wraps the single rt0 rule this toolkit emits.
type ABACXML struct {
	RT0 RT0XML `xml:"rt0"`
}

// RT0XML is one RT0 "head speaks_for tail" rule.
type RT0XML struct {
	Version string       `xml:"version"`
	Head    PrincipalXML `xml:"head"`
	Tail    PrincipalXML `xml:"tail"`
}

// PrincipalXML is a head or tail ABAC principal reference.
type PrincipalXML struct {
	Principal ABACPrincipalXML `xml:"ABACprincipal"`
	Role      string           `xml:"role,omitempty"`
}

// ABACPrincipalXML carries the principal's keyid.
type ABACPrincipalXML struct {
	KeyID string `xml:"keyid"`
}
