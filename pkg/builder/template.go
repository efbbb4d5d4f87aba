package builder

import (
	"crypto/rsa"
	"fmt"
	"html"
	"math/big"
	"strings"

	"github.com/fed4fire/speaksfor/pkg/fingerprint"
)

// credentialTemplate renders the <credential> element's bytes directly
// from a literal template rather than through encoding/xml.Marshal, so
// the canonicalizer sees exactly the bytes written here — no risk of
// encoding/xml reordering attributes or re-wrapping whitespace under
// us between the digest computed at sign time and the one recomputed
// at verify time.
const credentialTemplate = `<credential xml:id="%s" id="%s"><type>%s</type><serial>%s</serial><owner_gid>%s</owner_gid><target_gid>%s</target_gid><uuid>%s</uuid><expires>%s</expires><abac><rt0><version>1.1</version><head><ABACprincipal><keyid>%s</keyid></ABACprincipal><role>%s</role></head><tail><ABACprincipal><keyid>%s</keyid></ABACprincipal>%s</tail></rt0></abac></credential>`

// speaksForRolePrefix names the ABAC role a head always carries: the
// role literally is the speaks-for assertion, keyed to the head's own
// keyid, not the tail's.
const speaksForRolePrefix = "speaks_for_"

func renderCredential(f fields) string {
	headRole := speaksForRolePrefix + f.HeadKeyID

	tailRole := ""
	if f.Role != "" {
		tailRole = "<role>" + html.EscapeString(f.Role) + "</role>"
	}
	return fmt.Sprintf(credentialTemplate,
		escapeAttr(f.ID),
		escapeAttr(f.ID),
		html.EscapeString(f.Type),
		html.EscapeString(f.Serial),
		html.EscapeString(f.OwnerGID),
		html.EscapeString(f.TargetGID),
		html.EscapeString(f.UUID),
		html.EscapeString(f.Expires),
		html.EscapeString(f.HeadKeyID),
		html.EscapeString(headRole),
		html.EscapeString(f.TailKeyID),
		tailRole,
	)
}

// signedCredentialTemplate places the <credential> element and its
// <signatures> block as siblings under the document root, the shape a
// deployed Fed4FIRE verifier expects (locating the signature at
// /*/signatures/*, not nested inside <credential>).
const signedCredentialTemplate = `<signed-credential>%s%s</signed-credential>`

func renderSignedCredential(credentialXML, signaturesBlock string) string {
	return fmt.Sprintf(signedCredentialTemplate, credentialXML, signaturesBlock)
}

// unsignedSignaturesBlockTemplate is rendered as the <signatures>
// sibling of <credential> under the document root, before signing.
// DigestValue and SignatureValue are left empty: signedxml computes
// and fills both in during Signer.Sign, canonicalizing the Reference
// target through the algorithm registered under the
// CanonicalizationMethod's URI (this toolkit's pkg/canon). KeyInfo
// carries both the RSA public key values and the certificate chain.
const unsignedSignaturesBlockTemplate = `<signatures><Signature xmlns="http://www.w3.org/2000/09/xmldsig#"><SignedInfo><CanonicalizationMethod Algorithm="http://www.w3.org/2001/10/xml-exc-c14n#"></CanonicalizationMethod><SignatureMethod Algorithm="http://www.w3.org/2000/09/xmldsig#rsa-sha1"></SignatureMethod><Reference URI="#%s"><Transforms><Transform Algorithm="http://www.w3.org/2000/09/xmldsig#enveloped-signature"></Transform><Transform Algorithm="http://www.w3.org/2001/10/xml-exc-c14n#"></Transform></Transforms><DigestMethod Algorithm="http://www.w3.org/2000/09/xmldsig#sha1"></DigestMethod><DigestValue></DigestValue></Reference></SignedInfo><SignatureValue></SignatureValue><KeyInfo><KeyValue><RSAKeyValue><Modulus>%s</Modulus><Exponent>%s</Exponent></RSAKeyValue></KeyValue><X509Data>%s</X509Data></KeyInfo></Signature></signatures>`

// renderUnsignedSignaturesBlock renders the <signatures> element
// signedxml.Signer.Sign fills in.
func renderUnsignedSignaturesBlock(refID string, pub *rsa.PublicKey, x509Data string) string {
	modulus, exponent := renderRSAKeyValue(pub)
	return fmt.Sprintf(unsignedSignaturesBlockTemplate, refID, modulus, exponent, x509Data)
}

// renderRSAKeyValue base64-wraps pub's modulus and exponent using the
// XML-DSig positive-integer encoding.
func renderRSAKeyValue(pub *rsa.PublicKey) (modulus, exponent string) {
	modulus = fingerprint.Base64Wrapped(fingerprint.EncodePositiveInteger(pub.N))
	exponent = fingerprint.Base64Wrapped(fingerprint.EncodePositiveInteger(big.NewInt(int64(pub.E))))
	return modulus, exponent
}

// renderX509Data base64-wraps each certificate in chain, leaf first,
// as consecutive <X509Certificate> elements.
func renderX509Data(certDERs [][]byte) string {
	var b strings.Builder
	for _, der := range certDERs {
		b.WriteString("<X509Certificate>")
		b.WriteString(fingerprint.Base64Wrapped(der))
		b.WriteString("</X509Certificate>")
	}
	return b.String()
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return s
}

// fields carries the values substituted into credentialTemplate.
type fields struct {
	ID          string
	Type        string
	Serial      string
	OwnerGID    string
	TargetGID   string
	UUID        string
	Expires     string
	HeadKeyID   string
	TailKeyID   string
	Role        string
}
