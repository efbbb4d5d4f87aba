// Package canon implements Exclusive XML Canonicalization
// (http://www.w3.org/2001/10/xml-exc-c14n#) as used by the speaks-for
// credential's XML-DSig signature, including the one deviation this
// ecosystem requires from the off-the-shelf algorithm: an `xml:id`
// attribute must never be preceded by a synthesized, empty-namespace
// `xmlns:xml=""` declaration (see the package doc for the rationale).
//
// This canonicalizer is hand-built rather than delegated to a
// third-party XML-DSig library: the bug it corrects is produced
// inside such libraries' own canonicalization step, at a point their
// public APIs do not expose for interception. Building it directly,
// on top of github.com/beevik/etree for tree traversal, is the only
// way to guarantee both the signer and the verifier apply the exact
// same fixup to the exact same bytes. It is still substitutable: this
// package registers itself into signedxml's CanonicalizationAlgorithms
// registry under URI (see signedxml.go), so pkg/builder and
// pkg/verifier drive their DSig signing and validation through
// signedxml's orchestration rather than reimplementing it.
package canon

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// URI is the Exclusive C14N (without comments) algorithm identifier.
const URI = "http://www.w3.org/2001/10/xml-exc-c14n#"

// xmlNamespacePrefix is the always-implicit "xml" prefix; per the XML
// Namespaces spec it is never declared with its own xmlns attribute.
const xmlNamespacePrefix = "xml"

// buggyXMLIDSequence is the textually matched sequence that a common,
// off-the-shelf canonicalizer emits for an xml:id attribute: a
// synthesized, empty-namespace declaration for the "xml" prefix,
// immediately followed by the attribute it (wrongly) believes needs
// namespace propagation.
const buggyXMLIDSequence = `xmlns:xml="" xml:id`

// fixedXMLIDSequence is what spec-correct Exclusive C14N 1.1 produces:
// no namespace declaration at all for the implicit "xml" prefix.
const fixedXMLIDSequence = `xml:id`

// Canonicalize renders el and its subtree as Exclusive C14N bytes,
// with the xml:id fixup applied. It is deterministic and performs no
// I/O. Calling it twice on its own output returns the same bytes
// (idempotence is required by spec and exercised in excc14n_test.go).
func Canonicalize(el *etree.Element) ([]byte, error) {
	if el == nil {
		return nil, fmt.Errorf("canon: nil element")
	}
	var buf bytes.Buffer
	if err := writeElement(&buf, el); err != nil {
		return nil, err
	}
	return applyXMLIDFixup(buf.Bytes()), nil
}

// applyXMLIDFixup rewrites every occurrence of the buggy sequence to
// the corrected one. It is safe to call on already-fixed input: the
// buggy sequence will simply not be found, which is what makes
// Canonicalize idempotent.
func applyXMLIDFixup(b []byte) []byte {
	return bytes.ReplaceAll(b, []byte(buggyXMLIDSequence), []byte(fixedXMLIDSequence))
}

func writeElement(buf *bytes.Buffer, el *etree.Element) error {
	name := qualifiedName(el.Space, el.Tag)
	buf.WriteByte('<')
	buf.WriteString(name)

	if err := writeAttributes(buf, el); err != nil {
		return err
	}
	buf.WriteByte('>')

	for _, child := range el.Child {
		switch n := child.(type) {
		case *etree.Element:
			if err := writeElement(buf, n); err != nil {
				return err
			}
		case *etree.CharData:
			buf.WriteString(escapeText(n.Data))
		// Comments and processing instructions are dropped: this is
		// Exclusive C14N *without* comments, the only mode the
		// credential signature profile uses.
		default:
		}
	}

	buf.WriteString("</")
	buf.WriteString(name)
	buf.WriteByte('>')
	return nil
}

func qualifiedName(space, tag string) string {
	if space == "" {
		return tag
	}
	return space + ":" + tag
}

// writeAttributes renders namespace declarations first (default
// namespace, then prefixed declarations sorted by prefix), followed
// by ordinary attributes sorted by qualified name. Any attribute in
// the "xml" namespace is rendered with the (buggy, then fixed-up)
// xmlns:xml sequence immediately in front of it, matching exactly
// what spec §4.C calls out.
func writeAttributes(buf *bytes.Buffer, el *etree.Element) error {
	var nsDecls []etree.Attr
	var plain []etree.Attr

	for _, a := range el.Attr {
		switch {
		case a.Space == "" && a.Key == "xmlns":
			nsDecls = append(nsDecls, a)
		case a.Space == "xmlns":
			nsDecls = append(nsDecls, a)
		default:
			plain = append(plain, a)
		}
	}

	sort.Slice(nsDecls, func(i, j int) bool {
		return nsPrefixSortKey(nsDecls[i]) < nsPrefixSortKey(nsDecls[j])
	})
	sort.Slice(plain, func(i, j int) bool {
		return qualifiedName(plain[i].Space, plain[i].Key) < qualifiedName(plain[j].Space, plain[j].Key)
	})

	for _, a := range nsDecls {
		buf.WriteByte(' ')
		buf.WriteString(qualifiedName(a.Space, a.Key))
		buf.WriteString(`="`)
		buf.WriteString(escapeAttrValue(a.Value))
		buf.WriteString(`"`)
	}
	for _, a := range plain {
		if a.Space == xmlNamespacePrefix {
			buf.WriteByte(' ')
			buf.WriteString(`xmlns:xml=""`)
		}
		buf.WriteByte(' ')
		buf.WriteString(qualifiedName(a.Space, a.Key))
		buf.WriteString(`="`)
		buf.WriteString(escapeAttrValue(a.Value))
		buf.WriteString(`"`)
	}
	return nil
}

func nsPrefixSortKey(a etree.Attr) string {
	if a.Space == "" {
		return "" // default namespace declaration sorts first
	}
	return a.Key
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\r", "&#xD;")
	return s
}

func escapeAttrValue(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "\t", "&#x9;")
	s = strings.ReplaceAll(s, "\n", "&#xA;")
	s = strings.ReplaceAll(s, "\r", "&#xD;")
	return s
}
