package canon

import (
	"github.com/beevik/etree"
	"github.com/leifj/signedxml"
)

// algorithm adapts Canonicalize to signedxml.CanonicalizationAlgorithm,
// so signedxml's signer and validator both canonicalize Exclusive C14N
// through this package's xml:id-fixed implementation instead of its
// own bundled one, per the algorithm URI registered below.
type algorithm struct{}

func (algorithm) Process(inputXML *etree.Element, _ *etree.Element) (string, error) {
	out, err := Canonicalize(inputXML)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func init() {
	signedxml.CanonicalizationAlgorithms[URI] = algorithm{}
}
