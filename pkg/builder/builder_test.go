package builder

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fed4fire/speaksfor/pkg/credential"
)

func selfSignedBundle(t *testing.T, cn string) *credential.Bundle {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return &credential.Bundle{PrivateKey: key, Chain: []*x509.Certificate{cert}}
}

func TestSignProducesWellFormedDocument(t *testing.T) {
	owner := selfSignedBundle(t, "owner")
	tool := selfSignedBundle(t, "tool")

	out, err := Sign(Request{Owner: owner, ToolCert: tool.Leaf(), ValidityDays: 7}, time.Now().UTC())
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	assert.Equal(t, "signed-credential", doc.Root().Tag)

	cred := doc.Root().FindElement("./credential")
	require.NotNil(t, cred)
	assert.Equal(t, "ref0", cred.SelectAttrValue("xml:id", ""))

	sigValue := doc.Root().FindElement("./signatures/Signature/SignatureValue")
	require.NotNil(t, sigValue)
	assert.NotEmpty(t, sigValue.Text())

	digest := doc.Root().FindElement("./signatures/Signature/SignedInfo/Reference/DigestValue")
	require.NotNil(t, digest)
	assert.NotEmpty(t, digest.Text())

	modulus := doc.Root().FindElement("./signatures/Signature/KeyInfo/KeyValue/RSAKeyValue/Modulus")
	require.NotNil(t, modulus)
	assert.NotEmpty(t, modulus.Text())
}

func TestSignRejectsMismatchedBundle(t *testing.T) {
	owner := selfSignedBundle(t, "owner")
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	owner.PrivateKey = other // now mismatched with its own certificate

	tool := selfSignedBundle(t, "tool")
	_, err = Sign(Request{Owner: owner, ToolCert: tool.Leaf(), ValidityDays: 7}, time.Now())
	assert.ErrorIs(t, err, credential.ErrKeyMismatch)
}

func TestSignRejectsNonPositiveValidity(t *testing.T) {
	owner := selfSignedBundle(t, "owner")
	tool := selfSignedBundle(t, "tool")
	_, err := Sign(Request{Owner: owner, ToolCert: tool.Leaf(), ValidityDays: 0}, time.Now())
	assert.Error(t, err)
}
