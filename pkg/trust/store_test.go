package trust

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCA struct {
	cert *x509.Certificate
	key  *rsa.PrivateKey
}

func newCA(t *testing.T, cn string, notBefore, notAfter time.Time) *testCA {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return &testCA{cert: cert, key: key}
}

func issueLeaf(t *testing.T, ca *testCA, cn string, notBefore, notAfter time.Time) *x509.Certificate {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, ca.cert, &key.PublicKey, ca.key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert
}

func writeCADir(t *testing.T, certs ...*x509.Certificate) string {
	t.Helper()
	dir := t.TempDir()
	for i, c := range certs {
		hash := subjectHash(c)
		path := filepath.Join(dir, hash+"."+string(rune('0'+i)))
		pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: c.Raw})
		require.NoError(t, os.WriteFile(path, pemBytes, 0o644))
	}
	return dir
}

func TestStoreTrustedChain(t *testing.T) {
	now := time.Now()
	ca := newCA(t, "root-ca", now.Add(-time.Hour), now.Add(24*time.Hour))
	leaf := issueLeaf(t, ca, "leaf", now.Add(-time.Minute), now.Add(time.Hour))

	store, err := NewStore(writeCADir(t, ca.cert))
	require.NoError(t, err)

	assert.Equal(t, Trusted, store.Verify([]*x509.Certificate{leaf}, now))
}

func TestStoreNotTrustedUnknownIssuer(t *testing.T) {
	now := time.Now()
	ca := newCA(t, "root-ca", now.Add(-time.Hour), now.Add(24*time.Hour))
	leaf := issueLeaf(t, ca, "leaf", now.Add(-time.Minute), now.Add(time.Hour))

	otherCA := newCA(t, "other-ca", now.Add(-time.Hour), now.Add(24*time.Hour))
	store, err := NewStore(writeCADir(t, otherCA.cert))
	require.NoError(t, err)

	assert.Equal(t, NotTrusted, store.Verify([]*x509.Certificate{leaf}, now))
}

func TestStoreExpiredLeaf(t *testing.T) {
	now := time.Now()
	ca := newCA(t, "root-ca", now.Add(-48*time.Hour), now.Add(48*time.Hour))
	leaf := issueLeaf(t, ca, "leaf", now.Add(-48*time.Hour), now.Add(-time.Hour))

	store, err := NewStore(writeCADir(t, ca.cert))
	require.NoError(t, err)

	assert.Equal(t, Expired, store.Verify([]*x509.Certificate{leaf}, now))
}

func TestNewStoreRejectsMalformedAnchor(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deadbeef.0"), []byte("not a certificate"), 0o644))

	_, err := NewStore(dir)
	assert.ErrorIs(t, err, ErrMalformedAnchor)
}
