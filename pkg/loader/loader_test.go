package loader

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
	"github.com/youmark/pkcs8"
	"software.sslmate.com/src/go-pkcs12"
)

func generateSelfSigned(t *testing.T, key *rsa.PrivateKey, cn string) []byte {
	t.Helper()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		IsCA:         true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return der
}

func pemBlock(blockType string, der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
}

func TestFromPEMPlainPKCS1(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	certDER := generateSelfSigned(t, key, "plain-pkcs1")

	data := append(pemBlock("RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key)), pemBlock("CERTIFICATE", certDER)...)

	bundle, err := FromPEM(data, nil)
	require.NoError(t, err)
	assert.NoError(t, bundle.Validate())
	assert.Equal(t, "plain-pkcs1", bundle.Leaf().Subject.CommonName)
}

func TestFromPEMPlainPKCS8(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	certDER := generateSelfSigned(t, key, "plain-pkcs8")

	pkcs8DER, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	data := append(pemBlock("PRIVATE KEY", pkcs8DER), pemBlock("CERTIFICATE", certDER)...)

	bundle, err := FromPEM(data, nil)
	require.NoError(t, err)
	assert.NoError(t, bundle.Validate())
}

func TestFromPEMEncryptedPKCS8(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	certDER := generateSelfSigned(t, key, "encrypted-pkcs8")

	encDER, err := pkcs8.MarshalPrivateKey(key, []byte("correct-horse"), nil)
	require.NoError(t, err)

	data := append(pemBlock("ENCRYPTED PRIVATE KEY", encDER), pemBlock("CERTIFICATE", certDER)...)

	bundle, err := FromPEM(data, []byte("correct-horse"))
	require.NoError(t, err)
	assert.NoError(t, bundle.Validate())

	_, err = FromPEM(data, []byte("wrong-password"))
	assert.ErrorIs(t, err, ErrKeyDecryption)
}

func TestFromPEMEncryptedPKCS1(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	certDER := generateSelfSigned(t, key, "encrypted-pkcs1")

	//nolint:staticcheck // exercising the legacy "Proc-Type: 4,ENCRYPTED" PKCS#1 path loader.go decrypts
	block, err := x509.EncryptPEMBlock(rand.Reader, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key), []byte("hunter2"), x509.PEMCipherAES256) //nolint:staticcheck
	require.NoError(t, err)

	data := append(pem.EncodeToMemory(block), pemBlock("CERTIFICATE", certDER)...)

	bundle, err := FromPEM(data, []byte("hunter2"))
	require.NoError(t, err)
	assert.NoError(t, bundle.Validate())

	_, err = FromPEM(data, []byte("wrong-password"))
	assert.ErrorIs(t, err, ErrKeyDecryption)
}

func TestFromPEMAmbiguousKeys(t *testing.T) {
	key1, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	key2, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	cert := generateSelfSigned(t, key1, "one")

	data := append(pemBlock("RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key1)), pemBlock("RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key2))...)
	data = append(data, pemBlock("CERTIFICATE", cert)...)

	_, err = FromPEM(data, nil)
	assert.ErrorIs(t, err, ErrKeyAmbiguous)
}

func TestFromPEMKeyDoesNotMatchCertificate(t *testing.T) {
	key1, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	key2, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	cert := generateSelfSigned(t, key2, "other")

	data := append(pemBlock("RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key1)), pemBlock("CERTIFICATE", cert)...)

	_, err = FromPEM(data, nil)
	assert.Error(t, err)
}

func TestFromPEMNoPrivateKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	cert := generateSelfSigned(t, key, "no-key")

	_, err = FromPEM(pemBlock("CERTIFICATE", cert), nil)
	assert.ErrorIs(t, err, ErrNoPrivateKey)
}

func TestFromFormatIgnoresExtension(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	certDER := generateSelfSigned(t, key, "format-hint-pem")
	data := append(pemBlock("RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key)), pemBlock("CERTIFICATE", certDER)...)

	// The file carries a ".p12" extension but is really PEM; the
	// format hint, not the extension, decides how it's parsed.
	path := filepath.Join(t.TempDir(), "owner.p12")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	bundle, err := FromFormat("pem", path, nil)
	require.NoError(t, err)
	assert.Equal(t, "format-hint-pem", bundle.Leaf().Subject.CommonName)
}

func TestFromFormatPKCS12(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	certDER := generateSelfSigned(t, key, "format-hint-p12")
	cert, err := x509.ParseCertificate(certDER)
	require.NoError(t, err)

	pfx, err := pkcs12.Modern.Encode(key, cert, nil, "hunter2")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "owner.bin")
	require.NoError(t, os.WriteFile(path, pfx, 0o600))

	bundle, err := FromFormat("p12", path, []byte("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, "format-hint-p12", bundle.Leaf().Subject.CommonName)
}

func TestFromFormatUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "owner.dat")
	require.NoError(t, os.WriteFile(path, []byte("irrelevant"), 0o600))

	_, err := FromFormat("der", path, nil)
	assert.Error(t, err)
}

func TestLoadCertificate(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	certDER := generateSelfSigned(t, key, "standalone")

	cert, err := LoadCertificate(pemBlock("CERTIFICATE", certDER))
	require.NoError(t, err)
	assert.Equal(t, "standalone", cert.Subject.CommonName)
}
