package fingerprint

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // test verifies against the same legacy digest the package computes
	"crypto/x509"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyIDOfMatchesManualDigest(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	id, err := KeyIDOf(&key.PublicKey)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	want := sha1.Sum(der)

	assert.Equal(t, want[:], id[:])
	assert.Len(t, id.String(), 40)
}

func TestEncodePositiveIntegerPadsHighBit(t *testing.T) {
	// 0xFF alone would look negative in two's complement; expect a
	// leading zero byte inserted.
	v := big.NewInt(0xFF)
	got := EncodePositiveInteger(v)
	assert.Equal(t, []byte{0x00, 0xFF}, got)
}

func TestEncodePositiveIntegerNoPadWhenHighBitClear(t *testing.T) {
	v := big.NewInt(0x7F)
	got := EncodePositiveInteger(v)
	assert.Equal(t, []byte{0x7F}, got)
}

func TestBase64WrappedUsesLFOnlyAndWrapsAt64(t *testing.T) {
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}
	wrapped := Base64Wrapped(data)
	assert.NotContains(t, wrapped, "\r")
	for _, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, len(line), 64)
	}
}

func TestStripPEMArmor(t *testing.T) {
	pem := []byte("-----BEGIN CERTIFICATE-----\nAAAA\nBBBB\n-----END CERTIFICATE-----\n")
	got := StripPEMArmor(pem)
	assert.Equal(t, []byte("AAAA\nBBBB"), got)
}
