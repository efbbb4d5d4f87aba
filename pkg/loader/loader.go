package loader

import (
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fed4fire/speaksfor/pkg/credential"
)

// FromFile reads path and dispatches to FromPEM or FromPKCS12 based on
// its extension (.p12/.pfx vs anything else). Unlike the file-per-key
// layouts this pattern is modeled on, the toolkit keeps no on-disk
// key cache: every invocation re-reads and re-parses from scratch.
func FromFile(path string, passphrase []byte) (*credential.Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".p12", ".pfx":
		return FromPKCS12(data, string(passphrase))
	default:
		return FromPEM(data, passphrase)
	}
}

// FromFormat reads path and dispatches to FromPEM or FromPKCS12 based
// on an explicit format hint ("pem" or "p12") rather than guessing
// from the file extension — what the speaks-for command's -f flag
// selects, since a caller-supplied key file may not carry the
// extension its contents suggest.
func FromFormat(format, path string, passphrase []byte) (*credential.Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}

	switch strings.ToLower(format) {
	case "pem":
		return FromPEM(data, passphrase)
	case "p12", "pkcs12":
		return FromPKCS12(data, string(passphrase))
	default:
		return nil, fmt.Errorf("loader: unsupported format %q, want \"pem\" or \"p12\"", format)
	}
}

// CertificateFromFile reads a single PEM-encoded certificate from path.
func CertificateFromFile(path string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	return LoadCertificate(data)
}
