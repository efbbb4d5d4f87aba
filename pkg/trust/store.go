// Package trust walks a certificate chain up to a locally-held set of
// trust anchors, the way an OpenSSL subject-hash-indexed CA directory
// does (c_rehash layout: "<hash>.0", "<hash>.1", ...). It performs no
// network I/O and consults no revocation service: trust here means
// exactly "chains to a certificate in this directory", nothing more.
package trust

import (
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Outcome is the three-valued result of walking a chain against a Store.
type Outcome int

const (
	// NotTrusted means no anchor in the store issued any certificate
	// in the chain.
	NotTrusted Outcome = iota
	// Trusted means the chain resolves to a known anchor and every
	// certificate in the path is currently within its validity window.
	Trusted
	// Expired means the chain resolves to a known anchor, but some
	// certificate along the path is outside its validity window.
	Expired
)

func (o Outcome) String() string {
	switch o {
	case Trusted:
		return "trusted"
	case Expired:
		return "expired"
	default:
		return "not trusted"
	}
}

// ErrMalformedAnchor is returned by NewStore when a file in caDir
// could not be parsed as a PEM or DER certificate.
var ErrMalformedAnchor = errors.New("trust: malformed anchor certificate")

// Store is a set of trust anchors loaded from a CA directory.
type Store struct {
	byHash map[string][]*x509.Certificate
	pool   *x509.CertPool
}

// NewStore reads every regular file in caDir, parses it as a PEM or
// raw-DER certificate, and indexes it by OpenSSL subject hash. A file
// that cannot be parsed makes NewStore fail outright: a trust store
// that silently dropped a malformed anchor would fail closed in a way
// that's invisible to the operator, which is worse than failing loudly
// at load time.
func NewStore(caDir string) (*Store, error) {
	entries, err := os.ReadDir(caDir)
	if err != nil {
		return nil, fmt.Errorf("trust: read CA directory %s: %w", caDir, err)
	}

	s := &Store{
		byHash: make(map[string][]*x509.Certificate),
		pool:   x509.NewCertPool(),
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(caDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("trust: read %s: %w", path, err)
		}
		cert, err := parseAnchor(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedAnchor, path, err)
		}
		hash := subjectHash(cert)
		s.byHash[hash] = append(s.byHash[hash], cert)
		s.pool.AddCert(cert)
	}

	return s, nil
}

func parseAnchor(data []byte) (*x509.Certificate, error) {
	if cert, err := parsePEMCertificate(data); err == nil {
		return cert, nil
	}
	return x509.ParseCertificate(data)
}

// Verify walks chain (leaf first) toward a trust anchor and reports
// Trusted, Expired, or NotTrusted. It never consults the network or
// any revocation list.
func (s *Store) Verify(chain []*x509.Certificate, now time.Time) Outcome {
	if len(chain) == 0 {
		return NotTrusted
	}

	intermediates := x509.NewCertPool()
	for _, c := range chain[1:] {
		intermediates.AddCert(c)
	}

	opts := x509.VerifyOptions{
		Roots:         s.pool,
		Intermediates: intermediates,
		CurrentTime:   now,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}

	if _, err := chain[0].Verify(opts); err != nil {
		var invalid x509.CertificateInvalidError
		if errors.As(err, &invalid) && invalid.Reason == x509.Expired {
			return Expired
		}
		if hasAnchorForAnyIssuer(s, chain) {
			return Expired
		}
		return NotTrusted
	}

	return Trusted
}

// hasAnchorForAnyIssuer reports whether the store holds a certificate
// whose subject hash matches some issuer in chain, used to distinguish
// "would trust this but it's expired" from "genuinely unknown issuer"
// when x509.Verify's error doesn't already say Expired (e.g. because
// the expired certificate is itself the one an anchor directly signs).
func hasAnchorForAnyIssuer(s *Store, chain []*x509.Certificate) bool {
	for _, c := range chain {
		if _, ok := s.byHash[nameHash(c.Issuer)]; ok {
			return true
		}
	}
	return false
}
