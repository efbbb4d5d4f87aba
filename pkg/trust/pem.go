package trust

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
)

func parsePEMCertificate(data []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("trust: not PEM encoded")
	}
	return x509.ParseCertificate(block.Bytes)
}
