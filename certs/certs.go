// Package certs creates self-signed SM2 certificates for the demo command
// and the cms package's tests, which need at least one certificate to
// populate a SignedData/EnvelopedData certificates set.
package certs

import (
	"crypto/rand"
	"crypto/x509/pkix"
	"math/big"
	"time"

	"github.com/emmansun/gmsm/sm2"
	"github.com/emmansun/gmsm/smx509"
	"github.com/pkg/errors"
)

// Identity is a generated SM2 keypair plus its self-signed certificate.
type Identity struct {
	PrivateKey  *sm2.PrivateKey
	Certificate *smx509.Certificate
}

// NewSelfSigned generates an SM2 keypair and wraps it in a self-signed
// certificate for commonName, valid from now for validity.
func NewSelfSigned(commonName string, serial int64, validity time.Duration) (*Identity, error) {
	priv, err := sm2.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "certs: generate SM2 key")
	}

	tmpl := &smx509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{CommonName: commonName},
		Issuer:       pkix.Name{CommonName: commonName},
		NotBefore:    time.Now().Add(-time.Minute),
		NotAfter:     time.Now().Add(validity),
		KeyUsage:     smx509.KeyUsageDigitalSignature | smx509.KeyUsageKeyEncipherment,
	}

	der, err := smx509.CreateCertificate(rand.Reader, tmpl, tmpl, priv.Public(), priv)
	if err != nil {
		return nil, errors.Wrap(err, "certs: create self-signed certificate")
	}

	cert, err := smx509.ParseCertificate(der)
	if err != nil {
		return nil, errors.Wrap(err, "certs: parse generated certificate")
	}

	return &Identity{PrivateKey: priv, Certificate: cert}, nil
}
