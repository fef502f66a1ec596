package cms

import (
	"bytes"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"reflect"

	"github.com/emmansun/gmsm/smx509"
	"github.com/pkg/errors"
)

// IssuerAndSerialNumber identifies a certificate within a CMS message.
//
// IssuerAndSerialNumber ::= SEQUENCE {
//   issuer       Name,
//   serialNumber CertificateSerialNumber }
//
// CertificateSerialNumber ::= INTEGER
type IssuerAndSerialNumber struct {
	Issuer       asn1.RawValue
	SerialNumber *big.Int
}

// NewIssuerAndSerialNumber derives an IssuerAndSerialNumber from a
// certificate. The returned Issuer holds a reference into cert.RawIssuer;
// cert must outlive the result.
func NewIssuerAndSerialNumber(cert *smx509.Certificate) (IssuerAndSerialNumber, error) {
	var issuer asn1.RawValue
	if _, err := asn1.Unmarshal(cert.RawIssuer, &issuer); err != nil {
		return IssuerAndSerialNumber{}, errors.Wrap(err, "cms: parse certificate issuer")
	}
	return IssuerAndSerialNumber{
		Issuer:       issuer,
		SerialNumber: new(big.Int).Set(cert.SerialNumber),
	}, nil
}

// Encode DER-encodes the IssuerAndSerialNumber, failing if either field is
// unset.
func (isn IssuerAndSerialNumber) Encode() ([]byte, error) {
	if isn.SerialNumber == nil {
		return nil, errors.Wrap(ErrInvalidParameter, "cms: issuerAndSerialNumber missing serial")
	}
	if len(isn.Issuer.FullBytes) == 0 && isn.Issuer.Class == asn1.ClassUniversal && isn.Issuer.Tag == 0 {
		return nil, errors.Wrap(ErrInvalidParameter, "cms: issuerAndSerialNumber missing issuer")
	}
	return asn1.Marshal(isn)
}

// ParseIssuerAndSerialNumber decodes a SEQUENCE { Name, INTEGER }, rejecting
// any trailing bytes.
func ParseIssuerAndSerialNumber(der []byte) (IssuerAndSerialNumber, error) {
	var isn IssuerAndSerialNumber
	rest, err := asn1.Unmarshal(der, &isn)
	if err != nil {
		return IssuerAndSerialNumber{}, errors.Wrap(ErrMalformedStructure, err.Error())
	}
	if len(rest) > 0 {
		return IssuerAndSerialNumber{}, errors.Wrap(ErrMalformedStructure, "trailing bytes after issuerAndSerialNumber")
	}
	return isn, nil
}

// Matches reports whether isn identifies cert: serial bytes equal and
// issuer names structurally equal.
func (isn IssuerAndSerialNumber) Matches(cert *smx509.Certificate) bool {
	if isn.SerialNumber == nil || cert.SerialNumber == nil {
		return false
	}
	if isn.SerialNumber.Cmp(cert.SerialNumber) != 0 {
		return false
	}
	if bytes.Equal(isn.Issuer.FullBytes, cert.RawIssuer) {
		return true
	}
	var want, got pkix.RDNSequence
	if rest, err := asn1.Unmarshal(isn.Issuer.FullBytes, &want); err != nil || len(rest) > 0 {
		return false
	}
	if rest, err := asn1.Unmarshal(cert.RawIssuer, &got); err != nil || len(rest) > 0 {
		return false
	}
	return reflect.DeepEqual(want, got)
}
