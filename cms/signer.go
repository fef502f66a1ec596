package cms

import (
	"crypto/rand"
	"encoding/asn1"

	"github.com/emmansun/gmsm/sm2"
	"github.com/emmansun/gmsm/sm3"
	"github.com/emmansun/gmsm/smx509"
	"github.com/pkg/errors"
)

// DefaultUserID is the default identity value fed to SM2 sign/verify for
// ZA preprocessing. It is the distinguished ID value recommended by GB/T
// 32918 when the signer and verifier have not agreed on an
// application-specific identity string.
var DefaultUserID = []byte("1234567812345678")

// PKCS #9 attribute type OIDs for the content-type and message-digest
// authenticated attributes; the content-type attribute's value is an OID
// from the GM content-type arc of oid.go.
var (
	OIDAttributeContentType   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 3}
	OIDAttributeMessageDigest = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 4}
)

// SignerInfo is a single signer's binding of a digest to a signature.
//
// SignerInfo ::= SEQUENCE {
//   version                   INTEGER { v1(1) },
//   issuerAndSerialNumber     IssuerAndSerialNumber,
//   digestAlgorithm           AlgorithmIdentifier,
//   authenticatedAttributes   [0] IMPLICIT Attributes OPTIONAL,
//   digestEncryptionAlgorithm AlgorithmIdentifier,
//   encryptedDigest           OCTET STRING,
//   unauthenticatedAttributes [1] IMPLICIT Attributes OPTIONAL }
type SignerInfo struct {
	Version                   int
	IssuerAndSerialNumber     IssuerAndSerialNumber
	DigestAlgorithm           AlgorithmIdentifier
	AuthenticatedAttributes   Attributes `asn1:"optional,tag:0"`
	DigestEncryptionAlgorithm AlgorithmIdentifier
	EncryptedDigest           []byte
	UnauthenticatedAttributes Attributes `asn1:"optional,tag:1"`
}

// signatureInput builds the exact bytes fed to SM2 sign/verify: the
// signed content, followed — when authenticatedAttributes is non-empty —
// by its universal-SET-tagged encoding. When authenticatedAttributes is
// empty, the signature input is the content alone.
func signatureInput(content []byte, attrs Attributes) ([]byte, error) {
	if len(attrs) == 0 {
		return content, nil
	}
	attrsForSigning, err := attrs.MarshaledForSigning()
	if err != nil {
		return nil, err
	}
	input := make([]byte, 0, len(content)+len(attrsForSigning))
	input = append(input, content...)
	input = append(input, attrsForSigning...)
	return input, nil
}

// NewSignerInfo signs content (and, if attrs is non-empty, the SET-tagged
// encoding of attrs appended to it) with signer's SM2 private key, binding
// the result to signerCert's issuer/serial. attrs may be nil to omit
// authenticatedAttributes.
func NewSignerInfo(signer *sm2.PrivateKey, signerCert *smx509.Certificate, content []byte, attrs Attributes) (SignerInfo, error) {
	isn, err := NewIssuerAndSerialNumber(signerCert)
	if err != nil {
		return SignerInfo{}, err
	}

	input, err := signatureInput(content, attrs)
	if err != nil {
		return SignerInfo{}, err
	}

	sig, err := sm2.SignASN1(rand.Reader, signer, DefaultUserID, input)
	if err != nil {
		return SignerInfo{}, errors.Wrap(ErrCryptoProvider, err.Error())
	}

	return SignerInfo{
		Version:                   1,
		IssuerAndSerialNumber:     isn,
		DigestAlgorithm:           sm3DigestAlgorithm(),
		AuthenticatedAttributes:   attrs,
		DigestEncryptionAlgorithm: sm2SignatureAlgorithm(),
		EncryptedDigest:           sig,
	}, nil
}

// NewSignerInfoWithMessageDigest is a convenience wrapper that builds
// authenticatedAttrs containing a contentType and messageDigest attribute
// over content (the conventional CMS shape), then signs via NewSignerInfo.
func NewSignerInfoWithMessageDigest(signer *sm2.PrivateKey, signerCert *smx509.Certificate, innerType ContentType, content []byte) (SignerInfo, error) {
	innerOID, err := innerType.OID()
	if err != nil {
		return SignerInfo{}, err
	}

	digest := sm3.Sum(content)

	ctAttr, err := NewAttribute(OIDAttributeContentType, innerOID)
	if err != nil {
		return SignerInfo{}, err
	}
	mdAttr, err := NewAttribute(OIDAttributeMessageDigest, digest[:])
	if err != nil {
		return SignerInfo{}, err
	}

	return NewSignerInfo(signer, signerCert, content, Attributes{ctAttr, mdAttr})
}

// Verify checks si's signature over content using signerCert's SM2 public
// key. It mirrors NewSignerInfo bit-for-bit: the same authenticatedAttributes
// prefix rule applies to the signature input.
func (si SignerInfo) Verify(signerCert *smx509.Certificate, content []byte) error {
	if si.Version != 1 {
		return errors.Wrapf(ErrInvalidParameter, "cms: signerInfo version %d != 1", si.Version)
	}
	if !si.DigestAlgorithm.Algorithm.Equal(OIDSM3) {
		return errors.Wrapf(ErrUnsupportedAlgorithm, "cms: digestAlgorithm %s != sm3", si.DigestAlgorithm.Algorithm)
	}
	if !si.DigestEncryptionAlgorithm.Algorithm.Equal(OIDSM2SignWithSM3) {
		return errors.Wrapf(ErrUnsupportedAlgorithm, "cms: digestEncryptionAlgorithm %s != sm2sign-with-sm3", si.DigestEncryptionAlgorithm.Algorithm)
	}

	pub, ok := signerCert.PublicKey.(*sm2.PublicKey)
	if !ok {
		return errors.Wrap(ErrInvalidParameter, "cms: signer certificate does not carry an SM2 public key")
	}

	input, err := signatureInput(content, si.AuthenticatedAttributes)
	if err != nil {
		return err
	}

	if !sm2.VerifyASN1WithSM2(pub, DefaultUserID, input, si.EncryptedDigest) {
		return ErrSignatureInvalid
	}
	return nil
}

// FindSignerCertificate locates the certificate identified by
// si.IssuerAndSerialNumber within certs, returning ErrCertificateNotFound
// if none matches.
func (si SignerInfo) FindSignerCertificate(certs []*smx509.Certificate) (*smx509.Certificate, error) {
	for _, cert := range certs {
		if si.IssuerAndSerialNumber.Matches(cert) {
			return cert, nil
		}
	}
	return nil, ErrCertificateNotFound
}
