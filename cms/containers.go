package cms

import (
	"crypto/elliptic"
	"encoding/asn1"

	"github.com/emmansun/gmsm/sm2"
	"github.com/emmansun/gmsm/smx509"
	"github.com/pkg/errors"
)

// EncryptedData is the content of a ContentTypeEncryptedData message.
//
// EncryptedData ::= SEQUENCE {
//   version               INTEGER { v1(1) },
//   encryptedContentInfo  EncryptedContentInfo }
type EncryptedData struct {
	Version              int
	EncryptedContentInfo EncryptedContentInfo
}

// NewEncryptedData builds an EncryptedData from an already-encrypted
// EncryptedContentInfo.
func NewEncryptedData(eci EncryptedContentInfo) EncryptedData {
	return EncryptedData{Version: 1, EncryptedContentInfo: eci}
}

// Encode DER-encodes the EncryptedData body (not wrapped in ContentInfo).
func (ed EncryptedData) Encode() ([]byte, error) {
	return asn1.Marshal(ed)
}

// ParseEncryptedData decodes an EncryptedData body, rejecting version != 1
// and trailing bytes.
func ParseEncryptedData(der []byte) (EncryptedData, error) {
	var ed EncryptedData
	rest, err := asn1.Unmarshal(der, &ed)
	if err != nil {
		return EncryptedData{}, errors.Wrap(ErrMalformedStructure, err.Error())
	}
	if len(rest) > 0 {
		return EncryptedData{}, errors.Wrap(ErrMalformedStructure, "trailing bytes after EncryptedData")
	}
	if ed.Version != 1 {
		return EncryptedData{}, errors.Wrapf(ErrInvalidParameter, "cms: EncryptedData version %d != 1", ed.Version)
	}
	return ed, nil
}

// EnvelopedData is the content of a ContentTypeEnvelopedData message.
//
// EnvelopedData ::= SEQUENCE {
//   version              INTEGER { v1(1) },
//   recipientInfos       SET OF RecipientInfo,
//   encryptedContentInfo EncryptedContentInfo }
type EnvelopedData struct {
	Version              int
	RecipientInfos       []RecipientInfo `asn1:"set"`
	EncryptedContentInfo EncryptedContentInfo
}

// NewEnvelopedData builds an EnvelopedData from pre-wrapped RecipientInfos
// and a pre-encrypted EncryptedContentInfo. It performs no cryptography;
// Seal performs the CEK generation, wrapping and encryption before calling
// this.
func NewEnvelopedData(recipients []RecipientInfo, eci EncryptedContentInfo) (EnvelopedData, error) {
	if len(recipients) == 0 {
		return EnvelopedData{}, errors.Wrap(ErrInvalidParameter, "cms: EnvelopedData requires at least one recipient")
	}
	return EnvelopedData{Version: 1, RecipientInfos: recipients, EncryptedContentInfo: eci}, nil
}

// Encode DER-encodes the EnvelopedData body.
func (ed EnvelopedData) Encode() ([]byte, error) {
	return asn1.Marshal(ed)
}

// ParseEnvelopedData decodes an EnvelopedData body, rejecting version != 1
// and trailing bytes.
func ParseEnvelopedData(der []byte) (EnvelopedData, error) {
	var ed EnvelopedData
	rest, err := asn1.Unmarshal(der, &ed)
	if err != nil {
		return EnvelopedData{}, errors.Wrap(ErrMalformedStructure, err.Error())
	}
	if len(rest) > 0 {
		return EnvelopedData{}, errors.Wrap(ErrMalformedStructure, "trailing bytes after EnvelopedData")
	}
	if ed.Version != 1 {
		return EnvelopedData{}, errors.Wrapf(ErrInvalidParameter, "cms: EnvelopedData version %d != 1", ed.Version)
	}
	return ed, nil
}

// SignedData is the content of a ContentTypeSignedData message.
//
// SignedData ::= SEQUENCE {
//   version          INTEGER { v1(1) },
//   digestAlgorithms SET OF AlgorithmIdentifier,
//   contentInfo      ContentInfo,
//   certificates     [0] IMPLICIT SET OF Certificate OPTIONAL,
//   crls             [1] IMPLICIT SET OF CertificateList OPTIONAL,
//   signerInfos      SET OF SignerInfo }
type SignedData struct {
	Version          int
	DigestAlgorithms []AlgorithmIdentifier `asn1:"set"`
	ContentInfo      ContentInfo
	Certificates     []asn1.RawValue `asn1:"optional,set,tag:0"`
	CRLs             []asn1.RawValue `asn1:"optional,set,tag:1"`
	SignerInfos      []SignerInfo    `asn1:"set"`
}

// NewSignedData builds a SignedData wrapping inner (typically a
// ContentTypeData ContentInfo carrying the plaintext) with the given
// signers and certificate set. Every SignerInfo is expected to have been
// produced by NewSignerInfo/NewSignerInfoWithMessageDigest against the same
// plaintext carried in inner.
func NewSignedData(inner ContentInfo, certs []*smx509.Certificate, signers []SignerInfo) (SignedData, error) {
	if len(signers) == 0 {
		return SignedData{}, errors.Wrap(ErrInvalidParameter, "cms: SignedData requires at least one signer")
	}

	certSet := make([]asn1.RawValue, 0, len(certs))
	for _, cert := range certs {
		var raw asn1.RawValue
		if _, err := asn1.Unmarshal(cert.Raw, &raw); err != nil {
			return SignedData{}, errors.Wrap(err, "cms: re-parse certificate for SignedData.certificates")
		}
		certSet = append(certSet, raw)
	}

	return SignedData{
		Version:          1,
		DigestAlgorithms: []AlgorithmIdentifier{sm3DigestAlgorithm()},
		ContentInfo:      inner,
		Certificates:     certSet,
		SignerInfos:      signers,
	}, nil
}

// Encode DER-encodes the SignedData body.
func (sd SignedData) Encode() ([]byte, error) {
	return asn1.Marshal(sd)
}

// ParseSignedData decodes a SignedData body, rejecting version != 1 and
// trailing bytes.
func ParseSignedData(der []byte) (SignedData, error) {
	var sd SignedData
	rest, err := asn1.Unmarshal(der, &sd)
	if err != nil {
		return SignedData{}, errors.Wrap(ErrMalformedStructure, err.Error())
	}
	if len(rest) > 0 {
		return SignedData{}, errors.Wrap(ErrMalformedStructure, "trailing bytes after SignedData")
	}
	if sd.Version != 1 {
		return SignedData{}, errors.Wrapf(ErrInvalidParameter, "cms: SignedData version %d != 1", sd.Version)
	}
	return sd, nil
}

// X509Certificates decodes sd.Certificates as SM2 X.509 certificates.
func (sd SignedData) X509Certificates() ([]*smx509.Certificate, error) {
	if sd.Certificates == nil {
		return nil, nil
	}
	certs := make([]*smx509.Certificate, 0, len(sd.Certificates))
	for _, raw := range sd.Certificates {
		if raw.Class != asn1.ClassUniversal || raw.Tag != asn1.TagSequence {
			return nil, errors.Wrapf(ErrMalformedStructure, "cms: unsupported certificate choice (class %d, tag %d)", raw.Class, raw.Tag)
		}
		cert, err := smx509.ParseCertificate(raw.FullBytes)
		if err != nil {
			return nil, errors.Wrap(ErrMalformedStructure, err.Error())
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

// SignedAndEnvelopedData is the content of a
// ContentTypeSignedAndEnvelopedData message.
//
// SignedAndEnvelopedData ::= SEQUENCE {
//   version              INTEGER { v1(1) },
//   recipientInfos       SET OF RecipientInfo,
//   digestAlgorithms     SET OF AlgorithmIdentifier,
//   encryptedContentInfo EncryptedContentInfo,
//   certificates         [0] IMPLICIT SET OF Certificate OPTIONAL,
//   crls                 [1] IMPLICIT SET OF CertificateList OPTIONAL,
//   signerInfos          SET OF SignerInfo }
type SignedAndEnvelopedData struct {
	Version              int
	RecipientInfos       []RecipientInfo        `asn1:"set"`
	DigestAlgorithms     []AlgorithmIdentifier  `asn1:"set"`
	EncryptedContentInfo EncryptedContentInfo
	Certificates         []asn1.RawValue `asn1:"optional,set,tag:0"`
	CRLs                 []asn1.RawValue `asn1:"optional,set,tag:1"`
	SignerInfos          []SignerInfo    `asn1:"set"`
}

// NewSignedAndEnvelopedData builds a SignedAndEnvelopedData from pre-wrapped
// RecipientInfos, a pre-encrypted EncryptedContentInfo, a certificate set,
// and pre-computed SignerInfos. Ordering is enforced by the SignAndSeal
// façade, not by this constructor.
func NewSignedAndEnvelopedData(recipients []RecipientInfo, eci EncryptedContentInfo, certs []*smx509.Certificate, signers []SignerInfo) (SignedAndEnvelopedData, error) {
	if len(recipients) == 0 {
		return SignedAndEnvelopedData{}, errors.Wrap(ErrInvalidParameter, "cms: SignedAndEnvelopedData requires at least one recipient")
	}
	if len(signers) == 0 {
		return SignedAndEnvelopedData{}, errors.Wrap(ErrInvalidParameter, "cms: SignedAndEnvelopedData requires at least one signer")
	}

	certSet := make([]asn1.RawValue, 0, len(certs))
	for _, cert := range certs {
		var raw asn1.RawValue
		if _, err := asn1.Unmarshal(cert.Raw, &raw); err != nil {
			return SignedAndEnvelopedData{}, errors.Wrap(err, "cms: re-parse certificate for SignedAndEnvelopedData.certificates")
		}
		certSet = append(certSet, raw)
	}

	return SignedAndEnvelopedData{
		Version:              1,
		RecipientInfos:       recipients,
		DigestAlgorithms:     []AlgorithmIdentifier{sm3DigestAlgorithm()},
		EncryptedContentInfo: eci,
		Certificates:         certSet,
		SignerInfos:          signers,
	}, nil
}

// Encode DER-encodes the SignedAndEnvelopedData body.
func (sed SignedAndEnvelopedData) Encode() ([]byte, error) {
	return asn1.Marshal(sed)
}

// ParseSignedAndEnvelopedData decodes a SignedAndEnvelopedData body,
// rejecting version != 1 and trailing bytes.
func ParseSignedAndEnvelopedData(der []byte) (SignedAndEnvelopedData, error) {
	var sed SignedAndEnvelopedData
	rest, err := asn1.Unmarshal(der, &sed)
	if err != nil {
		return SignedAndEnvelopedData{}, errors.Wrap(ErrMalformedStructure, err.Error())
	}
	if len(rest) > 0 {
		return SignedAndEnvelopedData{}, errors.Wrap(ErrMalformedStructure, "trailing bytes after SignedAndEnvelopedData")
	}
	if sed.Version != 1 {
		return SignedAndEnvelopedData{}, errors.Wrapf(ErrInvalidParameter, "cms: SignedAndEnvelopedData version %d != 1", sed.Version)
	}
	return sed, nil
}

// X509Certificates decodes sed.Certificates as SM2 X.509 certificates.
func (sed SignedAndEnvelopedData) X509Certificates() ([]*smx509.Certificate, error) {
	if sed.Certificates == nil {
		return nil, nil
	}
	certs := make([]*smx509.Certificate, 0, len(sed.Certificates))
	for _, raw := range sed.Certificates {
		if raw.Class != asn1.ClassUniversal || raw.Tag != asn1.TagSequence {
			return nil, errors.Wrapf(ErrMalformedStructure, "cms: unsupported certificate choice (class %d, tag %d)", raw.Class, raw.Tag)
		}
		cert, err := smx509.ParseCertificate(raw.FullBytes)
		if err != nil {
			return nil, errors.Wrap(ErrMalformedStructure, err.Error())
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

// KeyAgreementInfo is the content of a ContentTypeKeyAgreementInfo message.
// It is purely structural: no cryptography is performed inside this codec.
//
// KeyAgreementInfo ::= SEQUENCE {
//   version           INTEGER { v1(1) },
//   tempPublicKeyR    SM2PublicKey,
//   userCertificate   Certificate,
//   userID            OCTET STRING }
type KeyAgreementInfo struct {
	Version         int
	TempPublicKeyR  asn1.BitString
	UserCertificate asn1.RawValue
	UserID          []byte
}

// NewKeyAgreementInfo builds a KeyAgreementInfo from an SM2 ephemeral
// public key, a user certificate (embedded as its raw DER encoding), and an
// application-chosen user identity.
func NewKeyAgreementInfo(tempPub *sm2.PublicKey, userCert *smx509.Certificate, userID []byte) (KeyAgreementInfo, error) {
	var certRaw asn1.RawValue
	if _, err := asn1.Unmarshal(userCert.Raw, &certRaw); err != nil {
		return KeyAgreementInfo{}, errors.Wrap(err, "cms: re-parse user certificate")
	}

	pubBytes := elliptic.Marshal(tempPub.Curve, tempPub.X, tempPub.Y)

	return KeyAgreementInfo{
		Version:         1,
		TempPublicKeyR:  asn1.BitString{Bytes: pubBytes, BitLength: len(pubBytes) * 8},
		UserCertificate: certRaw,
		UserID:          userID,
	}, nil
}

// Encode DER-encodes the KeyAgreementInfo body.
func (kai KeyAgreementInfo) Encode() ([]byte, error) {
	return asn1.Marshal(kai)
}

// ParseKeyAgreementInfo decodes a KeyAgreementInfo body, rejecting
// version != 1 and trailing bytes.
func ParseKeyAgreementInfo(der []byte) (KeyAgreementInfo, error) {
	var kai KeyAgreementInfo
	rest, err := asn1.Unmarshal(der, &kai)
	if err != nil {
		return KeyAgreementInfo{}, errors.Wrap(ErrMalformedStructure, err.Error())
	}
	if len(rest) > 0 {
		return KeyAgreementInfo{}, errors.Wrap(ErrMalformedStructure, "trailing bytes after KeyAgreementInfo")
	}
	if kai.Version != 1 {
		return KeyAgreementInfo{}, errors.Wrapf(ErrInvalidParameter, "cms: KeyAgreementInfo version %d != 1", kai.Version)
	}
	return kai, nil
}

// UserCert parses the embedded user certificate.
func (kai KeyAgreementInfo) UserCert() (*smx509.Certificate, error) {
	cert, err := smx509.ParseCertificate(kai.UserCertificate.FullBytes)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedStructure, err.Error())
	}
	return cert, nil
}
