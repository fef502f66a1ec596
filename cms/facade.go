// Package cms implements a Cryptographic Message Syntax codec aligned with
// the Chinese GM/T standards, built on the SM2/SM3/SM4 primitive suite.
package cms

import (
	"crypto/rand"

	"github.com/emmansun/gmsm/sm2"
	"github.com/emmansun/gmsm/smx509"
	"github.com/pkg/errors"
)

// cekSize is the SM4 key size in bytes.
const cekSize = 16

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.Wrap(ErrCryptoProvider, err.Error())
	}
	return b, nil
}

// Encrypt produces a ContentTypeEncryptedData ContentInfo: a fresh IV is
// generated, plaintext is SM4-CBC encrypted under key, and the result is
// wrapped in an EncryptedData ContentInfo.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	iv, err := randomBytes(sm4BlockSize)
	if err != nil {
		return nil, err
	}

	eci, err := EncryptEncryptedContentInfo(key, iv, ContentTypeData, plaintext, nil, nil)
	if err != nil {
		return nil, err
	}

	edDER, err := NewEncryptedData(eci).Encode()
	if err != nil {
		return nil, errors.Wrap(err, "cms: encode EncryptedData")
	}

	ci, err := NewContentInfo(ContentTypeEncryptedData, edDER)
	if err != nil {
		return nil, err
	}
	return ci.Encode()
}

// Decrypt parses a ContentTypeEncryptedData ContentInfo and decrypts it
// with key. It fails with ErrUnexpectedContentType if the message isn't
// encryptedData.
func Decrypt(key, der []byte) (innerType ContentType, plaintext []byte, err error) {
	ci, err := ParseContentInfo(der)
	if err != nil {
		return 0, nil, err
	}
	ct, err := ci.Type()
	if err != nil {
		return 0, nil, err
	}
	if ct != ContentTypeEncryptedData {
		return 0, nil, errors.Wrapf(ErrUnexpectedContentType, "cms: got %s, want encryptedData", ct)
	}

	body, err := ci.Body()
	if err != nil {
		return 0, nil, err
	}
	ed, err := ParseEncryptedData(body)
	if err != nil {
		return 0, nil, err
	}

	return decryptWithInnerType(key, ed.EncryptedContentInfo)
}

func decryptWithInnerType(key []byte, eci EncryptedContentInfo) (ContentType, []byte, error) {
	plaintext, innerType, err := DecryptEncryptedContentInfo(key, eci)
	if err != nil {
		return 0, nil, err
	}
	return innerType, plaintext, nil
}

// Seal produces a ContentTypeEnvelopedData ContentInfo: a fresh CEK and IV
// are generated, plaintext is encrypted once under the CEK, and the CEK is
// wrapped for every recipient certificate.
func Seal(recipients []*smx509.Certificate, plaintext []byte) ([]byte, error) {
	if len(recipients) == 0 {
		return nil, errors.Wrap(ErrInvalidParameter, "cms: seal requires at least one recipient")
	}

	cek, err := randomBytes(cekSize)
	if err != nil {
		return nil, err
	}
	iv, err := randomBytes(sm4BlockSize)
	if err != nil {
		return nil, err
	}

	eci, err := EncryptEncryptedContentInfo(cek, iv, ContentTypeData, plaintext, nil, nil)
	if err != nil {
		return nil, err
	}

	recipientInfos := make([]RecipientInfo, 0, len(recipients))
	for _, cert := range recipients {
		ri, err := WrapKey(cert, cek)
		if err != nil {
			return nil, err
		}
		recipientInfos = append(recipientInfos, ri)
	}

	ed, err := NewEnvelopedData(recipientInfos, eci)
	if err != nil {
		return nil, err
	}
	edDER, err := ed.Encode()
	if err != nil {
		return nil, errors.Wrap(err, "cms: encode EnvelopedData")
	}

	ci, err := NewContentInfo(ContentTypeEnvelopedData, edDER)
	if err != nil {
		return nil, err
	}
	return ci.Encode()
}

// Open parses a ContentTypeEnvelopedData ContentInfo, locates the
// RecipientInfo matching ownCert, unwraps the CEK with priv, and decrypts
// the payload. It fails with ErrCertificateNotFound if no RecipientInfo
// matches ownCert.
func Open(priv *sm2.PrivateKey, ownCert *smx509.Certificate, der []byte) (innerType ContentType, plaintext []byte, err error) {
	ci, err := ParseContentInfo(der)
	if err != nil {
		return 0, nil, err
	}
	ct, err := ci.Type()
	if err != nil {
		return 0, nil, err
	}
	if ct != ContentTypeEnvelopedData {
		return 0, nil, errors.Wrapf(ErrUnexpectedContentType, "cms: got %s, want envelopedData", ct)
	}

	body, err := ci.Body()
	if err != nil {
		return 0, nil, err
	}
	ed, err := ParseEnvelopedData(body)
	if err != nil {
		return 0, nil, err
	}

	idx := FindRecipient(ed.RecipientInfos, ownCert)
	if idx < 0 {
		return 0, nil, ErrCertificateNotFound
	}

	cek, err := UnwrapKey(priv, ed.RecipientInfos[idx])
	if err != nil {
		return 0, nil, err
	}

	return decryptWithInnerType(cek, ed.EncryptedContentInfo)
}

// Sign produces a ContentTypeSignedData ContentInfo carrying plaintext as a
// ContentTypeData inner ContentInfo, signed by every (key, cert) pair in
// signers. All signers share the one enclosed plaintext.
func Sign(signers []*sm2.PrivateKey, signerCerts []*smx509.Certificate, plaintext []byte) ([]byte, error) {
	if len(signers) == 0 || len(signers) != len(signerCerts) {
		return nil, errors.Wrap(ErrInvalidParameter, "cms: sign requires one certificate per signer key")
	}

	inner, err := NewContentInfo(ContentTypeData, plaintext)
	if err != nil {
		return nil, err
	}

	signerInfos := make([]SignerInfo, 0, len(signers))
	for i, key := range signers {
		si, err := NewSignerInfoWithMessageDigest(key, signerCerts[i], ContentTypeData, plaintext)
		if err != nil {
			return nil, err
		}
		signerInfos = append(signerInfos, si)
	}

	sd, err := NewSignedData(inner, signerCerts, signerInfos)
	if err != nil {
		return nil, err
	}
	sdDER, err := sd.Encode()
	if err != nil {
		return nil, errors.Wrap(err, "cms: encode SignedData")
	}

	ci, err := NewContentInfo(ContentTypeSignedData, sdDER)
	if err != nil {
		return nil, err
	}
	return ci.Encode()
}

// Verify parses a ContentTypeSignedData ContentInfo and checks every
// SignerInfo against a certificate located in the message's certificates
// set, returning the enclosed plaintext only when every SignerInfo
// verifies.
func Verify(der []byte) (plaintext []byte, err error) {
	ci, err := ParseContentInfo(der)
	if err != nil {
		return nil, err
	}
	ct, err := ci.Type()
	if err != nil {
		return nil, err
	}
	if ct != ContentTypeSignedData {
		return nil, errors.Wrapf(ErrUnexpectedContentType, "cms: got %s, want signedData", ct)
	}

	body, err := ci.Body()
	if err != nil {
		return nil, err
	}
	sd, err := ParseSignedData(body)
	if err != nil {
		return nil, err
	}

	content, err := sd.ContentInfo.Body()
	if err != nil {
		return nil, err
	}

	certs, err := sd.X509Certificates()
	if err != nil {
		return nil, err
	}

	for _, si := range sd.SignerInfos {
		signerCert, err := si.FindSignerCertificate(certs)
		if err != nil {
			return nil, err
		}
		if err := si.Verify(signerCert, content); err != nil {
			return nil, err
		}
	}

	return content, nil
}

// SignAndSeal produces a ContentTypeSignedAndEnvelopedData ContentInfo: a
// fresh CEK/IV is generated, plaintext is encrypted, the CEK is wrapped per
// recipient, and each signer signs the plaintext (not the ciphertext).
func SignAndSeal(recipients []*smx509.Certificate, signers []*sm2.PrivateKey, signerCerts []*smx509.Certificate, plaintext []byte) ([]byte, error) {
	if len(recipients) == 0 {
		return nil, errors.Wrap(ErrInvalidParameter, "cms: sign_and_seal requires at least one recipient")
	}
	if len(signers) == 0 || len(signers) != len(signerCerts) {
		return nil, errors.Wrap(ErrInvalidParameter, "cms: sign_and_seal requires one certificate per signer key")
	}

	cek, err := randomBytes(cekSize)
	if err != nil {
		return nil, err
	}
	iv, err := randomBytes(sm4BlockSize)
	if err != nil {
		return nil, err
	}

	eci, err := EncryptEncryptedContentInfo(cek, iv, ContentTypeData, plaintext, nil, nil)
	if err != nil {
		return nil, err
	}

	recipientInfos := make([]RecipientInfo, 0, len(recipients))
	for _, cert := range recipients {
		ri, err := WrapKey(cert, cek)
		if err != nil {
			return nil, err
		}
		recipientInfos = append(recipientInfos, ri)
	}

	signerInfos := make([]SignerInfo, 0, len(signers))
	for i, key := range signers {
		si, err := NewSignerInfoWithMessageDigest(key, signerCerts[i], ContentTypeData, plaintext)
		if err != nil {
			return nil, err
		}
		signerInfos = append(signerInfos, si)
	}

	allCerts := append(append([]*smx509.Certificate{}, recipients...), signerCerts...)

	sed, err := NewSignedAndEnvelopedData(recipientInfos, eci, allCerts, signerInfos)
	if err != nil {
		return nil, err
	}
	sedDER, err := sed.Encode()
	if err != nil {
		return nil, errors.Wrap(err, "cms: encode SignedAndEnvelopedData")
	}

	ci, err := NewContentInfo(ContentTypeSignedAndEnvelopedData, sedDER)
	if err != nil {
		return nil, err
	}
	return ci.Encode()
}

// OpenAndVerify parses a ContentTypeSignedAndEnvelopedData ContentInfo,
// unwraps the CEK for ownCert/priv, decrypts the payload, then verifies
// every SignerInfo against the recovered plaintext.
func OpenAndVerify(priv *sm2.PrivateKey, ownCert *smx509.Certificate, der []byte) (plaintext []byte, err error) {
	ci, err := ParseContentInfo(der)
	if err != nil {
		return nil, err
	}
	ct, err := ci.Type()
	if err != nil {
		return nil, err
	}
	if ct != ContentTypeSignedAndEnvelopedData {
		return nil, errors.Wrapf(ErrUnexpectedContentType, "cms: got %s, want signedAndEnvelopedData", ct)
	}

	body, err := ci.Body()
	if err != nil {
		return nil, err
	}
	sed, err := ParseSignedAndEnvelopedData(body)
	if err != nil {
		return nil, err
	}

	idx := FindRecipient(sed.RecipientInfos, ownCert)
	if idx < 0 {
		return nil, ErrCertificateNotFound
	}
	cek, err := UnwrapKey(priv, sed.RecipientInfos[idx])
	if err != nil {
		return nil, err
	}

	plaintext, _, err = DecryptEncryptedContentInfo(cek, sed.EncryptedContentInfo)
	if err != nil {
		return nil, err
	}

	certs, err := sed.X509Certificates()
	if err != nil {
		return nil, err
	}
	for _, si := range sed.SignerInfos {
		signerCert, err := si.FindSignerCertificate(certs)
		if err != nil {
			return nil, err
		}
		if err := si.Verify(signerCert, plaintext); err != nil {
			return nil, err
		}
	}

	return plaintext, nil
}
