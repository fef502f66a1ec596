package cms

import (
	"crypto/rand"

	"github.com/emmansun/gmsm/sm2"
	"github.com/emmansun/gmsm/smx509"
	"github.com/pkg/errors"
)

// RecipientInfo wraps a single recipient's view of the CEK.
//
// RecipientInfo ::= SEQUENCE {
//   version               INTEGER { v1(1) },
//   issuerAndSerialNumber IssuerAndSerialNumber,
//   keyEncryptionAlgorithm AlgorithmIdentifier,
//   encryptedKey           OCTET STRING }
type RecipientInfo struct {
	Version                int
	IssuerAndSerialNumber  IssuerAndSerialNumber
	KeyEncryptionAlgorithm AlgorithmIdentifier
	EncryptedKey           []byte
}

// WrapKey SM2-encrypts cek under recipient's public key and builds a
// RecipientInfo identifying recipient by issuer/serial. SM2 encryption
// failures are returned as ErrCryptoProvider carrying the underlying error's
// message; they are never swallowed.
func WrapKey(recipient *smx509.Certificate, cek []byte) (RecipientInfo, error) {
	pub, ok := recipient.PublicKey.(*sm2.PublicKey)
	if !ok {
		return RecipientInfo{}, errors.Wrap(ErrInvalidParameter, "cms: recipient certificate does not carry an SM2 public key")
	}

	ciphertext, err := sm2.EncryptASN1(rand.Reader, pub, cek)
	if err != nil {
		return RecipientInfo{}, errors.Wrap(ErrCryptoProvider, err.Error())
	}

	isn, err := NewIssuerAndSerialNumber(recipient)
	if err != nil {
		return RecipientInfo{}, err
	}

	return RecipientInfo{
		Version:                1,
		IssuerAndSerialNumber:  isn,
		KeyEncryptionAlgorithm: sm2KeyEncryptionAlgorithm(),
		EncryptedKey:           ciphertext,
	}, nil
}

// UnwrapKey SM2-decrypts ri.EncryptedKey with priv. It rejects any
// keyEncryptionAlgorithm other than sm2encrypt.
func UnwrapKey(priv *sm2.PrivateKey, ri RecipientInfo) ([]byte, error) {
	if ri.Version != 1 {
		return nil, errors.Wrapf(ErrInvalidParameter, "cms: recipientInfo version %d != 1", ri.Version)
	}
	if !ri.KeyEncryptionAlgorithm.Algorithm.Equal(OIDSM2Encrypt) {
		return nil, errors.Wrapf(ErrUnsupportedAlgorithm, "cms: keyEncryptionAlgorithm %s != sm2encrypt", ri.KeyEncryptionAlgorithm.Algorithm)
	}

	cek, err := sm2.DecryptASN1(priv, ri.EncryptedKey)
	if err != nil {
		return nil, errors.Wrap(ErrDecryptionFailure, err.Error())
	}
	return cek, nil
}

// FindRecipient scans recipients in wire order for the first entry matching
// cert (issuer and serial number equal), returning its index or -1.
func FindRecipient(recipients []RecipientInfo, cert *smx509.Certificate) int {
	for i, ri := range recipients {
		if ri.IssuerAndSerialNumber.Matches(cert) {
			return i
		}
	}
	return -1
}
