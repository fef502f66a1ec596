package cms

import (
	"crypto/cipher"
	"encoding/asn1"

	"github.com/emmansun/gmsm/sm4"
	"github.com/pkg/errors"

	"github.com/guojiaxincom/gmcms/utils"
)

// sm4BlockSize is the SM4 block size in bytes; also the required IV length
// for SM4-CBC.
const sm4BlockSize = 16

// EncryptedContentInfo carries a payload encrypted under SM4-CBC, together
// with the two optional SM2-ZA-style shared-info blobs GM/T 0010 allows for
// key-derivation binding.
//
// EncryptedContentInfo ::= SEQUENCE {
//   contentType                ContentType,
//   contentEncryptionAlgorithm AlgorithmIdentifier,
//   encryptedContent       [0] IMPLICIT OCTET STRING OPTIONAL,
//   sharedInfo1            [1] IMPLICIT OCTET STRING OPTIONAL,
//   sharedInfo2            [2] IMPLICIT OCTET STRING OPTIONAL }
type EncryptedContentInfo struct {
	ContentType                asn1.ObjectIdentifier
	ContentEncryptionAlgorithm AlgorithmIdentifier
	EncryptedContent           []byte `asn1:"optional,tag:0"`
	SharedInfo1                []byte `asn1:"optional,tag:1"`
	SharedInfo2                []byte `asn1:"optional,tag:2"`
}

// IV returns the 16-byte IV carried in ContentEncryptionAlgorithm's
// parameters, failing with ErrInvalidParameter if it is absent or the
// wrong length.
func (eci EncryptedContentInfo) IV() ([]byte, error) {
	var iv []byte
	if _, err := asn1.Unmarshal(eci.ContentEncryptionAlgorithm.Parameters.FullBytes, &iv); err != nil {
		return nil, errors.Wrap(ErrInvalidParameter, "cms: missing or malformed IV")
	}
	if len(iv) != sm4BlockSize {
		return nil, errors.Wrapf(ErrInvalidParameter, "cms: IV length %d != %d", len(iv), sm4BlockSize)
	}
	return iv, nil
}

// EncryptEncryptedContentInfo performs SM4-CBC with PKCS#7 padding over
// plaintext and builds the EncryptedContentInfo structure. key must be
// exactly 16 bytes, iv exactly 16 bytes. innerType names the plaintext's
// logical content type (usually ContentTypeData).
func EncryptEncryptedContentInfo(key, iv []byte, innerType ContentType, plaintext, sharedInfo1, sharedInfo2 []byte) (EncryptedContentInfo, error) {
	if len(iv) != sm4BlockSize {
		return EncryptedContentInfo{}, errors.Wrapf(ErrInvalidParameter, "cms: IV length %d != %d", len(iv), sm4BlockSize)
	}

	block, err := sm4.NewCipher(key)
	if err != nil {
		return EncryptedContentInfo{}, errors.Wrap(ErrCryptoProvider, err.Error())
	}

	padded := utils.Pad(plaintext, sm4BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	innerOID, err := innerType.OID()
	if err != nil {
		return EncryptedContentInfo{}, err
	}

	algo, err := sm4CBCAlgorithm(iv)
	if err != nil {
		return EncryptedContentInfo{}, errors.Wrap(err, "cms: encode SM4-CBC algorithm identifier")
	}

	return EncryptedContentInfo{
		ContentType:                innerOID,
		ContentEncryptionAlgorithm: algo,
		EncryptedContent:           ciphertext,
		SharedInfo1:                sharedInfo1,
		SharedInfo2:                sharedInfo2,
	}, nil
}

// DecryptEncryptedContentInfo verifies eci's structure, requires SM4-CBC
// with a 16-byte IV, and decrypts into a freshly allocated plaintext buffer.
// It also returns the decoded inner content type.
func DecryptEncryptedContentInfo(key []byte, eci EncryptedContentInfo) (plaintext []byte, innerType ContentType, err error) {
	if !eci.ContentEncryptionAlgorithm.Algorithm.Equal(OIDSM4CBC) {
		return nil, 0, errors.Wrapf(ErrUnsupportedAlgorithm, "cms: encAlgor %s != sm4-cbc", eci.ContentEncryptionAlgorithm.Algorithm)
	}

	iv, err := eci.IV()
	if err != nil {
		return nil, 0, err
	}

	if eci.EncryptedContent == nil {
		return nil, 0, errors.Wrap(ErrMalformedStructure, "cms: encryptedContent missing")
	}
	if len(eci.EncryptedContent)%sm4BlockSize != 0 || len(eci.EncryptedContent) == 0 {
		return nil, 0, errors.Wrap(ErrMalformedStructure, "cms: encryptedContent not a multiple of the block size")
	}

	innerType, err = ParseContentTypeOID(eci.ContentType)
	if err != nil {
		return nil, 0, err
	}

	block, err := sm4.NewCipher(key)
	if err != nil {
		return nil, 0, errors.Wrap(ErrCryptoProvider, err.Error())
	}

	decrypted := make([]byte, len(eci.EncryptedContent))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(decrypted, eci.EncryptedContent)

	n, err := utils.Unpad(decrypted, sm4BlockSize)
	if err != nil {
		return nil, 0, errors.Wrap(ErrDecryptionFailure, err.Error())
	}

	return decrypted[:n], innerType, nil
}
