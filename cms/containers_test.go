package cms

import (
	"encoding/asn1"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -timeout 30s -run ^TestEncryptedDataRejectsWrongVersion$ github.com/guojiaxincom/gmcms/cms
func TestEncryptedDataRejectsWrongVersion(t *testing.T) {
	key, iv := []byte("0123456789abcdef"), []byte("fedcba9876543210")
	eci, err := EncryptEncryptedContentInfo(key, iv, ContentTypeData, []byte("x"), nil, nil)
	require.NoError(t, err)

	ed := NewEncryptedData(eci)
	ed.Version = 2

	der, err := ed.Encode()
	require.NoError(t, err)

	_, err = ParseEncryptedData(der)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

// go test -timeout 30s -run ^TestEncryptedDataRejectsTrailingBytes$ github.com/guojiaxincom/gmcms/cms
func TestEncryptedDataRejectsTrailingBytes(t *testing.T) {
	key, iv := []byte("0123456789abcdef"), []byte("fedcba9876543210")
	eci, err := EncryptEncryptedContentInfo(key, iv, ContentTypeData, []byte("x"), nil, nil)
	require.NoError(t, err)

	der, err := NewEncryptedData(eci).Encode()
	require.NoError(t, err)

	_, err = ParseEncryptedData(append(der, 0x00))
	assert.ErrorIs(t, err, ErrMalformedStructure)
}

// go test -timeout 30s -run ^TestEnvelopedDataRequiresRecipient$ github.com/guojiaxincom/gmcms/cms
func TestEnvelopedDataRequiresRecipient(t *testing.T) {
	key, iv := []byte("0123456789abcdef"), []byte("fedcba9876543210")
	eci, err := EncryptEncryptedContentInfo(key, iv, ContentTypeData, []byte("x"), nil, nil)
	require.NoError(t, err)

	_, err = NewEnvelopedData(nil, eci)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

// go test -timeout 30s -run ^TestKeyAgreementInfoRoundTrip$ github.com/guojiaxincom/gmcms/cms
func TestKeyAgreementInfoRoundTrip(t *testing.T) {
	der, err := asn1.Marshal(KeyAgreementInfo{
		Version:         1,
		TempPublicKeyR:  asn1.BitString{Bytes: []byte{0x04, 0x01, 0x02}, BitLength: 24},
		UserCertificate: asn1.RawValue{FullBytes: []byte{0x30, 0x00}},
		UserID:          []byte("user-1"),
	})
	require.NoError(t, err)

	kai, err := ParseKeyAgreementInfo(der)
	require.NoError(t, err)
	assert.Equal(t, []byte("user-1"), kai.UserID)
}

// go test -timeout 30s -run ^TestKeyAgreementInfoRejectsWrongVersion$ github.com/guojiaxincom/gmcms/cms
func TestKeyAgreementInfoRejectsWrongVersion(t *testing.T) {
	der, err := asn1.Marshal(KeyAgreementInfo{
		Version:         0,
		TempPublicKeyR:  asn1.BitString{Bytes: []byte{0x04}, BitLength: 8},
		UserCertificate: asn1.RawValue{FullBytes: []byte{0x30, 0x00}},
		UserID:          []byte("x"),
	})
	require.NoError(t, err)

	_, err = ParseKeyAgreementInfo(der)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
