package cms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyIV(t *testing.T) (key, iv []byte) {
	t.Helper()
	key = []byte("0123456789abcdef")
	iv = []byte("fedcba9876543210")
	return key, iv
}

// go test -timeout 30s -run ^TestEncryptedContentInfoRoundTrip$ github.com/guojiaxincom/gmcms/cms
func TestEncryptedContentInfoRoundTrip(t *testing.T) {
	key, iv := testKeyIV(t)
	plaintext := []byte("a message that is not block-aligned")

	eci, err := EncryptEncryptedContentInfo(key, iv, ContentTypeData, plaintext, nil, nil)
	require.NoError(t, err)

	gotIV, err := eci.IV()
	require.NoError(t, err)
	assert.Equal(t, iv, gotIV)

	decrypted, innerType, err := DecryptEncryptedContentInfo(key, eci)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeData, innerType)
	assert.Equal(t, plaintext, decrypted)
}

// go test -timeout 30s -run ^TestEncryptEncryptedContentInfoRejectsShortIV$ github.com/guojiaxincom/gmcms/cms
func TestEncryptEncryptedContentInfoRejectsShortIV(t *testing.T) {
	key, _ := testKeyIV(t)
	_, err := EncryptEncryptedContentInfo(key, []byte("short"), ContentTypeData, []byte("x"), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

// go test -timeout 30s -run ^TestDecryptEncryptedContentInfoRejectsWrongAlgorithm$ github.com/guojiaxincom/gmcms/cms
func TestDecryptEncryptedContentInfoRejectsWrongAlgorithm(t *testing.T) {
	key, iv := testKeyIV(t)
	eci, err := EncryptEncryptedContentInfo(key, iv, ContentTypeData, []byte("x"), nil, nil)
	require.NoError(t, err)

	eci.ContentEncryptionAlgorithm.Algorithm = OIDSM2Encrypt
	_, _, err = DecryptEncryptedContentInfo(key, eci)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

// go test -timeout 30s -run ^TestDecryptEncryptedContentInfoRejectsWrongKey$ github.com/guojiaxincom/gmcms/cms
func TestDecryptEncryptedContentInfoRejectsWrongKey(t *testing.T) {
	key, iv := testKeyIV(t)
	eci, err := EncryptEncryptedContentInfo(key, iv, ContentTypeData, []byte("correct horse battery staple"), nil, nil)
	require.NoError(t, err)

	wrongKey := []byte("fedcba9876543210")
	_, _, err = DecryptEncryptedContentInfo(wrongKey, eci)
	assert.ErrorIs(t, err, ErrDecryptionFailure)
}

// go test -timeout 30s -run ^TestDecryptEncryptedContentInfoRejectsMissingContent$ github.com/guojiaxincom/gmcms/cms
func TestDecryptEncryptedContentInfoRejectsMissingContent(t *testing.T) {
	key, iv := testKeyIV(t)
	eci, err := EncryptEncryptedContentInfo(key, iv, ContentTypeData, []byte("x"), nil, nil)
	require.NoError(t, err)

	eci.EncryptedContent = nil
	_, _, err = DecryptEncryptedContentInfo(key, eci)
	assert.ErrorIs(t, err, ErrMalformedStructure)
}
