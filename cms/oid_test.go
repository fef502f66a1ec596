package cms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -timeout 30s -run ^TestContentTypeOIDRoundTrip$ github.com/guojiaxincom/gmcms/cms
func TestContentTypeOIDRoundTrip(t *testing.T) {
	types := []ContentType{
		ContentTypeData,
		ContentTypeSignedData,
		ContentTypeEnvelopedData,
		ContentTypeSignedAndEnvelopedData,
		ContentTypeEncryptedData,
		ContentTypeKeyAgreementInfo,
	}

	for _, ct := range types {
		oid, err := ct.OID()
		require.NoError(t, err, "OID() for %s", ct)

		got, err := ParseContentTypeOID(oid)
		require.NoError(t, err, "ParseContentTypeOID for %s", ct)
		assert.Equal(t, ct, got)
	}
}

// go test -timeout 30s -run ^TestContentTypeString$ github.com/guojiaxincom/gmcms/cms
func TestContentTypeString(t *testing.T) {
	assert.Equal(t, "envelopedData", ContentTypeEnvelopedData.String())
	assert.Equal(t, "unknown", ContentType(0).String())
	assert.Equal(t, "unknown", ContentType(99).String())
}

// go test -timeout 30s -run ^TestParseContentTypeOIDRejectsForeignArc$ github.com/guojiaxincom/gmcms/cms
func TestParseContentTypeOIDRejectsForeignArc(t *testing.T) {
	foreign := append(append([]int{}, gmArc...), 1)
	foreign[0] = 9 // break the arc prefix

	_, err := ParseContentTypeOID(foreign)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

// go test -timeout 30s -run ^TestParseContentTypeOIDRejectsOutOfRangeTerminal$ github.com/guojiaxincom/gmcms/cms
func TestParseContentTypeOIDRejectsOutOfRangeTerminal(t *testing.T) {
	oid := append(append([]int{}, gmArc...), 7)
	_, err := ParseContentTypeOID(oid)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

// go test -timeout 30s -run ^TestContentTypeOIDRejectsOutOfRange$ github.com/guojiaxincom/gmcms/cms
func TestContentTypeOIDRejectsOutOfRange(t *testing.T) {
	_, err := ContentType(0).OID()
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
