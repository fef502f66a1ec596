package cms

import (
	"testing"
	"time"

	"github.com/emmansun/gmsm/smx509"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guojiaxincom/gmcms/certs"
)

// go test -timeout 30s -run ^TestSignerInfoVerifyRejectsWrongDigestAlgorithm$ github.com/guojiaxincom/gmcms/cms
func TestSignerInfoVerifyRejectsWrongDigestAlgorithm(t *testing.T) {
	alice, err := certs.NewSelfSigned("alice", 1, time.Hour)
	require.NoError(t, err)

	content := []byte("msg")
	si, err := NewSignerInfo(alice.PrivateKey, alice.Certificate, content, nil)
	require.NoError(t, err)

	si.DigestAlgorithm.Algorithm = OIDSM4CBC
	err = si.Verify(alice.Certificate, content)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

// go test -timeout 30s -run ^TestSignerInfoVerifyRejectsWrongSignatureAlgorithm$ github.com/guojiaxincom/gmcms/cms
func TestSignerInfoVerifyRejectsWrongSignatureAlgorithm(t *testing.T) {
	alice, err := certs.NewSelfSigned("alice", 1, time.Hour)
	require.NoError(t, err)

	content := []byte("msg")
	si, err := NewSignerInfo(alice.PrivateKey, alice.Certificate, content, nil)
	require.NoError(t, err)

	si.DigestEncryptionAlgorithm.Algorithm = OIDSM2Encrypt
	err = si.Verify(alice.Certificate, content)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

// go test -timeout 30s -run ^TestSignerInfoVerifyRejectsWrongVersion$ github.com/guojiaxincom/gmcms/cms
func TestSignerInfoVerifyRejectsWrongVersion(t *testing.T) {
	alice, err := certs.NewSelfSigned("alice", 1, time.Hour)
	require.NoError(t, err)

	content := []byte("msg")
	si, err := NewSignerInfo(alice.PrivateKey, alice.Certificate, content, nil)
	require.NoError(t, err)

	si.Version = 0
	err = si.Verify(alice.Certificate, content)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

// go test -timeout 30s -run ^TestFindSignerCertificateMissing$ github.com/guojiaxincom/gmcms/cms
func TestFindSignerCertificateMissing(t *testing.T) {
	alice, err := certs.NewSelfSigned("alice", 1, time.Hour)
	require.NoError(t, err)
	bob, err := certs.NewSelfSigned("bob", 2, time.Hour)
	require.NoError(t, err)

	si, err := NewSignerInfo(alice.PrivateKey, alice.Certificate, []byte("msg"), nil)
	require.NoError(t, err)

	_, err = si.FindSignerCertificate([]*smx509.Certificate{bob.Certificate})
	assert.ErrorIs(t, err, ErrCertificateNotFound)
}
