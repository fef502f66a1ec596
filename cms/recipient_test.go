package cms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guojiaxincom/gmcms/certs"
)

// go test -timeout 30s -run ^TestWrapUnwrapKeyRoundTrip$ github.com/guojiaxincom/gmcms/cms
func TestWrapUnwrapKeyRoundTrip(t *testing.T) {
	bob, err := certs.NewSelfSigned("bob", 1, time.Hour)
	require.NoError(t, err)

	cek := []byte("0123456789abcdef")
	ri, err := WrapKey(bob.Certificate, cek)
	require.NoError(t, err)
	assert.Equal(t, 1, ri.Version)

	got, err := UnwrapKey(bob.PrivateKey, ri)
	require.NoError(t, err)
	assert.Equal(t, cek, got)
}

// go test -timeout 30s -run ^TestUnwrapKeyRejectsWrongAlgorithm$ github.com/guojiaxincom/gmcms/cms
func TestUnwrapKeyRejectsWrongAlgorithm(t *testing.T) {
	bob, err := certs.NewSelfSigned("bob", 1, time.Hour)
	require.NoError(t, err)

	ri, err := WrapKey(bob.Certificate, []byte("0123456789abcdef"))
	require.NoError(t, err)

	ri.KeyEncryptionAlgorithm.Algorithm = OIDSM4CBC
	_, err = UnwrapKey(bob.PrivateKey, ri)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

// go test -timeout 30s -run ^TestFindRecipient$ github.com/guojiaxincom/gmcms/cms
func TestFindRecipient(t *testing.T) {
	alice, err := certs.NewSelfSigned("alice", 1, time.Hour)
	require.NoError(t, err)
	bob, err := certs.NewSelfSigned("bob", 2, time.Hour)
	require.NoError(t, err)
	carol, err := certs.NewSelfSigned("carol", 3, time.Hour)
	require.NoError(t, err)

	aliceRI, err := WrapKey(alice.Certificate, []byte("0123456789abcdef"))
	require.NoError(t, err)
	bobRI, err := WrapKey(bob.Certificate, []byte("0123456789abcdef"))
	require.NoError(t, err)

	recipients := []RecipientInfo{aliceRI, bobRI}
	assert.Equal(t, 0, FindRecipient(recipients, alice.Certificate))
	assert.Equal(t, 1, FindRecipient(recipients, bob.Certificate))
	assert.Equal(t, -1, FindRecipient(recipients, carol.Certificate))
}
