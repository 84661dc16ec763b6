package credential

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, salt, err := HashPassword("pw123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEmpty(t, salt)

	assert.True(t, Verify("pw123", hash, salt))
	assert.False(t, Verify("wrong", hash, salt))
	assert.False(t, Verify("pw123", hash, "othersalt"))
}

func TestHashIsSaltedPerCall(t *testing.T) {
	hash1, salt1, err := HashPassword("pw123")
	require.NoError(t, err)
	hash2, salt2, err := HashPassword("pw123")
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, hash1, hash2)
}

func TestSaltIsSixteenRandomBytes(t *testing.T) {
	_, salt, err := HashPassword("pw123")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(salt)
	require.NoError(t, err)
	assert.Len(t, raw, 16)
}

func TestNewSecurityToken(t *testing.T) {
	token1 := NewSecurityToken()
	token2 := NewSecurityToken()

	assert.NotEmpty(t, token1)
	assert.NotEqual(t, token1, token2)

	raw, err := base64.StdEncoding.DecodeString(token1)
	require.NoError(t, err)
	assert.Len(t, raw, 16)
}
