package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("secret123456")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123456", hash)

	assert.True(t, Verify("secret123456", hash))
	assert.False(t, Verify("wrong-password", hash))
	assert.False(t, Verify("secret123456", "not-a-bcrypt-hash"))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("secret123456")
	require.NoError(t, err)
	second, err := Hash("secret123456")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashToken(t *testing.T) {
	h := HashToken("some-refresh-token")

	// SHA256 hex digest, stable across calls
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashToken("some-refresh-token"))
	assert.NotEqual(t, h, HashToken("other-token"))
}
