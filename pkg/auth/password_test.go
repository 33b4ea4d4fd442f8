package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher_HashAndVerify(t *testing.T) {
	hasher := NewHasher(4) // min cost keeps the test fast

	hash, err := hasher.Hash("pw123456")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "pw123456", hash)

	assert.True(t, hasher.Verify(hash, "pw123456"))
	assert.False(t, hasher.Verify(hash, "pw1234567"))
}

func TestHasher_Hash_SaltedOutputsDiffer(t *testing.T) {
	hasher := NewHasher(4)

	first, err := hasher.Hash("pw123456")
	require.NoError(t, err)
	second, err := hasher.Hash("pw123456")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify(first, "pw123456"))
	assert.True(t, hasher.Verify(second, "pw123456"))
}

func TestHasher_Hash_EmptyPassword(t *testing.T) {
	hasher := NewHasher(4)

	_, err := hasher.Hash("")
	assert.Error(t, err)
}

func TestHasher_Verify_MalformedHash(t *testing.T) {
	hasher := NewHasher(4)

	// A corrupted stored hash must read as a non-match, not a panic or error.
	assert.False(t, hasher.Verify("not-a-bcrypt-hash", "pw123456"))
	assert.False(t, hasher.Verify("", "pw123456"))
}

func TestNewHasher_ClampsCost(t *testing.T) {
	hasher := NewHasher(99)

	hash, err := hasher.Hash("pw123456")
	require.NoError(t, err)
	assert.True(t, hasher.Verify(hash, "pw123456"))
}

func TestGenerateResetToken_Unique(t *testing.T) {
	first, err := GenerateResetToken()
	require.NoError(t, err)
	second, err := GenerateResetToken()
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
