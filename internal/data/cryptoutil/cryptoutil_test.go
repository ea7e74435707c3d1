package cryptoutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
	assert.True(t, h.Compare(hash, "admin123"))
	assert.False(t, h.Compare(hash, "admin124"))
	assert.False(t, h.Compare("not-a-hash", "admin123"))

	again, err := h.Hash("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salted hashes differ")
}

func TestNewBcryptHasher_Cost(t *testing.T) {
	h, err := NewBcryptHasher(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, h.Cost())

	_, err = NewBcryptHasher(2)
	require.Error(t, err)
	_, err = NewBcryptHasher(bcrypt.MaxCost + 1)
	require.Error(t, err)
}

func TestBcryptHasher_TooLong(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	_, err = h.Hash(strings.Repeat("x", 73))
	require.ErrorIs(t, err, ErrSecretTooLong)
}
