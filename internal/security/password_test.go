package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lightParams = Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPasswordWithParams("secret1", lightParams)
	require.NoError(t, err)
	assert.Contains(t, string(hash), "$argon2id$")

	ok, err := VerifyPassword("secret1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("secret2", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_SaltedPerHash(t *testing.T) {
	first, err := HashPasswordWithParams("secret1", lightParams)
	require.NoError(t, err)
	second, err := HashPasswordWithParams("secret1", lightParams)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	_, err := VerifyPassword("secret1", []byte("not-a-hash"))
	assert.Error(t, err)
}
