package credential

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func fastArgon2id() *Argon2idHasher {
	return NewArgon2idHasher(Argon2idParams{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32})
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	ok, err := h.Verify("secret", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Verify("secret", "not-a-hash")
	assert.Error(t, err)
}

func TestArgon2idHasher(t *testing.T) {
	h := fastArgon2id()

	hash, err := h.Hash("secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := h.Verify("secret", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2idHasher_SaltsDiffer(t *testing.T) {
	h := fastArgon2id()
	a, err := h.Hash("secret")
	require.NoError(t, err)
	b, err := h.Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestArgon2idHasher_MalformedHash(t *testing.T) {
	h := fastArgon2id()
	for _, hash := range []string{
		"",
		"$argon2id$v=19$m=1024,t=1,p=1$onlyfive",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$garbage$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
	} {
		_, err := h.Verify("secret", hash)
		assert.Error(t, err, "hash %q", hash)
	}
}

func TestNewHasher_VerifiesEitherFormat(t *testing.T) {
	bcryptHash, err := NewBcryptHasher(bcrypt.MinCost).Hash("secret")
	require.NoError(t, err)
	argonHash, err := DefaultArgon2idHasher().Hash("secret")
	require.NoError(t, err)

	for _, name := range []string{HasherBcrypt, HasherArgon2id} {
		h, err := NewHasher(name, bcrypt.MinCost)
		require.NoError(t, err)

		ok, err := h.Verify("secret", bcryptHash)
		require.NoError(t, err)
		assert.True(t, ok, "%s verifying bcrypt", name)

		ok, err = h.Verify("secret", argonHash)
		require.NoError(t, err)
		assert.True(t, ok, "%s verifying argon2id", name)
	}
}

func TestNewHasher_SelectsPrimary(t *testing.T) {
	h, err := NewHasher(HasherArgon2id, 0)
	require.NoError(t, err)
	hash, err := h.Hash("secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, argon2idPrefix))

	h, err = NewHasher(HasherBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	hash, err = h.Hash("secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
}

func TestNewHasher_Unknown(t *testing.T) {
	_, err := NewHasher("md5", 0)
	assert.Error(t, err)
}
