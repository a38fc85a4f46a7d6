package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secreto123", bcrypt.MinCost)
	assert.NoError(t, err)
	assert.True(t, IsBcryptHash(hash))

	ok, needsRehash := VerifyPassword(hash, "secreto123")
	assert.True(t, ok)
	assert.False(t, needsRehash)

	ok, _ = VerifyPassword(hash, "otra")
	assert.False(t, ok)
}

func TestVerifyPasswordLegacyPlaintext(t *testing.T) {
	ok, needsRehash := VerifyPassword("12345678", "12345678")
	assert.True(t, ok, "legacy plaintext credentials still authenticate")
	assert.True(t, needsRehash, "caller must persist a bcrypt hash")

	ok, _ = VerifyPassword("12345678", "wrong")
	assert.False(t, ok)

	ok, _ = VerifyPassword("", "")
	assert.False(t, ok, "empty stored credential never matches")
}

func TestIsBcryptHash(t *testing.T) {
	assert.True(t, IsBcryptHash("$2a$10$abcdefghijklmnopqrstuv"))
	assert.True(t, IsBcryptHash("$2b$12$abcdefghijklmnopqrstuv"))
	assert.True(t, IsBcryptHash("$2y$10$abcdefghijklmnopqrstuv"))
	assert.False(t, IsBcryptHash("12345678"))
	assert.False(t, IsBcryptHash(""))
}
