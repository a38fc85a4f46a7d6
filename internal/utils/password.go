package utils

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a stored credential against the supplied
// password. Databases migrated from the first deployments still carry
// plaintext credentials, so when the stored value is not a bcrypt hash we
// fall back to constant equality. The second return value reports whether
// the credential needs rehashing; callers should persist a bcrypt hash on
// successful legacy logins so the fallback path eventually dies out.
func VerifyPassword(stored, plain string) (ok bool, needsRehash bool) {
	if IsBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil, false
	}
	ok = stored != "" && subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1
	return ok, true
}

// IsBcryptHash reports whether the stored credential looks like a bcrypt
// hash rather than a legacy plaintext value.
func IsBcryptHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}
