package auth

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// VerifyPassword reports whether plain matches hashed. Errors other than a mismatch are returned.
func VerifyPassword(hashed, plain string) (bool, error) {
	err := ComparePassword(hashed, plain)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// BurnCompare spends one bcrypt comparison at the given cost so that
// logins for unknown names take as long as a wrong password.
func BurnCompare(plain string, cost int) {
	dummyOnce.Do(func() {
		h, err := HashPassword("not-a-real-password", cost)
		if err == nil {
			dummyHash = h
		}
	})
	if dummyHash != "" {
		_ = ComparePassword(dummyHash, plain)
	}
}
