package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// dummyPasswordHash is compared against when the account does not exist so
// that unknown emails take as long to reject as wrong passwords.
var dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// VerifyPassword reports whether password matches hash. A nil hash is checked
// against a dummy value and always fails.
func VerifyPassword(hash []byte, password string) bool {
	if len(hash) == 0 {
		_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
