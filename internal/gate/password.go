package gate

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a link password with bcrypt.
// Used by the management flows that set the gate; the redirect path
// never hashes, only verifies.
func HashPassword(password string) (string, error) {
	if len(password) < 4 {
		return "", fmt.Errorf("password must be at least 4 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks a submitted password against the stored hash.
func VerifyPassword(password string, hash *string) bool {
	if hash == nil || *hash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*hash), []byte(password)) == nil
}
