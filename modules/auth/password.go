package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the cost used for stored password hashes.
const DefaultBcryptCost = 12

// PasswordHasher hashes and verifies user passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a PasswordHasher with DefaultBcryptCost.
func NewPasswordHasher() *PasswordHasher {
	return NewPasswordHasherWithCost(DefaultBcryptCost)
}

// NewPasswordHasherWithCost is used by tests to keep hashing fast.
func NewPasswordHasherWithCost(cost int) *PasswordHasher {
	return &PasswordHasher{cost: cost}
}

// Hash generates a bcrypt hash of the given password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify checks if the provided password matches the hash.
func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
