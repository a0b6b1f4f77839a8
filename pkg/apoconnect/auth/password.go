package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used unless BCRYPT_COST overrides it
const DefaultBcryptCost = 12

var bcryptCost = DefaultBcryptCost

// SetBcryptCost changes the work factor for new hashes.
// Values outside bcrypt's range fall back to the default.
func SetBcryptCost(cost int) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	bcryptCost = cost
}

// HashPassword hashes a plain-text password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plain-text password with a bcrypt hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
