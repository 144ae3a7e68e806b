package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrSecretTooShort = errors.New("client secret must be at least 16 characters")

const (
	bcryptCost      = 12
	minSecretLength = 16
)

// HashSecret hashes an API client secret for storage in configuration.
func HashSecret(secret string) (string, error) {
	if len(secret) < minSecretLength {
		return "", ErrSecretTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckSecret compares a presented client secret with its stored hash.
func CheckSecret(secret, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	return err == nil
}
