package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type (
	// Hasher derives and checks salted one-way password hashes.
	Hasher interface {
		Hash(plaintext string) (string, error)
		Verify(plaintext string, hash string) (bool, error)
	}

	bcryptHasher struct {
		cost int
	}
)

// NewHasher returns a bcrypt backed Hasher. Every call to Hash picks a
// fresh salt, so the same plaintext never hashes to the same string
// twice.
func NewHasher() Hasher {
	return bcryptHasher{cost: bcrypt.DefaultCost}
}

func (b bcryptHasher) Hash(plaintext string) (string, error) {
	buf, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", fmt.Errorf("unable to hash password, cause %w", err)
	}
	return string(buf), nil
}

// Verify reports whether plaintext matches hash. A mismatch is a plain
// false, only a malformed stored hash is an error.
func (b bcryptHasher) Verify(plaintext string, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("unable to verify password against stored hash, cause %w", err)
	}
	return true, nil
}
