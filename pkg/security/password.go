package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var (
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = fmt.Errorf("password longer than %d bytes", MaxPasswordBytes)
	ErrHashingFailed    = errors.New("password hashing failed")

	MinPasswordLen = 8
)

// PasswordHasher turns a clear-text password into a value safe to store.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher falls back to bcrypt.DefaultCost for out of range costs.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (b *bcryptHasher) Hash(password string) (string, error) {
	switch {
	case len(password) < MinPasswordLen:
		return "", ErrPasswordTooShort
	case len(password) > MaxPasswordBytes:
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailed, err)
	}
	return string(hash), nil
}
