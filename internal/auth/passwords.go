package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

var ErrEmptyPassword = errors.New("password must not be empty")

// Passwords hashes and verifies secrets with bcrypt. The zero value uses
// DefaultCost.
type Passwords struct {
	Cost int
}

func NewPasswords(cost int) Passwords {
	return Passwords{Cost: cost}
}

// Hash returns a salted bcrypt hash of secret. Two calls with the same
// secret return different hashes.
func (p Passwords) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptyPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), p.cost())
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether secret matches hash.
func (p Passwords) Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

func (p Passwords) cost() int {
	if p.Cost < bcrypt.MinCost || p.Cost > bcrypt.MaxCost {
		return DefaultCost
	}
	return p.Cost
}
