package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptMaxBytes is the input limit of the bcrypt algorithm.
const bcryptMaxBytes = 72

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	Cost   int
	Policy Policy
}

// Hash validates the password against the policy and returns a bcrypt hash.
func (h BcryptHasher) Hash(password string) (string, error) {
	if err := h.Policy.Validate(password); err != nil {
		return "", err
	}
	if len(password) > bcryptMaxBytes {
		return "", ErrPasswordTooLong
	}

	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

// Verify compares password against a bcrypt hash in constant time.
func (h BcryptHasher) Verify(encodedHash, password string) (bool, error) {
	if _, err := bcrypt.Cost([]byte(encodedHash)); err != nil {
		return false, ErrInvalidHash
	}

	// bcrypt reads only the first 72 bytes; longer input must never match.
	// The compare still runs so the rejection costs the same as a mismatch.
	if len(password) > bcryptMaxBytes {
		_ = bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password[:bcryptMaxBytes]))
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrInvalidHash
	}
}
