package authservice

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// HashSecret returns the bcrypt hash stored in ADMIN_PASSWORD_HASH.
func HashSecret(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
}

// compare runs in constant time with respect to the stored hash.
func (s *secret) compare(plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(s.hash, []byte(plain))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}

	return true, nil
}
