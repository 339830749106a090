// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	domainerrors "encore/internal/domain/errors"
	"encore/internal/domain/service"
	"encore/internal/errors"
)

// forbiddenWords are substrings a password may never contain, matched case-insensitively.
var forbiddenWords = []string{"password", "admin", "encore"}

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher() service.PasswordHasher {
	return &bcryptHasher{cost: bcrypt.DefaultCost}
}

// NewBcryptHasherWithCost builds a hasher with a custom bcrypt cost factor.
// Lower costs speed up tests; production uses NewBcryptHasher.
func NewBcryptHasherWithCost(cost int) service.PasswordHasher {
	return &bcryptHasher{cost: cost}
}

// Hash validates the password against the strength policy and generates a
// salted bcrypt hash from it.
func (h *bcryptHasher) Hash(password string) (string, error) {
	if err := h.ValidatePasswordStrength(password); err != nil {
		return "", errors.Wrap(err, "password rejected by strength policy")
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate bcrypt hash")
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	// err is nil if the password and hash match.
	return err == nil
}

// ValidatePasswordStrength enforces the password policy: minimum length,
// mixed case, at least one number and one special character, and no
// forbidden words.
func (h *bcryptHasher) ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return errors.Wrap(domainerrors.ErrPasswordTooWeak, "password must be at least 8 characters long")
	}
	if !h.hasLowercase(password) {
		return errors.Wrap(domainerrors.ErrPasswordTooWeak, "password must contain at least one lowercase letter")
	}
	if !h.hasUppercase(password) {
		return errors.Wrap(domainerrors.ErrPasswordTooWeak, "password must contain at least one uppercase letter")
	}
	if !h.hasNumbers(password) {
		return errors.Wrap(domainerrors.ErrPasswordTooWeak, "password must contain at least one number")
	}
	if !h.hasSpecialChars(password) {
		return errors.Wrap(domainerrors.ErrPasswordTooWeak, "password must contain at least one special character")
	}
	if h.containsForbiddenWords(password, forbiddenWords) {
		return errors.Wrap(domainerrors.ErrPasswordForbiddenWords, "password contains forbidden words")
	}

	return nil
}

func (h *bcryptHasher) hasUppercase(s string) bool {
	return strings.ContainsFunc(s, unicode.IsUpper)
}

func (h *bcryptHasher) hasLowercase(s string) bool {
	return strings.ContainsFunc(s, unicode.IsLower)
}

func (h *bcryptHasher) hasNumbers(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit)
}

func (h *bcryptHasher) hasSpecialChars(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func (h *bcryptHasher) containsForbiddenWords(s string, words []string) bool {
	lowered := strings.ToLower(s)
	for _, word := range words {
		if strings.Contains(lowered, word) {
			return true
		}
	}

	return false
}
