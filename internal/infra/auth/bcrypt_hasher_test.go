package auth

import (
	"testing"

	domainerrors "encore/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := NewBcryptHasher()

	// Test valid strong password
	strongPassword := "StrongPhrase123!"
	hash, err := hasher.Hash(strongPassword)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, strongPassword, hash)

	// Verify the hash can be checked
	assert.True(t, hasher.Check(strongPassword, hash))
}

func TestBcryptHasher_HashWithWeakPassword(t *testing.T) {
	hasher := NewBcryptHasher()

	// Weak passwords that should fail validation
	weakPasswords := []string{
		"123",          // Too short
		"password",     // Forbidden word
		"SECRETKEY123", // No lowercase
		"secretkey123", // No uppercase
		"SecretKeyABC", // No numbers
		"SecretKey123", // No special characters
	}

	for _, weakPassword := range weakPasswords {
		_, err := hasher.Hash(weakPassword)
		assert.Error(t, err, "Expected error for weak password: %s", weakPassword)
	}
}

func TestBcryptHasher_Check(t *testing.T) {
	hasher := NewBcryptHasher()
	password := "StrongPhrase123!"

	hash, err := hasher.Hash(password)
	assert.NoError(t, err)

	// Test correct password
	assert.True(t, hasher.Check(password, hash))

	// Test incorrect password
	assert.False(t, hasher.Check("WrongPhrase123!", hash))

	// Test empty password
	assert.False(t, hasher.Check("", hash))

	// Test with invalid hash
	assert.False(t, hasher.Check(password, "invalid_hash"))
}

func TestBcryptHasher_ValidatePasswordStrength(t *testing.T) {
	hasher := NewBcryptHasher()

	validPasswords := []string{
		"StrongPhrase123!",
		"MySecure@Key1",
		"Complex#Secret9",
		"Valid$Phrase2024",
	}

	for _, password := range validPasswords {
		err := hasher.ValidatePasswordStrength(password)
		assert.NoError(t, err, "Expected no error for valid password: %s", password)
	}

	testCases := []struct {
		password    string
		expectedErr string
	}{
		{"123", "must be at least 8 characters long"},
		{"SECRETKEY123!", "must contain at least one lowercase letter"},
		{"secretkey123!", "must contain at least one uppercase letter"},
		{"SecretKeyABC!", "must contain at least one number"},
		{"SecretKey123", "must contain at least one special character"},
		{"Password123!", "contains forbidden words"},
		{"MyAdmin123!", "contains forbidden words"},
	}

	for _, tc := range testCases {
		err := hasher.ValidatePasswordStrength(tc.password)
		assert.Error(t, err, "Expected error for password: %s", tc.password)
		assert.Contains(t, err.Error(), tc.expectedErr, "Error message should contain: %s", tc.expectedErr)
	}
}

func TestBcryptHasher_WithCustomCost(t *testing.T) {
	customCost := 6 // Lower cost for faster testing
	hasher := NewBcryptHasherWithCost(customCost)

	password := "StrongPhrase123!"
	hash, err := hasher.Hash(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)

	// Verify the hash uses the correct cost
	cost, err := bcrypt.Cost([]byte(hash))
	assert.NoError(t, err)
	assert.Equal(t, customCost, cost)

	assert.True(t, hasher.Check(password, hash))
}

func TestBcryptHasher_PasswordStrengthHelpers(t *testing.T) {
	hasher := &bcryptHasher{cost: bcrypt.MinCost}

	assert.True(t, hasher.hasUppercase("Secret"))
	assert.False(t, hasher.hasUppercase("secret"))

	assert.True(t, hasher.hasLowercase("Secret"))
	assert.False(t, hasher.hasLowercase("SECRET"))

	assert.True(t, hasher.hasNumbers("Secret123"))
	assert.False(t, hasher.hasNumbers("Secret"))

	assert.True(t, hasher.hasSpecialChars("Secret!"))
	assert.False(t, hasher.hasSpecialChars("Secret"))

	words := []string{"password", "admin"}
	assert.True(t, hasher.containsForbiddenWords("MyPassword123", words))
	assert.True(t, hasher.containsForbiddenWords("AdminUser", words))
	assert.False(t, hasher.containsForbiddenWords("SecureKey123", words))
}

func TestBcryptHasher_EdgeCases(t *testing.T) {
	hasher := NewBcryptHasher()

	// Empty password
	err := hasher.ValidatePasswordStrength("")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "must be at least 8 characters long")

	// Forbidden product name
	err = hasher.ValidatePasswordStrength("MyEncore123!")
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordForbiddenWords))

	// Unicode characters are fine
	err = hasher.ValidatePasswordStrength("Pässphräse123!")
	assert.NoError(t, err)

	// Only special characters fails the letter/number rules
	err = hasher.ValidatePasswordStrength("!@#$%^&*()")
	assert.Error(t, err)
}
