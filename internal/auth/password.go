// Package auth provides the session and credential machinery for the API:
// bcrypt password hashing, the password strength policy, JWT session
// tokens, and the session/CSRF/Origin HTTP middleware.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Allowed bcrypt cost range. The cost is configurable (BCRYPT_COST) so
// operators can tune hash time to their hardware, but only within a window
// that is neither crackable (<10) nor a login-time DoS (>14). Out-of-range
// values are rejected at startup, not silently clamped.
const (
	MinCost     = 10
	MaxCost     = 14
	DefaultCost = 12
)

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so that the cost can be injected —
// tests use bcrypt.MinCost to avoid paying ~250ms per hash.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the given bcrypt cost.
// Returns an error if the cost is outside [MinCost, MaxCost].
func NewPasswordService(cost int) (*PasswordService, error) {
	if cost < MinCost || cost > MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost must be between %d and %d, got %d", MinCost, MaxCost, cost)
	}
	return &PasswordService{cost: cost}, nil
}

// NewPasswordServiceForTest creates a PasswordService with bcrypt cost 4
// (the library minimum). Tests only — far too weak for production.
func NewPasswordServiceForTest() *PasswordService {
	return &PasswordService{cost: bcrypt.MinCost}
}

// Hash hashes the given plaintext password with bcrypt.
//
// The output is self-contained (salt and cost are embedded) — store it
// directly; Verify knows how to decode it.
//
// Returns an error if the plaintext exceeds 72 bytes: bcrypt silently
// truncates longer inputs, so we reject them instead of surprising callers.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt hash.
// Returns nil on match. bcrypt compares in constant time, so this is safe
// against timing attacks.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

// CheckPasswordStrength enforces the registration password policy:
// at least 8 characters with one lowercase letter, one uppercase letter,
// and one digit. Returns a client-safe error message on failure.
func CheckPasswordStrength(password string) error {
	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if len(password) < 8 || !hasLower || !hasUpper || !hasDigit {
		return errors.New("password must be at least 8 characters with an uppercase letter, a lowercase letter, and a digit")
	}
	return nil
}
