package auth

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
)

// SnapshotID keys the single current snapshot. Saving under a fixed id
// makes every login a last-write-wins overwrite of the previous one.
const SnapshotID = "current"

// Domain errors
var (
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrEmptyToken       = errors.New("token cannot be empty")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrNoSession        = errors.New("no stored session")
)

// Snapshot mirrors the authenticated courier plus a capture timestamp.
// It backs the optimistic "already logged in" restart path and, via the
// password hash, lets the courier re-authenticate with no connectivity.
type Snapshot struct {
	ID           string
	Email        string
	Name         string
	Token        string
	PasswordHash string
	Timestamp    time.Time
}

// Validate checks if the Snapshot has valid data.
// PRE: Snapshot struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Snapshot) Validate() error {
	if strings.TrimSpace(s.Email) == "" {
		return ErrEmptyEmail
	}
	if len(s.Email) > MaxEmailLength {
		return errors.New("email cannot exceed 254 characters")
	}
	if !strings.Contains(s.Email, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(s.Token) == "" {
		return ErrEmptyToken
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// PRE: plaintext is non-empty and >= 8 characters
// POST: PasswordHash is set to bcrypt hash
func (s *Snapshot) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < 8 {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}
	s.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Snapshot fields are not mutated
func (s *Snapshot) CheckPassword(plaintext string) error {
	if s.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// DisplayName falls back to the email local part when no name was
// captured at login.
func (s *Snapshot) DisplayName() string {
	if strings.TrimSpace(s.Name) != "" {
		return s.Name
	}
	if at := strings.Index(s.Email, "@"); at > 0 {
		return s.Email[:at]
	}
	return s.Email
}
