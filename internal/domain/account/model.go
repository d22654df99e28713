package account

import (
	"errors"
	"net/mail"
	"slices"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	MaxEmailLength       = 254
	MaxDisplayNameLength = 80
	MinPasswordLength    = 12
	MaxFailedLogins      = 5
	LockoutDuration      = 15 * time.Minute
	bcryptCost           = 12
)

// Admins moderate the boards; judges score ideas.
const (
	RoleAdmin = "admin"
	RoleJudge = "judge"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleJudge}

var (
	ErrInvalidEmail     = errors.New("email is not a valid address")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrEmailTooLong     = errors.New("email cannot exceed 254 characters")
	ErrNameTooLong      = errors.New("display name cannot exceed 80 characters")
	ErrInvalidRole      = errors.New("role must be one of: admin, judge")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrWrongPassword    = errors.New("incorrect password")
)

// Account is an organiser login.
type Account struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	FailedLogins int
	LockedUntil  time.Time
}

// Validate checks the editable fields.
// PRE: Email is already trimmed
func (a *Account) Validate() error {
	switch {
	case a.Email == "":
		return ErrEmptyEmail
	case len(a.Email) > MaxEmailLength:
		return ErrEmailTooLong
	case !isAddress(a.Email):
		return ErrInvalidEmail
	case len(a.DisplayName) > MaxDisplayNameLength:
		return ErrNameTooLong
	case !slices.Contains(ValidRoles, a.Role):
		return ErrInvalidRole
	}
	return nil
}

// isAddress accepts a bare address only, never "Name <addr>".
func isAddress(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, "@")
}

// CheckPasswordPolicy reports why plaintext cannot be used, or nil.
func CheckPasswordPolicy(plaintext string) error {
	switch {
	case plaintext == "":
		return ErrEmptyPassword
	case len(plaintext) < MinPasswordLength:
		return ErrPasswordTooShort
	}
	return nil
}

// SetPassword stores a bcrypt hash of plaintext.
// PRE: plaintext passes CheckPasswordPolicy
// POST: PasswordHash replaced; failures and lock cleared
func (a *Account) SetPassword(plaintext string) error {
	if err := CheckPasswordPolicy(plaintext); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	a.ClearFailures()
	return nil
}

// CheckPassword returns ErrWrongPassword unless plaintext matches the hash.
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)) != nil {
		return ErrWrongPassword
	}
	return nil
}

// LockedAt reports whether logins are refused at now.
func (a *Account) LockedAt(now time.Time) bool {
	return now.Before(a.LockedUntil)
}

// FailLogin counts a wrong password at now and reports whether that
// failure locked the account.
// POST: the MaxFailedLogins-th consecutive failure locks for LockoutDuration
func (a *Account) FailLogin(now time.Time) bool {
	a.FailedLogins++
	if a.FailedLogins < MaxFailedLogins {
		return false
	}
	a.LockedUntil = now.Add(LockoutDuration)
	return true
}

// ClearFailures forgets earlier wrong passwords and lifts any lock.
func (a *Account) ClearFailures() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}

// IsAdmin reports whether the account may moderate.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanJudge is true for judges and admins.
func (a *Account) CanJudge() bool {
	return a.Role == RoleJudge || a.IsAdmin()
}
