package domain

import (
	"errors"
	"strings"
	"time"
)

// Account is the core user-management entity. The auth core reads
// id/email/password-hash/role/status and mutates only Status, via the
// email-verification path.
type Account struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role is the account's authorization role.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// IsValidRole reports whether r is a known role.
func IsValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleUser
}

// Status is the account lifecycle status. New accounts start pending until
// their email is verified.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// IsValidStatus reports whether s is a known status.
func IsValidStatus(s Status) bool {
	return s == StatusPending || s == StatusActive || s == StatusDisabled
}

// NormalizeEmail lowercases and trims an email address. Uniqueness is
// enforced on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate validates the account for persistence, defaulting Role and Status
// when unset. Returns the first validation failure.
func (a *Account) Validate() error {
	if a.Email == "" {
		return errors.New("email is required")
	}
	if a.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if a.Role == "" {
		a.Role = RoleUser
	}
	if !IsValidRole(a.Role) {
		return errors.New("invalid role")
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	if !IsValidStatus(a.Status) {
		return errors.New("invalid status")
	}
	return nil
}
