package domain

import "time"

// State is a session's lifecycle state, derived, never stored. Expired and
// Revoked are treated identically for authorization; they are distinguished
// only for diagnostics.
type State string

const (
	StateActive  State = "active"
	StateExpired State = "expired"
	StateRevoked State = "revoked"
)

// Session represents one authenticated login lineage for an account. Only
// the bcrypt hash of the current refresh secret is stored; the raw secret
// exists solely inside the refresh credential held by the client.
type Session struct {
	ID         string
	AccountID  string
	SecretHash string
	ExpiresAt  time.Time
	RevokedAt  *time.Time // nil when not revoked; once set, terminal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsActive reports whether the session is usable at now: not revoked and not
// yet expired.
func (s *Session) IsActive(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}

// StateAt returns the session's state at now, for diagnostics and logging.
func (s *Session) StateAt(now time.Time) State {
	if s.RevokedAt != nil {
		return StateRevoked
	}
	if !s.ExpiresAt.After(now) {
		return StateExpired
	}
	return StateActive
}
