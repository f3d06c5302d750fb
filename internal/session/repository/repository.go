package repository

import (
	"context"
	"time"

	"user-management-api/internal/session/domain"
)

// Repository defines persistence for sessions. Missing rows surface as
// (nil, nil), never as errors; errors are database failures.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// FindCurrentByAccount returns the account's current unrevoked session
	// (the reusable slot, possibly expired), newest first when duplicates
	// transiently exist, or nil.
	FindCurrentByAccount(ctx context.Context, accountID string) (*domain.Session, error)
	// Create persists a new session. Returns a conflict error when the
	// account already holds an unrevoked session (one-active-per-account
	// uniqueness lost a race).
	Create(ctx context.Context, s *domain.Session) error
	// UpdateSecret atomically replaces secret hash and expiry, clearing any
	// revocation, but only if the stored hash still equals expectedHash.
	// Returns a conflict error when a concurrent writer won.
	UpdateSecret(ctx context.Context, id, expectedHash, newHash string, expiresAt time.Time) error
	// Revoke marks the session revoked. Idempotent; an already-revoked
	// session keeps its original revocation time.
	Revoke(ctx context.Context, id string) error
}
