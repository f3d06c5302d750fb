package repository

import (
	"context"

	"user-management-api/internal/account/domain"
)

// Repository defines persistence for accounts. Missing rows surface as
// (nil, nil), never as errors; errors are database failures.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	// Create persists the account. Returns a conflict error when the email
	// is already taken.
	Create(ctx context.Context, a *domain.Account) error
	Update(ctx context.Context, a *domain.Account) error
	// UpdateStatus transitions the account's status (the email-verification
	// path). Returns the updated account, or nil if the account is gone.
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
}
