package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"user-management-api/internal/account/domain"
	"user-management-api/internal/apperr"
)

const uniqueViolation = "23505"

// PostgresRepository implements Repository backed by the accounts table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns an account repository using the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const accountColumns = `id, email, first_name, last_name, password_hash, role, status, created_at, updated_at`

// GetByID returns the account for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	a, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

// GetByEmail returns the account with the given (normalized) email, or nil.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	a, err := scanAccount(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}

// List returns all accounts, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("list accounts: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

// Create persists the account. The unique index on email turns duplicate
// registration into a conflict error.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (id, email, first_name, last_name, password_hash, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Email, a.FirstName, a.LastName, a.PasswordHash, a.Role, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Wrap(apperr.KindConflict, "email already in use", err)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// Update updates the mutable account fields.
func (r *PostgresRepository) Update(ctx context.Context, a *domain.Account) error {
	query := `UPDATE accounts
		SET email = $2, first_name = $3, last_name = $4, password_hash = $5, role = $6, status = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Email, a.FirstName, a.LastName, a.PasswordHash, a.Role, a.Status, a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Wrap(apperr.KindConflict, "email already in use", err)
		}
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

// UpdateStatus transitions the account's status and returns the updated row,
// or nil if the account no longer exists.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Account, error) {
	query := `UPDATE accounts SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + accountColumns
	a, err := scanAccount(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update account status: %w", err)
	}
	return a, nil
}

// Delete removes the account. Sessions are cascaded by the schema.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(&a.ID, &a.Email, &a.FirstName, &a.LastName, &a.PasswordHash, &a.Role, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}
