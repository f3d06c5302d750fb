package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"user-management-api/internal/apperr"
	"user-management-api/internal/session/domain"
)

const uniqueViolation = "23505"

// PostgresRepository implements Repository backed by the sessions table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a session repository using the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const sessionColumns = `id, account_id, secret_hash, expires_at, revoked_at, created_at, updated_at`

// GetByID returns the session for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	s, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}
	return s, nil
}

// FindCurrentByAccount returns the account's newest unrevoked session, or
// nil. Newest-first ordering is the documented tie-break for rows that exist
// transiently under concurrent logins.
func (r *PostgresRepository) FindCurrentByAccount(ctx context.Context, accountID string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE account_id = $1 AND revoked_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	s, err := scanSession(r.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find current session: %w", err)
	}
	return s, nil
}

// Create persists a new session. The partial unique index on
// (account_id) WHERE revoked_at IS NULL turns a concurrent create into a
// conflict error so exactly one of two racing logins wins.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	query := `INSERT INTO sessions (id, account_id, secret_hash, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`
	_, err := r.pool.Exec(ctx, query, s.ID, s.AccountID, s.SecretHash, s.ExpiresAt, s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Wrap(apperr.KindConflict, "account already has an active session", err)
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// UpdateSecret is the conditional write for login's slot reuse: the update
// lands only if the stored secret hash is still expectedHash, and it
// reactivates the row. Only a fresh, authenticated login may clear
// revoked_at; rotation goes through RotateSecret.
func (r *PostgresRepository) UpdateSecret(ctx context.Context, id, expectedHash, newHash string, expiresAt time.Time) error {
	query := `UPDATE sessions
		SET secret_hash = $3, expires_at = $4, revoked_at = NULL, updated_at = now()
		WHERE id = $1 AND secret_hash = $2`
	tag, err := r.pool.Exec(ctx, query, id, expectedHash, newHash, expiresAt)
	if err != nil {
		return fmt.Errorf("update session secret: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.KindConflict, "session was modified concurrently")
	}
	return nil
}

// RotateSecret is the conditional write for refresh rotation. It requires
// the row to still be unrevoked and leaves revoked_at untouched, so a
// revocation committed between the caller's read and this write makes the
// rotation lose rather than resurrect the session.
func (r *PostgresRepository) RotateSecret(ctx context.Context, id, expectedHash, newHash string, expiresAt time.Time) error {
	query := `UPDATE sessions
		SET secret_hash = $3, expires_at = $4, updated_at = now()
		WHERE id = $1 AND secret_hash = $2 AND revoked_at IS NULL`
	tag, err := r.pool.Exec(ctx, query, id, expectedHash, newHash, expiresAt)
	if err != nil {
		return fmt.Errorf("rotate session secret: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.KindConflict, "session was modified concurrently")
	}
	return nil
}

// Revoke marks the session revoked, keeping the first revocation timestamp.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	query := `UPDATE sessions
		SET revoked_at = COALESCE(revoked_at, now()), updated_at = now()
		WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	s := &domain.Session{}
	err := row.Scan(&s.ID, &s.AccountID, &s.SecretHash, &s.ExpiresAt, &s.RevokedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}
