// Package repository persists API request logs to Postgres.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"user-management-api/internal/apilog"
)

// PostgresRepository implements apilog.Repository backed by the api_logs
// table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a request log repository using the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts one request log row. AccountID and Body are stored as NULL
// when empty.
func (r *PostgresRepository) Create(ctx context.Context, e *apilog.Entry) error {
	query := `INSERT INTO api_logs (id, ip, method, path, status, duration_ms, account_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	var accountID *string
	if e.AccountID != "" {
		accountID = &e.AccountID
	}
	var body []byte
	if len(e.Body) > 0 {
		body = e.Body
	}
	_, err := r.pool.Exec(ctx, query,
		e.ID, e.IP, e.Method, e.Path, e.Status, e.DurationMS, accountID, body, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create api log: %w", err)
	}
	return nil
}
