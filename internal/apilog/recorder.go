// Package apilog persists one record per API request: method, path, status,
// latency, caller, and the redacted request body.
package apilog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry is a single API request record. Body holds the redacted JSON request
// body, or nil when the request had none.
type Entry struct {
	ID         string
	IP         string
	Method     string
	Path       string
	Status     int
	DurationMS int64
	AccountID  string
	Body       []byte
	CreatedAt  time.Time
}

// Repository persists request log entries.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
}

// Recorder writes request log entries. Best-effort: failures are logged and
// never affect the request that produced them.
type Recorder struct {
	repo   Repository
	logger *zap.Logger
}

// NewRecorder returns a Recorder persisting to repo. repo may be nil; then
// Record is a no-op.
func NewRecorder(repo Repository, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{repo: repo, logger: logger}
}

// Record persists one entry, assigning its id and timestamp.
func (r *Recorder) Record(ctx context.Context, e *Entry) {
	if r == nil || r.repo == nil {
		return
	}
	e.ID = uuid.New().String()
	e.CreatedAt = time.Now().UTC()
	if err := r.repo.Create(ctx, e); err != nil {
		r.logger.Error("write api log", zap.Error(err))
	}
}
