package domain

import (
	"context"
	"time"
)

// QueryRepository persists query records. Every status mutation is a
// conditional write on the allowed source statuses; a write that loses a
// race returns a ConflictError and changes nothing.
type QueryRepository interface {
	Create(ctx context.Context, q *Query) (*Query, error)
	GetByID(ctx context.Context, id int64) (*Query, error)
	GetByClientID(ctx context.Context, clientID string) (*Query, error)
	GetByResultsKey(ctx context.Context, key string) (*Query, error)
	MarkRunning(ctx context.Context, id int64) error
	MarkSucceeded(ctx context.Context, id int64, resultsKey string, rowCount int) error
	MarkFailed(ctx context.Context, id int64, message string) error
	Stop(ctx context.Context, id int64) (*Query, error)
	UpdateProgress(ctx context.Context, id int64, progress int, trackingURL *string) error
	ListUpdatedSince(ctx context.Context, userID string, since time.Time) ([]Query, error)
	Search(ctx context.Context, scope QueryScope, filter QueryFilter) ([]Query, int64, error)
	FailStale(ctx context.Context, idleSince time.Time, message string) (int64, error)
}

// DatabaseRepository persists external database registrations.
type DatabaseRepository interface {
	Create(ctx context.Context, db *Database) (*Database, error)
	GetByID(ctx context.Context, id int64) (*Database, error)
	GetByName(ctx context.Context, name string) (*Database, error)
	List(ctx context.Context, page PageRequest) ([]Database, int64, error)
	Upsert(ctx context.Context, db *Database) (*Database, error)
}
