package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sqllab/internal/domain"
)

var _ domain.TaskQueue = (*TaskQueueRepo)(nil)

// TaskQueueRepo is a durable, lease-based task queue stored in the metastore.
// A claimed task stays invisible to other workers until its lease expires;
// acknowledged tasks are deleted.
type TaskQueueRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewTaskQueueRepo creates a new TaskQueueRepo.
func NewTaskQueueRepo(db *sql.DB) *TaskQueueRepo {
	return &TaskQueueRepo{db: db, now: time.Now}
}

// SetClock overrides the time source used for leases.
func (r *TaskQueueRepo) SetClock(now func() time.Time) {
	r.now = now
}

// Publish enqueues a task for its query. Publishing the same query twice is
// a no-op.
func (r *TaskQueueRepo) Publish(ctx context.Context, task *domain.Task) error {
	if task == nil || task.QueryID == 0 {
		return domain.ErrValidation("task must reference a query")
	}
	now := toMillis(r.now())
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO query_tasks (query_id, client_id, attempts, available_at, created_at)
		VALUES (?, ?, 0, ?, ?)
		ON CONFLICT(query_id) DO NOTHING
	`, task.QueryID, task.ClientID, now, now)
	if err != nil {
		return fmt.Errorf("publish task: %w", mapDBError(err))
	}
	return nil
}

// Claim leases the oldest available task to owner. It returns a nil task
// when nothing is available.
func (r *TaskQueueRepo) Claim(ctx context.Context, owner string, lease time.Duration) (*domain.Task, error) {
	now := r.now()
	expiry := now.Add(lease)

	var (
		t       domain.Task
		created int64
	)
	err := r.db.QueryRowContext(ctx, `
		UPDATE query_tasks
		SET lease_owner = ?, lease_expires_at = ?, attempts = attempts + 1
		WHERE id = (
			SELECT id FROM query_tasks
			WHERE available_at <= ? AND (lease_owner IS NULL OR lease_expires_at < ?)
			ORDER BY available_at, id
			LIMIT 1
		)
		RETURNING id, query_id, client_id, attempts, created_at
	`, owner, toMillis(expiry), toMillis(now), toMillis(now)).Scan(&t.ID, &t.QueryID, &t.ClientID, &t.Attempts, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim task: %w", err)
	}
	t.LeaseOwner = &owner
	t.LeaseExpiry = &expiry
	t.CreatedAt = fromMillis(created)
	return &t, nil
}

// ExtendLease pushes the lease expiry forward. It returns a ConflictError if
// owner no longer holds the lease.
func (r *TaskQueueRepo) ExtendLease(ctx context.Context, taskID int64, owner string, lease time.Duration) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE query_tasks SET lease_expires_at = ?
		WHERE id = ? AND lease_owner = ?
	`, toMillis(r.now().Add(lease)), taskID, owner)
	if err != nil {
		return mapDBError(err)
	}
	return requireOneRow(res, "task %d lease is no longer held by %s", taskID, owner)
}

// Ack removes a completed task.
func (r *TaskQueueRepo) Ack(ctx context.Context, taskID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM query_tasks WHERE id = ?`, taskID); err != nil {
		return mapDBError(err)
	}
	return nil
}

// Release returns a leased task to the queue, visible again after retryAfter.
func (r *TaskQueueRepo) Release(ctx context.Context, taskID int64, owner string, retryAfter time.Duration) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE query_tasks
		SET lease_owner = NULL, lease_expires_at = NULL, available_at = ?
		WHERE id = ? AND lease_owner = ?
	`, toMillis(r.now().Add(retryAfter)), taskID, owner)
	if err != nil {
		return mapDBError(err)
	}
	return requireOneRow(res, "task %d lease is no longer held by %s", taskID, owner)
}

// Depth returns the number of tasks waiting or in flight.
func (r *TaskQueueRepo) Depth(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM query_tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func requireOneRow(res sql.Result, format string, args ...interface{}) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrConflict(format, args...)
	}
	return nil
}
