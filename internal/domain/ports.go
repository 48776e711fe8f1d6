package domain

import (
	"context"
	"time"
)

// QueryExecutor runs SQL against a registered database and materializes the
// result. Implemented by engine.Executor. The deadline travels on ctx.
type QueryExecutor interface {
	Execute(ctx context.Context, db *Database, schema *string, sql string) (*ResultSet, error)
}

// ResultsBackend is a keyed blob store for compressed result payloads. Get
// reports absence with found=false, never with an error.
type ResultsBackend interface {
	Put(ctx context.Context, key string, payload []byte) error
	Get(ctx context.Context, key string) (payload []byte, found bool, err error)
}

// TaskQueue is the durable hand-off between the dispatcher and workers.
// Delivery is at-least-once: a claimed task whose lease expires is handed
// out again.
type TaskQueue interface {
	Publish(ctx context.Context, task *Task) error
	Claim(ctx context.Context, owner string, lease time.Duration) (*Task, error)
	ExtendLease(ctx context.Context, taskID int64, owner string, lease time.Duration) error
	Ack(ctx context.Context, taskID int64) error
	Release(ctx context.Context, taskID int64, owner string, retryAfter time.Duration) error
}

// TaskHandler executes one claimed task. Implemented by query.QueryService.
// A nil error acknowledges the task; a *TransientError asks for a later
// attempt; any other error releases the task until its delivery count
// reaches the worker's attempt cap, at which point AbandonTask is called and
// the task is acknowledged.
type TaskHandler interface {
	HandleTask(ctx context.Context, task *Task) error
	AbandonTask(ctx context.Context, task *Task, cause error) error
}
