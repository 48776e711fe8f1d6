// Package worker consumes query tasks from the durable task queue and runs
// them on a bounded goroutine pool.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"sqllab/internal/config"
	"sqllab/internal/domain"
	"sqllab/internal/metrics"
)

const releaseTimeout = 5 * time.Second

// Worker claims tasks and hands each to the TaskHandler on its own pool
// goroutine. A claimed task's lease is extended while it runs; a task whose
// lease cannot be extended is cancelled, since another worker may already
// hold it.
type Worker struct {
	queue   domain.TaskQueue
	handler domain.TaskHandler
	cfg     config.WorkerConfig
	owner   string
	logger  *slog.Logger

	pool  *ants.Pool
	slots chan struct{}
	wg    sync.WaitGroup
}

// New creates a Worker. Concurrency, lease, and poll interval fall back to
// sane minimums when unset.
func New(queue domain.TaskQueue, handler domain.TaskHandler, cfg config.WorkerConfig, logger *slog.Logger) (*Worker, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Lease <= 0 {
		cfg.Lease = time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}

	w := &Worker{
		queue:   queue,
		handler: handler,
		cfg:     cfg,
		owner:   ownerID(),
		slots:   make(chan struct{}, cfg.Concurrency),
	}
	w.logger = logger.With("component", "worker", "owner", w.owner)

	pool, err := ants.NewPool(cfg.Concurrency, ants.WithPanicHandler(func(v any) {
		w.logger.Error("task handler panic", "panic", v)
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	w.pool = pool
	return w, nil
}

// Owner returns the lease owner name this worker claims tasks under.
func (w *Worker) Owner() string { return w.owner }

// Run claims and executes tasks until ctx is cancelled, then waits for
// in-flight tasks to hand their leases back.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started", "concurrency", w.cfg.Concurrency)
	defer func() {
		w.wg.Wait()
		if err := w.pool.ReleaseTimeout(releaseTimeout); err != nil {
			w.logger.Warn("worker pool did not drain", "error", err)
		}
		w.logger.Info("worker stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case w.slots <- struct{}{}:
		}

		task, err := w.queue.Claim(ctx, w.owner, w.cfg.Lease)
		if err != nil || task == nil {
			<-w.slots
			if err != nil && ctx.Err() == nil {
				w.logger.Error("failed to claim task", "error", err)
			}
			if !w.idle(ctx) {
				return nil
			}
			continue
		}

		w.wg.Add(1)
		metrics.TaskStarted()
		if err := w.pool.Submit(func() {
			defer func() {
				metrics.TaskDone()
				<-w.slots
				w.wg.Done()
			}()
			w.process(ctx, task)
		}); err != nil {
			metrics.TaskDone()
			<-w.slots
			w.wg.Done()
			w.logger.Error("failed to schedule task", "task_id", task.ID, "error", err)
			w.release(task, 0)
		}
	}
}

// idle waits one poll interval. It returns false when ctx ends first.
func (w *Worker) idle(ctx context.Context) bool {
	t := time.NewTimer(w.cfg.PollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (w *Worker) process(ctx context.Context, task *domain.Task) {
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	leaseDone := make(chan struct{})
	go w.leaseLoop(taskCtx, task, cancel, leaseDone)

	w.logger.Debug("task claimed", "task_id", task.ID, "client_id", task.ClientID, "attempt", task.Attempts)
	err := w.handler.HandleTask(taskCtx, task)
	close(leaseDone)

	var transient *domain.TransientError
	switch {
	case err == nil:
		if ackErr := w.queue.Ack(context.WithoutCancel(ctx), task.ID); ackErr != nil {
			w.logger.Error("failed to acknowledge task", "task_id", task.ID, "error", ackErr)
		}
	case errors.As(err, &transient):
		w.release(task, w.cfg.RetryBackoff*time.Duration(task.Attempts))
	case ctx.Err() != nil:
		w.release(task, 0)
	case w.cfg.MaxAttempts > 0 && task.Attempts >= w.cfg.MaxAttempts:
		w.logger.Error("task failed; giving up", "task_id", task.ID, "client_id", task.ClientID, "attempt", task.Attempts, "error", err)
		w.abandon(context.WithoutCancel(ctx), task, err)
	default:
		w.logger.Error("task failed", "task_id", task.ID, "client_id", task.ClientID, "attempt", task.Attempts, "error", err)
		w.release(task, w.cfg.RetryBackoff)
	}
}

// abandon lets the handler record the failure, then acknowledges the task
// so it is not delivered again. A task whose failure could not be recorded
// is released once more instead.
func (w *Worker) abandon(ctx context.Context, task *domain.Task, cause error) {
	if err := w.handler.AbandonTask(ctx, task, cause); err != nil {
		w.logger.Error("failed to record abandoned task", "task_id", task.ID, "error", err)
		w.release(task, w.cfg.RetryBackoff)
		return
	}
	if err := w.queue.Ack(ctx, task.ID); err != nil {
		w.logger.Error("failed to acknowledge task", "task_id", task.ID, "error", err)
	}
}

// leaseLoop extends the task lease at a third of its length.
func (w *Worker) leaseLoop(ctx context.Context, task *domain.Task, cancel context.CancelFunc, done <-chan struct{}) {
	ticker := time.NewTicker(max(w.cfg.Lease/3, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := w.queue.ExtendLease(ctx, task.ID, w.owner, w.cfg.Lease)
			var conflict *domain.ConflictError
			if errors.As(err, &conflict) {
				w.logger.Warn("task lease lost; cancelling", "task_id", task.ID, "client_id", task.ClientID)
				cancel()
				return
			}
			if err != nil && ctx.Err() == nil {
				w.logger.Warn("failed to extend task lease", "task_id", task.ID, "error", err)
			}
		}
	}
}

func (w *Worker) release(task *domain.Task, after time.Duration) {
	err := w.queue.Release(context.Background(), task.ID, w.owner, after)
	var conflict *domain.ConflictError
	if err != nil && !errors.As(err, &conflict) {
		w.logger.Error("failed to release task", "task_id", task.ID, "error", err)
	}
}

func ownerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d-%s", host, os.Getpid(), uuid.NewString()[:8])
}
