package query

import (
	"context"
	"errors"
	"strings"
	"time"

	"sqllab/internal/domain"
	"sqllab/internal/metrics"
)

const defaultHeartbeatInterval = 1 * time.Second

var _ domain.TaskHandler = (*QueryService)(nil)

// HandleTask executes the query behind a claimed task. Tasks for finished
// queries are acknowledged without running anything, so redelivery is
// harmless.
func (s *QueryService) HandleTask(ctx context.Context, task *domain.Task) error {
	q, err := s.queries.GetByID(ctx, task.QueryID)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			s.logger.Warn("task references a missing query", "task_id", task.ID, "query_id", task.QueryID)
			return nil
		}
		return err
	}
	if q.Status.IsTerminal() {
		s.logger.Debug("skipping finished query", "client_id", q.ClientID, "status", q.Status)
		return nil
	}

	if q.Status == domain.QueryStatusPending {
		if err := s.queries.MarkRunning(ctx, q.ID); err != nil {
			var conflict *domain.ConflictError
			if errors.As(err, &conflict) {
				return nil
			}
			return err
		}
	} else {
		s.logger.Info("resuming redelivered query", "client_id", q.ClientID, "attempt", task.Attempts)
	}

	db, err := s.databases.GetByID(ctx, q.DatabaseID)
	if err != nil {
		s.markFailed(ctx, q, err.Error())
		metrics.QueryFinished(string(domain.QueryStatusFailed))
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	hbDone := make(chan struct{})
	go s.heartbeatLoop(runCtx, q, cancel, hbDone)

	rs, err := s.fetch(runCtx, q, db, s.cfg.AsyncTimeLimit)
	close(hbDone)

	if err != nil {
		if ctx.Err() != nil {
			// Worker shutdown; the record stays RUNNING for the next delivery.
			return ctx.Err()
		}
		if errors.Is(err, context.Canceled) {
			s.logger.Info("query stopped while running", "client_id", q.ClientID)
			return nil
		}
		if isRetryableQueryError(err) && task.Attempts < s.cfg.Worker.MaxAttempts {
			s.logger.Warn("transient query failure; will retry", "client_id", q.ClientID, "attempt", task.Attempts, "error", err)
			return &domain.TransientError{Cause: err}
		}
		s.markFailed(ctx, q, failureMessage(err))
		metrics.QueryFinished(string(domain.QueryStatusFailed))
		return nil
	}

	if _, err := s.complete(ctx, q, rs); err != nil {
		s.logger.Error("failed to complete query", "client_id", q.ClientID, "error", err)
	}
	return nil
}

// AbandonTask fails the query behind a task the worker has given up on.
// Finished or missing queries are left alone.
func (s *QueryService) AbandonTask(ctx context.Context, task *domain.Task, cause error) error {
	err := s.queries.MarkFailed(ctx, task.QueryID, abandonedMessage(cause))
	var (
		conflict *domain.ConflictError
		notFound *domain.NotFoundError
	)
	switch {
	case err == nil:
		metrics.QueryFinished(string(domain.QueryStatusFailed))
		s.logger.Warn("abandoned query after repeated failures", "query_id", task.QueryID, "attempt", task.Attempts)
		return nil
	case errors.As(err, &conflict), errors.As(err, &notFound):
		return nil
	default:
		return err
	}
}

func abandonedMessage(cause error) string {
	return "Query could not be executed after repeated attempts: " + failureMessage(cause)
}

// heartbeatLoop touches the record while the query runs. Once the record
// has left RUNNING the update conflicts, which means the query was stopped,
// and the execution is cancelled.
func (s *QueryService) heartbeatLoop(ctx context.Context, q *domain.Query, cancel context.CancelFunc, done <-chan struct{}) {
	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.queries.UpdateProgress(ctx, q.ID, 0, nil)
			var conflict *domain.ConflictError
			if errors.As(err, &conflict) {
				s.logger.Info("query no longer running; cancelling", "client_id", q.ClientID)
				cancel()
				return
			}
			if err != nil && ctx.Err() == nil {
				s.logger.Warn("heartbeat failed", "client_id", q.ClientID, "error", err)
			}
		}
	}
}

// retryHints mark adapter messages from connection-level failures. Timeouts
// are deliberately absent: a statement that timed out once will again.
var retryHints = []string{"connection reset", "eof", "broken pipe", "temporarily"}

func isRetryableQueryError(err error) bool {
	if err == nil {
		return false
	}
	var timeout *domain.ExecutionTimeoutError
	if errors.As(err, &timeout) {
		return false
	}
	var adapterErr *domain.AdapterError
	if !errors.As(err, &adapterErr) {
		return false
	}
	msg := strings.ToLower(adapterErr.Message)
	for _, hint := range retryHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
