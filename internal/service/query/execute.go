package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sqllab/internal/domain"
	"sqllab/internal/metrics"
	"sqllab/internal/resultset"
)

// storeFailureMessage is recorded when rows were fetched but could not be
// written to the results cache.
const storeFailureMessage = "Failed to store query results. Tell your administrator to verify the availability of the results backend."

// runSync executes a query inline under the sync timeout.
func (s *QueryService) runSync(ctx context.Context, q *domain.Query, db *domain.Database) (*ExecutionResult, error) {
	q.Status = domain.QueryStatusRunning
	created, err := s.queries.Create(ctx, q)
	if err != nil {
		return nil, err
	}
	metrics.QuerySubmitted("sync")

	rs, err := s.execute(ctx, created, db, s.cfg.SyncTimeout)
	final := s.reload(ctx, created)
	if err != nil {
		return &ExecutionResult{Query: final}, err
	}
	if rs == nil {
		// Stopped while running.
		return &ExecutionResult{Query: final}, nil
	}
	display, truncated := resultset.Truncate(rs, s.cfg.DisplayMaxRow)
	return &ExecutionResult{Query: final, Data: display, DisplayLimitReached: truncated}, nil
}

// execute runs a RUNNING query under timeout, caches its result, and marks
// it SUCCESS. Failures are recorded on the record before returning. A nil
// result with a nil error means the query was stopped.
func (s *QueryService) execute(ctx context.Context, q *domain.Query, db *domain.Database, timeout time.Duration) (*domain.ResultSet, error) {
	rs, err := s.fetch(ctx, q, db, timeout)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			return nil, nil
		}
		s.markFailed(ctx, q, failureMessage(err))
		metrics.QueryFinished(string(domain.QueryStatusFailed))
		return nil, err
	}
	return s.complete(ctx, q, rs)
}

// fetch runs the executed statement with a deadline. The cancel func is
// registered so Stop can interrupt an execution in this process.
func (s *QueryService) fetch(ctx context.Context, q *domain.Query, db *domain.Database, timeout time.Duration) (*domain.ResultSet, error) {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()
	s.running.Store(q.ID, cancel)
	defer s.running.Delete(q.ID)

	start := time.Now()
	rs, err := s.executor.Execute(runCtx, db, q.Schema, q.ExecutedSQL)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			s.logger.Warn("query timed out", "client_id", q.ClientID, "timeout", timeout)
			return nil, &domain.ExecutionTimeoutError{Timeout: timeout}
		}
		s.logger.Info("query failed", "client_id", q.ClientID, "duration", elapsed, "error", err)
		return nil, err
	}
	if q.SelectAsCTA {
		rs = &domain.ResultSet{Columns: []domain.Column{}, Rows: [][]interface{}{}}
	}
	s.logger.Info("query executed", "client_id", q.ClientID, "duration", elapsed, "rows", rs.RowCount())
	return rs, nil
}

// complete caches rs and moves the query to SUCCESS. A lost race against a
// stop leaves the record STOPPED and surfaces no rows.
func (s *QueryService) complete(ctx context.Context, q *domain.Query, rs *domain.ResultSet) (*domain.ResultSet, error) {
	writeCtx := context.WithoutCancel(ctx)

	payload, err := resultset.Encode(rs)
	if err != nil {
		s.markFailed(ctx, q, storeFailureMessage)
		metrics.QueryFinished(string(domain.QueryStatusFailed))
		return nil, fmt.Errorf("encode results: %w", err)
	}
	key := domain.NewResultsKey()
	if err := s.results.Put(writeCtx, key, payload); err != nil {
		s.logger.Error("failed to cache results", "client_id", q.ClientID, "error", err)
		s.markFailed(ctx, q, storeFailureMessage)
		metrics.QueryFinished(string(domain.QueryStatusFailed))
		return nil, fmt.Errorf("cache results: %w", err)
	}

	err = s.queries.MarkSucceeded(writeCtx, q.ID, key, rs.RowCount())
	var conflict *domain.ConflictError
	switch {
	case err == nil:
		metrics.QueryFinished(string(domain.QueryStatusSuccess))
		return rs, nil
	case errors.As(err, &conflict):
		s.logger.Info("query stopped before results were recorded", "client_id", q.ClientID)
		return nil, nil
	default:
		return nil, fmt.Errorf("record results: %w", err)
	}
}

// reload returns the stored record, falling back to q if it cannot be read.
func (s *QueryService) reload(ctx context.Context, q *domain.Query) *domain.Query {
	fresh, err := s.queries.GetByID(context.WithoutCancel(ctx), q.ID)
	if err != nil {
		s.logger.Warn("failed to reload query", "client_id", q.ClientID, "error", err)
		return q
	}
	return fresh
}

// failureMessage is the user-facing text recorded for err. Adapter
// messages are sanitized by the engine layer.
func failureMessage(err error) string {
	var adapterErr *domain.AdapterError
	if errors.As(err, &adapterErr) {
		return adapterErr.Message
	}
	return err.Error()
}
