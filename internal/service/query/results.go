package query

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"sqllab/internal/dialect"
	"sqllab/internal/domain"
	"sqllab/internal/resultset"
)

// resultsExpiredMessage is returned when a cached result is gone.
const resultsExpiredMessage = "Data could not be retrieved. You may want to re-run the query."

// FetchedResults is a decoded cached result cut to the display limit.
type FetchedResults struct {
	Query               *domain.Query
	Data                *domain.ResultSet
	DisplayLimitReached bool
}

// GetResults loads the cached result stored under key. rows further limits
// how many rows are returned when positive. A missing payload is a
// *domain.GoneError.
func (s *QueryService) GetResults(ctx context.Context, caller domain.Caller, key string, rows int) (*FetchedResults, error) {
	if key == "" {
		return nil, domain.ErrValidation("results key is required")
	}
	payload, found, err := s.results.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	if !found {
		return nil, domain.ErrGone(resultsExpiredMessage)
	}

	q, err := s.queries.GetByResultsKey(ctx, key)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return nil, domain.ErrGone(resultsExpiredMessage)
		}
		return nil, err
	}
	if err := s.checkVisible(ctx, caller, q); err != nil {
		return nil, err
	}

	rs, err := resultset.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	limit := s.cfg.DisplayMaxRow
	if rows > 0 && (limit <= 0 || rows < limit) {
		limit = rows
	}
	display, truncated := resultset.Truncate(rs, limit)
	return &FetchedResults{Query: q, Data: display, DisplayLimitReached: truncated}, nil
}

// CSVExport is a rendered CSV document.
type CSVExport struct {
	Filename string
	Data     []byte
	// Reexecuted is true when the cache missed and the query ran again.
	Reexecuted bool
}

// ExportCSV renders a query's full result as CSV. The cached result is
// used when present; otherwise the query is run again synchronously
// against its original database and schema. Both paths go through the same
// encode and decode steps, so identical data yields identical bytes.
func (s *QueryService) ExportCSV(ctx context.Context, caller domain.Caller, clientID string) (*CSVExport, error) {
	if !s.cfg.FeatureCSVExport {
		return nil, domain.ErrNotImplemented("CSV export is disabled")
	}
	q, err := s.Get(ctx, caller, clientID)
	if err != nil {
		return nil, err
	}

	payload, cached := s.cachedPayload(ctx, q)
	if !cached {
		payload, err = s.reexecute(ctx, q)
		if err != nil {
			return nil, err
		}
	}

	rs, err := resultset.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	var buf bytes.Buffer
	if err := resultset.WriteCSV(&buf, rs, resultset.CSVOptions{Delimiter: s.cfg.CSVDelimiter}); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return &CSVExport{Filename: q.Name() + ".csv", Data: buf.Bytes(), Reexecuted: !cached}, nil
}

// cachedPayload returns the cached result of q. CTAS queries cache only the
// empty result of the CREATE statement, so their rows are always read back
// from the table.
func (s *QueryService) cachedPayload(ctx context.Context, q *domain.Query) ([]byte, bool) {
	if q.ResultsKey == nil || q.SelectAsCTA {
		return nil, false
	}
	payload, found, err := s.results.Get(ctx, *q.ResultsKey)
	if err != nil {
		s.logger.Warn("results cache read failed; re-executing", "client_id", q.ClientID, "error", err)
		return nil, false
	}
	return payload, found
}

// reexecute runs the query's read statement again without touching its
// record and returns the encoded result.
func (s *QueryService) reexecute(ctx context.Context, q *domain.Query) ([]byte, error) {
	db, err := s.databases.GetByID(ctx, q.DatabaseID)
	if err != nil {
		return nil, err
	}
	stmt := q.ExecutedSQL
	if q.SelectAsCTA && q.SelectSQL != nil {
		stmt = *q.SelectSQL
	}
	if !dialect.IsSelect(stmt) {
		return nil, domain.ErrGone("results of query %q are no longer cached and it cannot be safely re-run", q.ClientID)
	}

	runCtx := ctx
	if s.cfg.SyncTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.SyncTimeout)
		defer cancel()
	}
	s.logger.Info("re-executing query for export", "client_id", q.ClientID)
	rs, err := s.executor.Execute(runCtx, db, q.Schema, stmt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, &domain.ExecutionTimeoutError{Timeout: s.cfg.SyncTimeout}
		}
		return nil, err
	}
	return resultset.Encode(rs)
}
