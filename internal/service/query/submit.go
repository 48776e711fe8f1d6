package query

import (
	"context"
	"fmt"
	"strings"

	"sqllab/internal/dialect"
	"sqllab/internal/domain"
	"sqllab/internal/metrics"
	"sqllab/internal/sqltemplate"
)

// SubmitRequest is the input of Submit.
type SubmitRequest struct {
	SQL            string
	DatabaseID     int64
	Schema         *string
	TemplateParams map[string]interface{}
	// RequestedLimit of zero means no request; negative values are ignored.
	RequestedLimit int
	RunAsync       bool
	ClientID       string
	SelectAsCTA    bool
	TmpTableName   *string
	TabName        *string
	SQLEditorID    *string
}

// ExecutionResult is what Submit hands back. Data is set only for a
// successful synchronous execution and is cut to the display limit.
type ExecutionResult struct {
	Query               *domain.Query
	Data                *domain.ResultSet
	DisplayLimitReached bool
}

// Submit renders, limits, and records a query, then runs it inline or hands
// it to the task queue. Render and request errors are returned without a
// record. Execution failures are recorded and returned together with the
// failed record.
func (s *QueryService) Submit(ctx context.Context, caller domain.Caller, req SubmitRequest) (*ExecutionResult, error) {
	if strings.TrimSpace(req.SQL) == "" {
		return nil, domain.ErrValidation("sql is required")
	}
	db, err := s.database(ctx, req.DatabaseID)
	if err != nil {
		return nil, err
	}
	if req.RunAsync {
		if err := s.checkAsync(db); err != nil {
			return nil, err
		}
	}

	q, err := s.prepare(caller, db, req)
	if err != nil {
		return nil, err
	}

	if req.RunAsync {
		return s.dispatch(ctx, q)
	}
	return s.runSync(ctx, q, db)
}

func (s *QueryService) checkAsync(db *domain.Database) error {
	if !s.cfg.FeatureAsyncQueue || s.tasks == nil {
		return domain.ErrNotImplemented("asynchronous query execution is disabled")
	}
	if !db.AllowRunAsync {
		return domain.ErrValidation("database %q does not allow asynchronous queries", db.Name)
	}
	return nil
}

// prepare builds the record for a submission: rendered SQL, resolved limit,
// and the statement that will actually be sent to the database.
func (s *QueryService) prepare(caller domain.Caller, db *domain.Database, req SubmitRequest) (*domain.Query, error) {
	d, err := dialect.For(db.Engine)
	if err != nil {
		return nil, err
	}
	now := s.now()

	rendered, err := sqltemplate.Render(req.SQL, sqltemplate.Context{
		Params:  req.TemplateParams,
		Dialect: d,
		User:    callerName(caller),
		Now:     now,
	})
	if err != nil {
		return nil, err
	}
	rendered = dialect.TrimStatement(rendered)
	if rendered == "" {
		return nil, domain.ErrValidation("sql renders to an empty statement")
	}
	if n := dialect.CountStatements(rendered); n > 1 {
		return nil, domain.ErrValidation("only one statement can be run at a time, got %d", n)
	}
	if !db.AllowDML && !dialect.IsReadOnly(rendered) {
		return nil, domain.ErrAccessDenied("only read-only statements are allowed against database %q", db.Name)
	}

	requested := req.RequestedLimit
	if requested < 0 {
		s.logger.Warn("ignoring negative row limit", "requested", requested, "user", caller.UserID)
		requested = 0
	}
	var embedded *int
	if n, ok := dialect.ExtractLimit(rendered); ok {
		embedded = &n
	}
	limit := dialect.ResolveLimit(s.cfg.SQLMaxRow, requested, embedded)

	q := &domain.Query{
		ClientID:    strings.TrimSpace(req.ClientID),
		DatabaseID:  db.ID,
		Schema:      normalizeSchema(req.Schema),
		RawSQL:      req.SQL,
		RenderedSQL: rendered,
		UserID:      caller.UserID,
		SQLEditorID: req.SQLEditorID,
		TabName:     req.TabName,
		Limit:       limit,
		StartTime:   now,
	}

	if req.SelectAsCTA {
		if err := s.prepareCTAS(q, d, db, caller, req.TmpTableName); err != nil {
			return nil, err
		}
		return q, nil
	}
	q.ExecutedSQL, q.LimitUsed = dialect.ApplyLimit(rendered, limit)
	return q, nil
}

// prepareCTAS wraps the statement in CREATE TABLE AS. The rows are read
// back later through SelectSQL, which carries the limit.
func (s *QueryService) prepareCTAS(q *domain.Query, d dialect.Dialect, db *domain.Database, caller domain.Caller, tmpTable *string) error {
	if !s.cfg.FeatureCTAS || !db.AllowCTAS {
		return domain.ErrAccessDenied("CREATE TABLE AS is not allowed on database %q", db.Name)
	}
	if !dialect.IsSelect(q.RenderedSQL) {
		return domain.ErrValidation("only SELECT statements can be stored with CREATE TABLE AS")
	}

	name := ""
	if tmpTable != nil {
		name = strings.TrimSpace(*tmpTable)
	}
	if name == "" {
		name = fmt.Sprintf("tmp_%s_table_%s", identPart(callerName(caller)), q.StartTime.UTC().Format("2006_01_02_15_04_05"))
	}
	schema := q.Schema
	if db.ForceCTASSchema != nil && *db.ForceCTASSchema != "" {
		schema = db.ForceCTASSchema
	}

	selectSQL := d.SelectStar(schema, name, q.Limit)
	q.SelectAsCTA = true
	q.TmpTableName = &name
	q.ExecutedSQL = d.CreateTableAs(schema, name, q.RenderedSQL)
	q.SelectSQL = &selectSQL
	return nil
}

// dispatch records a PENDING query and publishes its task. A publish
// failure fails the record before returning.
func (s *QueryService) dispatch(ctx context.Context, q *domain.Query) (*ExecutionResult, error) {
	q.Status = domain.QueryStatusPending
	created, err := s.queries.Create(ctx, q)
	if err != nil {
		return nil, err
	}
	metrics.QuerySubmitted("async")

	if err := s.tasks.Publish(ctx, &domain.Task{QueryID: created.ID, ClientID: created.ClientID}); err != nil {
		s.logger.Error("failed to dispatch query", "client_id", created.ClientID, "error", err)
		metrics.DispatchFailed()
		s.markFailed(ctx, created, domain.DispatchFailureMessage)
		metrics.QueryFinished(string(domain.QueryStatusFailed))
		failed, getErr := s.queries.GetByID(context.WithoutCancel(ctx), created.ID)
		if getErr != nil {
			failed = created
		}
		return &ExecutionResult{Query: failed}, &domain.DispatchError{Cause: err}
	}

	s.logger.Info("query dispatched", "client_id", created.ClientID, "user", created.UserID)
	return &ExecutionResult{Query: created}, nil
}

func callerName(c domain.Caller) string {
	if c.Username != "" {
		return c.Username
	}
	return c.UserID
}

// identPart reduces s to characters that are safe in an unquoted
// identifier.
func identPart(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "anonymous"
	}
	return b.String()
}
