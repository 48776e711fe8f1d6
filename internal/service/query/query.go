// Package query implements SQL Lab query submission, execution, and results
// delivery.
package query

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"sqllab/internal/config"
	"sqllab/internal/domain"
)

// Validator checks SQL before execution. Implemented by validation.Service.
type Validator interface {
	Validate(ctx context.Context, db *domain.Database, schema *string, sql string) ([]domain.Annotation, error)
}

// ScopeFunc computes which queries a caller may see. It is the boundary to
// the permission model; the service applies the scope without interpreting
// it.
type ScopeFunc func(ctx context.Context, caller domain.Caller) (domain.QueryScope, error)

// DefaultScope lets admins see everything and everyone else their own
// queries.
func DefaultScope(_ context.Context, caller domain.Caller) (domain.QueryScope, error) {
	if caller.IsAdmin {
		return domain.QueryScope{}, nil
	}
	return domain.OwnerScope(caller), nil
}

// Deps are the collaborators of a QueryService.
type Deps struct {
	Queries   domain.QueryRepository
	Databases domain.DatabaseRepository
	Executor  domain.QueryExecutor
	Results   domain.ResultsBackend
	// Tasks is nil when no task queue is wired; async submission is then
	// unavailable.
	Tasks     domain.TaskQueue
	Validator Validator
	Scope     ScopeFunc
	Config    *config.Config
	Logger    *slog.Logger
}

// QueryService runs SQL Lab queries. Only the path that owns an execution
// writes its status and results; every write is conditional on the
// record's current status.
//
//nolint:revive // Name chosen for clarity across package boundaries
type QueryService struct {
	queries   domain.QueryRepository
	databases domain.DatabaseRepository
	executor  domain.QueryExecutor
	results   domain.ResultsBackend
	tasks     domain.TaskQueue
	validator Validator
	scope     ScopeFunc
	cfg       *config.Config
	logger    *slog.Logger

	now       func() time.Time
	heartbeat time.Duration
	// running holds the cancel func of every execution in this process,
	// keyed by query id.
	running sync.Map
}

// NewQueryService creates a new QueryService.
func NewQueryService(d Deps) *QueryService {
	scope := d.Scope
	if scope == nil {
		scope = DefaultScope
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryService{
		queries:   d.Queries,
		databases: d.Databases,
		executor:  d.Executor,
		results:   d.Results,
		tasks:     d.Tasks,
		validator: d.Validator,
		scope:     scope,
		cfg:       d.Config,
		logger:    logger.With("component", "query-service"),
		now:       time.Now,
		heartbeat: defaultHeartbeatInterval,
	}
}

// SetClock overrides the time source used for rendering and CTAS names.
func (s *QueryService) SetClock(now func() time.Time) {
	s.now = now
}

// SetHeartbeatInterval overrides how often workers check for a stop.
func (s *QueryService) SetHeartbeatInterval(d time.Duration) {
	s.heartbeat = d
}

// Get returns one query by client id.
func (s *QueryService) Get(ctx context.Context, caller domain.Caller, clientID string) (*domain.Query, error) {
	q, err := s.queries.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisible(ctx, caller, q); err != nil {
		return nil, domain.ErrNotFound("query %q not found", clientID)
	}
	return q, nil
}

// Stop marks a query STOPPED unless it already finished, and cancels its
// execution if it runs in this process. Workers in other processes notice
// at their next checkpoint. Stopping twice is not an error.
func (s *QueryService) Stop(ctx context.Context, caller domain.Caller, clientID string) (*domain.Query, error) {
	q, err := s.Get(ctx, caller, clientID)
	if err != nil {
		return nil, err
	}
	stopped, err := s.queries.Stop(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	if cancel, ok := s.running.Load(q.ID); ok {
		cancel.(context.CancelFunc)()
	}
	if q.Status != stopped.Status {
		s.logger.Info("query stopped", "client_id", clientID, "user", caller.UserID, "previous_status", q.Status)
	}
	return stopped, nil
}

// ListUpdatedSince returns the caller's queries changed at or after since,
// for polling clients.
func (s *QueryService) ListUpdatedSince(ctx context.Context, caller domain.Caller, since time.Time) ([]domain.Query, error) {
	return s.queries.ListUpdatedSince(ctx, caller.UserID, since)
}

// Search lists queries matching filter within the caller's scope.
func (s *QueryService) Search(ctx context.Context, caller domain.Caller, filter domain.QueryFilter) ([]domain.Query, int64, error) {
	scope, err := s.scope(ctx, caller)
	if err != nil {
		return nil, 0, err
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, domain.ErrValidation("unknown query status %q", *filter.Status)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, domain.ErrValidation("search range ends before it starts")
	}
	filter.Page.MaxResults = filter.Page.LimitWithin(s.cfg.QuerySearchLimit)
	return s.queries.Search(ctx, scope, filter)
}

// ValidateRequest is the input of Validate.
type ValidateRequest struct {
	SQL            string
	DatabaseID     int64
	Schema         *string
	TemplateParams map[string]interface{}
}

// Validate runs the configured static check for the database's engine.
func (s *QueryService) Validate(ctx context.Context, caller domain.Caller, req ValidateRequest) ([]domain.Annotation, error) {
	if s.validator == nil {
		return nil, domain.ErrNotImplemented("SQL validation is not configured")
	}
	if len(req.TemplateParams) > 0 {
		return nil, domain.ErrValidation("SQL validation does not support template parameters")
	}
	if strings.TrimSpace(req.SQL) == "" {
		return nil, domain.ErrValidation("sql is required")
	}
	db, err := s.database(ctx, req.DatabaseID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("validating query", "database", db.Name, "user", caller.UserID)
	return s.validator.Validate(ctx, db, normalizeSchema(req.Schema), req.SQL)
}

// database loads a database registration that SQL Lab may use.
func (s *QueryService) database(ctx context.Context, id int64) (*domain.Database, error) {
	if id <= 0 {
		return nil, domain.ErrValidation("database_id is required")
	}
	db, err := s.databases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !db.ExposeInSQLLab {
		return nil, domain.ErrAccessDenied("database %q is not available in SQL Lab", db.Name)
	}
	return db, nil
}

func (s *QueryService) checkVisible(ctx context.Context, caller domain.Caller, q *domain.Query) error {
	scope, err := s.scope(ctx, caller)
	if err != nil {
		return err
	}
	if !inScope(scope, q) {
		return domain.ErrAccessDenied("query %q is outside the caller's scope", q.ClientID)
	}
	return nil
}

func inScope(scope domain.QueryScope, q *domain.Query) bool {
	if scope.OwnOnly && q.UserID != scope.UserID {
		return false
	}
	if len(scope.DatabaseIDs) == 0 {
		return true
	}
	for _, id := range scope.DatabaseIDs {
		if id == q.DatabaseID {
			return true
		}
	}
	return false
}

// markFailed records a failure. Losing the race to a stop is expected and
// only logged.
func (s *QueryService) markFailed(ctx context.Context, q *domain.Query, message string) {
	err := s.queries.MarkFailed(context.WithoutCancel(ctx), q.ID, message)
	var conflict *domain.ConflictError
	switch {
	case err == nil:
	case errors.As(err, &conflict):
		s.logger.Debug("query left RUNNING before failure was recorded", "client_id", q.ClientID)
	default:
		s.logger.Error("failed to record query failure", "client_id", q.ClientID, "error", err)
	}
}

func normalizeSchema(schema *string) *string {
	if schema == nil || strings.TrimSpace(*schema) == "" {
		return nil
	}
	v := strings.TrimSpace(*schema)
	return &v
}
