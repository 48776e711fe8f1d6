// Package api provides the HTTP surface of the SQL Lab service.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sqllab/internal/domain"
	"sqllab/internal/service/query"
)

const maxRequestBody = 10 << 20

// QueryService is the query lifecycle the handlers expose.
type QueryService interface {
	Submit(ctx context.Context, caller domain.Caller, req query.SubmitRequest) (*query.ExecutionResult, error)
	Validate(ctx context.Context, caller domain.Caller, req query.ValidateRequest) ([]domain.Annotation, error)
	Get(ctx context.Context, caller domain.Caller, clientID string) (*domain.Query, error)
	Stop(ctx context.Context, caller domain.Caller, clientID string) (*domain.Query, error)
	ListUpdatedSince(ctx context.Context, caller domain.Caller, since time.Time) ([]domain.Query, error)
	Search(ctx context.Context, caller domain.Caller, filter domain.QueryFilter) ([]domain.Query, int64, error)
	GetResults(ctx context.Context, caller domain.Caller, key string, rows int) (*query.FetchedResults, error)
	ExportCSV(ctx context.Context, caller domain.Caller, clientID string) (*query.CSVExport, error)
}

// DatabaseService manages database registrations.
type DatabaseService interface {
	List(ctx context.Context, caller domain.Caller, page domain.PageRequest) ([]domain.Database, int64, error)
	Register(ctx context.Context, caller domain.Caller, d *domain.Database) (*domain.Database, error)
}

var _ QueryService = (*query.QueryService)(nil)

// APIHandler implements the StrictServerInterface.
type APIHandler struct {
	queries   QueryService
	databases DatabaseService
	logger    *slog.Logger
}

var _ StrictServerInterface = (*APIHandler)(nil)

// NewHandler creates an APIHandler.
func NewHandler(queries QueryService, databases DatabaseService, logger *slog.Logger) *APIHandler {
	return &APIHandler{queries: queries, databases: databases, logger: logger.With("component", "api")}
}

// Routes mounts the generated routes on r. Request binding failures and
// errors returned by handlers are written as JSON Error bodies.
func (h *APIHandler) Routes(r chi.Router) {
	strict := NewStrictHandlerWithOptions(h, nil, StrictHTTPServerOptions{
		RequestErrorHandlerFunc:  h.requestError,
		ResponseErrorHandlerFunc: h.responseError,
	})
	HandlerWithOptions(strict, ChiServerOptions{
		BaseRouter:       r,
		Middlewares:      []MiddlewareFunc{limitBody},
		ErrorHandlerFunc: h.requestError,
	})
}

// errNoCaller means the auth middleware did not run for the route.
var errNoCaller = errors.New("unauthorized")

func callerFrom(ctx context.Context) (domain.Caller, error) {
	c, ok := domain.CallerFromContext(ctx)
	if !ok {
		return domain.Caller{}, errNoCaller
	}
	return c, nil
}

// requestError reports parameters or bodies that could not be bound.
func (h *APIHandler) requestError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid  *InvalidParamFormatError
		required *RequiredParamError
	)
	switch {
	case errors.As(err, &invalid):
		err = domain.ErrValidation("invalid %s: %v", invalid.ParamName, invalid.Err)
	case errors.As(err, &required):
		err = domain.ErrValidation("%s is required", required.ParamName)
	default:
		err = domain.ErrValidation("invalid request body: %v", err)
	}
	writeError(w, r, h.logger, err, nil)
}

// responseError writes errors a handler did not turn into a documented
// response.
func (h *APIHandler) responseError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.logger, err, nil)
}

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		}
		next.ServeHTTP(w, r)
	})
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
