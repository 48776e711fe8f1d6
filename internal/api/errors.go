package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"sqllab/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var (
		notFound          *domain.NotFoundError
		accessDenied      *domain.AccessDeniedError
		validation        *domain.ValidationError
		templateRender    *domain.TemplateRenderError
		noValidator       *domain.NoValidatorConfiguredError
		conflict          *domain.ConflictError
		gone              *domain.GoneError
		validationTimeout *domain.ValidationTimeoutError
		executionTimeout  *domain.ExecutionTimeoutError
		adapter           *domain.AdapterError
		dispatch          *domain.DispatchError
		notImplemented    *domain.NotImplementedError
	)

	switch {
	case errors.Is(err, errNoCaller):
		return http.StatusUnauthorized
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &accessDenied):
		return http.StatusForbidden
	case errors.As(err, &validation), errors.As(err, &templateRender), errors.As(err, &noValidator):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &gone):
		return http.StatusGone
	case errors.As(err, &validationTimeout), errors.As(err, &executionTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &adapter):
		return http.StatusUnprocessableEntity
	case errors.As(err, &dispatch):
		return http.StatusServiceUnavailable
	case errors.As(err, &notImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the Error for err. q, when non-nil, is the record the
// failure was written to.
func errorBody(err error, q *domain.Query) Error {
	body := Error{Code: httpStatusFromDomainError(err), Message: err.Error()}
	if q != nil {
		apiQ := queryToAPI(q)
		body.Query = &apiQ
	}
	return body
}

// writeError writes err as a JSON Error. Internal errors are logged and
// hidden.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, q *domain.Query) {
	body := errorBody(err, q)
	if body.Code == http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		body.Message = http.StatusText(body.Code)
	}
	writeJSON(w, body.Code, body)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
