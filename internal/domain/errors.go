// Package domain defines core types, interfaces, and errors for SQL Lab.
package domain

import (
	"fmt"
	"time"
)

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AccessDeniedError indicates insufficient permissions.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate client id or a lost
// status transition race).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NotImplementedError indicates a feature that is disabled or not configured.
type NotImplementedError struct {
	Message string
}

func (e *NotImplementedError) Error() string { return e.Message }

// TemplateRenderError is returned when parameter substitution fails. The
// message is surfaced to the caller verbatim.
type TemplateRenderError struct {
	Cause error
}

func (e *TemplateRenderError) Error() string {
	return fmt.Sprintf("template rendering failed: %v", e.Cause)
}

func (e *TemplateRenderError) Unwrap() error { return e.Cause }

// ValidationTimeoutError is returned when a SQL validator does not finish in time.
type ValidationTimeoutError struct {
	Timeout time.Duration
}

func (e *ValidationTimeoutError) Error() string {
	return fmt.Sprintf("SQL validation exceeded the %s timeout", e.Timeout)
}

// NoValidatorConfiguredError is returned when no validator exists for an engine.
type NoValidatorConfiguredError struct {
	Engine string
}

func (e *NoValidatorConfiguredError) Error() string {
	return fmt.Sprintf("no SQL validator is configured for %s", e.Engine)
}

// ExecutionTimeoutError is recorded when a query exceeds its wall-clock deadline.
type ExecutionTimeoutError struct {
	Timeout time.Duration
}

func (e *ExecutionTimeoutError) Error() string {
	return fmt.Sprintf("The query exceeded the %d seconds timeout.", int(e.Timeout.Seconds()))
}

// AdapterError wraps a failure reported by the target database. Message is
// already sanitized and safe to show to users.
type AdapterError struct {
	Message string
	Cause   error
}

func (e *AdapterError) Error() string { return e.Message }

func (e *AdapterError) Unwrap() error { return e.Cause }

// DispatchError indicates the async task could not be handed to a worker.
type DispatchError struct {
	Cause error
}

// DispatchFailureMessage is recorded on queries whose task could not be published.
const DispatchFailureMessage = "Failed to start remote query on a worker. Tell your administrator to verify the availability of the message queue."

func (e *DispatchError) Error() string { return DispatchFailureMessage }

func (e *DispatchError) Unwrap() error { return e.Cause }

// GoneError indicates a resource that existed but is no longer available,
// such as an expired cached result.
type GoneError struct {
	Message string
}

func (e *GoneError) Error() string { return e.Message }

// TransientError marks a task failure worth another attempt. The query
// record is left as it was so the retry can pick it up.
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string { return "transient failure: " + e.Cause.Error() }

func (e *TransientError) Unwrap() error { return e.Cause }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrAccessDenied creates an AccessDeniedError with a formatted message.
func ErrAccessDenied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrNotImplemented creates a NotImplementedError with a formatted message.
func ErrNotImplemented(format string, args ...interface{}) *NotImplementedError {
	return &NotImplementedError{Message: fmt.Sprintf(format, args...)}
}

// ErrGone creates a GoneError with a formatted message.
func ErrGone(format string, args ...interface{}) *GoneError {
	return &GoneError{Message: fmt.Sprintf(format, args...)}
}
