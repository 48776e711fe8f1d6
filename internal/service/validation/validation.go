// Package validation runs static checks over SQL before it is executed.
package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sqllab/internal/config"
	"sqllab/internal/domain"
)

// Validator checks SQL for one engine and reports findings as annotations.
// A returned error means the validator itself could not run.
type Validator interface {
	Name() string
	Validate(ctx context.Context, db *domain.Database, schema *string, sql string) ([]domain.Annotation, error)
}

// Service selects a validator by engine and bounds it with a timeout.
type Service struct {
	byEngine map[string]Validator
	timeout  time.Duration
	logger   *slog.Logger
}

// NewService builds a Service from an engine to validator-kind map.
// explainer backs the "explain" kind and may be nil when no engine uses it.
func NewService(kinds map[string]string, explainer Explainer, timeout time.Duration, logger *slog.Logger) (*Service, error) {
	byEngine := make(map[string]Validator, len(kinds))
	for engine, kind := range kinds {
		switch kind {
		case config.ValidatorPostgreSQL:
			byEngine[engine] = PostgreSQLValidator{}
		case config.ValidatorExplain:
			if explainer == nil {
				return nil, fmt.Errorf("validator %q for engine %q requires an explainer", kind, engine)
			}
			byEngine[engine] = NewExplainValidator(explainer)
		default:
			return nil, fmt.Errorf("unknown validator %q for engine %q", kind, engine)
		}
	}
	return &Service{byEngine: byEngine, timeout: timeout, logger: logger.With("component", "validation")}, nil
}

// Register installs v for engine, replacing any configured validator.
func (s *Service) Register(engine string, v Validator) {
	s.byEngine[engine] = v
}

// Validate runs the validator configured for db's engine. The result is
// never nil on success so it encodes as an empty list.
func (s *Service) Validate(ctx context.Context, db *domain.Database, schema *string, sql string) ([]domain.Annotation, error) {
	v, ok := s.byEngine[db.Engine]
	if !ok {
		return nil, &domain.NoValidatorConfiguredError{Engine: db.Engine}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	type outcome struct {
		annotations []domain.Annotation
		err         error
	}
	done := make(chan outcome, 1)
	go func() {
		annotations, err := v.Validate(ctx, db, schema, sql)
		done <- outcome{annotations, err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.logger.Warn("validation timed out", "validator", v.Name(), "database", db.Name, "timeout", s.timeout)
			return nil, &domain.ValidationTimeoutError{Timeout: s.timeout}
		}
		return nil, ctx.Err()
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				return nil, &domain.ValidationTimeoutError{Timeout: s.timeout}
			}
			s.logger.Error("validator failed", "validator", v.Name(), "database", db.Name, "error", out.err)
			return nil, fmt.Errorf("%s was unable to check your query: %w", v.Name(), out.err)
		}
		if out.annotations == nil {
			out.annotations = []domain.Annotation{}
		}
		return out.annotations, nil
	}
}

// position converts a 1-based character offset into 1-based line and column.
func position(sql string, offset int) (line, column int) {
	line, column = 1, 1
	for i, r := range []rune(sql) {
		if i >= offset-1 {
			break
		}
		if r == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return line, column
}

func intPtr(v int) *int { return &v }
