package validation

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"sqllab/internal/domain"
)

// Explainer plans SQL on a database without running it. Implemented by
// engine.Executor.
type Explainer interface {
	Explain(ctx context.Context, db *domain.Database, schema *string, sql string) error
}

var (
	nearToken  = regexp.MustCompile(`(?i)(?:at or near|near) "([^"]+)"`)
	lineMarker = regexp.MustCompile(`LINE (\d+):`)
)

// ExplainValidator asks the target database to plan the statement. Planner
// errors become annotations; anything else is a validator failure.
type ExplainValidator struct {
	explainer Explainer
}

// NewExplainValidator creates an ExplainValidator.
func NewExplainValidator(explainer Explainer) *ExplainValidator {
	return &ExplainValidator{explainer: explainer}
}

// Name implements Validator.
func (v *ExplainValidator) Name() string { return "ExplainValidator" }

// Validate implements Validator.
func (v *ExplainValidator) Validate(ctx context.Context, db *domain.Database, schema *string, sql string) ([]domain.Annotation, error) {
	err := v.explainer.Explain(ctx, db, schema, strings.TrimSpace(sql))
	if err == nil {
		return []domain.Annotation{}, nil
	}
	var adapterErr *domain.AdapterError
	if !errors.As(err, &adapterErr) {
		return nil, err
	}
	return []domain.Annotation{annotate(sql, adapterErr.Message)}, nil
}

// annotate turns a planner error message into an annotation, locating the
// offending token in sql when the message names one.
func annotate(sql, msg string) domain.Annotation {
	a := domain.Annotation{Severity: domain.SeverityError, Message: firstLine(msg)}

	if m := nearToken.FindStringSubmatch(msg); m != nil {
		if idx := strings.Index(strings.ToLower(sql), strings.ToLower(m[1])); idx >= 0 {
			line, col := position(sql, len([]rune(sql[:idx]))+1)
			a.Line, a.Column = intPtr(line), intPtr(col)
			return a
		}
	}
	if m := lineMarker.FindStringSubmatch(msg); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			a.Line = intPtr(n)
		}
	}
	return a
}

func firstLine(msg string) string {
	msg = strings.TrimSpace(msg)
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return strings.TrimSpace(msg[:i])
	}
	return msg
}
