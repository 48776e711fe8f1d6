package validation

import (
	"context"
	"errors"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/pganalyze/pg_query_go/v6/parser"

	"sqllab/internal/domain"
)

// PostgreSQLValidator parses SQL with the PostgreSQL grammar. It needs no
// connection, so it never touches the target database.
type PostgreSQLValidator struct{}

// Name implements Validator.
func (PostgreSQLValidator) Name() string { return "PostgreSQLValidator" }

// Validate implements Validator.
func (PostgreSQLValidator) Validate(_ context.Context, _ *domain.Database, _ *string, sql string) ([]domain.Annotation, error) {
	_, err := pg_query.Parse(sql)
	if err == nil {
		return []domain.Annotation{}, nil
	}

	var perr *parser.Error
	if !errors.As(err, &perr) {
		return []domain.Annotation{{Severity: domain.SeverityError, Message: err.Error()}}, nil
	}
	a := domain.Annotation{Severity: domain.SeverityError, Message: perr.Message}
	if perr.Cursorpos > 0 {
		line, col := position(sql, perr.Cursorpos)
		a.Line, a.Column = intPtr(line), intPtr(col)
	}
	return []domain.Annotation{a}, nil
}
