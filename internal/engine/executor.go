package engine

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"log/slog"
	"time"

	"sqllab/internal/dialect"
	"sqllab/internal/domain"
	"sqllab/internal/metrics"
)

// Compile-time check.
var _ domain.QueryExecutor = (*Executor)(nil)

const restoreTimeout = 5 * time.Second

// Executor runs SQL against registered databases through the Registry. The
// deadline of each call travels on its context; drivers that honor context
// cancellation abort the remote statement when it fires.
type Executor struct {
	registry *Registry
	maxRows  int
	logger   *slog.Logger
}

// NewExecutor creates an Executor. maxRows bounds how many rows are fetched
// from any statement, including ones the row limit cannot be applied to.
func NewExecutor(registry *Registry, maxRows int, logger *slog.Logger) *Executor {
	return &Executor{registry: registry, maxRows: maxRows, logger: logger.With("component", "executor")}
}

// Execute runs query with schema as the default schema and materializes the
// result. Context errors are returned unwrapped; driver errors become
// *domain.AdapterError with a sanitized message.
func (e *Executor) Execute(ctx context.Context, database *domain.Database, schema *string, query string) (*domain.ResultSet, error) {
	start := time.Now()
	defer func() { metrics.ObserveExecution(database.Engine, time.Since(start)) }()

	var rs *domain.ResultSet
	err := e.withConn(ctx, database, schema, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close() //nolint:errcheck
		rs, err = scanResult(rows, e.maxRows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// Explain asks the database to plan query without running it.
func (e *Executor) Explain(ctx context.Context, database *domain.Database, schema *string, query string) error {
	return e.withConn(ctx, database, schema, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, "EXPLAIN "+query)
		if err != nil {
			return err
		}
		defer rows.Close() //nolint:errcheck
		for rows.Next() {
		}
		return rows.Err()
	})
}

func (e *Executor) withConn(ctx context.Context, database *domain.Database, schema *string, fn func(*sql.Conn) error) error {
	db, err := e.registry.DB(database)
	if err != nil {
		return e.wrap(ctx, database, err)
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return e.wrap(ctx, database, err)
	}
	defer conn.Close() //nolint:errcheck

	if schema != nil && *schema != "" {
		restore, err := e.useSchema(ctx, conn, database, *schema)
		if err != nil {
			return e.wrap(ctx, database, err)
		}
		defer restore()
	}

	if err := fn(conn); err != nil {
		return e.wrap(ctx, database, err)
	}
	return nil
}

// useSchema switches the session's default schema and returns a function
// that switches it back. A connection that cannot be restored is discarded
// rather than returned to the pool.
func (e *Executor) useSchema(ctx context.Context, conn *sql.Conn, database *domain.Database, schema string) (func(), error) {
	d, err := dialect.For(database.Engine)
	if err != nil {
		return nil, err
	}
	stmt := d.SetSchema(schema)
	if stmt == "" {
		return func() {}, nil
	}

	var restoreStmt string
	switch database.Engine {
	case domain.EnginePostgres:
		restoreStmt = "RESET search_path"
	case domain.EngineDuckDB:
		var catalog, current string
		if err := conn.QueryRowContext(ctx, "SELECT current_database(), current_schema()").Scan(&catalog, &current); err != nil {
			return nil, err
		}
		restoreStmt = "USE " + d.QuoteIdent(catalog) + "." + d.QuoteIdent(current)
	}

	if _, err := conn.ExecContext(ctx, stmt); err != nil {
		return nil, err
	}
	return func() {
		rctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
		defer cancel()
		if _, err := conn.ExecContext(rctx, restoreStmt); err != nil {
			e.logger.Warn("failed to restore schema; discarding connection", "database", database.Name, "error", err)
			_ = conn.Raw(func(interface{}) error { return driver.ErrBadConn })
		}
	}, nil
}

func (e *Executor) wrap(ctx context.Context, database *domain.Database, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	var adapterErr *domain.AdapterError
	if errors.As(err, &adapterErr) {
		return err
	}
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return err
	}
	return &domain.AdapterError{Message: SanitizeMessage(err.Error(), database.DSN), Cause: err}
}

func scanResult(rows *sql.Rows, maxRows int) (*domain.ResultSet, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	cols := make([]domain.Column, len(types))
	for i, ct := range types {
		cols[i] = domain.Column{Name: ct.Name(), Type: ct.DatabaseTypeName()}
	}

	resultRows := make([][]interface{}, 0)
	for rows.Next() {
		if maxRows > 0 && len(resultRows) >= maxRows {
			break
		}
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			vals[i] = normalizeValue(v)
		}
		resultRows = append(resultRows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &domain.ResultSet{Columns: cols, Rows: resultRows}, nil
}
