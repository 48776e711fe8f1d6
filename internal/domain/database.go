package domain

import "time"

// Supported database engines.
const (
	EngineDuckDB   = "duckdb"
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgresql"
)

// Database is a registered external database that queries run against.
type Database struct {
	ID              int64
	Name            string
	Engine          string
	DSN             string // plaintext; encrypted at rest by the store
	ExposeInSQLLab  bool
	AllowRunAsync   bool
	AllowCTAS       bool
	AllowDML        bool
	ForceCTASSchema *string
	CreatedAt       time.Time
}

// Column describes one result column.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ResultSet is a fully materialized query result.
type ResultSet struct {
	Columns []Column        `json:"columns"`
	Rows    [][]interface{} `json:"data"`
}

// RowCount returns the number of rows.
func (r *ResultSet) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Severity of a validation annotation.
type Severity string

// Annotation severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Annotation is a single validator finding.
type Annotation struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Line     *int     `json:"line,omitempty"`
	Column   *int     `json:"column,omitempty"`
}
