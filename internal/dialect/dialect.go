package dialect

import (
	"fmt"
	"strings"

	"sqllab/internal/domain"
)

// Dialect captures the per-engine text conventions needed to build SQL.
type Dialect struct {
	Engine string
	// SchemaSwitch is the statement template that changes the default schema,
	// or empty when the engine has no such notion.
	SchemaSwitch string
}

// For returns the dialect of an engine.
func For(engine string) (Dialect, error) {
	switch engine {
	case domain.EnginePostgres:
		return Dialect{Engine: engine, SchemaSwitch: "SET search_path TO %s"}, nil
	case domain.EngineDuckDB:
		return Dialect{Engine: engine, SchemaSwitch: "USE %s"}, nil
	case domain.EngineSQLite:
		return Dialect{Engine: engine}, nil
	default:
		return Dialect{}, domain.ErrValidation("unsupported engine %q", engine)
	}
}

// QuoteIdent quotes an identifier, doubling embedded quotes.
func (d Dialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral quotes a string literal, doubling embedded quotes.
func (d Dialect) QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// QualifiedTable returns "schema"."table", or just "table" without a schema.
func (d Dialect) QualifiedTable(schema *string, table string) string {
	if schema == nil || *schema == "" {
		return d.QuoteIdent(table)
	}
	return d.QuoteIdent(*schema) + "." + d.QuoteIdent(table)
}

// SetSchema returns the statement that makes schema the default, or "" when
// the engine does not support it.
func (d Dialect) SetSchema(schema string) string {
	if d.SchemaSwitch == "" || schema == "" {
		return ""
	}
	return fmt.Sprintf(d.SchemaSwitch, d.QuoteIdent(schema))
}

// CreateTableAs wraps a select statement so its rows land in table.
func (d Dialect) CreateTableAs(schema *string, table, selectSQL string) string {
	return "CREATE TABLE " + d.QualifiedTable(schema, table) + " AS\n" + TrimStatement(selectSQL)
}

// SelectStar returns a statement reading back up to limit rows of table.
func (d Dialect) SelectStar(schema *string, table string, limit int) string {
	return fmt.Sprintf("SELECT *\nFROM %s\nLIMIT %d", d.QualifiedTable(schema, table), limit)
}
