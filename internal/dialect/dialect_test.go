package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqllab/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestScan_SkipsCommentsAndStrings(t *testing.T) {
	t.Parallel()

	toks := Scan("SELECT 'a;b' -- LIMIT 5\n, \"x\"\"y\" /* ; */ FROM (t) $$ LIMIT $$ $1")
	var kinds []TokenKind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []TokenKind{
		TokenWord, TokenString, TokenPunct, TokenQuotedIdent, TokenWord,
		TokenPunct, TokenWord, TokenPunct, TokenString, TokenPunct, TokenNumber,
	}, kinds)
	assert.Equal(t, "'a;b'", toks[1].Text)
	assert.Equal(t, `"x""y"`, toks[3].Text)
	assert.Equal(t, 1, toks[6].Depth)
	assert.Equal(t, 0, toks[7].Depth)
}

func TestCountStatements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sql  string
		want int
	}{
		{"SELECT 1", 1},
		{"SELECT 1;", 1},
		{"SELECT 1; SELECT 2", 2},
		{"SELECT ';'", 1},
		{"-- only a comment", 0},
		{";;", 0},
	}
	for _, tc := range tests {
		t.Run(tc.sql, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, CountStatements(tc.sql))
		})
	}
}

func TestStatementClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sql      string
		select_  bool
		readOnly bool
	}{
		{"SELECT * FROM t", true, true},
		{"  -- lead\n select 1", true, true},
		{"(SELECT 1) UNION (SELECT 2)", true, true},
		{"FROM t", true, true},
		{"WITH x AS (SELECT 1) SELECT * FROM x", true, true},
		{"WITH x AS (SELECT 1) INSERT INTO t SELECT * FROM x", false, false},
		{"WITH d AS (DELETE FROM t RETURNING *) SELECT * FROM d", false, false},
		{"WITH x AS (SELECT 'a' AS c) SELECT replace(c, 'a', 'b') FROM x", true, true},
		{"SELECT t.update FROM t", true, true},
		{"SELECT 'delete me' FROM t", true, true},
		{"SELECT * INTO t2 FROM t", false, false},
		{"SELECT * FROM t FOR UPDATE", false, false},
		{"INSERT INTO t VALUES (1)", false, false},
		{"delete from t", false, false},
		{"CREATE TABLE t AS SELECT 1", false, false},
		{"SHOW TABLES", false, true},
		{"DESCRIBE t", false, true},
		{"EXPLAIN SELECT 1", false, true},
		{"EXPLAIN ANALYZE SELECT * FROM t", false, true},
		{"EXPLAIN (ANALYZE, FORMAT JSON) SELECT 1", false, true},
		{"EXPLAIN QUERY PLAN SELECT 1", false, true},
		{"EXPLAIN ANALYZE DELETE FROM t", false, false},
		{"EXPLAIN (ANALYZE) UPDATE t SET a = 1", false, false},
		{"EXPLAIN", false, false},
		{"SET threads = 1", false, false},
		{"PRAGMA enable_profiling", false, false},
		{"CALL dbgen(sf = 1)", false, false},
		{"INSTALL httpfs", false, false},
		{"CHECKPOINT", false, false},
	}
	for _, tc := range tests {
		t.Run(tc.sql, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.select_, IsSelect(tc.sql))
			assert.Equal(t, tc.readOnly, IsReadOnly(tc.sql))
		})
	}
}

func TestExtractLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sql    string
		want   int
		wantOK bool
	}{
		{"SELECT * FROM t LIMIT 10", 10, true},
		{"SELECT * FROM t limit 10;", 10, true},
		{"SELECT * FROM t LIMIT 10 OFFSET 5", 10, true},
		{"SELECT * FROM t LIMIT 0", 0, true},
		{"SELECT * FROM (SELECT * FROM t LIMIT 3) s", 0, false},
		{"SELECT * FROM t LIMIT ALL", 0, false},
		{"SELECT * FROM t LIMIT 5 UNION SELECT 1", 0, false},
		{"SELECT 'LIMIT 4' FROM t", 0, false},
		{"SELECT * FROM t -- LIMIT 4", 0, false},
		{"SELECT * FROM t LIMIT 5, 10", 10, true},
		{"SELECT * FROM t LIMIT $1", 0, false},
		{"SELECT * FROM t FETCH FIRST 10 ROWS ONLY", 10, true},
		{"SELECT * FROM t OFFSET 2 ROWS FETCH NEXT 3 ROWS ONLY", 3, true},
	}
	for _, tc := range tests {
		t.Run(tc.sql, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractLimit(tc.sql)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestApplyLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		sql         string
		limit       int
		want        string
		wantApplied bool
	}{
		{"append", "SELECT * FROM t;", 100, "SELECT * FROM t\nLIMIT 100", true},
		{"after line comment", "SELECT * FROM t -- note", 5, "SELECT * FROM t -- note\nLIMIT 5", true},
		{"replace larger", "SELECT * FROM t LIMIT 500", 100, "SELECT * FROM t LIMIT 100", true},
		{"keep smaller", "SELECT * FROM t LIMIT 20", 100, "SELECT * FROM t LIMIT 20", true},
		{"keep offset", "SELECT * FROM t LIMIT 500 OFFSET 10", 100, "SELECT * FROM t LIMIT 100 OFFSET 10", true},
		{"subquery limit untouched", "SELECT * FROM (SELECT 1 LIMIT 3) s", 7, "SELECT * FROM (SELECT 1 LIMIT 3) s\nLIMIT 7", true},
		{"dml unchanged", "UPDATE t SET a = 1;", 100, "UPDATE t SET a = 1", false},
		{"limit all", "SELECT * FROM t LIMIT ALL", 1000, "SELECT * FROM t LIMIT 1000", true},
		{"offset comma count", "SELECT * FROM t LIMIT 5, 10", 1000, "SELECT * FROM t LIMIT 5, 10", true},
		{"offset comma count above limit", "SELECT * FROM t LIMIT 5, 5000", 1000, "SELECT * FROM t LIMIT 5, 1000", true},
		{"overflowing literal", "SELECT * FROM t LIMIT 99999999999999999999999", 1000, "SELECT * FROM t LIMIT 1000", true},
		{"fetch first kept", "SELECT * FROM t FETCH FIRST 10 ROWS ONLY", 1000, "SELECT * FROM t FETCH FIRST 10 ROWS ONLY", true},
		{"fetch first rewritten", "SELECT * FROM t FETCH FIRST 5000 ROWS ONLY", 1000, "SELECT * FROM t FETCH FIRST 1000 ROWS ONLY", true},
		{"offset only", "SELECT * FROM t OFFSET 5", 10, "SELECT * FROM t OFFSET 5\nLIMIT 10", true},
		{"positional parameter", "SELECT * FROM t LIMIT $1", 1000, "SELECT *\nFROM (\nSELECT * FROM t LIMIT $1\n) AS sqllab_limited\nLIMIT 1000", true},
		{"placeholder", "SELECT * FROM t LIMIT ?", 1000, "SELECT *\nFROM (\nSELECT * FROM t LIMIT ?\n) AS sqllab_limited\nLIMIT 1000", true},
		{"expression", "SELECT * FROM t LIMIT 10 + 5", 1000, "SELECT *\nFROM (\nSELECT * FROM t LIMIT 10 + 5\n) AS sqllab_limited\nLIMIT 1000", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, applied := ApplyLimit(tc.sql, tc.limit)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantApplied, applied)
		})
	}
}

func TestResolveLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		ceiling   int
		requested int
		embedded  *int
		want      int
	}{
		{"ceiling only", 1000, 0, nil, 1000},
		{"requested below ceiling", 1000, 50, nil, 50},
		{"requested above ceiling", 1000, 5000, nil, 1000},
		{"embedded wins", 1000, 50, intPtr(10), 10},
		{"embedded above requested", 1000, 50, intPtr(80), 50},
		{"negative requested ignored", 1000, -5, nil, 1000},
		{"zero embedded floors at one", 1000, 0, intPtr(0), 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ResolveLimit(tc.ceiling, tc.requested, tc.embedded))
		})
	}
}

func TestDialect_Quoting(t *testing.T) {
	t.Parallel()

	pg, err := For(domain.EnginePostgres)
	require.NoError(t, err)
	schema := "scratch"
	assert.Equal(t, `"we""ird"`, pg.QuoteIdent(`we"ird`))
	assert.Equal(t, `'it''s'`, pg.QuoteLiteral("it's"))
	assert.Equal(t, `"scratch"."t"`, pg.QualifiedTable(&schema, "t"))
	assert.Equal(t, `SET search_path TO "scratch"`, pg.SetSchema("scratch"))
	assert.Equal(t, "CREATE TABLE \"scratch\".\"tmp\" AS\nSELECT 1", pg.CreateTableAs(&schema, "tmp", "SELECT 1;"))
	assert.Equal(t, "SELECT *\nFROM \"tmp\"\nLIMIT 10", pg.SelectStar(nil, "tmp", 10))

	duck, err := For(domain.EngineDuckDB)
	require.NoError(t, err)
	assert.Equal(t, `USE "main"`, duck.SetSchema("main"))

	lite, err := For(domain.EngineSQLite)
	require.NoError(t, err)
	assert.Empty(t, lite.SetSchema("main"))

	_, err = For("oracle")
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}
