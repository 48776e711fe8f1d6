package dialect

import (
	"strings"
)

// mutatingKeywords change data or schema wherever they appear as a bare
// word inside a row-returning statement (data-modifying CTEs, SELECT INTO,
// FOR UPDATE).
var mutatingKeywords = map[string]bool{
	"INSERT":   true,
	"UPDATE":   true,
	"DELETE":   true,
	"MERGE":    true,
	"UPSERT":   true,
	"REPLACE":  true,
	"CREATE":   true,
	"DROP":     true,
	"ALTER":    true,
	"TRUNCATE": true,
	"GRANT":    true,
	"REVOKE":   true,
	"COPY":     true,
	"ATTACH":   true,
	"DETACH":   true,
	"VACUUM":   true,
}

// explainModifiers may sit between EXPLAIN and the explained statement.
var explainModifiers = map[string]bool{
	"ANALYZE": true,
	"ANALYSE": true,
	"VERBOSE": true,
	"QUERY":   true,
	"PLAN":    true,
}

// TrimStatement strips surrounding whitespace and trailing semicolons.
func TrimStatement(sql string) string {
	s := strings.TrimSpace(sql)
	for strings.HasSuffix(s, ";") {
		s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	}
	return s
}

// CountStatements returns the number of non-empty top-level statements.
func CountStatements(sql string) int {
	count := 0
	inStatement := false
	for _, tok := range Scan(sql) {
		if tok.Kind == TokenPunct && tok.Text == ";" && tok.Depth == 0 {
			inStatement = false
			continue
		}
		if !inStatement {
			count++
			inStatement = true
		}
	}
	return count
}

// FirstKeyword returns the upper-cased leading keyword of sql, skipping
// comments and opening parentheses.
func FirstKeyword(sql string) string {
	for _, tok := range Scan(sql) {
		if tok.Kind == TokenPunct && tok.Text == "(" {
			continue
		}
		if tok.Kind == TokenWord {
			return tok.Upper()
		}
		return ""
	}
	return ""
}

// IsSelect reports whether sql is a read-only row-returning statement:
// SELECT, VALUES, TABLE, FROM-first or WITH, containing no bare mutating
// keyword at any depth and no top-level INTO.
func IsSelect(sql string) bool {
	switch FirstKeyword(sql) {
	case "SELECT", "VALUES", "TABLE", "FROM", "WITH":
	default:
		return false
	}
	toks := Scan(sql)
	for i, tok := range toks {
		if tok.Kind != TokenWord {
			continue
		}
		kw := tok.Upper()
		if kw == "INTO" && tok.Depth == 0 {
			return false
		}
		if !mutatingKeywords[kw] {
			continue
		}
		if i+1 < len(toks) && toks[i+1].Text == "(" {
			continue // function call such as replace(...)
		}
		if i > 0 && toks[i-1].Text == "." {
			continue // qualified column such as t.update
		}
		return false
	}
	return true
}

// IsReadOnly reports whether sql can run against a database that does not
// allow DML. Only row-returning selects, SHOW, DESCRIBE, and EXPLAIN of a
// row-returning select qualify; anything else is assumed to write.
func IsReadOnly(sql string) bool {
	switch FirstKeyword(sql) {
	case "SHOW", "DESCRIBE":
		return true
	case "EXPLAIN":
		target, ok := explainTarget(sql)
		return ok && IsSelect(target)
	default:
		return IsSelect(sql)
	}
}

// explainTarget returns the statement wrapped by a leading EXPLAIN, skipping
// a parenthesized option list and modifiers such as ANALYZE or QUERY PLAN.
func explainTarget(sql string) (string, bool) {
	toks := Scan(sql)
	i := 0
	for i < len(toks) && toks[i].Kind == TokenPunct && toks[i].Text == "(" {
		i++
	}
	if i >= len(toks) || !toks[i].IsKeyword("EXPLAIN") {
		return "", false
	}
	i++
	if i < len(toks) && toks[i].Text == "(" {
		depth := toks[i].Depth
		for i++; i < len(toks); i++ {
			if toks[i].Text == ")" && toks[i].Depth == depth {
				i++
				break
			}
		}
	}
	for i < len(toks) && toks[i].Kind == TokenWord && explainModifiers[toks[i].Upper()] {
		i++
	}
	if i >= len(toks) {
		return "", false
	}
	return sql[toks[i].Start:], true
}
