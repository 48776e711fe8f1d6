package dialect

import (
	"math"
	"strconv"
	"strings"
)

type limitKind int

const (
	limitNone    limitKind = iota // no top-level row-limiting clause
	limitLiteral                  // integer literal count
	limitAll                      // LIMIT ALL
	limitOpaque                   // parameters, expressions, or anything unrecognized
)

// limitClause locates the trailing top-level row-limiting clause of a
// statement.
type limitClause struct {
	kind  limitKind
	value int // row count when kind is limitLiteral
	start int // byte span of the count to rewrite
	end   int
}

// findLimit inspects the top-level tail of sql. Recognized forms are
//
//	LIMIT {n | ALL} [OFFSET m [ROW|ROWS]]
//	LIMIT m, n
//	[OFFSET m {ROW|ROWS}] FETCH {FIRST|NEXT} [n] {ROW|ROWS} {ONLY|WITH TIES} [OFFSET m [ROW|ROWS]]
//
// Any other top-level LIMIT or FETCH is reported as limitOpaque.
func findLimit(sql string) limitClause {
	var top []Token
	for _, tok := range Scan(sql) {
		if tok.Depth == 0 {
			top = append(top, tok)
		}
	}
	for len(top) > 0 && top[len(top)-1].Kind == TokenPunct && top[len(top)-1].Text == ";" {
		top = top[:len(top)-1]
	}

	at := -1
	for i := len(top) - 1; i >= 0; i-- {
		if top[i].IsKeyword("LIMIT") || top[i].IsKeyword("FETCH") {
			at = i
			break
		}
	}
	if at < 0 {
		return limitClause{kind: limitNone}
	}
	var (
		clause limitClause
		rest   []Token
		ok     bool
	)
	if top[at].IsKeyword("LIMIT") {
		clause, rest, ok = parseLimit(top[at+1:])
	} else {
		clause, rest, ok = parseFetch(top[at+1:])
	}
	if !ok || !onlyOffsetFollows(rest) {
		return limitClause{kind: limitOpaque}
	}
	return clause
}

func parseLimit(toks []Token) (limitClause, []Token, bool) {
	if len(toks) == 0 {
		return limitClause{}, nil, false
	}
	first := toks[0]
	if first.IsKeyword("ALL") {
		return limitClause{kind: limitAll, start: first.Start, end: first.End}, toks[1:], true
	}
	n, ok := literalCount(first)
	if !ok {
		return limitClause{}, nil, false
	}
	if len(toks) >= 2 && toks[1].Text == "," {
		// LIMIT offset, count
		if len(toks) < 3 {
			return limitClause{}, nil, false
		}
		count, ok := literalCount(toks[2])
		if !ok {
			return limitClause{}, nil, false
		}
		return limitClause{kind: limitLiteral, value: count, start: toks[2].Start, end: toks[2].End}, toks[3:], true
	}
	return limitClause{kind: limitLiteral, value: n, start: first.Start, end: first.End}, toks[1:], true
}

func parseFetch(toks []Token) (limitClause, []Token, bool) {
	if len(toks) < 3 || !(toks[0].IsKeyword("FIRST") || toks[0].IsKeyword("NEXT")) {
		return limitClause{}, nil, false
	}
	clause := limitClause{kind: limitLiteral, value: 1}
	i := 1
	if n, ok := literalCount(toks[i]); ok {
		clause.value, clause.start, clause.end = n, toks[i].Start, toks[i].End
		i++
	} else {
		// FETCH FIRST ROWS ONLY means one row; the count is inserted before ROWS.
		clause.start, clause.end = toks[i].Start, toks[i].Start
	}
	if i >= len(toks) || !(toks[i].IsKeyword("ROW") || toks[i].IsKeyword("ROWS")) {
		return limitClause{}, nil, false
	}
	i++
	switch {
	case i < len(toks) && toks[i].IsKeyword("ONLY"):
		i++
	case i+1 < len(toks) && toks[i].IsKeyword("WITH") && toks[i+1].IsKeyword("TIES"):
		i += 2
	default:
		return limitClause{}, nil, false
	}
	return clause, toks[i:], true
}

// literalCount parses an unsigned integer token. Literals too large for an
// int saturate.
func literalCount(tok Token) (int, bool) {
	if tok.Kind != TokenNumber || strings.Contains(tok.Text, ".") {
		return 0, false
	}
	n, err := strconv.Atoi(tok.Text)
	if err != nil {
		return math.MaxInt, true
	}
	return n, true
}

func onlyOffsetFollows(rest []Token) bool {
	switch len(rest) {
	case 0:
		return true
	case 2, 3:
		if !rest[0].IsKeyword("OFFSET") || rest[1].Kind != TokenNumber {
			return false
		}
		return len(rest) == 2 || rest[2].IsKeyword("ROW") || rest[2].IsKeyword("ROWS")
	default:
		return false
	}
}

// ExtractLimit returns the literal row limit embedded at the end of sql.
func ExtractLimit(sql string) (int, bool) {
	clause := findLimit(sql)
	if clause.kind != limitLiteral {
		return 0, false
	}
	return clause.value, true
}

// ApplyLimit caps a row-returning statement at limit. An existing trailing
// literal count larger than limit, or LIMIT ALL, is rewritten in place; a
// smaller one is kept. When no clause is present one is appended on its own
// line so a trailing line comment cannot swallow it. A clause that cannot be
// rewritten safely is left alone and the statement is wrapped in an outer
// SELECT carrying the limit. Non-select statements are returned trimmed but
// otherwise unchanged, and applied is false.
func ApplyLimit(sql string, limit int) (out string, applied bool) {
	s := TrimStatement(sql)
	if limit <= 0 || !IsSelect(s) {
		return s, false
	}
	n := strconv.Itoa(limit)
	clause := findLimit(s)
	switch clause.kind {
	case limitNone:
		return s + "\nLIMIT " + n, true
	case limitLiteral:
		if clause.value <= limit {
			return s, true
		}
		if clause.start == clause.end {
			n += " "
		}
		return s[:clause.start] + n + s[clause.end:], true
	case limitAll:
		return s[:clause.start] + n + s[clause.end:], true
	default:
		return "SELECT *\nFROM (\n" + s + "\n) AS sqllab_limited\nLIMIT " + n, true
	}
}

// ResolveLimit returns the effective row cap: the minimum of the ceiling,
// a positive requested limit, and a limit embedded in the SQL. A
// non-positive request is treated as absent. The result is at least 1.
func ResolveLimit(ceiling, requested int, embedded *int) int {
	limit := ceiling
	if requested > 0 && (limit <= 0 || requested < limit) {
		limit = requested
	}
	if embedded != nil && (limit <= 0 || *embedded < limit) {
		limit = *embedded
	}
	if limit < 1 {
		return 1
	}
	return limit
}
