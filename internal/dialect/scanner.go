// Package dialect provides lightweight, dialect-aware SQL text handling:
// tokenizing, statement classification, identifier quoting, and row limits.
//
// It never parses a full grammar. The scanner only knows enough to skip
// comments, string literals, and quoted identifiers, and to track
// parenthesis depth, which is all limit detection and statement
// classification need.
package dialect

import "strings"

// TokenKind classifies a scanned token.
type TokenKind int

// Token kinds.
const (
	TokenWord TokenKind = iota
	TokenNumber
	TokenString
	TokenQuotedIdent
	TokenPunct
)

// Token is a lexical unit with its byte span in the source text.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
	Depth int // parenthesis depth at the token
}

// Upper returns the upper-cased text for words and the raw text otherwise.
func (t Token) Upper() string {
	if t.Kind == TokenWord {
		return strings.ToUpper(t.Text)
	}
	return t.Text
}

// IsKeyword reports whether t is the word kw (case-insensitive).
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == TokenWord && strings.EqualFold(t.Text, kw)
}

// Scan tokenizes sql, dropping whitespace and comments. Unterminated strings
// and comments run to the end of input.
func Scan(sql string) []Token {
	var (
		toks  []Token
		depth int
		i     int
	)
	n := len(sql)
	for i < n {
		c := sql[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			i++
		case c == '-' && i+1 < n && sql[i+1] == '-':
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				i = n
			} else {
				i += end + 1
			}
		case c == '/' && i+1 < n && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				i = n
			} else {
				i += end + 4
			}
		case c == '\'':
			end := scanQuoted(sql, i, '\'')
			toks = append(toks, Token{Kind: TokenString, Text: sql[i:end], Start: i, End: end, Depth: depth})
			i = end
		case c == '"' || c == '`':
			end := scanQuoted(sql, i, c)
			toks = append(toks, Token{Kind: TokenQuotedIdent, Text: sql[i:end], Start: i, End: end, Depth: depth})
			i = end
		case c == '$':
			if end, ok := scanDollarQuoted(sql, i); ok {
				toks = append(toks, Token{Kind: TokenString, Text: sql[i:end], Start: i, End: end, Depth: depth})
				i = end
				continue
			}
			toks = append(toks, Token{Kind: TokenPunct, Text: "$", Start: i, End: i + 1, Depth: depth})
			i++
		case isDigit(c):
			j := i
			for j < n && (isDigit(sql[j]) || sql[j] == '.') {
				j++
			}
			toks = append(toks, Token{Kind: TokenNumber, Text: sql[i:j], Start: i, End: j, Depth: depth})
			i = j
		case isWordStart(c):
			j := i
			for j < n && isWordPart(sql[j]) {
				j++
			}
			toks = append(toks, Token{Kind: TokenWord, Text: sql[i:j], Start: i, End: j, Depth: depth})
			i = j
		default:
			if c == ')' && depth > 0 {
				depth--
			}
			toks = append(toks, Token{Kind: TokenPunct, Text: string(c), Start: i, End: i + 1, Depth: depth})
			if c == '(' {
				depth++
			}
			i++
		}
	}
	return toks
}

// scanQuoted returns the end offset of a quoted run starting at start. A
// doubled quote character is an escaped quote.
func scanQuoted(sql string, start int, q byte) int {
	i := start + 1
	for i < len(sql) {
		if sql[i] == q {
			if i+1 < len(sql) && sql[i+1] == q {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return len(sql)
}

// scanDollarQuoted handles PostgreSQL $tag$...$tag$ strings.
func scanDollarQuoted(sql string, start int) (int, bool) {
	j := start + 1
	if j < len(sql) && isDigit(sql[j]) {
		return 0, false // positional parameter such as $1
	}
	for j < len(sql) && isWordPart(sql[j]) {
		j++
	}
	if j >= len(sql) || sql[j] != '$' {
		return 0, false
	}
	tag := sql[start : j+1]
	end := strings.Index(sql[j+1:], tag)
	if end < 0 {
		return len(sql), true
	}
	return j + 1 + end + len(tag), true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isWordPart(c byte) bool {
	return isWordStart(c) || isDigit(c)
}
