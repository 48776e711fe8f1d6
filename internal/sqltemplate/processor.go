// Package sqltemplate renders parameterized SQL. It supports a deliberately
// small template language: parameter substitution, dialect-aware quoting,
// date helpers, and if/else blocks. No other expressions are evaluated.
package sqltemplate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"sqllab/internal/dialect"
	"sqllab/internal/domain"
)

// Context carries everything a render may read. Rendering is a pure
// function of the SQL text and the context.
type Context struct {
	Params  map[string]interface{}
	Dialect dialect.Dialect
	User    string
	Now     time.Time
}

// HasTemplate reports whether sql contains template tags.
func HasTemplate(sql string) bool {
	return strings.Contains(sql, "{{") || strings.Contains(sql, "{%")
}

// Render substitutes parameters into sql. Any failure is returned as a
// *domain.TemplateRenderError.
func Render(sql string, tc Context) (string, error) {
	if !HasTemplate(sql) {
		return sql, nil
	}
	out, err := renderBlocks(sql, tc.evalExpr, tc.evalIf)
	if err != nil {
		return "", &domain.TemplateRenderError{Cause: err}
	}
	return out, nil
}

func (tc Context) evalExpr(expr string) (string, error) {
	if isIdentifier(expr) {
		v, ok := tc.Params[expr]
		if !ok {
			return "", domain.ErrValidation("parameter %q was not provided", expr)
		}
		return formatScalar(expr, v)
	}

	name, args, ok, err := parseCall(expr)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrValidation("unsupported template expression %q", expr)
	}

	switch name {
	case "param":
		if len(args) != 1 && len(args) != 2 {
			return "", domain.ErrValidation("param() expects a name and an optional default")
		}
		key, err := unquote(args[0])
		if err != nil {
			return "", err
		}
		if v, ok := tc.Params[key]; ok {
			return formatScalar(key, v)
		}
		if len(args) == 2 {
			return unquote(args[1])
		}
		return "", domain.ErrValidation("parameter %q was not provided", key)
	case "quote":
		key, v, err := tc.lookupArg(name, args)
		if err != nil {
			return "", err
		}
		if list, ok := v.([]interface{}); ok {
			quoted := make([]string, 0, len(list))
			for _, item := range list {
				s, err := formatScalar(key, item)
				if err != nil {
					return "", err
				}
				quoted = append(quoted, tc.Dialect.QuoteLiteral(s))
			}
			return strings.Join(quoted, ", "), nil
		}
		s, err := formatScalar(key, v)
		if err != nil {
			return "", err
		}
		return tc.Dialect.QuoteLiteral(s), nil
	case "quote_ident":
		key, v, err := tc.lookupArg(name, args)
		if err != nil {
			return "", err
		}
		s, err := formatScalar(key, v)
		if err != nil {
			return "", err
		}
		return tc.Dialect.QuoteIdent(s), nil
	case "current_date":
		if len(args) != 0 {
			return "", domain.ErrValidation("current_date() does not accept arguments")
		}
		return tc.Now.UTC().Format(time.DateOnly), nil
	case "current_timestamp":
		if len(args) != 0 {
			return "", domain.ErrValidation("current_timestamp() does not accept arguments")
		}
		return tc.Now.UTC().Format(time.DateTime), nil
	case "current_user":
		if len(args) != 0 {
			return "", domain.ErrValidation("current_user() does not accept arguments")
		}
		return tc.User, nil
	case "dt_add_days":
		if len(args) != 1 {
			return "", domain.ErrValidation("dt_add_days() expects one integer argument")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return "", domain.ErrValidation("dt_add_days() expects an integer, got %q", args[0])
		}
		return tc.Now.UTC().AddDate(0, 0, n).Format(time.DateOnly), nil
	default:
		return "", domain.ErrValidation("unknown template function %q", name)
	}
}

func (tc Context) lookupArg(fn string, args []string) (string, interface{}, error) {
	if len(args) != 1 {
		return "", nil, domain.ErrValidation("%s() expects exactly one parameter name", fn)
	}
	key, err := unquote(args[0])
	if err != nil {
		return "", nil, err
	}
	v, ok := tc.Params[key]
	if !ok {
		return "", nil, domain.ErrValidation("parameter %q was not provided", key)
	}
	return key, v, nil
}

func (tc Context) evalIf(expr string) (bool, error) {
	negate := false
	if strings.HasPrefix(expr, "not ") {
		negate = true
		expr = strings.TrimSpace(strings.TrimPrefix(expr, "not "))
	}
	var truth bool
	switch {
	case expr == "true":
		truth = true
	case expr == "false":
		truth = false
	case isIdentifier(expr):
		truth = truthy(tc.Params[expr])
	default:
		return false, domain.ErrValidation("unsupported if condition %q", expr)
	}
	return truth != negate, nil
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case []interface{}:
		return len(t) > 0
	default:
		return true
	}
}

func formatScalar(name string, v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case nil:
		return "NULL", nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", domain.ErrValidation("parameter %q has unsupported type %T", name, v)
	}
}
