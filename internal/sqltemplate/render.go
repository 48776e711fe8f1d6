package sqltemplate

import (
	"strings"

	"sqllab/internal/domain"
)

// renderBlocks walks {{ expr }} and {% if %}/{% else %}/{% endif %} tags,
// writing literal text and expression output for active branches only.
// Conditions in inactive branches are never evaluated.
func renderBlocks(input string, evalExpr func(string) (string, error), evalIf func(string) (bool, error)) (string, error) {
	type branch struct {
		cond     bool
		parentOn bool
		inElse   bool
	}

	var out strings.Builder
	var stack []branch
	active := true

	recompute := func() {
		active = true
		for _, b := range stack {
			if !b.parentOn || b.inElse == b.cond {
				active = false
				return
			}
		}
	}

	i := 0
	for i < len(input) {
		switch {
		case strings.HasPrefix(input[i:], "{{"):
			end := strings.Index(input[i+2:], "}}")
			if end < 0 {
				return "", domain.ErrValidation("unterminated expression tag at offset %d", i)
			}
			if active {
				repl, err := evalExpr(strings.TrimSpace(input[i+2 : i+2+end]))
				if err != nil {
					return "", err
				}
				out.WriteString(repl)
			}
			i += end + 4

		case strings.HasPrefix(input[i:], "{%"):
			end := strings.Index(input[i+2:], "%}")
			if end < 0 {
				return "", domain.ErrValidation("unterminated control tag at offset %d", i)
			}
			directive := strings.TrimSpace(strings.Trim(input[i+2:i+2+end], "-"))

			switch {
			case strings.HasPrefix(directive, "if "):
				cond := false
				if active {
					v, err := evalIf(strings.TrimSpace(strings.TrimPrefix(directive, "if ")))
					if err != nil {
						return "", err
					}
					cond = v
				}
				stack = append(stack, branch{cond: cond, parentOn: active})
			case directive == "else":
				if len(stack) == 0 {
					return "", domain.ErrValidation("else without matching if")
				}
				if stack[len(stack)-1].inElse {
					return "", domain.ErrValidation("duplicate else in the same if block")
				}
				stack[len(stack)-1].inElse = true
			case directive == "endif":
				if len(stack) == 0 {
					return "", domain.ErrValidation("endif without matching if")
				}
				stack = stack[:len(stack)-1]
			default:
				return "", domain.ErrValidation("unsupported control tag %q", directive)
			}
			recompute()
			i += end + 4

		default:
			if active {
				out.WriteByte(input[i])
			}
			i++
		}
	}

	if len(stack) > 0 {
		return "", domain.ErrValidation("unterminated if block")
	}
	return out.String(), nil
}

// parseCall splits "name(arg, ...)" into its parts. ok is false when expr is
// not a call.
func parseCall(expr string) (name string, args []string, ok bool, err error) {
	open := strings.IndexByte(expr, '(')
	closeIdx := strings.LastIndexByte(expr, ')')
	if open <= 0 || closeIdx < open {
		return "", nil, false, nil
	}
	name = strings.TrimSpace(expr[:open])
	if !isIdentifier(name) {
		return "", nil, false, nil
	}
	if strings.TrimSpace(expr[closeIdx+1:]) != "" {
		return "", nil, false, domain.ErrValidation("invalid expression %q", expr)
	}
	args, err = splitArgs(expr[open+1 : closeIdx])
	if err != nil {
		return "", nil, false, err
	}
	return name, args, true, nil
}

func splitArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var args []string
	start := 0
	inSingle, inDouble := false, false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			if inDouble {
				continue
			}
			if inSingle && i+1 < len(s) && s[i+1] == '\'' {
				i++
				continue
			}
			inSingle = !inSingle
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case ',':
			if !inSingle && !inDouble {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if inSingle || inDouble {
		return nil, domain.ErrValidation("unterminated string literal in arguments")
	}
	args = append(args, strings.TrimSpace(s[start:]))
	for _, a := range args {
		if a == "" {
			return nil, domain.ErrValidation("empty function argument")
		}
	}
	return args, nil
}

func unquote(v string) (string, error) {
	v = strings.TrimSpace(v)
	if len(v) >= 2 {
		switch {
		case v[0] == '\'' && v[len(v)-1] == '\'':
			return strings.ReplaceAll(v[1:len(v)-1], "''", "'"), nil
		case v[0] == '"' && v[len(v)-1] == '"':
			return strings.ReplaceAll(v[1:len(v)-1], `""`, `"`), nil
		}
	}
	return "", domain.ErrValidation("expected quoted string argument, got %q", v)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
