package evaluator

import (
	"strings"
)

// reserved are expr-lang keywords that can never be assignment targets.
var reserved = map[string]bool{
	"true": true, "false": true, "nil": true,
	"not": true, "and": true, "or": true, "in": true,
	"let": true, "if": true, "else": true,
	"matches": true, "contains": true, "startsWith": true, "endsWith": true,
}

type assignment struct {
	name string
	op   string // arithmetic operator for compound assignment, "" for plain =
	rhs  string
}

// parseAssignment recognises "name = rhs" and "name op= rhs". Comparisons
// such as "x == 1" are not assignments.
func parseAssignment(stmt string) (assignment, bool) {
	s := strings.TrimSpace(stmt)

	i := 0
	for i < len(s) && isIdentChar(s[i], i == 0) {
		i++
	}
	if i == 0 {
		return assignment{}, false
	}
	name := s[:i]
	if reserved[name] {
		return assignment{}, false
	}

	rest := strings.TrimLeft(s[i:], " \t")
	for _, op := range []string{"+", "-", "*", "/"} {
		if strings.HasPrefix(rest, op+"=") {
			return assignment{name: name, op: op, rhs: rest[2:]}, true
		}
	}
	if strings.HasPrefix(rest, "=") && !strings.HasPrefix(rest, "==") {
		return assignment{name: name, rhs: rest[1:]}, true
	}
	return assignment{}, false
}

func isIdentChar(c byte, first bool) bool {
	switch {
	case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		return true
	case '0' <= c && c <= '9':
		return !first
	default:
		return false
	}
}

// splitStatements splits input on top-level semicolons, ignoring those
// inside quotes or brackets. A statement starting with expr's own "let"
// keeps the remainder of the input, since let uses ; as part of its syntax.
func splitStatements(input string) []string {
	var (
		out    []string
		depth  int
		quote  byte
		escape bool
		start  int
	)

	emit := func(from, to int) bool {
		s := strings.TrimSpace(input[from:to])
		if s == "" {
			return false
		}
		if isLet(s) {
			out = append(out, strings.TrimSpace(input[from:]))
			return true
		}
		out = append(out, s)
		return false
	}

	for i := 0; i < len(input); i++ {
		c := input[i]
		if quote != 0 {
			switch {
			case escape:
				escape = false
			case c == '\\' && quote != '`':
				escape = true
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ';':
			if depth == 0 {
				if emit(start, i) {
					return out
				}
				start = i + 1
			}
		}
	}
	emit(start, len(input))
	return out
}

func isLet(s string) bool {
	return s == "let" || strings.HasPrefix(s, "let ") || strings.HasPrefix(s, "let\t")
}
