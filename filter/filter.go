// Package filter translates the constrained SQL-like field filter grammar
// used by relation rules: equality, comparisons, LIKE, IN (...) and
// NOT IN (...), joined by AND, over bare identifiers.
//
// Pushdown application onto a layer is a performance optimization only; the
// underlying drivers do not reliably support IN/NOT IN, so rules that need
// those semantics also get an authoritative in-memory predicate.
package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Op is a clause operator.
type Op string

// Supported clause operators.
const (
	OpEqual        Op = "="
	OpNotEqual     Op = "<>"
	OpLess         Op = "<"
	OpLessEqual    Op = "<="
	OpGreater      Op = ">"
	OpGreaterEqual Op = ">="
	OpLike         Op = "LIKE"
	OpIn           Op = "IN"
	OpNotIn        Op = "NOT IN"
)

// Clause is one parsed `field op values` unit of a filter expression.
type Clause struct {
	Field  string
	Op     Op
	Values []string
}

var fieldPattern = regexp.MustCompile(
	`(?i)\b([A-Za-z_][A-Za-z0-9_]*)\s*(?:<=|>=|<>|=|<|>|NOT\s+IN\b|IN\b|LIKE\b)`,
)

// Fields returns the field names referenced by expr, in order of first use.
func Fields(expr string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range fieldPattern.FindAllStringSubmatch(expr, -1) {
		name := m[1]
		if strings.EqualFold(name, "AND") || strings.EqualFold(name, "NOT") {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Parse splits expr into its AND-joined clauses. List values keep their
// source order; quotes are stripped from literals.
func Parse(expr string) ([]Clause, error) {
	var clauses []Clause
	for _, part := range splitAnd(expr) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := parseClause(part)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	if len(clauses) == 0 {
		return nil, fmt.Errorf("filter: empty expression %q", expr)
	}
	return clauses, nil
}

// splitAnd splits on the keyword AND outside parentheses.
func splitAnd(expr string) []string {
	var parts []string
	depth := 0
	start := 0
	upper := strings.ToUpper(expr)
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth != 0 || i+5 > len(expr) {
			continue
		}
		if upper[i:i+5] == " AND " {
			parts = append(parts, expr[start:i])
			start = i + 5
			i += 4
		}
	}
	parts = append(parts, expr[start:])
	return parts
}

var clausePattern = regexp.MustCompile(
	`(?is)^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(<=|>=|<>|=|<|>|NOT\s+IN|IN|LIKE)\s*(.+?)\s*$`,
)

func parseClause(part string) (Clause, error) {
	m := clausePattern.FindStringSubmatch(part)
	if m == nil {
		return Clause{}, fmt.Errorf("filter: unparsable clause %q", part)
	}
	op := Op(strings.ToUpper(regexp.MustCompile(`\s+`).ReplaceAllString(m[2], " ")))
	rest := strings.TrimSpace(m[3])

	c := Clause{Field: m[1], Op: op}
	if op == OpIn || op == OpNotIn {
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
			return Clause{}, fmt.Errorf("filter: %s clause %q missing parentheses", op, part)
		}
		rest = rest[1 : len(rest)-1]
		// Legacy catalogs write pipe-separated lists.
		rest = strings.ReplaceAll(rest, "|", ",")
		for _, v := range strings.Split(rest, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			c.Values = append(c.Values, unquote(v))
		}
		if len(c.Values) == 0 {
			return Clause{}, fmt.Errorf("filter: %s clause %q has no values", op, part)
		}
		return c, nil
	}
	c.Values = []string{unquote(rest)}
	return c, nil
}

func unquote(v string) string {
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		return v[1 : len(v)-1]
	}
	return v
}

func isNumeric(v string) bool {
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}

func quoteLiteral(v string) string {
	if isNumeric(v) {
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// String renders the clause with normalized quoting: numeric literals
// unquoted, everything else single-quoted, list values comma-separated.
func (c Clause) String() string {
	if c.Op == OpIn || c.Op == OpNotIn {
		quoted := make([]string, len(c.Values))
		for i, v := range c.Values {
			quoted[i] = quoteLiteral(v)
		}
		return fmt.Sprintf("%s %s (%s)", c.Field, c.Op, strings.Join(quoted, ","))
	}
	return fmt.Sprintf("%s %s %s", c.Field, c.Op, quoteLiteral(c.Values[0]))
}

// Render joins clauses back into a normalized expression.
func Render(clauses []Clause) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}
