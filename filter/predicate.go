package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
)

// Predicate is the authoritative in-memory form of a filter expression:
// every AND-joined clause evaluated per feature. Pushdown onto a driver is
// an optimization only; callers that must not depend on driver support
// re-apply the predicate themselves.
type Predicate struct {
	clauses []Clause
}

// Compile parses expr into a Predicate. ok is false when the expression is
// empty or unparsable; callers then continue unfiltered.
func Compile(expr string) (*Predicate, bool) {
	clauses, err := Parse(expr)
	if err != nil {
		return nil, false
	}
	return &Predicate{clauses: clauses}, true
}

// Match reports whether a feature passes every clause.
func (p *Predicate) Match(f geom.Feature) bool {
	for _, c := range p.clauses {
		v, ok := f.Attr(c.Field)
		if !c.Match(v, ok) {
			return false
		}
	}
	return true
}

// Match evaluates the clause against one attribute value; ok=false marks a
// missing attribute, which passes only NOT IN. IN and NOT IN list values
// match case-insensitively; the comparison operators compare numerically
// when both sides parse as numbers and lexically otherwise.
func (c Clause) Match(value any, ok bool) bool {
	switch c.Op {
	case OpIn, OpNotIn:
		if !ok {
			return c.Op == OpNotIn
		}
		key := strings.ToUpper(strings.TrimSpace(stringify(value)))
		member := false
		for _, v := range c.Values {
			if strings.ToUpper(strings.TrimSpace(v)) == key {
				member = true
				break
			}
		}
		if c.Op == OpNotIn {
			return !member
		}
		return member
	case OpLike:
		if !ok || len(c.Values) == 0 {
			return false
		}
		return likeMatch(c.Values[0], stringify(value))
	default:
		if !ok || len(c.Values) == 0 {
			return false
		}
		want := c.Values[0]
		got := stringify(value)
		if gn, gerr := strconv.ParseFloat(got, 64); gerr == nil {
			if wn, werr := strconv.ParseFloat(want, 64); werr == nil {
				return compareOrdered(c.Op, gn, wn)
			}
		}
		return compareOrdered(c.Op, got, want)
	}
}

func compareOrdered[T string | float64](op Op, got, want T) bool {
	switch op {
	case OpEqual:
		return got == want
	case OpNotEqual:
		return got != want
	case OpLess:
		return got < want
	case OpLessEqual:
		return got <= want
	case OpGreater:
		return got > want
	case OpGreaterEqual:
		return got >= want
	default:
		return false
	}
}

// likeMatch implements SQL LIKE with % wildcards only.
func likeMatch(pattern, s string) bool {
	parts := strings.Split(pattern, "%")
	if len(parts) == 1 {
		return s == pattern
	}
	if parts[0] != "" && !strings.HasPrefix(s, parts[0]) {
		return false
	}
	if last := parts[len(parts)-1]; last != "" && !strings.HasSuffix(s, last) {
		return false
	}
	rest := s
	for _, p := range parts {
		if p == "" {
			continue
		}
		i := strings.Index(rest, p)
		if i < 0 {
			return false
		}
		rest = rest[i+len(p):]
	}
	return true
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
