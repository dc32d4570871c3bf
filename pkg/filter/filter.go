// Package filter provides row predicates for tabular containers.
//
// A Filter is an ordered set of rules combined with AND semantics: a row
// matches when every rule matches. An empty filter matches every row. The
// comparison values "*" and "%" are wildcards and match any field content,
// including the empty string.
package filter

import (
	"regexp"
	"strconv"
	"strings"
)

// Operator identifies how a rule compares a field against its value.
type Operator int

const (
	Equals Operator = iota
	NotEquals
	EqualsIgnoreCase
	Contains
	NotContains
	StartsWith
	EndsWith
	GreaterThan
	GreaterOrEqual
	LessThan
	LessOrEqual
	Matches
)

// String returns the short operator token used in CLI flags and diagnostics.
func (op Operator) String() string {
	switch op {
	case Equals:
		return "eq"
	case NotEquals:
		return "ne"
	case EqualsIgnoreCase:
		return "ieq"
	case Contains:
		return "contains"
	case NotContains:
		return "notcontains"
	case StartsWith:
		return "prefix"
	case EndsWith:
		return "suffix"
	case GreaterThan:
		return "gt"
	case GreaterOrEqual:
		return "ge"
	case LessThan:
		return "lt"
	case LessOrEqual:
		return "le"
	case Matches:
		return "regex"
	default:
		return "unknown"
	}
}

// ParseOperator converts a token back into an Operator. Unknown tokens
// report ok=false.
func ParseOperator(s string) (Operator, bool) {
	switch strings.ToLower(s) {
	case "eq", "=", "==":
		return Equals, true
	case "ne", "!=":
		return NotEquals, true
	case "ieq":
		return EqualsIgnoreCase, true
	case "contains":
		return Contains, true
	case "notcontains":
		return NotContains, true
	case "prefix":
		return StartsWith, true
	case "suffix":
		return EndsWith, true
	case "gt", ">":
		return GreaterThan, true
	case "ge", ">=":
		return GreaterOrEqual, true
	case "lt", "<":
		return LessThan, true
	case "le", "<=":
		return LessOrEqual, true
	case "regex":
		return Matches, true
	default:
		return Equals, false
	}
}

// IsWildcard reports whether a comparison value matches unconditionally.
func IsWildcard(v string) bool {
	return v == "*" || v == "%"
}

// Rule is a single (header, operator, value) condition.
type Rule struct {
	Header   string
	Operator Operator
	Value    string

	re *regexp.Regexp
}

// Match evaluates the rule against one field value. Wildcard comparison
// values succeed regardless of the field content. A Matches rule whose
// pattern failed to compile never matches.
func (r *Rule) Match(field string) bool {
	if IsWildcard(r.Value) {
		return true
	}

	switch r.Operator {
	case Equals:
		return field == r.Value
	case NotEquals:
		return field != r.Value
	case EqualsIgnoreCase:
		return strings.EqualFold(field, r.Value)
	case Contains:
		return strings.Contains(field, r.Value)
	case NotContains:
		return !strings.Contains(field, r.Value)
	case StartsWith:
		return strings.HasPrefix(field, r.Value)
	case EndsWith:
		return strings.HasSuffix(field, r.Value)
	case GreaterThan, GreaterOrEqual, LessThan, LessOrEqual:
		return r.compareOrdered(field)
	case Matches:
		if r.re == nil {
			return false
		}
		return r.re.MatchString(field)
	default:
		return false
	}
}

// compareOrdered compares numerically when both sides parse as floats and
// falls back to lexicographic comparison otherwise.
func (r *Rule) compareOrdered(field string) bool {
	var cmp int
	fv, ferr := strconv.ParseFloat(strings.TrimSpace(field), 64)
	rv, rerr := strconv.ParseFloat(strings.TrimSpace(r.Value), 64)
	if ferr == nil && rerr == nil {
		switch {
		case fv < rv:
			cmp = -1
		case fv > rv:
			cmp = 1
		}
	} else {
		cmp = strings.Compare(field, r.Value)
	}

	switch r.Operator {
	case GreaterThan:
		return cmp > 0
	case GreaterOrEqual:
		return cmp >= 0
	case LessThan:
		return cmp < 0
	case LessOrEqual:
		return cmp <= 0
	}
	return false
}

// Filter is an ordered rule set with AND semantics.
type Filter struct {
	rules []Rule
}

// New creates an empty filter.
func New() *Filter {
	return &Filter{rules: make([]Rule, 0, 4)}
}

// AddRule appends a rule, compiling the pattern for Matches rules. It
// returns the filter for chaining.
func (f *Filter) AddRule(header string, op Operator, value string) *Filter {
	rule := Rule{Header: header, Operator: op, Value: value}
	if op == Matches && !IsWildcard(value) {
		rule.re, _ = regexp.Compile(value)
	}
	f.rules = append(f.rules, rule)
	return f
}

// Rules returns a copy of the rule set in declaration order.
func (f *Filter) Rules() []Rule {
	if f == nil {
		return nil
	}
	out := make([]Rule, len(f.rules))
	copy(out, f.rules)
	return out
}

// Len returns the number of rules. A nil filter has zero rules.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.rules)
}

// Empty reports whether the filter has no rules and therefore matches
// every row.
func (f *Filter) Empty() bool {
	return f.Len() == 0
}

// Headers returns the distinct header names referenced by the rules, in
// first-use order.
func (f *Filter) Headers() []string {
	if f == nil {
		return nil
	}
	seen := make(map[string]bool, len(f.rules))
	out := make([]string, 0, len(f.rules))
	for _, r := range f.rules {
		if !seen[r.Header] {
			seen[r.Header] = true
			out = append(out, r.Header)
		}
	}
	return out
}

// String renders the filter as "header op value; ..." for diagnostics.
func (f *Filter) String() string {
	if f.Empty() {
		return "<empty>"
	}
	parts := make([]string, 0, len(f.rules))
	for _, r := range f.rules {
		parts = append(parts, r.Header+" "+r.Operator.String()+" "+r.Value)
	}
	return strings.Join(parts, "; ")
}
