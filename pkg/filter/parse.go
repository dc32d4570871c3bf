package filter

import (
	"regexp"
	"strings"

	"github.com/tabkit/tabkit/pkg/errors"
)

// symbolOps in scan order; longer symbols win at equal positions.
var symbolOps = []string{">=", "<=", "!=", "==", "=", ">", "<"}

// ParseRule splits a textual rule into its parts. Both forms work:
// symbolic ("age>=30", "name=Alice") and spaced with an operator token
// ("name contains Ali", "Path suffix name").
func ParseRule(spec string) (header string, op Operator, value string, err error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return "", Equals, "", errors.New(errors.CodeParseFailed, "empty filter rule")
	}

	if parts := strings.SplitN(s, " ", 3); len(parts) == 3 {
		if o, ok := ParseOperator(strings.TrimSpace(parts[1])); ok {
			if h := strings.TrimSpace(parts[0]); h != "" {
				return h, o, strings.TrimSpace(parts[2]), nil
			}
		}
	}

	best, bestSym := -1, ""
	for _, sym := range symbolOps {
		i := strings.Index(s, sym)
		if i <= 0 {
			continue
		}
		if best == -1 || i < best || (i == best && len(sym) > len(bestSym)) {
			best, bestSym = i, sym
		}
	}
	if best < 0 {
		return "", Equals, "", errors.Newf(errors.CodeParseFailed,
			"filter rule %q needs header OPERATOR value", spec)
	}

	o, _ := ParseOperator(bestSym)
	return strings.TrimSpace(s[:best]), o, strings.TrimSpace(s[best+len(bestSym):]), nil
}

// Parse builds a filter from rule specs. No specs yields a nil filter,
// which admits every row. Regex rules must compile.
func Parse(specs ...string) (*Filter, error) {
	var f *Filter
	for _, spec := range specs {
		h, op, v, err := ParseRule(spec)
		if err != nil {
			return nil, err
		}
		if op == Matches && !IsWildcard(v) {
			if _, err := regexp.Compile(v); err != nil {
				return nil, errors.Wrapf(err, errors.CodeParseFailed, "filter rule %q", spec)
			}
		}
		if f == nil {
			f = New()
		}
		f.AddRule(h, op, v)
	}
	return f, nil
}
