package filter

import "testing"

func TestRuleMatch_Operators(t *testing.T) {
	tests := []struct {
		name  string
		op    Operator
		value string
		field string
		want  bool
	}{
		{"equals hit", Equals, "Alice", "Alice", true},
		{"equals miss", Equals, "Alice", "Bob", false},
		{"not equals", NotEquals, "Alice", "Bob", true},
		{"equals ignore case", EqualsIgnoreCase, "alice", "ALICE", true},
		{"contains", Contains, "lic", "Alice", true},
		{"not contains", NotContains, "xyz", "Alice", true},
		{"prefix", StartsWith, "Al", "Alice", true},
		{"prefix miss", StartsWith, "li", "Alice", false},
		{"suffix", EndsWith, "ce", "Alice", true},
		{"numeric gt", GreaterThan, "9", "10", true},
		{"numeric gt miss", GreaterThan, "10", "9", false},
		{"numeric ge equal", GreaterOrEqual, "10", "10", true},
		{"numeric lt", LessThan, "10.5", "10.4", true},
		{"numeric le", LessOrEqual, "3", "3", true},
		{"lexicographic fallback", GreaterThan, "apple", "banana", true},
		{"regex", Matches, "^A.*e$", "Alice", true},
		{"regex miss", Matches, "^B", "Alice", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New().AddRule("h", tt.op, tt.value)
			rules := f.Rules()
			if len(rules) != 1 {
				t.Fatalf("expected 1 rule, got %d", len(rules))
			}
			if got := rules[0].Match(tt.field); got != tt.want {
				t.Errorf("Match(%q) with %s %q = %v, want %v",
					tt.field, tt.op, tt.value, got, tt.want)
			}
		})
	}
}

func TestRuleMatch_Wildcard(t *testing.T) {
	for _, wc := range []string{"*", "%"} {
		f := New().AddRule("name", Equals, wc)
		rule := f.Rules()[0]

		if !rule.Match("anything") {
			t.Errorf("wildcard %q should match non-empty field", wc)
		}
		if !rule.Match("") {
			t.Errorf("wildcard %q should match empty field", wc)
		}
	}

	// Wildcards win even under operators that would otherwise fail.
	f := New().AddRule("name", NotEquals, "*")
	if !f.Rules()[0].Match("x") {
		t.Error("wildcard should override NotEquals")
	}
}

func TestRuleMatch_BadRegex(t *testing.T) {
	f := New().AddRule("name", Matches, "([")
	if f.Rules()[0].Match("anything") {
		t.Error("rule with invalid pattern should never match")
	}
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		token string
		want  Operator
		ok    bool
	}{
		{"eq", Equals, true},
		{"=", Equals, true},
		{"==", Equals, true},
		{"!=", NotEquals, true},
		{"CONTAINS", Contains, true},
		{">", GreaterThan, true},
		{">=", GreaterOrEqual, true},
		{"<", LessThan, true},
		{"<=", LessOrEqual, true},
		{"regex", Matches, true},
		{"bogus", Equals, false},
	}

	for _, tt := range tests {
		op, ok := ParseOperator(tt.token)
		if ok != tt.ok {
			t.Errorf("ParseOperator(%q) ok = %v, want %v", tt.token, ok, tt.ok)
			continue
		}
		if ok && op != tt.want {
			t.Errorf("ParseOperator(%q) = %v, want %v", tt.token, op, tt.want)
		}
	}
}

func TestOperatorString_RoundTrip(t *testing.T) {
	ops := []Operator{
		Equals, NotEquals, EqualsIgnoreCase, Contains, NotContains,
		StartsWith, EndsWith, GreaterThan, GreaterOrEqual, LessThan,
		LessOrEqual, Matches,
	}
	for _, op := range ops {
		parsed, ok := ParseOperator(op.String())
		if !ok || parsed != op {
			t.Errorf("operator %d token %q did not round-trip", op, op.String())
		}
	}
}

func TestFilter_Empty(t *testing.T) {
	var nilFilter *Filter
	if !nilFilter.Empty() {
		t.Error("nil filter should be empty")
	}
	if nilFilter.Len() != 0 {
		t.Error("nil filter should have zero rules")
	}

	f := New()
	if !f.Empty() {
		t.Error("fresh filter should be empty")
	}
	f.AddRule("a", Equals, "1")
	if f.Empty() {
		t.Error("filter with a rule should not be empty")
	}
}

func TestFilter_Headers(t *testing.T) {
	f := New().
		AddRule("name", Equals, "Alice").
		AddRule("age", GreaterThan, "30").
		AddRule("name", Contains, "A")

	headers := f.Headers()
	if len(headers) != 2 {
		t.Fatalf("expected 2 distinct headers, got %v", headers)
	}
	if headers[0] != "name" || headers[1] != "age" {
		t.Errorf("headers not in first-use order: %v", headers)
	}
}

func TestFilter_RulesAreCopies(t *testing.T) {
	f := New().AddRule("name", Equals, "Alice")
	rules := f.Rules()
	rules[0].Header = "mutated"

	if f.Rules()[0].Header != "name" {
		t.Error("mutating the returned slice must not affect the filter")
	}
}
