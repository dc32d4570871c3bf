package filter

import (
	"testing"

	"github.com/tabkit/tabkit/pkg/errors"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		spec   string
		header string
		op     Operator
		value  string
	}{
		{"name=Alice", "name", Equals, "Alice"},
		{"name = Alice", "name", Equals, "Alice"},
		{"name==Alice", "name", Equals, "Alice"},
		{"name!=Bob", "name", NotEquals, "Bob"},
		{"age>30", "age", GreaterThan, "30"},
		{"age>=30", "age", GreaterOrEqual, "30"},
		{"age<30", "age", LessThan, "30"},
		{"age<=30", "age", LessOrEqual, "30"},
		{"name contains Ali", "name", Contains, "Ali"},
		{"name notcontains Ali", "name", NotContains, "Ali"},
		{"Path suffix name", "Path", EndsWith, "name"},
		{"Path prefix person", "Path", StartsWith, "person"},
		{"name ieq alice", "name", EqualsIgnoreCase, "alice"},
		{"name regex ^A.*e$", "name", Matches, "^A.*e$"},
		{"city = New York", "city", Equals, "New York"},
		{"first name=Alice", "first name", Equals, "Alice"},
		{"note=a>b", "note", Equals, "a>b"},
		{"name=", "name", Equals, ""},
		{"name=*", "name", Equals, "*"},
	}
	for _, tt := range tests {
		h, op, v, err := ParseRule(tt.spec)
		if err != nil {
			t.Errorf("ParseRule(%q) failed: %v", tt.spec, err)
			continue
		}
		if h != tt.header || op != tt.op || v != tt.value {
			t.Errorf("ParseRule(%q) = %q %v %q, want %q %v %q",
				tt.spec, h, op, v, tt.header, tt.op, tt.value)
		}
	}
}

func TestParseRule_Invalid(t *testing.T) {
	for _, spec := range []string{"", "   ", "justaword", "=value"} {
		if _, _, _, err := ParseRule(spec); err == nil {
			t.Errorf("Expected error for %q", spec)
		} else if !errors.IsCode(err, errors.CodeParseFailed) {
			t.Errorf("Expected parse error code for %q, got %v", spec, err)
		}
	}
}

func TestParse(t *testing.T) {
	f, err := Parse("name=Alice", "age>=30")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if f.Len() != 2 {
		t.Fatalf("Expected 2 rules, got %d", f.Len())
	}
	rules := f.Rules()
	if rules[0].Header != "name" || rules[1].Operator != GreaterOrEqual {
		t.Errorf("Unexpected rules: %v", rules)
	}
}

func TestParse_NoSpecs(t *testing.T) {
	f, err := Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if f != nil {
		t.Error("Expected nil filter for no specs")
	}
}

func TestParse_BadRegex(t *testing.T) {
	_, err := Parse("name regex [unclosed")
	if err == nil {
		t.Fatal("Expected error for invalid pattern")
	}
	if !errors.IsCode(err, errors.CodeParseFailed) {
		t.Errorf("Expected parse error code, got %v", err)
	}
}
