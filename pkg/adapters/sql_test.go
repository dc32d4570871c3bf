package adapters

import "testing"

func TestQuoteIdent(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"events", `"events"`},
		{"first name", `"first name"`},
		{`with"quote`, `"with""quote"`},
		{"", `""`},
	}
	for _, tt := range tests {
		if got := quoteIdent(tt.name); got != tt.want {
			t.Errorf("quoteIdent(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestEscapeLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain.csv", "plain.csv"},
		{"o'brien.csv", "o''brien.csv"},
		{"a''b", "a''''b"},
	}
	for _, tt := range tests {
		if got := escapeLiteral(tt.in); got != tt.want {
			t.Errorf("escapeLiteral(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
