package container

import (
	"reflect"
	"testing"
)

func TestParseOrientation(t *testing.T) {
	tests := []struct {
		input    string
		expected Orientation
		ok       bool
	}{
		{"rows", OrientationRows, true},
		{"row", OrientationRows, true},
		{"ROWS", OrientationRows, true},
		{"columns", OrientationColumns, true},
		{"column", OrientationColumns, true},
		{"cols", OrientationColumns, true},
		{"none", OrientationNone, true},
		{"", OrientationNone, true},
		{"diagonal", OrientationNone, false},
	}

	for _, tt := range tests {
		got, ok := ParseOrientation(tt.input)
		if got != tt.expected || ok != tt.ok {
			t.Errorf("ParseOrientation(%q) = %v, %v, want %v, %v",
				tt.input, got, ok, tt.expected, tt.ok)
		}
	}
}

func TestDecodeRows(t *testing.T) {
	c := New()
	dec := c.decodeRows([]string{"id;name", "1;Alice", "2;Bob"})

	if !reflect.DeepEqual(dec.names, []string{"id", "name"}) {
		t.Errorf("names = %v, want [id name]", dec.names)
	}
	if len(dec.rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(dec.rows))
	}
	if !reflect.DeepEqual(dec.rows[1], []string{"2", "Bob"}) {
		t.Errorf("row 1 = %v, want [2 Bob]", dec.rows[1])
	}
}

func TestDecodeRows_HeaderIndex(t *testing.T) {
	c := New(WithHeaderIndex(2))
	dec := c.decodeRows([]string{"# comment", "# more", "id;name", "1;Alice"})

	if !reflect.DeepEqual(dec.names, []string{"id", "name"}) {
		t.Errorf("names = %v, want [id name]", dec.names)
	}
	if len(dec.rows) != 1 {
		t.Errorf("Expected 1 row, got %d", len(dec.rows))
	}
}

func TestDecodeRows_HeaderIndexBeyondInput(t *testing.T) {
	c := New(WithHeaderIndex(10))
	dec := c.decodeRows([]string{"id;name", "1;Alice"})

	if len(dec.names) != 0 || len(dec.rows) != 0 {
		t.Errorf("Expected nothing decoded, got names=%v rows=%v", dec.names, dec.rows)
	}
}

func TestDecodeColumns(t *testing.T) {
	c := New(WithOrientation(OrientationColumns))
	dec := c.decodeColumns([]string{"id;1;2", "name;Alice;Bob"})

	if !reflect.DeepEqual(dec.names, []string{"id", "name"}) {
		t.Errorf("names = %v, want [id name]", dec.names)
	}
	if len(dec.rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(dec.rows))
	}
	if !reflect.DeepEqual(dec.rows[0], []string{"1", "Alice"}) {
		t.Errorf("row 0 = %v, want [1 Alice]", dec.rows[0])
	}
	if !reflect.DeepEqual(dec.rows[1], []string{"2", "Bob"}) {
		t.Errorf("row 1 = %v, want [2 Bob]", dec.rows[1])
	}
}

func TestDecodeColumns_RaggedPadded(t *testing.T) {
	c := New(WithOrientation(OrientationColumns))
	dec := c.decodeColumns([]string{"id;1;2;3", "name;Alice"})

	if len(dec.rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(dec.rows))
	}
	if dec.rows[2][0] != "3" || dec.rows[2][1] != "" {
		t.Errorf("row 2 = %v, want [3 ]", dec.rows[2])
	}
}

func TestDecodeColumns_SkipsBlankLines(t *testing.T) {
	c := New(WithOrientation(OrientationColumns))
	dec := c.decodeColumns([]string{"id;1", "", "name;Alice"})

	if !reflect.DeepEqual(dec.names, []string{"id", "name"}) {
		t.Errorf("names = %v, want [id name]", dec.names)
	}
}

func TestEncodeRows(t *testing.T) {
	c := New()
	if err := c.ImportLines([]string{"id;name", "1;Alice"}, nil); err != nil {
		t.Fatalf("ImportLines error: %v", err)
	}

	lines := c.encodeRows()
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "id;name" {
		t.Errorf("header line = %q, want %q", lines[0], "id;name")
	}
	if lines[1] != "1;Alice" {
		t.Errorf("record line = %q, want %q", lines[1], "1;Alice")
	}
}

func TestEncodeColumns_RoundTrip(t *testing.T) {
	src := []string{"id;1;2", "name;Alice;Bob"}

	c := New(WithOrientation(OrientationColumns))
	if err := c.ImportLines(src, nil); err != nil {
		t.Fatalf("ImportLines error: %v", err)
	}

	lines := c.ExportLines()
	if !reflect.DeepEqual(lines, src) {
		t.Errorf("round trip = %v, want %v", lines, src)
	}
}

func TestEncodeColumns_ZeroRows(t *testing.T) {
	c := New(WithOrientation(OrientationColumns))
	c.SetHeaders([]string{"id", "name"})

	lines := c.encodeColumns()
	if !reflect.DeepEqual(lines, []string{"id", "name"}) {
		t.Errorf("lines = %v, want bare header names", lines)
	}
}

func TestStripQuotes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"Alice"`, "Alice"},
		{"'Alice'", "Alice"},
		{`"Alice`, `"Alice`},
		{`Alice"`, `Alice"`},
		{`""`, ""},
		{`"`, `"`},
		{"Alice", "Alice"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := stripQuotes(tt.input); got != tt.expected {
			t.Errorf("stripQuotes(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestImport_QuotesStrippedNotReinstated(t *testing.T) {
	c := New()
	if err := c.ImportLines([]string{"id;name", `1;"Alice"`}, nil); err != nil {
		t.Fatalf("ImportLines error: %v", err)
	}

	if got := c.GetValueAt("name", 0); got != "Alice" {
		t.Errorf("GetValueAt(name, 0) = %q, want %q", got, "Alice")
	}

	lines := c.ExportLines()
	if lines[1] != "1;Alice" {
		t.Errorf("exported line = %q, want %q", lines[1], "1;Alice")
	}
}
