package util

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestBaseFormat(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"data.csv", ".csv"},
		{"data.csv.gz", ".csv"},
		{"DATA.CSV.GZ", ".csv"},
		{"data.json", ".json"},
		{"archive/data.properties", ".properties"},
		{"noext", ""},
	}

	for _, tt := range tests {
		if got := BaseFormat(tt.path); got != tt.expected {
			t.Errorf("BaseFormat(%q) = %q, want %q", tt.path, got, tt.expected)
		}
	}
}

func TestStripCompression(t *testing.T) {
	if got := StripCompression("data.csv.gz"); got != "data.csv" {
		t.Errorf("StripCompression = %q, want %q", got, "data.csv")
	}
	if got := StripCompression("data.csv"); got != "data.csv" {
		t.Errorf("StripCompression = %q, want %q", got, "data.csv")
	}
}

func TestWriteReadLines_RoundTrip(t *testing.T) {
	lines := []string{"id;name", "1;Alice", "2;Bob"}
	path := filepath.Join(t.TempDir(), "sub", "data.csv")

	if err := WriteLines(path, lines); err != nil {
		t.Fatalf("WriteLines error: %v", err)
	}

	got, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines error: %v", err)
	}
	if !reflect.DeepEqual(got, lines) {
		t.Errorf("round trip = %v, want %v", got, lines)
	}
}

func TestWriteReadLines_Gzip(t *testing.T) {
	lines := []string{"id;name", "1;Alice"}
	path := filepath.Join(t.TempDir(), "data.csv.gz")

	if err := WriteLines(path, lines); err != nil {
		t.Fatalf("WriteLines error: %v", err)
	}

	got, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines error: %v", err)
	}
	if !reflect.DeepEqual(got, lines) {
		t.Errorf("gzip round trip = %v, want %v", got, lines)
	}
}

func TestWriteLines_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := WriteLines(path, nil); err != nil {
		t.Fatalf("WriteLines error: %v", err)
	}

	got, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no lines, got %v", got)
	}
}

func TestReadLines_Missing(t *testing.T) {
	if _, err := ReadLines(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("Expected error for missing file")
	}
}
