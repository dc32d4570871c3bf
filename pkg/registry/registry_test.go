package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tabkit/tabkit/pkg/container"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"data.csv", "csv"},
		{"data.tsv", "csv"},
		{"data.txt", "csv"},
		{"data.csv.gz", "csv"},
		{"app.properties", "properties"},
		{"app.props", "properties"},
		{"book.xlsx", "xlsx"},
		{"doc.json", "json"},
		{"doc.yml", "yaml"},
		{"doc.xml", "xml"},
		{"out.parquet", "parquet"},
		{"noext", ""},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.path); got != tt.want {
			t.Errorf("DetectFormat(%q): expected %q, got %q", tt.path, tt.want, got)
		}
	}
}

func TestGetSource_Unknown(t *testing.T) {
	if _, err := GetSource("cobol"); err == nil {
		t.Error("Expected error for unknown source format")
	}
	if _, err := GetSink("cobol"); err == nil {
		t.Error("Expected error for unknown sink format")
	}
}

func TestIsTreeFormat(t *testing.T) {
	if !IsTreeFormat(FormatJSON) {
		t.Error("Expected json to be a tree format")
	}
	if IsTreeFormat(FormatCSV) {
		t.Error("Expected csv not to be a tree format")
	}
}

func TestOpen_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.csv")
	if err := os.WriteFile(path, []byte("id;name\n1;Alice\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	c, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := c.GetValue("name"); got != "Alice" {
		t.Errorf("Expected Alice, got %q", got)
	}
}

func TestOpen_TSVDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.tsv")
	if err := os.WriteFile(path, []byte("id\tname\n1\tAlice\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	c, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if c.HeaderCount() != 2 {
		t.Fatalf("Expected 2 headers, got %d", c.HeaderCount())
	}
	if got := c.GetValue("name"); got != "Alice" {
		t.Errorf("Expected Alice, got %q", got)
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	c := container.New()
	c.SetHeaders([]string{"id", "name"})
	if err := c.AddRow([]string{"1", "Alice"}, nil); err != nil {
		t.Fatalf("AddRow failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := Write(c, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	back, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := back.GetValue("name"); got != "Alice" {
		t.Errorf("Expected Alice, got %q", got)
	}
}

func TestOpenTree_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(`{"a":{"b":"1"}}`), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tr, err := OpenTree(path)
	if err != nil {
		t.Fatalf("OpenTree failed: %v", err)
	}
	if got := tr.Value("a/b"); got != "1" {
		t.Errorf("Expected 1, got %q", got)
	}
}
