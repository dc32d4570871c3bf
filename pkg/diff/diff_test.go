package diff

import (
	"strings"
	"testing"

	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/errors"
)

func buildContainer(t *testing.T, headers []string, rows [][]string) *container.Container {
	t.Helper()
	c := container.New(container.WithDelimiter(";"))
	c.SetHeaders(headers)
	for _, row := range rows {
		if err := c.AddRow(row, nil); err != nil {
			t.Fatalf("AddRow failed: %v", err)
		}
	}
	return c
}

func TestCompare_ByKey(t *testing.T) {
	left := buildContainer(t, []string{"id", "name", "city"}, [][]string{
		{"1", "Alice", "Berlin"},
		{"2", "Bob", "Paris"},
		{"3", "Cara", "Rome"},
	})
	right := buildContainer(t, []string{"id", "name", "city"}, [][]string{
		{"1", "Alice", "Berlin"},
		{"2", "Bob", "Madrid"},
		{"4", "Dan", "Oslo"},
	})

	r, err := Compare(left, right, "id")
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if r.UnchangedRows != 1 {
		t.Errorf("Expected 1 unchanged row, got %d", r.UnchangedRows)
	}
	if r.ChangedRows != 1 {
		t.Errorf("Expected 1 changed row, got %d", r.ChangedRows)
	}
	if r.RemovedRows != 1 {
		t.Errorf("Expected 1 removed row, got %d", r.RemovedRows)
	}
	if r.AddedRows != 1 {
		t.Errorf("Expected 1 added row, got %d", r.AddedRows)
	}
	if len(r.HeaderChanges) != 1 || r.HeaderChanges[0].Header != "city" || r.HeaderChanges[0].Changed != 1 {
		t.Errorf("Expected one city cell change, got %+v", r.HeaderChanges)
	}
	if !r.HasChanges() {
		t.Error("Expected HasChanges to be true")
	}
}

func TestCompare_HeaderDrift(t *testing.T) {
	left := buildContainer(t, []string{"id", "name", "age"}, [][]string{{"1", "Alice", "34"}})
	right := buildContainer(t, []string{"id", "name", "email"}, [][]string{{"1", "Alice", "a@x.io"}})

	r, err := Compare(left, right, "id")
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if len(r.AddedHeaders) != 1 || r.AddedHeaders[0] != "email" {
		t.Errorf("Expected added header email, got %v", r.AddedHeaders)
	}
	if len(r.RemovedHeaders) != 1 || r.RemovedHeaders[0] != "age" {
		t.Errorf("Expected removed header age, got %v", r.RemovedHeaders)
	}
	if r.UnchangedRows != 1 {
		t.Errorf("Expected shared headers to match, got %d unchanged", r.UnchangedRows)
	}
}

func TestCompare_DuplicateKeys(t *testing.T) {
	left := buildContainer(t, []string{"id", "v"}, [][]string{
		{"1", "a"},
		{"1", "b"},
	})
	right := buildContainer(t, []string{"id", "v"}, [][]string{
		{"1", "a"},
	})

	r, err := Compare(left, right, "id")
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if r.UnchangedRows != 1 || r.RemovedRows != 1 {
		t.Errorf("Expected 1 unchanged and 1 removed, got %d/%d", r.UnchangedRows, r.RemovedRows)
	}
}

func TestCompare_ByContent(t *testing.T) {
	left := buildContainer(t, []string{"id", "name"}, [][]string{
		{"1", "Alice"},
		{"2", "Bob"},
	})
	right := buildContainer(t, []string{"id", "name"}, [][]string{
		{"2", "Bob"},
		{"3", "Cara"},
	})

	r, err := Compare(left, right, "")
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if r.UnchangedRows != 1 || r.AddedRows != 1 || r.RemovedRows != 1 {
		t.Errorf("Expected 1/1/1 unchanged/added/removed, got %d/%d/%d",
			r.UnchangedRows, r.AddedRows, r.RemovedRows)
	}
}

func TestCompare_MissingKeyHeader(t *testing.T) {
	left := buildContainer(t, []string{"id"}, nil)
	right := buildContainer(t, []string{"name"}, nil)

	if _, err := Compare(left, right, "id"); !errors.IsCode(err, errors.CodeNoSuchHeader) {
		t.Errorf("Expected CodeNoSuchHeader, got %v", err)
	}
}

func TestReport_String(t *testing.T) {
	left := buildContainer(t, []string{"id"}, [][]string{{"1"}})
	right := buildContainer(t, []string{"id"}, [][]string{{"1"}})

	r, err := Compare(left, right, "id")
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	out := r.String()
	if !strings.Contains(out, "Containers are identical.") {
		t.Errorf("Expected identical notice:\n%s", out)
	}
	if !strings.Contains(out, "Rows: 1 -> 1 (+0)") {
		t.Errorf("Expected row summary:\n%s", out)
	}
}
