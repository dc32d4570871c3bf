package adapters

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/filter"
	"github.com/tabkit/tabkit/pkg/tree"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func peopleContainer(t *testing.T) *container.Container {
	t.Helper()
	c := container.New()
	c.SetHeaders([]string{"id", "name"})
	for _, row := range [][]string{{"1", "Alice"}, {"2", "Bob"}} {
		if err := c.AddRow(row, nil); err != nil {
			t.Fatalf("AddRow failed: %v", err)
		}
	}
	return c
}

func TestCSVSource_Read(t *testing.T) {
	path := writeFixture(t, "people.csv", "id;name\n1;Alice\n2;Bob\n")

	c, err := NewCSVSource().Read(path, nil)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if c.RowCount() != 2 {
		t.Errorf("Expected 2 rows, got %d", c.RowCount())
	}
	if got := c.GetValueAt("name", 1); got != "Bob" {
		t.Errorf("Expected Bob, got %q", got)
	}
	if c.Path() != path {
		t.Errorf("Expected container attached to %s, got %s", path, c.Path())
	}
}

func TestCSVSource_ReadFiltered(t *testing.T) {
	path := writeFixture(t, "people.csv", "id;name\n1;Alice\n2;Bob\n")

	fltr := filter.New().AddRule("name", filter.Equals, "Alice")
	c, err := NewCSVSource().Read(path, fltr)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if c.RowCount() != 1 {
		t.Errorf("Expected 1 row, got %d", c.RowCount())
	}
	if got := c.GetValue("name"); got != "Alice" {
		t.Errorf("Expected Alice, got %q", got)
	}
}

func TestCSVSink_Write(t *testing.T) {
	c := peopleContainer(t)
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := NewCSVSink().Write(c, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "id;name\n1;Alice\n2;Bob\n"
	if string(data) != want {
		t.Errorf("Expected %q, got %q", want, string(data))
	}
}

func TestPropertiesSource_Read(t *testing.T) {
	content := strings.Join([]string{
		"# database settings",
		"db.host=localhost",
		"db.port=5432",
		"",
		"! tuning",
		"greeting=a=b",
	}, "\n") + "\n"
	path := writeFixture(t, "app.properties", content)

	c, err := NewPropertiesSource().Read(path, nil)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if c.Orientation() != container.OrientationColumns {
		t.Errorf("Expected columns orientation, got %v", c.Orientation())
	}
	if c.RowCount() != 1 {
		t.Errorf("Expected 1 row, got %d", c.RowCount())
	}
	if got := c.GetValue("db.port"); got != "5432" {
		t.Errorf("Expected 5432, got %q", got)
	}

	// Only the first = splits key from value.
	if got := c.GetValue("greeting"); got != "a=b" {
		t.Errorf("Expected a=b, got %q", got)
	}
}

func TestProperties_RoundTrip(t *testing.T) {
	path := writeFixture(t, "app.properties", "# comment\nhost=localhost\nport=8080\n")

	c, err := NewPropertiesSource().Read(path, nil)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	out := filepath.Join(t.TempDir(), "copy.properties")
	if err := NewPropertiesSink().Write(c, out); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "host=localhost\nport=8080\n"
	if string(data) != want {
		t.Errorf("Expected %q, got %q", want, string(data))
	}
}

func TestXLSX_RoundTrip(t *testing.T) {
	c := peopleContainer(t)
	path := filepath.Join(t.TempDir(), "people.xlsx")

	if err := NewXLSXSink().Write(c, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	back, err := NewXLSXSource().Read(path, nil)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if back.RowCount() != 2 {
		t.Fatalf("Expected 2 rows, got %d", back.RowCount())
	}
	if got := back.GetValueAt("name", 1); got != "Bob" {
		t.Errorf("Expected Bob, got %q", got)
	}
	if got := back.HeaderNames(); len(got) != 2 || got[0] != "id" || got[1] != "name" {
		t.Errorf("Expected headers [id name], got %v", got)
	}
}

func TestXLSXSource_PadsShortRows(t *testing.T) {
	// Trailing empty cells vanish in the format; reading must pad the
	// record back to header width.
	c := container.New()
	c.SetHeaders([]string{"id", "name", "note"})
	if err := c.AddRow([]string{"1", "Alice", ""}, nil); err != nil {
		t.Fatalf("AddRow failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "short.xlsx")
	if err := NewXLSXSink().Write(c, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	back, err := NewXLSXSource().Read(path, nil)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if back.RowCount() != 1 {
		t.Fatalf("Expected 1 row, got %d", back.RowCount())
	}
	row := back.GetRow(0)
	if len(row) != 3 {
		t.Errorf("Expected record width 3, got %d", len(row))
	}
	if got := back.GetValueAt("note", 0); got != "" {
		t.Errorf("Expected empty note, got %q", got)
	}
}

func TestParquetSink_Write(t *testing.T) {
	c := peopleContainer(t)
	path := filepath.Join(t.TempDir(), "people.parquet")

	if err := NewParquetSink().Write(c, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(data) < 8 {
		t.Fatalf("Expected non-trivial parquet file, got %d bytes", len(data))
	}
	if string(data[:4]) != "PAR1" {
		t.Error("Expected parquet magic at file start")
	}
	if string(data[len(data)-4:]) != "PAR1" {
		t.Error("Expected parquet magic at file end")
	}
}

func TestParquetSink_NoHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	if err := NewParquetSink().Write(container.New(), path); err == nil {
		t.Error("Expected error for container without headers")
	}
}

func buildPersonTree() *tree.Tree {
	tr := tree.New()
	person := tr.Root.AddChild(tree.NewNode("person", tree.KindObject))
	person.AddChild(tree.NewScalar("name", tree.KindString, "Hans"))
	cities := person.AddChild(tree.NewNode("cities", tree.KindArray))
	cities.AddChild(tree.NewScalar("", tree.KindString, "Munich"))
	cities.AddChild(tree.NewScalar("", tree.KindString, "Berlin"))
	return tr
}

func TestFlatten(t *testing.T) {
	c, err := Flatten(buildPersonTree(), nil)
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	if c.RowCount() != 3 {
		t.Fatalf("Expected 3 rows, got %d", c.RowCount())
	}

	// Array members share their parent's path.
	fltr := filter.New().AddRule("Path", filter.Equals, "person/cities")
	values, err := c.GetValues("Value", fltr)
	if err != nil {
		t.Fatalf("GetValues failed: %v", err)
	}
	if len(values) != 2 || values[0] != "Munich" || values[1] != "Berlin" {
		t.Errorf("Expected [Munich Berlin], got %v", values)
	}
}

func TestFlatten_Filtered(t *testing.T) {
	fltr := filter.New().AddRule("Path", filter.EndsWith, "name")
	c, err := Flatten(buildPersonTree(), fltr)
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	if c.RowCount() != 1 {
		t.Fatalf("Expected 1 row, got %d", c.RowCount())
	}
	if got := c.GetValue("Value"); got != "Hans" {
		t.Errorf("Expected Hans, got %q", got)
	}
}

func TestTreeSource_Read(t *testing.T) {
	path := writeFixture(t, "person.json", `{"person":{"name":"Hans","age":42}}`)

	src := NewTreeSource("json", ReadJSON)
	if src.Name() != "json" {
		t.Errorf("Expected name json, got %q", src.Name())
	}

	c, err := src.Read(path, nil)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if c.RowCount() != 2 {
		t.Fatalf("Expected 2 rows, got %d", c.RowCount())
	}
	if got := c.GetValueAt("Path", 0); got != "person/name" {
		t.Errorf("Expected person/name, got %q", got)
	}
	if got := c.GetValueAt("Value", 1); got != "42" {
		t.Errorf("Expected 42, got %q", got)
	}
}
