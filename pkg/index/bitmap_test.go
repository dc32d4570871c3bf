package index

import (
	"bytes"
	"sort"
	"testing"
)

func buildIndex() *ValueIndex {
	idx := NewValueIndex()
	idx.IndexRows(
		[]string{"id", "name", "city"},
		[][]string{
			{"1", "Alice", "Berlin"},
			{"2", "Bob", "Paris"},
			{"3", "Alice", "Paris"},
			{"4", "", "Berlin"},
		},
		0,
	)
	return idx
}

func TestLookup(t *testing.T) {
	idx := buildIndex()

	bm := idx.Lookup("name", "Alice")
	if got := bm.ToArray(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("Lookup(name, Alice) = %v, want [0 2]", got)
	}

	if got := idx.Lookup("name", "Zed").GetCardinality(); got != 0 {
		t.Errorf("Lookup(name, Zed) cardinality = %d, want 0", got)
	}
	if got := idx.Lookup("ghost", "x").GetCardinality(); got != 0 {
		t.Errorf("Lookup(ghost, x) cardinality = %d, want 0", got)
	}
}

func TestLookup_EmptyValueIndexed(t *testing.T) {
	idx := buildIndex()

	bm := idx.Lookup("name", "")
	if got := bm.ToArray(); len(got) != 1 || got[0] != 3 {
		t.Errorf("Lookup(name, \"\") = %v, want [3]", got)
	}
}

func TestLookupAnd(t *testing.T) {
	idx := buildIndex()

	bm := idx.LookupAnd(map[string]string{"name": "Alice", "city": "Paris"})
	if got := bm.ToArray(); len(got) != 1 || got[0] != 2 {
		t.Errorf("LookupAnd = %v, want [2]", got)
	}
}

func TestLookupOr(t *testing.T) {
	idx := buildIndex()

	bm := idx.LookupOr(map[string]string{"name": "Bob", "city": "Berlin"})
	if got := bm.GetCardinality(); got != 3 {
		t.Errorf("LookupOr cardinality = %d, want 3", got)
	}
}

func TestCardinalityAndDistinct(t *testing.T) {
	idx := buildIndex()

	if got := idx.Cardinality("city"); got != 2 {
		t.Errorf("Cardinality(city) = %d, want 2", got)
	}
	if got := idx.Cardinality("ghost"); got != 0 {
		t.Errorf("Cardinality(ghost) = %d, want 0", got)
	}

	values := idx.DistinctValues("city")
	sort.Strings(values)
	if len(values) != 2 || values[0] != "Berlin" || values[1] != "Paris" {
		t.Errorf("DistinctValues(city) = %v, want [Berlin Paris]", values)
	}
}

func TestIndexRows_Incremental(t *testing.T) {
	idx := NewValueIndex()
	idx.IndexRows([]string{"name"}, [][]string{{"Alice"}}, 0)
	idx.IndexRows([]string{"name"}, [][]string{{"Alice"}, {"Bob"}}, 1)

	if got := idx.RowCount(); got != 3 {
		t.Errorf("RowCount() = %d, want 3", got)
	}
	bm := idx.Lookup("name", "Alice")
	if got := bm.ToArray(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("Lookup(name, Alice) = %v, want [0 1]", got)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	idx := buildIndex()

	var buf bytes.Buffer
	if _, err := idx.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo error: %v", err)
	}

	restored := NewValueIndex()
	if _, err := restored.ReadFrom(&buf); err != nil {
		t.Fatalf("ReadFrom error: %v", err)
	}

	if restored.RowCount() != idx.RowCount() {
		t.Errorf("RowCount() = %d, want %d", restored.RowCount(), idx.RowCount())
	}
	bm := restored.Lookup("name", "Alice")
	if got := bm.ToArray(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("restored Lookup(name, Alice) = %v, want [0 2]", got)
	}
	if got := restored.Cardinality("city"); got != 2 {
		t.Errorf("restored Cardinality(city) = %d, want 2", got)
	}
}
