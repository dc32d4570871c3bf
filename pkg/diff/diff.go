// Package diff compares two containers and reports what changed
// between them: headers, rows, and per-header cell edits.
package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/errors"
)

// Report summarizes the differences between a left and right container.
type Report struct {
	LeftRows  int `json:"left_rows"`
	RightRows int `json:"right_rows"`

	// Header drift
	AddedHeaders   []string `json:"added_headers,omitempty"`
	RemovedHeaders []string `json:"removed_headers,omitempty"`

	// Row accounting. With a key header, rows pair by key value;
	// without one they pair by full content.
	AddedRows     int `json:"added_rows"`
	RemovedRows   int `json:"removed_rows"`
	ChangedRows   int `json:"changed_rows"`
	UnchangedRows int `json:"unchanged_rows"`

	// Cell edits per shared header, sorted by count descending.
	HeaderChanges []HeaderChange `json:"header_changes,omitempty"`

	KeyHeader string `json:"key_header,omitempty"`
}

// HeaderChange counts cell edits under one shared header.
type HeaderChange struct {
	Header  string `json:"header"`
	Changed int    `json:"changed"`
}

// HasChanges reports whether the two containers differ at all.
func (r *Report) HasChanges() bool {
	return len(r.AddedHeaders) > 0 || len(r.RemovedHeaders) > 0 ||
		r.AddedRows > 0 || r.RemovedRows > 0 || r.ChangedRows > 0
}

// String formats the report for terminal output.
func (r *Report) String() string {
	s := "=== Container Diff Report ===\n\n"

	s += fmt.Sprintf("Rows: %d -> %d (%+d)\n", r.LeftRows, r.RightRows, r.RightRows-r.LeftRows)
	if r.KeyHeader != "" {
		s += fmt.Sprintf("Key:  %s\n", r.KeyHeader)
	}

	if len(r.AddedHeaders) > 0 {
		s += fmt.Sprintf("\nNew Headers: %v\n", r.AddedHeaders)
	}
	if len(r.RemovedHeaders) > 0 {
		s += fmt.Sprintf("Removed Headers: %v\n", r.RemovedHeaders)
	}

	s += "\nRow Changes:\n"
	s += fmt.Sprintf("  %-10s %d\n", "added", r.AddedRows)
	s += fmt.Sprintf("  %-10s %d\n", "removed", r.RemovedRows)
	s += fmt.Sprintf("  %-10s %d\n", "changed", r.ChangedRows)
	s += fmt.Sprintf("  %-10s %d\n", "unchanged", r.UnchangedRows)

	if len(r.HeaderChanges) > 0 {
		s += "\nCell Changes by Header:\n"
		s += fmt.Sprintf("  %-20s %8s\n", "Header", "Changed")
		s += fmt.Sprintf("  %-20s %8s\n", "------", "-------")
		for _, hc := range r.HeaderChanges {
			name := hc.Header
			if len(name) > 20 {
				name = name[:17] + "..."
			}
			s += fmt.Sprintf("  %-20s %8d\n", name, hc.Changed)
		}
	}

	if !r.HasChanges() {
		s += "\nContainers are identical.\n"
	}
	return s
}

// Compare diffs right against left. A non-empty keyHeader pairs rows by
// that header's value and attributes cell edits to headers; an empty
// keyHeader falls back to full-content matching, which can only tell
// added from removed.
func Compare(left, right *container.Container, keyHeader string) (*Report, error) {
	r := &Report{
		LeftRows:  left.RowCount(),
		RightRows: right.RowCount(),
		KeyHeader: keyHeader,
	}

	leftNames := left.HeaderNames()
	rightNames := right.HeaderNames()
	leftSet := toSet(leftNames)
	rightSet := toSet(rightNames)

	for _, name := range rightNames {
		if !leftSet[name] {
			r.AddedHeaders = append(r.AddedHeaders, name)
		}
	}
	var shared []string
	for _, name := range leftNames {
		if !rightSet[name] {
			r.RemovedHeaders = append(r.RemovedHeaders, name)
		} else {
			shared = append(shared, name)
		}
	}

	if keyHeader == "" {
		compareByContent(left, right, r)
		return r, nil
	}

	if left.HeaderIndexOf(keyHeader) < 0 || right.HeaderIndexOf(keyHeader) < 0 {
		return nil, errors.Newf(errors.CodeNoSuchHeader,
			"key header %q must exist in both containers", keyHeader)
	}
	compareByKey(left, right, shared, keyHeader, r)
	return r, nil
}

// compareByKey pairs rows by key value, first occurrence first, and
// compares the shared headers cell by cell.
func compareByKey(left, right *container.Container, shared []string, key string, r *Report) {
	rightKeyIdx := right.HeaderIndexOf(key)
	rightRows := right.Records()
	unclaimed := make(map[string][]int, len(rightRows))
	for i, row := range rightRows {
		k := row[rightKeyIdx]
		unclaimed[k] = append(unclaimed[k], i)
	}

	type indexPair struct {
		name        string
		left, right int
	}
	pairs := make([]indexPair, 0, len(shared))
	for _, h := range shared {
		pairs = append(pairs, indexPair{h, left.HeaderIndexOf(h), right.HeaderIndexOf(h)})
	}

	leftKeyIdx := left.HeaderIndexOf(key)
	changedBy := make(map[string]int)

	for _, leftRow := range left.Records() {
		k := leftRow[leftKeyIdx]
		partners := unclaimed[k]
		if len(partners) == 0 {
			r.RemovedRows++
			continue
		}
		rightRow := rightRows[partners[0]]
		unclaimed[k] = partners[1:]

		changed := false
		for _, p := range pairs {
			if leftRow[p.left] != rightRow[p.right] {
				changed = true
				changedBy[p.name]++
			}
		}
		if changed {
			r.ChangedRows++
		} else {
			r.UnchangedRows++
		}
	}

	for _, partners := range unclaimed {
		r.AddedRows += len(partners)
	}

	for h, n := range changedBy {
		r.HeaderChanges = append(r.HeaderChanges, HeaderChange{Header: h, Changed: n})
	}
	sort.Slice(r.HeaderChanges, func(i, j int) bool {
		if r.HeaderChanges[i].Changed != r.HeaderChanges[j].Changed {
			return r.HeaderChanges[i].Changed > r.HeaderChanges[j].Changed
		}
		return r.HeaderChanges[i].Header < r.HeaderChanges[j].Header
	})
}

// compareByContent matches rows as a multiset of full records.
func compareByContent(left, right *container.Container, r *Report) {
	counts := make(map[string]int)
	for _, row := range left.Records() {
		counts[strings.Join(row, "\x1f")]++
	}
	for _, row := range right.Records() {
		k := strings.Join(row, "\x1f")
		if counts[k] > 0 {
			counts[k]--
			r.UnchangedRows++
		} else {
			r.AddedRows++
		}
	}
	for _, n := range counts {
		r.RemovedRows += n
	}
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
