package container

import (
	"fmt"

	"github.com/tabkit/tabkit/pkg/errors"
)

// Headers is the ordered name-to-index registry for a container. Indices
// form a dense range 0..Count()-1 in insertion order. Names are unique;
// inserting a taken name without reuse disambiguates it with a numeric
// suffix. Metadata headers are registered here like intrinsic ones, so a
// record's length always equals Count().
type Headers struct {
	index map[string]int
	names []string
}

// NewHeaders creates an empty registry.
func NewHeaders() *Headers {
	return &Headers{index: make(map[string]int)}
}

// Count returns the number of registered headers.
func (h *Headers) Count() int {
	return len(h.names)
}

// Contains reports whether name is registered.
func (h *Headers) Contains(name string) bool {
	_, ok := h.index[name]
	return ok
}

// IndexOf returns the index of name, or -1 when it is not registered.
func (h *Headers) IndexOf(name string) int {
	if i, ok := h.index[name]; ok {
		return i
	}
	return -1
}

// NameAt returns the header name at index.
func (h *Headers) NameAt(index int) (string, error) {
	if index < 0 || index >= len(h.names) {
		return "", errors.IndexOutOfRange(index, len(h.names))
	}
	return h.names[index], nil
}

// Names returns the header names in index order. The slice is an owned
// copy; mutating it does not affect the registry.
func (h *Headers) Names() []string {
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}

// Add registers name at the next free index and returns the name actually
// used. When name is taken and useExisting is true the call is a no-op
// returning the existing name. When name is taken and useExisting is false
// the first free of name_2, name_3, ... is registered instead.
func (h *Headers) Add(name string, useExisting bool) string {
	if _, ok := h.index[name]; !ok {
		h.index[name] = len(h.names)
		h.names = append(h.names, name)
		return name
	}
	if useExisting {
		return name
	}

	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", name, n)
		if _, ok := h.index[candidate]; !ok {
			h.index[candidate] = len(h.names)
			h.names = append(h.names, candidate)
			return candidate
		}
	}
}

// Append bulk-registers names starting at the current size, applying the
// same collision rule as Add with useExisting=false. It returns the names
// actually used, positionally aligned with the input.
func (h *Headers) Append(names []string) []string {
	used := make([]string, len(names))
	for i, name := range names {
		used[i] = h.Add(name, false)
	}
	return used
}

// MatchState classifies an incoming header set relative to a reference
// registry.
type MatchState int

const (
	// StateMatch means every incoming header sits at its reference index.
	StateMatch MatchState = iota
	// StatePermuted means all incoming headers are known but at least one
	// sits at a different index; records need reordering before insertion.
	StatePermuted
	// StateIncompatible means at least one incoming header is unknown to
	// the reference registry.
	StateIncompatible
)

// String returns the state name for diagnostics.
func (s MatchState) String() string {
	switch s {
	case StateMatch:
		return "match"
	case StatePermuted:
		return "permuted"
	case StateIncompatible:
		return "incompatible"
	default:
		return "unknown"
	}
}

// Compare classifies incoming against the registry. Any incoming name
// absent from the registry makes the set incompatible; otherwise the set
// matches when every name's registered index equals its incoming position
// and is permuted when not.
func (h *Headers) Compare(incoming []string) MatchState {
	state := StateMatch
	for pos, name := range incoming {
		idx, ok := h.index[name]
		if !ok {
			return StateIncompatible
		}
		if idx != pos {
			state = StatePermuted
		}
	}
	return state
}

// Remap builds the reorder table for a permuted incoming set:
// remap[referenceIndex] holds the incoming position carrying that header's
// value, or -1 when the incoming set does not carry it.
func (h *Headers) Remap(incoming []string) []int {
	pos := make(map[string]int, len(incoming))
	for i, name := range incoming {
		pos[name] = i
	}

	remap := make([]int, len(h.names))
	for i, name := range h.names {
		if p, ok := pos[name]; ok {
			remap[i] = p
		} else {
			remap[i] = -1
		}
	}
	return remap
}

// ReorderRecord rebuilds a record in reference order using a table from
// Remap. Positions the incoming set does not carry become empty values.
func ReorderRecord(record []string, remap []int) []string {
	out := make([]string, len(remap))
	for i, src := range remap {
		if src >= 0 && src < len(record) {
			out[i] = record[src]
		}
	}
	return out
}
