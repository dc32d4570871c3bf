// Package adapters provides Source and Sink implementations for the
// supported container formats. Sources materialize files into tabular
// containers; sinks serialize containers back out. Tree-shaped formats
// (JSON, YAML, XML) have their own read/write functions returning the
// hierarchical model, plus a flattening bridge into the tabular world.
package adapters

import (
	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/filter"
	"github.com/tabkit/tabkit/pkg/tree"
)

// Source reads a file into a container. Rows not matching the filter
// are skipped during ingest; a nil filter keeps everything.
type Source interface {
	// Name returns the adapter name.
	Name() string

	// Read materializes the file at path into a container.
	Read(path string, fltr *filter.Filter, opts ...container.Option) (*container.Container, error)
}

// Sink writes a container to a file.
type Sink interface {
	// Name returns the adapter name.
	Name() string

	// Write serializes the container to path.
	Write(c *container.Container, path string) error
}

// Flatten converts a tree into a two-column container: one row per
// scalar node, first column the node's path, second its value. Unnamed
// array elements carry their parent's path, so array members share one
// path with distinct values. Filter rules evaluate against the Path and
// Value headers.
func Flatten(t *tree.Tree, fltr *filter.Filter, opts ...container.Option) (*container.Container, error) {
	c := container.New(opts...)
	c.SetHeaders([]string{"Path", "Value"})

	var addErr error
	t.Walk(func(n *tree.Node) bool {
		if !n.IsLeaf() {
			return true
		}
		if err := c.AddRow([]string{n.Path(), n.Text()}, fltr); err != nil {
			addErr = err
			return false
		}
		return true
	})
	if addErr != nil {
		return nil, addErr
	}
	return c, nil
}

// TreeSource adapts a tree parser into a tabular Source by flattening
// the parsed document.
type TreeSource struct {
	name  string
	parse func(path string) (*tree.Tree, error)
}

// NewTreeSource wraps a parse function as a Source.
func NewTreeSource(name string, parse func(string) (*tree.Tree, error)) *TreeSource {
	return &TreeSource{name: name, parse: parse}
}

// Name returns the adapter name.
func (s *TreeSource) Name() string {
	return s.name
}

// Read parses the document at path and flattens it.
func (s *TreeSource) Read(path string, fltr *filter.Filter, opts ...container.Option) (*container.Container, error) {
	t, err := s.parse(path)
	if err != nil {
		return nil, err
	}
	return Flatten(t, fltr, opts...)
}

var _ Source = (*TreeSource)(nil)
