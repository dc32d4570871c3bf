// Package tabkit reads, edits, and writes tabular data containers
// without caring about the format they live in.
//
// A container holds rows of string fields behind a header registry;
// sources and sinks translate between containers and concrete formats
// (CSV, properties, XLSX, Parquet), while tree formats (JSON, YAML,
// XML) are queried by path and flattened into containers on demand.
//
// Basic usage:
//
//	// Read a container, format detected from the extension
//	c, err := tabkit.Open("people.csv")
//
//	// Query and edit
//	name := c.GetValueAt("name", 2)
//	err = c.SetValueAt("name", 2, "Robin")
//
//	// Convert between formats
//	c, err = tabkit.Convert(ctx, "people.csv", "people.parquet")
//
//	// Path queries on tree formats
//	t, err := tabkit.OpenTree("config.json")
//	host, err := t.Value("server/host")
package tabkit

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/filter"
	"github.com/tabkit/tabkit/pkg/registry"
	"github.com/tabkit/tabkit/pkg/tree"
)

// Version is the library version.
const Version = "0.3.0"

// Open reads a container from path. The format is detected from the
// file extension; gzip compression is transparent.
func Open(path string, opts ...container.Option) (*container.Container, error) {
	return registry.Open(path, nil, opts...)
}

// OpenFiltered reads a container keeping only rows the filter admits.
func OpenFiltered(path string, fltr *filter.Filter, opts ...container.Option) (*container.Container, error) {
	return registry.Open(path, fltr, opts...)
}

// Write writes a container to path in the format the extension names.
func Write(c *container.Container, path string) error {
	return registry.Write(c, path)
}

// OpenTree reads a tree document (JSON, YAML, XML) from path.
func OpenTree(path string) (*tree.Tree, error) {
	return registry.OpenTree(path)
}

// WriteTree writes a tree document to path in the format the extension
// names.
func WriteTree(t *tree.Tree, path string) error {
	return registry.WriteTree(t, path)
}

// Convert reads in and writes the result to out, translating between
// the two formats. The read container is returned for inspection.
func Convert(ctx context.Context, in, out string, opts ...container.Option) (*container.Container, error) {
	c, err := registry.Open(in, nil, opts...)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := registry.Write(c, out); err != nil {
		return nil, err
	}
	return c, nil
}

// OpenAll reads several containers concurrently, bounded to four files
// at a time. The result keeps the order of paths; one failed file fails
// the whole batch.
func OpenAll(ctx context.Context, paths []string, fltr *filter.Filter, opts ...container.Option) ([]*container.Container, error) {
	out := make([]*container.Container, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := registry.Open(path, fltr, opts...)
			if err != nil {
				return err
			}
			out[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
