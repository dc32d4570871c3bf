package adapters

import (
	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/filter"
)

// CSVSource reads delimited text files. The delimiter, header line
// index, and orientation come from the container options; the defaults
// match semicolon-separated files with the header on the first line.
// Gzip-compressed input is decompressed transparently.
type CSVSource struct{}

// NewCSVSource creates a new CSV source.
func NewCSVSource() *CSVSource {
	return &CSVSource{}
}

// Name returns the adapter name.
func (s *CSVSource) Name() string {
	return "csv"
}

// Read materializes a delimited text file into a container and attaches
// the file for write-through.
func (s *CSVSource) Read(path string, fltr *filter.Filter, opts ...container.Option) (*container.Container, error) {
	c := container.New(opts...)
	if err := c.ReadFile(path, fltr); err != nil {
		return nil, err
	}
	return c, nil
}

// CSVSink writes a container as delimited text, honoring the
// container's delimiter and orientation. Paths ending in .gz are
// compressed.
type CSVSink struct{}

// NewCSVSink creates a new CSV sink.
func NewCSVSink() *CSVSink {
	return &CSVSink{}
}

// Name returns the adapter name.
func (s *CSVSink) Name() string {
	return "csv"
}

// Write serializes the container to path.
func (s *CSVSink) Write(c *container.Container, path string) error {
	return c.WriteData(path)
}

var (
	_ Source = (*CSVSource)(nil)
	_ Sink   = (*CSVSink)(nil)
)
