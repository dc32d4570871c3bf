package adapters

import (
	"strings"

	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/filter"
	"github.com/tabkit/tabkit/pkg/util"
)

// PropertiesSource reads key=value files into a one-row container: each
// key becomes a header, each value the field below it. Lines starting
// with # or ! and blank lines are skipped. Only the first "=" splits,
// so values may contain the character.
type PropertiesSource struct{}

// NewPropertiesSource creates a new properties source.
func NewPropertiesSource() *PropertiesSource {
	return &PropertiesSource{}
}

// Name returns the adapter name.
func (s *PropertiesSource) Name() string {
	return "properties"
}

// Read materializes a properties file into a container and attaches the
// file for write-through.
func (s *PropertiesSource) Read(path string, fltr *filter.Filter, opts ...container.Option) (*container.Container, error) {
	lines, err := util.ReadLines(path)
	if err != nil {
		return nil, err
	}

	var names, values []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "!") {
			continue
		}
		key, value, _ := strings.Cut(trimmed, "=")
		names = append(names, strings.TrimSpace(key))
		values = append(values, strings.TrimSpace(value))
	}

	opts = append(opts,
		container.WithOrientation(container.OrientationColumns),
		container.WithDelimiter("="),
	)
	c := container.New(opts...)
	if len(names) > 0 {
		c.SetHeaders(names)
		if err := c.AddRow(values, fltr); err != nil {
			return nil, err
		}
	}
	c.Attach(path)
	return c, nil
}

// PropertiesSink writes a container as key=value lines: one line per
// header, the header name followed by the column's values joined with
// "=". Comments from the source file are not preserved.
type PropertiesSink struct{}

// NewPropertiesSink creates a new properties sink.
func NewPropertiesSink() *PropertiesSink {
	return &PropertiesSink{}
}

// Name returns the adapter name.
func (s *PropertiesSink) Name() string {
	return "properties"
}

// Write serializes the container to path.
func (s *PropertiesSink) Write(c *container.Container, path string) error {
	lines := make([]string, 0, c.HeaderCount())
	for _, name := range c.HeaderNames() {
		parts := append([]string{name}, c.GetColumn(name)...)
		lines = append(lines, strings.Join(parts, "="))
	}
	return util.WriteLines(path, lines)
}

var (
	_ Source = (*PropertiesSource)(nil)
	_ Sink   = (*PropertiesSink)(nil)
)
