package container

import "log/slog"

// Option configures a container at construction time.
type Option func(*Container)

// WithDelimiter sets the field delimiter used by the orientation
// translator. The default is ";".
func WithDelimiter(d string) Option {
	return func(c *Container) {
		if d != "" {
			c.delimiter = d
		}
	}
}

// WithOrientation fixes the physical layout of the container's source.
func WithOrientation(o Orientation) Option {
	return func(c *Container) { c.orientation = o }
}

// WithHeaderIndex sets the line index of the header row for row-oriented
// sources. Lines before it are skipped on import. The default is 0.
func WithHeaderIndex(i int) Option {
	return func(c *Container) {
		if i >= 0 {
			c.headerIndex = i
		}
	}
}

// WithMetadata declares a provenance field carried by every record.
func WithMetadata(key, value string) Option {
	return func(c *Container) { c.SetMetadata(key, value) }
}

// WithImplicitHeaders extends the set of synthetic header names that
// filter rules may reference without them being registered.
func WithImplicitHeaders(names ...string) Option {
	return func(c *Container) {
		for _, n := range names {
			c.implicit[n] = true
		}
	}
}

// WithLogger sets the diagnostic sink. The default discards records.
func WithLogger(l *slog.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.log = l
		}
	}
}

// WithPath attaches a backing file. Positional mutations write the whole
// store back to it immediately.
func WithPath(path string) Option {
	return func(c *Container) { c.path = path }
}
