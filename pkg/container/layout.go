package container

import "strings"

// Orientation describes how physical lines map onto the logical model.
// It is fixed per container, set once from the source format.
type Orientation int

const (
	// OrientationNone marks an unset orientation. Import and export
	// degrade to warned no-ops.
	OrientationNone Orientation = iota
	// OrientationRows maps one physical line to one record, with a header
	// line at the configured header index.
	OrientationRows
	// OrientationColumns maps one physical line to one column: the first
	// field names the header, the remaining fields are that column's
	// values down the rows.
	OrientationColumns
)

// String returns the orientation token used in config files and flags.
func (o Orientation) String() string {
	switch o {
	case OrientationRows:
		return "rows"
	case OrientationColumns:
		return "columns"
	default:
		return "none"
	}
}

// ParseOrientation converts a token into an Orientation.
func ParseOrientation(s string) (Orientation, bool) {
	switch strings.ToLower(s) {
	case "rows", "row":
		return OrientationRows, true
	case "columns", "column", "cols":
		return OrientationColumns, true
	case "none", "":
		return OrientationNone, true
	default:
		return OrientationNone, false
	}
}

// decoded is the orientation-independent outcome of translating physical
// lines: a header name sequence and the records aligned to it.
type decoded struct {
	names []string
	rows  [][]string
}

// decodeRows translates row-oriented lines. The line at the configured
// header index seeds the header names; earlier lines are skipped with a
// diagnostic; later lines become records.
func (c *Container) decodeRows(lines []string) decoded {
	var dec decoded
	for i, line := range lines {
		switch {
		case i < c.headerIndex:
			c.log.Info("skipping line before header", "line", i)
		case i == c.headerIndex:
			dec.names = c.splitClean(line)
		default:
			dec.rows = append(dec.rows, c.splitClean(line))
		}
	}
	if len(lines) > 0 && c.headerIndex >= len(lines) {
		c.log.Warn("header index beyond input, nothing imported",
			"headerIndex", c.headerIndex, "lines", len(lines))
	}
	return dec
}

// decodeColumns translates column-oriented lines: each line contributes
// one header name and that column's values. Columns are padded to the
// longest before being transposed into records.
func (c *Container) decodeColumns(lines []string) decoded {
	var dec decoded
	var cols [][]string
	maxLen := 0

	for _, line := range lines {
		fields := c.splitClean(line)
		if len(fields) == 0 || (len(fields) == 1 && fields[0] == "") {
			continue
		}
		dec.names = append(dec.names, fields[0])
		values := fields[1:]
		cols = append(cols, values)
		if len(values) > maxLen {
			maxLen = len(values)
		}
	}

	dec.rows = make([][]string, maxLen)
	for i := 0; i < maxLen; i++ {
		record := make([]string, len(cols))
		for j, col := range cols {
			if i < len(col) {
				record[j] = col[i]
			}
		}
		dec.rows[i] = record
	}
	return dec
}

// encodeRows serializes the container row-oriented: one header line, then
// one line per record, fields joined by the delimiter.
func (c *Container) encodeRows() []string {
	lines := make([]string, 0, len(c.rows)+1)
	lines = append(lines, strings.Join(c.headers.Names(), c.delimiter))
	for _, record := range c.rows {
		lines = append(lines, strings.Join(record, c.delimiter))
	}
	return lines
}

// encodeColumns serializes the container column-oriented: one line per
// header carrying its name followed by the column's values.
func (c *Container) encodeColumns() []string {
	names := c.headers.Names()
	lines := make([]string, 0, len(names))
	for i, name := range names {
		parts := make([]string, 0, len(c.rows)+1)
		parts = append(parts, name)
		for _, record := range c.rows {
			if i < len(record) {
				parts = append(parts, record[i])
			}
		}
		lines = append(lines, strings.Join(parts, c.delimiter))
	}
	return lines
}

// splitClean splits a physical line on the delimiter and strips enclosing
// quotes from each field. Quotes are not reinstated on export, so values
// that contain the delimiter do not survive a round-trip; see the package
// documentation.
func (c *Container) splitClean(line string) []string {
	fields := strings.Split(line, c.delimiter)
	for i, f := range fields {
		fields[i] = stripQuotes(f)
	}
	return fields
}

// stripQuotes removes one pair of enclosing double or single quotes.
func stripQuotes(v string) string {
	if len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
