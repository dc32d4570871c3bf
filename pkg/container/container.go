// Package container implements the tabular data container at the heart of
// TabKit: an in-memory row/column model with named headers, row filters,
// header reconciliation across appends, and row- or column-oriented text
// serialization.
//
// Failure contract. Operations distinguish soft failures from hard ones.
// Soft failures (lookup misses, out-of-range reads, rows dropped on
// import, unsupported orientation) emit a diagnostic and return an empty
// or no-op result. Hard failures (filter rules naming unknown headers,
// structural edits that would break the record shape, write-through I/O
// errors) return an error. Every record's length equals the header count
// after any operation; input that would violate that is padded or
// rejected.
//
// Import strips one pair of enclosing quotes from each field; export does
// not reinstate them. Values containing the delimiter therefore do not
// survive a write/read round-trip.
package container

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/tabkit/tabkit/pkg/diag"
	"github.com/tabkit/tabkit/pkg/errors"
	"github.com/tabkit/tabkit/pkg/filter"
	"github.com/tabkit/tabkit/pkg/index"
	"github.com/tabkit/tabkit/pkg/util"
)

// ImplicitRowIndex is the synthetic header name filter rules may always
// reference. It evaluates against a row's position in the store.
const ImplicitRowIndex = "RowIndex"

// Container is the tabular facade composing the header registry, row
// store, metadata injector, filter evaluation, and orientation
// translation. It is not safe for concurrent mutation; callers needing
// shared access must serialize externally.
type Container struct {
	headers *Headers
	rows    [][]string

	metaKeys   []string
	metaValues map[string]string

	orientation Orientation
	delimiter   string
	headerIndex int
	implicit    map[string]bool

	path string
	log  *slog.Logger

	idx      *index.ValueIndex
	idxDirty bool
}

// New creates an empty container. Defaults: Rows orientation, ";"
// delimiter, header line at index 0, discarded diagnostics.
func New(opts ...Option) *Container {
	c := &Container{
		headers:     NewHeaders(),
		metaValues:  make(map[string]string),
		orientation: OrientationRows,
		delimiter:   ";",
		implicit:    map[string]bool{ImplicitRowIndex: true},
		log:         diag.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Shape accessors ---

// HeaderNames returns the registered header names in index order.
func (c *Container) HeaderNames() []string { return c.headers.Names() }

// HeaderIndexOf returns the index of a header name, -1 when absent.
func (c *Container) HeaderIndexOf(name string) int { return c.headers.IndexOf(name) }

// HeaderAt returns the header name at an index.
func (c *Container) HeaderAt(i int) (string, error) { return c.headers.NameAt(i) }

// HeaderCount returns the number of registered headers, metadata included.
func (c *Container) HeaderCount() int { return c.headers.Count() }

// RowCount returns the number of stored records.
func (c *Container) RowCount() int { return len(c.rows) }

// Orientation returns the container's fixed physical layout.
func (c *Container) Orientation() Orientation { return c.orientation }

// Delimiter returns the field delimiter.
func (c *Container) Delimiter() string { return c.delimiter }

// Path returns the backing file path, empty for detached containers.
func (c *Container) Path() string { return c.path }

// Attach sets the backing file for write-through.
func (c *Container) Attach(path string) { c.path = path }

// Detach clears the backing file; mutations stay in memory only.
func (c *Container) Detach() { c.path = "" }

// SetLogger replaces the diagnostic sink.
func (c *Container) SetLogger(l *slog.Logger) {
	if l != nil {
		c.log = l
	}
}

// --- Metadata ---

// SetMetadata declares or updates a metadata field. A new key is
// registered as a header (extending existing records with an empty slot);
// the value is injected into records created afterwards.
func (c *Container) SetMetadata(key, value string) {
	if _, ok := c.metaValues[key]; !ok {
		c.metaKeys = append(c.metaKeys, key)
		if c.headers.Count() > 0 {
			c.addColumnInternal(key, true)
		}
	}
	c.metaValues[key] = value
}

// MetadataKeys returns the declared metadata keys in declaration order.
func (c *Container) MetadataKeys() []string {
	out := make([]string, len(c.metaKeys))
	copy(out, c.metaKeys)
	return out
}

// MetadataValue returns a declared metadata value.
func (c *Container) MetadataValue(key string) (string, bool) {
	v, ok := c.metaValues[key]
	return v, ok
}

// MetadataCount returns the number of declared metadata fields.
func (c *Container) MetadataCount() int { return len(c.metaKeys) }

// --- Header mutation ---

// SetHeaders bulk-registers names starting at the current registry size,
// applying the collision rule, then ensures all metadata headers are
// registered behind them. Existing records are extended with one empty
// slot per inserted header. It returns the names actually used.
func (c *Container) SetHeaders(names []string) []string {
	used := make([]string, len(names))
	for i, n := range names {
		used[i] = c.addColumnInternal(n, false)
	}
	for _, k := range c.metaKeys {
		c.addColumnInternal(k, true)
	}
	return used
}

// AddColumn registers one header and extends every record with an empty
// slot. When the name is taken and useExisting is true nothing changes;
// when useExisting is false a suffixed name is registered instead. The
// name actually used is returned.
func (c *Container) AddColumn(name string, useExisting bool) (string, error) {
	before := c.headers.Count()
	used := c.addColumnInternal(name, useExisting)
	if c.headers.Count() > before {
		return used, c.writeThrough()
	}
	return used, nil
}

func (c *Container) addColumnInternal(name string, useExisting bool) string {
	before := c.headers.Count()
	used := c.headers.Add(name, useExisting)
	if c.headers.Count() > before {
		for i := range c.rows {
			c.rows[i] = append(c.rows[i], "")
		}
		c.markDirty()
	}
	return used
}

// --- Import / export ---

// ReadFile reads all lines of path (gzip-transparent), imports them
// honoring the container's orientation, and attaches path as the backing
// file. Rows not matching fltr are skipped; a nil filter keeps all.
func (c *Container) ReadFile(path string, fltr *filter.Filter) error {
	lines, err := util.ReadLines(path)
	if err != nil {
		return errors.Wrapf(err, errors.CodeFileNotFound, "read %s", path)
	}
	if err := c.ImportLines(lines, fltr); err != nil {
		return err
	}
	c.path = path
	return nil
}

// ImportLines translates physical lines through the orientation
// translator and merges the outcome into the store. An unset orientation
// is a warned no-op.
func (c *Container) ImportLines(lines []string, fltr *filter.Filter) error {
	var dec decoded
	switch c.orientation {
	case OrientationRows:
		dec = c.decodeRows(lines)
	case OrientationColumns:
		dec = c.decodeColumns(lines)
	default:
		c.log.Warn("unsupported orientation, import skipped",
			"orientation", c.orientation.String())
		return nil
	}
	return c.merge(dec, fltr)
}

// merge reconciles a decoded header set against the registry and appends
// the decoded records. An empty registry adopts the incoming names; a
// populated one auto-adds unknown names and reorders permuted records.
func (c *Container) merge(dec decoded, fltr *filter.Filter) error {
	if len(dec.names) == 0 {
		if len(dec.rows) > 0 {
			c.log.Warn("records without headers dropped", "rows", len(dec.rows))
		}
		return nil
	}

	var remap []int
	if c.headers.Count() == 0 {
		c.SetHeaders(dec.names)
	} else {
		state := c.headers.Compare(dec.names)
		if state == StateIncompatible {
			for _, n := range dec.names {
				c.addColumnInternal(n, true)
			}
			c.log.Info("unknown headers auto-added",
				"state", c.headers.Compare(dec.names).String())
		}
		remap = c.headers.Remap(dec.names)
	}

	width := len(dec.names)
	for i, row := range dec.rows {
		if len(row) != width {
			c.log.Warn("field count mismatch, row dropped",
				"row", i, "want", width, "got", len(row))
			continue
		}

		var rec []string
		if remap == nil {
			var err error
			rec, err = c.buildRecord(row)
			if err != nil {
				c.log.Warn("field count mismatch, row dropped",
					"row", i, "want", width, "got", len(row))
				continue
			}
		} else {
			rec = ReorderRecord(row, remap)
			for _, k := range c.metaKeys {
				if p := c.headers.IndexOf(k); p >= 0 && remap[p] == -1 {
					rec[p] = c.metaValues[k]
				}
			}
		}

		ok, err := c.matches(rec, len(c.rows), fltr)
		if err != nil {
			return err
		}
		if !ok {
			c.log.Debug("row does not match filter, skipped", "row", i)
			continue
		}
		c.rows = append(c.rows, rec)
	}
	c.markDirty()
	return nil
}

// ExportLines serializes the store through the orientation translator.
// An unset orientation is a warned no-op returning nil.
func (c *Container) ExportLines() []string {
	switch c.orientation {
	case OrientationRows:
		return c.encodeRows()
	case OrientationColumns:
		return c.encodeColumns()
	default:
		c.log.Warn("unsupported orientation, export skipped",
			"orientation", c.orientation.String())
		return nil
	}
}

// WriteData serializes the store to path, creating parent directories as
// needed. An empty path falls back to the backing file. An unset
// orientation skips the write with a warning; the file is left untouched.
func (c *Container) WriteData(path string) error {
	if path == "" {
		path = c.path
	}
	if path == "" {
		return errors.New(errors.CodeWriteFailed, "container has no backing file")
	}

	var lines []string
	switch c.orientation {
	case OrientationRows:
		lines = c.encodeRows()
	case OrientationColumns:
		lines = c.encodeColumns()
	default:
		c.log.Warn("unsupported orientation, write skipped",
			"orientation", c.orientation.String())
		return nil
	}

	if err := util.WriteLines(path, lines); err != nil {
		return errors.Wrapf(err, errors.CodeWriteFailed, "write %s", path)
	}
	return nil
}

// writeThrough re-serializes the store to the backing file after a
// positional mutation. Detached containers skip it.
func (c *Container) writeThrough() error {
	if c.path == "" {
		return nil
	}
	return c.WriteData(c.path)
}

// --- Record construction ---

// buildRecord produces a full-width record from caller values. A record
// already at full width is copied as-is (metadata slots included); one at
// intrinsic width gets the declared metadata values injected at their
// registered positions. Any other length is a shape error.
func (c *Container) buildRecord(values []string) ([]string, error) {
	want := c.headers.Count()
	metaAt := c.metaPositions()

	switch len(values) {
	case want:
		rec := make([]string, want)
		copy(rec, values)
		return rec, nil
	case want - len(metaAt):
		rec := make([]string, want)
		vi := 0
		for i := 0; i < want; i++ {
			if v, ok := metaAt[i]; ok {
				rec[i] = v
			} else {
				rec[i] = values[vi]
				vi++
			}
		}
		return rec, nil
	default:
		return nil, errors.ShapeMismatch(want-len(metaAt), len(values))
	}
}

// metaPositions maps registered metadata positions to their declared
// values.
func (c *Container) metaPositions() map[int]string {
	out := make(map[int]string, len(c.metaKeys))
	for _, k := range c.metaKeys {
		if p := c.headers.IndexOf(k); p >= 0 {
			out[p] = c.metaValues[k]
		}
	}
	return out
}

// newEmptyRecord returns a full-width record with metadata values set and
// all intrinsic fields empty.
func (c *Container) newEmptyRecord() []string {
	rec := make([]string, c.headers.Count())
	for p, v := range c.metaPositions() {
		rec[p] = v
	}
	return rec
}

// --- Filter evaluation ---

// matches evaluates a filter against one record. Rules referencing a
// header absent from both the registry and the implicit set are a hard
// error. ImplicitRowIndex rules evaluate against rowIdx; other implicit
// rules pass only for wildcard values.
func (c *Container) matches(record []string, rowIdx int, fltr *filter.Filter) (bool, error) {
	if fltr.Empty() {
		return true, nil
	}
	for _, rule := range fltr.Rules() {
		if idx := c.headers.IndexOf(rule.Header); idx >= 0 {
			field := ""
			if idx < len(record) {
				field = record[idx]
			}
			if !rule.Match(field) {
				return false, nil
			}
			continue
		}
		if c.implicit[rule.Header] {
			if rule.Header == ImplicitRowIndex {
				if !rule.Match(strconv.Itoa(rowIdx)) {
					return false, nil
				}
				continue
			}
			if filter.IsWildcard(rule.Value) {
				continue
			}
			return false, nil
		}
		return false, errors.NoSuchHeader(rule.Header, c.headers.Names())
	}
	return true, nil
}

// --- Query surface ---

// GetValue returns the first row's value for a header, or the empty
// string when the header is unknown or the store is empty.
func (c *Container) GetValue(header string) string {
	return c.GetValueAt(header, 0)
}

// GetValueAt returns the value at (header, row), or the empty string
// when either coordinate does not resolve.
func (c *Container) GetValueAt(header string, row int) string {
	idx := c.headers.IndexOf(header)
	if idx < 0 {
		c.log.Info("header not found", "header", header)
		return ""
	}
	if row < 0 || row >= len(c.rows) {
		c.log.Info("row out of range", "row", row, "rows", len(c.rows))
		return ""
	}
	rec := c.rows[row]
	if idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

// GetValueWhere returns the header's value in the first row matching the
// filter, or the empty string when no row matches.
func (c *Container) GetValueWhere(header string, fltr *filter.Filter) (string, error) {
	ids, err := c.GetRowsIndexes(fltr)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		c.log.Info("no rows match filter", "filter", fltr.String())
		return "", nil
	}
	return c.GetValueAt(header, ids[0]), nil
}

// GetValues returns the header's value from every row matching the
// filter, in row order.
func (c *Container) GetValues(header string, fltr *filter.Filter) ([]string, error) {
	ids, err := c.GetRowsIndexes(fltr)
	if err != nil {
		return nil, err
	}
	idx := c.headers.IndexOf(header)
	if idx < 0 {
		c.log.Info("header not found", "header", header)
		return []string{}, nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		rec := c.rows[id]
		if idx < len(rec) {
			out = append(out, rec[idx])
		}
	}
	return out, nil
}

// GetDistinctValues returns the header's distinct values in first
// occurrence order.
func (c *Container) GetDistinctValues(header string) []string {
	idx := c.headers.IndexOf(header)
	if idx < 0 {
		c.log.Info("header not found", "header", header)
		return []string{}
	}
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, rec := range c.rows {
		if idx >= len(rec) {
			continue
		}
		if !seen[rec[idx]] {
			seen[rec[idx]] = true
			out = append(out, rec[idx])
		}
	}
	return out
}

// GetFloats returns the header's values parsed as floats for every row
// matching the filter. Empty fields are skipped; unparseable ones are
// skipped with a diagnostic.
func (c *Container) GetFloats(header string, fltr *filter.Filter) ([]float64, error) {
	values, err := c.GetValues(header, fltr)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			c.log.Warn("value not numeric, skipped", "header", header, "value", v)
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// GetInts is GetFloats for integer values.
func (c *Container) GetInts(header string, fltr *filter.Filter) ([]int64, error) {
	values, err := c.GetValues(header, fltr)
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			c.log.Warn("value not an integer, skipped", "header", header, "value", v)
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// GetRow returns a copy of the record at index, or nil with a diagnostic
// when the index is out of range.
func (c *Container) GetRow(i int) []string {
	if i < 0 || i >= len(c.rows) {
		c.log.Info("row out of range", "row", i, "rows", len(c.rows))
		return nil
	}
	rec := make([]string, len(c.rows[i]))
	copy(rec, c.rows[i])
	return rec
}

// GetRowMap returns the record at index keyed by header name.
func (c *Container) GetRowMap(i int) map[string]string {
	rec := c.GetRow(i)
	if rec == nil {
		return nil
	}
	out := make(map[string]string, len(rec))
	for idx, name := range c.headers.Names() {
		if idx < len(rec) {
			out[name] = rec[idx]
		}
	}
	return out
}

// GetRows returns copies of every record matching the filter.
func (c *Container) GetRows(fltr *filter.Filter) ([][]string, error) {
	return c.SelectRows(nil, nil, fltr)
}

// SelectRows returns the records named by indexes (all when empty),
// restricted to the given headers (all when empty) and to rows matching
// the filter. An out-of-range index stops the selection with a
// diagnostic, returning what was collected so far.
func (c *Container) SelectRows(indexes []int, headers []string, fltr *filter.Filter) ([][]string, error) {
	ids := indexes
	if len(ids) == 0 {
		ids = make([]int, len(c.rows))
		for i := range c.rows {
			ids[i] = i
		}
	}

	var proj []int
	if len(headers) > 0 {
		proj = make([]int, 0, len(headers))
		for _, name := range headers {
			if idx := c.headers.IndexOf(name); idx >= 0 {
				proj = append(proj, idx)
			} else {
				c.log.Info("header not found, column skipped", "header", name)
			}
		}
	}

	out := make([][]string, 0, len(ids))
	for _, id := range ids {
		if id < 0 || id >= len(c.rows) {
			c.log.Info("row out of range, selection stopped", "row", id, "rows", len(c.rows))
			break
		}
		ok, err := c.matches(c.rows[id], id, fltr)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if proj == nil {
			rec := make([]string, len(c.rows[id]))
			copy(rec, c.rows[id])
			out = append(out, rec)
			continue
		}
		rec := make([]string, 0, len(proj))
		for _, p := range proj {
			if p < len(c.rows[id]) {
				rec = append(rec, c.rows[id][p])
			} else {
				rec = append(rec, "")
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// GetColumn returns all values of one header in row order, or an empty
// slice when the header is unknown.
func (c *Container) GetColumn(header string) []string {
	values, _ := c.GetValues(header, nil)
	return values
}

// SelectColumns returns one value slice per header in a ";"-delimited
// header list, restricted to rows matching the filter. Unknown headers
// contribute an empty slice.
func (c *Container) SelectColumns(spec string, fltr *filter.Filter) ([][]string, error) {
	ids, err := c.GetRowsIndexes(fltr)
	if err != nil {
		return nil, err
	}
	names := strings.Split(spec, ";")
	out := make([][]string, len(names))
	for n, name := range names {
		name = strings.TrimSpace(name)
		idx := c.headers.IndexOf(name)
		if idx < 0 {
			c.log.Info("header not found", "header", name)
			out[n] = []string{}
			continue
		}
		col := make([]string, 0, len(ids))
		for _, id := range ids {
			rec := c.rows[id]
			if idx < len(rec) {
				col = append(col, rec[idx])
			}
		}
		out[n] = col
	}
	return out, nil
}

// GetRowsIndexes returns the ascending indices of rows matching the
// filter. With a value index enabled and a filter of plain equality
// rules, the lookup is served from bitmaps instead of a scan.
func (c *Container) GetRowsIndexes(fltr *filter.Filter) ([]int, error) {
	if c.indexEligible(fltr) {
		c.refreshIndex()
		var bm *roaring.Bitmap
		for _, rule := range fltr.Rules() {
			m := c.idx.Lookup(rule.Header, rule.Value)
			if bm == nil {
				bm = m
			} else {
				bm.And(m)
			}
		}
		out := make([]int, 0, bm.GetCardinality())
		it := bm.Iterator()
		for it.HasNext() {
			out = append(out, int(it.Next()))
		}
		return out, nil
	}

	out := make([]int, 0, len(c.rows))
	for i, rec := range c.rows {
		ok, err := c.matches(rec, i, fltr)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, i)
		}
	}
	return out, nil
}

// MaxLen returns the length of the longest value in a column, 0 for
// unknown headers.
func (c *Container) MaxLen(header string) int {
	idx := c.headers.IndexOf(header)
	if idx < 0 {
		return 0
	}
	max := 0
	for _, rec := range c.rows {
		if idx < len(rec) && len(rec[idx]) > max {
			max = len(rec[idx])
		}
	}
	return max
}

// Records returns a deep copy of the row store.
func (c *Container) Records() [][]string {
	out := make([][]string, len(c.rows))
	for i, rec := range c.rows {
		cp := make([]string, len(rec))
		copy(cp, rec)
		out[i] = cp
	}
	return out
}

// --- Mutation surface ---

// AddRow appends one record. Values may be intrinsic-width (metadata
// values are injected) or full-width (taken as-is). A row not matching
// the filter is silently not added; a nil filter admits all.
func (c *Container) AddRow(values []string, fltr *filter.Filter) error {
	rec, err := c.buildRecord(values)
	if err != nil {
		return err
	}
	ok, err := c.matches(rec, len(c.rows), fltr)
	if err != nil {
		return err
	}
	if !ok {
		c.log.Debug("row does not match filter, not added")
		return nil
	}
	c.rows = append(c.rows, rec)
	c.markDirty()
	return nil
}

// SetRow replaces the record at index and writes through.
func (c *Container) SetRow(i int, values []string) error {
	if i < 0 || i >= len(c.rows) {
		return errors.IndexOutOfRange(i, len(c.rows))
	}
	rec, err := c.buildRecord(values)
	if err != nil {
		return err
	}
	c.rows[i] = rec
	c.markDirty()
	return c.writeThrough()
}

// SetValue sets the header's value in the first row and writes through.
func (c *Container) SetValue(header, value string) error {
	return c.SetValueAt(header, 0, value)
}

// SetValueAt sets one field and writes through. An unregistered header
// is auto-added. On an empty store, row 0 creates the first record; any
// other out-of-range row is a hard error.
func (c *Container) SetValueAt(header string, row int, value string) error {
	if c.headers.IndexOf(header) < 0 {
		c.addColumnInternal(header, true)
	}
	if len(c.rows) == 0 && row == 0 {
		c.rows = append(c.rows, c.newEmptyRecord())
	}
	if row < 0 || row >= len(c.rows) {
		return errors.IndexOutOfRange(row, len(c.rows))
	}
	idx := c.headers.IndexOf(header)
	c.rows[row][idx] = value
	c.markDirty()
	return c.writeThrough()
}

// SetValues rewrites the header's field in rows matching the filter and
// writes through. occurrences names positions within the match list; nil
// or [-1] means every match. An unregistered header is auto-added; an
// empty store degenerates to creating row 0.
func (c *Container) SetValues(header string, occurrences []int, value string, fltr *filter.Filter) error {
	if c.headers.IndexOf(header) < 0 {
		c.addColumnInternal(header, true)
	}
	if len(c.rows) == 0 {
		return c.SetValueAt(header, 0, value)
	}

	ids, err := c.GetRowsIndexes(fltr)
	if err != nil {
		return err
	}

	all := len(occurrences) == 0 || (len(occurrences) == 1 && occurrences[0] == -1)
	occ := make(map[int]bool, len(occurrences))
	if !all {
		for _, o := range occurrences {
			occ[o] = true
		}
	}

	idx := c.headers.IndexOf(header)
	changed := false
	for pos, id := range ids {
		if !all && !occ[pos] {
			continue
		}
		c.rows[id][idx] = value
		changed = true
	}
	if !changed {
		c.log.Debug("no rows updated", "header", header, "filter", fltr.String())
		return nil
	}
	c.markDirty()
	return c.writeThrough()
}

// DeleteRow removes the record at index and writes through.
func (c *Container) DeleteRow(i int) error {
	if i < 0 || i >= len(c.rows) {
		return errors.IndexOutOfRange(i, len(c.rows))
	}
	c.rows = append(c.rows[:i], c.rows[i+1:]...)
	c.markDirty()
	return c.writeThrough()
}

// DeleteRows removes every record matching the filter and writes
// through. Zero matches logs a warning and leaves the store untouched.
func (c *Container) DeleteRows(fltr *filter.Filter) error {
	ids, err := c.GetRowsIndexes(fltr)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		c.log.Warn("no rows match filter, nothing deleted", "filter", fltr.String())
		return nil
	}
	for n := len(ids) - 1; n >= 0; n-- {
		i := ids[n]
		c.rows = append(c.rows[:i], c.rows[i+1:]...)
	}
	c.markDirty()
	return c.writeThrough()
}

// DeleteValue empties the header's field in the first row and writes
// through. Unknown headers and empty stores are soft no-ops.
func (c *Container) DeleteValue(header string) error {
	idx := c.headers.IndexOf(header)
	if idx < 0 {
		c.log.Warn("header not found, value not deleted", "header", header)
		return nil
	}
	if len(c.rows) == 0 {
		c.log.Info("container empty, value not deleted", "header", header)
		return nil
	}
	c.rows[0][idx] = ""
	c.markDirty()
	return c.writeThrough()
}

// MergeRows fills only the empty fields of the record at index from
// newValues, leaving populated fields untouched, and writes through.
// Empty incoming values never overwrite.
func (c *Container) MergeRows(i int, newValues []string) error {
	if i < 0 || i >= len(c.rows) {
		return errors.IndexOutOfRange(i, len(c.rows))
	}
	rec := c.rows[i]
	limit := len(rec)
	if len(newValues) < limit {
		limit = len(newValues)
	}
	for n := 0; n < limit; n++ {
		if rec[n] == "" && newValues[n] != "" {
			rec[n] = newValues[n]
		}
	}
	c.markDirty()
	return c.writeThrough()
}

// SetColumn overwrites a column top-down, creating the header when
// needed and padding the store with empty records when values outnumber
// rows. It returns the header name actually used.
func (c *Container) SetColumn(name string, values []string) (string, error) {
	used := name
	if c.headers.IndexOf(name) < 0 {
		used = c.addColumnInternal(name, true)
	}
	idx := c.headers.IndexOf(used)
	for len(c.rows) < len(values) {
		c.rows = append(c.rows, c.newEmptyRecord())
	}
	for i, v := range values {
		c.rows[i][idx] = v
	}
	c.markDirty()
	return used, c.writeThrough()
}

// AppendContainer merges another container's records into this one. A
// matching header set concatenates, a permuted one reorders each record
// first, an incompatible one leaves the store untouched with a warning.
// The reconciliation outcome is returned.
func (c *Container) AppendContainer(other *Container) MatchState {
	names := other.headers.Names()
	state := c.headers.Compare(names)

	switch state {
	case StateMatch:
		width := c.headers.Count()
		for _, row := range other.rows {
			rec := make([]string, width)
			copy(rec, row)
			for p, v := range c.metaPositions() {
				if p >= len(row) {
					rec[p] = v
				}
			}
			c.rows = append(c.rows, rec)
		}
	case StatePermuted:
		remap := c.headers.Remap(names)
		for _, row := range other.rows {
			rec := ReorderRecord(row, remap)
			for p, v := range c.metaPositions() {
				if remap[p] == -1 {
					rec[p] = v
				}
			}
			c.rows = append(c.rows, rec)
		}
	case StateIncompatible:
		c.log.Warn("incompatible headers, append skipped",
			"incoming", strings.Join(names, ","))
		return state
	}

	c.markDirty()
	return state
}

// --- Value index ---

// EnableIndex attaches a bitmap value index. It is rebuilt lazily after
// mutations and serves equality-filter lookups and cardinality queries.
func (c *Container) EnableIndex() {
	c.idx = index.NewValueIndex()
	c.idxDirty = true
}

// DisableIndex drops the value index.
func (c *Container) DisableIndex() { c.idx = nil }

// Cardinality returns the number of distinct values in a column.
func (c *Container) Cardinality(header string) int {
	if c.idx != nil {
		c.refreshIndex()
		return c.idx.Cardinality(header)
	}
	return len(c.GetDistinctValues(header))
}

// indexEligible reports whether a filter can be answered from bitmaps:
// index enabled, at least one rule, all rules plain equality on
// registered headers.
func (c *Container) indexEligible(fltr *filter.Filter) bool {
	if c.idx == nil || fltr.Empty() {
		return false
	}
	for _, rule := range fltr.Rules() {
		if rule.Operator != filter.Equals || filter.IsWildcard(rule.Value) {
			return false
		}
		if c.headers.IndexOf(rule.Header) < 0 {
			return false
		}
	}
	return true
}

func (c *Container) refreshIndex() {
	if c.idx == nil || !c.idxDirty {
		return
	}
	c.idx = index.NewValueIndex()
	c.idx.IndexRows(c.headers.Names(), c.rows, 0)
	c.idxDirty = false
}

func (c *Container) markDirty() { c.idxDirty = true }
