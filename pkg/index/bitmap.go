// Package index provides bitmap indexes for fast value lookups on tabular data.
package index

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// ValueIndex provides bitmap indexes for container columns.
// For each column, it maps distinct values to roaring bitmaps of row positions.
// This enables O(1) value lookups and efficient set operations (AND/OR)
// for multi-column equality filtering.
type ValueIndex struct {
	mu sync.RWMutex

	// columns maps column_name -> value -> bitmap of row positions
	columns map[string]map[string]*roaring.Bitmap

	// rowCount tracks total rows indexed
	rowCount uint32
}

// NewValueIndex creates an empty value index.
func NewValueIndex() *ValueIndex {
	return &ValueIndex{
		columns: make(map[string]map[string]*roaring.Bitmap),
	}
}

// IndexRows adds records to the index. headers names the columns
// positionally; rowOffset is the global row offset for incremental
// indexing. Empty fields are indexed like any other value so equality
// lookups against the empty string stay exact.
func (idx *ValueIndex) IndexRows(headers []string, rows [][]string, rowOffset uint32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for colIdx, name := range headers {
		if idx.columns[name] == nil {
			idx.columns[name] = make(map[string]*roaring.Bitmap)
		}
		valMap := idx.columns[name]

		for rowIdx, row := range rows {
			if colIdx >= len(row) {
				continue
			}
			value := row[colIdx]
			bm, ok := valMap[value]
			if !ok {
				bm = roaring.New()
				valMap[value] = bm
			}
			bm.Add(rowOffset + uint32(rowIdx))
		}
	}

	idx.rowCount = rowOffset + uint32(len(rows))
}

// Lookup returns the bitmap of row positions where column == value.
func (idx *ValueIndex) Lookup(column, value string) *roaring.Bitmap {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if valMap, ok := idx.columns[column]; ok {
		if bm, ok := valMap[value]; ok {
			return bm.Clone()
		}
	}
	return roaring.New()
}

// LookupAnd returns row positions matching ALL conditions (column=value pairs).
func (idx *ValueIndex) LookupAnd(conditions map[string]string) *roaring.Bitmap {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var result *roaring.Bitmap
	for col, val := range conditions {
		bm := idx.lookupUnsafe(col, val)
		if result == nil {
			result = bm.Clone()
		} else {
			result.And(bm)
		}
	}
	if result == nil {
		return roaring.New()
	}
	return result
}

// LookupOr returns row positions matching ANY condition.
func (idx *ValueIndex) LookupOr(conditions map[string]string) *roaring.Bitmap {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	result := roaring.New()
	for col, val := range conditions {
		bm := idx.lookupUnsafe(col, val)
		result.Or(bm)
	}
	return result
}

// Columns returns the list of indexed column names.
func (idx *ValueIndex) Columns() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	cols := make([]string, 0, len(idx.columns))
	for col := range idx.columns {
		cols = append(cols, col)
	}
	return cols
}

// Cardinality returns the number of distinct values for a column.
func (idx *ValueIndex) Cardinality(column string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if valMap, ok := idx.columns[column]; ok {
		return len(valMap)
	}
	return 0
}

// DistinctValues returns all distinct values for a column.
func (idx *ValueIndex) DistinctValues(column string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	valMap, ok := idx.columns[column]
	if !ok {
		return nil
	}

	values := make([]string, 0, len(valMap))
	for v := range valMap {
		values = append(values, v)
	}
	return values
}

// RowCount returns the total number of indexed rows.
func (idx *ValueIndex) RowCount() uint32 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.rowCount
}

// WriteTo serializes the entire index to a writer.
// Format: [rowCount:u32][numCols:u32]([nameLen:u32][name][numVals:u32]([valLen:u32][val][bitmap])...)...
func (idx *ValueIndex) WriteTo(w io.Writer) (int64, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var total int64

	if err := binary.Write(w, binary.LittleEndian, idx.rowCount); err != nil {
		return total, err
	}
	total += 4

	numCols := uint32(len(idx.columns))
	if err := binary.Write(w, binary.LittleEndian, numCols); err != nil {
		return total, err
	}
	total += 4

	for colName, valMap := range idx.columns {
		n, err := writeString(w, colName)
		if err != nil {
			return total, err
		}
		total += int64(n)

		numVals := uint32(len(valMap))
		if err := binary.Write(w, binary.LittleEndian, numVals); err != nil {
			return total, err
		}
		total += 4

		for val, bm := range valMap {
			n, err := writeString(w, val)
			if err != nil {
				return total, err
			}
			total += int64(n)

			// Serialize the bitmap using its native WriteTo
			nn, err := bm.WriteTo(w)
			if err != nil {
				return total, fmt.Errorf("serialize bitmap for %s=%s: %w", colName, val, err)
			}
			total += nn
		}
	}

	return total, nil
}

// ReadFrom deserializes an index from a reader.
func (idx *ValueIndex) ReadFrom(r io.Reader) (int64, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var total int64

	if err := binary.Read(r, binary.LittleEndian, &idx.rowCount); err != nil {
		return total, err
	}
	total += 4

	var numCols uint32
	if err := binary.Read(r, binary.LittleEndian, &numCols); err != nil {
		return total, err
	}
	total += 4

	idx.columns = make(map[string]map[string]*roaring.Bitmap, numCols)

	for i := uint32(0); i < numCols; i++ {
		colName, n, err := readString(r)
		if err != nil {
			return total, err
		}
		total += int64(n)

		var numVals uint32
		if err := binary.Read(r, binary.LittleEndian, &numVals); err != nil {
			return total, err
		}
		total += 4

		valMap := make(map[string]*roaring.Bitmap, numVals)

		for j := uint32(0); j < numVals; j++ {
			val, n, err := readString(r)
			if err != nil {
				return total, err
			}
			total += int64(n)

			bm := roaring.New()
			nn, err := bm.ReadFrom(r)
			if err != nil {
				return total, fmt.Errorf("deserialize bitmap for %s=%s: %w", colName, val, err)
			}
			total += nn

			valMap[val] = bm
		}

		idx.columns[colName] = valMap
	}

	return total, nil
}

// SaveFile writes the index to a file.
func (idx *ValueIndex) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = idx.WriteTo(f)
	return err
}

// LoadFile reads an index from a file.
func LoadFile(path string) (*ValueIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	idx := NewValueIndex()
	if _, err := idx.ReadFrom(f); err != nil {
		return nil, err
	}
	return idx, nil
}

// lookupUnsafe performs a lookup without locking (caller must hold lock).
func (idx *ValueIndex) lookupUnsafe(column, value string) *roaring.Bitmap {
	if valMap, ok := idx.columns[column]; ok {
		if bm, ok := valMap[value]; ok {
			return bm
		}
	}
	return roaring.New()
}

func writeString(w io.Writer, s string) (int, error) {
	total := 0
	sLen := uint32(len(s))
	if err := binary.Write(w, binary.LittleEndian, sLen); err != nil {
		return total, err
	}
	total += 4
	n, err := w.Write([]byte(s))
	total += n
	return total, err
}

func readString(r io.Reader) (string, int, error) {
	total := 0
	var sLen uint32
	if err := binary.Read(r, binary.LittleEndian, &sLen); err != nil {
		return "", total, err
	}
	total += 4
	buf := make([]byte, sLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", total, err
	}
	total += int(sLen)
	return string(buf), total, nil
}
