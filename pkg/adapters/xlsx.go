package adapters

import (
	"github.com/xuri/excelize/v2"

	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/errors"
	"github.com/tabkit/tabkit/pkg/filter"
)

// XLSXSource reads the first sheet of an Excel workbook. The first row
// seeds the headers; data rows are padded to the header width because
// the format drops trailing empty cells.
type XLSXSource struct{}

// NewXLSXSource creates a new XLSX source.
func NewXLSXSource() *XLSXSource {
	return &XLSXSource{}
}

// Name returns the adapter name.
func (s *XLSXSource) Name() string {
	return "xlsx"
}

// Read materializes the workbook's first sheet into a container. The
// container is not attached for write-through; use an XLSXSink to save.
func (s *XLSXSource) Read(path string, fltr *filter.Filter, opts ...container.Option) (*container.Container, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeParseFailed, "open xlsx %s", path)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New(errors.CodeParseFailed, "xlsx file has no sheets")
		}
		sheetName = sheets[0]
	}

	rows, err := f.Rows(sheetName)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeParseFailed, "read sheet %s", sheetName)
	}
	defer rows.Close()

	c := container.New(opts...)

	if !rows.Next() {
		return c, nil
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeParseFailed, "read header of %s", sheetName)
	}
	c.SetHeaders(header)

	width := len(header)
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			continue
		}
		if len(cols) == 0 {
			continue
		}
		record := make([]string, width)
		copy(record, cols)
		if err := c.AddRow(record, fltr); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// XLSXSink writes a container to an Excel workbook, one sheet, using
// the streaming row writer.
type XLSXSink struct{}

// NewXLSXSink creates a new XLSX sink.
func NewXLSXSink() *XLSXSink {
	return &XLSXSink{}
}

// Name returns the adapter name.
func (s *XLSXSink) Name() string {
	return "xlsx"
}

// Write serializes the container to path.
func (s *XLSXSink) Write(c *container.Container, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter("Sheet1")
	if err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "create stream writer")
	}

	if err := sw.SetRow("A1", toCells(c.HeaderNames())); err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "write header row")
	}
	for i, record := range c.Records() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, errors.CodeExportFailed, "compute cell name")
		}
		if err := sw.SetRow(cell, toCells(record)); err != nil {
			return errors.Wrapf(err, errors.CodeExportFailed, "write row %d", i)
		}
	}
	if err := sw.Flush(); err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "flush stream writer")
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, errors.CodeExportFailed, "save %s", path)
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

var (
	_ Source = (*XLSXSource)(nil)
	_ Sink   = (*XLSXSink)(nil)
)
