package adapters

import (
	"os"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/errors"
)

const parquetBatchSize = 1024

// ParquetSink writes a container to Parquet using Apache Arrow. Every
// column is utf8; the container model carries no richer types.
type ParquetSink struct {
	// Compression selects the codec: snappy, gzip, zstd, lz4, or
	// uncompressed (the default).
	Compression string
}

// NewParquetSink creates a Parquet sink with snappy compression.
func NewParquetSink() *ParquetSink {
	return &ParquetSink{Compression: "snappy"}
}

// Name returns the adapter name.
func (s *ParquetSink) Name() string {
	return "parquet"
}

// Write serializes the container to path.
func (s *ParquetSink) Write(c *container.Container, path string) error {
	names := c.HeaderNames()
	if len(names) == 0 {
		return errors.New(errors.CodeExportFailed, "container has no headers")
	}

	fields := make([]arrow.Field, len(names))
	for i, n := range names {
		fields[i] = arrow.Field{Name: n, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, errors.CodeExportFailed, "create %s", path)
	}

	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(mapCompression(s.Compression)),
		parquet.WithDictionaryDefault(true),
		parquet.WithDataPageSize(1024*1024),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithStoreSchema(),
	)

	writer, err := pqarrow.NewFileWriter(schema, out, writerProps, arrowProps)
	if err != nil {
		out.Close()
		return errors.Wrap(err, errors.CodeExportFailed, "create parquet writer")
	}

	allocator := memory.NewGoAllocator()
	builders := make([]*array.StringBuilder, len(names))
	for i := range builders {
		builders[i] = array.NewStringBuilder(allocator)
		builders[i].Reserve(parquetBatchSize)
	}

	flush := func(rowCount int) error {
		if rowCount == 0 {
			return nil
		}
		arrays := make([]arrow.Array, len(builders))
		for i, b := range builders {
			arrays[i] = b.NewArray()
		}
		batch := array.NewRecord(schema, arrays, int64(rowCount))
		writeErr := writer.Write(batch)
		batch.Release()
		for _, a := range arrays {
			a.Release()
		}
		if writeErr != nil {
			return errors.Wrap(writeErr, errors.CodeExportFailed, "write batch")
		}
		return nil
	}

	pending := 0
	for _, record := range c.Records() {
		for i := range builders {
			if i < len(record) {
				builders[i].Append(record[i])
			} else {
				builders[i].AppendNull()
			}
		}
		pending++
		if pending >= parquetBatchSize {
			if err := flush(pending); err != nil {
				writer.Close()
				out.Close()
				return err
			}
			pending = 0
		}
	}
	if err := flush(pending); err != nil {
		writer.Close()
		out.Close()
		return err
	}

	for _, b := range builders {
		b.Release()
	}
	if err := writer.Close(); err != nil {
		out.Close()
		return errors.Wrap(err, errors.CodeExportFailed, "close parquet writer")
	}
	return out.Close()
}

// mapCompression maps a compression name to the Arrow codec.
func mapCompression(name string) compress.Compression {
	switch name {
	case "snappy":
		return compress.Codecs.Snappy
	case "gzip":
		return compress.Codecs.Gzip
	case "zstd":
		return compress.Codecs.Zstd
	case "lz4":
		return compress.Codecs.Lz4
	default:
		return compress.Codecs.Uncompressed
	}
}

var _ Sink = (*ParquetSink)(nil)
