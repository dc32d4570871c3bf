package util

import (
	"compress/gzip"
	"os"
	"path/filepath"

	"github.com/tabkit/tabkit/internal/pool"
)

// Serialization buffers are pooled because write-through containers
// rewrite their whole file after every mutation.
var writeBuffers = pool.NewBufferPool(pool.DefaultBufferSize)

// WriteLines writes lines to a text file, creating parent directories as
// needed. Paths ending in .gz are gzip-compressed. The write goes to a
// temp file first and is renamed into place, so readers never observe a
// partial file.
func WriteLines(path string, lines []string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	buf := writeBuffers.Get()
	defer writeBuffers.Put(buf)
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	data := buf.Bytes()

	tempPath := path + ".tmp"
	if IsGzipFile(path) {
		f, err := os.Create(tempPath)
		if err != nil {
			return err
		}
		gz := gzip.NewWriter(f)
		if _, err := gz.Write(data); err != nil {
			gz.Close()
			f.Close()
			os.Remove(tempPath)
			return err
		}
		if err := gz.Close(); err != nil {
			f.Close()
			os.Remove(tempPath)
			return err
		}
		if err := f.Close(); err != nil {
			os.Remove(tempPath)
			return err
		}
	} else {
		if err := os.WriteFile(tempPath, data, 0644); err != nil {
			return err
		}
	}

	return os.Rename(tempPath, path)
}

// WriteBytes writes raw bytes with the same directory creation and
// temp-then-rename behavior as WriteLines, without compression.
func WriteBytes(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}
