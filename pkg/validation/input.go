// Package validation checks CLI inputs before any file is touched.
package validation

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/tabkit/tabkit/pkg/errors"
)

// MaxFileSize is the maximum allowed input file size (10GB).
const MaxFileSize = 10 * 1024 * 1024 * 1024

// MaxPathLength is the maximum allowed path length.
const MaxPathLength = 4096

// MaxHeaderNameLength is the maximum header name length.
const MaxHeaderNameLength = 256

// ValidateFilePath cleans and absolutizes a file path.
func ValidateFilePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.CodeBadPath, "empty file path")
	}
	if len(path) > MaxPathLength {
		return "", errors.New(errors.CodeBadPath, "path too long").
			WithContext("maxLength", MaxPathLength)
	}

	cleaned := filepath.Clean(path)
	if strings.Contains(cleaned, "..") {
		return "", errors.New(errors.CodeBadPath, "path traversal not allowed")
	}

	abs, err := filepath.Abs(cleaned)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeBadPath, "invalid path")
	}
	return abs, nil
}

// ValidateInputFile validates that an input file exists, is a regular
// file, and is readable.
func ValidateInputFile(path string) error {
	cleanPath, err := ValidateFilePath(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(cleanPath)
	if os.IsNotExist(err) {
		return errors.FileNotFound(path)
	}
	if err != nil {
		return errors.Wrap(err, errors.CodeFileNotFound, "cannot access file")
	}
	if info.IsDir() {
		return errors.New(errors.CodeBadPath, "path is a directory, expected file").
			WithContext("path", path)
	}
	if info.Size() > MaxFileSize {
		return errors.New(errors.CodeBadPath, "file exceeds maximum size").
			WithContext("size", info.Size()).
			WithContext("maxSize", MaxFileSize)
	}

	f, err := os.Open(cleanPath)
	if err != nil {
		return errors.Wrap(err, errors.CodeFileNotFound, "cannot open file")
	}
	f.Close()
	return nil
}

// ValidateOutputPath validates that the parent directory of an output
// path exists and is a directory. The file itself may or may not exist.
func ValidateOutputPath(path string) error {
	cleanPath, err := ValidateFilePath(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(cleanPath)
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return errors.New(errors.CodeBadPath, "output directory does not exist").
			WithContext("directory", dir)
	}
	if err != nil {
		return errors.Wrap(err, errors.CodeBadPath, "cannot access output directory")
	}
	if !info.IsDir() {
		return errors.New(errors.CodeBadPath, "parent path is not a directory")
	}
	return nil
}

// ValidateHeaderName validates a header name for mutation commands.
func ValidateHeaderName(name string) error {
	if name == "" {
		return errors.New(errors.CodeNoSuchHeader, "empty header name")
	}
	if len(name) > MaxHeaderNameLength {
		return errors.New(errors.CodeNoSuchHeader, "header name too long").
			WithContext("maxLength", MaxHeaderNameLength)
	}
	if !utf8.ValidString(name) {
		return errors.New(errors.CodeNoSuchHeader, "header name contains invalid UTF-8")
	}
	return nil
}

// ValidateCompression validates a Parquet compression codec name.
func ValidateCompression(compression string) error {
	valid := map[string]bool{
		"none":   true,
		"snappy": true,
		"gzip":   true,
		"zstd":   true,
		"lz4":    true,
	}
	if !valid[strings.ToLower(compression)] {
		return errors.New(errors.CodeUnknownFormat, "unsupported compression").
			WithContext("compression", compression).
			WithContext("supported", "none, snappy, gzip, zstd, lz4")
	}
	return nil
}

// ValidateDelimiter rejects delimiters that cannot survive the text
// round trip.
func ValidateDelimiter(delimiter string) error {
	if delimiter == "" {
		return errors.New(errors.CodeConfig, "empty delimiter")
	}
	if strings.ContainsAny(delimiter, "\n\r") {
		return errors.New(errors.CodeConfig, "delimiter must not contain line breaks")
	}
	if delimiter == `"` {
		return errors.New(errors.CodeConfig, "quote character cannot be the delimiter")
	}
	return nil
}
