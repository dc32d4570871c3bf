// Package errors provides structured error handling for TabKit.
// It implements coded errors with context maps and stack traces.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Error codes for programmatic handling
type Code string

const (
	// Lookup errors (1xx)
	CodeNoSuchHeader  Code = "E101"
	CodeIndexRange    Code = "E102"
	CodeUnknownFormat Code = "E103"
	CodeFileNotFound  Code = "E104"

	// Structure errors (2xx)
	CodeShapeMismatch       Code = "E201"
	CodeIncompatibleHeaders Code = "E202"
	CodeBadOrientation      Code = "E203"
	CodeParseFailed         Code = "E204"
	CodeBadPath             Code = "E205"

	// Output errors (3xx)
	CodeWriteFailed  Code = "E301"
	CodeExportFailed Code = "E302"

	// Configuration errors (4xx)
	CodeConfig        Code = "E401"
	CodeUnknownOption Code = "E402"

	// Storage errors (5xx)
	CodeSQL      Code = "E501"
	CodeSnapshot Code = "E502"

	// Unknown
	CodeUnknown Code = "E999"
)

// TabKitError is the base error type for all TabKit errors.
type TabKitError struct {
	Code       Code
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace []Frame
}

// Frame represents a stack frame.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface.
func (e *TabKitError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if len(e.Context) > 0 {
		sb.WriteString(" (")
		first := true
		for k, v := range e.Context {
			if !first {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s=%v", k, v))
			first = false
		}
		sb.WriteString(")")
	}

	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *TabKitError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target error.
func (e *TabKitError) Is(target error) bool {
	if t, ok := target.(*TabKitError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error.
func (e *TabKitError) WithContext(key string, value interface{}) *TabKitError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new TabKitError.
func New(code Code, message string) *TabKitError {
	return &TabKitError{
		Code:       code,
		Message:    message,
		StackTrace: captureStack(2),
	}
}

// Newf creates a new TabKitError with a formatted message.
func Newf(code Code, format string, args ...interface{}) *TabKitError {
	return &TabKitError{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		StackTrace: captureStack(2),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, code Code, message string) *TabKitError {
	if err == nil {
		return nil
	}

	return &TabKitError{
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: captureStack(2),
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *TabKitError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// captureStack captures the current stack trace.
func captureStack(skip int) []Frame {
	var frames []Frame
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)
	pcs = pcs[:n]

	cf := runtime.CallersFrames(pcs)
	for {
		frame, more := cf.Next()
		frames = append(frames, Frame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
		if !more || len(frames) >= 10 {
			break
		}
	}
	return frames
}

// FormatStack returns a formatted stack trace.
func (e *TabKitError) FormatStack() string {
	var sb strings.Builder
	for _, f := range e.StackTrace {
		sb.WriteString(fmt.Sprintf("  at %s\n    %s:%d\n", f.Function, f.File, f.Line))
	}
	return sb.String()
}

// --- Convenience constructors ---

// NoSuchHeader creates an unknown header error.
func NoSuchHeader(name string, available []string) *TabKitError {
	return New(CodeNoSuchHeader, "header not found").
		WithContext("header", name).
		WithContext("available", available)
}

// IndexOutOfRange creates an index range error.
func IndexOutOfRange(index, size int) *TabKitError {
	return New(CodeIndexRange, "index out of range").
		WithContext("index", index).
		WithContext("size", size)
}

// ShapeMismatch creates a record shape error.
func ShapeMismatch(want, got int) *TabKitError {
	return New(CodeShapeMismatch, "record length does not match header count").
		WithContext("want", want).
		WithContext("got", got)
}

// FileNotFound creates a file not found error.
func FileNotFound(path string) *TabKitError {
	return New(CodeFileNotFound, "file not found").WithContext("path", path)
}

// UnknownFormat creates an unrecognized format error.
func UnknownFormat(path string) *TabKitError {
	return New(CodeUnknownFormat, "unable to detect container format").
		WithContext("path", path)
}

// ParseError creates a parsing error with location.
func ParseError(format string, line int, err error) *TabKitError {
	return Wrap(err, CodeParseFailed, "parse error").
		WithContext("format", format).
		WithContext("line", line)
}

// --- Error checking utilities ---

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	var tkErr *TabKitError
	if errors.As(err, &tkErr) {
		return tkErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) Code {
	var tkErr *TabKitError
	if errors.As(err, &tkErr) {
		return tkErr.Code
	}
	return CodeUnknown
}

// MultiError collects multiple errors.
type MultiError struct {
	Errors []error
}

// Error implements the error interface.
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(m.Errors)))
	for i, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// HasErrors returns true if any errors were collected.
func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

// Combined returns nil if no errors, the single error if one, or the MultiError.
func (m *MultiError) Combined() error {
	switch len(m.Errors) {
	case 0:
		return nil
	case 1:
		return m.Errors[0]
	default:
		return m
	}
}
