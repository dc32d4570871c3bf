package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTabKitError_Error(t *testing.T) {
	err := New(CodeNoSuchHeader, "header not found")
	if got := err.Error(); got != "[E101] header not found" {
		t.Errorf("Error() = %q, want %q", got, "[E101] header not found")
	}

	err = err.WithContext("header", "missing")
	if got := err.Error(); got != "[E101] header not found (header=missing)" {
		t.Errorf("Error() with context = %q", got)
	}
}

func TestTabKitError_ErrorWithCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, CodeWriteFailed, "export failed")

	got := err.Error()
	if !strings.HasPrefix(got, "[E301] export failed") {
		t.Errorf("Error() = %q, want [E301] prefix", got)
	}
	if !strings.Contains(got, "disk full") {
		t.Errorf("Error() = %q, want cause message included", got)
	}
}

func TestWrap_NilCause(t *testing.T) {
	if err := Wrap(nil, CodeParseFailed, "ignored"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestUnwrap_Chain(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(cause, CodeSnapshot, "save failed")

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestErrorIs_MatchesByCode(t *testing.T) {
	a := Newf(CodeIndexRange, "row %d out of range", 7)
	b := New(CodeIndexRange, "different message")
	c := New(CodeNoSuchHeader, "other code")

	if !errors.Is(a, b) {
		t.Error("errors with equal codes should match")
	}
	if errors.Is(a, c) {
		t.Error("errors with distinct codes should not match")
	}
}

func TestIsCode(t *testing.T) {
	err := New(CodeShapeMismatch, "record length does not match header count")

	if !IsCode(err, CodeShapeMismatch) {
		t.Error("IsCode should match the error's own code")
	}
	if IsCode(err, CodeParseFailed) {
		t.Error("IsCode should reject a different code")
	}

	// Must see through stdlib wrapping too.
	wrapped := fmt.Errorf("ingest: %w", err)
	if !IsCode(wrapped, CodeShapeMismatch) {
		t.Error("IsCode should unwrap fmt.Errorf chains")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded", New(CodeConfig, "bad config"), CodeConfig},
		{"wrapped coded", fmt.Errorf("outer: %w", New(CodeSQL, "query failed")), CodeSQL},
		{"plain", errors.New("plain"), CodeUnknown},
		{"nil", nil, CodeUnknown},
	}

	for _, tt := range tests {
		if got := GetCode(tt.err); got != tt.want {
			t.Errorf("%s: GetCode() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestWithContext_Chaining(t *testing.T) {
	err := New(CodeBadPath, "path rejected").
		WithContext("path", "../etc/passwd").
		WithContext("reason", "traversal")

	if len(err.Context) != 2 {
		t.Fatalf("Context has %d entries, want 2", len(err.Context))
	}
	if err.Context["reason"] != "traversal" {
		t.Errorf("Context[reason] = %v", err.Context["reason"])
	}
}

func TestNew_CapturesStack(t *testing.T) {
	err := New(CodeUnknown, "with stack")
	if len(err.StackTrace) == 0 {
		t.Fatal("expected a captured stack trace")
	}
	if !strings.Contains(err.FormatStack(), "errors_test.go") {
		t.Errorf("FormatStack() should name the call site:\n%s", err.FormatStack())
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *TabKitError
		want Code
	}{
		{"NoSuchHeader", NoSuchHeader("city", []string{"name", "age"}), CodeNoSuchHeader},
		{"IndexOutOfRange", IndexOutOfRange(5, 3), CodeIndexRange},
		{"ShapeMismatch", ShapeMismatch(4, 6), CodeShapeMismatch},
		{"FileNotFound", FileNotFound("missing.csv"), CodeFileNotFound},
		{"UnknownFormat", UnknownFormat("data.bin"), CodeUnknownFormat},
	}

	for _, tt := range tests {
		if tt.err.Code != tt.want {
			t.Errorf("%s: code = %q, want %q", tt.name, tt.err.Code, tt.want)
		}
		if len(tt.err.Context) == 0 {
			t.Errorf("%s: expected context entries", tt.name)
		}
	}
}

func TestParseError(t *testing.T) {
	err := ParseError("json", 14, errors.New("unexpected token"))
	if err.Code != CodeParseFailed {
		t.Errorf("code = %q, want %q", err.Code, CodeParseFailed)
	}
	if err.Context["line"] != 14 {
		t.Errorf("Context[line] = %v, want 14", err.Context["line"])
	}
	if !strings.Contains(err.Error(), "unexpected token") {
		t.Errorf("Error() = %q, want cause included", err.Error())
	}
}

func TestMultiError_Combined(t *testing.T) {
	var m MultiError
	if m.Combined() != nil {
		t.Error("empty MultiError should combine to nil")
	}
	if m.HasErrors() {
		t.Error("empty MultiError should report no errors")
	}

	first := New(CodeNoSuchHeader, "first")
	m.Add(first)
	m.Add(nil) // ignored
	if got := m.Combined(); got != first {
		t.Errorf("single-error Combined() = %v, want the error itself", got)
	}

	m.Add(New(CodeIndexRange, "second"))
	combined := m.Combined()
	if combined == nil {
		t.Fatal("Combined() = nil with two errors")
	}
	if !strings.Contains(combined.Error(), "2 errors occurred") {
		t.Errorf("Combined().Error() = %q", combined.Error())
	}
}
