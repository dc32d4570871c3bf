// Package diag provides the leveled diagnostic sink used across TabKit.
//
// Container operations report recoverable conditions (row out of range,
// header mismatch, unsupported orientation) through a *slog.Logger and
// never consult it for control flow. Levels map onto the usual triple:
// Info for skipped input, Warn for degraded operations, Error for
// conditions surfaced to the caller as well.
package diag

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// New returns a plain text logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops every record. Containers use it as
// the default sink so library callers opt in to diagnostics explicitly.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

// Terminal styles for the CLI handler.
var (
	debugBadge = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("DEBUG")
	infoBadge  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Render("INFO ")
	warnBadge  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true).Render("WARN ")
	errorBadge = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).Render("ERROR")
	attrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// StyledHandler renders records as single colored lines for terminal use.
type StyledHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

// NewStyled returns a logger with colored terminal output, used by the CLI.
func NewStyled(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(&StyledHandler{mu: &sync.Mutex{}, w: w, level: level})
}

// Enabled reports whether the handler handles records at the given level.
func (h *StyledHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle renders one record as "BADGE message key=value ...".
func (h *StyledHandler) Handle(_ context.Context, record slog.Record) error {
	var sb strings.Builder
	sb.WriteString(badge(record.Level))
	sb.WriteByte(' ')
	sb.WriteString(record.Message)

	prefix := strings.Join(h.groups, ".")
	for _, attr := range h.attrs {
		writeAttr(&sb, prefix, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		writeAttr(&sb, prefix, attr)
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

// WithAttrs returns a new handler with additional attributes.
func (h *StyledHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &StyledHandler{
		mu:     h.mu,
		w:      h.w,
		level:  h.level,
		attrs:  append(append([]slog.Attr{}, h.attrs...), attrs...),
		groups: h.groups,
	}
}

// WithGroup returns a new handler with a group name.
func (h *StyledHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &StyledHandler{
		mu:     h.mu,
		w:      h.w,
		level:  h.level,
		attrs:  h.attrs,
		groups: append(append([]string{}, h.groups...), name),
	}
}

func badge(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return errorBadge
	case level >= slog.LevelWarn:
		return warnBadge
	case level >= slog.LevelInfo:
		return infoBadge
	default:
		return debugBadge
	}
}

func writeAttr(sb *strings.Builder, prefix string, attr slog.Attr) {
	key := attr.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	sb.WriteByte(' ')
	sb.WriteString(attrStyle.Render(fmt.Sprintf("%s=%v", key, attr.Value.Any())))
}

// Compile-time interface check
var _ slog.Handler = (*StyledHandler)(nil)
