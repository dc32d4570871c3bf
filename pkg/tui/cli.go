// Package tui renders CLI output: styled status lines, tables, and
// progress bars. Plain fmt output stays in the commands; everything
// needing color or layout goes through here.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
)

// Colors
var (
	accent  = lipgloss.Color("#FF6600")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
)

// Title renders bold text.
func Title(s string) string { return titleStyle.Render(s) }

// Muted renders dimmed text.
func Muted(s string) string { return mutedStyle.Render(s) }

// Accent renders highlighted text.
func Accent(s string) string { return accentStyle.Render(s) }

// Success renders a confirmation line with a check mark.
func Success(s string) string { return successStyle.Render("✓ " + s) }

// Failure renders an error line with a cross.
func Failure(s string) string { return accentStyle.Render("✗ " + s) }

// Field renders one "Key: value" line with a dimmed key.
func Field(key, value string) string {
	return fmt.Sprintf("  %s %s", mutedStyle.Render(key+":"), titleStyle.Render(value))
}

// Table renders headers and rows as aligned columns. Headers come out
// bold with a dimmed rule below; a nil header slice omits both.
func Table(headers []string, rows [][]string) string {
	cols := len(headers)
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return ""
	}

	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string, style lipgloss.Style) {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(style.Render(pad(cell, widths[i])))
		}
		sb.WriteByte('\n')
	}

	if len(headers) > 0 {
		writeRow(headers, titleStyle)
		rule := make([]string, cols)
		for i := range rule {
			rule[i] = strings.Repeat("─", widths[i])
		}
		writeRow(rule, mutedStyle)
	}
	for _, row := range rows {
		writeRow(row, lipgloss.NewStyle())
	}
	return sb.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Report summarizes a finished conversion.
type Report struct {
	Rows       int
	Columns    int
	InputSize  int64
	OutputSize int64
	Duration   time.Duration
}

// PrintReport prints the conversion summary.
func PrintReport(r *Report) {
	fmt.Println()
	fmt.Println("  " + Success("CONVERSION COMPLETE"))
	fmt.Println()
	fmt.Println(Field("Rows", FormatNumber(int64(r.Rows))))
	fmt.Println(Field("Columns", FormatNumber(int64(r.Columns))))

	if r.InputSize > 0 && r.OutputSize > 0 {
		ratio := float64(r.InputSize) / float64(r.OutputSize)
		fmt.Printf("  %s %s → %s %s\n",
			mutedStyle.Render("Size:"),
			FormatBytes(r.InputSize),
			FormatBytes(r.OutputSize),
			successStyle.Render(fmt.Sprintf("(%.1fx)", ratio)))
	}
	if r.Duration > 0 {
		rate := float64(r.Rows) / r.Duration.Seconds()
		fmt.Printf("  %s %s %s\n",
			mutedStyle.Render("Time:"),
			titleStyle.Render(FormatDuration(r.Duration)),
			mutedStyle.Render(fmt.Sprintf("(%s rows/sec)", FormatNumber(int64(rate)))))
	}
	fmt.Println()
}

// ShowProgress creates a themed progress bar.
func ShowProgress(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// FormatNumber renders a count with K/M suffixes.
func FormatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// FormatDuration renders a duration at human scale.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
