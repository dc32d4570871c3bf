// Package perf profiles conversion runs: phase timings, I/O counters,
// and a bottleneck summary printable from the CLI.
package perf

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Profiler collects metrics for one run. All methods are safe for
// concurrent use.
type Profiler struct {
	bytesRead    atomic.Int64
	bytesWritten atomic.Int64
	rows         atomic.Int64

	readOps   atomic.Int64
	writeOps  atomic.Int64
	readWait  atomic.Int64 // nanoseconds
	writeWait atomic.Int64 // nanoseconds

	startTime time.Time
	phases    []PhaseRecord
	phaseMu   sync.Mutex
}

// PhaseRecord records one timed phase of a run.
type PhaseRecord struct {
	Name     string
	Start    time.Time
	Duration time.Duration
}

// New creates a profiler with the clock started.
func New() *Profiler {
	return &Profiler{startTime: time.Now()}
}

// StartPhase begins timing a named phase and returns the closer that
// records it.
func (p *Profiler) StartPhase(name string) func() {
	start := time.Now()
	return func() {
		p.phaseMu.Lock()
		p.phases = append(p.phases, PhaseRecord{
			Name:     name,
			Start:    start,
			Duration: time.Since(start),
		})
		p.phaseMu.Unlock()
	}
}

// RecordRead records one read of n bytes that took d.
func (p *Profiler) RecordRead(n int64, d time.Duration) {
	p.bytesRead.Add(n)
	p.readOps.Add(1)
	p.readWait.Add(int64(d))
}

// RecordWrite records one write of n bytes that took d.
func (p *Profiler) RecordWrite(n int64, d time.Duration) {
	p.bytesWritten.Add(n)
	p.writeOps.Add(1)
	p.writeWait.Add(int64(d))
}

// RecordRows adds to the processed row count.
func (p *Profiler) RecordRows(count int64) {
	p.rows.Add(count)
}

// Report snapshots the collected metrics.
func (p *Profiler) Report() *Report {
	total := time.Since(p.startTime)

	r := &Report{
		TotalDuration: total,
		BytesRead:     p.bytesRead.Load(),
		BytesWritten:  p.bytesWritten.Load(),
		Rows:          p.rows.Load(),
		ReadOps:       p.readOps.Load(),
		WriteOps:      p.writeOps.Load(),
		ReadWait:      time.Duration(p.readWait.Load()),
		WriteWait:     time.Duration(p.writeWait.Load()),
	}

	p.phaseMu.Lock()
	r.Phases = append([]PhaseRecord(nil), p.phases...)
	p.phaseMu.Unlock()

	if total > 0 {
		r.RowsPerSecond = float64(r.Rows) / total.Seconds()
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.HeapAlloc = int64(m.HeapAlloc)
	r.NumGC = int64(m.NumGC)

	r.Bottleneck = r.identifyBottleneck()
	return r
}

// Report holds the metrics of one profiled run.
type Report struct {
	TotalDuration time.Duration `json:"total_duration"`

	Rows          int64   `json:"rows"`
	RowsPerSecond float64 `json:"rows_per_second"`
	BytesRead     int64   `json:"bytes_read"`
	BytesWritten  int64   `json:"bytes_written"`

	ReadOps   int64         `json:"read_ops"`
	WriteOps  int64         `json:"write_ops"`
	ReadWait  time.Duration `json:"read_wait"`
	WriteWait time.Duration `json:"write_wait"`

	HeapAlloc int64 `json:"heap_alloc"`
	NumGC     int64 `json:"num_gc"`

	Phases     []PhaseRecord `json:"phases"`
	Bottleneck Bottleneck    `json:"bottleneck"`
}

// Bottleneck names where a run spent most of its time.
type Bottleneck struct {
	Type        string  `json:"type"`
	Percentage  float64 `json:"percentage"`
	Description string  `json:"description"`
}

func (r *Report) identifyBottleneck() Bottleneck {
	if r.TotalDuration <= 0 {
		return Bottleneck{Type: "balanced", Description: "No dominant phase."}
	}

	readPct := float64(r.ReadWait) / float64(r.TotalDuration) * 100
	writePct := float64(r.WriteWait) / float64(r.TotalDuration) * 100
	if readPct+writePct > 50 {
		if readPct > writePct {
			return Bottleneck{
				Type:        "io_read",
				Percentage:  readPct,
				Description: "Reading dominates. Faster storage or uncompressed input would help most.",
			}
		}
		return Bottleneck{
			Type:        "io_write",
			Percentage:  writePct,
			Description: "Writing dominates. A lighter compression codec would help most.",
		}
	}

	var longest PhaseRecord
	for _, ph := range r.Phases {
		if ph.Duration > longest.Duration {
			longest = ph
		}
	}
	if longest.Name != "" {
		pct := float64(longest.Duration) / float64(r.TotalDuration) * 100
		if pct > 50 {
			return Bottleneck{
				Type:        longest.Name,
				Percentage:  pct,
				Description: fmt.Sprintf("The %s phase dominates the run.", longest.Name),
			}
		}
	}
	return Bottleneck{Type: "balanced", Description: "No dominant phase."}
}

// String formats the report for terminal output.
func (r *Report) String() string {
	var s string

	s += "PERFORMANCE PROFILE\n"
	s += fmt.Sprintf("  Total Time:   %v\n", r.TotalDuration.Round(time.Millisecond))
	s += fmt.Sprintf("  Rows:         %d (%.0f/sec)\n", r.Rows, r.RowsPerSecond)
	s += fmt.Sprintf("  Read:         %s in %d ops, %v waiting\n",
		formatBytes(r.BytesRead), r.ReadOps, r.ReadWait.Round(time.Millisecond))
	s += fmt.Sprintf("  Write:        %s in %d ops, %v waiting\n",
		formatBytes(r.BytesWritten), r.WriteOps, r.WriteWait.Round(time.Millisecond))
	s += fmt.Sprintf("  Heap:         %s, %d GC runs\n", formatBytes(r.HeapAlloc), r.NumGC)

	if len(r.Phases) > 0 {
		s += "PHASES\n"
		phases := append([]PhaseRecord(nil), r.Phases...)
		sort.Slice(phases, func(i, j int) bool { return phases[i].Duration > phases[j].Duration })
		for _, ph := range phases {
			pct := float64(ph.Duration) / float64(r.TotalDuration) * 100
			s += fmt.Sprintf("  %-12s %v (%.1f%%)\n", ph.Name+":", ph.Duration.Round(time.Millisecond), pct)
		}
	}

	s += fmt.Sprintf("BOTTLENECK: %s\n  %s\n", r.Bottleneck.Type, r.Bottleneck.Description)
	return s
}

func formatBytes(b int64) string {
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

// ProfiledReader counts bytes and wait time flowing through a reader.
type ProfiledReader struct {
	r io.Reader
	p *Profiler
}

// NewProfiledReader wraps r so reads are recorded on p.
func NewProfiledReader(r io.Reader, p *Profiler) *ProfiledReader {
	return &ProfiledReader{r: r, p: p}
}

func (r *ProfiledReader) Read(p []byte) (int, error) {
	start := time.Now()
	n, err := r.r.Read(p)
	r.p.RecordRead(int64(n), time.Since(start))
	return n, err
}

// ProfiledWriter counts bytes and wait time flowing through a writer.
type ProfiledWriter struct {
	w io.Writer
	p *Profiler
}

// NewProfiledWriter wraps w so writes are recorded on p.
func NewProfiledWriter(w io.Writer, p *Profiler) *ProfiledWriter {
	return &ProfiledWriter{w: w, p: p}
}

func (w *ProfiledWriter) Write(p []byte) (int, error) {
	start := time.Now()
	n, err := w.w.Write(p)
	w.p.RecordWrite(int64(n), time.Since(start))
	return n, err
}

type profilerKey struct{}

// WithProfiler attaches p to ctx.
func WithProfiler(ctx context.Context, p *Profiler) context.Context {
	return context.WithValue(ctx, profilerKey{}, p)
}

// FromContext returns the profiler attached to ctx, or nil.
func FromContext(ctx context.Context) *Profiler {
	p, _ := ctx.Value(profilerKey{}).(*Profiler)
	return p
}
