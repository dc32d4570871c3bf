package perf

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func TestProfiler_PhasesAndCounters(t *testing.T) {
	p := New()

	done := p.StartPhase("open")
	time.Sleep(5 * time.Millisecond)
	done()

	p.RecordRows(120)
	p.RecordRead(2048, 2*time.Millisecond)
	p.RecordWrite(1024, time.Millisecond)

	r := p.Report()
	if r.Rows != 120 {
		t.Errorf("Expected 120 rows, got %d", r.Rows)
	}
	if r.BytesRead != 2048 || r.BytesWritten != 1024 {
		t.Errorf("Expected 2048/1024 bytes, got %d/%d", r.BytesRead, r.BytesWritten)
	}
	if r.ReadOps != 1 || r.WriteOps != 1 {
		t.Errorf("Expected one op each way, got %d/%d", r.ReadOps, r.WriteOps)
	}
	if len(r.Phases) != 1 || r.Phases[0].Name != "open" {
		t.Fatalf("Expected one recorded phase named open, got %+v", r.Phases)
	}
	if r.Phases[0].Duration < 5*time.Millisecond {
		t.Errorf("Expected phase duration >= 5ms, got %v", r.Phases[0].Duration)
	}

	out := r.String()
	for _, want := range []string{"PERFORMANCE PROFILE", "PHASES", "open:", "BOTTLENECK"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected report to contain %q:\n%s", want, out)
		}
	}
}

func TestProfiledReaderWriter(t *testing.T) {
	p := New()

	src := strings.NewReader("id;name\n1;Alice\n2;Bob\n")
	var dst bytes.Buffer

	n, err := io.Copy(NewProfiledWriter(&dst, p), NewProfiledReader(src, p))
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}

	r := p.Report()
	if r.BytesRead != n {
		t.Errorf("Expected %d bytes read, got %d", n, r.BytesRead)
	}
	if r.BytesWritten != n {
		t.Errorf("Expected %d bytes written, got %d", n, r.BytesWritten)
	}
	if r.ReadOps == 0 || r.WriteOps == 0 {
		t.Errorf("Expected non-zero op counts, got %d/%d", r.ReadOps, r.WriteOps)
	}
}

func TestBottleneck_ReadDominated(t *testing.T) {
	p := New()
	p.RecordRead(1<<20, 80*time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	r := p.Report()
	if r.Bottleneck.Type != "io_read" {
		t.Errorf("Expected io_read bottleneck, got %q", r.Bottleneck.Type)
	}
}

func TestWithProfiler_Context(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Error("Expected nil profiler from empty context")
	}

	p := New()
	ctx := WithProfiler(context.Background(), p)
	if FromContext(ctx) != p {
		t.Error("Expected the attached profiler back")
	}
}
