package monitoring

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hazyhaar/autoword-vnext/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMonitor_RecordsStageTiming(t *testing.T) {
	m := New(config.MonitoringBasic, 0, 0, discardLogger())
	h := m.Begin("extract")
	time.Sleep(time.Millisecond)
	timing := h.End(nil)

	if timing.Stage != "extract" {
		t.Fatalf("stage: got %q", timing.Stage)
	}
	if timing.DurationMs < 0 {
		t.Fatalf("duration: got %d", timing.DurationMs)
	}
	if len(m.Timings()) != 1 {
		t.Fatalf("expected 1 timing, got %d", len(m.Timings()))
	}
}

func TestMonitor_RecordsErrorOnFailedStage(t *testing.T) {
	m := New(config.MonitoringDetailed, 0, 0, discardLogger())
	h := m.Begin("execute")
	timing := h.End(errors.New("boom"))

	if timing.Err == nil {
		t.Fatal("expected the stage error to be recorded")
	}
}

func TestMonitor_TotalDurationSumsAllStages(t *testing.T) {
	m := New(config.MonitoringBasic, 0, 0, discardLogger())
	m.Begin("extract").End(nil)
	m.Begin("plan").End(nil)
	m.Begin("execute").End(nil)

	if len(m.Timings()) != 3 {
		t.Fatalf("expected 3 timings, got %d", len(m.Timings()))
	}
	if m.TotalDurationMs() < 0 {
		t.Fatalf("total duration: got %d", m.TotalDurationMs())
	}
}

func TestMonitor_MemoryThresholdsNeverPanicWhenUnset(t *testing.T) {
	m := New(config.MonitoringPerformance, 0, 0, discardLogger())
	m.Begin("audit").End(nil)
}

func TestMonitor_MemoryWarningThresholdOneMBDoesNotPanic(t *testing.T) {
	// warnMB=1 (zero would disable the check) makes the warning branch run
	// whenever the heap holds at least 1 MB; the test only checks that End
	// completes either way.
	m := New(config.MonitoringDebug, 1, 0, discardLogger())
	m.Begin("validate").End(nil)
}
