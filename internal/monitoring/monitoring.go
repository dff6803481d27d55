// Package monitoring tracks per-stage timing and Go runtime health for one
// pipeline run, logging at a verbosity the caller's monitoring_level
// selects. Grounded on observability/heartbeat.go's CollectRuntimeMetrics
// (runtime.MemStats + runtime.NumGoroutine), adapted from a periodic
// database-backed heartbeat to an in-process, per-stage snapshot recorded
// directly into the run's structured logs — this pipeline runs to
// completion in one process and has no separate liveness consumer.
package monitoring

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/hazyhaar/autoword-vnext/internal/config"
)

// RuntimeMetrics captures Go process health at a point in time.
type RuntimeMetrics struct {
	GoroutinesCount int
	MemoryAllocMB   float64
	MemorySysMB     float64
	GCCount         uint32
}

// Collect reads current Go runtime stats.
func Collect() RuntimeMetrics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return RuntimeMetrics{
		GoroutinesCount: runtime.NumGoroutine(),
		MemoryAllocMB:   float64(mem.Alloc) / 1024 / 1024,
		MemorySysMB:     float64(mem.Sys) / 1024 / 1024,
		GCCount:         mem.NumGC,
	}
}

// StageTiming is one completed stage's duration and the runtime snapshot
// taken at its end.
type StageTiming struct {
	Stage      string
	DurationMs int64
	Metrics    RuntimeMetrics
	Err        error
}

// Monitor accumulates stage timings for a single run and logs each one at
// the configured monitoring_level, escalating to a warning or error log
// when memory crosses the configured thresholds.
type Monitor struct {
	level    config.MonitoringLevel
	warnMB   int
	criticalMB int
	log      *slog.Logger
	timings  []StageTiming
}

// New constructs a Monitor. warnMB/criticalMB come from
// config.ExecutorConfig; a zero value disables the corresponding check.
func New(level config.MonitoringLevel, warnMB, criticalMB int, log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{level: level, warnMB: warnMB, criticalMB: criticalMB, log: log}
}

// StageHandle tracks one in-flight stage; call End when the stage finishes.
type StageHandle struct {
	m     *Monitor
	stage string
	start time.Time
}

// Begin starts timing a stage. basic level logs nothing until End;
// detailed/debug/performance log an immediate "stage started" line.
func (m *Monitor) Begin(stage string) *StageHandle {
	h := &StageHandle{m: m, stage: stage, start: time.Now()}
	if m.level != config.MonitoringBasic {
		m.log.Info("monitoring: stage started", "stage", stage)
	}
	return h
}

// End records the stage's duration and runtime snapshot, and logs at a
// level determined by the Monitor's configured verbosity plus the memory
// thresholds.
func (h *StageHandle) End(err error) StageTiming {
	m := h.m
	metrics := Collect()
	timing := StageTiming{
		Stage:      h.stage,
		DurationMs: time.Since(h.start).Milliseconds(),
		Metrics:    metrics,
		Err:        err,
	}
	m.timings = append(m.timings, timing)

	args := []any{"stage", h.stage, "duration_ms", timing.DurationMs}
	if m.level == config.MonitoringDetailed || m.level == config.MonitoringDebug || m.level == config.MonitoringPerformance {
		args = append(args, "memory_alloc_mb", metrics.MemoryAllocMB, "goroutines", metrics.GoroutinesCount)
	}
	if m.level == config.MonitoringDebug || m.level == config.MonitoringPerformance {
		args = append(args, "memory_sys_mb", metrics.MemorySysMB, "gc_count", metrics.GCCount)
	}

	switch {
	case err != nil:
		m.log.Error("monitoring: stage failed", append(args, "error", err)...)
	default:
		m.log.Info("monitoring: stage completed", args...)
	}

	m.checkMemory(h.stage, metrics)
	return timing
}

func (m *Monitor) checkMemory(stage string, metrics RuntimeMetrics) {
	switch {
	case m.criticalMB > 0 && metrics.MemoryAllocMB >= float64(m.criticalMB):
		m.log.Error("monitoring: memory usage above critical threshold",
			"stage", stage, "memory_alloc_mb", metrics.MemoryAllocMB, "critical_mb", m.criticalMB)
	case m.warnMB > 0 && metrics.MemoryAllocMB >= float64(m.warnMB):
		m.log.Warn("monitoring: memory usage above warning threshold",
			"stage", stage, "memory_alloc_mb", metrics.MemoryAllocMB, "warning_mb", m.warnMB)
	}
}

// Timings returns every stage recorded so far, in the order End was called.
func (m *Monitor) Timings() []StageTiming {
	return append([]StageTiming(nil), m.timings...)
}

// TotalDurationMs sums every recorded stage's duration.
func (m *Monitor) TotalDurationMs() int64 {
	var total int64
	for _, t := range m.timings {
		total += t.DurationMs
	}
	return total
}
