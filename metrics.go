package lloyd

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordStart is called after each Start, err is nil if successful.
	RecordStart(points, k int, err error)

	// RecordStep is called after each completed iteration.
	RecordStep(duration time.Duration, changed bool)

	// RecordRun is called when RunToConvergence returns.
	RecordRun(iterations int, converged bool, duration time.Duration)

	// RecordExport is called after a report export, bytes is the total written.
	RecordExport(files int, bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStart(int, int, error)                   {}
func (NoopMetricsCollector) RecordStep(time.Duration, bool)                {}
func (NoopMetricsCollector) RecordRun(int, bool, time.Duration)            {}
func (NoopMetricsCollector) RecordExport(int, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	StartCount     atomic.Int64
	StartErrors    atomic.Int64
	StepCount      atomic.Int64
	StepTotalNanos atomic.Int64
	StepsUnchanged atomic.Int64
	RunCount       atomic.Int64
	RunsConverged  atomic.Int64
	RunIterations  atomic.Int64
	RunTotalNanos  atomic.Int64
	ExportCount    atomic.Int64
	ExportErrors   atomic.Int64
	ExportFiles    atomic.Int64
	ExportBytes    atomic.Int64
}

// RecordStart implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStart(points, k int, err error) {
	b.StartCount.Add(1)
	if err != nil {
		b.StartErrors.Add(1)
	}
}

// RecordStep implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStep(duration time.Duration, changed bool) {
	b.StepCount.Add(1)
	b.StepTotalNanos.Add(duration.Nanoseconds())
	if !changed {
		b.StepsUnchanged.Add(1)
	}
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(iterations int, converged bool, duration time.Duration) {
	b.RunCount.Add(1)
	b.RunIterations.Add(int64(iterations))
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if converged {
		b.RunsConverged.Add(1)
	}
}

// RecordExport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExport(files int, bytes int64, duration time.Duration, err error) {
	b.ExportCount.Add(1)
	if err != nil {
		b.ExportErrors.Add(1)
		return
	}
	b.ExportFiles.Add(int64(files))
	b.ExportBytes.Add(bytes)
}

// BasicMetricsStats is a point-in-time copy of BasicMetricsCollector.
type BasicMetricsStats struct {
	StartCount     int64
	StartErrors    int64
	StepCount      int64
	StepsUnchanged int64
	AvgStepNanos   int64
	RunCount       int64
	RunsConverged  int64
	RunIterations  int64
	ExportCount    int64
	ExportErrors   int64
	ExportFiles    int64
	ExportBytes    int64
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	stats := BasicMetricsStats{
		StartCount:     b.StartCount.Load(),
		StartErrors:    b.StartErrors.Load(),
		StepCount:      b.StepCount.Load(),
		StepsUnchanged: b.StepsUnchanged.Load(),
		RunCount:       b.RunCount.Load(),
		RunsConverged:  b.RunsConverged.Load(),
		RunIterations:  b.RunIterations.Load(),
		ExportCount:    b.ExportCount.Load(),
		ExportErrors:   b.ExportErrors.Load(),
		ExportFiles:    b.ExportFiles.Load(),
		ExportBytes:    b.ExportBytes.Load(),
	}
	if stats.StepCount > 0 {
		stats.AvgStepNanos = b.StepTotalNanos.Load() / stats.StepCount
	}
	return stats
}
