package app

import (
	"sync/atomic"
	"time"
)

// Metrics counts the work done by a run. It is safe for concurrent use.
type Metrics struct {
	files         atomic.Uint64
	matches       atomic.Uint64
	substitutions atomic.Uint64
	linesChanged  atomic.Uint64
	failures      atomic.Uint64

	searchCount   atomic.Uint64
	searchTotalNs atomic.Int64
	searchMaxNs   atomic.Int64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordFile records a processed input.
func (m *Metrics) RecordFile() {
	m.files.Add(1)
}

// RecordMatch records a reported match.
func (m *Metrics) RecordMatch() {
	m.matches.Add(1)
}

// RecordSubstitution records the totals of one substitute request.
func (m *Metrics) RecordSubstitution(substitutions, lines int) {
	m.substitutions.Add(uint64(substitutions))
	m.linesChanged.Add(uint64(lines))
}

// RecordFailure records an input that could not be processed.
func (m *Metrics) RecordFailure() {
	m.failures.Add(1)
}

// RecordSearch records the duration of one search call.
func (m *Metrics) RecordSearch(duration time.Duration) {
	ns := duration.Nanoseconds()
	m.searchCount.Add(1)
	m.searchTotalNs.Add(ns)

	// Update max (atomic compare-and-swap loop)
	for {
		old := m.searchMaxNs.Load()
		if ns <= old {
			break
		}
		if m.searchMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	count := m.searchCount.Load()
	var avg int64
	if count > 0 {
		avg = m.searchTotalNs.Load() / int64(count)
	}
	return MetricsSnapshot{
		Elapsed:       time.Since(m.startTime),
		Files:         m.files.Load(),
		Matches:       m.matches.Load(),
		Substitutions: m.substitutions.Load(),
		LinesChanged:  m.linesChanged.Load(),
		Failures:      m.failures.Load(),
		Searches:      count,
		AvgSearchNs:   avg,
		MaxSearchNs:   m.searchMaxNs.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Elapsed       time.Duration
	Files         uint64
	Matches       uint64
	Substitutions uint64
	LinesChanged  uint64
	Failures      uint64
	Searches      uint64
	AvgSearchNs   int64
	MaxSearchNs   int64
}

// Timer provides a simple way to measure elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
