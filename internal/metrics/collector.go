// Package metrics provides in-memory runtime statistics for a chat session.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	Failures  int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64
	Failures    int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64
}

// Snapshot represents the session statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64
	Chat          *OperationSnapshot
	Regenerate    *OperationSnapshot
	Feedback      *OperationSnapshot
}

// Operation names for the collector.
const (
	OpChat       = "chat"
	OpRegenerate = "regenerate"
	OpFeedback   = "feedback"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records timing for an operation. A non-nil err counts as a failure.
func (c *Collector) RecordTiming(op string, duration time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration
	if err != nil {
		m.Failures++
	}

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	return &OperationSnapshot{
		Count:       m.Count,
		Failures:    m.Failures,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Chat:          snapshotOp(c.ops[OpChat]),
		Regenerate:    snapshotOp(c.ops[OpRegenerate]),
		Feedback:      snapshotOp(c.ops[OpFeedback]),
	}
}

// LogAttrs flattens the snapshot into slog key/value pairs.
func (s Snapshot) LogAttrs() []any {
	attrs := []any{"uptime_s", int64(s.UptimeSeconds)}
	for _, op := range []struct {
		name string
		snap *OperationSnapshot
	}{
		{OpChat, s.Chat},
		{OpRegenerate, s.Regenerate},
		{OpFeedback, s.Feedback},
	} {
		if op.snap == nil {
			continue
		}
		attrs = append(attrs,
			op.name+"_count", op.snap.Count,
			op.name+"_failures", op.snap.Failures,
			op.name+"_avg_ms", op.snap.AvgTimeMs,
		)
	}
	return attrs
}
