package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks pipeline gate decisions.
type Metrics struct {
	totalDecisions atomic.Int64
	allowed        atomic.Int64
	rejected       atomic.Int64

	// Per-gate stats
	mu        sync.RWMutex
	gateStats map[string]*GateStats
	startTime time.Time
}

// GateStats tracks decisions for a single gate.
type GateStats struct {
	Gate     string `json:"gate"`
	Checked  int64  `json:"checked"`
	Allowed  int64  `json:"allowed"`
	Rejected int64  `json:"rejected"`
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		gateStats: make(map[string]*GateStats),
		startTime: time.Now(),
	}
}

// RecordDecision records one gate decision. It implements the pipeline's
// MetricsRecorder interface.
func (m *Metrics) RecordDecision(gate string, allowed bool) {
	m.totalDecisions.Add(1)
	if allowed {
		m.allowed.Add(1)
	} else {
		m.rejected.Add(1)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stats, exists := m.gateStats[gate]
	if !exists {
		stats = &GateStats{Gate: gate}
		m.gateStats[gate] = stats
	}
	stats.Checked++
	if allowed {
		stats.Allowed++
	} else {
		stats.Rejected++
	}
}

// GetSnapshot returns a point-in-time view of the metrics.
func (m *Metrics) GetSnapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	gates := make([]*GateStats, 0, len(m.gateStats))
	for _, stats := range m.gateStats {
		gates = append(gates, &GateStats{
			Gate:     stats.Gate,
			Checked:  stats.Checked,
			Allowed:  stats.Allowed,
			Rejected: stats.Rejected,
		})
	}
	sortByChecked(gates)

	uptime := time.Since(m.startTime)

	return &Snapshot{
		TotalDecisions: m.totalDecisions.Load(),
		Allowed:        m.allowed.Load(),
		Rejected:       m.rejected.Load(),
		Gates:          gates,
		UptimeSeconds:  int64(uptime.Seconds()),
		StartTime:      m.startTime,
	}
}

// Snapshot represents a point-in-time view of metrics.
type Snapshot struct {
	TotalDecisions int64        `json:"total_decisions"`
	Allowed        int64        `json:"allowed"`
	Rejected       int64        `json:"rejected"`
	Gates          []*GateStats `json:"gates"`
	UptimeSeconds  int64        `json:"uptime_seconds"`
	StartTime      time.Time    `json:"start_time"`
}

// Helper to sort gates by number of checks, busiest first.
func sortByChecked(gates []*GateStats) {
	for i := 0; i < len(gates)-1; i++ {
		for j := i + 1; j < len(gates); j++ {
			if gates[j].Checked > gates[i].Checked {
				gates[i], gates[j] = gates[j], gates[i]
			}
		}
	}
}
