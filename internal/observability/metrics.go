package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	slaRuns      int64
	slaFailures  int64
	lastSLARun   time.Time
	lastAlerts   map[string]int
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Requests      map[string]int64 `json:"requests"`
	Errors        map[string]int64 `json:"errors"`
	SLARuns       int64            `json:"sla_runs"`
	SLAFailures   int64            `json:"sla_failures"`
	LastSLARun    *time.Time       `json:"last_sla_run,omitempty"`
	LastSLAAlerts map[string]int   `json:"last_sla_alerts"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		lastAlerts:   make(map[string]int),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordSLARun stores the outcome of one scheduled SLA evaluation.
func (m *Metrics) RecordSLARun(at time.Time, warnings, breaches int, err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slaRuns++
	if err != nil {
		m.slaFailures++
		return
	}
	m.lastSLARun = at
	m.lastAlerts = map[string]int{"warning": warnings, "breached": breaches}
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := MetricsSnapshot{
		Requests:      make(map[string]int64, len(m.requestCount)),
		Errors:        make(map[string]int64, len(m.errorCount)),
		SLARuns:       m.slaRuns,
		SLAFailures:   m.slaFailures,
		LastSLAAlerts: make(map[string]int, len(m.lastAlerts)),
	}
	for k, v := range m.requestCount {
		snap.Requests[k] = v
	}
	for k, v := range m.errorCount {
		snap.Errors[k] = v
	}
	for k, v := range m.lastAlerts {
		snap.LastSLAAlerts[k] = v
	}
	if !m.lastSLARun.IsZero() {
		last := m.lastSLARun
		snap.LastSLARun = &last
	}
	return snap
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
