package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu            sync.Mutex
	started       time.Time
	requestCount  map[string]int64
	errorCount    map[string]int64
	totalDuration time.Duration
	totalRequests int64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	UptimeSeconds     int64            `json:"uptime_seconds"`
	Requests          map[string]int64 `json:"requests"`
	Errors            map[string]int64 `json:"errors"`
	TotalRequests     int64            `json:"total_requests"`
	AverageDurationMs float64          `json:"average_duration_ms"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		started:      time.Now(),
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(route, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.totalRequests++
	m.totalDuration += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	key := route + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MetricsSnapshot{
		UptimeSeconds: int64(time.Since(m.started) / time.Second),
		Requests:      make(map[string]int64, len(m.requestCount)),
		Errors:        make(map[string]int64, len(m.errorCount)),
		TotalRequests: m.totalRequests,
	}
	for k, v := range m.requestCount {
		snap.Requests[k] = v
	}
	for k, v := range m.errorCount {
		snap.Errors[k] = v
	}
	if m.totalRequests > 0 {
		snap.AverageDurationMs = float64(m.totalDuration.Microseconds()) / float64(m.totalRequests) / 1000
	}
	return snap
}

func pathKey(route, method string, status int) string {
	return route + "|" + method + "|" + strconv.Itoa(status)
}
