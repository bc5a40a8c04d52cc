package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram in the in-process
// metrics system.
type MetricID uint8

const (
	MetricAuthAuthenticated MetricID = iota
	MetricAuthNeedsMfa
	MetricAuthUnauthorized
	MetricStoreFault
	MetricLoginSuccess
	MetricLoginFailure
	MetricMFARequired
	MetricMFASuccess
	MetricMFAFailure
	MetricLogout
	MetricSessionReset
	MetricSessionPurged
	MetricStaleLoginRejected
	MetricDeriveLatency

	MetricIDCount
)

// latencyBounds are the upper bounds of the first 7 histogram buckets; the
// 8th bucket is +Inf.
var latencyBounds = [histogramBuckets - 1]time.Duration{
	time.Millisecond,
	2 * time.Millisecond,
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
}

const histogramBuckets = 8

// slot is a cache-line padded counter to avoid false sharing between
// adjacent metric IDs under concurrent increments.
type slot struct {
	value uint64
	_     [56]byte
}

// Config controls whether metrics and latency histograms are recorded.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

// Metrics holds atomic counters and an optional latency histogram. A nil or
// disabled Metrics turns every operation into a no-op.
type Metrics struct {
	enabled bool
	latency bool

	counters  [MetricIDCount]slot
	histogram [histogramBuckets]slot
}

// New describes the new operation and its observable behavior.
func New(cfg Config) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
		latency: cfg.Enabled && cfg.EnableLatency,
	}
}

// Inc increments a counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample into the histogram attached to id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.latency || id != MetricDeriveLatency {
		return
	}

	bucket := histogramBuckets - 1
	for i, bound := range latencyBounds {
		if d <= bound {
			bucket = i
			break
		}
	}
	atomic.AddUint64(&m.histogram[bucket].value, 1)
}

// Snapshot is a point-in-time deep copy of all metrics.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Counters:   make(map[MetricID]uint64, MetricIDCount),
		Histograms: make(map[MetricID][]uint64, 1),
	}
	if m == nil || !m.enabled {
		return snap
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	if m.latency {
		buckets := make([]uint64, histogramBuckets)
		for i := range buckets {
			buckets[i] = atomic.LoadUint64(&m.histogram[i].value)
		}
		snap.Histograms[MetricDeriveLatency] = buckets
	}

	return snap
}
