package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestIncAndSnapshot(t *testing.T) {
	m := New(Config{Enabled: true})

	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLogout)

	snap := m.Snapshot()
	if snap.Counters[MetricLoginSuccess] != 2 {
		t.Fatalf("expected 2, got %d", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricLogout] != 1 {
		t.Fatalf("expected 1, got %d", snap.Counters[MetricLogout])
	}
	if snap.Counters[MetricLoginFailure] != 0 {
		t.Fatalf("expected 0, got %d", snap.Counters[MetricLoginFailure])
	}
}

func TestDisabledMetricsAreNoOps(t *testing.T) {
	m := New(Config{})

	m.Inc(MetricLoginSuccess)
	m.Observe(MetricDeriveLatency, time.Millisecond)

	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics

	m.Inc(MetricLoginSuccess)
	m.Observe(MetricDeriveLatency, time.Millisecond)
	_ = m.Snapshot()
}

func TestObserveBucketsSamples(t *testing.T) {
	m := New(Config{Enabled: true, EnableLatency: true})

	m.Observe(MetricDeriveLatency, 500*time.Microsecond) // bucket 0
	m.Observe(MetricDeriveLatency, 3*time.Millisecond)   // bucket 2
	m.Observe(MetricDeriveLatency, time.Second)          // +Inf bucket

	buckets := m.Snapshot().Histograms[MetricDeriveLatency]
	if len(buckets) != histogramBuckets {
		t.Fatalf("expected %d buckets, got %d", histogramBuckets, len(buckets))
	}
	if buckets[0] != 1 || buckets[2] != 1 || buckets[histogramBuckets-1] != 1 {
		t.Fatalf("unexpected bucketing: %v", buckets)
	}
}

func TestObserveIgnoresNonHistogramIDs(t *testing.T) {
	m := New(Config{Enabled: true, EnableLatency: true})

	m.Observe(MetricLoginSuccess, time.Millisecond)

	buckets := m.Snapshot().Histograms[MetricDeriveLatency]
	for i, v := range buckets {
		if v != 0 {
			t.Fatalf("expected empty histogram, bucket %d has %d", i, v)
		}
	}
}

func TestConcurrentIncrements(t *testing.T) {
	m := New(Config{Enabled: true})

	const workers = 16
	const perWorker = 1000

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				m.Inc(MetricAuthAuthenticated)
			}
		}()
	}
	wg.Wait()

	if got := m.Snapshot().Counters[MetricAuthAuthenticated]; got != workers*perWorker {
		t.Fatalf("expected %d, got %d", workers*perWorker, got)
	}
}
