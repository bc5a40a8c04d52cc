package goSessionAuth

import (
	internalmetrics "github.com/MrEthical07/goSessionAuth/internal/metrics"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricAuthAuthenticated counts derivations that produced a fully
	// authenticated token.
	MetricAuthAuthenticated = MetricID(internalmetrics.MetricAuthAuthenticated)
	// MetricAuthNeedsMfa counts derivations that produced a token with an
	// outstanding second factor.
	MetricAuthNeedsMfa = MetricID(internalmetrics.MetricAuthNeedsMfa)
	// MetricAuthUnauthorized counts derivations that failed closed.
	MetricAuthUnauthorized = MetricID(internalmetrics.MetricAuthUnauthorized)
	// MetricStoreFault counts session store read faults surfaced during
	// derivation. Non-zero values indicate a store or schema defect.
	MetricStoreFault = MetricID(internalmetrics.MetricStoreFault)
	// MetricLoginSuccess is an exported constant or variable used by the session engine.
	MetricLoginSuccess = MetricID(internalmetrics.MetricLoginSuccess)
	// MetricLoginFailure is an exported constant or variable used by the session engine.
	MetricLoginFailure = MetricID(internalmetrics.MetricLoginFailure)
	// MetricMFARequired is an exported constant or variable used by the session engine.
	MetricMFARequired = MetricID(internalmetrics.MetricMFARequired)
	// MetricMFASuccess is an exported constant or variable used by the session engine.
	MetricMFASuccess = MetricID(internalmetrics.MetricMFASuccess)
	// MetricMFAFailure is an exported constant or variable used by the session engine.
	MetricMFAFailure = MetricID(internalmetrics.MetricMFAFailure)
	// MetricLogout is an exported constant or variable used by the session engine.
	MetricLogout = MetricID(internalmetrics.MetricLogout)
	// MetricSessionReset is an exported constant or variable used by the session engine.
	MetricSessionReset = MetricID(internalmetrics.MetricSessionReset)
	// MetricSessionPurged is an exported constant or variable used by the session engine.
	MetricSessionPurged = MetricID(internalmetrics.MetricSessionPurged)
	// MetricStaleLoginRejected is an exported constant or variable used by the session engine.
	MetricStaleLoginRejected = MetricID(internalmetrics.MetricStaleLoginRejected)
	// MetricDeriveLatency is an exported constant or variable used by the session engine.
	MetricDeriveLatency = MetricID(internalmetrics.MetricDeriveLatency)
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
