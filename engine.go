package goSessionAuth

import (
	"net/http"

	"github.com/MrEthical07/goSessionAuth/session"
)

// Engine defines a public type used by goSessionAuth APIs.
//
// Engine instances are intended to be configured during initialization
// through [Builder.Build] and then treated as immutable. All methods are
// safe for concurrent use.
type Engine[U any] struct {
	config   Config
	sessions *session.Manager
	provider *Provider[U]
	audit    *auditDispatcher
	metrics  *Metrics
}

// Close flushes and stops the audit dispatcher.
func (e *Engine[U]) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// Config returns a copy of the engine configuration.
func (e *Engine[U]) Config() Config {
	return cloneConfig(e.config)
}

// Sessions returns the session record manager. The session stage in
// middleware/ uses it to bind a record per request.
func (e *Engine[U]) Sessions() *session.Manager {
	return e.sessions
}

// Provider returns the stateless authentication provider.
func (e *Engine[U]) Provider() *Provider[U] {
	return e.provider
}

// GetAuthToken derives the authentication token for the request. See
// [Provider.GetAuthToken].
func (e *Engine[U]) GetAuthToken(r *http.Request) (*AuthToken[U], error) {
	if e == nil || e.provider == nil {
		return nil, ErrUnauthorized
	}
	return e.provider.GetAuthToken(r)
}

// Invalidate purges the request's session record. See [Provider.Invalidate].
func (e *Engine[U]) Invalidate(r *http.Request) {
	if e == nil || e.provider == nil {
		return
	}
	e.provider.Invalidate(r)
}

// LoginSession returns the login lifecycle facade for the request's session
// record, or [ErrNoSession] when the session stage did not run.
func (e *Engine[U]) LoginSession(r *http.Request) (*LoginSession[U], error) {
	store, ok := SessionRecordFromContext(r.Context())
	if !ok {
		return nil, ErrNoSession
	}
	return NewLoginSession[U](store), nil
}

// AuditDropped returns the number of audit events dropped because the
// dispatch buffer was full.
func (e *Engine[U]) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all metrics.
func (e *Engine[U]) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine[U]) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}
