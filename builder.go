package goSessionAuth

import (
	"errors"

	"github.com/MrEthical07/goSessionAuth/session"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goSessionAuth APIs.
//
// Builder instances are intended to be configured during initialization and
// then consumed once by [Builder.Build].
type Builder[U any] struct {
	config Config
	redis  redis.UniversalClient

	auditSink AuditSink

	built bool
}

// New creates a [Builder] seeded with [DefaultConfig]. The type parameter is
// the application user payload: any JSON-serializable value type qualifies.
func New[U any]() *Builder[U] {
	return &Builder[U]{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder configuration.
func (b *Builder[U]) WithConfig(cfg Config) *Builder[U] {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the session record store.
func (b *Builder[U]) WithRedis(client redis.UniversalClient) *Builder[U] {
	b.redis = client
	return b
}

// WithCookieSigningKey sets the HS256 key for the session cookie.
func (b *Builder[U]) WithCookieSigningKey(key []byte) *Builder[U] {
	b.config.Cookie.SigningKey = cloneBytes(key)
	return b
}

// WithAuditSink sets the sink receiving audit events.
func (b *Builder[U]) WithAuditSink(sink AuditSink) *Builder[U] {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process metrics system.
func (b *Builder[U]) WithMetricsEnabled(enabled bool) *Builder[U] {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles derivation latency histograms.
func (b *Builder[U]) WithLatencyHistograms(enabled bool) *Builder[U] {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the [Engine].
// Construction is allocation-only: no I/O happens until the engine serves a
// request.
func (b *Builder[U]) Build() (*Engine[U], error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	manager := session.NewManager(
		b.redis,
		cfg.Session.RedisPrefix,
		cfg.Session.TTL,
		cfg.Session.SlidingRenewal,
	)

	engine := &Engine[U]{
		config:   cfg,
		sessions: manager,
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)
	engine.provider = &Provider[U]{
		audit:   engine.audit,
		metrics: engine.metrics,
	}

	b.built = true

	return engine, nil
}
