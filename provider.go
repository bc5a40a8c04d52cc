package goSessionAuth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"
)

// Provider is the stateless translation of "the current session record" into
// an [AuthToken] or a rejection. It runs on every authenticated request.
//
// Failure policy: every ambiguous or erroring read resolves to
// [ErrUnauthorized], never to an authenticated token. This is the single
// most important security property of the component.
//
// Provider never consults login_valid_until: a request-scoped provider runs
// on every request, and a stale-login policy may legitimately differ per
// endpoint. Freshness is the login flow's responsibility.
type Provider[U any] struct {
	audit   *auditDispatcher
	metrics *Metrics
}

// NewProvider creates a standalone provider with no audit or metrics
// attached. [Builder.Build] wires one with both.
func NewProvider[U any]() *Provider[U] {
	return &Provider[U]{}
}

// GetAuthToken derives the authentication token for the request's session
// record. The record must have been bound by the session stage; a request
// with no bound record fails closed.
func (p *Provider[U]) GetAuthToken(r *http.Request) (*AuthToken[U], error) {
	store, ok := SessionRecordFromContext(r.Context())
	if !ok {
		p.metricInc(MetricAuthUnauthorized)
		return nil, ErrUnauthorized
	}
	return p.DeriveToken(r.Context(), store)
}

// DeriveToken derives an [AuthToken] directly from a session record:
//
//  1. The user entry is deserialized; absence, decode failure, or a store
//     fault rejects the request.
//  2. The needs_mfa entry is checked for presence: present (any value) means
//     StateNeedsMfa, absent means StateAuthenticated. A storage fault on
//     this read rejects the request AND is surfaced to the audit channel,
//     since it indicates a store defect rather than an ordinary visitor.
func (p *Provider[U]) DeriveToken(ctx context.Context, store Store) (*AuthToken[U], error) {
	start := time.Now()

	raw, userErr := store.Get(ctx, sessionKeyUser)

	var mfaErr error
	if userErr == nil {
		_, mfaErr = store.Get(ctx, sessionKeyNeedsMfa)
	}

	state, err := deriveAuthState(userErr, mfaErr)
	if err != nil {
		if userErr != nil && !errors.Is(userErr, ErrNoValue) {
			p.reportStoreFault(ctx, store, sessionKeyUser, userErr)
		}
		if mfaErr != nil && !errors.Is(mfaErr, ErrNoValue) {
			p.reportStoreFault(ctx, store, sessionKeyNeedsMfa, mfaErr)
		}
		p.metricInc(MetricAuthUnauthorized)
		return nil, ErrUnauthorized
	}

	var user U
	if err := json.Unmarshal(raw, &user); err != nil {
		p.reportStoreFault(ctx, store, sessionKeyUser, err)
		p.metricInc(MetricAuthUnauthorized)
		return nil, ErrUnauthorized
	}

	switch state {
	case StateNeedsMfa:
		p.metricInc(MetricAuthNeedsMfa)
	default:
		p.metricInc(MetricAuthAuthenticated)
	}
	p.metricObserve(MetricDeriveLatency, time.Since(start))

	return NewAuthToken(user, state), nil
}

// Invalidate purges the request's session record unconditionally (logout).
// Fire-and-forget: store failures are surfaced on the audit channel but
// never propagated to the caller.
func (p *Provider[U]) Invalidate(r *http.Request) {
	store, ok := SessionRecordFromContext(r.Context())
	if !ok {
		return
	}
	p.invalidateStore(r.Context(), store)
}

func (p *Provider[U]) invalidateStore(ctx context.Context, store Store) {
	if err := store.Purge(ctx); err != nil {
		log.Print("goSessionAuth: session purge failed")
		emitAudit(p.audit, ctx, auditEventSessionPurgeFailed, false, store.ID(), err, nil)
		return
	}
	p.metricInc(MetricSessionPurged)
}

// deriveAuthState combines the outcome of the two independent session
// lookups into an AuthState. userErr and mfaErr are the lookup errors for
// the user and needs_mfa keys; [ErrNoValue] means the key is absent, any
// other error is a storage fault. Short-circuit: without a user entry the
// MFA marker is irrelevant.
func deriveAuthState(userErr, mfaErr error) (AuthState, error) {
	if userErr != nil {
		return StateUnauthenticated, ErrUnauthorized
	}

	switch {
	case mfaErr == nil:
		return StateNeedsMfa, nil
	case errors.Is(mfaErr, ErrNoValue):
		return StateAuthenticated, nil
	default:
		return StateUnauthenticated, ErrUnauthorized
	}
}

func (p *Provider[U]) reportStoreFault(ctx context.Context, store Store, key string, cause error) {
	log.Printf("goSessionAuth: cannot read %q from session store", key)
	p.metricInc(MetricStoreFault)
	emitAudit(p.audit, ctx, auditEventStoreFault, false, store.ID(), cause, func() map[string]string {
		return map[string]string{
			"key": key,
		}
	})
}

func (p *Provider[U]) metricInc(id MetricID) {
	if p == nil || p.metrics == nil {
		return
	}
	p.metrics.Inc(id)
}

func (p *Provider[U]) metricObserve(id MetricID, d time.Duration) {
	if p == nil || p.metrics == nil {
		return
	}
	p.metrics.Observe(id, d)
}
