package goSessionAuth

import (
	"context"
	"time"
)

// EstablishLogin records a successful primary login on the session record:
// it resets the session (identity rotation plus content wipe, the fixation
// defense at the login boundary), writes the user payload, marks an
// outstanding MFA factor when factorID is non-empty, and stamps the login
// freshness deadline when configured.
//
// EstablishLogin may return an error when a session write fails; the caller
// (the login flow) decides whether to retry or fail the login attempt.
func (e *Engine[U]) EstablishLogin(ctx context.Context, store Store, user U, factorID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if store == nil {
		return ErrNoSession
	}

	ls := NewLoginSession[U](store)

	if err := ls.Reset(ctx); err != nil {
		e.metricInc(MetricLoginFailure)
		emitAudit(e.audit, ctx, auditEventLoginFailure, false, store.ID(), err, func() map[string]string {
			return map[string]string{
				"reason": "session_reset_failed",
			}
		})
		return err
	}
	e.metricInc(MetricSessionReset)
	emitAudit(e.audit, ctx, auditEventSessionReset, true, store.ID(), nil, nil)

	if err := ls.SetUser(ctx, user); err != nil {
		e.metricInc(MetricLoginFailure)
		emitAudit(e.audit, ctx, auditEventLoginFailure, false, store.ID(), err, func() map[string]string {
			return map[string]string{
				"reason": "set_user_failed",
			}
		})
		return err
	}

	if factorID != "" {
		if err := ls.NeedsMfa(ctx, factorID); err != nil {
			e.metricInc(MetricLoginFailure)
			emitAudit(e.audit, ctx, auditEventLoginFailure, false, store.ID(), err, func() map[string]string {
				return map[string]string{
					"reason": "set_mfa_marker_failed",
				}
			})
			return err
		}
	}

	if window := e.config.Login.FreshnessWindow; window > 0 {
		if err := ls.ValidUntil(ctx, time.Now().Add(window)); err != nil {
			e.metricInc(MetricLoginFailure)
			emitAudit(e.audit, ctx, auditEventLoginFailure, false, store.ID(), err, func() map[string]string {
				return map[string]string{
					"reason": "set_valid_until_failed",
				}
			})
			return err
		}
	}

	if factorID != "" {
		e.metricInc(MetricMFARequired)
		emitAudit(e.audit, ctx, auditEventMFARequired, true, store.ID(), nil, func() map[string]string {
			return map[string]string{
				"factor_id": factorID,
			}
		})
		return nil
	}

	e.metricInc(MetricLoginSuccess)
	emitAudit(e.audit, ctx, auditEventLoginSuccess, true, store.ID(), nil, nil)
	return nil
}

// PendingMfaFactor returns the outstanding MFA factor for the session
// record, if any.
func (e *Engine[U]) PendingMfaFactor(ctx context.Context, store Store) (string, bool) {
	if store == nil {
		return "", false
	}
	return NewLoginSession[U](store).PendingFactor(ctx)
}

// CompleteMfaChallenge clears the outstanding-factor marker after the
// external verifier accepted the second factor. A subsequent derivation on
// the same session yields StateAuthenticated.
func (e *Engine[U]) CompleteMfaChallenge(ctx context.Context, store Store) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if store == nil {
		return ErrNoSession
	}

	NewLoginSession[U](store).MfaChallengeDone(ctx)
	e.metricInc(MetricMFASuccess)
	emitAudit(e.audit, ctx, auditEventMFASuccess, true, store.ID(), nil, nil)
	return nil
}

// Logout destroys the session record and its identity. Best-effort on the
// underlying store; failures are audited, not returned.
func (e *Engine[U]) Logout(ctx context.Context, store Store) {
	if e == nil || store == nil {
		return
	}

	sessionID := store.ID()
	e.provider.invalidateStore(ctx, store)
	e.metricInc(MetricLogout)
	emitAudit(e.audit, ctx, auditEventLogout, true, sessionID, nil, nil)
}

// RecordLoginFailure surfaces a failed credential verification on the audit
// and metrics channels. The identifier lands in metadata, never in logs.
func (e *Engine[U]) RecordLoginFailure(ctx context.Context, identifier string, cause error) {
	if e == nil {
		return
	}
	e.metricInc(MetricLoginFailure)
	emitAudit(e.audit, ctx, auditEventLoginFailure, false, "", cause, func() map[string]string {
		return map[string]string{
			"identifier": identifier,
		}
	})
}

// RecordMfaFailure surfaces a failed MFA confirmation attempt.
func (e *Engine[U]) RecordMfaFailure(ctx context.Context, store Store, cause error) {
	if e == nil {
		return
	}
	sessionID := ""
	if store != nil {
		sessionID = store.ID()
	}
	e.metricInc(MetricMFAFailure)
	emitAudit(e.audit, ctx, auditEventMFAFailure, false, sessionID, cause, nil)
}

// LoginNoLongerValid reports whether the login freshness deadline for the
// request's session record has passed. Fail-closed: a missing record or an
// unreadable deadline counts as stale. A stale result is surfaced on the
// audit and metrics channels.
func (e *Engine[U]) LoginNoLongerValid(ctx context.Context, store Store) bool {
	if e == nil || store == nil {
		return true
	}

	if !NewLoginSession[U](store).NoLongerValid(ctx) {
		return false
	}

	e.metricInc(MetricStaleLoginRejected)
	emitAudit(e.audit, ctx, auditEventStaleLoginRejected, false, store.ID(), nil, nil)
	return true
}
