package goSessionAuth

import (
	"context"
	"time"
)

const (
	auditEventLoginSuccess       = "login_success"
	auditEventLoginFailure       = "login_failure"
	auditEventMFARequired        = "mfa_required"
	auditEventMFASuccess         = "mfa_success"
	auditEventMFAFailure         = "mfa_failure"
	auditEventLogout             = "logout"
	auditEventSessionReset       = "session_reset"
	auditEventStoreFault         = "session_store_fault"
	auditEventSessionPurgeFailed = "session_purge_failed"
	auditEventStaleLoginRejected = "stale_login_rejected"
)

// emitAudit builds and dispatches an audit event. metadata is lazy so the
// map is only allocated when a dispatcher is attached.
func emitAudit(
	d *auditDispatcher,
	ctx context.Context,
	eventType string,
	success bool,
	sessionID string,
	cause error,
	metadata func() map[string]string,
) {
	if d == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	d.Emit(ctx, event)
}
