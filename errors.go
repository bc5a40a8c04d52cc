package goSessionAuth

import "errors"

var (
	// ErrUnauthorized is returned whenever the session record does not prove
	// authentication. It deliberately carries no detail: the reason for the
	// rejection must not leak to the caller.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionInsert wraps failures of LoginSession write operations
	// (serialization or storage). The login flow decides whether to retry.
	ErrSessionInsert = errors.New("session insert failed")
	// ErrNoSession is returned when no session record is bound to the request,
	// i.e. the session stage did not run ahead of the caller.
	ErrNoSession = errors.New("no session bound to request")
	// ErrInvalidCredentials is the generic credential-verification failure
	// surfaced by the login flow.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMFAChallengeInvalid is returned when an MFA confirmation attempt
	// does not match the outstanding challenge.
	ErrMFAChallengeInvalid = errors.New("mfa challenge invalid")
	// ErrMFANotPending is returned when an MFA confirmation arrives for a
	// session with no outstanding challenge.
	ErrMFANotPending = errors.New("no mfa challenge pending")
	// ErrEngineNotReady is an exported constant or variable used by the session engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
