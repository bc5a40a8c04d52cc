package goSessionAuth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"
)

// LoginSession is the typed write facade over one client's session record.
// The external login flow uses it to establish what [Provider] later reads
// back; it is the only component that writes the reserved session keys.
//
// A LoginSession holds no state of its own — every operation reads or writes
// the underlying store fresh.
type LoginSession[U any] struct {
	store Store
}

// NewLoginSession wraps a session record in the login lifecycle facade.
func NewLoginSession[U any](store Store) *LoginSession[U] {
	return &LoginSession[U]{store: store}
}

// SetUser serializes user into the session record. Any prior value is
// overwritten. Failures wrap [ErrSessionInsert].
func (s *LoginSession[U]) SetUser(ctx context.Context, user U) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionInsert, err)
	}
	if err := s.store.Set(ctx, sessionKeyUser, data); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionInsert, err)
	}
	return nil
}

// NeedsMfa marks a second factor as outstanding. It does not touch the user
// entry; derivation yields StateNeedsMfa until [LoginSession.MfaChallengeDone]
// runs.
func (s *LoginSession[U]) NeedsMfa(ctx context.Context, factorID string) error {
	if err := s.store.Set(ctx, sessionKeyNeedsMfa, []byte(factorID)); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionInsert, err)
	}
	return nil
}

// MfaChallengeDone removes the outstanding-factor marker. Idempotent:
// absence is a no-op, and there is no error path.
func (s *LoginSession[U]) MfaChallengeDone(ctx context.Context) {
	if err := s.store.Remove(ctx, sessionKeyNeedsMfa); err != nil {
		log.Print("goSessionAuth: mfa marker removal failed")
	}
}

// PendingFactor returns the outstanding MFA factor ID, if any. An empty
// factor ID still counts as an outstanding challenge.
func (s *LoginSession[U]) PendingFactor(ctx context.Context) (string, bool) {
	data, err := s.store.Get(ctx, sessionKeyNeedsMfa)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// ValidUntil stamps the login freshness deadline, stored as unix seconds.
func (s *LoginSession[U]) ValidUntil(ctx context.Context, validUntil time.Time) error {
	data := []byte(strconv.FormatInt(validUntil.Unix(), 10))
	if err := s.store.Set(ctx, sessionKeyLoginValidUntil, data); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionInsert, err)
	}
	return nil
}

// NoLongerValid reports whether the login session is stale. It fails closed:
// an absent deadline, an unreadable value, or a store fault all count as
// stale. Only a present, readable, still-future deadline returns false.
func (s *LoginSession[U]) NoLongerValid(ctx context.Context) bool {
	data, err := s.store.Get(ctx, sessionKeyLoginValidUntil)
	if err != nil {
		return true
	}

	validUntil, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return true
	}

	return time.Now().Unix() > validUntil
}

// Reset issues a new session identity and then clears all keys, in that
// order. The identity must rotate even though the content is cleared — a
// login boundary crossed on a client-presented identity is a fixation
// vector otherwise.
func (s *LoginSession[U]) Reset(ctx context.Context) error {
	if err := s.store.RenewIdentity(ctx); err != nil {
		return err
	}
	return s.store.Clear(ctx)
}

// Destroy irrevocably discards the session record and its identity (logout).
// Best-effort: store failures are logged, not returned.
func (s *LoginSession[U]) Destroy(ctx context.Context) {
	if err := s.store.Purge(ctx); err != nil {
		log.Print("goSessionAuth: session destroy failed")
	}
}
