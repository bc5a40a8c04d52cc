package goSessionAuth

import (
	"context"

	"github.com/MrEthical07/goSessionAuth/session"
)

// Reserved session record keys. The login flow writes them through
// [LoginSession] and [Provider] reads them back on every request; this
// read/write pair across stages is the core coupling contract.
const (
	sessionKeyUser            = "user"
	sessionKeyNeedsMfa        = "needs_mfa"
	sessionKeyLoginValidUntil = "login_valid_until"
)

// Store is the session store adapter contract consumed by this package: a
// key/value record scoped to one client, already resolved for the current
// request by the session stage. session.Record is the Redis-backed
// implementation; any store satisfying this interface works.
//
// Operations on one identity are assumed to be serialized by the store, not
// by this package.
type Store interface {
	// ID returns the current session identity.
	ID() string
	// Get returns the value stored under key, or an error wrapping
	// [ErrNoValue] when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	// Clear removes every key but keeps the session identity.
	Clear(ctx context.Context) error
	// RenewIdentity rotates the session identity while keeping the record
	// contents. Distinct from Clear: both are required to prevent fixation.
	RenewIdentity(ctx context.Context) error
	// Purge irrevocably discards the record and its identity.
	Purge(ctx context.Context) error
}

// ErrNoValue reports an absent session key.
var ErrNoValue = session.ErrNoValue
