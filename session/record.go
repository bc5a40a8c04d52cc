package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Record is the key/value handle for one session identity. A Record is
// request-scoped: it is bound once by [Manager.Load] and discarded after the
// request. The identity guard only protects the id field during rotation;
// value operations are serialized by Redis per identity.
type Record struct {
	m *Manager

	mu     sync.Mutex
	id     string
	purged bool
}

// ID returns the current session identity.
func (r *Record) ID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id
}

// Purged reports whether the record was irrevocably discarded. The session
// stage uses it to expire the client cookie.
func (r *Record) Purged() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.purged
}

func (r *Record) key() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m.key(r.id)
}

// Get returns the value stored under key, or [ErrNoValue] when absent.
//
//	Performance: 1 Redis HGET.
func (r *Record) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.m.redis.HGet(ctx, r.key(), key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoValue
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return data, nil
}

// Set stores value under key. Every write refreshes the record TTL.
//
//	Performance: 2 Redis commands (HSET + PEXPIRE), pipelined.
func (r *Record) Set(ctx context.Context, key string, value []byte) error {
	recordKey := r.key()

	_, err := r.m.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, recordKey, key, value)
		pipe.PExpire(ctx, recordKey, r.m.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Remove deletes key from the record. Removing an absent key is a no-op.
func (r *Record) Remove(ctx context.Context, key string) error {
	if err := r.m.redis.HDel(ctx, r.key(), key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Clear removes every key but keeps the session identity. The next Set
// recreates the record under the same identity.
func (r *Record) Clear(ctx context.Context) error {
	if err := r.m.redis.Del(ctx, r.key()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// RenewIdentity rotates the session identity, keeping record contents and
// remaining TTL. The rename happens server-side in one atomic step.
//
//	Performance: 1 Lua EVALSHA.
func (r *Record) RenewIdentity(ctx context.Context) error {
	next := uuid.NewString()

	r.mu.Lock()
	current := r.id
	r.mu.Unlock()

	err := renewIdentityLua.Run(
		ctx,
		r.m.redis,
		[]string{r.m.key(current), r.m.key(next)},
		r.m.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	r.mu.Lock()
	r.id = next
	r.purged = false
	r.mu.Unlock()

	return nil
}

// Purge irrevocably discards the record and marks the identity dead.
func (r *Record) Purge(ctx context.Context) error {
	if err := r.m.redis.Del(ctx, r.key()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	r.mu.Lock()
	r.purged = true
	r.mu.Unlock()

	return nil
}
