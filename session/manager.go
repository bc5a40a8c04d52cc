package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNoValue is returned by [Record.Get] when the key is absent.
var ErrNoValue = errors.New("session value not present")

// ErrRedisUnavailable wraps transport-level Redis failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

// renewIdentityScript renames a record to its next identity in one atomic
// step. RENAME preserves the remaining TTL; a TTL is (re)applied only when
// the source key had none.
const renewIdentityScript = `
local existed = redis.call("EXISTS", KEYS[1])
if existed == 1 then
  redis.call("RENAME", KEYS[1], KEYS[2])
  local ttl = redis.call("PTTL", KEYS[2])
  if ttl < 0 then
    redis.call("PEXPIRE", KEYS[2], ARGV[1])
  end
end
return existed
`

var renewIdentityLua = redis.NewScript(renewIdentityScript)

// Manager resolves per-client session records. It is safe for concurrent use;
// all state lives in Redis.
type Manager struct {
	redis   redis.UniversalClient
	prefix  string
	ttl     time.Duration
	sliding bool
}

// NewManager creates a session [Manager] backed by the given Redis client.
// prefix sets the Redis key namespace, ttl the record lifetime; with sliding
// enabled, binding an existing record refreshes its TTL.
func NewManager(client redis.UniversalClient, prefix string, ttl time.Duration, sliding bool) *Manager {
	return &Manager{
		redis:   client,
		prefix:  prefix,
		ttl:     ttl,
		sliding: sliding,
	}
}

func (m *Manager) key(id string) string {
	return m.prefix + ":" + id
}

// New returns a record bound to a fresh identity. Nothing is written to
// Redis until the first Set.
func (m *Manager) New() *Record {
	return &Record{m: m, id: uuid.NewString()}
}

// Load binds the record for a presented session identity. An empty, unknown,
// or expired identity yields a record with a fresh identity instead: a
// client can never choose its own session ID.
func (m *Manager) Load(ctx context.Context, id string) (*Record, error) {
	if id == "" {
		return m.New(), nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return m.New(), nil
	}

	key := m.key(id)
	n, err := m.redis.Exists(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if n == 0 {
		return m.New(), nil
	}

	if m.sliding {
		if err := m.redis.PExpire(ctx, key, m.ttl).Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return &Record{m: m, id: id}, nil
}
