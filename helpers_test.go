package goSessionAuth

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type testUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})

	return mr, client, func() {
		_ = client.Close()
		mr.Close()
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Cookie.SigningKey = []byte("test-signing-key-0123456789abcdef")
	cfg.Login.FreshnessWindow = time.Hour
	return cfg
}

func newTestEngine(t *testing.T, sink AuditSink) (*Engine[testUser], *miniredis.Miniredis, func()) {
	t.Helper()

	mr, client, cleanup := newTestRedis(t)

	engine, err := New[testUser]().
		WithConfig(testConfig()).
		WithRedis(client).
		WithAuditSink(sink).
		Build()
	if err != nil {
		cleanup()
		t.Fatalf("Build failed: %v", err)
	}

	return engine, mr, func() {
		engine.Close()
		cleanup()
	}
}
