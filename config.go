package goSessionAuth

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// Config defines a public type used by goSessionAuth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Session SessionConfig
	Cookie  CookieConfig
	Login   LoginConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the Redis-backed session record store.
type SessionConfig struct {
	RedisPrefix string
	// TTL is the record lifetime. Every write refreshes it; with
	// SlidingRenewal enabled, reads refresh it too.
	TTL            time.Duration
	SlidingRenewal bool
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig controls how the session identity is conveyed to the client.
// The cookie value is an HMAC-signed token carrying only the session ID;
// tampered or expired cookies bind a fresh anonymous session.
type CookieConfig struct {
	Name string
	// SigningKey is the HS256 key for the session cookie. Must be at least
	// 32 bytes.
	SigningKey []byte
	Path       string
	Domain     string
	Secure     bool
	HTTPOnly   bool
	SameSite   http.SameSite
	// MaxAge bounds the cookie lifetime. Zero means a session cookie.
	MaxAge time.Duration
}

/*
====================================
LOGIN CONFIG
====================================
*/

// LoginConfig controls the login-handling stage and the freshness deadline.
type LoginConfig struct {
	Path       string
	MFAPath    string
	LogoutPath string
	// FreshnessWindow is the login_valid_until horizon stamped on a
	// successful login. Zero disables stamping. The deadline is advisory:
	// token derivation never enforces it.
	FreshnessWindow time.Duration
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by goSessionAuth APIs.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goSessionAuth APIs.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration. The cookie signing key is
// intentionally empty and must be supplied by the caller.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			RedisPrefix:    "sa",
			TTL:            24 * time.Hour,
			SlidingRenewal: true,
		},
		Cookie: CookieConfig{
			Name:     "session_id",
			Path:     "/",
			Secure:   true,
			HTTPOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   24 * time.Hour,
		},
		Login: LoginConfig{
			Path:            "/login",
			MFAPath:         "/login/mfa",
			LogoutPath:      "/logout",
			FreshnessWindow: time.Hour,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Cookie.SigningKey = cloneBytes(cfg.Cookie.SigningKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when a configuration value cannot be used to
// build a working engine.
func (c Config) Validate() error {
	if c.Session.RedisPrefix == "" {
		return errors.New("Session.RedisPrefix must not be empty")
	}
	if strings.ContainsAny(c.Session.RedisPrefix, " :") {
		return errors.New("Session.RedisPrefix must not contain spaces or ':'")
	}
	if c.Session.TTL <= 0 {
		return errors.New("Session.TTL must be positive")
	}

	if c.Cookie.Name == "" {
		return errors.New("Cookie.Name must not be empty")
	}
	if !validCookieName(c.Cookie.Name) {
		return errors.New("Cookie.Name contains invalid characters")
	}
	if len(c.Cookie.SigningKey) < 32 {
		return errors.New("Cookie.SigningKey must be at least 32 bytes")
	}
	if c.Cookie.MaxAge < 0 {
		return errors.New("Cookie.MaxAge must not be negative")
	}

	for _, p := range []string{c.Login.Path, c.Login.MFAPath, c.Login.LogoutPath} {
		if p == "" || !strings.HasPrefix(p, "/") {
			return errors.New("Login paths must start with '/'")
		}
	}
	if c.Login.Path == c.Login.LogoutPath || c.Login.Path == c.Login.MFAPath || c.Login.MFAPath == c.Login.LogoutPath {
		return errors.New("Login paths must be distinct")
	}
	if c.Login.FreshnessWindow < 0 {
		return errors.New("Login.FreshnessWindow must not be negative")
	}

	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must not be negative")
	}

	return nil
}

// validCookieName enforces RFC 6265 token characters.
func validCookieName(name string) bool {
	for _, r := range name {
		if r <= 0x20 || r >= 0x7f {
			return false
		}
		if strings.ContainsRune(`()<>@,;:\"/[]?={}`, r) {
			return false
		}
	}
	return true
}
