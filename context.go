package goSessionAuth

import "context"

type sessionRecordContextKey struct{}
type clientIPContextKey struct{}

// WithSessionRecord binds the request's session record to ctx. The session
// stage in middleware/ calls this once per request; everything downstream
// (token derivation, login flow) reads the record back from the context.
func WithSessionRecord(ctx context.Context, store Store) context.Context {
	return context.WithValue(ctx, sessionRecordContextKey{}, store)
}

// SessionRecordFromContext returns the session record bound to ctx, if any.
func SessionRecordFromContext(ctx context.Context) (Store, bool) {
	if ctx == nil {
		return nil, false
	}

	store, ok := ctx.Value(sessionRecordContextKey{}).(Store)
	if !ok || store == nil {
		return nil, false
	}
	return store, true
}

// WithClientIP attaches the caller's IP address to ctx. It is used for audit
// events only.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
