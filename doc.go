// Package goSessionAuth derives a caller's authentication status from a
// server-trusted session record. It provides the [LoginSession] lifecycle
// facade (set user, require and complete an MFA challenge, stamp and check a
// login freshness deadline, reset, destroy), the stateless [Provider] that
// turns the current session record into an [AuthToken], and a Redis-backed
// session record store under session/.
//
// The package is designed for concurrent server workloads: Provider and
// LoginSession hold no mutable state between calls, so all serialization is
// delegated to the session store.
//
// # Architecture boundaries
//
// goSessionAuth is the public surface. It exposes [Engine], [Builder],
// [Config], the [Store] contract, and value types (AuthToken, AuthState,
// AuditEvent, MetricsSnapshot). Session persistence lives in session/ and
// HTTP stage composition lives in middleware/.
//
// Credential verification, user lookup, and MFA code checking are external
// collaborators: the login flow consumes them through the
// middleware.CredentialVerifier and middleware.MfaVerifier interfaces and
// this package never implements them.
//
// # What this package must NOT do
//
//   - Treat any ambiguous or failing session read as authenticated. Every
//     error path in token derivation resolves to ErrUnauthorized.
//   - Enforce the login freshness deadline inside token derivation. Staleness
//     is an opt-in check (LoginSession.NoLongerValid, or
//     middleware.RequireFreshLogin at the route level).
//   - Expose Redis clients or record encodings in its public API.
package goSessionAuth
