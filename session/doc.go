// Package session provides Redis-backed persistence for per-client session
// records.
//
// # Storage model
//
// Each session identity maps to one Redis hash: record keys are hash fields,
// so independent keys (user, MFA marker, freshness deadline) are read and
// written without decoding the whole record. Identities are UUIDs; identity
// rotation is an atomic server-side rename that keeps the record contents
// and the remaining TTL.
//
// # Architecture boundaries
//
// This package owns the [Manager] (identity resolution, TTL policy) and the
// [Record] (per-request key/value handle). It does NOT interpret record
// contents or make authentication decisions — those responsibilities belong
// to the root package.
//
// # What this package must NOT do
//
//   - Import goSessionAuth or middleware (no upward imports).
//   - Inspect or validate the values it stores.
//   - Take locks beyond the per-record identity guard; concurrent access to
//     one identity is serialized by Redis.
package session
