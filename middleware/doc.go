// Package middleware exposes the HTTP composition layer for goSessionAuth:
// the session stage, the authentication stage, and the login-handling stage,
// assembled into a single pipeline with a fixed wrap order.
//
// # Stages
//
//   - [Sessions] — binds a session record per request from the signed cookie.
//   - [Authenticate] — derives the authentication token from the record.
//   - [WithLogin] — intercepts the login, MFA, and logout endpoints.
//
// The stage types ([SessionStage], [AuthStage], [Pipeline]) make the wrap
// order a compile-time property: an authentication stage can only be built on
// a session stage, and a login stage only on an authentication stage.
//
// # Guards
//
//   - [RequireAuthenticated] — rejects requests without a fully
//     authenticated token.
//   - [RequireFreshLogin] — additionally rejects logins past their
//     freshness deadline.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — state derivation and the login
// lifecycle are delegated to the Engine.
//
// # What this package must NOT do
//
//   - Read or write session record keys directly (the Engine owns them).
//   - Verify credentials or MFA codes (delegated to the application's
//     verifiers).
//   - Make authorization decisions beyond the token state.
package middleware
