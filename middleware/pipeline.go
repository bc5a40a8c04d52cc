package middleware

import "net/http"

// SessionStage wraps handlers with per-request session record binding. Build
// one with [Sessions].
type SessionStage struct {
	wrap func(http.Handler) http.Handler
}

// AuthStage wraps handlers with session binding plus token derivation. Build
// one with [Authenticate]; the session stage it was built on is carried along
// so the final pipeline always wraps in the right order.
type AuthStage[U any] struct {
	session SessionStage
	wrap    func(http.Handler) http.Handler
}

// Pipeline is the fully composed middleware chain. Build one with
// [WithLogin].
type Pipeline[U any] struct {
	auth  AuthStage[U]
	login func(http.Handler) http.Handler
}

// Handler wraps app with the complete chain: session binding first, then
// token derivation, then login handling, then the application.
func (p Pipeline[U]) Handler(app http.Handler) http.Handler {
	return p.auth.session.wrap(p.auth.wrap(p.login(app)))
}
