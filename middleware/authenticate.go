package middleware

import (
	"context"
	"net/http"

	goSessionAuth "github.com/MrEthical07/goSessionAuth"
)

type authTokenContextKey struct{}

// TokenFromContext returns the authentication token derived for the request,
// if any. Requests that failed derivation carry no token.
func TokenFromContext[U any](ctx context.Context) (*goSessionAuth.AuthToken[U], bool) {
	token, ok := ctx.Value(authTokenContextKey{}).(*goSessionAuth.AuthToken[U])
	return token, ok
}

// Authenticate builds the authentication stage on top of a session stage. It
// derives the token for every request and attaches it to the context on
// success. Derivation failure is not a rejection here — the request proceeds
// without a token, and route guards decide what that means.
func Authenticate[U any](inner SessionStage, engine *goSessionAuth.Engine[U]) AuthStage[U] {
	return AuthStage[U]{
		session: inner,
		wrap: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				token, err := engine.GetAuthToken(r)
				if err == nil {
					ctx := context.WithValue(r.Context(), authTokenContextKey{}, token)
					r = r.WithContext(ctx)
				}
				next.ServeHTTP(w, r)
			})
		},
	}
}

// RequireAuthenticated rejects any request whose token is missing or not
// fully authenticated. A token in StateNeedsMfa is rejected too: an
// outstanding second factor grants nothing.
func RequireAuthenticated[U any]() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := TokenFromContext[U](r.Context())
			if !ok || token.State != goSessionAuth.StateAuthenticated {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireFreshLogin rejects authenticated requests whose login freshness
// deadline has passed. Stack it after [RequireAuthenticated] on endpoints
// that demand a recent login (password change, payout).
func RequireFreshLogin[U any](engine *goSessionAuth.Engine[U]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store, ok := goSessionAuth.SessionRecordFromContext(r.Context())
			if !ok || engine.LoginNoLongerValid(r.Context(), store) {
				http.Error(w, "login no longer valid", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
