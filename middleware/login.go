package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	goSessionAuth "github.com/MrEthical07/goSessionAuth"
)

// CredentialVerifier checks a primary credential pair against the
// application's user store. Verify returns the user payload on success and an
// error on any failure; the login flow never distinguishes "unknown user"
// from "wrong password" in its response.
type CredentialVerifier[U any] interface {
	Verify(ctx context.Context, identifier, password string) (U, error)
}

// MfaVerifier manages the second authentication factor.
//
// Begin runs after a successful credential check and decides whether a second
// factor is required for this user; when it is, it returns the factor ID the
// client must confirm against. Confirm checks a submitted code for that
// factor.
type MfaVerifier[U any] interface {
	Begin(ctx context.Context, user U) (factorID string, required bool, err error)
	Confirm(ctx context.Context, user U, factorID, code string) error
}

// LoginFlow binds the engine to the application's verifiers. Build one with
// [NewLoginFlow] and pass it to [WithLogin].
type LoginFlow[U any] struct {
	engine *goSessionAuth.Engine[U]
	creds  CredentialVerifier[U]
	mfa    MfaVerifier[U]
}

// NewLoginFlow creates a login flow with credential verification only. Every
// successful login is immediately fully authenticated.
func NewLoginFlow[U any](engine *goSessionAuth.Engine[U], creds CredentialVerifier[U]) *LoginFlow[U] {
	return &LoginFlow[U]{engine: engine, creds: creds}
}

// WithMfaVerifier enables the MFA leg of the flow.
func (f *LoginFlow[U]) WithMfaVerifier(mfa MfaVerifier[U]) *LoginFlow[U] {
	f.mfa = mfa
	return f
}

// WithLogin builds the complete pipeline by adding the login-handling stage
// on top of an authentication stage. The stage intercepts POSTs to the
// configured login, MFA, and logout paths; everything else passes through.
func WithLogin[U any](inner AuthStage[U], flow *LoginFlow[U]) Pipeline[U] {
	cfg := flow.engine.Config()

	return Pipeline[U]{
		auth: inner,
		login: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodPost {
					switch r.URL.Path {
					case cfg.Login.Path:
						flow.handleLogin(w, r)
						return
					case cfg.Login.MFAPath:
						flow.handleMfa(w, r)
						return
					case cfg.Login.LogoutPath:
						flow.handleLogout(w, r)
						return
					}
				}
				next.ServeHTTP(w, r)
			})
		},
	}
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	MFARequired bool   `json:"mfa_required"`
	FactorID    string `json:"factor_id,omitempty"`
}

type mfaRequest struct {
	Code string `json:"code"`
}

func (f *LoginFlow[U]) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	user, err := f.creds.Verify(r.Context(), req.Identifier, req.Password)
	if err != nil {
		f.engine.RecordLoginFailure(r.Context(), req.Identifier, goSessionAuth.ErrInvalidCredentials)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	store, ok := goSessionAuth.SessionRecordFromContext(r.Context())
	if !ok {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	factorID := ""
	if f.mfa != nil {
		id, required, err := f.mfa.Begin(r.Context(), user)
		if err != nil {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		if required {
			factorID = id
		}
	}

	if err := f.engine.EstablishLogin(r.Context(), store, user, factorID); err != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		MFARequired: factorID != "",
		FactorID:    factorID,
	})
}

func (f *LoginFlow[U]) handleMfa(w http.ResponseWriter, r *http.Request) {
	var req mfaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	store, ok := goSessionAuth.SessionRecordFromContext(r.Context())
	if !ok {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	factorID, pending := f.engine.PendingMfaFactor(r.Context(), store)
	if !pending {
		http.Error(w, goSessionAuth.ErrMFANotPending.Error(), http.StatusBadRequest)
		return
	}

	token, err := f.engine.GetAuthToken(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if f.mfa == nil {
		http.Error(w, goSessionAuth.ErrMFANotPending.Error(), http.StatusBadRequest)
		return
	}
	if err := f.mfa.Confirm(r.Context(), token.User, factorID, req.Code); err != nil {
		f.engine.RecordMfaFailure(r.Context(), store, goSessionAuth.ErrMFAChallengeInvalid)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := f.engine.CompleteMfaChallenge(r.Context(), store); err != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{MFARequired: false})
}

func (f *LoginFlow[U]) handleLogout(w http.ResponseWriter, r *http.Request) {
	store, ok := goSessionAuth.SessionRecordFromContext(r.Context())
	if ok {
		f.engine.Logout(r.Context(), store)
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
