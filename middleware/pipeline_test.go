package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goSessionAuth "github.com/MrEthical07/goSessionAuth"
)

type testUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type stubCredentials struct{}

func (stubCredentials) Verify(_ context.Context, identifier, password string) (testUser, error) {
	if identifier == "alice@example.com" && password == "correct-horse" {
		return testUser{ID: "u1", Email: identifier}, nil
	}
	return testUser{}, errors.New("invalid credentials")
}

type stubMfa struct {
	require bool
}

func (m stubMfa) Begin(_ context.Context, _ testUser) (string, bool, error) {
	return "totp-1", m.require, nil
}

func (m stubMfa) Confirm(_ context.Context, _ testUser, _, code string) error {
	if code != "424242" {
		return errors.New("bad code")
	}
	return nil
}

type testServer struct {
	engine *goSessionAuth.Engine[testUser]
	server *httptest.Server
	client *http.Client
}

func newTestServer(t *testing.T, mutate func(*goSessionAuth.Config), mfaRequired bool) (*testServer, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})

	cfg := goSessionAuth.DefaultConfig()
	cfg.Cookie.SigningKey = []byte("test-signing-key-0123456789abcdef")
	cfg.Cookie.Secure = false
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := goSessionAuth.New[testUser]().
		WithConfig(cfg).
		WithRedis(rdb).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	flow := NewLoginFlow[testUser](engine, stubCredentials{}).
		WithMfaVerifier(stubMfa{require: mfaRequired})

	mux := http.NewServeMux()
	mux.Handle("/protected", RequireAuthenticated[testUser]()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _ := TokenFromContext[testUser](r.Context())
		fmt.Fprint(w, token.User.Email)
	})))
	mux.Handle("/fresh-only", RequireAuthenticated[testUser]()(RequireFreshLogin(engine)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "ok")
	}))))
	mux.HandleFunc("/public", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "public")
	})

	pipeline := WithLogin(
		Authenticate(Sessions(engine), engine),
		flow,
	)
	server := httptest.NewServer(pipeline.Handler(mux))

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}

	ts := &testServer{
		engine: engine,
		server: server,
		client: &http.Client{Jar: jar},
	}

	return ts, func() {
		server.Close()
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

func (ts *testServer) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := ts.client.Post(ts.server.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

func (ts *testServer) get(t *testing.T, path string) *http.Response {
	t.Helper()

	resp, err := ts.client.Get(ts.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

func (ts *testServer) login(t *testing.T, identifier, password string) *http.Response {
	t.Helper()
	return ts.postJSON(t, "/login", map[string]string{
		"identifier": identifier,
		"password":   password,
	})
}

func (ts *testServer) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()

	u, err := url.Parse(ts.server.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	for _, c := range ts.client.Jar.Cookies(u) {
		if c.Name == "session_id" {
			return c
		}
	}
	return nil
}

func TestAnonymousRequestIsRejectedOnGuardedRoute(t *testing.T) {
	ts, done := newTestServer(t, nil, false)
	defer done()

	resp := ts.get(t, "/protected")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp = ts.get(t, "/public")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on public route, got %d", resp.StatusCode)
	}
}

func TestLoginGrantsAccess(t *testing.T) {
	ts, done := newTestServer(t, nil, false)
	defer done()

	resp := ts.login(t, "alice@example.com", "correct-horse")
	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body.MFARequired {
		t.Fatal("expected no MFA requirement")
	}
	if ts.sessionCookie(t) == nil {
		t.Fatal("expected a session cookie after login")
	}

	resp = ts.get(t, "/protected")
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after login, got %d", resp.StatusCode)
	}
	if buf.String() != "alice@example.com" {
		t.Fatalf("unexpected body: %s", buf.String())
	}
}

func TestLoginWithWrongPasswordIsRejected(t *testing.T) {
	ts, done := newTestServer(t, nil, false)
	defer done()

	resp := ts.login(t, "alice@example.com", "wrong")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp = ts.get(t, "/protected")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after failed login, got %d", resp.StatusCode)
	}
}

func TestMfaFlow(t *testing.T) {
	ts, done := newTestServer(t, nil, true)
	defer done()

	resp := ts.login(t, "alice@example.com", "correct-horse")
	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	resp.Body.Close()

	if !body.MFARequired || body.FactorID != "totp-1" {
		t.Fatalf("expected MFA challenge, got %+v", body)
	}

	// An outstanding second factor grants nothing.
	resp = ts.get(t, "/protected")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 before MFA confirmation, got %d", resp.StatusCode)
	}

	// Wrong code is rejected and the challenge stays pending.
	resp = ts.postJSON(t, "/login/mfa", map[string]string{"code": "000000"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong code, got %d", resp.StatusCode)
	}

	resp = ts.postJSON(t, "/login/mfa", map[string]string{"code": "424242"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for correct code, got %d", resp.StatusCode)
	}

	resp = ts.get(t, "/protected")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after MFA, got %d", resp.StatusCode)
	}
}

func TestMfaConfirmWithoutChallengeIsRejected(t *testing.T) {
	ts, done := newTestServer(t, nil, true)
	defer done()

	resp := ts.postJSON(t, "/login/mfa", map[string]string{"code": "424242"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without a pending challenge, got %d", resp.StatusCode)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	ts, done := newTestServer(t, nil, false)
	defer done()

	resp := ts.login(t, "alice@example.com", "correct-horse")
	resp.Body.Close()

	resp = ts.postJSON(t, "/logout", struct{}{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp = ts.get(t, "/protected")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestLoginRotatesSessionIdentity(t *testing.T) {
	ts, done := newTestServer(t, nil, false)
	defer done()

	// Bind an anonymous session first so the client presents a cookie at
	// login time.
	resp := ts.login(t, "alice@example.com", "correct-horse")
	resp.Body.Close()
	first := ts.sessionCookie(t)
	if first == nil {
		t.Fatal("expected a session cookie")
	}

	resp = ts.login(t, "alice@example.com", "correct-horse")
	resp.Body.Close()
	second := ts.sessionCookie(t)
	if second == nil {
		t.Fatal("expected a session cookie")
	}

	if first.Value == second.Value {
		t.Fatal("login must rotate the session cookie")
	}
}

func TestTamperedCookieIsAnonymous(t *testing.T) {
	ts, done := newTestServer(t, nil, false)
	defer done()

	resp := ts.login(t, "alice@example.com", "correct-horse")
	resp.Body.Close()

	u, _ := url.Parse(ts.server.URL)
	cookie := ts.sessionCookie(t)
	cookie.Value += "tampered"
	ts.client.Jar.SetCookies(u, []*http.Cookie{cookie})

	resp = ts.get(t, "/protected")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for tampered cookie, got %d", resp.StatusCode)
	}
}

func TestForgedSessionIDIsAnonymous(t *testing.T) {
	ts, done := newTestServer(t, nil, false)
	defer done()

	u, _ := url.Parse(ts.server.URL)
	ts.client.Jar.SetCookies(u, []*http.Cookie{{
		Name:  "session_id",
		Value: "11111111-1111-1111-1111-111111111111",
	}})

	resp := ts.get(t, "/protected")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unsigned session id, got %d", resp.StatusCode)
	}
}

func TestRequireFreshLogin(t *testing.T) {
	t.Run("fresh login passes", func(t *testing.T) {
		ts, done := newTestServer(t, func(cfg *goSessionAuth.Config) {
			cfg.Login.FreshnessWindow = time.Hour
		}, false)
		defer done()

		resp := ts.login(t, "alice@example.com", "correct-horse")
		resp.Body.Close()

		resp = ts.get(t, "/fresh-only")
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 for fresh login, got %d", resp.StatusCode)
		}
	})

	t.Run("unstamped login is rejected", func(t *testing.T) {
		ts, done := newTestServer(t, func(cfg *goSessionAuth.Config) {
			cfg.Login.FreshnessWindow = 0
		}, false)
		defer done()

		resp := ts.login(t, "alice@example.com", "correct-horse")
		resp.Body.Close()

		resp = ts.get(t, "/protected")
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 on plain guard, got %d", resp.StatusCode)
		}

		resp = ts.get(t, "/fresh-only")
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 without a freshness deadline, got %d", resp.StatusCode)
		}
	})
}
