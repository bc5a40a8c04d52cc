package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	goSessionAuth "github.com/MrEthical07/goSessionAuth"
)

// cookieCodec signs and verifies the session cookie value. The cookie never
// carries session data, only the session identity, wrapped in an HS256-signed
// token so a client cannot mint or alter one.
type cookieCodec struct {
	cfg goSessionAuth.CookieConfig
}

func newCookieCodec(cfg goSessionAuth.CookieConfig) cookieCodec {
	return cookieCodec{cfg: cfg}
}

// encode wraps a session identity in a signed token.
func (c cookieCodec) encode(sessionID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  sessionID,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	if c.cfg.MaxAge != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(c.cfg.MaxAge))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.cfg.SigningKey)
}

// decode extracts the session identity from a presented cookie value. Any
// failure (bad signature, wrong algorithm, expired, malformed) yields an
// empty identity: the session stage then binds a fresh anonymous record.
func (c cookieCodec) decode(value string) string {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.cfg.SigningKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return ""
	}

	return claims.Subject
}

func (c cookieCodec) setCookie(w http.ResponseWriter, value string) {
	cookie := &http.Cookie{
		Name:     c.cfg.Name,
		Value:    value,
		Path:     c.cfg.Path,
		Domain:   c.cfg.Domain,
		Secure:   c.cfg.Secure,
		HttpOnly: c.cfg.HTTPOnly,
		SameSite: c.cfg.SameSite,
	}
	if c.cfg.MaxAge > 0 {
		cookie.MaxAge = int(c.cfg.MaxAge / time.Second)
	}
	http.SetCookie(w, cookie)
}

func (c cookieCodec) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cfg.Name,
		Value:    "",
		Path:     c.cfg.Path,
		Domain:   c.cfg.Domain,
		Secure:   c.cfg.Secure,
		HttpOnly: c.cfg.HTTPOnly,
		SameSite: c.cfg.SameSite,
		MaxAge:   -1,
	})
}
