package middleware

import (
	"log"
	"net"
	"net/http"

	goSessionAuth "github.com/MrEthical07/goSessionAuth"
	"github.com/MrEthical07/goSessionAuth/session"
)

// Sessions builds the outermost pipeline stage. For every request it decodes
// the signed session cookie, binds the matching record (or a fresh anonymous
// one), and attaches it to the request context. After the handler runs, the
// cookie is re-issued if the record's identity rotated, and expired if the
// record was purged.
//
// A Redis outage during binding is logged and the request proceeds with no
// bound record: downstream derivation then fails closed.
func Sessions[U any](engine *goSessionAuth.Engine[U]) SessionStage {
	cfg := engine.Config()
	codec := newCookieCodec(cfg.Cookie)
	manager := engine.Sessions()

	return SessionStage{wrap: func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := goSessionAuth.WithClientIP(r.Context(), clientIP(r))

			presented := ""
			if cookie, err := r.Cookie(cfg.Cookie.Name); err == nil {
				presented = codec.decode(cookie.Value)
			}

			record, err := manager.Load(ctx, presented)
			if err != nil {
				log.Print("goSessionAuth: session binding failed")
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ctx = goSessionAuth.WithSessionRecord(ctx, record)

			sw := &sessionWriter{
				ResponseWriter: w,
				issue: func(w http.ResponseWriter) {
					issueCookie(w, codec, record, presented)
				},
			}

			next.ServeHTTP(sw, r.WithContext(ctx))
			sw.emit()
		})
	}}
}

// issueCookie reconciles the client cookie with the record's final identity.
// Runs once per request, just before the first byte of the response.
func issueCookie(w http.ResponseWriter, codec cookieCodec, record *session.Record, presented string) {
	if record.Purged() {
		codec.clearCookie(w)
		return
	}

	id := record.ID()
	if id == presented {
		return
	}

	value, err := codec.encode(id)
	if err != nil {
		log.Print("goSessionAuth: session cookie signing failed")
		return
	}
	codec.setCookie(w, value)
}

// sessionWriter defers cookie issuance until the response commits, so that
// identity rotations performed by the handler (login, logout) are reflected
// in the Set-Cookie header.
type sessionWriter struct {
	http.ResponseWriter
	issue  func(http.ResponseWriter)
	issued bool
}

func (w *sessionWriter) emit() {
	if w.issued {
		return
	}
	w.issued = true
	w.issue(w.ResponseWriter)
}

func (w *sessionWriter) WriteHeader(statusCode int) {
	w.emit()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.emit()
	return w.ResponseWriter.Write(b)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
