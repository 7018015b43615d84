package httpserver

import (
	"net/http"
	"strings"
	"time"

	"alert-bridge/internal/httputil"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/crypto/bcrypt"
)

// WebhookAuth checks the shared webhook token against a bcrypt hash. Alert
// senders that cannot set headers may pass the token as ?token=. An empty
// hash disables the check.
func WebhookAuth(tokenHash string) func(http.Handler) http.Handler {
	hash := []byte(strings.TrimSpace(tokenHash))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(hash) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			token := strings.TrimSpace(r.Header.Get("X-Webhook-Token"))
			if token == "" {
				token = strings.TrimSpace(r.URL.Query().Get("token"))
			}
			if token == "" {
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "missing webhook token"})
				return
			}
			if err := bcrypt.CompareHashAndPassword(hash, []byte(token)); err != nil {
				hlog.FromRequest(r).Warn().Str("remote", r.RemoteAddr).Msg("webhook token rejected")
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "invalid webhook token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogging attaches log to each request context, tags it with a
// request id and writes one access line per request.
func RequestLogging(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		h := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("request")
		})(next)
		h = hlog.RequestIDHandler("req_id", "X-Request-Id")(h)
		return hlog.NewHandler(log)(h)
	}
}
