package middleware

import (
	"github.com/google/uuid"
	"gophergrub/internal/session"
	"net/http"
	"time"
)

type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// SessionLoader builds the request's session from the browser cookies. A
// browser without a valid session id gets a fresh one.
func SessionLoader(opts SessionOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(opts.CookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					id = c.Value
				}
			}

			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     opts.CookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(opts.TTL.Seconds()),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			var refresh string
			if c, err := r.Cookie(session.RefreshCookieName); err == nil {
				refresh = c.Value
			}

			sess := session.New(id, refresh)
			next.ServeHTTP(w, r.WithContext(session.With(r.Context(), sess)))
		})
	}
}
