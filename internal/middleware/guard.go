package middleware

import (
	"gophergrub/internal/session"
	"gophergrub/internal/token"
	"log/slog"
	"net/http"
)

const LoginPath = "/login"

type Authenticator interface {
	Authenticate(token string) bool
}

// PresenceAuthenticator admits any non-empty refresh credential. Whether it
// is still valid is decided by the backend on the next refresh.
type PresenceAuthenticator struct{}

func (PresenceAuthenticator) Authenticate(token string) bool {
	return token != ""
}

// SignedAuthenticator additionally requires the credential to carry a valid
// signature made with the refresh key.
type SignedAuthenticator struct {
	verifier token.Verifier
	log      *slog.Logger
}

func NewSignedAuthenticator(verifier token.Verifier, log *slog.Logger) *SignedAuthenticator {
	return &SignedAuthenticator{verifier: verifier, log: log}
}

func (a *SignedAuthenticator) Authenticate(tok string) bool {
	if tok == "" {
		return false
	}
	if _, err := a.verifier.Verify(tok); err != nil {
		a.log.Debug("refresh credential rejected", slog.String("error", err.Error()))
		return false
	}
	return true
}

// Guard lets the request through only when the refresh_token cookie
// authenticates. Otherwise the browser is sent to the login page and nothing
// else is written.
func Guard(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tok string
			if c, err := r.Cookie(session.RefreshCookieName); err == nil {
				tok = c.Value
			}

			if !auth.Authenticate(tok) {
				log.Debug("guard redirect", slog.String("path", r.URL.Path))
				http.Redirect(w, r, LoginPath, http.StatusTemporaryRedirect)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
