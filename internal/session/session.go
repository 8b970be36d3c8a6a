package session

import (
	"context"
	"net/http"
)

const (
	RefreshCookieName = "refresh_token"
	KeyDisplayName    = "displayName"
)

// Session is the per-request view of a browser's session: the refresh
// credential it holds and the values persisted for it. Cookies the backend
// sets while serving the request are queued here and relayed to the browser.
type Session struct {
	ID           string
	RefreshToken string
	DisplayName  string

	outgoing []*http.Cookie
}

func New(id, refreshToken string) *Session {
	return &Session{ID: id, RefreshToken: refreshToken}
}

func (s *Session) Authenticated() bool {
	return s != nil && s.RefreshToken != ""
}

// ApplyCookie records a refresh credential change issued by the backend.
// Other cookies are ignored.
func (s *Session) ApplyCookie(c *http.Cookie) {
	if c == nil || c.Name != RefreshCookieName {
		return
	}
	if c.MaxAge < 0 || c.Value == "" {
		s.RefreshToken = ""
	} else {
		s.RefreshToken = c.Value
	}
	s.outgoing = append(s.outgoing, c)
}

// Outgoing returns and forgets the queued cookies.
func (s *Session) Outgoing() []*http.Cookie {
	out := s.outgoing
	s.outgoing = nil
	return out
}

// Forget drops the refresh credential locally and queues its deletion.
func (s *Session) Forget() {
	s.ApplyCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.DisplayName = ""
}

type contextKey struct{}

func With(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func From(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
