package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"gophergrub/internal/model"
	"gophergrub/internal/provider"
	"gophergrub/internal/result"
	"gophergrub/internal/session"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Grub is the set of use cases the pages are built on.
type Grub interface {
	Login(ctx context.Context, sess *session.Session, email, password string) (result.Result[model.LoginData, string], error)
	Signup(ctx context.Context, sess *session.Session, email, password, displayName string) (result.Result[struct{}, string], error)
	Logout(ctx context.Context, sess *session.Session) (result.Result[struct{}, string], error)
	DisplayName(ctx context.Context, sess *session.Session) (string, error)
	GetMenu(ctx context.Context, sess *session.Session, q model.MealQuery) (result.Result[[]model.MenuItem, string], error)
	SetPreference(ctx context.Context, sess *session.Session, item model.MenuItem, preferred bool) (result.Result[model.MenuItem, string], error)
	TogglePreference(ctx context.Context, sess *session.Session, item model.MenuItem) (result.Result[model.MenuItem, string], error)
}

type Handler struct {
	grub  Grub
	log   *slog.Logger
	pages *template.Template
}

func NewHandler(grub Grub, log *slog.Logger) *Handler {
	return &Handler{
		grub:  grub,
		log:   log,
		pages: template.Must(template.ParseFS(templatesFS, "templates/*.html")),
	}
}

type homeData struct {
	DisplayName string
}

type formData struct {
	Error       string
	Email       string
	DisplayName string
}

type errorData struct {
	Message string
}

const unavailableMessage = "The dining service is unavailable right now. Please try again later."

func sessionFrom(r *http.Request) *session.Session {
	if sess, ok := session.From(r.Context()); ok {
		return sess
	}
	return session.New("", "")
}

// relay forwards the refresh cookies the backend set while serving the
// request. They are rescoped to this host.
func relay(w http.ResponseWriter, sess *session.Session) {
	for _, c := range sess.Outgoing() {
		out := *c
		out.Domain = ""
		if out.Path == "" {
			out.Path = "/"
		}
		http.SetCookie(w, &out)
	}
}

func (h *Handler) render(w http.ResponseWriter, sess *session.Session, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.Error("failed to render page",
			slog.String("page", name),
			slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	relay(w, sess)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, sess *session.Session, target string) {
	relay(w, sess)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// fail turns an error from a use case into a response. A lost session goes
// back to the login page, anything the backend got wrong is a bad gateway.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, sess *session.Session, op string, err error) {
	switch {
	case errors.Is(err, provider.ErrUnauthenticated):
		h.redirect(w, r, sess, "/login")
	case errors.Is(err, provider.ErrBackendUnavailable), errors.Is(err, provider.ErrMalformedResponse):
		h.log.Error("backend call failed", slog.String("op", op), slog.String("error", err.Error()))
		h.render(w, sess, http.StatusBadGateway, "error", errorData{Message: unavailableMessage})
	default:
		h.log.Error("request failed", slog.String("op", op), slog.String("error", err.Error()))
		h.render(w, sess, http.StatusInternalServerError, "error", errorData{Message: "Something went wrong."})
	}
}
