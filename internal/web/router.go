package web

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"gophergrub/internal/metrics"
	"gophergrub/internal/middleware"
	"log/slog"
	"net/http"
)

type RouterOptions struct {
	Authenticator middleware.Authenticator
	Session       middleware.SessionOptions
	Limiter       *middleware.RateLimiter
	// ClientIP keys the rate limiter. Defaults to the peer address.
	ClientIP    func(*http.Request) string
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

// NewRouter mounts the pages. Only "/" is guarded. The guard runs before the
// session loader so a denied request leaves no cookie behind.
func NewRouter(h *Handler, opts RouterOptions, log *slog.Logger) http.Handler {
	r := mux.NewRouter()

	measured := middleware.Metrics(opts.HTTPMetrics)
	r.Use(measured)
	r.NotFoundHandler = measured(http.NotFoundHandler())
	r.MethodNotAllowedHandler = measured(http.HandlerFunc(methodNotAllowed))

	withSession := middleware.SessionLoader(opts.Session)
	clientIP := opts.ClientIP
	if clientIP == nil {
		clientIP = middleware.RemoteIP
	}
	limited := func(next http.Handler) http.Handler {
		if opts.Limiter == nil {
			return next
		}
		return middleware.RateLimit(opts.Limiter, clientIP)(next)
	}

	r.Handle("/", middleware.Guard(opts.Authenticator, log)(withSession(http.HandlerFunc(h.Home)))).Methods(http.MethodGet)

	r.Handle("/login", withSession(http.HandlerFunc(h.LoginPage))).Methods(http.MethodGet)
	r.Handle("/login", limited(withSession(http.HandlerFunc(h.Login)))).Methods(http.MethodPost)
	r.Handle("/signup", withSession(http.HandlerFunc(h.SignupPage))).Methods(http.MethodGet)
	r.Handle("/signup", limited(withSession(http.HandlerFunc(h.Signup)))).Methods(http.MethodPost)

	r.Handle("/menu", withSession(http.HandlerFunc(h.Menu))).Methods(http.MethodGet)
	r.Handle("/menu/preference", withSession(http.HandlerFunc(h.TogglePreference))).Methods(http.MethodPost)
	r.Handle("/logout", withSession(http.HandlerFunc(h.Logout))).Methods(http.MethodGet)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	if opts.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(opts.Gatherer)).Methods(http.MethodGet)
	}

	return middleware.RequestLogger(log)(r)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
