package suite

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gophergrub/internal/metrics"
	"gophergrub/internal/middleware"
	"gophergrub/internal/provider/backend"
	"gophergrub/internal/servises/grub"
	mock "gophergrub/internal/tests/mock"
	"gophergrub/internal/web"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

// Suite runs the whole front end against an in-memory backend. Session
// storage is mocked so tests can assert what gets persisted.
type Suite struct {
	*testing.T

	Backend     *Backend
	BackendHTTP *httptest.Server
	Front       *httptest.Server

	// Browser keeps cookies and does not follow redirects.
	Browser *http.Client

	MockStorage *mock.MockStorage
	Registry    *prometheus.Registry
}

func New(t *testing.T, menu ...string) *Suite {
	t.Helper()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	be := NewBackend(menu...)
	backendHTTP := httptest.NewServer(be.Handler())

	registry := prometheus.NewRegistry()
	mockStorage := mock.NewMockStorage()

	provider := backend.NewBackendProvider(backendHTTP.URL, 5*time.Second,
		metrics.NewBackendMetrics("test", registry), log)
	service := grub.NewService(provider, mockStorage, log)

	router := web.NewRouter(web.NewHandler(service, log), web.RouterOptions{
		Authenticator: middleware.PresenceAuthenticator{},
		Session:       middleware.SessionOptions{CookieName: "gg_session", TTL: time.Hour},
		Limiter:       middleware.NewRateLimiter(100, 100),
		HTTPMetrics:   metrics.NewHTTPMetrics("test", registry),
		Gatherer:      registry,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	front := httptest.NewServer(router)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	s := &Suite{
		T:           t,
		Backend:     be,
		BackendHTTP: backendHTTP,
		Front:       front,
		Browser: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
			Timeout: 10 * time.Second,
		},
		MockStorage: mockStorage,
		Registry:    registry,
	}

	t.Cleanup(func() {
		s.Cleanup()
	})

	return s
}

func (s *Suite) Cleanup() {
	s.Front.Close()
	s.BackendHTTP.Close()

	s.MockStorage.AssertExpectations(s.T)
}
