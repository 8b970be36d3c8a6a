package web

import (
	"errors"
	"fmt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gophergrub/internal/metrics"
	"gophergrub/internal/middleware"
	"gophergrub/internal/model"
	"gophergrub/internal/provider"
	"gophergrub/internal/result"
	"gophergrub/internal/session"
	mocks "gophergrub/internal/tests/mock"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockGrub) {
	t.Helper()

	return newTestRouterWith(t, RouterOptions{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestRouterWith(t *testing.T, opts RouterOptions, log *slog.Logger) (http.Handler, *mocks.MockGrub) {
	t.Helper()

	grub := mocks.NewMockGrub()
	t.Cleanup(func() { grub.AssertExpectations(t) })

	opts.Authenticator = middleware.PresenceAuthenticator{}
	opts.Session = middleware.SessionOptions{CookieName: "gg_session", TTL: time.Hour}

	return NewRouter(NewHandler(grub, log), opts, log), grub
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHome_GuardedWithoutCookie(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Empty(t, rec.Result().Cookies())
}

func TestHome_ShowsDisplayName(t *testing.T) {
	router, grub := newTestRouter(t)
	grub.On("DisplayName", mock.Anything, mock.Anything).Return("Gopher", nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.RefreshCookieName, Value: "anytoken"})
	rec := serve(router, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome back, Gopher!")
}

func TestLogin_Success(t *testing.T) {
	router, grub := newTestRouter(t)
	grub.On("Login", mock.Anything, mock.Anything, "a@b.edu", "pw").
		Run(func(args mock.Arguments) {
			sess := args.Get(1).(*session.Session)
			sess.ApplyCookie(&http.Cookie{Name: session.RefreshCookieName, Value: "fresh", Path: "/", Domain: "backend.internal"})
		}).
		Return(result.Ok[model.LoginData, string](model.LoginData{DisplayName: "Gopher"}), nil).Once()

	rec := serve(router, postForm("/login", url.Values{"email": {"a@b.edu"}, "password": {"pw"}}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/menu", rec.Header().Get("Location"))

	var refresh *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.RefreshCookieName {
			refresh = c
		}
	}
	require.NotNil(t, refresh)
	assert.Equal(t, "fresh", refresh.Value)
	assert.Empty(t, refresh.Domain)
}

func TestLogin_RejectedShowsDetail(t *testing.T) {
	router, grub := newTestRouter(t)
	grub.On("Login", mock.Anything, mock.Anything, "a@b.edu", "bad").
		Return(result.Err[model.LoginData]("invalid email or password"), nil).Once()

	rec := serve(router, postForm("/login", url.Values{"email": {"a@b.edu"}, "password": {"bad"}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")
	assert.Contains(t, rec.Body.String(), `value="a@b.edu"`)
}

func TestSignup_Success(t *testing.T) {
	router, grub := newTestRouter(t)
	grub.On("Signup", mock.Anything, mock.Anything, "a@b.edu", "pw", "Gopher").
		Return(result.Ok[struct{}, string](struct{}{}), nil).Once()

	rec := serve(router, postForm("/signup", url.Values{"email": {"a@b.edu"}, "password": {"pw"}, "displayName": {"Gopher"}}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/menu", rec.Header().Get("Location"))
}

func TestMenu_FormOnly(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/menu", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<option value="everyday" selected>`)
}

func TestMenu_RendersItems(t *testing.T) {
	router, grub := newTestRouter(t)
	q := model.MealQuery{DiningHall: "Worcester", Date: "2024-05-01", Mealtime: model.Everyday}
	grub.On("GetMenu", mock.Anything, mock.Anything, q).
		Return(result.Ok[[]model.MenuItem, string]([]model.MenuItem{{ID: "1", Meal: "Pancakes", IsPreferred: true}}), nil).Once()

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/menu?diningHall=Worcester&date=2024-05-01", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Pancakes")
	assert.Contains(t, rec.Body.String(), "Remove preference")
}

func TestMenu_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantLoc  string
	}{
		{name: "unauthenticated", err: fmt.Errorf("grub.GetMenu: %w", provider.ErrUnauthenticated), wantCode: http.StatusSeeOther, wantLoc: "/login"},
		{name: "malformed", err: fmt.Errorf("grub.GetMenu: %w", provider.ErrMalformedResponse), wantCode: http.StatusBadGateway},
		{name: "unavailable", err: fmt.Errorf("grub.GetMenu: %w", provider.ErrBackendUnavailable), wantCode: http.StatusBadGateway},
		{name: "other", err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, grub := newTestRouter(t)
			grub.On("GetMenu", mock.Anything, mock.Anything, mock.Anything).
				Return(result.Result[[]model.MenuItem, string]{}, tt.err).Once()

			rec := serve(router, httptest.NewRequest(http.MethodGet, "/menu?diningHall=Worcester&date=2024-05-01", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantLoc != "" {
				assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
			}
		})
	}
}

func TestTogglePreference_RedirectsBack(t *testing.T) {
	router, grub := newTestRouter(t)
	item := model.MenuItem{ID: "1", Meal: "Pancakes", IsPreferred: false}
	grub.On("TogglePreference", mock.Anything, mock.Anything, item).
		Return(result.Ok[model.MenuItem, string](item.Toggled()), nil).Once()

	rec := serve(router, postForm("/menu/preference", url.Values{
		"id": {"1"}, "meal": {"Pancakes"}, "isPreferred": {"false"},
		"diningHall": {"Worcester"}, "date": {"2024-05-01"}, "mealtime": {"lunch"},
	}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/menu?date=2024-05-01&diningHall=Worcester&mealtime=lunch", rec.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		router, grub := newTestRouter(t)
		grub.On("Logout", mock.Anything, mock.Anything).
			Return(result.Ok[struct{}, string](struct{}{}), nil).Once()

		rec := serve(router, httptest.NewRequest(http.MethodGet, "/logout", nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("second logout shows detail", func(t *testing.T) {
		router, grub := newTestRouter(t)
		grub.On("Logout", mock.Anything, mock.Anything).
			Return(result.Err[struct{}]("invalid jwt"), nil).Once()

		rec := serve(router, httptest.NewRequest(http.MethodGet, "/logout", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid jwt")
	})
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestTogglePreference_RejectsUnparsableFlag(t *testing.T) {
	for _, flag := range []string{"", "maybe"} {
		t.Run("isPreferred="+flag, func(t *testing.T) {
			router, grub := newTestRouter(t)

			rec := serve(router, postForm("/menu/preference", url.Values{
				"id": {"1"}, "meal": {"Pancakes"}, "isPreferred": {flag},
			}))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "isPreferred must be true or false")
			grub.AssertNotCalled(t, "TogglePreference", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestLogin_RateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	router, grub := newTestRouterWith(t, RouterOptions{
		Limiter: middleware.NewRateLimiter(0.001, 1),
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	grub.On("Login", mock.Anything, mock.Anything, "a@b.edu", "bad").
		Return(result.Err[model.LoginData]("invalid email or password"), nil).Once()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := postForm("/login", url.Values{"email": {"a@b.edu"}, "password": {"bad"}})
		req.RemoteAddr = "198.51.100.9:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		codes = append(codes, serve(router, req).Code)
	}

	assert.Equal(t, []int{http.StatusBadRequest, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestUnmatchedRequestsAreLoggedAndMeasured(t *testing.T) {
	var logs strings.Builder
	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics("test", registry)

	router, _ := newTestRouterWith(t, RouterOptions{HTTPMetrics: httpMetrics},
		slog.New(slog.NewTextHandler(&logs, nil)))

	assert.Equal(t, http.StatusNotFound, serve(router, httptest.NewRequest(http.MethodGet, "/nope", nil)).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(router, httptest.NewRequest(http.MethodPut, "/login", nil)).Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(httpMetrics.RequestsTotal.WithLabelValues("unmatched", http.MethodGet, "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(httpMetrics.RequestsTotal.WithLabelValues("unmatched", http.MethodPut, "405")))
	assert.Contains(t, logs.String(), "path=/nope status=404")
	assert.Contains(t, logs.String(), "path=/login status=405")
}
