package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"gophergrub/internal/metrics"
	"gophergrub/internal/model"
	"gophergrub/internal/provider"
	"gophergrub/internal/result"
	"gophergrub/internal/session"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"
)

const (
	pathLogin                = "/login"
	pathSignup               = "/signup"
	pathLogout               = "/logout"
	pathRefresh              = "/refresh"
	pathGetMenu              = "/getMenu"
	pathAddFoodPreference    = "/addFoodPreference"
	pathRemoveFoodPreference = "/removeFoodPreference"

	maxBodySize = 1 << 20
)

type Provider interface {
	Login(ctx context.Context, sess *session.Session, email, password string) (result.Result[model.LoginData, string], error)
	Signup(ctx context.Context, sess *session.Session, email, password, displayName string) (result.Result[struct{}, string], error)
	Logout(ctx context.Context, sess *session.Session) (result.Result[struct{}, string], error)
	Refresh(ctx context.Context, sess *session.Session) (result.Result[string, string], error)
	GetMenu(ctx context.Context, sess *session.Session, day string, mealtime model.Mealtime, diningHall string) (result.Result[[]model.MenuItem, string], error)
	AddFoodPreference(ctx context.Context, sess *session.Session, meal string) (result.Result[struct{}, string], error)
	RemoveFoodPreference(ctx context.Context, sess *session.Session, meal string) (result.Result[struct{}, string], error)
}

type backendProvider struct {
	baseURL  string
	client   *http.Client
	validate *validator.Validate
	metrics  *metrics.BackendMetrics
	log      *slog.Logger
}

func NewBackendProvider(baseURL string, timeout time.Duration, m *metrics.BackendMetrics, log *slog.Logger) Provider {
	return &backendProvider{
		baseURL:  strings.TrimRight(baseURL, "/"),
		validate: newValidator(),
		metrics:  m,
		log:      log,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   20,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				ForceAttemptHTTP2:     true,
			},
			Timeout: timeout,
		},
	}
}

// newValidator reports fields by their json names so validation messages
// match what the backend would say.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type loginResponse struct {
	DisplayName *string `json:"displayName" validate:"required"`
}

type refreshResponse struct {
	AccessToken *string `json:"accessToken" validate:"required"`
}

type menuItemResponse struct {
	ID          *string `json:"id" validate:"required"`
	Meal        *string `json:"meal" validate:"required"`
	IsPreferred *bool   `json:"isPreferred" validate:"required"`
}

type errorResponse struct {
	Detail *string `json:"detail" validate:"required"`
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
}

func (b *backendProvider) Login(ctx context.Context, sess *session.Session, email, password string) (result.Result[model.LoginData, string], error) {
	body := model.LoginRequest{Email: email, Password: password}
	if detail, ok := b.checkInput(body); !ok {
		return result.Err[model.LoginData](detail), nil
	}

	return exchange(ctx, b, sess, request{method: http.MethodPost, path: pathLogin, body: body},
		func(raw []byte) (model.LoginData, error) {
			var out loginResponse
			if err := b.decode(raw, &out); err != nil {
				return model.LoginData{}, err
			}
			return model.LoginData{DisplayName: *out.DisplayName}, nil
		})
}

func (b *backendProvider) Signup(ctx context.Context, sess *session.Session, email, password, displayName string) (result.Result[struct{}, string], error) {
	body := model.SignupRequest{Email: email, Password: password, DisplayName: displayName}
	if detail, ok := b.checkInput(body); !ok {
		return result.Err[struct{}](detail), nil
	}

	return exchange(ctx, b, sess, request{method: http.MethodPost, path: pathSignup, body: body}, noContent)
}

func (b *backendProvider) Logout(ctx context.Context, sess *session.Session) (result.Result[struct{}, string], error) {
	return exchange(ctx, b, sess, request{method: http.MethodPost, path: pathLogout}, noContent)
}

// Refresh trades the session's refresh credential for a short-lived access
// credential. A rejected exchange comes back as Err; the caller decides what
// a missing access credential means.
func (b *backendProvider) Refresh(ctx context.Context, sess *session.Session) (result.Result[string, string], error) {
	return exchange(ctx, b, sess, request{method: http.MethodPost, path: pathRefresh},
		func(raw []byte) (string, error) {
			var out refreshResponse
			if err := b.decode(raw, &out); err != nil {
				return "", err
			}
			return *out.AccessToken, nil
		})
}

func (b *backendProvider) GetMenu(ctx context.Context, sess *session.Session, day string, mealtime model.Mealtime, diningHall string) (result.Result[[]model.MenuItem, string], error) {
	return authorized(ctx, b, sess, "backend.GetMenu", func(accessToken string) (result.Result[[]model.MenuItem, string], error) {
		query := url.Values{}
		query.Set("accessToken", accessToken)
		query.Set("day", day)
		query.Set("mealtime", string(mealtime))
		query.Set("diningHall", diningHall)

		return exchange(ctx, b, sess, request{method: http.MethodGet, path: pathGetMenu, query: query}, b.decodeMenu)
	})
}

func (b *backendProvider) AddFoodPreference(ctx context.Context, sess *session.Session, meal string) (result.Result[struct{}, string], error) {
	return b.preference(ctx, sess, pathAddFoodPreference, meal)
}

func (b *backendProvider) RemoveFoodPreference(ctx context.Context, sess *session.Session, meal string) (result.Result[struct{}, string], error) {
	return b.preference(ctx, sess, pathRemoveFoodPreference, meal)
}

func (b *backendProvider) preference(ctx context.Context, sess *session.Session, path, meal string) (result.Result[struct{}, string], error) {
	if strings.TrimSpace(meal) == "" {
		return result.Err[struct{}]("meal is required"), nil
	}

	return authorized(ctx, b, sess, "backend"+path, func(accessToken string) (result.Result[struct{}, string], error) {
		body := model.PreferenceRequest{AccessToken: accessToken, Meal: meal}
		return exchange(ctx, b, sess, request{method: http.MethodPost, path: path, body: body}, noContent)
	})
}

// authorized runs call with a fresh access credential. When the refresh
// exchange yields none the protected call is never issued.
func authorized[T any](ctx context.Context, b *backendProvider, sess *session.Session, op string, call func(accessToken string) (result.Result[T, string], error)) (result.Result[T, string], error) {
	refreshed, err := b.Refresh(ctx, sess)
	if err != nil {
		return result.Result[T, string]{}, fmt.Errorf("%s: %w", op, err)
	}

	if !refreshed.IsOk() || refreshed.Data() == "" {
		b.log.Info("no access credential, login required",
			slog.String("op", op),
			slog.String("detail", refreshed.Err()))
		return result.Result[T, string]{}, fmt.Errorf("%s: %w", op, provider.ErrUnauthenticated)
	}

	return call(refreshed.Data())
}

// exchange performs one backend round trip and sorts the response into the
// three outcomes: data, a rejection detail, or an error.
func exchange[T any](ctx context.Context, b *backendProvider, sess *session.Session, req request, parse func([]byte) (T, error)) (result.Result[T, string], error) {
	op := "backend" + req.path
	start := time.Now()

	status, raw, err := b.do(ctx, sess, req)
	if err != nil {
		b.metrics.Record(req.path, metrics.OutcomeTransport, time.Since(start))
		b.log.Error("backend request failed",
			slog.String("op", op),
			slog.String("error", err.Error()))
		return result.Result[T, string]{}, fmt.Errorf("%s: %w: %w", op, provider.ErrBackendUnavailable, err)
	}

	b.log.Debug("backend response",
		slog.String("op", op),
		slog.Int("status", status),
		slog.Int("body_length", len(raw)))

	if status >= 200 && status < 300 {
		data, err := parse(raw)
		if err != nil {
			b.metrics.Record(req.path, metrics.OutcomeMalformed, time.Since(start))
			b.log.Error("unexpected success body",
				slog.String("op", op),
				slog.String("error", err.Error()),
				slog.String("body", string(raw)))
			return result.Result[T, string]{}, fmt.Errorf("%s: %w", op, err)
		}
		b.metrics.Record(req.path, metrics.OutcomeOK, time.Since(start))
		return result.Ok[T, string](data), nil
	}

	var envelope errorResponse
	if err := b.decode(raw, &envelope); err != nil {
		b.metrics.Record(req.path, metrics.OutcomeMalformed, time.Since(start))
		b.log.Error("unexpected error body",
			slog.String("op", op),
			slog.Int("status", status),
			slog.String("body", string(raw)))
		return result.Result[T, string]{}, fmt.Errorf("%s: status %d: %w", op, status, err)
	}

	detail := *envelope.Detail
	if detail == model.DetailUnauthenticated {
		b.metrics.Record(req.path, metrics.OutcomeUnauthenticated, time.Since(start))
		b.log.Info("backend reports unauthenticated", slog.String("op", op))
		return result.Result[T, string]{}, fmt.Errorf("%s: %w", op, provider.ErrUnauthenticated)
	}

	b.metrics.Record(req.path, metrics.OutcomeRejected, time.Since(start))
	b.log.Warn("backend rejected request",
		slog.String("op", op),
		slog.Int("status", status),
		slog.String("detail", detail))
	return result.Err[T](detail), nil
}

func (b *backendProvider) do(ctx context.Context, sess *session.Session, req request) (int, []byte, error) {
	target := b.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if sess.Authenticated() {
		httpReq.AddCookie(&http.Cookie{Name: session.RefreshCookieName, Value: sess.RefreshToken})
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 0, nil, fmt.Errorf("request cancelled: %w", err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, nil, fmt.Errorf("request timeout: %w", err)
		}
		return 0, nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if sess != nil {
		for _, c := range resp.Cookies() {
			sess.ApplyCookie(c)
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, raw, nil
}

func (b *backendProvider) decode(raw []byte, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %w", provider.ErrMalformedResponse, err)
	}
	if err := b.validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %w", provider.ErrMalformedResponse, err)
	}
	return nil
}

func (b *backendProvider) decodeMenu(raw []byte) ([]model.MenuItem, error) {
	var items []menuItemResponse
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrMalformedResponse, err)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: expected a menu array", provider.ErrMalformedResponse)
	}

	menu := make([]model.MenuItem, 0, len(items))
	for i := range items {
		if err := b.validate.Struct(items[i]); err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", provider.ErrMalformedResponse, i, err)
		}
		menu = append(menu, model.MenuItem{
			ID:          *items[i].ID,
			Meal:        *items[i].Meal,
			IsPreferred: *items[i].IsPreferred,
		})
	}
	return menu, nil
}

// checkInput rejects requests with missing required fields before they reach
// the network, phrased as a rejection detail.
func (b *backendProvider) checkInput(body any) (string, bool) {
	err := b.validate.Struct(body)
	if err == nil {
		return "", true
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error(), false
	}

	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		missing = append(missing, fe.Field())
	}
	return strings.Join(missing, ", ") + " required", false
}

func noContent([]byte) (struct{}, error) {
	return struct{}{}, nil
}
