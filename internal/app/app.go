package app

import (
	"context"
	"fmt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gophergrub/internal/app/grpc"
	httpapp "gophergrub/internal/app/http"
	"gophergrub/internal/config"
	"gophergrub/internal/metrics"
	"gophergrub/internal/middleware"
	"gophergrub/internal/provider/backend"
	redis2 "gophergrub/internal/redis"
	"gophergrub/internal/servises/grub"
	"gophergrub/internal/token"
	"gophergrub/internal/web"
	"gophergrub/pkg/client/redis"
	"log/slog"
	"os"
	"time"
)

const (
	metricsNamespace = "gophergrub"
	limiterSweep     = time.Minute
	shutdownTimeout  = 10 * time.Second
)

type App struct {
	HTTPServer *httpapp.App
	GRPCServer *grpc.App
	Limiter    *middleware.RateLimiter
	log        *slog.Logger
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	trusted, err := middleware.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("app.New: %w", err)
	}

	client, err := redis.NewClient(ctx, cfg.Redis.MaxAttempts, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("app.New: %w", err)
	}
	repositoryRedis := redis2.NewRepositoryRedis(client, cfg.Session.TTL)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	provider := backend.NewBackendProvider(
		cfg.Backend.URL,
		cfg.Backend.Timeout,
		metrics.NewBackendMetrics(metricsNamespace, registry),
		log.With(slog.String("component", "backend")),
	)
	service := grub.NewService(provider, repositoryRedis, log.With(slog.String("component", "grub")))

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	router := web.NewRouter(web.NewHandler(service, log), web.RouterOptions{
		Authenticator: newAuthenticator(cfg.Guard, log),
		Session: middleware.SessionOptions{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.Secure,
		},
		Limiter:     limiter,
		ClientIP:    middleware.ClientIP(trusted),
		HTTPMetrics: metrics.NewHTTPMetrics(metricsNamespace, registry),
		Gatherer:    registry,
	}, log)

	return &App{
		HTTPServer: httpapp.New(log, router, httpapp.Options{
			BindIP:       cfg.ListenConfig.BindIP,
			Port:         cfg.ListenConfig.Port,
			ReadTimeout:  cfg.ListenConfig.ReadTimeout,
			WriteTimeout: cfg.ListenConfig.WriteTimeout,
			IdleTimeout:  cfg.ListenConfig.IdleTimeout,
		}),
		GRPCServer: grpc.New(log, cfg.GRPCConfig.Port),
		Limiter:    limiter,
		log:        log,
	}, nil
}

func newAuthenticator(cfg config.GuardConfig, log *slog.Logger) middleware.Authenticator {
	if cfg.Mode == config.GuardSigned {
		return middleware.NewSignedAuthenticator(token.NewJWTVerifier(cfg.RefreshKey), log)
	}
	return middleware.PresenceAuthenticator{}
}

// Run serves HTTP and gRPC until a signal arrives on stop or either server
// fails, then shuts both down. A server failure is returned.
func (a *App) Run(ctx context.Context, stop <-chan os.Signal) error {
	const op = "app.Run"

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErr := make(chan error, 2)

	go func() {
		if err := a.GRPCServer.Run(); err != nil {
			serverErr <- err
		}
	}()

	go func() {
		if err := a.HTTPServer.Run(); err != nil {
			serverErr <- err
		}
	}()

	if a.Limiter != nil {
		go func() {
			ticker := time.NewTicker(limiterSweep)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					a.Limiter.Cleanup(limiterSweep)
				}
			}
		}()
	}

	a.GRPCServer.SetServing(true)

	var runErr error
	select {
	case sig := <-stop:
		a.log.Info("shutting down", slog.String("op", op), slog.String("signal", sig.String()))
	case err := <-serverErr:
		runErr = fmt.Errorf("%s: %w", op, err)
	case <-ctx.Done():
	}

	a.GRPCServer.SetServing(false)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	a.HTTPServer.Stop(shutdownCtx)
	a.GRPCServer.Stop()

	return runErr
}
