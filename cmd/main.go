package main

import (
	"context"
	"github.com/joho/godotenv"
	"gophergrub/internal/app"
	"gophergrub/internal/config"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {

	_ = godotenv.Load(".env")

	cfg := config.GetConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	log := setupSlog(cfg.Env)

	application, err := app.New(ctx, *cfg, log)
	if err != nil {
		log.Error("failed to start", slog.String("error", err.Error()))
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	if err := application.Run(ctx, stop); err != nil {
		log.Error("server failed", slog.String("error", err.Error()))
		cancel()
		os.Exit(1)
	}
	log.Info("Gracefully stopped")

}

func setupSlog(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return log
}
