package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/listly/listly-backend/config"
	"github.com/listly/listly-backend/internal/auth"
	authmw "github.com/listly/listly-backend/internal/auth/middleware"
	"github.com/listly/listly-backend/internal/bootstrap"
	"github.com/listly/listly-backend/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.Init(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootstrap.SetGinMode(cfg.App.Environment)

	app, err := bootstrap.NewApp(ctx, cfg)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer app.Close()

	verifier, err := tokenVerifier(ctx, cfg)
	if err != nil {
		logger.Fatal("auth setup failed", zap.Error(err))
	}
	if verifier == nil {
		logger.Warn("firebase disabled, trusting X-User-Id header", zap.String("env", cfg.App.Environment))
	}

	if err := app.Sweeper.Start(cfg.Scraper.SweepSchedule); err != nil {
		logger.Fatal("sweeper start failed", zap.Error(err))
	}
	defer app.Sweeper.Stop()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: cfg.App.ServiceName,
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		Verifier:    verifier,
		App:         app,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           otelhttp.NewHandler(router, cfg.App.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// tokenVerifier returns the Firebase client, or nil in development and test
// where the X-User-Id header stands in for a token.
func tokenVerifier(ctx context.Context, cfg *config.Config) (authmw.TokenVerifier, error) {
	if cfg.Firebase.CredentialsPath != "" {
		client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return nil, fmt.Errorf("firebase init: %w", err)
		}
		return client, nil
	}
	if !cfg.IsDevelopment() {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required when APP_ENV is %q", cfg.App.Environment)
	}
	return nil, nil
}
