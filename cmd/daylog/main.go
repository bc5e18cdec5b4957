package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"daylog/internal/cache"
	"daylog/internal/cli"
	apphttp "daylog/internal/http"
	applog "daylog/internal/log"
	"daylog/internal/session"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(applog.DefaultConfig().Level)
	cfg := cli.LoadAndValidateConfig(bootLogger, nil)
	logger := cli.SetupLogger(cfg.Level())
	appLogger := applog.New(applog.Config{Component: applog.ComponentApp, Handler: logger.Handler()})
	applog.SetDefault(appLogger)

	secret, err := cfg.SigningSecret()
	if err != nil {
		logger.Error("Session secret unavailable", "error", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, sessions end when the process stops")
	}

	res, err := cli.OpenBackend(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	var verifier session.FederatedVerifier
	if cfg.GoogleClientID != "" {
		verifier = session.NewGoogleVerifier(cfg.GoogleClientID)
		logger.Info("Google sign-in enabled")
	}

	tokens := session.NewTokens(session.TokenConfig{
		Secret: secret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.SessionTTL,
	})

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Activities:          res.Activities,
		Auth:                session.NewAuthenticator(res.Accounts, verifier),
		Tokens:              tokens,
		Revocations:         res.Revocations,
		Logger:              appLogger,
		GoogleClientID:      cfg.GoogleClientID,
		RateLimitPerMinute:  cfg.RateLimitPerMinute,
		ControllerCacheSize: cfg.ControllerCacheSize,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	caches := cache.NewManager(logger)
	for _, c := range srv.Caches() {
		caches.Register(c)
	}
	if mr, ok := res.Revocations.(*session.MemoryRevocations); ok {
		caches.Register(mr)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return caches.Run(gctx, time.Minute)
	})
	g.Go(func() error {
		logger.Info("Starting daylog server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
