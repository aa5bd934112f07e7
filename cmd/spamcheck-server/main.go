package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crimson-sun/spamcheck/internal/cache"
	"github.com/crimson-sun/spamcheck/internal/config"
	"github.com/crimson-sun/spamcheck/internal/logging"
	"github.com/crimson-sun/spamcheck/internal/runner"
	"github.com/crimson-sun/spamcheck/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	level := cfg.Log.Level
	if level == "" {
		level = "info"
	}
	logging.Init(os.Stderr, cfg.Log.Format, logging.ParseLevel(level))
	gin.SetMode(gin.ReleaseMode)

	// Load artifacts once; requests share them read-only.
	r, err := runner.Load(runner.Paths{
		Vectorizer:       cfg.Artifacts.VectorizerPath,
		Classifier:       cfg.Artifacts.ClassifierPath,
		VectorizerSHA256: cfg.Artifacts.VectorizerSHA256,
		ClassifierSHA256: cfg.Artifacts.ClassifierSHA256,
		ONNXRuntimeLib:   cfg.Artifacts.ONNXRuntimeLib,
	})
	if err != nil {
		slog.Error("failed to load model", "error", err)
		return 3
	}
	defer r.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var c cache.Cache
	if cfg.Server.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.Server.RedisURL, cfg.Server.CacheTTL)
		if err != nil {
			// Serving uncached beats not serving.
			slog.Warn("prediction cache disabled", "error", err)
		} else {
			defer rc.Close()
			c = rc
		}
	}

	router, err := server.NewRouter(server.NewPredictHandler(r, c), cfg.Server.AllowOrigins)
	if err != nil {
		slog.Error("failed to build router", "error", err)
		return 1
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("spamcheck-server listening", "addr", cfg.Server.Addr, "fingerprint", r.Fingerprint())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			return 1
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return 1
		}
	}
	return 0
}
