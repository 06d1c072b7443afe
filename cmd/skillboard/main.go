package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"skillboard/internal/config"
	apphttp "skillboard/internal/http"
	applog "skillboard/internal/log"
	"skillboard/internal/platform"
	"skillboard/internal/platform/auth"
	"skillboard/internal/platform/graphql"
	"skillboard/internal/session"
)

func main() {
	// Load .env for local development (ignore errors in production/docker).
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	sessions, err := session.NewStore(cfg.SQLiteDBPath, cfg.SessionTTL)
	if err != nil {
		logger.Error("Failed to initialize session store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sessions.Close()

	httpc := &http.Client{Timeout: cfg.RequestTimeout}
	facade := platform.NewService(graphql.NewClient(cfg.GraphQLEndpoint(), httpc))
	authc := auth.NewClient(cfg.SigninEndpoint(), httpc)

	srv := apphttp.NewServer(":"+cfg.Port, authc, facade, sessions, apphttp.Options{
		SessionTTL:      cfg.SessionTTL,
		LoginRateLimit:  cfg.LoginRateLimit,
		LoginRateWindow: cfg.LoginRateWindow,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Expired sessions are swept in the background for the process lifetime.
	go sessions.Sweep(ctx, cfg.SweepInterval)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting skillboard server", "port", cfg.Port, "platform", cfg.PlatformBaseURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
