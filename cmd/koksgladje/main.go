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

	"github.com/joho/godotenv"

	"koksgladje/internal/config"
	"koksgladje/internal/facts"
	apphttp "koksgladje/internal/http"
	applog "koksgladje/internal/log"
	"koksgladje/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Open the sales database read-only
	db, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		var notFound *storage.NotFoundError
		if errors.As(err, &notFound) {
			logger.Error("Sales database missing", "db_path", notFound.Path)
		} else {
			logger.Error("Failed to open sales database", "error", err, "db_path", cfg.SQLiteDBPath)
		}
		os.Exit(1)
	}
	defer db.Close()

	repo := facts.NewRepository(db, cfg.CacheTTL)

	srv := apphttp.NewServer(":"+cfg.Port, repo, cfg.HeatmapMonths, logger)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	logger.Info("Starting koksgladje server",
		"port", cfg.Port,
		"db_path", cfg.SQLiteDBPath,
		"cache_ttl", cfg.CacheTTL.String())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
