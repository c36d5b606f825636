package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forkintheroad/fitr-admin/internal/api"
	"github.com/forkintheroad/fitr-admin/internal/config"
	"github.com/forkintheroad/fitr-admin/internal/database"
	"github.com/forkintheroad/fitr-admin/internal/metrics"
	"github.com/forkintheroad/fitr-admin/internal/notify"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting fitr admin API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("version", version),
		slog.String("alert_store", cfg.AlertStore),
		slog.String("settings_store", cfg.SettingsStore),
		slog.String("email_provider", cfg.EmailProvider),
	)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	sender, err := notify.NewSender(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create email sender: %w", err)
	}

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		Config:  cfg,
		DB:      pool,
		Sender:  sender,
		Metrics: metrics.New(),
		Version: version,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")

	return nil
}
