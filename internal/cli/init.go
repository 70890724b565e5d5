// Package cli provides common initialization shared by cmd/propctl and
// cmd/propmock.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"propmanager/internal/config"
	"propmanager/internal/credentials"
	"propmanager/internal/log"
	"propmanager/internal/storage"
)

// SetupLogger builds the process logger from LOG_LEVEL and installs it as
// the slog default. An unknown level falls back to info.
func SetupLogger(component, level string, out io.Writer) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Component = component
	if out != nil {
		cfg.Output = out
	}
	lvl, err := log.ParseLevel(level)
	cfg.Level = lvl
	logger := log.New(cfg)
	if err != nil {
		logger.Warn("Unknown log level, using info", log.FieldError, err)
	}
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenCredentialStore returns the store named by CREDENTIAL_BACKEND and a
// function releasing it.
func OpenCredentialStore(cfg *config.Config) (credentials.Store, func() error, error) {
	switch cfg.CredentialBackend {
	case "memory":
		return credentials.NewMemoryStore(), func() error { return nil }, nil
	case "sqlite":
		store, err := storage.NewSQLiteCredentialStore(cfg.CredentialsDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open credential store %s: %w", cfg.CredentialsDBPath, err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported credential backend: %s", cfg.CredentialBackend)
	}
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
