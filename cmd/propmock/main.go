package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"propmanager/internal/cli"
	"propmanager/internal/core"
	"propmanager/internal/gateway/memory"
	apphttp "propmanager/internal/http"
	"propmanager/internal/log"
	"propmanager/internal/middleware/ratelimit"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err == nil {
		err = cfg.ValidateMock()
	}
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration error", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger("propmock", cfg.LogLevel, os.Stdout)

	gw := memory.NewSeeded(memory.Options{
		Policy:    core.StatusPolicy{RevertOnTenantRemoval: cfg.MockRevertOnTenantRemoval},
		JWTSecret: cfg.MockJWTSecret,
		TokenTTL:  cfg.MockTokenTTL,
	})
	if cfg.MockDemoEmail != "" {
		if _, err := gw.AddUser(cfg.MockDemoEmail, cfg.MockDemoPassword, "Demo User"); err != nil {
			logger.Error("Failed to create demo account", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Demo account ready", "email", cfg.MockDemoEmail)
	}

	limits := ratelimit.DefaultConfig()
	srv := apphttp.NewServer(":"+cfg.MockPort, gw, apphttp.Options{
		Logger:    logger,
		RateLimit: &limits,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting mock API", "port", cfg.MockPort, "revert_on_tenant_removal", cfg.MockRevertOnTenantRemoval)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.MockPort)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
