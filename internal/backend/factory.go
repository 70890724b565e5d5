package backend

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"propmanager/internal/core"
	"propmanager/internal/credentials"
	"propmanager/internal/gateway/memory"
	"propmanager/internal/gateway/rest"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config, session *credentials.Session) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case HTTPBackend:
		return f.createHTTPBackend(ctx, config, session)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createHTTPBackend(ctx context.Context, config Config, session *credentials.Session) (*BackendResult, error) {
	var limiter *rate.Limiter
	if config.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimitRPS), config.RateLimitBurst)
	}

	client, err := rest.New(session, rest.Options{
		BaseURL: config.BaseURL,
		Timeout: config.Timeout,
		Limiter: limiter,
		Logger:  f.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize REST client: %w", err)
	}

	f.logger.DebugContext(ctx, "Initialized HTTP backend",
		"base_url", config.BaseURL,
		"timeout", config.Timeout,
		"rate_limited", limiter != nil)

	return &BackendResult{
		Gateway: client,
		Cleanup: nil, // Connections are pooled by net/http
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	gw := memory.NewSeeded(memory.Options{
		Policy: core.StatusPolicy{RevertOnTenantRemoval: config.RevertOnTenantRemoval},
	})

	if config.DemoEmail != "" {
		if _, err := gw.AddUser(config.DemoEmail, config.DemoPassword, "Demo User"); err != nil {
			return nil, fmt.Errorf("failed to seed demo user: %w", err)
		}
	}

	f.logger.DebugContext(ctx, "Initialized memory backend", "demo_user", config.DemoEmail)

	return &BackendResult{
		Gateway: gw,
		Cleanup: nil, // No cleanup needed for memory backend
	}, nil
}
