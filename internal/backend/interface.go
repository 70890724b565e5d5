package backend

import (
	"context"
	"time"

	"propmanager/internal/credentials"
	"propmanager/internal/gateway"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the gateway instance and optional cleanup function
type BackendResult struct {
	Gateway gateway.Gateway
	Cleanup CleanupFunc
}

// Factory creates gateways based on configuration
type Factory interface {
	// CreateBackend creates a gateway bound to session. The http backend
	// reads the bearer token from it; the memory backend ignores it.
	CreateBackend(ctx context.Context, config Config, session *credentials.Session) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// HTTP specific
	BaseURL        string
	Timeout        time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	// Memory specific
	RevertOnTenantRemoval bool
	DemoEmail             string
	DemoPassword          string
}

// BackendType represents the type of backend
type BackendType string

const (
	HTTPBackend   BackendType = "http"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case HTTPBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
