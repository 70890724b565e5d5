package backend

import (
	"fmt"

	"propmanager/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		BaseURL:        appConfig.APIBaseURL,
		Timeout:        appConfig.RequestTimeout,
		RateLimitRPS:   appConfig.RateLimitRPS,
		RateLimitBurst: appConfig.RateLimitBurst,

		RevertOnTenantRemoval: appConfig.MockRevertOnTenantRemoval,
		DemoEmail:             appConfig.MockDemoEmail,
		DemoPassword:          appConfig.MockDemoPassword,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case HTTPBackend:
		if c.BaseURL == "" {
			return fmt.Errorf("API base URL is required for http backend")
		}
		if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
			return fmt.Errorf("rate limit burst must be at least 1 when rate limiting is enabled")
		}
	case MemoryBackend:
		// Memory backend seeds itself
	}

	return nil
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	return []string{HTTPBackend.String(), MemoryBackend.String()}
}
