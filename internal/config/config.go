package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Remote API
	APIBaseURL     string
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	// Backend selection
	DataBackend       string
	CredentialBackend string
	CredentialsDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Dashboard
	RefreshInterval time.Duration

	// Google Sheets report export
	GoogleSpreadsheetID string
	GoogleReportSheet   string

	LogLevel string

	// Mock backend
	MockPort                  string
	MockJWTSecret             string
	MockTokenTTL              time.Duration
	MockRevertOnTenantRemoval bool
	MockDemoEmail             string
	MockDemoPassword          string
}

var (
	dataBackends       = []string{"http", "memory"}
	credentialBackends = []string{"sqlite", "memory"}
	logLevels          = []string{"debug", "info", "warn", "warning", "error"}
)

func Load() *Config {
	cfg := &Config{
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:5000"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 5),

		DataBackend:       getEnv("DATA_BACKEND", "http"),
		CredentialBackend: getEnv("CREDENTIAL_BACKEND", "sqlite"),
		CredentialsDBPath: getEnv("CREDENTIALS_DB_PATH", defaultCredentialsPath()),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "propmanager"),
		AMQPQueue:    getEnv("AMQP_QUEUE", ""),

		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 30*time.Second),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleReportSheet:   getEnv("GOOGLE_REPORT_SHEET", "Report"),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		MockPort:                  getEnv("MOCK_PORT", "5000"),
		MockJWTSecret:             getEnv("MOCK_JWT_SECRET", "propmanager-dev-secret"),
		MockTokenTTL:              getEnvDuration("MOCK_TOKEN_TTL", 24*time.Hour),
		MockRevertOnTenantRemoval: getEnvBool("MOCK_REVERT_ON_TENANT_REMOVAL", false),
		MockDemoEmail:             getEnv("MOCK_DEMO_EMAIL", "demo@example.com"),
		MockDemoPassword:          getEnv("MOCK_DEMO_PASSWORD", "demo"),
	}

	return cfg
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./data/credentials.db"
	}
	return filepath.Join(dir, "propmanager", "credentials.db")
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(dataBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, dataBackends))
	}
	if !slices.Contains(credentialBackends, c.CredentialBackend) {
		errors = append(errors, fmt.Sprintf("invalid credential backend '%s': must be one of %v", c.CredentialBackend, credentialBackends))
	}

	if c.DataBackend == "http" {
		if u, err := url.Parse(c.APIBaseURL); err != nil || c.APIBaseURL == "" {
			errors = append(errors, fmt.Sprintf("invalid API base URL '%s'", c.APIBaseURL))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
	}

	if c.CredentialBackend == "sqlite" && c.CredentialsDBPath == "" {
		errors = append(errors, "credentials database path cannot be empty when using sqlite credential backend")
	}

	if c.RequestTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at least 100ms", c.RequestTimeout))
	} else if c.RequestTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at most 5 minutes", c.RequestTimeout))
	}

	if c.RateLimitRPS < 0 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %v: must not be negative", c.RateLimitRPS))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit burst %d: must be at least 1", c.RateLimitBurst))
	}

	if c.RefreshInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at least 1 second", c.RefreshInterval))
	} else if c.RefreshInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at most 24 hours", c.RefreshInterval))
	}

	// AMQP is optional; an empty URL disables change events.
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, logLevels[:4]))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateMock checks the settings the mock backend needs on top of Validate.
func (c *Config) ValidateMock() error {
	var errors []string

	if port, err := strconv.Atoi(c.MockPort); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.MockPort))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if len(c.MockJWTSecret) < 16 {
		errors = append(errors, "MOCK_JWT_SECRET must be at least 16 characters")
	}
	if c.MockTokenTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.MockTokenTTL))
	}
	if (c.MockDemoEmail == "") != (c.MockDemoPassword == "") {
		errors = append(errors, "MOCK_DEMO_EMAIL and MOCK_DEMO_PASSWORD must be set together")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
