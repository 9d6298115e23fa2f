package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

// Config holds all application configuration, loaded from environment
// variables with sensible defaults.
//
// Environment Variables:
// Provider Configuration:
// - ETRANSLATION_APPLICATION_NAME: registered application name (required)
// - ETRANSLATION_EMAIL: registered contact email (required)
// - ETRANSLATION_API_PASSWORD: API password for digest auth (required)
// - ETRANSLATION_REST_URL: REST endpoint (default: official EU endpoint)
// - SUBMIT_TIMEOUT_SECONDS: outbound submission timeout (default: 30)
//
// Callback Configuration:
// - PRODUCTION_URL: externally reachable base URL for callback construction;
//   when unset, the callback URL is derived from the inbound request and the
//   provider may be unable to reach it
//
// Server Configuration:
// - PORT: listen port (default: 5001)
// - LOG_LEVEL: debug|info|warn|error (default: info)
//
// Sweep Configuration:
// - SWEEP_CRON: schedule for the age-based store sweep (default: "0 0 * * *")
// - SWEEP_MAX_AGE_HOURS: job retention before eviction (default: 24)

type Config struct {
	Provider ProviderConfig `json:"provider"`
	Server   ServerConfig   `json:"server"`
	Sweep    SweepConfig    `json:"sweep"`
}

// ProviderConfig holds credentials and endpoint for the remote translation
// provider.
type ProviderConfig struct {
	ApplicationName string `json:"application_name"`
	Email           string `json:"email"`
	APIPassword     string `json:"-"`
	RESTURL         string `json:"rest_url"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
}

// ServerConfig holds the HTTP listener and callback settings.
type ServerConfig struct {
	Port          int    `json:"port"`
	ProductionURL string `json:"production_url"`
	LogLevel      string `json:"log_level"`
}

// SweepConfig holds the age-based eviction settings.
type SweepConfig struct {
	CronExpr    string `json:"cron_expr"`
	MaxAgeHours int    `json:"max_age_hours"`
}

const defaultRESTURL = "https://webgate.ec.europa.eu/etranslation/si/translate"

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment
// variables and options.
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		Provider: ProviderConfig{
			ApplicationName: getEnvString("ETRANSLATION_APPLICATION_NAME", ""),
			Email:           getEnvString("ETRANSLATION_EMAIL", ""),
			APIPassword:     getEnvString("ETRANSLATION_API_PASSWORD", ""),
			RESTURL:         getEnvString("ETRANSLATION_REST_URL", defaultRESTURL),
			TimeoutSeconds:  getEnvInt("SUBMIT_TIMEOUT_SECONDS", 30),
		},
		Server: ServerConfig{
			Port:          getEnvInt("PORT", 5001),
			ProductionURL: strings.TrimRight(getEnvString("PRODUCTION_URL", ""), "/"),
			LogLevel:      getEnvString("LOG_LEVEL", "info"),
		},
		Sweep: SweepConfig{
			CronExpr:    getEnvString("SWEEP_CRON", "0 0 * * *"),
			MaxAgeHours: getEnvInt("SWEEP_MAX_AGE_HOURS", 24),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set. The process
// must refuse to start without provider credentials.
func (c *Config) validate() error {
	if c.Provider.ApplicationName == "" {
		return fmt.Errorf("ETRANSLATION_APPLICATION_NAME is required")
	}
	if c.Provider.Email == "" {
		return fmt.Errorf("ETRANSLATION_EMAIL is required")
	}
	if c.Provider.APIPassword == "" {
		return fmt.Errorf("ETRANSLATION_API_PASSWORD is required")
	}
	if c.Provider.TimeoutSeconds <= 0 {
		return fmt.Errorf("SUBMIT_TIMEOUT_SECONDS must be positive")
	}
	if c.Sweep.MaxAgeHours <= 0 {
		return fmt.Errorf("SWEEP_MAX_AGE_HOURS must be positive")
	}
	if _, err := cron.ParseStandard(c.Sweep.CronExpr); err != nil {
		return fmt.Errorf("invalid SWEEP_CRON: %w", err)
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
