package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ETRANSLATION_APPLICATION_NAME", "TestApp")
	t.Setenv("ETRANSLATION_EMAIL", "test@example.com")
	t.Setenv("ETRANSLATION_API_PASSWORD", "secret")
}

func TestNewFromEnvDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "TestApp", cfg.Provider.ApplicationName)
	assert.Equal(t, defaultRESTURL, cfg.Provider.RESTURL)
	assert.Equal(t, 30, cfg.Provider.TimeoutSeconds)
	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "0 0 * * *", cfg.Sweep.CronExpr)
	assert.Equal(t, 24, cfg.Sweep.MaxAgeHours)
}

func TestNewFromEnvMissingCredentials(t *testing.T) {
	t.Setenv("ETRANSLATION_APPLICATION_NAME", "")
	t.Setenv("ETRANSLATION_EMAIL", "")
	t.Setenv("ETRANSLATION_API_PASSWORD", "")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ETRANSLATION_APPLICATION_NAME")
}

func TestNewFromEnvTrimsProductionURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PRODUCTION_URL", "https://translate.example.com/")

	cfg, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://translate.example.com", cfg.Server.ProductionURL)
}

func TestNewFromEnvInvalidCron(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SWEEP_CRON", "every day at noon")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SWEEP_CRON")
}

func TestNewFromEnvOptions(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := NewFromEnv(func(c *Config) {
		c.Server.Port = 8080
	})
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}
