package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ProviderGroq, cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.Agent.MaxToolIterations)
	assert.Equal(t, StoreMemory, cfg.Session.Backend)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown provider", func(c *Config) { c.LLM.Provider = "openrouter" }, "unknown provider"},
		{"zero iterations", func(c *Config) { c.Agent.MaxToolIterations = 0 }, "max_tool_iterations"},
		{"negative turn timeout", func(c *Config) { c.Agent.TurnTimeout = -time.Second }, "turn_timeout"},
		{"negative retries", func(c *Config) { c.Retry.MaxRetries = -1 }, "max_retries"},
		{"unknown store", func(c *Config) { c.Session.Backend = "redis" }, "session backend"},
		{"sqlite without path", func(c *Config) { c.Session.Backend = StoreSQLite; c.Session.Path = "" }, "session.path"},
		{"empty listen addr", func(c *Config) { c.WebUI.ListenAddr = "" }, "listen_addr"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestModelNameFallsBackToProviderDefault(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = ProviderAnthropic
	assert.Equal(t, "claude-sonnet-4-5", cfg.ModelName())

	cfg.LLM.Model = "claude-3-7-sonnet-20250219"
	assert.Equal(t, "claude-3-7-sonnet-20250219", cfg.ModelName())
}
