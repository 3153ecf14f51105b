// Package config provides configuration loading and validation for the
// weather agent: a YAML config file, environment variable overlay, and an
// encrypted secrets file for provider API keys.
package config

import (
	"fmt"
	"time"
)

// Provider name constants.
const (
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderGoogle    = "google"
)

// Default model per provider, used when the config file leaves the model
// unset.
//
//nolint:gochecknoglobals // Intentional global for static model registry
var DefaultModels = map[string]string{
	ProviderGroq:      "meta-llama/llama-4-scout-17b-16e-instruct",
	ProviderAnthropic: "claude-sonnet-4-5",
	ProviderOllama:    "llama3.2",
	ProviderGoogle:    "gemini-2.0-flash",
}

// APIKeyEnvVars maps providers to the environment variable holding their key.
//
//nolint:gochecknoglobals // Intentional global for static env var registry
var APIKeyEnvVars = map[string]string{
	ProviderGroq:      "GROQ_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGoogle:    "GEMINI_API_KEY",
}

// Session store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// LLMConfig selects the provider and model for both decision and synthesis
// calls.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"` // Endpoint override (ollama host, Groq-compatible gateway)
	// MaxTokensPerMinute throttles outbound completion traffic; zero disables
	// the limiter.
	MaxTokensPerMinute int `yaml:"max_tokens_per_minute"`
}

// RetryConfig tunes the backoff loop wrapped around outbound calls.
type RetryConfig struct {
	MaxRetries   int           `yaml:"max_retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// AgentConfig bounds a single conversational turn.
type AgentConfig struct {
	MaxToolIterations  int           `yaml:"max_tool_iterations"`
	TurnTimeout        time.Duration `yaml:"turn_timeout"`
	HistoryTokenBudget int           `yaml:"history_token_budget"`
}

// SessionConfig selects and tunes the session store.
type SessionConfig struct {
	Backend string        `yaml:"backend"` // "memory" or "sqlite"
	Path    string        `yaml:"path"`    // SQLite database path
	TTL     time.Duration `yaml:"ttl"`     // Idle eviction; zero disables the sweeper
}

// WeatherConfig points the weather client at its upstream services. Empty
// URLs fall back to the public Nominatim and Open-Meteo endpoints.
type WeatherConfig struct {
	GeocodeURL  string        `yaml:"geocode_url"`
	ForecastURL string        `yaml:"forecast_url"`
	Timeout     time.Duration `yaml:"timeout"`
}

// WebUIConfig configures the HTTP surface.
type WebUIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// PrometheusURL enables the usage summary endpoint when set.
	PrometheusURL string `yaml:"prometheus_url"`
}

// Config is the root configuration for the weather agent process.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Retry   RetryConfig   `yaml:"retry"`
	Agent   AgentConfig   `yaml:"agent"`
	Session SessionConfig `yaml:"session"`
	Weather WeatherConfig `yaml:"weather"`
	WebUI   WebUIConfig   `yaml:"webui"`
}

// Default returns a config with every field set to its default value.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: ProviderGroq,
		},
		Retry: RetryConfig{
			MaxRetries:   3,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     10 * time.Second,
		},
		Agent: AgentConfig{
			MaxToolIterations:  3,
			TurnTimeout:        2 * time.Minute,
			HistoryTokenBudget: 24000,
		},
		Session: SessionConfig{
			Backend: StoreMemory,
			Path:    "sessions.db",
			TTL:     30 * time.Minute,
		},
		Weather: WeatherConfig{
			Timeout: 30 * time.Second,
		},
		WebUI: WebUIConfig{
			ListenAddr: ":8080",
		},
	}
}

// Validate checks the config for internally consistent values. It does not
// verify that API keys are present; key resolution happens at client
// construction so the ollama provider can run keyless.
func (c *Config) Validate() error {
	if _, ok := DefaultModels[c.LLM.Provider]; !ok {
		return fmt.Errorf("unknown provider %q (expected one of groq, anthropic, ollama, google)", c.LLM.Provider)
	}
	if c.Agent.MaxToolIterations < 1 {
		return fmt.Errorf("agent.max_tool_iterations must be at least 1, got %d", c.Agent.MaxToolIterations)
	}
	if c.Agent.TurnTimeout <= 0 {
		return fmt.Errorf("agent.turn_timeout must be positive, got %s", c.Agent.TurnTimeout)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries cannot be negative, got %d", c.Retry.MaxRetries)
	}
	switch c.Session.Backend {
	case StoreMemory:
	case StoreSQLite:
		if c.Session.Path == "" {
			return fmt.Errorf("session.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q (expected memory or sqlite)", c.Session.Backend)
	}
	if c.WebUI.ListenAddr == "" {
		return fmt.Errorf("webui.listen_addr cannot be empty")
	}
	return nil
}

// ModelName returns the configured model, falling back to the provider
// default.
func (c *Config) ModelName() string {
	if c.LLM.Model != "" {
		return c.LLM.Model
	}
	return DefaultModels[c.LLM.Provider]
}
