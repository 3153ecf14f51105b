package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names recognized by the overlay. Each one, when set
// and non-empty, overrides the corresponding file value.
const (
	envProvider    = "WEATHERAGENT_PROVIDER"
	envModel       = "WEATHERAGENT_MODEL"
	envBaseURL     = "WEATHERAGENT_BASE_URL"
	envListenAddr  = "WEATHERAGENT_LISTEN_ADDR"
	envStore       = "WEATHERAGENT_SESSION_BACKEND"
	envStorePath   = "WEATHERAGENT_SESSION_PATH"
	envSessionTTL  = "WEATHERAGENT_SESSION_TTL"
	envMaxIter     = "WEATHERAGENT_MAX_TOOL_ITERATIONS"
	envTurnTimeout = "WEATHERAGENT_TURN_TIMEOUT"
	envTokenBudget = "WEATHERAGENT_HISTORY_TOKEN_BUDGET"
	envGeocodeURL  = "WEATHERAGENT_GEOCODE_URL"
	envForecastURL = "WEATHERAGENT_FORECAST_URL"
)

// Load reads the YAML config file at path, applies the environment overlay,
// and validates the result. A missing file is not an error; defaults plus the
// environment are used instead. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults + environment only.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := applyEnvOverlay(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnvOverlay(cfg *Config) error {
	setString(envProvider, &cfg.LLM.Provider)
	setString(envModel, &cfg.LLM.Model)
	setString(envBaseURL, &cfg.LLM.BaseURL)
	setString(envListenAddr, &cfg.WebUI.ListenAddr)
	setString(envStore, &cfg.Session.Backend)
	setString(envStorePath, &cfg.Session.Path)
	setString(envGeocodeURL, &cfg.Weather.GeocodeURL)
	setString(envForecastURL, &cfg.Weather.ForecastURL)

	if err := setInt(envMaxIter, &cfg.Agent.MaxToolIterations); err != nil {
		return err
	}
	if err := setInt(envTokenBudget, &cfg.Agent.HistoryTokenBudget); err != nil {
		return err
	}
	if err := setDuration(envTurnTimeout, &cfg.Agent.TurnTimeout); err != nil {
		return err
	}
	if err := setDuration(envSessionTTL, &cfg.Session.TTL); err != nil {
		return err
	}
	return nil
}

func setString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func setInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", name, err)
	}
	*dst = n
	return nil
}

func setDuration(name string, dst *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", name, err)
	}
	*dst = d
	return nil
}
