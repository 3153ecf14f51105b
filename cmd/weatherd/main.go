// Command weatherd runs the weather agent HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"weatheragent/pkg/agent"
	"weatheragent/pkg/agent/llm"
	"weatheragent/pkg/config"
	"weatheragent/pkg/logx"
	"weatheragent/pkg/metrics"
	"weatheragent/pkg/resilience"
	"weatheragent/pkg/session"
	"weatheragent/pkg/tools"
	"weatheragent/pkg/version"
	"weatheragent/pkg/weather"
	"weatheragent/pkg/webui"
)

func main() {
	var (
		configPath  = flag.String("config", "config.yaml", "Path to YAML config file")
		listenAddr  = flag.String("listen", "", "Listen address override")
		configDir   = flag.String("configdir", ".", "Directory holding the encrypted secrets file")
		debug       = flag.Bool("debug", false, "Enable debug logging")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("weatherd %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
		os.Exit(0)
	}

	if *debug {
		logx.SetDebug(true)
	}

	os.Exit(run(*configPath, *listenAddr, *configDir))
}

// run contains the main application logic and returns an exit code.
// This allows defers to execute before os.Exit is called.
func run(configPath, listenAddr, configDir string) int {
	logger := logx.NewLogger("weatherd")

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if listenAddr != "" {
		cfg.WebUI.ListenAddr = listenAddr
	}

	if err := loadSecrets(configDir); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load secrets: %v\n", err)
		return 1
	}

	apiKey, err := resolveAPIKey(cfg.LLM.Provider)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	retryCfg := resilience.DefaultRetryConfig
	retryCfg.MaxRetries = cfg.Retry.MaxRetries
	if cfg.Retry.InitialDelay > 0 {
		retryCfg.InitialDelay = cfg.Retry.InitialDelay
	}
	if cfg.Retry.MaxDelay > 0 {
		retryCfg.MaxDelay = cfg.Retry.MaxDelay
	}

	client, err := agent.NewLLMClient(llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   apiKey,
		Model:    cfg.ModelName(),
		BaseURL:  cfg.LLM.BaseURL,
	}, retryCfg, cfg.LLM.MaxTokensPerMinute)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create LLM client: %v\n", err)
		return 1
	}

	recorder := metrics.NewPrometheusRecorder()

	weatherCfg := weather.DefaultConfig()
	weatherCfg.Recorder = recorder
	if cfg.Weather.GeocodeURL != "" {
		weatherCfg.GeocodeURL = cfg.Weather.GeocodeURL
	}
	if cfg.Weather.ForecastURL != "" {
		weatherCfg.ForecastURL = cfg.Weather.ForecastURL
	}
	if cfg.Weather.Timeout > 0 {
		weatherCfg.Timeout = cfg.Weather.Timeout
	}
	weatherClient := weather.NewClient(weatherCfg)

	registry := tools.NewRegistry()
	for _, tool := range []tools.Tool{
		tools.NewWeatherLookupTool(weatherClient),
		tools.NewGetCoordinatesTool(weatherClient),
		tools.NewParseDateTool(),
	} {
		if err := registry.Register(tool); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to register tool: %v\n", err)
			return 1
		}
	}

	store, err := newStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session store: %v\n", err)
		return 1
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("Session store close failed: %v", closeErr)
		}
	}()

	orchestrator := agent.NewOrchestrator(client, registry, store, recorder, agent.Config{
		MaxToolIterations:  cfg.Agent.MaxToolIterations,
		TurnTimeout:        cfg.Agent.TurnTimeout,
		HistoryTokenBudget: cfg.Agent.HistoryTokenBudget,
	})

	var usage *metrics.QueryService
	if cfg.WebUI.PrometheusURL != "" {
		usage, err = metrics.NewQueryService(cfg.WebUI.PrometheusURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create usage query service: %v\n", err)
			return 1
		}
	}

	mux := http.NewServeMux()
	webui.NewServer(orchestrator, registry, weatherClient, usage).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.WebUI.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s (provider %s, model %s)", cfg.WebUI.ListenAddr, cfg.LLM.Provider, cfg.ModelName())
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Received signal %v, shutting down", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			return 1
		}
		return 0
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Graceful shutdown failed: %v", err)
		return 1
	}
	logger.Info("Shutdown complete")
	return 0
}

func newStore(cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Backend {
	case config.StoreSQLite:
		return session.NewSQLiteStore(cfg.Session.Path)
	default:
		return session.NewMemoryStore(cfg.Session.TTL), nil
	}
}

// loadSecrets decrypts the secrets file when one exists, prompting for the
// password on an attached terminal.
func loadSecrets(configDir string) error {
	if !config.SecretsFileExists(configDir) {
		return nil
	}
	if !term.IsTerminal(syscall.Stdin) {
		// Headless run; fall back to environment variables for keys.
		return nil
	}

	fmt.Print("Enter the secrets file password: ")
	password, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	defer func() {
		for i := range password {
			password[i] = 0
		}
	}()

	secrets, err := config.DecryptSecretsFile(configDir, string(password))
	if err != nil {
		return err
	}
	config.SetDecryptedSecrets(secrets)
	return nil
}

// resolveAPIKey finds the provider API key, prompting interactively as a
// last resort.
func resolveAPIKey(provider string) (string, error) {
	key, err := config.ResolveAPIKey(provider)
	if err == nil {
		return key, nil
	}

	if !term.IsTerminal(syscall.Stdin) {
		return "", err
	}

	envVar := config.APIKeyEnvVars[provider]
	fmt.Printf("Enter %s for provider %s: ", envVar, provider)
	entered, readErr := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if readErr != nil {
		return "", fmt.Errorf("failed to read API key: %w", readErr)
	}
	if len(entered) == 0 {
		return "", err
	}

	key = string(entered)
	config.SetSecret(envVar, key)
	return key, nil
}
