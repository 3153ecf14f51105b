package agent

import (
	"fmt"

	"weatheragent/pkg/agent/internal/llmimpl/anthropic"
	"weatheragent/pkg/agent/internal/llmimpl/google"
	"weatheragent/pkg/agent/internal/llmimpl/groq"
	"weatheragent/pkg/agent/internal/llmimpl/ollama"
	"weatheragent/pkg/agent/llm"
	"weatheragent/pkg/limiter"
	"weatheragent/pkg/logx"
	"weatheragent/pkg/resilience"
	"weatheragent/pkg/utils"
)

// Supported LLM providers.
const (
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderGoogle    = "google"
)

// NewLLMClient creates a provider client wrapped with the shared retry
// policy and, when maxTokensPerMinute is positive, a local token-bucket
// throttle.
func NewLLMClient(cfg llm.Config, retry resilience.RetryConfig, maxTokensPerMinute int) (llm.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var raw llm.Client
	switch cfg.Provider {
	case ProviderGroq:
		raw = groq.NewClientWithModel(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case ProviderAnthropic:
		raw = anthropic.NewClientWithModel(cfg.APIKey, cfg.Model)
	case ProviderOllama:
		raw = ollama.NewClientWithModel(cfg.BaseURL, cfg.Model)
	case ProviderGoogle:
		raw = google.NewClientWithModel(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	if maxTokensPerMinute > 0 {
		counter, err := utils.NewTokenCounter()
		if err != nil {
			counter = nil // Reserve on the character heuristic instead
		}
		bucket := limiter.NewLimiter(map[string]int{raw.GetModelName(): maxTokensPerMinute})
		raw = limiter.NewClient(raw, bucket, counter)
	}

	return NewRetryableClient(raw, retry, logx.NewLogger("llm")), nil
}
