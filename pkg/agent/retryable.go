package agent

import (
	"context"

	"weatheragent/pkg/agent/llm"
	"weatheragent/pkg/logx"
	"weatheragent/pkg/resilience"
)

// RetryableClient wraps an llm.Client with the shared retry policy.
type RetryableClient struct {
	client llm.Client
	logger *logx.Logger
	config resilience.RetryConfig
}

// NewRetryableClient creates a retrying wrapper around an LLM client.
func NewRetryableClient(client llm.Client, config resilience.RetryConfig, logger *logx.Logger) *RetryableClient {
	return &RetryableClient{
		client: client,
		config: config,
		logger: logger,
	}
}

// Complete implements llm.Client with retry logic.
func (r *RetryableClient) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	var resp llm.CompletionResponse

	err := resilience.Do(ctx, r.logger, r.config, func(ctx context.Context) error {
		var callErr error
		resp, callErr = r.client.Complete(ctx, req)
		return callErr
	})
	if err != nil {
		return llm.CompletionResponse{}, err
	}
	return resp, nil
}

// GetModelName delegates to the underlying client.
func (r *RetryableClient) GetModelName() string {
	return r.client.GetModelName()
}
