package limiter

import (
	"context"

	"weatheragent/pkg/agent/llm"
	"weatheragent/pkg/llmerrors"
	"weatheragent/pkg/utils"
)

// Client wraps an llm.Client with token-bucket throttling. Reservation
// failures surface as classified rate-limit errors so the retry layer backs
// off instead of failing the turn.
type Client struct {
	inner   llm.Client
	limiter *Limiter
	counter *utils.TokenCounter
}

// NewClient creates a throttled client. The counter may be nil; estimation
// then falls back to a character heuristic.
func NewClient(inner llm.Client, limiter *Limiter, counter *utils.TokenCounter) *Client {
	return &Client{
		inner:   inner,
		limiter: limiter,
		counter: counter,
	}
}

// Complete reserves the estimated token cost before delegating.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	cost := c.estimateTokens(req)
	if err := c.limiter.Reserve(c.inner.GetModelName(), cost); err != nil {
		return llm.CompletionResponse{}, &llmerrors.Error{
			Type:    llmerrors.ErrorTypeRateLimit,
			Err:     err,
			Message: "local token budget exhausted",
		}
	}
	return c.inner.Complete(ctx, req)
}

// GetModelName returns the underlying model name.
func (c *Client) GetModelName() string {
	return c.inner.GetModelName()
}

// estimateTokens approximates the cost of a request as the prompt tokens
// plus the reply budget.
func (c *Client) estimateTokens(req llm.CompletionRequest) int {
	total := req.MaxTokens
	for i := range req.Messages {
		if c.counter != nil {
			total += c.counter.CountTokens(req.Messages[i].Content)
		} else {
			total += len(req.Messages[i].Content) / 4
		}
	}
	return total
}
