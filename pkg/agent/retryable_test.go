package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatheragent/pkg/agent/llm"
	"weatheragent/pkg/llmerrors"
	"weatheragent/pkg/resilience"
)

func fastRetryConfig() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
		Jitter:        false,
	}
}

func TestRetryableClientRetriesAndReturnsResponse(t *testing.T) {
	mock := llm.NewMockClient(
		[]llm.CompletionResponse{{Content: "sunny"}},
		[]error{llmerrors.NewError(llmerrors.ErrorTypeTransient, "blip"), nil},
	)

	client := NewRetryableClient(mock, fastRetryConfig(), nil)
	resp, err := client.Complete(context.Background(), llm.NewCompletionRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, "sunny", resp.Content)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRetryableClientIdempotentRequest(t *testing.T) {
	mock := llm.NewMockClient(
		[]llm.CompletionResponse{{Content: "ok"}},
		[]error{
			llmerrors.NewError(llmerrors.ErrorTypeTransient, "blip"),
			llmerrors.NewError(llmerrors.ErrorTypeRateLimit, "429"),
			nil,
		},
	)

	req := llm.NewCompletionRequest([]llm.CompletionMessage{llm.NewUserMessage("weather in Paris")})
	client := NewRetryableClient(mock, fastRetryConfig(), nil)
	_, err := client.Complete(context.Background(), req)
	require.NoError(t, err)

	// Every attempt must carry the identical request.
	for _, got := range mock.Requests() {
		assert.Equal(t, req, got)
	}
}

func TestRetryableClientDelegatesModelName(t *testing.T) {
	mock := llm.NewMockClient(nil, nil)
	client := NewRetryableClient(mock, fastRetryConfig(), nil)
	assert.Equal(t, mock.GetModelName(), client.GetModelName())
}
