package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatheragent/pkg/llmerrors"
)

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
		Jitter:        false,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, fastConfig(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, fastConfig(), func(context.Context) error {
		calls++
		if calls < 3 {
			return llmerrors.NewError(llmerrors.ErrorTypeTransient, "connection reset")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoAuthErrorFailsFast(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, fastConfig(), func(context.Context) error {
		calls++
		return llmerrors.NewErrorWithStatus(llmerrors.ErrorTypeAuth, 401, "invalid api key")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, llmerrors.ErrorTypeAuth, llmerrors.TypeOf(err))
}

func TestDoExhaustionWrapsServiceUnavailable(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, fastConfig(), func(context.Context) error {
		calls++
		return llmerrors.NewError(llmerrors.ErrorTypeTransient, "upstream 503")
	})
	require.Error(t, err)
	assert.True(t, llmerrors.IsServiceUnavailable(err))
	// Transient errors carry their own budget of 4 retries.
	assert.Equal(t, llmerrors.DefaultTransientRetries+1, calls)
}

func TestDoUnclassifiedErrorNotRetried(t *testing.T) {
	calls := 0
	wantErr := errors.New("plain failure")
	err := Do(context.Background(), nil, fastConfig(), func(context.Context) error {
		calls++
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
}

func TestDoContextCancelledStopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, nil, fastConfig(), func(context.Context) error {
		calls++
		cancel()
		return llmerrors.NewError(llmerrors.ErrorTypeTransient, "flaky")
	})
	require.Error(t, err)
	assert.LessOrEqual(t, calls, 2)
}
