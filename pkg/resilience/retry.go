// Package resilience provides bounded retry with exponential backoff, shared
// by the LLM client and the weather data client.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"weatheragent/pkg/llmerrors"
	"weatheragent/pkg/logx"
)

// RetryConfig defines configuration for retry behavior applied to errors that
// carry no type-specific configuration of their own.
type RetryConfig struct {
	MaxRetries    int           // Maximum number of retry attempts
	InitialDelay  time.Duration // Initial delay before first retry
	MaxDelay      time.Duration // Maximum delay between retries
	BackoffFactor float64       // Multiplier for exponential backoff
	Jitter        bool          // Add random jitter to prevent thundering herd
}

// DefaultRetryConfig provides reasonable defaults for retry behavior.
//
//nolint:gochecknoglobals
var DefaultRetryConfig = RetryConfig{
	MaxRetries:    3,
	InitialDelay:  100 * time.Millisecond,
	MaxDelay:      10 * time.Second,
	BackoffFactor: 2.0,
	Jitter:        true,
}

// Do runs op with bounded retry. Classified errors (llmerrors.Error) select
// their type-specific backoff schedule; unclassified errors use cfg.
// Non-retryable errors surface immediately. After exhausting the budget, the
// last error is wrapped in a ServiceUnavailable classification so callers can
// degrade instead of crash.
func Do(ctx context.Context, logger *logx.Logger, cfg RetryConfig, op func(context.Context) error) error {
	var lastErr error
	var retryConfig llmerrors.RetryConfig
	var errorType llmerrors.ErrorType

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			delay := delayForAttempt(attempt, retryConfig)
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		start := time.Now()
		err := op(ctx)
		if err == nil {
			if logger != nil && attempt > 0 {
				logger.Debug("Retry succeeded on attempt %d in %v", attempt+1, time.Since(start))
			}
			return nil
		}

		lastErr = err
		retryConfig, errorType = configForError(err, cfg)

		retryable := isRetryable(err)
		final := !retryable || attempt >= retryConfig.MaxRetries
		if logger != nil {
			logger.Debug("Attempt %d failed (%s, final=%v): %v", attempt+1, errorType.String(), final, err)
		}
		if final {
			if !retryable {
				return lastErr
			}
			break
		}
	}

	return llmerrors.NewServiceUnavailableError(lastErr, retryConfig.MaxRetries)
}

// isRetryable determines whether an error should be retried.
func isRetryable(err error) bool {
	// Context errors never retry; the caller has gone away or timed out.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var classified *llmerrors.Error
	if errors.As(err, &classified) {
		return classified.IsRetryable()
	}

	// Unclassified errors are not retried; providers are expected to classify.
	return false
}

// configForError returns the retry configuration appropriate for an error.
func configForError(err error, fallback RetryConfig) (llmerrors.RetryConfig, llmerrors.ErrorType) {
	var classified *llmerrors.Error
	if errors.As(err, &classified) {
		return classified.GetRetryConfig(), classified.Type
	}

	return llmerrors.RetryConfig{
		MaxRetries:    fallback.MaxRetries,
		InitialDelay:  fallback.InitialDelay,
		MaxDelay:      fallback.MaxDelay,
		BackoffFactor: fallback.BackoffFactor,
		Jitter:        fallback.Jitter,
	}, llmerrors.ErrorTypeUnknown
}

// delayForAttempt computes the backoff delay for the given retry attempt.
func delayForAttempt(attempt int, config llmerrors.RetryConfig) time.Duration {
	if attempt == 0 || config.InitialDelay <= 0 {
		return 0
	}

	delay := time.Duration(float64(config.InitialDelay) * math.Pow(config.BackoffFactor, float64(attempt-1)))
	if delay > config.MaxDelay {
		delay = config.MaxDelay
	}

	if config.Jitter {
		jitterFactor := (2*time.Now().UnixNano()%2 - 1) // -1 or 1
		jitter := time.Duration(float64(delay) * 0.1 * float64(jitterFactor))
		delay += jitter
		if delay < 0 {
			delay = config.InitialDelay
		}
	}

	return delay
}
