package llmerrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil, "anything"))
}

func TestClassifyPassThrough(t *testing.T) {
	original := NewErrorWithStatus(ErrorTypeAuth, 401, "bad key")
	wrapped := fmt.Errorf("calling provider: %w", original)

	got := Classify(wrapped, "outer message")
	assert.Same(t, original, got)
}

func TestClassifyContextErrors(t *testing.T) {
	got := Classify(context.DeadlineExceeded, "call")
	assert.Equal(t, ErrorTypeTransient, got.Type)

	got = Classify(context.Canceled, "call")
	assert.Equal(t, ErrorTypeTransient, got.Type)
}

func TestClassifyByStatusCode(t *testing.T) {
	cases := []struct {
		err  string
		want ErrorType
	}{
		{"request failed with status code: 401", ErrorTypeAuth},
		{"request failed with status code: 403", ErrorTypeAuth},
		{"upstream returned status: 429", ErrorTypeRateLimit},
		{"got http 500 from server", ErrorTypeTransient},
		{"got http 503 from server", ErrorTypeTransient},
		{"rejected with status code: 400", ErrorTypeBadPrompt},
		{"rejected with status code: 422", ErrorTypeBadPrompt},
	}

	for _, tc := range cases {
		t.Run(tc.err, func(t *testing.T) {
			got := Classify(errors.New(tc.err), "call failed")
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got.Type, "for %q", tc.err)
		})
	}
}

func TestClassifyByMessagePattern(t *testing.T) {
	cases := []struct {
		err  string
		want ErrorType
	}{
		{"dial tcp: connection refused", ErrorTypeTransient},
		{"unexpected EOF", ErrorTypeTransient},
		{"client timeout exceeded", ErrorTypeTransient},
		{"rate exceeded, slow down", ErrorTypeRateLimit},
		{"quota exhausted for project", ErrorTypeRateLimit},
		{"model is overloaded", ErrorTypeRateLimit},
		{"invalid api key provided", ErrorTypeAuth},
		{"completely novel failure", ErrorTypeUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.err, func(t *testing.T) {
			got := Classify(errors.New(tc.err), "call failed")
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got.Type, "for %q", tc.err)
		})
	}
}

func TestRetryabilityByType(t *testing.T) {
	assert.True(t, NewError(ErrorTypeTransient, "t").IsRetryable())
	assert.True(t, NewError(ErrorTypeRateLimit, "r").IsRetryable())
	assert.True(t, NewError(ErrorTypeEmptyResponse, "e").IsRetryable())
	assert.False(t, NewError(ErrorTypeAuth, "a").IsRetryable())
	assert.False(t, NewError(ErrorTypeBadPrompt, "b").IsRetryable())
	assert.False(t, NewError(ErrorTypeServiceUnavailable, "s").IsRetryable())
}

func TestClassifiedErrorUnwraps(t *testing.T) {
	cause := errors.New("root cause")
	classified := Classify(fmt.Errorf("wrapped: %w", cause), "call")
	assert.ErrorIs(t, classified, cause)
}
