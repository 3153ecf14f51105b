// Package limiter provides token-bucket rate limiting for LLM API calls.
package limiter

import (
	"fmt"
	"sync"
	"time"
)

// ErrRateLimit is returned when token rate limits are exceeded.
var ErrRateLimit = fmt.Errorf("rate limit exceeded")

// Limiter manages rate limiting across multiple LLM models.
type Limiter struct {
	models map[string]*ModelLimiter
	mu     sync.RWMutex
}

// ModelLimiter enforces a tokens-per-minute bucket for a specific model.
//
//nolint:govet // Struct layout optimization not critical for this use case
type ModelLimiter struct {
	lastRefill         time.Time
	mu                 sync.Mutex
	name               string
	maxTokensPerMinute int
	currentTokens      int
}

// NewLimiter creates a rate limiter with the given per-model
// tokens-per-minute limits. Models with a non-positive limit are left
// unconfigured and pass through unthrottled.
func NewLimiter(limits map[string]int) *Limiter {
	l := &Limiter{
		models: make(map[string]*ModelLimiter),
	}

	for name, maxTPM := range limits {
		if maxTPM <= 0 {
			continue
		}
		l.models[name] = &ModelLimiter{
			name:               name,
			maxTokensPerMinute: maxTPM,
			currentTokens:      maxTPM, // Start with a full bucket
			lastRefill:         time.Now(),
		}
	}

	return l
}

// Reserve attempts to reserve the specified number of tokens for the given
// model. Unconfigured models always succeed.
func (l *Limiter) Reserve(model string, tokens int) error {
	l.mu.RLock()
	modelLimiter, exists := l.models[model]
	l.mu.RUnlock()

	if !exists {
		return nil
	}

	return modelLimiter.Reserve(tokens)
}

// GetStatus returns the remaining tokens in the bucket for a model.
func (l *Limiter) GetStatus(model string) (tokens int, err error) {
	l.mu.RLock()
	modelLimiter, exists := l.models[model]
	l.mu.RUnlock()

	if !exists {
		return 0, fmt.Errorf("model %s not configured", model)
	}

	return modelLimiter.GetStatus(), nil
}

// Reserve reserves tokens from the rate limit bucket.
func (ml *ModelLimiter) Reserve(tokens int) error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	ml.refillTokens()

	if ml.currentTokens < tokens {
		return fmt.Errorf("%w: model %s needs %d tokens, %d available", ErrRateLimit, ml.name, tokens, ml.currentTokens)
	}

	ml.currentTokens -= tokens
	return nil
}

// GetStatus returns the current token balance.
func (ml *ModelLimiter) GetStatus() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	ml.refillTokens()
	return ml.currentTokens
}

func (ml *ModelLimiter) refillTokens() {
	now := time.Now()
	elapsed := now.Sub(ml.lastRefill)

	if elapsed >= time.Minute {
		// Refill tokens for each minute that has passed.
		minutes := int(elapsed / time.Minute)
		refillAmount := minutes * ml.maxTokensPerMinute

		// Cap at maximum.
		ml.currentTokens += refillAmount
		if ml.currentTokens > ml.maxTokensPerMinute {
			ml.currentTokens = ml.maxTokensPerMinute
		}

		// Update refill time to the last complete minute.
		ml.lastRefill = ml.lastRefill.Add(time.Duration(minutes) * time.Minute)
	}
}
