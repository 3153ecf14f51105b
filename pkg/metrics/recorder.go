// Package metrics provides Prometheus-based metrics recording for agent
// operations, plus a query service for aggregations.
package metrics

import "time"

// Outcome labels for completed turns.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeError    = "error"
)

// Recorder records agent operation metrics.
type Recorder interface {
	// ObserveTurn records a completed conversation turn.
	ObserveTurn(outcome string, toolIterations int, duration time.Duration)
	// ObserveToolCall records a dispatched tool call.
	ObserveToolCall(tool, status string, duration time.Duration)
	// ObserveLLMRequest records a completed LLM request.
	ObserveLLMRequest(model, status string, duration time.Duration)
	// ObserveWeatherRequest records an upstream weather provider request.
	ObserveWeatherRequest(endpoint, status string, duration time.Duration)
}

// NopRecorder discards all observations. Used in tests and when metrics are
// disabled.
type NopRecorder struct{}

// NewNopRecorder creates a recorder that discards everything.
func NewNopRecorder() *NopRecorder { return &NopRecorder{} }

// ObserveTurn implements Recorder.
func (NopRecorder) ObserveTurn(string, int, time.Duration) {}

// ObserveToolCall implements Recorder.
func (NopRecorder) ObserveToolCall(string, string, time.Duration) {}

// ObserveLLMRequest implements Recorder.
func (NopRecorder) ObserveLLMRequest(string, string, time.Duration) {}

// ObserveWeatherRequest implements Recorder.
func (NopRecorder) ObserveWeatherRequest(string, string, time.Duration) {}
