package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder implements the Recorder interface using Prometheus
// metrics.
type PrometheusRecorder struct {
	turnsTotal       *prometheus.CounterVec
	turnDuration     *prometheus.HistogramVec
	toolIterations   prometheus.Histogram
	toolCallsTotal   *prometheus.CounterVec
	toolCallDuration *prometheus.HistogramVec
	llmRequestsTotal *prometheus.CounterVec
	llmDuration      *prometheus.HistogramVec
	weatherTotal     *prometheus.CounterVec
	weatherDuration  *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a new Prometheus-based metrics recorder.
// Metrics register on the default registry, so construct at most one per
// process.
func NewPrometheusRecorder() *PrometheusRecorder {
	return &PrometheusRecorder{
		turnsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_turns_total",
				Help: "Total number of conversation turns by outcome",
			},
			[]string{"outcome"},
		),
		turnDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agent_turn_duration_seconds",
				Help:    "Duration of conversation turns in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		toolIterations: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agent_turn_tool_iterations",
				Help:    "Number of tool-call iterations per turn",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			},
		),
		toolCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_tool_calls_total",
				Help: "Total number of tool dispatches by tool and status",
			},
			[]string{"tool", "status"},
		),
		toolCallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agent_tool_call_duration_seconds",
				Help:    "Duration of tool dispatches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		llmRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_requests_total",
				Help: "Total number of LLM requests by model and status",
			},
			[]string{"model", "status"},
		),
		llmDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_request_duration_seconds",
				Help:    "Duration of LLM requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model"},
		),
		weatherTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_requests_total",
				Help: "Total number of weather provider requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),
		weatherDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weather_request_duration_seconds",
				Help:    "Duration of weather provider requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}
}

// ObserveTurn implements Recorder.
func (p *PrometheusRecorder) ObserveTurn(outcome string, toolIterations int, duration time.Duration) {
	p.turnsTotal.WithLabelValues(outcome).Inc()
	p.turnDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	p.toolIterations.Observe(float64(toolIterations))
}

// ObserveToolCall implements Recorder.
func (p *PrometheusRecorder) ObserveToolCall(tool, status string, duration time.Duration) {
	p.toolCallsTotal.WithLabelValues(tool, status).Inc()
	p.toolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// ObserveLLMRequest implements Recorder.
func (p *PrometheusRecorder) ObserveLLMRequest(model, status string, duration time.Duration) {
	p.llmRequestsTotal.WithLabelValues(model, status).Inc()
	p.llmDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// ObserveWeatherRequest implements Recorder.
func (p *PrometheusRecorder) ObserveWeatherRequest(endpoint, status string, duration time.Duration) {
	p.weatherTotal.WithLabelValues(endpoint, status).Inc()
	p.weatherDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
