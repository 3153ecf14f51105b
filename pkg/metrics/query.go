package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// UsageSummary represents aggregated agent usage over the metrics retention
// window.
type UsageSummary struct {
	TurnsOK       int64 `json:"turns_ok"`
	TurnsDegraded int64 `json:"turns_degraded"`
	TurnsError    int64 `json:"turns_error"`
	ToolCalls     int64 `json:"tool_calls"`
	LLMRequests   int64 `json:"llm_requests"`
}

// QueryService queries aggregated metrics from a Prometheus server scraping
// this agent.
type QueryService struct {
	queryAPI v1.API
}

// NewQueryService creates a new metrics query service.
func NewQueryService(prometheusURL string) (*QueryService, error) {
	client, err := api.NewClient(api.Config{Address: prometheusURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}
	return &QueryService{queryAPI: v1.NewAPI(client)}, nil
}

// GetUsageSummary retrieves aggregated turn, tool and LLM counters.
func (q *QueryService) GetUsageSummary(ctx context.Context) (*UsageSummary, error) {
	summary := &UsageSummary{}

	var err error
	if summary.TurnsOK, err = q.sum(ctx, `sum(agent_turns_total{outcome="ok"})`); err != nil {
		return nil, err
	}
	if summary.TurnsDegraded, err = q.sum(ctx, `sum(agent_turns_total{outcome="degraded"})`); err != nil {
		return nil, err
	}
	if summary.TurnsError, err = q.sum(ctx, `sum(agent_turns_total{outcome="error"})`); err != nil {
		return nil, err
	}
	if summary.ToolCalls, err = q.sum(ctx, `sum(agent_tool_calls_total)`); err != nil {
		return nil, err
	}
	if summary.LLMRequests, err = q.sum(ctx, `sum(llm_requests_total)`); err != nil {
		return nil, err
	}

	return summary, nil
}

func (q *QueryService) sum(ctx context.Context, query string) (int64, error) {
	result, _, err := q.queryAPI.Query(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to query %q: %w", query, err)
	}
	if vector, ok := result.(model.Vector); ok && len(vector) > 0 {
		return int64(vector[0].Value), nil
	}
	return 0, nil
}
