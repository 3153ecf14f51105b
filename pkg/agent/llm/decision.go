package llm

import (
	"context"
	"errors"
	"fmt"

	"weatheragent/pkg/tools"
)

// ErrUnknownTool is returned when the provider's tool-call descriptor names a
// tool that is not in the registered catalog.
var ErrUnknownTool = errors.New("unknown tool in decision")

// DecisionKind discriminates the Decision variant.
type DecisionKind int8

const (
	// DecisionRespond means the model answered directly with text.
	DecisionRespond DecisionKind = iota
	// DecisionCallTool means the model requested a tool invocation.
	DecisionCallTool
)

// Decision is the model's structured choice between responding directly and
// calling a tool. Exhaustive handling in the orchestrator replaces any
// string-sniffing of raw completions.
type Decision struct {
	Kind DecisionKind
	Text string                // Set for DecisionRespond
	Call tools.ToolCallRequest // Set for DecisionCallTool
}

// Decider wraps a Client with the two operations the orchestrator needs:
// a tool-selection decision over the history, and final answer synthesis.
type Decider struct {
	client Client
}

// NewDecider creates a Decider over the given client.
func NewDecider(client Client) *Decider {
	return &Decider{client: client}
}

// ModelName returns the underlying model name.
func (d *Decider) ModelName() string {
	return d.client.GetModelName()
}

// Decide asks the model whether to respond directly or call a tool, given the
// full message history and the tool catalog. A descriptor naming an
// unregistered tool fails with ErrUnknownTool.
func (d *Decider) Decide(ctx context.Context, history []CompletionMessage, catalog []tools.ToolDefinition) (Decision, error) {
	req := CompletionRequest{
		Messages:    history,
		Tools:       catalog,
		ToolChoice:  "auto",
		MaxTokens:   DefaultMaxTokens,
		Temperature: TemperatureDecision,
	}

	resp, err := d.client.Complete(ctx, req)
	if err != nil {
		return Decision{}, err
	}

	return parseDecision(resp, catalog)
}

// Synthesize asks the model to compose the final natural-language answer from
// the history, with no tools offered.
func (d *Decider) Synthesize(ctx context.Context, history []CompletionMessage) (string, error) {
	req := CompletionRequest{
		Messages:    history,
		MaxTokens:   DefaultMaxTokens,
		Temperature: TemperatureSynthesis,
	}

	resp, err := d.client.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// parseDecision validates a completion response into a Decision. Providers
// may return several tool calls; this design allows at most one open tool
// call per turn, so only the first is taken.
func parseDecision(resp CompletionResponse, catalog []tools.ToolDefinition) (Decision, error) {
	if len(resp.ToolCalls) == 0 {
		return Decision{Kind: DecisionRespond, Text: resp.Content}, nil
	}

	call := resp.ToolCalls[0]
	if !catalogHas(catalog, call.Name) {
		return Decision{}, fmt.Errorf("%w: %s", ErrUnknownTool, call.Name)
	}

	args := call.Parameters
	if args == nil {
		args = make(map[string]any)
	}

	return Decision{
		Kind: DecisionCallTool,
		Call: tools.ToolCallRequest{
			Name:      call.Name,
			Arguments: args,
			ID:        call.ID,
		},
	}, nil
}

func catalogHas(catalog []tools.ToolDefinition, name string) bool {
	for i := range catalog {
		if catalog[i].Name == name {
			return true
		}
	}
	return false
}
