package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatheragent/pkg/tools"
)

func testCatalog() []tools.ToolDefinition {
	return []tools.ToolDefinition{
		{Name: "weather_lookup", Description: "look up weather"},
		{Name: "parse_date", Description: "resolve a date expression"},
	}
}

func TestDecideRespond(t *testing.T) {
	mock := NewMockClient([]CompletionResponse{
		{Content: "It's sunny.", StopReason: "end_turn"},
	}, nil)
	d := NewDecider(mock)

	decision, err := d.Decide(context.Background(), nil, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, DecisionRespond, decision.Kind)
	assert.Equal(t, "It's sunny.", decision.Text)

	requests := mock.Requests()
	require.Len(t, requests, 1)
	assert.Len(t, requests[0].Tools, 2)
	assert.Equal(t, "auto", requests[0].ToolChoice)
}

func TestDecideCallTool(t *testing.T) {
	mock := NewMockClient([]CompletionResponse{
		{
			ToolCalls: []ToolCall{{
				ID:         "call-42",
				Name:       "weather_lookup",
				Parameters: map[string]any{"location": "Paris"},
			}},
			StopReason: "tool_use",
		},
	}, nil)
	d := NewDecider(mock)

	decision, err := d.Decide(context.Background(), nil, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, DecisionCallTool, decision.Kind)
	assert.Equal(t, "weather_lookup", decision.Call.Name)
	assert.Equal(t, "call-42", decision.Call.ID)
	assert.Equal(t, "Paris", decision.Call.Arguments["location"])
}

func TestDecideTakesFirstToolCallOnly(t *testing.T) {
	mock := NewMockClient([]CompletionResponse{
		{
			ToolCalls: []ToolCall{
				{ID: "a", Name: "weather_lookup", Parameters: map[string]any{"location": "Oslo"}},
				{ID: "b", Name: "parse_date", Parameters: map[string]any{"expression": "tomorrow"}},
			},
		},
	}, nil)
	d := NewDecider(mock)

	decision, err := d.Decide(context.Background(), nil, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, "weather_lookup", decision.Call.Name)
}

func TestDecideUnknownTool(t *testing.T) {
	mock := NewMockClient([]CompletionResponse{
		{ToolCalls: []ToolCall{{ID: "x", Name: "launch_rockets"}}},
	}, nil)
	d := NewDecider(mock)

	_, err := d.Decide(context.Background(), nil, testCatalog())
	require.ErrorIs(t, err, ErrUnknownTool)
	assert.Contains(t, err.Error(), "launch_rockets")
}

func TestDecideNilArgumentsBecomeEmptyMap(t *testing.T) {
	mock := NewMockClient([]CompletionResponse{
		{ToolCalls: []ToolCall{{ID: "x", Name: "parse_date", Parameters: nil}}},
	}, nil)
	d := NewDecider(mock)

	decision, err := d.Decide(context.Background(), nil, testCatalog())
	require.NoError(t, err)
	require.NotNil(t, decision.Call.Arguments)
	assert.Empty(t, decision.Call.Arguments)
}

func TestSynthesize(t *testing.T) {
	mock := NewMockClient([]CompletionResponse{
		{Content: "Expect light rain tomorrow.", StopReason: "end_turn"},
	}, nil)
	d := NewDecider(mock)

	answer, err := d.Synthesize(context.Background(), []CompletionMessage{
		{Role: RoleUser, Content: "summarize"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Expect light rain tomorrow.", answer)

	// Synthesis never offers tools.
	requests := mock.Requests()
	require.Len(t, requests, 1)
	assert.Empty(t, requests[0].Tools)
}
