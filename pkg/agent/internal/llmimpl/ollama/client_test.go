package ollama

import (
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatheragent/pkg/tools"
)

// makeToolCallArgs builds ToolCallFunctionArguments from a map for testing.
func makeToolCallArgs(m map[string]any) api.ToolCallFunctionArguments {
	args := api.NewToolCallFunctionArguments()
	for k, v := range m {
		args.Set(k, v)
	}
	return args
}

func TestNewClientWithModel(t *testing.T) {
	tests := []struct {
		name    string
		hostURL string
		model   string
	}{
		{
			name:    "valid host and model",
			hostURL: "http://localhost:11434",
			model:   "llama3.2",
		},
		{
			name:    "custom host",
			hostURL: "http://192.168.1.50:11434",
			model:   "mistral:7b",
		},
		{
			name:    "empty host falls back to default",
			hostURL: "",
			model:   "llama3.2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClientWithModel(tt.hostURL, tt.model)
			require.NotNil(t, client)
			assert.Equal(t, tt.model, client.GetModelName())
		})
	}
}

func TestConvertTools(t *testing.T) {
	defs := []tools.ToolDefinition{{
		Name:        "weather_lookup",
		Description: "Look up a forecast",
		InputSchema: tools.InputSchema{
			Type: "object",
			Properties: map[string]tools.Property{
				"location": {Type: "string", Description: "Place name"},
				"units":    {Type: "string", Enum: []string{"celsius", "fahrenheit"}},
			},
			Required: []string{"location"},
		},
	}}

	converted := convertTools(defs)
	require.Len(t, converted, 1)

	tool := converted[0]
	assert.Equal(t, "function", tool.Type)
	assert.Equal(t, "weather_lookup", tool.Function.Name)
	assert.Equal(t, "Look up a forecast", tool.Function.Description)
	assert.Equal(t, "object", tool.Function.Parameters.Type)
	assert.Equal(t, []string{"location"}, tool.Function.Parameters.Required)

	location, ok := tool.Function.Parameters.Properties.Get("location")
	require.True(t, ok)
	assert.Equal(t, api.PropertyType{"string"}, location.Type)
	assert.Equal(t, "Place name", location.Description)

	units, ok := tool.Function.Parameters.Properties.Get("units")
	require.True(t, ok)
	assert.Equal(t, []any{"celsius", "fahrenheit"}, units.Enum)
}

func TestConvertToolCalls(t *testing.T) {
	calls := []api.ToolCall{
		{
			ID: "call-abc",
			Function: api.ToolCallFunction{
				Name:      "weather_lookup",
				Arguments: makeToolCallArgs(map[string]any{"location": "Paris"}),
			},
		},
		{
			Function: api.ToolCallFunction{
				Name:      "get_coordinates",
				Arguments: makeToolCallArgs(map[string]any{"location": "Berlin"}),
			},
		},
	}

	converted := convertToolCalls(calls)
	require.Len(t, converted, 2)

	assert.Equal(t, "call-abc", converted[0].ID)
	assert.Equal(t, "weather_lookup", converted[0].Name)
	assert.Equal(t, map[string]any{"location": "Paris"}, converted[0].Parameters)

	// Missing IDs get a positional stand-in.
	assert.Equal(t, "call_1", converted[1].ID)
	assert.Equal(t, map[string]any{"location": "Berlin"}, converted[1].Parameters)
}

func TestStopReason(t *testing.T) {
	tests := []struct {
		name string
		resp api.ChatResponse
		want string
	}{
		{name: "not done", resp: api.ChatResponse{Done: false}, want: "incomplete"},
		{name: "stop", resp: api.ChatResponse{Done: true, DoneReason: "stop"}, want: "end_turn"},
		{name: "empty reason", resp: api.ChatResponse{Done: true}, want: "end_turn"},
		{name: "length", resp: api.ChatResponse{Done: true, DoneReason: "length"}, want: "max_tokens"},
		{name: "other passes through", resp: api.ChatResponse{Done: true, DoneReason: "load"}, want: "load"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stopReason(&tt.resp))
		})
	}
}
