package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatheragent/pkg/agent/llm"
	"weatheragent/pkg/tools"
)

func TestEnsureAlternation(t *testing.T) {
	tests := []struct {
		name         string
		input        []llm.CompletionMessage
		expectSystem string
		expectMsgLen int
		expectErr    bool
		errContains  string
	}{
		{
			name:        "empty messages",
			input:       []llm.CompletionMessage{},
			expectErr:   true,
			errContains: "message list cannot be empty",
		},
		{
			name: "system message extracted",
			input: []llm.CompletionMessage{
				{Role: llm.RoleSystem, Content: "You answer weather questions"},
				{Role: llm.RoleUser, Content: "Hello"},
			},
			expectSystem: "You answer weather questions",
			expectMsgLen: 1,
		},
		{
			name: "multiple system messages concatenated",
			input: []llm.CompletionMessage{
				{Role: llm.RoleSystem, Content: "You answer weather questions"},
				{Role: llm.RoleSystem, Content: "Be concise"},
				{Role: llm.RoleUser, Content: "Hello"},
			},
			expectSystem: "You answer weather questions\n\nBe concise",
			expectMsgLen: 1,
		},
		{
			name: "proper alternation maintained",
			input: []llm.CompletionMessage{
				{Role: llm.RoleUser, Content: "Weather in Paris?"},
				{Role: llm.RoleAssistant, Content: "Sunny, 18°C."},
				{Role: llm.RoleUser, Content: "And tomorrow?"},
			},
			expectMsgLen: 3,
		},
		{
			name: "consecutive user messages merged",
			input: []llm.CompletionMessage{
				{Role: llm.RoleUser, Content: "Weather in Paris?"},
				{Role: llm.RoleUser, Content: "Tool result (weather_lookup):\nHigh 18°C"},
			},
			expectMsgLen: 1,
		},
		{
			name: "only system messages",
			input: []llm.CompletionMessage{
				{Role: llm.RoleSystem, Content: "You answer weather questions"},
			},
			expectErr:   true,
			errContains: "at least one non-system message",
		},
		{
			name: "must end with user message",
			input: []llm.CompletionMessage{
				{Role: llm.RoleUser, Content: "Hello"},
				{Role: llm.RoleAssistant, Content: "Hi"},
			},
			expectErr:   true,
			errContains: "last message must be user role",
		},
		{
			name: "must start with user message",
			input: []llm.CompletionMessage{
				{Role: llm.RoleAssistant, Content: "Hi"},
				{Role: llm.RoleUser, Content: "Hello"},
			},
			expectErr:   true,
			errContains: "first message must be user role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			system, merged, err := ensureAlternation(tt.input)
			if tt.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectSystem, system)
			assert.Len(t, merged, tt.expectMsgLen)
		})
	}
}

func TestConvertTool(t *testing.T) {
	td := tools.ToolDefinition{
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
	}

	param := convertTool(&td)
	require.NotNil(t, param.OfTool)
	assert.Equal(t, "weather_lookup", param.OfTool.Name)
	assert.Equal(t, []string{"location"}, param.OfTool.InputSchema.Required)

	props, ok := param.OfTool.InputSchema.Properties.(map[string]any)
	require.True(t, ok)

	location, ok := props["location"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", location["type"])
	assert.Equal(t, "Place name", location["description"])

	units, ok := props["units"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{"celsius", "fahrenheit"}, units["enum"])
}

func TestConvertToolEmptySchema(t *testing.T) {
	td := tools.ToolDefinition{
		Name:        "ping",
		InputSchema: tools.InputSchema{Type: "object"},
	}

	param := convertTool(&td)
	require.NotNil(t, param.OfTool)
	assert.Nil(t, param.OfTool.InputSchema.Properties)
}

func TestNewClientWithModelDefaults(t *testing.T) {
	client := NewClientWithModel("test-key", "")
	assert.Equal(t, DefaultModel, client.GetModelName())

	client = NewClientWithModel("test-key", "claude-haiku-4-5")
	assert.Equal(t, "claude-haiku-4-5", client.GetModelName())
}
