// Package llm provides interfaces and types for language model client
// implementations and the structured decision step built on top of them.
package llm

import (
	"context"
	"fmt"

	"weatheragent/pkg/tools"
)

// CompletionRole represents the role of a message in a conversation.
type CompletionRole string

const (
	// RoleSystem indicates a system message that provides instructions or context.
	RoleSystem CompletionRole = "system"
	// RoleUser indicates a message from the human user.
	RoleUser CompletionRole = "user"
	// RoleAssistant indicates a message from the AI assistant.
	RoleAssistant CompletionRole = "assistant"
)

const (
	// TemperatureDecision is the temperature for the tool-selection step.
	// Low to keep intent extraction deterministic.
	TemperatureDecision = 0.1

	// TemperatureSynthesis is the temperature for composing the final answer.
	TemperatureSynthesis = 0.7

	// DefaultMaxTokens bounds a single completion response.
	DefaultMaxTokens = 2048
)

// CompletionMessage represents a message in a completion request.
type CompletionMessage struct {
	Content string
	Role    CompletionRole
}

// ToolCall represents a tool call made by the LLM.
type ToolCall struct {
	Parameters map[string]any `json:"parameters"`
	ID         string         `json:"id"`
	Name       string         `json:"name"`
}

// CompletionRequest represents a request to generate a completion.
//
//nolint:govet // fieldalignment: value semantics preferred over pointer indirection
type CompletionRequest struct {
	Messages    []CompletionMessage
	Tools       []tools.ToolDefinition
	ToolChoice  string
	MaxTokens   int
	Temperature float32
}

// CompletionResponse represents a response from a completion request.
type CompletionResponse struct {
	ToolCalls  []ToolCall
	Content    string
	StopReason string
}

// Client defines the interface for language model interactions.
type Client interface {
	// Complete generates a completion synchronously.
	Complete(ctx context.Context, in CompletionRequest) (CompletionResponse, error)

	// GetModelName returns the model name for this client.
	GetModelName() string
}

// NewCompletionRequest creates a new completion request with default values.
func NewCompletionRequest(messages []CompletionMessage) CompletionRequest {
	return CompletionRequest{
		Messages:    messages,
		MaxTokens:   DefaultMaxTokens,
		Temperature: TemperatureSynthesis,
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) CompletionMessage {
	return CompletionMessage{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) CompletionMessage {
	return CompletionMessage{Role: RoleUser, Content: content}
}

// Config represents construction parameters for a provider client.
type Config struct {
	Provider string // groq, anthropic, ollama, google
	APIKey   string
	Model    string
	BaseURL  string // Provider endpoint override (ollama host, Groq base URL)
}

// Validate validates the client configuration.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider cannot be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if c.Provider != "ollama" && c.APIKey == "" {
		return fmt.Errorf("API key cannot be empty for provider %s", c.Provider)
	}
	return nil
}
