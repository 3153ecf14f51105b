// Package tools provides the tool registry and the weather tool implementations
// the agent can dispatch to.
package tools

import (
	"context"
)

// Tool defines the interface every dispatchable tool implements.
type Tool interface {
	// Name returns the tool's identifier.
	Name() string
	// Definition returns the tool definition sent to the LLM.
	Definition() ToolDefinition
	// Exec executes the tool with already-validated arguments.
	Exec(ctx context.Context, args map[string]any) (*ExecResult, error)
	// PromptDocumentation returns formatted tool documentation for prompts.
	PromptDocumentation() string
}

// ToolDefinition describes a tool to the LLM provider.
type ToolDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"input_schema"`
}

// InputSchema describes the JSON-schema shape of a tool's arguments.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a single argument in an input schema.
type Property struct {
	Type        string               `json:"type"`
	Description string               `json:"description,omitempty"`
	Enum        []string             `json:"enum,omitempty"`
	Items       *Property            `json:"items,omitempty"`
	Properties  map[string]*Property `json:"properties,omitempty"`
}

// ExecResult is the successful output of a tool execution.
type ExecResult struct {
	Content string         `json:"content"`        // Text summary handed back to the LLM
	Data    map[string]any `json:"data,omitempty"` // Structured payload for API callers
}

// ToolCallRequest is a validated request to invoke a tool, produced by the
// LLM decision step.
type ToolCallRequest struct {
	Arguments map[string]any `json:"arguments"`
	ID        string         `json:"id"`
	Name      string         `json:"name"`
}

// ResultStatus indicates whether a tool execution succeeded.
type ResultStatus string

const (
	// StatusOK indicates the tool ran and produced a payload.
	StatusOK ResultStatus = "ok"
	// StatusError indicates the tool failed; ErrorDetail carries the reason.
	StatusError ResultStatus = "error"
)

// ToolResult is the single, final outcome of a ToolCallRequest. Handler errors
// and panics are converted into an error result at the registry boundary, so
// the orchestrator never has to special-case tool failures.
type ToolResult struct {
	Name        string         `json:"tool_name"`
	ID          string         `json:"id,omitempty"`
	Status      ResultStatus   `json:"status"`
	Content     string         `json:"content,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
	ErrorDetail string         `json:"error_detail,omitempty"`
}

// OK reports whether the result carries a successful payload.
func (r *ToolResult) OK() bool {
	return r.Status == StatusOK
}
