package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"weatheragent/pkg/weather"
)

// ToolParseDate is the constant name for the date parsing tool.
const ToolParseDate = "parse_date"

// ParseDateTool resolves natural-language date expressions to ISO dates.
type ParseDateTool struct {
	now func() time.Time
}

// NewParseDateTool creates a date parsing tool.
func NewParseDateTool() *ParseDateTool {
	return &ParseDateTool{now: time.Now}
}

// Name returns the tool name.
func (t *ParseDateTool) Name() string {
	return ToolParseDate
}

// PromptDocumentation returns formatted tool documentation for prompts.
func (t *ParseDateTool) PromptDocumentation() string {
	return `- **parse_date** - Resolve a natural-language date expression to an ISO date
  - Parameters: expression (string, REQUIRED)
  - Handles "today", "tomorrow", "in 3 days", "5 days ago", "last monday", month names
  - Returns the resolved date in YYYY-MM-DD form`
}

// Definition returns the tool definition for the LLM.
func (t *ParseDateTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ToolParseDate,
		Description: "Parse a natural-language date expression into ISO format (YYYY-MM-DD). Use this when you need a concrete date from expressions like 'tomorrow', 'in 3 days' or 'last monday'.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"expression": {
					Type:        "string",
					Description: "Date expression to resolve (e.g., 'tomorrow', '3 days ago', 'August 3rd')",
				},
			},
			Required: []string{"expression"},
		},
	}
}

// Exec resolves the expression against the current date.
func (t *ParseDateTool) Exec(_ context.Context, args map[string]any) (*ExecResult, error) {
	expression, ok := args["expression"].(string)
	if !ok || strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("expression is required and must be a non-empty string")
	}

	resolved := weather.ResolveRelativeDate(expression, t.now())
	return &ExecResult{
		Content: resolved,
		Data: map[string]any{
			"expression": strings.TrimSpace(expression),
			"date":       resolved,
		},
	}, nil
}
