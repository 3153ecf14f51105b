// Package groq provides a Groq client implementation for the LLM interface.
// Groq exposes an OpenAI-compatible chat completions API, so the official
// OpenAI Go package is pointed at the Groq endpoint.
package groq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"weatheragent/pkg/agent/llm"
	"weatheragent/pkg/llmerrors"
	"weatheragent/pkg/tools"
)

// DefaultBaseURL is the Groq OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// DefaultModel is used when no model is configured.
const DefaultModel = "meta-llama/llama-4-scout-17b-16e-instruct"

// Client wraps the OpenAI Go client pointed at Groq to implement llm.Client.
type Client struct {
	client openai.Client
	model  string
}

// NewClient creates a new Groq client with the default model.
func NewClient(apiKey string) llm.Client {
	return NewClientWithModel(apiKey, DefaultModel, DefaultBaseURL)
}

// NewClientWithModel creates a new Groq client with a specific model and base
// URL. An empty baseURL falls back to the public Groq endpoint.
func NewClientWithModel(apiKey, model, baseURL string) llm.Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	return &Client{client: client, model: model}
}

// Complete implements the llm.Client interface.
func (c *Client) Complete(ctx context.Context, in llm.CompletionRequest) (llm.CompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(in.Messages))
	for i := range in.Messages {
		msg := &in.Messages[i]
		switch msg.Role {
		case llm.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case llm.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   openai.Int(int64(in.MaxTokens)),
		Temperature: openai.Float(float64(in.Temperature)),
	}

	if len(in.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolUnionParam, len(in.Tools))
		for i := range in.Tools {
			tools[i] = convertTool(&in.Tools[i])
		}
		params.Tools = tools
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return llm.CompletionResponse{}, llmerrors.Classify(err, "groq chat completion failed")
	}

	if resp == nil || len(resp.Choices) == 0 {
		return llm.CompletionResponse{}, llmerrors.NewError(llmerrors.ErrorTypeEmptyResponse, "empty response from Groq API")
	}

	choice := resp.Choices[0]
	result := llm.CompletionResponse{
		Content:    choice.Message.Content,
		StopReason: string(choice.FinishReason),
	}

	for i := range choice.Message.ToolCalls {
		tc := &choice.Message.ToolCalls[i]
		var parameters map[string]any
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &parameters); err != nil {
				return llm.CompletionResponse{}, llmerrors.NewErrorWithCause(llmerrors.ErrorTypeEmptyResponse, err,
					fmt.Sprintf("malformed tool call arguments for %s", tc.Function.Name))
			}
		}
		result.ToolCalls = append(result.ToolCalls, llm.ToolCall{
			ID:         tc.ID,
			Name:       tc.Function.Name,
			Parameters: parameters,
		})
	}

	return result, nil
}

// GetModelName returns the model name for this client.
func (c *Client) GetModelName() string {
	return c.model
}

// convertTool maps a tool definition to the OpenAI function tool format.
func convertTool(td *tools.ToolDefinition) openai.ChatCompletionToolUnionParam {
	properties := make(map[string]any)
	for name := range td.InputSchema.Properties {
		prop := td.InputSchema.Properties[name]
		properties[name] = convertProperty(&prop)
	}

	return openai.ChatCompletionToolUnionParam{
		OfFunction: &openai.ChatCompletionFunctionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        td.Name,
				Description: openai.String(td.Description),
				Parameters: openai.FunctionParameters{
					"type":       "object",
					"properties": properties,
					"required":   td.InputSchema.Required,
				},
			},
		},
	}
}

// convertProperty recursively converts a schema property to plain JSON schema.
func convertProperty(prop *tools.Property) map[string]any {
	schema := map[string]any{"type": prop.Type}
	if prop.Description != "" {
		schema["description"] = prop.Description
	}
	if len(prop.Enum) > 0 {
		schema["enum"] = prop.Enum
	}
	if prop.Type == "array" && prop.Items != nil {
		schema["items"] = convertProperty(prop.Items)
	}
	if prop.Type == "object" && prop.Properties != nil {
		children := make(map[string]any)
		for name, child := range prop.Properties {
			if child != nil {
				children[name] = convertProperty(child)
			}
		}
		schema["properties"] = children
	}
	return schema
}
