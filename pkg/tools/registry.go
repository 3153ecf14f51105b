package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"weatheragent/pkg/logx"
)

// ErrUnknownTool is returned when a dispatch names a tool that is not
// registered. The orchestrator treats it as fatal for the current tool-call
// step and falls back to a direct response.
var ErrUnknownTool = errors.New("unknown tool")

// Registry manages registered tools and dispatches validated tool calls.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger *logx.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logx.NewLogger("tools"),
	}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool cannot be nil")
	}
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.tools[name] = tool
	return nil
}

// Has reports whether a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return tool, nil
}

// Definitions returns the definitions of all registered tools, for the LLM
// tool catalog.
func (r *Registry) Definitions() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition())
	}
	return defs
}

// Dispatch validates the request against the tool's schema, executes the
// handler, and converts every failure mode (unknown tool, invalid arguments,
// handler error, handler panic) into a ToolResult with status=error. Every
// ToolCallRequest resolves to exactly one ToolResult.
func (r *Registry) Dispatch(ctx context.Context, req ToolCallRequest) ToolResult {
	tool, err := r.Get(req.Name)
	if err != nil {
		return errorResult(req, fmt.Sprintf("tool %q is not registered", req.Name))
	}

	if err := ValidateArgs(tool.Definition().InputSchema, req.Arguments); err != nil {
		r.logger.Warn("Rejected arguments for tool %s: %v", req.Name, err)
		return errorResult(req, err.Error())
	}

	result, err := r.safeExec(ctx, tool, req.Arguments)
	if err != nil {
		r.logger.Error("Tool %s failed: %v", req.Name, err)
		return errorResult(req, err.Error())
	}

	return ToolResult{
		Name:    req.Name,
		ID:      req.ID,
		Status:  StatusOK,
		Content: result.Content,
		Payload: result.Data,
	}
}

// safeExec runs the handler with panic recovery so a single misbehaving tool
// never terminates the orchestrator loop.
func (r *Registry) safeExec(ctx context.Context, tool Tool, args map[string]any) (result *ExecResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Tool %s panicked: %v", tool.Name(), rec)
			result = nil
			err = fmt.Errorf("tool %s panicked: %v", tool.Name(), rec)
		}
	}()

	result, err = tool.Exec(ctx, args)
	if err == nil && result == nil {
		err = fmt.Errorf("tool %s returned no result", tool.Name())
	}
	return result, err
}

func errorResult(req ToolCallRequest, detail string) ToolResult {
	return ToolResult{
		Name:        req.Name,
		ID:          req.ID,
		Status:      StatusError,
		ErrorDetail: detail,
	}
}
