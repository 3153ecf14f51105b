// Package agent implements the conversation orchestrator: it owns the
// decide/act/synthesize loop that turns a user message into a final answer,
// bounded by a maximum number of tool-call iterations per turn.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"weatheragent/pkg/agent/llm"
	"weatheragent/pkg/llmerrors"
	"weatheragent/pkg/logx"
	"weatheragent/pkg/metrics"
	"weatheragent/pkg/session"
	"weatheragent/pkg/tools"
	"weatheragent/pkg/utils"
)

// ErrToolLoopExceeded marks a turn that hit the tool-iteration bound before
// the model produced a final answer. The turn still returns a degraded
// answer.
var ErrToolLoopExceeded = errors.New("tool loop exceeded")

// DefaultMaxToolIterations bounds tool calls per turn.
const DefaultMaxToolIterations = 3

// DefaultTurnTimeout bounds wall-clock time per turn.
const DefaultTurnTimeout = 2 * time.Minute

// DefaultHistoryTokenBudget caps the prompt history handed to the model.
// Stored history is unaffected; only the prompt is trimmed.
const DefaultHistoryTokenBudget = 24000

// Config holds orchestrator tuning parameters.
type Config struct {
	MaxToolIterations  int
	TurnTimeout        time.Duration
	HistoryTokenBudget int
}

// Orchestrator coordinates the LLM, the tool registry and the session store
// to serve conversation turns.
type Orchestrator struct {
	decider  *llm.Decider
	registry *tools.Registry
	store    session.Store
	recorder metrics.Recorder
	logger   *logx.Logger
	counter  *utils.TokenCounter
	now      func() time.Time

	maxToolIterations  int
	turnTimeout        time.Duration
	historyTokenBudget int
}

// NewOrchestrator creates an orchestrator. A nil recorder disables metrics.
func NewOrchestrator(client llm.Client, registry *tools.Registry, store session.Store, recorder metrics.Recorder, cfg Config) *Orchestrator {
	if cfg.MaxToolIterations <= 0 {
		cfg.MaxToolIterations = DefaultMaxToolIterations
	}
	if cfg.TurnTimeout <= 0 {
		cfg.TurnTimeout = DefaultTurnTimeout
	}
	if cfg.HistoryTokenBudget <= 0 {
		cfg.HistoryTokenBudget = DefaultHistoryTokenBudget
	}
	if recorder == nil {
		recorder = metrics.NewNopRecorder()
	}

	// A nil counter falls back to a character-based estimate.
	counter, _ := utils.NewTokenCounter()

	return &Orchestrator{
		decider:            llm.NewDecider(client),
		registry:           registry,
		store:              store,
		recorder:           recorder,
		logger:             logx.NewLogger("agent"),
		counter:            counter,
		now:                time.Now,
		maxToolIterations:  cfg.MaxToolIterations,
		turnTimeout:        cfg.TurnTimeout,
		historyTokenBudget: cfg.HistoryTokenBudget,
	}
}

// HandleTurn runs one conversation turn for the session and returns the final
// answer text. Degraded turns (tool loop exhausted, LLM unavailable) still
// return answer text alongside a classifying error; callers should show the
// text to the user either way. Turns on the same session are serialized;
// different sessions proceed independently.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, userText string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session id cannot be empty")
	}
	if strings.TrimSpace(userText) == "" {
		return "", fmt.Errorf("user text cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, o.turnTimeout)
	defer cancel()

	if err := o.store.AcquireTurn(ctx, sessionID); err != nil {
		return "", err
	}
	defer o.store.ReleaseTurn(sessionID)

	start := o.now()
	answer, iterations, err := o.runTurn(ctx, sessionID, userText)
	outcome := metrics.OutcomeOK
	switch {
	case err != nil && answer == "":
		outcome = metrics.OutcomeError
	case err != nil:
		outcome = metrics.OutcomeDegraded
	}
	o.recorder.ObserveTurn(outcome, iterations, o.now().Sub(start))
	o.logger.Info("Turn on session %s finished: outcome=%s iterations=%d", sessionID, outcome, iterations)

	return answer, err
}

// runTurn executes the decide/act loop. It returns the answer, the number of
// tool iterations consumed, and an error classifying degraded outcomes.
func (o *Orchestrator) runTurn(ctx context.Context, sessionID, userText string) (string, int, error) {
	if _, err := o.store.GetOrCreate(ctx, sessionID); err != nil {
		return "", 0, err
	}
	if err := o.store.Append(ctx, sessionID, session.NewMessage(session.RoleUser, userText)); err != nil {
		return "", 0, err
	}

	catalog := o.registry.Definitions()

	for iteration := 0; iteration < o.maxToolIterations; iteration++ {
		messages, err := o.completionHistory(ctx, sessionID)
		if err != nil {
			return "", iteration, err
		}

		start := o.now()
		decision, err := o.decider.Decide(ctx, messages, catalog)
		o.observeLLM(start, err)
		if err != nil {
			if errors.Is(err, llm.ErrUnknownTool) {
				o.logger.Warn("Model requested unregistered tool on session %s: %v", sessionID, err)
				answer, synthErr := o.directResponse(ctx, sessionID)
				return answer, iteration, synthErr
			}
			return o.degradedLLMTurn(ctx, sessionID, err, iteration)
		}

		if decision.Kind == llm.DecisionRespond {
			answer := decision.Text
			if strings.TrimSpace(answer) == "" {
				answer = degradedLoopAnswer
			}
			if err := o.store.Append(ctx, sessionID, session.NewMessage(session.RoleAssistant, answer)); err != nil {
				return "", iteration, err
			}
			return answer, iteration, nil
		}

		if err := o.executeToolCall(ctx, sessionID, decision.Call); err != nil {
			return "", iteration, err
		}
	}

	// The model kept asking for tools. Synthesize a best-effort answer from
	// whatever the tools returned so far.
	answer, err := o.directResponse(ctx, sessionID)
	if err != nil {
		return answer, o.maxToolIterations, fmt.Errorf("%w: %w", ErrToolLoopExceeded, err)
	}
	return answer, o.maxToolIterations, ErrToolLoopExceeded
}

// executeToolCall dispatches one validated tool call and appends both the
// call and its result to the session history.
func (o *Orchestrator) executeToolCall(ctx context.Context, sessionID string, call tools.ToolCallRequest) error {
	o.logger.Debug("Dispatching tool %s on session %s", call.Name, sessionID)

	callMsg := session.NewMessage(session.RoleAssistant, fmt.Sprintf("[calling tool %s]", call.Name))
	callMsg.ToolName = call.Name
	if err := o.store.Append(ctx, sessionID, callMsg); err != nil {
		return err
	}

	start := o.now()
	result := o.registry.Dispatch(ctx, call)
	status := "ok"
	if !result.OK() {
		status = "error"
	}
	o.recorder.ObserveToolCall(call.Name, status, o.now().Sub(start))

	content := result.Content
	if !result.OK() {
		content = fmt.Sprintf("Error: %s", result.ErrorDetail)
	}

	resultMsg := session.NewMessage(session.RoleTool, content)
	resultMsg.ToolName = call.Name
	return o.store.Append(ctx, sessionID, resultMsg)
}

// directResponse asks the model for a final answer with no tools offered,
// falling back to a canned degraded answer if the model is unavailable.
func (o *Orchestrator) directResponse(ctx context.Context, sessionID string) (string, error) {
	messages, err := o.completionHistory(ctx, sessionID)
	if err != nil {
		return "", err
	}
	messages = append(messages, llm.NewUserMessage(synthesisInstruction))

	start := o.now()
	answer, err := o.decider.Synthesize(ctx, messages)
	o.observeLLM(start, err)
	if err != nil || strings.TrimSpace(answer) == "" {
		if err != nil {
			o.logger.Error("Synthesis failed on session %s: %v", sessionID, err)
		}
		answer = degradedLoopAnswer
	}

	if appendErr := o.store.Append(ctx, sessionID, session.NewMessage(session.RoleAssistant, answer)); appendErr != nil {
		return answer, appendErr
	}
	return answer, nil
}

// degradedLLMTurn records a turn that could not reach the model and returns
// the canned unavailability answer.
func (o *Orchestrator) degradedLLMTurn(ctx context.Context, sessionID string, cause error, iteration int) (string, int, error) {
	o.logger.Error("LLM unavailable on session %s: %v", sessionID, cause)

	answer := degradedLLMAnswer
	if appendErr := o.store.Append(ctx, sessionID, session.NewMessage(session.RoleAssistant, answer)); appendErr != nil {
		return answer, iteration, appendErr
	}
	if !llmerrors.IsServiceUnavailable(cause) {
		cause = llmerrors.NewServiceUnavailableError(cause, 0)
	}
	return answer, iteration, cause
}

// completionHistory converts the session history into completion messages,
// with the system prompt first. Tool results are carried as user-role
// messages so every provider accepts them.
func (o *Orchestrator) completionHistory(ctx context.Context, sessionID string) ([]llm.CompletionMessage, error) {
	history, err := o.store.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.CompletionMessage, 0, len(history)+1)
	messages = append(messages, llm.NewSystemMessage(systemPrompt(o.now(), o.registry)))

	for i := range history {
		msg := &history[i]
		switch msg.Role {
		case session.RoleAssistant:
			messages = append(messages, llm.CompletionMessage{Role: llm.RoleAssistant, Content: msg.Content})
		case session.RoleTool:
			messages = append(messages, llm.NewUserMessage(
				fmt.Sprintf("Tool result (%s):\n%s", msg.ToolName, msg.Content)))
		default:
			messages = append(messages, llm.NewUserMessage(msg.Content))
		}
	}
	return o.capHistory(messages), nil
}

// capHistory drops the oldest conversation messages until the prompt fits the
// token budget. The system prompt and the newest message always survive.
func (o *Orchestrator) capHistory(messages []llm.CompletionMessage) []llm.CompletionMessage {
	total := 0
	for i := range messages {
		total += o.counter.CountTokens(messages[i].Content)
	}

	drop := 1
	for total > o.historyTokenBudget && drop < len(messages)-1 {
		total -= o.counter.CountTokens(messages[drop].Content)
		drop++
	}
	if drop == 1 {
		return messages
	}

	o.logger.Debug("History over token budget, dropping %d oldest messages from prompt", drop-1)
	capped := make([]llm.CompletionMessage, 0, len(messages)-drop+1)
	capped = append(capped, messages[0])
	capped = append(capped, messages[drop:]...)
	return capped
}

func (o *Orchestrator) observeLLM(start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	o.recorder.ObserveLLMRequest(o.decider.ModelName(), status, o.now().Sub(start))
}
