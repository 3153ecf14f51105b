package agent

import (
	"fmt"
	"strings"
	"time"

	"weatheragent/pkg/tools"
)

const systemPromptTemplate = `You are a helpful weather assistant. Today's date is %s.

Answer questions about weather conditions, forecasts, locations and dates.
When the user asks about weather, use the available tools to fetch real data
before answering; never invent temperatures or conditions. When a tool result
reports an error (for example an unknown location), explain the problem to
the user plainly instead of retrying the same call.

Be friendly and conversational. Include relevant details such as whether the
weather suits outdoor activities or calls for an umbrella. Keep responses
concise but informative.

Available tools:
%s`

// systemPrompt renders the orchestrator system prompt with the current date
// and the registered tool documentation.
func systemPrompt(now time.Time, registry *tools.Registry) string {
	docs := make([]string, 0)
	for _, def := range registry.Definitions() {
		if tool, err := registry.Get(def.Name); err == nil {
			docs = append(docs, tool.PromptDocumentation())
		}
	}
	return fmt.Sprintf(systemPromptTemplate, now.Format("2006-01-02"), strings.Join(docs, "\n"))
}

const synthesisInstruction = "Please provide a natural, helpful summary answering the user's question from the information gathered above. If some data could not be retrieved, say so plainly."

// Degraded answers returned when upstream services are exhausted.
const (
	degradedLLMAnswer = "I'm sorry, I'm having trouble reaching the language service right now. Please try again in a moment."

	degradedLoopAnswer = "I'm sorry, I couldn't retrieve all the data needed to answer that. Please try rephrasing or asking again later."
)
