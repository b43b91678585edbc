package tui

import (
	"fmt"

	"github.com/travelweaver/weaver/pkg/types"
)

// handleAgentEvent folds one agent event into the transcript and status
// state. Called from Update for every event the session emits mid-turn.
func (m *model) handleAgentEvent(event *types.AgentEvent) {
	switch event.Type {
	case types.EventTypeThinkingStart:
		m.isThinking = true
		m.thinkingBuffer.Reset()
		m.currentLoadingMessage = "Thinking..."

	case types.EventTypeThinkingContent:
		if event.Content == "" {
			return
		}
		m.thinkingBuffer.WriteString(event.Content)
		// Stream thinking live without committing it to the transcript.
		m.viewport.SetContent(m.content.String() + "💭 " + thinkingStyle.Render(m.thinkingBuffer.String()))
		m.viewport.GotoBottom()
		return

	case types.EventTypeThinkingEnd:
		m.isThinking = false
		m.thinkingBuffer.Reset()
		m.currentLoadingMessage = "Planning..."

	case types.EventTypeToolCall:
		m.content.WriteString(toolStyle.Render(fmt.Sprintf("  ⚙ %s", event.ToolName)))
		m.content.WriteString("\n")

	case types.EventTypeToolResult:
		// The final reply carries the substance; just mark completion.
		m.content.WriteString(toolStyle.Render(fmt.Sprintf("  ✓ %s finished", event.ToolName)))
		m.content.WriteString("\n")

	case types.EventTypeToolResultError:
		m.content.WriteString(errorStyle.Render(fmt.Sprintf("  ✗ %s failed", event.ToolName)))
		m.content.WriteString("\n")

	case types.EventTypeToolDenied:
		m.content.WriteString(errorStyle.Render(fmt.Sprintf("  ⊘ %s: %s", event.ToolName, event.Reason)))
		m.content.WriteString("\n")

	case types.EventTypePaymentCompleted:
		line := "  💳 Payment completed"
		if receiptID, ok := event.Metadata["receipt_id"].(string); ok && receiptID != "" {
			line = fmt.Sprintf("  💳 Payment completed (receipt %s)", receiptID)
		}
		m.content.WriteString(paymentStyle.Render(line))
		m.content.WriteString("\n")

	case types.EventTypeUpdateBusy:
		m.agentBusy = event.IsBusy

	case types.EventTypeAPICallStart:
		if event.APICallInfo != nil {
			m.currentContextTokens = event.APICallInfo.ContextTokens
		}

	case types.EventTypeTokenUsage:
		if event.TokenUsage != nil {
			m.totalPromptTokens += event.TokenUsage.PromptTokens
			m.totalCompletionTokens += event.TokenUsage.CompletionTokens
			m.totalTokens += event.TokenUsage.TotalTokens
		}

	case types.EventTypeError:
		m.currentLoadingMessage = "Recovering..."
	}

	m.refreshViewport()
}
