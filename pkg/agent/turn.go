package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/travelweaver/weaver/pkg/agent/policy"
	"github.com/travelweaver/weaver/pkg/agent/prompts"
	"github.com/travelweaver/weaver/pkg/agent/tools"
	"github.com/travelweaver/weaver/pkg/llm"
	"github.com/travelweaver/weaver/pkg/payments"
	"github.com/travelweaver/weaver/pkg/types"
)

// Displayable replies for failed turns. The turn boundary never surfaces a
// raw error; it picks one of these.
const (
	fallbackAcknowledgement = "Done! Let me know if there's anything else I can help you with."

	credentialFailureReply = "I can't reach my planning service because my credentials aren't set up. " +
		"Please check the API key configuration and try again."

	unavailableReply = "I'm having trouble reaching my planning service right now. " +
		"Please try again in a few moments."

	genericFailureReply = "Something went wrong while I was working on that. Please try sending your message again."
)

// Turn runs one full user-message-in, agent-reply-out cycle. It never
// returns an error: failures resolve into a displayable result with
// PaymentCompleted false. The completed exchange (user message plus agent
// reply) is appended to the session history.
func (s *Session) Turn(ctx context.Context, userMessage string) *types.TurnResult {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	s.emitEvent(types.NewUpdateBusyEvent(true))
	defer s.emitEvent(types.NewUpdateBusyEvent(false))

	if err := s.conversation.Append(types.NewUserMessage(userMessage)); err != nil {
		s.warnf("rejected user message: %v", err)
		return &types.TurnResult{Content: genericFailureReply}
	}

	ctx, cancel := context.WithTimeout(ctx, s.turnTimeout)
	defer cancel()

	content, paymentCompleted, err := s.runLoop(ctx)
	if err != nil {
		s.warnf("turn failed: %v", err)
		s.emitEvent(types.NewErrorEvent(err))
		// Partial text from a failed stream is discarded with the error.
		content = classifyTurnError(err)
		paymentCompleted = false
	}

	if strings.TrimSpace(content) == "" {
		content = fallbackAcknowledgement
	}

	reply := types.NewAgentMessage(content)
	reply.PaymentCompleted = paymentCompleted
	if appendErr := s.conversation.Append(reply); appendErr != nil {
		s.warnf("failed to record agent reply: %v", appendErr)
	}

	s.emitEvent(types.NewTurnEndEvent())
	return &types.TurnResult{Content: content, PaymentCompleted: paymentCompleted}
}

// classifyTurnError maps a loop failure onto a displayable reply.
func classifyTurnError(err error) string {
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey), errors.Is(err, llm.ErrInvalidCredentials):
		return credentialFailureReply
	case errors.Is(err, llm.ErrUnavailable):
		return unavailableReply
	default:
		return genericFailureReply
	}
}

// runLoop drives the iterative completion loop for one turn. It returns the
// reply text, whether a gated payment settled during the loop, and the first
// unrecoverable error. PaymentCompleted is monotonic within the turn: once a
// payment settles, later iterations cannot unset it. A loop error still
// discards the whole turn.
func (s *Session) runLoop(ctx context.Context) (string, bool, error) {
	systemPrompt := s.systemPrompt()
	history := s.conversation.Snapshot()
	messages := prompts.BuildMessages(systemPrompt, history, "")

	var replyBuffer strings.Builder
	paymentCompleted := false

	for iteration := 0; iteration < s.maxIters; iteration++ {
		if err := ctx.Err(); err != nil {
			return "", paymentCompleted, err
		}

		assistantText, err := s.streamCompletion(ctx, messages)
		if err != nil {
			return "", paymentCompleted, err
		}

		if !tools.HasToolCall(assistantText) {
			// The model answered in plain text; the turn resolves with it.
			replyBuffer.WriteString(assistantText)
			return replyBuffer.String(), paymentCompleted, nil
		}

		toolCall, remaining, err := tools.ParseToolCall(assistantText)
		if err != nil {
			s.warnf("malformed tool call: %v", err)
			messages = appendToolFeedback(messages, assistantText, prompts.ToolResult{
				ToolName: "unknown",
				Error:    fmt.Errorf("your tool call XML could not be parsed: %w", err),
			})
			continue
		}

		// Prose preceding the tool call accumulates in arrival order.
		if remaining != "" {
			replyBuffer.WriteString(remaining)
		}

		outcome := s.executeGatedCall(ctx, toolCall)
		if outcome.paymentSettled {
			paymentCompleted = true
		}

		if outcome.loopBreaking {
			// The reply tool's message supersedes accumulated text.
			return outcome.result, paymentCompleted, nil
		}

		messages = appendToolFeedback(messages, assistantText, prompts.ToolResult{
			ToolName: toolCall.ToolName,
			Result:   outcome.result,
			Error:    outcome.err,
		})
	}

	s.warnf("turn hit iteration limit (%d)", s.maxIters)
	return replyBuffer.String(), paymentCompleted, nil
}

// streamCompletion runs one completion call and collects the assistant text,
// emitting content events as chunks arrive. A mid-stream error fails the
// whole call; partial content is not returned.
func (s *Session) streamCompletion(ctx context.Context, messages []*types.Message) (string, error) {
	promptTokens := 0
	if s.counter != nil {
		promptTokens = s.counter.CountMessages(messages)
	}
	s.emitEvent(types.NewAPICallStartEvent("llm", promptTokens))

	stream, err := s.provider.StreamCompletion(ctx, messages)
	if err != nil {
		return "", err
	}

	var assistant strings.Builder
	inThinking := false
	inMessage := false
	for chunk := range stream {
		if chunk.IsError() {
			return "", fmt.Errorf("stream failed: %w", chunk.Error)
		}

		switch chunk.Type {
		case llm.ContentTypeThinking:
			if !inThinking {
				s.emitEvent(types.NewThinkingStartEvent())
				inThinking = true
			}
			s.emitEvent(types.NewThinkingContentEvent(chunk.Content))
		case llm.ContentTypeMessage:
			if chunk.Content != "" {
				if !inMessage {
					s.emitEvent(types.NewMessageStartEvent())
					inMessage = true
				}
				s.emitEvent(types.NewMessageContentEvent(chunk.Content))
				assistant.WriteString(chunk.Content)
			}
		}
	}
	if inThinking {
		s.emitEvent(types.NewThinkingEndEvent())
	}
	if inMessage {
		s.emitEvent(types.NewMessageEndEvent())
	}

	s.emitEvent(types.NewAPICallEndEvent("llm"))

	if s.counter != nil {
		completionTokens := s.counter.CountText(assistant.String())
		s.emitEvent(types.NewTokenUsageEvent(promptTokens, completionTokens, promptTokens+completionTokens))
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return assistant.String(), nil
}

// callOutcome is the digested result of one tool invocation.
type callOutcome struct {
	result         string
	err            error
	loopBreaking   bool
	paymentSettled bool
}

// executeGatedCall classifies, gates, and executes a parsed tool call.
// Local tools run ungated; everything requested of an external namespace
// passes through the policy gate and executes with the gate's arguments.
func (s *Session) executeGatedCall(ctx context.Context, toolCall *tools.ToolCall) callOutcome {
	class := s.gate.Classify(toolCall.ServerName, toolCall.ToolName)

	requestedArgs, err := tools.XMLToMap(toolCall.GetArgumentsXML())
	if err != nil {
		requestedArgs = make(map[string]interface{})
	}

	argsXML := toolCall.GetArgumentsXML()
	finalArgs := requestedArgs

	if toolCall.ServerName != tools.ServerLocal {
		decision := s.gate.Evaluate(toolCall.ServerName, toolCall.ToolName, requestedArgs)
		if !decision.Allowed {
			s.debugf("denied %s/%s: %s", toolCall.ServerName, toolCall.ToolName, decision.Reason)
			s.emitEvent(types.NewToolDeniedEvent(toolCall.ToolName, decision.Reason))
			return callOutcome{err: fmt.Errorf("%s: %s", policy.DeniedReason, toolCall.ToolName)}
		}
		// Execution sees the gate's arguments, not the model's.
		finalArgs = decision.Args
		argsXML = tools.MapToXML(decision.Args)
	}

	tool, ok := s.lookupTool(toolCall.ServerName, toolCall.ToolName)
	if !ok {
		s.emitEvent(types.NewToolResultErrorEvent(toolCall.ToolName, fmt.Errorf("unknown tool")))
		return callOutcome{err: fmt.Errorf("unknown tool: %s/%s", toolCall.ServerName, toolCall.ToolName)}
	}

	s.emitEvent(types.NewToolCallEvent(toolCall.ToolName, finalArgs))

	result, metadata, execErr := tool.Execute(ctx, argsXML)
	if execErr != nil {
		s.emitEvent(types.NewToolResultErrorEvent(toolCall.ToolName, execErr))
		return callOutcome{err: execErr}
	}

	event := types.NewToolResultEvent(toolCall.ToolName, result)
	for k, v := range metadata {
		event.Metadata[k] = v
	}
	s.emitEvent(event)

	outcome := callOutcome{result: result, loopBreaking: tool.IsLoopBreaking()}
	if class == tools.ClassPaymentSend && settled(metadata) {
		outcome.paymentSettled = true
		receiptID, _ := metadata["receipt_id"].(string)
		s.emitEvent(types.NewPaymentCompletedEvent(toolCall.ToolName, receiptID))
	}
	return outcome
}

// settled reports whether tool metadata records a completed payment.
func settled(metadata map[string]interface{}) bool {
	status, _ := metadata["status"].(string)
	return status == string(payments.StatusCompleted)
}

// appendToolFeedback extends the working message list with the assistant's
// response and the tool outcome, so the next iteration sees both. Nothing
// here touches the durable conversation history.
func appendToolFeedback(messages []*types.Message, assistantText string, result prompts.ToolResult) []*types.Message {
	out := append(messages, types.NewAgentMessage(assistantText))
	return append(out, types.NewUserMessage(result.Feedback()))
}
