// Package agent implements the turn executor: it drives the LLM loop for a
// conversation session, gates tool invocations through the payment policy,
// and folds every outcome into a displayable turn result.
package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/travelweaver/weaver/pkg/agent/memory"
	"github.com/travelweaver/weaver/pkg/agent/policy"
	"github.com/travelweaver/weaver/pkg/agent/prompts"
	"github.com/travelweaver/weaver/pkg/agent/tools"
	"github.com/travelweaver/weaver/pkg/llm"
	"github.com/travelweaver/weaver/pkg/llm/tokenizer"
	"github.com/travelweaver/weaver/pkg/logging"
	"github.com/travelweaver/weaver/pkg/types"
)

const (
	// defaultTurnTimeout bounds a single turn end to end.
	defaultTurnTimeout = 120 * time.Second

	// defaultMaxIterations is the loop circuit breaker: after this many
	// tool round-trips the turn resolves with whatever text accumulated.
	defaultMaxIterations = 8
)

// EventSink receives agent events as a turn executes. Sinks must not block;
// slow consumers should buffer on their side.
type EventSink func(*types.AgentEvent)

// Session is one traveler's conversation with the agent. All turns for a
// session execute serially under the session's turn lock; history grows
// only via completed turns.
//
// History is never trimmed or summarized. Prompt token counts are emitted
// in api-call events so callers can watch context growth; sessions are
// short-lived conversations and bounded that way.
type Session struct {
	id           string
	conversation *memory.Conversation
	provider     llm.Provider
	gate         *policy.Gate
	toolset      map[string]tools.Tool
	toolList     []tools.Tool
	counter      *tokenizer.Counter
	logger       *logging.Logger
	sink         EventSink
	instructions string
	turnTimeout  time.Duration
	maxIters     int

	turnMu sync.Mutex
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithEventSink streams agent events to the given sink during turns.
func WithEventSink(sink EventSink) SessionOption {
	return func(s *Session) {
		s.sink = sink
	}
}

// WithTokenCounter enables prompt-size accounting in api-call events.
func WithTokenCounter(counter *tokenizer.Counter) SessionOption {
	return func(s *Session) {
		s.counter = counter
	}
}

// WithLogger attaches a component logger.
func WithLogger(logger *logging.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithTurnTimeout overrides the per-turn deadline.
func WithTurnTimeout(timeout time.Duration) SessionOption {
	return func(s *Session) {
		if timeout > 0 {
			s.turnTimeout = timeout
		}
	}
}

// WithMaxIterations overrides the loop circuit breaker.
func WithMaxIterations(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.maxIters = n
		}
	}
}

// WithCustomInstructions adds deployment-specific prompt instructions.
func WithCustomInstructions(instructions string) SessionOption {
	return func(s *Session) {
		s.instructions = instructions
	}
}

// WithSessionID pins the session id instead of generating one.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// NewSession creates a session over the given provider, policy gate, and
// toolset. A converse tool is registered automatically if the toolset lacks
// one, since the loop needs a loop-breaking reply channel.
func NewSession(provider llm.Provider, gate *policy.Gate, toolList []tools.Tool, opts ...SessionOption) *Session {
	s := &Session{
		id:           uuid.NewString(),
		conversation: memory.NewConversation(),
		provider:     provider,
		gate:         gate,
		toolset:      make(map[string]tools.Tool),
		turnTimeout:  defaultTurnTimeout,
		maxIters:     defaultMaxIterations,
	}

	hasLoopBreaker := false
	for _, tool := range toolList {
		s.registerTool(tool)
		if tool.IsLoopBreaking() {
			hasLoopBreaker = true
		}
	}
	if !hasLoopBreaker {
		s.registerTool(tools.NewConverseTool())
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// History returns a snapshot of the conversation so far.
func (s *Session) History() []*types.Message {
	return s.conversation.Snapshot()
}

// registerTool indexes a tool under its namespace-qualified key.
func (s *Session) registerTool(tool tools.Tool) {
	key := toolKey(tool.ServerName(), tool.Name())
	if _, exists := s.toolset[key]; exists {
		return
	}
	s.toolset[key] = tool
	s.toolList = append(s.toolList, tool)
}

// lookupTool finds a registered tool by namespace and name.
func (s *Session) lookupTool(serverName, toolName string) (tools.Tool, bool) {
	tool, ok := s.toolset[toolKey(serverName, toolName)]
	return tool, ok
}

func toolKey(serverName, toolName string) string {
	return serverName + "/" + toolName
}

// systemPrompt assembles the prompt for this session's toolset and policy.
func (s *Session) systemPrompt() string {
	return prompts.NewPromptBuilder().
		WithTools(s.toolList).
		WithCustomInstructions(s.instructions).
		WithPaymentPolicy(s.gate.DestinationAddress(), s.gate.FixedAmount()).
		Build()
}

// emitEvent delivers an event to the sink if one is attached.
func (s *Session) emitEvent(event *types.AgentEvent) {
	if s.sink != nil {
		s.sink(event)
	}
}

func (s *Session) debugf(format string, v ...interface{}) {
	if s.logger != nil {
		s.logger.Debugf(format, v...)
	}
}

func (s *Session) warnf(format string, v ...interface{}) {
	if s.logger != nil {
		s.logger.Warnf(format, v...)
	}
}

// String implements fmt.Stringer for log lines.
func (s *Session) String() string {
	return fmt.Sprintf("session %s (%d messages)", s.id, s.conversation.Len())
}
