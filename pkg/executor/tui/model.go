package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/travelweaver/weaver/pkg/agent"
	"github.com/travelweaver/weaver/pkg/types"
)

// model holds the full state of the chat interface.
type model struct {
	// Bubble Tea components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// Agent integration
	session *agent.Session
	submit  func(message string) // runs the turn off the UI goroutine

	// Content buffers
	content        *strings.Builder
	thinkingBuffer *strings.Builder
	messageBuffer  *strings.Builder

	// Agent state
	agentBusy             bool
	isThinking            bool
	currentLoadingMessage string

	// Payment display
	animation paymentAnimation

	// Token usage tracking
	totalPromptTokens     int
	totalCompletionTokens int
	totalTokens           int
	currentContextTokens  int

	// Window dimensions
	width  int
	height int
	ready  bool
}

// agentEventMsg wraps an agent event for the Bubble Tea loop.
type agentEventMsg struct {
	event *types.AgentEvent
}

// turnDoneMsg signals that a submitted turn has resolved.
type turnDoneMsg struct {
	result *types.TurnResult
}

func initialModel() model {
	ta := textarea.New()
	ta.Placeholder = "Where would you like to go?"
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 4000
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		viewport:              vp,
		textarea:              ta,
		spinner:               sp,
		content:               &strings.Builder{},
		thinkingBuffer:        &strings.Builder{},
		messageBuffer:         &strings.Builder{},
		currentLoadingMessage: "Planning...",
	}
}
