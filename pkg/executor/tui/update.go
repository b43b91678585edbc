package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// Init starts the spinner ticking.
func (m *model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update handles all state updates for the TUI model.
//
// Uses a pointer receiver so buffer and animation mutations persist across
// messages.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd      tea.Cmd
		vpCmd      tea.Cmd
		spinnerCmd tea.Cmd
	)

	m.spinner, spinnerCmd = m.spinner.Update(msg)

	// The input stays editable while the agent works; submission is what's
	// blocked, so travelers can draft their next message.
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if cmd := m.handleSubmit(); cmd != nil {
				return m, tea.Batch(cmd, spinnerCmd)
			}
		}

	case agentEventMsg:
		m.handleAgentEvent(msg.event)
		return m, spinnerCmd

	case turnDoneMsg:
		m.handleTurnDone(msg)
		return m, spinnerCmd

	case animationTickMsg:
		if m.animation.active {
			m.animation.advance()
			return m, tea.Batch(animationTick(), spinnerCmd)
		}
		return m, spinnerCmd
	}

	return m, tea.Batch(tiCmd, vpCmd, spinnerCmd)
}

// handleSubmit sends the drafted message as a new turn. Returns nil when
// nothing should happen (blank draft, or a turn already in flight).
func (m *model) handleSubmit() tea.Cmd {
	if m.agentBusy {
		return nil
	}

	message := strings.TrimSpace(m.textarea.Value())
	if message == "" {
		return nil
	}

	m.textarea.Reset()

	// Optimistic echo of the traveler's message into the transcript.
	m.content.WriteString(userStyle.Render("You: "))
	m.content.WriteString(message)
	m.content.WriteString("\n\n")
	m.refreshViewport()

	m.agentBusy = true
	m.currentLoadingMessage = "Planning..."

	var cmd tea.Cmd
	if isBookingMessage(message) {
		m.animation.start()
		m.currentLoadingMessage = "Arranging your booking..."
		cmd = animationTick()
	}

	m.submit(message)
	return cmd
}

// handleTurnDone folds the turn result into the transcript and unlocks input.
func (m *model) handleTurnDone(msg turnDoneMsg) {
	m.agentBusy = false
	m.animation.stop()
	m.isThinking = false
	m.thinkingBuffer.Reset()
	m.messageBuffer.Reset()

	if msg.result.PaymentCompleted {
		m.content.WriteString(paymentStyle.Render("  ✓ Payment settled"))
		m.content.WriteString("\n")
	}
	m.content.WriteString(agentStyle.Render("Weaver: "))
	m.content.WriteString(msg.result.Content)
	m.content.WriteString("\n\n")
	m.refreshViewport()
}

// handleWindowResize recomputes component sizes for the new terminal size.
func (m *model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	headerHeight := strings.Count(m.buildHeader(), "\n") + 4
	footerHeight := m.textarea.Height() + 4

	m.viewport.Width = msg.Width
	m.viewport.Height = msg.Height - headerHeight - footerHeight
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.textarea.SetWidth(msg.Width - 6)

	m.ready = true
	m.refreshViewport()
	return m, nil
}

func (m *model) refreshViewport() {
	m.viewport.SetContent(m.content.String())
	m.viewport.GotoBottom()
}
