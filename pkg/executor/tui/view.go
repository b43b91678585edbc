package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire interface. Called by Bubble Tea on every redraw.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	sections := []string{
		m.buildHeader(),
		m.buildTips(),
		"",
		m.viewport.View(),
	}

	if m.animation.active {
		sections = append(sections, m.animation.render())
	}
	if m.agentBusy {
		sections = append(sections, m.buildLoadingIndicator())
	}

	sections = append(sections,
		m.buildInputBox(),
		m.buildBottomBar(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *model) buildHeader() string {
	return headerStyle.Render(`
	██╗    ██╗███████╗ █████╗ ██╗   ██╗███████╗██████╗
	██║    ██║██╔════╝██╔══██╗██║   ██║██╔════╝██╔══██╗
	██║ █╗ ██║█████╗  ███████║██║   ██║█████╗  ██████╔╝
	██║███╗██║██╔══╝  ██╔══██║╚██╗ ██╔╝██╔══╝  ██╔══██╗
	╚███╔███╔╝███████╗██║  ██║ ╚████╔╝ ███████╗██║  ██║
	 ╚══╝╚══╝ ╚══════╝╚═╝  ╚═╝  ╚═══╝  ╚══════╝╚═╝  ╚═╝`)
}

func (m *model) buildTips() string {
	return tipsStyle.Render(`  Tips: Ask about flights • "go ahead and book" to confirm • Enter to send • Ctrl+C to exit`)
}

func (m *model) buildLoadingIndicator() string {
	loadingMsg := fmt.Sprintf("%s %s", m.spinner.View(), m.currentLoadingMessage)
	loadingStyle := lipgloss.NewStyle().
		Foreground(skyBlue).
		Width(m.width-4).
		Padding(0, 2)
	return loadingStyle.Render(loadingMsg)
}

func (m *model) buildInputBox() string {
	return inputBoxStyle.Width(m.width - 4).Render(m.textarea.View())
}

func (m *model) buildBottomBar() string {
	left := "weaver"
	if m.session != nil {
		id := m.session.ID()
		if len(id) > 8 {
			id = id[:8]
		}
		left = "weaver " + id
	}
	right := m.buildTokenDisplay()

	padding := m.width - len(left) - len(right) - 4
	if padding < 2 {
		padding = 2
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (m *model) buildTokenDisplay() string {
	if m.totalTokens == 0 {
		return "Travel Concierge"
	}
	return fmt.Sprintf("◆ Context: %d | Input: %d | Output: %d | Total: %d",
		m.currentContextTokens,
		m.totalPromptTokens,
		m.totalCompletionTokens,
		m.totalTokens)
}
