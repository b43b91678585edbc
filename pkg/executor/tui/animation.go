package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// bookingPhrase starts the payment animation when a submitted message opens
// with it. Display-only: the policy gate decides whether a payment actually
// executes, regardless of what the traveler typed.
const bookingPhrase = "go ahead and book"

// paymentStages are the hops rendered while a booking payment is in flight.
var paymentStages = []string{
	"CDP Wallet",
	"Bridge",
	"Conversion",
	"Splice Card",
	"Merchant",
}

// animationTickInterval paces stage advancement.
const animationTickInterval = 600 * time.Millisecond

// paymentAnimation tracks the in-flight payment display between ticks.
type paymentAnimation struct {
	active bool
	stage  int
}

// animationTickMsg advances the payment animation one stage.
type animationTickMsg struct{}

func animationTick() tea.Cmd {
	return tea.Tick(animationTickInterval, func(time.Time) tea.Msg {
		return animationTickMsg{}
	})
}

// isBookingMessage reports whether the traveler's message should start the
// payment animation.
func isBookingMessage(message string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(message)), bookingPhrase)
}

func (a *paymentAnimation) start() {
	a.active = true
	a.stage = 0
}

func (a *paymentAnimation) advance() {
	if !a.active {
		return
	}
	a.stage = (a.stage + 1) % len(paymentStages)
}

func (a *paymentAnimation) stop() {
	a.active = false
	a.stage = 0
}

// render draws the stage chain, highlighting the current hop.
func (a *paymentAnimation) render() string {
	if !a.active {
		return ""
	}

	parts := make([]string, len(paymentStages))
	for i, stage := range paymentStages {
		if i == a.stage {
			parts[i] = paymentStyle.Render(fmt.Sprintf("[%s]", stage))
		} else {
			parts[i] = tipsStyle.Render(stage)
		}
	}
	return "  💳 " + strings.Join(parts, " → ")
}
