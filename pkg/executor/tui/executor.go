// Package tui provides the interactive terminal chat interface for the
// Weaver travel agent. The interface streams agent events into a scrolling
// transcript, shows a staged payment animation while bookings settle, and
// keeps the input locked while a turn is in flight.
//
// The code is split across files:
// - executor.go: program lifecycle and agent wiring
// - model.go: core model structure and state
// - update.go: Bubble Tea Update function and key handling
// - view.go: Bubble Tea View function and rendering
// - events.go: agent event processing
// - animation.go: payment-in-flight animation
// - styles.go: color palette and styles
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/travelweaver/weaver/pkg/agent"
	"github.com/travelweaver/weaver/pkg/types"
)

// SessionFactory builds the session the interface drives, with the given
// sink attached so turn events reach the transcript.
type SessionFactory func(sink agent.EventSink) *agent.Session

// Executor runs the TUI over a single agent session.
type Executor struct {
	factory SessionFactory
	session *agent.Session
	program *tea.Program
}

// NewExecutor creates a TUI executor. The factory runs once, at Run.
func NewExecutor(factory SessionFactory) *Executor {
	return &Executor{factory: factory}
}

// eventSink forwards turn events into the Bubble Tea loop. Events sent
// before the program starts are dropped.
func (e *Executor) eventSink() agent.EventSink {
	return func(event *types.AgentEvent) {
		if e.program != nil {
			e.program.Send(agentEventMsg{event: event})
		}
	}
}

// Run starts the interface and blocks until the user exits.
func (e *Executor) Run(ctx context.Context) error {
	e.session = e.factory(e.eventSink())

	m := initialModel()
	m.session = e.session
	m.submit = func(message string) {
		// Turn blocks; run it off the UI goroutine and deliver the result
		// as a message.
		go func() {
			result := e.session.Turn(ctx, message)
			e.program.Send(turnDoneMsg{result: result})
		}()
	}

	e.program = tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := e.program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI program: %w", err)
	}
	return nil
}
