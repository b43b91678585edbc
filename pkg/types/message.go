// Package types defines the shared data model for the Weaver agent core:
// conversation messages, turn results, and the typed event stream emitted
// while a turn executes.
package types

import (
	"time"
)

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	// RoleUser is a message typed by the traveler.
	RoleUser MessageRole = "user"
	// RoleAgent is a message authored by the travel agent.
	RoleAgent MessageRole = "agent"
	// RoleSystem is the system preamble; never stored in conversation
	// history, only assembled into prompts.
	RoleSystem MessageRole = "system"
)

// Message is a single conversation entry. Messages are immutable once
// appended to a conversation; the UI replaces whole lists, it never edits
// an entry in place.
type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`

	// PaymentCompleted is set only on agent messages whose turn saw a
	// payment tool reach a completed status. Advisory for the UI; the
	// payment provider's receipt is the authoritative record.
	PaymentCompleted bool `json:"payment_completed,omitempty"`
}

// NewUserMessage creates a user message stamped with the current time.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

// NewAgentMessage creates an agent message stamped with the current time.
func NewAgentMessage(content string) *Message {
	return &Message{Role: RoleAgent, Content: content, Timestamp: time.Now()}
}

// NewSystemMessage creates a system message for prompt assembly.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content, Timestamp: time.Now()}
}

// TurnResult is the outcome of one user-message-in, agent-response-out
// cycle. Content is always non-empty: failed turns carry a displayable
// error description instead of propagating the failure.
type TurnResult struct {
	Content string `json:"content"`

	// PaymentCompleted is true iff a payment-class tool call was allowed
	// by the policy gate and subsequently reported a completed status
	// during this turn.
	PaymentCompleted bool `json:"payment_completed"`
}
