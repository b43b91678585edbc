// Package memory holds per-session conversation state. History is
// append-only: entries are never edited or deleted once stored.
package memory

import (
	"errors"
	"sync"
	"time"

	"github.com/travelweaver/weaver/pkg/types"
)

// ErrInvalidMessage is returned when an append is rejected. Rejected
// messages leave the conversation unchanged.
var ErrInvalidMessage = errors.New("memory: invalid message")

// Conversation is an ordered, append-only message history for one session.
// Safe for concurrent use.
type Conversation struct {
	mu       sync.RWMutex
	messages []*types.Message
	lastTime time.Time
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append validates and stores a message. The message must have non-empty
// content and a user or agent role; anything else returns ErrInvalidMessage.
// The stored entry is stamped with a timestamp no earlier than any entry
// already in the history, so iteration order is chronological.
func (c *Conversation) Append(msg *types.Message) error {
	if msg == nil || msg.Content == "" {
		return ErrInvalidMessage
	}
	if msg.Role != types.RoleUser && msg.Role != types.RoleAgent {
		return ErrInvalidMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if now.Before(c.lastTime) {
		now = c.lastTime
	}
	c.lastTime = now

	stored := *msg
	stored.Timestamp = now
	c.messages = append(c.messages, &stored)
	return nil
}

// Snapshot returns a copy of the history in append order. The copy is
// isolated: later appends and caller-side mutation of the returned slice or
// its entries do not affect the store.
func (c *Conversation) Snapshot() []*types.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*types.Message, len(c.messages))
	for i, msg := range c.messages {
		copied := *msg
		out[i] = &copied
	}
	return out
}

// Len returns the number of stored messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last returns a copy of the most recent message, or nil when empty.
func (c *Conversation) Last() *types.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.messages) == 0 {
		return nil
	}
	copied := *c.messages[len(c.messages)-1]
	return &copied
}
