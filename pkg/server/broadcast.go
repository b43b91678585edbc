package server

import (
	"sync"

	"github.com/travelweaver/weaver/pkg/agent"
	"github.com/travelweaver/weaver/pkg/types"
)

// subscriberBuffer bounds each SSE subscriber's event channel. A subscriber
// that falls this far behind starts dropping events rather than stalling the
// turn.
const subscriberBuffer = 256

// Broadcaster fans agent events out to SSE subscribers, keyed by session id.
// Each session's turn executor gets a sink from SinkFor; stream handlers
// subscribe and receive a copy of every event emitted after they attach.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[string]map[int64]chan *types.AgentEvent
	nextID int64
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[string]map[int64]chan *types.AgentEvent),
	}
}

// SinkFor returns an event sink that publishes to the session's subscribers.
func (b *Broadcaster) SinkFor(sessionID string) agent.EventSink {
	return func(event *types.AgentEvent) {
		b.publish(sessionID, event)
	}
}

func (b *Broadcaster) publish(sessionID string, event *types.AgentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[sessionID] {
		select {
		case ch <- event:
		default:
			// Subscriber is saturated; drop rather than block the turn.
		}
	}
}

// Subscribe attaches a new subscriber to the session's event feed. The
// returned id releases the subscription via Unsubscribe.
func (b *Broadcaster) Subscribe(sessionID string) (int64, <-chan *types.AgentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	ch := make(chan *types.AgentEvent, subscriberBuffer)

	if _, ok := b.subs[sessionID]; !ok {
		b.subs[sessionID] = make(map[int64]chan *types.AgentEvent)
	}
	b.subs[sessionID][id] = ch
	return id, ch
}

// Unsubscribe detaches a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(sessionID string, id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	session, ok := b.subs[sessionID]
	if !ok {
		return
	}
	if ch, ok := session[id]; ok {
		close(ch)
		delete(session, id)
	}
	if len(session) == 0 {
		delete(b.subs, sessionID)
	}
}
