package agent

import "sync"

// SessionFactory builds a new session for an id. The manager calls it at
// most once per id.
type SessionFactory func(id string) *Session

// Manager is the session arena: it keys live sessions by id and creates
// them on first use. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  SessionFactory
}

// NewManager creates a manager over the given factory.
func NewManager(factory SessionFactory) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		factory:  factory,
	}
}

// Get returns the session for id, creating it on first use.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[id]; ok {
		return session
	}
	session := m.factory(id)
	m.sessions[id] = session
	return session
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
