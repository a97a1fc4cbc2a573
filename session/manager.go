package session

import "sync"

// Manager is an optional per-client session holder for hosts that keep one
// live session per connection or UI instance. It is safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	current Session
}

// NewManager returns a manager in the logged-out state.
func NewManager() *Manager {
	return &Manager{}
}

// Set replaces the held session. A nil session logs out.
func (m *Manager) Set(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s == nil {
		m.current = Session{}
		return
	}
	m.current = *s
}

// Current returns a copy of the held session.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Authenticated reports whether a login is active.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Authenticated
}

// Logout clears the held session.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = Session{}
}
