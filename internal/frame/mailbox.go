package frame

import "sync"

// Mailbox holds the most recent payload. Writers never wait for readers and
// older values are dropped, never queued.
type Mailbox struct {
	mu      sync.Mutex
	current Payload
	writes  uint64
}

// Store replaces the current payload, taking over the caller's reference.
func (m *Mailbox) Store(p Payload) {
	m.mu.Lock()
	old := m.current
	m.current = p
	m.writes++
	m.mu.Unlock()

	if old != nil {
		old.Release()
	}
}

// Load returns the current payload with an extra reference, or nil.
func (m *Mailbox) Load() Payload {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	m.current.Retain()
	return m.current
}

// Writes counts Store calls.
func (m *Mailbox) Writes() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Clear drops the current payload.
func (m *Mailbox) Clear() {
	m.mu.Lock()
	old := m.current
	m.current = nil
	m.mu.Unlock()

	if old != nil {
		old.Release()
	}
}
