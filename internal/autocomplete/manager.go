package autocomplete

import (
	"sync"
	"time"

	"github.com/emberwick/storefront-api/internal/client/places"
)

// Manager owns one Bridge per checkout session, so each session's keystrokes
// debounce independently.
type Manager struct {
	mu      sync.Mutex
	bridges map[string]*Bridge
	places  *places.Client
	delay   time.Duration
}

// NewManager creates a bridge manager over a shared places client.
func NewManager(client *places.Client, delay time.Duration) *Manager {
	return &Manager{
		bridges: make(map[string]*Bridge),
		places:  client,
		delay:   delay,
	}
}

// Bridge returns the session's bridge, creating it on first use.
func (m *Manager) Bridge(sessionID string) *Bridge {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bridge, ok := m.bridges[sessionID]; ok {
		return bridge
	}
	bridge := NewBridge(m.places, m.delay)
	m.bridges[sessionID] = bridge
	return bridge
}

// Teardown drops a session's bridge, cancelling any pending cycle.
func (m *Manager) Teardown(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bridge, ok := m.bridges[sessionID]; ok {
		bridge.Stop()
		delete(m.bridges, sessionID)
	}
}
