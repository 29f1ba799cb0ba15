package location

import (
	"sync"
	"time"

	"components-api/internal/component"
	"components-api/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Manager owns the live location sessions and their registry entry. Each
// session corresponds to one component instance on a rendered page and is
// discarded when the component is removed.
type Manager struct {
	searcher Searcher
	registry *component.Registry
	scroll   *component.ScrollLock
	wait     time.Duration
	log      zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager using the given searcher and debounce
// window for new sessions.
func NewManager(searcher Searcher, wait time.Duration, log zerolog.Logger) *Manager {
	return &Manager{
		searcher: searcher,
		registry: component.NewRegistry(),
		scroll:   component.NewScrollLock(),
		wait:     wait,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Create makes a new session seeded with the given initial field values and
// registers it for dismissal broadcasts.
func (m *Manager) Create(initial models.Location) *Session {
	id := uuid.NewString()
	s := NewSession(id, m.searcher, m.wait, initial, m.log)
	s.scroll = m.scroll

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.registry.Register(id, s)
	return s
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove tears down a session: in-flight work is aborted and the registry
// entry dropped. Returns false for unknown IDs.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}

	m.registry.Unregister(id)
	s.Close()
	return true
}

// DismissOthers closes the dropdown of every session except the named one.
func (m *Manager) DismissOthers(id string) {
	m.registry.DismissOthers(id)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ScrollState reports the shared page scroll lock: whether any open dropdown
// holds it and how many holders there are.
func (m *Manager) ScrollState() (locked bool, depth int) {
	return m.scroll.Locked(), m.scroll.Depth()
}
