// internal/store/memory.go
//
// In-memory implementation of the session.Store interface.
// Sessions are live objects (a game plus its lock), so this is the store the
// server runs on; nothing survives a restart.
//
// Characteristics:
//   - Stores *session.Session values keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Get returns session.ErrNotFound for missing IDs.

package store

import (
	"context"
	"sync"

	"github.com/robalobadob/azul/internal/session"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex                // guards sessions map
	sessions map[string]*session.Session // keyed by Session.ID()
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() session.Store {
	return &memory{sessions: make(map[string]*session.Session)}
}

// Save adds or replaces the session in the map.
func (m *memory) Save(ctx context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
	return nil
}

// Get looks up a session by ID.
func (m *memory) Get(ctx context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, session.ErrNotFound
}

// Delete removes a session; unknown IDs are ignored.
func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// List returns a snapshot of every stored session.
func (m *memory) List(ctx context.Context) ([]*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*session.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out, nil
}
