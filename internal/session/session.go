// internal/session/session.go
//
// Session façade types.
// Defines:
//   - Session: one game plus its metadata, guarded by its own mutex.
//   - Meta / Status: what callers can list without touching the game.
//   - Store: the persistence interface the Manager keeps sessions in.

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/azul/internal/game"
)

var (
	// ErrNotFound is returned for an unknown (or already deleted) session id.
	ErrNotFound = errors.New("session not found")

	// ErrFinished is returned when acting on a session whose game has ended.
	ErrFinished = errors.New("session finished")
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// Meta describes a session.
type Meta struct {
	ID           string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	NumPlayers   int       `json:"num_players"`
	Seed         int64     `json:"seed"`
	Status       Status    `json:"status"`
}

// Finished reports whether the session reached a terminal status.
func (m Meta) Finished() bool { return m.Status != StatusActive }

// Session is one hosted game. All access goes through mu so at most one
// action is applied at a time.
type Session struct {
	mu   sync.Mutex
	meta Meta
	game *game.Game
	gone bool // removed from the store; late callers get ErrNotFound
}

func newSession(id string, g *game.Game, now time.Time) *Session {
	return &Session{
		meta: Meta{
			ID:           id,
			CreatedAt:    now,
			LastActivity: now,
			NumPlayers:   g.NumPlayers(),
			Seed:         g.Seed(),
			Status:       StatusActive,
		},
		game: g,
	}
}

// ID returns the session id. It never changes.
func (s *Session) ID() string { return s.meta.ID }

// Meta returns a copy of the session metadata.
func (s *Session) Meta() Meta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// Store defines where the Manager keeps sessions.
// Implementations may be backed by memory (internal/store) or anything
// else that can hold live *Session values.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *Session) error

	// Get returns the session or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes the session. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every stored session in no particular order.
	List(ctx context.Context) ([]*Session, error)
}
