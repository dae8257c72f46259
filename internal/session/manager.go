// internal/session/manager.go
//
// Manager hosts many concurrent games behind string ids.
// Responsibilities:
//   - Create / Get / LegalActions / Apply / Abort / Delete / List.
//   - Serialize access per session; different sessions never share a lock.
//   - Emit an Event to every Listener after each change, in order per session.
//   - Evict idle and finished sessions (see janitor.go).

package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/azul/internal/game"
)

const (
	DefaultMaxAge      = 24 * time.Hour
	DefaultFinishedTTL = 10 * time.Minute
)

// Manager is the session façade. It is safe for concurrent use.
type Manager struct {
	store       Store
	maxAge      time.Duration
	finishedTTL time.Duration
	now         func() time.Time

	lmu       sync.RWMutex
	listeners []Listener
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxAge sets how long any session may stay idle.
func WithMaxAge(d time.Duration) Option { return func(m *Manager) { m.maxAge = d } }

// WithFinishedTTL sets how long a finished session is kept after its last activity.
func WithFinishedTTL(d time.Duration) Option { return func(m *Manager) { m.finishedTTL = d } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// NewManager builds a Manager over st.
func NewManager(st Store, opts ...Option) *Manager {
	m := &Manager{
		store:       st,
		maxAge:      DefaultMaxAge,
		finishedTTL: DefaultFinishedTTL,
		now:         time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Subscribe registers l. Listeners are called in registration order.
func (m *Manager) Subscribe(l Listener) {
	m.lmu.Lock()
	defer m.lmu.Unlock()
	m.listeners = append(m.listeners, l)
}

func (m *Manager) emit(kind EventKind, s *Session) {
	ev := Event{Kind: kind, SessionID: s.meta.ID, Meta: s.meta, State: s.game.Snapshot()}
	m.lmu.RLock()
	defer m.lmu.RUnlock()
	for _, l := range m.listeners {
		l.OnEvent(ev)
	}
}

// Create starts a new game for players. A nil seed draws a fresh one.
func (m *Manager) Create(ctx context.Context, players int, seed *int64) (Meta, game.State, error) {
	sd := game.RandomSeed()
	if seed != nil {
		sd = *seed
	}
	g, err := game.New(players, game.WithSeed(sd))
	if err != nil {
		return Meta{}, game.State{}, err
	}

	s := newSession(uuid.NewString(), g, m.now().UTC())
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := m.store.Save(ctx, s); err != nil {
		return Meta{}, game.State{}, err
	}
	log.Info().Str("session", s.meta.ID).Int("players", players).Int64("seed", sd).Msg("session created")

	m.emit(EventStateUpdate, s)
	return s.meta, g.Snapshot(), nil
}

// lock loads id and returns it locked. The caller must unlock.
func (m *Manager) lock(ctx context.Context, id string) (*Session, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.gone {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	s.meta.LastActivity = m.now().UTC()
	return s, nil
}

// Get returns the session metadata and a snapshot of its game.
func (m *Manager) Get(ctx context.Context, id string) (Meta, game.State, error) {
	s, err := m.lock(ctx, id)
	if err != nil {
		return Meta{}, game.State{}, err
	}
	defer s.mu.Unlock()
	return s.meta, s.game.Snapshot(), nil
}

// LegalActions lists the moves open to the player to act. A finished
// session has none.
func (m *Manager) LegalActions(ctx context.Context, id string) ([]game.Action, error) {
	s, err := m.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return s.game.LegalActions(), nil
}

// Apply plays a for the current player. Illegal actions come back as
// *game.ActionError and change nothing.
func (m *Manager) Apply(ctx context.Context, id string, a game.Action) (game.State, error) {
	s, err := m.lock(ctx, id)
	if err != nil {
		return game.State{}, err
	}
	defer s.mu.Unlock()

	if s.meta.Finished() {
		return game.State{}, ErrFinished
	}
	if err := s.game.ApplyAction(a); err != nil {
		return game.State{}, err
	}
	if s.game.Terminal() {
		s.meta.Status = StatusCompleted
		out := s.game.Outcome()
		log.Info().Str("session", id).Int("winner", out.Winner).Bool("draw", out.Draw).
			Ints("scores", out.FinalScores).Msg("session completed")
	}
	m.emit(EventStateUpdate, s)
	return s.game.Snapshot(), nil
}

// Abort ends the game without bonuses.
func (m *Manager) Abort(ctx context.Context, id string) (game.State, error) {
	s, err := m.lock(ctx, id)
	if err != nil {
		return game.State{}, err
	}
	defer s.mu.Unlock()

	if s.meta.Finished() {
		return game.State{}, ErrFinished
	}
	m.abortLocked(s)
	return s.game.Snapshot(), nil
}

func (m *Manager) abortLocked(s *Session) {
	s.game.Abort()
	s.meta.Status = StatusAborted
	log.Info().Str("session", s.meta.ID).Int("round", s.game.Round()).Msg("session aborted")
	m.emit(EventAborted, s)
}

// Delete aborts the session if it is still running and removes it.
func (m *Manager) Delete(ctx context.Context, id string) error {
	s, err := m.lock(ctx, id)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if !s.meta.Finished() {
		m.abortLocked(s)
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	s.gone = true
	log.Info().Str("session", id).Msg("session deleted")
	return nil
}

// List returns the metadata of every session, oldest first.
func (m *Manager) List(ctx context.Context) ([]Meta, error) {
	all, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Meta, 0, len(all))
	for _, s := range all {
		out = append(out, s.Meta())
	}
	sortByCreation(out)
	return out, nil
}

// Count returns the number of stored sessions.
func (m *Manager) Count(ctx context.Context) int {
	all, err := m.store.List(ctx)
	if err != nil {
		return 0
	}
	return len(all)
}
