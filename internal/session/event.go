package session

import "github.com/robalobadob/azul/internal/game"

// EventKind names a session event. The values double as wire message types.
type EventKind string

const (
	EventStateUpdate EventKind = "game_state_update"
	EventAborted     EventKind = "game_aborted"
)

// Event is emitted after every state change of a session.
type Event struct {
	Kind      EventKind
	SessionID string
	Meta      Meta
	State     game.State
}

// Terminal reports whether the event carries a finished game.
func (e Event) Terminal() bool { return e.Meta.Finished() }

// Listener receives session events. OnEvent runs while the session lock is
// held, so it must not block and must not call back into the same session.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }
