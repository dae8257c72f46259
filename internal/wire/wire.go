// internal/wire/wire.go
//
// JSON shapes shared by the REST and websocket surfaces.
// Defines:
//   - Action: the client action payload (TAKE_FROM_FACTORY / TAKE_FROM_CENTER /
//     ABORT_GAME, factory_id, tile_type, pattern_line) and its conversions.
//   - Messages: game_state_update, game_aborted, error (server -> client),
//     action, abort_game (client -> server).
//
// Notes:
//   - tile_type is uppercase on the way out and case-insensitive on the way in.
//   - pattern_line -1 is the floor line; factory_id is null for the center.

package wire

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robalobadob/azul/internal/game"
	"github.com/robalobadob/azul/internal/session"
	"github.com/robalobadob/azul/internal/tile"
)

// ErrBadPayload marks a client payload that cannot be turned into an action.
var ErrBadPayload = errors.New("bad action payload")

// ActionType is the client-facing action kind.
type ActionType string

const (
	TakeFromFactory ActionType = "TAKE_FROM_FACTORY"
	TakeFromCenter  ActionType = "TAKE_FROM_CENTER"
	AbortGame       ActionType = "ABORT_GAME"
)

// Action is the action payload exchanged with clients.
type Action struct {
	Type        ActionType `json:"type"`
	FactoryID   *int       `json:"factory_id"`
	TileType    *string    `json:"tile_type"`
	PatternLine *int       `json:"pattern_line"`
}

// IsAbort reports whether the payload asks to abort the game.
func (p Action) IsAbort() bool { return p.Type == AbortGame }

// FromAction converts an engine action into its payload.
func FromAction(a game.Action) Action {
	color := strings.ToUpper(a.Color.String())
	line := a.Line
	p := Action{Type: TakeFromCenter, TileType: &color, PatternLine: &line}
	if a.Source == game.FromFactory {
		f := a.Factory
		p.Type, p.FactoryID = TakeFromFactory, &f
	}
	return p
}

// FromActions converts a list of engine actions; nil in, empty out.
func FromActions(as []game.Action) []Action {
	out := make([]Action, 0, len(as))
	for _, a := range as {
		out = append(out, FromAction(a))
	}
	return out
}

// ToGame converts the payload into an engine action. ABORT_GAME has no
// engine action and is rejected here; check IsAbort first.
func (p Action) ToGame() (game.Action, error) {
	if p.TileType == nil {
		return game.Action{}, fmt.Errorf("%w: tile_type is required", ErrBadPayload)
	}
	c, err := tile.ParseColor(*p.TileType)
	if err != nil {
		return game.Action{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if p.PatternLine == nil {
		return game.Action{}, fmt.Errorf("%w: pattern_line is required", ErrBadPayload)
	}

	switch p.Type {
	case TakeFromFactory:
		if p.FactoryID == nil {
			return game.Action{}, fmt.Errorf("%w: factory_id is required", ErrBadPayload)
		}
		return game.TakeFactory(*p.FactoryID, c, *p.PatternLine), nil
	case TakeFromCenter:
		return game.TakeCenter(c, *p.PatternLine), nil
	}
	return game.Action{}, fmt.Errorf("%w: unknown action type %q", ErrBadPayload, p.Type)
}

// MessageType tags every websocket message.
type MessageType string

const (
	MsgStateUpdate MessageType = "game_state_update"
	MsgAborted     MessageType = "game_aborted"
	MsgError       MessageType = "error"
	MsgAction      MessageType = "action"
	MsgAbortGame   MessageType = "abort_game"
)

// StateMessage carries a game snapshot to clients.
type StateMessage struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	GameState game.State  `json:"game_state"`
}

// EventMessage renders a session event.
func EventMessage(ev session.Event) StateMessage {
	t := MsgStateUpdate
	if ev.Kind == session.EventAborted {
		t = MsgAborted
	}
	return StateMessage{Type: t, SessionID: ev.SessionID, GameState: ev.State}
}

// ErrorMessage reports a failure to the client that caused it.
type ErrorMessage struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// NewError builds an error message.
func NewError(msg string) ErrorMessage { return ErrorMessage{Type: MsgError, Message: msg} }

// ClientMessage is anything a client sends over the websocket.
type ClientMessage struct {
	Type   MessageType `json:"type"`
	Action *Action     `json:"action,omitempty"`
}
