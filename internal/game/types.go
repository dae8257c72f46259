// internal/game/types.go
//
// Core type definitions for the Azul engine.
// Defines:
//   - Phase: the closed set of state-machine phases.
//   - Completion / Outcome: how (and whether) a game finished.
//   - Source / Action: a drafting move.

package game

import (
	"fmt"

	"github.com/robalobadob/azul/internal/board"
	"github.com/robalobadob/azul/internal/tile"
)

// Phase is a state of the game state machine.
//
//	Setup -> Draft -> WallTiling -> RoundPrep -> Draft ...
//	                             \-> GameEnd
type Phase string

const (
	PhaseSetup      Phase = "setup"
	PhaseDraft      Phase = "draft"
	PhaseWallTiling Phase = "wall_tiling"
	PhaseRoundPrep  Phase = "round_prep"
	PhaseGameEnd    Phase = "game_end"
)

// Completion reports whether a game is still running, ended on its own, or
// was aborted.
type Completion string

const (
	NotCompleted Completion = "NOT_COMPLETED"
	Completed    Completion = "COMPLETED"
	Aborted      Completion = "ABORTED"
)

// Outcome is the terminal result of a game. Winner is -1 when there is none
// (draw, abort, or still running).
type Outcome struct {
	Status      Completion `json:"status"`
	Winner      int        `json:"winner"`
	Draw        bool       `json:"draw"`
	Tied        []int      `json:"tied,omitempty"` // players sharing a draw
	FinalScores []int      `json:"final_scores,omitempty"`
	Bonuses     []int      `json:"bonuses,omitempty"`
}

// Source says where a drafting action takes tiles from.
type Source uint8

const (
	FromFactory Source = iota
	FromCenter
)

func (s Source) String() string {
	if s == FromCenter {
		return "center"
	}
	return "factory"
}

// FloorLine is the destination that sends tiles straight to the floor.
const FloorLine = board.Floor

// Action is one drafting move: take every tile of Color from a factory (or
// the center) and stage them on pattern line Line, or FloorLine.
// Factory is ignored for FromCenter.
type Action struct {
	Source  Source
	Factory int
	Color   tile.Color
	Line    int
}

// TakeFactory builds a take-from-factory action.
func TakeFactory(factory int, c tile.Color, line int) Action {
	return Action{Source: FromFactory, Factory: factory, Color: c, Line: line}
}

// TakeCenter builds a take-from-center action.
func TakeCenter(c tile.Color, line int) Action {
	return Action{Source: FromCenter, Factory: -1, Color: c, Line: line}
}

func (a Action) String() string {
	dest := fmt.Sprintf("line %d", a.Line)
	if a.Line == FloorLine {
		dest = "floor"
	}
	if a.Source == FromCenter {
		return fmt.Sprintf("take %s from center to %s", a.Color, dest)
	}
	return fmt.Sprintf("take %s from factory %d to %s", a.Color, a.Factory, dest)
}
