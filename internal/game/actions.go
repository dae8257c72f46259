package game

import (
	"github.com/robalobadob/azul/internal/board"
	"github.com/robalobadob/azul/internal/tile"
)

// LegalActions lists every legal move for the player to act. It never
// mutates state and is empty outside Draft.
//
// Order: factories by index, then the center; within a source colors in
// canonical order; within a color pattern lines 0..4 then the floor.
func (g *Game) LegalActions() []Action {
	if g.phase != PhaseDraft {
		return nil
	}
	pb := g.players[g.current]

	var out []Action
	offer := func(src Source, factory int, colors []tile.Color) {
		for _, c := range colors {
			if !c.Drawable() {
				continue
			}
			for line := 0; line < board.Rows; line++ {
				if pb.CanPlace(line, c) {
					out = append(out, Action{Source: src, Factory: factory, Color: c, Line: line})
				}
			}
			out = append(out, Action{Source: src, Factory: factory, Color: c, Line: FloorLine})
		}
	}
	for i, f := range g.factories {
		offer(FromFactory, i, f.Unique())
	}
	offer(FromCenter, -1, g.center.Unique())
	return out
}

// IsLegal reports whether a would be accepted by ApplyAction.
func (g *Game) IsLegal(a Action) bool { return g.validate(a) == nil }

// validate checks a against the current state without changing anything.
func (g *Game) validate(a Action) error {
	switch {
	case g.phase == PhaseGameEnd:
		return illegal(a, ReasonGameOver, "the game has ended")
	case g.phase != PhaseDraft:
		return illegal(a, ReasonWrongPhase, "phase is %s", g.phase)
	}
	if !a.Color.Drawable() {
		return illegal(a, ReasonBadColor, "%s cannot be drafted", a.Color)
	}
	if a.Line != FloorLine && (a.Line < 0 || a.Line >= board.Rows) {
		return illegal(a, ReasonBadLine, "line %d does not exist", a.Line)
	}

	var src *tile.Holder
	switch a.Source {
	case FromFactory:
		if a.Factory < 0 || a.Factory >= len(g.factories) {
			return illegal(a, ReasonNoSuchFactory, "factory %d does not exist", a.Factory)
		}
		src = g.factories[a.Factory]
	case FromCenter:
		src = g.center
	default:
		return illegal(a, ReasonBadSource, "unknown source %d", a.Source)
	}
	if !src.Has(a.Color) {
		return illegal(a, ReasonColorAbsent, "no %s tiles in the %s", a.Color, a.Source)
	}

	if a.Line != FloorLine && !g.players[g.current].CanPlace(a.Line, a.Color) {
		return illegal(a, ReasonLineRejected, "line %d cannot take %s", a.Line, a.Color)
	}
	return nil
}
