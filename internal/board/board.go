// internal/board/board.go
//
// A player's board: five pattern lines, the wall, the floor line and a score.
// Responsibilities:
//   - Placement legality (CanPlace) for drafted tiles.
//   - Routing drafted tiles into a pattern line and the floor (PlaceOrOverflow).
//   - The wall-tiling step: move full lines to the wall, score adjacency,
//     apply floor penalties, clamp the score at zero (ResolveWallTiling).
//   - Game-end predicates and the final bonus.

package board

import (
	"fmt"

	"github.com/robalobadob/azul/internal/tile"
)

// Floor is the destination sentinel meaning "straight to the floor line".
const Floor = -1

// Bonus points awarded at game end.
const (
	RowBonus    = 2
	ColumnBonus = 7
	ColorBonus  = 10
)

// Board is one player's board.
type Board struct {
	Lines [Rows]*PatternLine
	Wall  Wall
	Floor *FloorLine
	Score int
}

// New returns an empty board.
func New() *Board {
	b := &Board{Floor: newFloorLine()}
	for i := range b.Lines {
		b.Lines[i] = newPatternLine(i + 1)
	}
	return b
}

// CanPlace reports whether tiles of color c may be staged on pattern line
// line: the line exists, its wall cell for c is empty, and the line is
// either empty or holds c with room left.
func (b *Board) CanPlace(line int, c tile.Color) bool {
	if line < 0 || line >= Rows || !c.Drawable() {
		return false
	}
	if b.Wall.HasColor(line, c) {
		return false
	}
	return b.Lines[line].Accepts(c)
}

// PlaceOrOverflow stages tiles on line (or the floor when line is Floor).
// Tiles that fit neither the line nor the floor are returned for the discard
// pile. Callers validate with CanPlace first.
func (b *Board) PlaceOrOverflow(line int, tiles []tile.Tile) (discard []tile.Tile) {
	rest := tiles
	if line != Floor {
		rest = b.Lines[line].AddUpTo(tiles)
	}
	return b.Floor.AddUpTo(rest)
}

// Placement records one tile moved to the wall.
type Placement struct {
	Row    int
	Col    int
	Color  tile.Color
	Points int
}

// TilingResult is what one wall-tiling step did to a board.
type TilingResult struct {
	Placed  []Placement
	Points  int // adjacency points
	Penalty int // floor penalty, <= 0
	Delta   int // score change after clamping at zero
	Discard []tile.Tile
	Markers []tile.Tile // first-player markers taken off the floor
}

// ResolveWallTiling moves one tile of every full pattern line to the wall,
// discards the rest of those lines, applies the floor penalty and clears the
// floor. The score never drops below zero. Lines that are not full are left
// as they are.
func (b *Board) ResolveWallTiling() (TilingResult, error) {
	var res TilingResult
	for i, line := range b.Lines {
		if !line.Full() {
			continue
		}
		ts := line.Tiles()
		col, pts, err := b.Wall.Place(i, ts[0])
		if err != nil {
			return res, fmt.Errorf("resolve line %d: %w", i, err)
		}
		line.Clear()
		res.Placed = append(res.Placed, Placement{Row: i, Col: col, Color: ts[0].Color, Points: pts})
		res.Points += pts
		res.Discard = append(res.Discard, ts[1:]...)
	}

	res.Penalty = b.Floor.Penalty()
	for _, t := range b.Floor.Clear() {
		if t.IsMarker() {
			res.Markers = append(res.Markers, t)
			continue
		}
		res.Discard = append(res.Discard, t)
	}

	before := b.Score
	b.Score = max(0, b.Score+res.Points+res.Penalty)
	res.Delta = b.Score - before
	return res, nil
}

// HasCompletedRow reports whether any wall row is full. This ends the game.
func (b *Board) HasCompletedRow() bool { return b.Wall.CompleteRows() > 0 }

// FinalBonus returns the game-end bonus for complete rows, columns and colors.
func (b *Board) FinalBonus() int {
	return RowBonus*b.Wall.CompleteRows() +
		ColumnBonus*b.Wall.CompleteColumns() +
		ColorBonus*b.Wall.CompleteColors()
}

// Count returns how many tiles of color c the board holds in its lines,
// wall and floor.
func (b *Board) Count(c tile.Color) int {
	n := b.Wall.Count(c) + b.Floor.Count(c)
	for _, l := range b.Lines {
		n += l.Count(c)
	}
	return n
}
