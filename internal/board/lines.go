package board

import "github.com/robalobadob/azul/internal/tile"

// FloorCapacity is the number of floor slots; tiles beyond it are discarded.
const FloorCapacity = 7

// FloorPenalties is applied positionally to the occupied floor slots.
var FloorPenalties = [FloorCapacity]int{-1, -1, -2, -2, -2, -3, -3}

// PatternLine stages tiles of a single color before they move to the wall.
// Line i has capacity i+1.
type PatternLine struct {
	tile.Holder
}

func newPatternLine(capacity int) *PatternLine {
	return &PatternLine{Holder: *tile.NewHolder(capacity)}
}

// Color returns the line's color and false when the line is empty.
func (p *PatternLine) Color() (tile.Color, bool) {
	ts := p.Tiles()
	if len(ts) == 0 {
		return 0, false
	}
	return ts[0].Color, true
}

// Accepts reports whether a tile of color c may be added.
func (p *PatternLine) Accepts(c tile.Color) bool {
	if p.Full() || !c.Drawable() {
		return false
	}
	cur, ok := p.Color()
	return !ok || cur == c
}

// FloorLine collects penalty tiles.
type FloorLine struct {
	tile.Holder
}

func newFloorLine() *FloorLine {
	return &FloorLine{Holder: *tile.NewHolder(FloorCapacity)}
}

// AddMarker puts the first-player marker on the floor even when every slot is
// taken.
func (f *FloorLine) AddMarker(m tile.Tile) { f.Add(m) }

// HasMarker reports whether the first-player marker is on the floor.
func (f *FloorLine) HasMarker() bool { return f.Has(tile.FirstPlayer) }

// Penalty sums FloorPenalties over the occupied slots, capped at FloorCapacity.
func (f *FloorLine) Penalty() int {
	n := f.Len()
	if n > FloorCapacity {
		n = FloorCapacity
	}
	p := 0
	for i := 0; i < n; i++ {
		p += FloorPenalties[i]
	}
	return p
}
