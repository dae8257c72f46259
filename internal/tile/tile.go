// internal/tile/tile.go
//
// Tile values for the Azul engine.
// Defines:
//   - Color: the five wall colors plus the first-player marker pseudo-color.
//   - Tile: an immutable (id, color) pair. Rules only ever look at the color;
//     the id exists so tests and audits can trace a physical tile.
//   - Generator: hands out sequential ids for one game's tiles.

package tile

import (
	"fmt"
	"strings"
)

// Color identifies a tile color. FirstPlayer is not a drawable color.
type Color uint8

const (
	Blue Color = iota
	Yellow
	Red
	Black
	White
	FirstPlayer
)

// PerColor is how many tiles of each color exist in a game.
const PerColor = 20

// Colors lists the drawable colors in canonical order. The wall pattern is
// derived from this order: row r, column c holds Colors[(c-r) mod 5].
var Colors = [5]Color{Blue, Yellow, Red, Black, White}

var colorNames = [...]string{
	Blue:        "blue",
	Yellow:      "yellow",
	Red:         "red",
	Black:       "black",
	White:       "white",
	FirstPlayer: "first_player",
}

// String returns the lowercase color name.
func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("color(%d)", uint8(c))
}

// Drawable reports whether c is one of the five wall colors.
func (c Color) Drawable() bool { return c <= White }

// Index returns the position of c in Colors, or -1 for the marker.
func (c Color) Index() int {
	if !c.Drawable() {
		return -1
	}
	return int(c)
}

// ParseColor accepts color names case-insensitively ("blue", "BLUE").
func ParseColor(s string) (Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range colorNames {
		if n == name {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tile color %q", s)
}

// MarshalText encodes the color as its name.
func (c Color) MarshalText() ([]byte, error) {
	if int(c) >= len(colorNames) {
		return nil, fmt.Errorf("unknown tile color %d", uint8(c))
	}
	return []byte(colorNames[c]), nil
}

// UnmarshalText decodes a color name.
func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Tile is a single physical tile.
type Tile struct {
	ID    int
	Color Color
}

// Same reports whether two tiles are interchangeable (same color).
func (t Tile) Same(o Tile) bool { return t.Color == o.Color }

// IsMarker reports whether t is the first-player marker.
func (t Tile) IsMarker() bool { return t.Color == FirstPlayer }

func (t Tile) String() string { return fmt.Sprintf("Tile(%d, %s)", t.ID, t.Color) }

// Generator issues tiles with sequential ids. One generator belongs to one
// game's setup routine; ids are unique only within that game.
type Generator struct {
	next int
}

// NewGenerator returns a generator whose first id is 1.
func NewGenerator() *Generator { return &Generator{next: 1} }

func (g *Generator) make(c Color) Tile {
	t := Tile{ID: g.next, Color: c}
	g.next++
	return t
}

// GameTiles returns PerColor tiles of every drawable color, grouped by color.
func (g *Generator) GameTiles() []Tile {
	out := make([]Tile, 0, PerColor*len(Colors))
	for _, c := range Colors {
		for i := 0; i < PerColor; i++ {
			out = append(out, g.make(c))
		}
	}
	return out
}

// OfColor returns n fresh tiles of color c.
func (g *Generator) OfColor(n int, c Color) []Tile {
	out := make([]Tile, n)
	for i := range out {
		out[i] = g.make(c)
	}
	return out
}

// Marker returns a fresh first-player marker.
func (g *Generator) Marker() Tile { return g.make(FirstPlayer) }

// Issued reports how many ids have been handed out.
func (g *Generator) Issued() int { return g.next - 1 }
