// internal/board/wall.go
//
// The 5x5 wall and its adjacency scoring.
//
// Every cell has a fixed color given by a diagonal shift of tile.Colors:
// row r, column c is tile.Colors[(c-r) mod 5]. A cell is filled at most once
// and never cleared.

package board

import (
	"fmt"

	"github.com/robalobadob/azul/internal/tile"
)

// Rows is both the wall size and the number of pattern lines.
const Rows = 5

// CellColor returns the color fixed to wall cell (row, col).
func CellColor(row, col int) tile.Color {
	return tile.Colors[((col-row)%Rows+Rows)%Rows]
}

// ColumnFor returns the column that color c occupies in row.
func ColumnFor(row int, c tile.Color) int {
	return (c.Index() + row) % Rows
}

// Wall is a player's wall grid.
type Wall struct {
	cells  [Rows][Rows]tile.Tile
	filled [Rows][Rows]bool
}

// Filled reports whether cell (row, col) holds a tile.
func (w *Wall) Filled(row, col int) bool { return w.filled[row][col] }

// HasColor reports whether row already holds color c.
func (w *Wall) HasColor(row int, c tile.Color) bool {
	if !c.Drawable() || row < 0 || row >= Rows {
		return false
	}
	return w.filled[row][ColumnFor(row, c)]
}

// Cell returns the tile in (row, col) and whether the cell is filled.
func (w *Wall) Cell(row, col int) (tile.Tile, bool) {
	return w.cells[row][col], w.filled[row][col]
}

// Place puts t into its color's cell in row and returns the column and the
// points the placement scores.
func (w *Wall) Place(row int, t tile.Tile) (col, points int, err error) {
	if row < 0 || row >= Rows {
		return 0, 0, fmt.Errorf("wall row %d out of range", row)
	}
	if !t.Color.Drawable() {
		return 0, 0, fmt.Errorf("%s cannot be placed on the wall", t.Color)
	}
	col = ColumnFor(row, t.Color)
	if w.filled[row][col] {
		return col, 0, fmt.Errorf("wall cell (%d,%d) already holds %s", row, col, t.Color)
	}
	w.cells[row][col] = t
	w.filled[row][col] = true
	return col, w.score(row, col), nil
}

// score counts the contiguous runs through (row, col). A run counts only when
// it is longer than the placed tile alone; an isolated tile scores 1.
func (w *Wall) score(row, col int) int {
	h := 1
	for c := col - 1; c >= 0 && w.filled[row][c]; c-- {
		h++
	}
	for c := col + 1; c < Rows && w.filled[row][c]; c++ {
		h++
	}
	v := 1
	for r := row - 1; r >= 0 && w.filled[r][col]; r-- {
		v++
	}
	for r := row + 1; r < Rows && w.filled[r][col]; r++ {
		v++
	}

	points := 0
	if h > 1 {
		points += h
	}
	if v > 1 {
		points += v
	}
	if points == 0 {
		points = 1
	}
	return points
}

// CompleteRows counts rows with all five cells filled.
func (w *Wall) CompleteRows() int {
	n := 0
	for r := 0; r < Rows; r++ {
		full := true
		for c := 0; c < Rows; c++ {
			if !w.filled[r][c] {
				full = false
				break
			}
		}
		if full {
			n++
		}
	}
	return n
}

// CompleteColumns counts columns with all five cells filled.
func (w *Wall) CompleteColumns() int {
	n := 0
	for c := 0; c < Rows; c++ {
		full := true
		for r := 0; r < Rows; r++ {
			if !w.filled[r][c] {
				full = false
				break
			}
		}
		if full {
			n++
		}
	}
	return n
}

// CompleteColors counts colors placed in all five rows.
func (w *Wall) CompleteColors() int {
	var counts [Rows]int
	for r := 0; r < Rows; r++ {
		for c := 0; c < Rows; c++ {
			if w.filled[r][c] {
				counts[CellColor(r, c).Index()]++
			}
		}
	}
	n := 0
	for _, k := range counts {
		if k == Rows {
			n++
		}
	}
	return n
}

// Len returns the number of filled cells.
func (w *Wall) Len() int {
	n := 0
	for r := 0; r < Rows; r++ {
		for c := 0; c < Rows; c++ {
			if w.filled[r][c] {
				n++
			}
		}
	}
	return n
}

// Count returns how many cells hold color c.
func (w *Wall) Count(c tile.Color) int {
	if !c.Drawable() {
		return 0
	}
	n := 0
	for r := 0; r < Rows; r++ {
		if w.filled[r][ColumnFor(r, c)] {
			n++
		}
	}
	return n
}
