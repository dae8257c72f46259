package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/azul/internal/tile"
)

func tiles(n int, c tile.Color) []tile.Tile {
	return tile.NewGenerator().OfColor(n, c)
}

func TestCellColorPattern(t *testing.T) {
	assert.Equal(t, tile.Blue, CellColor(0, 0))
	assert.Equal(t, tile.White, CellColor(0, 4))
	assert.Equal(t, tile.White, CellColor(1, 0))
	assert.Equal(t, tile.Blue, CellColor(4, 4))
	assert.Equal(t, tile.Yellow, CellColor(4, 0))

	for r := 0; r < Rows; r++ {
		for _, c := range tile.Colors {
			assert.Equal(t, c, CellColor(r, ColumnFor(r, c)))
		}
	}
}

func TestCanPlace(t *testing.T) {
	b := New()
	assert.True(t, b.CanPlace(0, tile.Red))
	assert.False(t, b.CanPlace(-1, tile.Red))
	assert.False(t, b.CanPlace(5, tile.Red))
	assert.False(t, b.CanPlace(2, tile.FirstPlayer))

	b.PlaceOrOverflow(2, tiles(1, tile.Red))
	assert.True(t, b.CanPlace(2, tile.Red))
	assert.False(t, b.CanPlace(2, tile.Blue), "line holds another color")

	b.PlaceOrOverflow(2, tiles(2, tile.Red))
	assert.False(t, b.CanPlace(2, tile.Red), "line is full")

	_, err := b.ResolveWallTiling()
	require.NoError(t, err)
	assert.False(t, b.CanPlace(2, tile.Red), "wall already holds red in row 2")
	assert.True(t, b.CanPlace(2, tile.Blue))
}

func TestPlaceOrOverflow(t *testing.T) {
	b := New()

	discard := b.PlaceOrOverflow(1, tiles(4, tile.Blue))
	assert.Empty(t, discard)
	assert.Equal(t, 2, b.Lines[1].Len())
	assert.Equal(t, 2, b.Floor.Len())

	discard = b.PlaceOrOverflow(Floor, tiles(6, tile.Black))
	assert.Len(t, discard, 1)
	assert.Equal(t, FloorCapacity, b.Floor.Len())
}

func TestResolveIsolatedPlacement(t *testing.T) {
	b := New()
	b.PlaceOrOverflow(2, tiles(3, tile.Yellow))

	res, err := b.ResolveWallTiling()
	require.NoError(t, err)

	col := ColumnFor(2, tile.Yellow)
	assert.True(t, b.Wall.Filled(2, col))
	assert.Equal(t, 1, b.Score)
	assert.Len(t, res.Discard, 2)
	require.Len(t, res.Placed, 1)
	assert.Equal(t, Placement{Row: 2, Col: col, Color: tile.Yellow, Points: 1}, res.Placed[0])
	assert.True(t, b.Lines[2].Empty())
}

func TestResolveLeavesPartialLines(t *testing.T) {
	b := New()
	b.PlaceOrOverflow(4, tiles(3, tile.Red))

	res, err := b.ResolveWallTiling()
	require.NoError(t, err)
	assert.Empty(t, res.Placed)
	assert.Empty(t, res.Discard)
	assert.Equal(t, 0, b.Score)
	assert.Equal(t, 3, b.Lines[4].Len())
}

func TestResolveWithNothingToDoIsNoop(t *testing.T) {
	b := New()
	b.Score = 12

	res, err := b.ResolveWallTiling()
	require.NoError(t, err)
	assert.Equal(t, 12, b.Score)
	assert.Zero(t, res.Delta)
	assert.Empty(t, res.Discard)
	assert.Empty(t, res.Markers)
}

func TestAdjacencyScoring(t *testing.T) {
	// Row 0: blue(0) yellow(1) red(2). Row 1 blue sits at column 1, under yellow.
	b := New()
	place := func(line int, c tile.Color) int {
		b.PlaceOrOverflow(line, tiles(line+1, c))
		res, err := b.ResolveWallTiling()
		require.NoError(t, err)
		require.Len(t, res.Placed, 1)
		return res.Placed[0].Points
	}

	assert.Equal(t, 1, place(0, tile.Blue))
	assert.Equal(t, 2, place(0, tile.Yellow), "horizontal run of two")
	assert.Equal(t, 3, place(0, tile.Red), "horizontal run of three")
	assert.Equal(t, 2, place(1, tile.Blue), "vertical run of two under yellow")
	// row 1 yellow is column 2: horizontal run 2 (with blue), vertical run 2 (with red above)
	assert.Equal(t, 4, place(1, tile.Yellow))
	assert.Equal(t, 12, b.Score)
}

func TestFloorPenaltySchedule(t *testing.T) {
	b := New()
	discard := b.PlaceOrOverflow(Floor, tiles(8, tile.White))
	assert.Len(t, discard, 1, "eighth tile is discarded on overflow")
	assert.Equal(t, -14, b.Floor.Penalty())

	b.Score = 20
	res, err := b.ResolveWallTiling()
	require.NoError(t, err)
	assert.Equal(t, -14, res.Penalty)
	assert.Equal(t, 6, b.Score)
	assert.Len(t, res.Discard, 7)
	assert.True(t, b.Floor.Empty())
}

func TestScoreClampedAtZero(t *testing.T) {
	b := New()
	b.Score = 3
	b.PlaceOrOverflow(Floor, tiles(4, tile.Red))

	res, err := b.ResolveWallTiling()
	require.NoError(t, err)
	assert.Equal(t, 0, b.Score)
	assert.Equal(t, -3, res.Delta)
}

func TestMarkerCountsButIsNotDiscarded(t *testing.T) {
	b := New()
	gen := tile.NewGenerator()
	b.Floor.AddMarker(gen.Marker())
	b.PlaceOrOverflow(Floor, gen.OfColor(1, tile.Red))
	b.Score = 5

	res, err := b.ResolveWallTiling()
	require.NoError(t, err)
	assert.Equal(t, -2, res.Penalty)
	assert.Equal(t, 3, b.Score)
	require.Len(t, res.Markers, 1)
	assert.True(t, res.Markers[0].IsMarker())
	require.Len(t, res.Discard, 1)
	assert.Equal(t, tile.Red, res.Discard[0].Color)
}

func TestMarkerBypassesFullFloor(t *testing.T) {
	b := New()
	b.PlaceOrOverflow(Floor, tiles(7, tile.Red))
	b.Floor.AddMarker(tile.NewGenerator().Marker())
	assert.Equal(t, 8, b.Floor.Len())
	assert.True(t, b.Floor.HasMarker())
	assert.Equal(t, -14, b.Floor.Penalty())
}

func TestFinalBonus(t *testing.T) {
	b := New()
	// complete row 0
	for _, c := range tile.Colors {
		_, _, err := b.Wall.Place(0, tiles(1, c)[0])
		require.NoError(t, err)
	}
	// complete column 0 (rows 1..4)
	for r := 1; r < Rows; r++ {
		_, _, err := b.Wall.Place(r, tiles(1, CellColor(r, 0))[0])
		require.NoError(t, err)
	}
	assert.True(t, b.HasCompletedRow())
	assert.Equal(t, 1, b.Wall.CompleteRows())
	assert.Equal(t, 1, b.Wall.CompleteColumns())
	assert.Equal(t, 0, b.Wall.CompleteColors())
	assert.Equal(t, RowBonus+ColumnBonus, b.FinalBonus())

	// blue lives on the diagonal; fill the rest of it
	for r := 1; r < Rows; r++ {
		if !b.Wall.HasColor(r, tile.Blue) {
			_, _, err := b.Wall.Place(r, tiles(1, tile.Blue)[0])
			require.NoError(t, err)
		}
	}
	assert.Equal(t, 1, b.Wall.CompleteColors())
	assert.Equal(t, RowBonus+ColumnBonus+ColorBonus, b.FinalBonus())
}

func TestWallRejectsOccupiedCell(t *testing.T) {
	var w Wall
	_, _, err := w.Place(3, tiles(1, tile.Black)[0])
	require.NoError(t, err)
	_, _, err = w.Place(3, tiles(1, tile.Black)[0])
	assert.Error(t, err)
	_, _, err = w.Place(3, tile.NewGenerator().Marker())
	assert.Error(t, err)
}
