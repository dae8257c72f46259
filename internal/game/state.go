package game

import (
	"github.com/robalobadob/azul/internal/board"
	"github.com/robalobadob/azul/internal/tile"
)

// State is a serializable snapshot of a game. It shares no memory with the
// game it was taken from.
type State struct {
	Phase              Phase          `json:"phase"`
	Round              int            `json:"round_number"`
	CurrentPlayer      int            `json:"current_player"`
	StartingPlayer     int            `json:"starting_player"`
	FirstPlayerClaimed bool           `json:"first_player_token_taken"`
	Factories          [][]tile.Color `json:"factories"`
	Center             []tile.Color   `json:"center"`
	BagCount           int            `json:"bag_count"`
	DiscardCount       int            `json:"discard_count"`
	Players            []PlayerState  `json:"players"`
	Outcome            Outcome        `json:"outcome"`
}

// PlayerState is one board in a State.
type PlayerState struct {
	Index        int                              `json:"player_index"`
	Score        int                              `json:"score"`
	PatternLines []LineState                      `json:"pattern_lines"`
	Wall         [board.Rows][board.Rows]WallCell `json:"wall"`
	Floor        []tile.Color                     `json:"floor_line"`
	FloorPenalty int                              `json:"floor_penalty"`
	CompleteRows int                              `json:"complete_rows"`
}

// LineState is one pattern line in a PlayerState.
type LineState struct {
	Capacity int          `json:"capacity"`
	Tiles    []tile.Color `json:"tiles"`
}

// WallCell is one wall position: its fixed color and whether it is filled.
type WallCell struct {
	Color  tile.Color `json:"color"`
	Filled bool       `json:"filled"`
}

// Snapshot captures the current state.
func (g *Game) Snapshot() State {
	s := State{
		Phase:              g.phase,
		Round:              g.round,
		CurrentPlayer:      g.current,
		StartingPlayer:     g.nextStart,
		FirstPlayerClaimed: g.claimed,
		Factories:          make([][]tile.Color, len(g.factories)),
		Center:             g.center.ColorsOf(),
		BagCount:           g.bag.Len(),
		DiscardCount:       g.discard.Len(),
		Players:            make([]PlayerState, len(g.players)),
		Outcome:            g.outcome,
	}
	for i, f := range g.factories {
		s.Factories[i] = f.ColorsOf()
	}
	for i, pb := range g.players {
		s.Players[i] = playerState(i, pb)
	}
	s.Outcome.Tied = append([]int(nil), g.outcome.Tied...)
	s.Outcome.FinalScores = append([]int(nil), g.outcome.FinalScores...)
	s.Outcome.Bonuses = append([]int(nil), g.outcome.Bonuses...)
	return s
}

func playerState(i int, pb *board.Board) PlayerState {
	ps := PlayerState{
		Index:        i,
		Score:        pb.Score,
		PatternLines: make([]LineState, board.Rows),
		Floor:        pb.Floor.ColorsOf(),
		FloorPenalty: pb.Floor.Penalty(),
		CompleteRows: pb.Wall.CompleteRows(),
	}
	for r, l := range pb.Lines {
		ps.PatternLines[r] = LineState{Capacity: l.Capacity(), Tiles: l.ColorsOf()}
		for c := 0; c < board.Rows; c++ {
			ps.Wall[r][c] = WallCell{Color: board.CellColor(r, c), Filled: pb.Wall.Filled(r, c)}
		}
	}
	return ps
}
