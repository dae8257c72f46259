// internal/game/engine.go
//
// Round and game engine for a single Azul game.
// Responsibilities:
//   - Setup: factories (2n+1), 100 tiles in the bag, marker in the center.
//   - Draft: sequential factory filling with discard recycling, turn order,
//     take-from-factory / take-from-center actions.
//   - WallTiling: resolve every board, collect discards, check for game end.
//   - RoundPrep: bump the round, hand the start to the marker holder.
//   - GameEnd: final bonuses and tie-break, or an aborted outcome.
//
// Notes:
//   - The engine is synchronous and performs no I/O. Callers serialize access.
//   - Phase changes only go through transition/step; guards are pure
//     predicates over the current state.
package game

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"

	"github.com/robalobadob/azul/internal/board"
	"github.com/robalobadob/azul/internal/tile"
)

const (
	MinPlayers  = 2
	MaxPlayers  = 4
	FactorySize = 4
	NoPlayer    = -1
	firstRound  = 1
)

// Game is one game instance. Its state is exclusive to it.
type Game struct {
	phase     Phase
	round     int
	current   int
	nextStart int
	claimed   bool // first-player marker taken this round

	seed      int64
	gen       *tile.Generator
	bag       *tile.Bag
	discard   *tile.Holder
	factories []*tile.Holder
	center    *tile.Holder
	players   []*board.Board
	marker    *tile.Tile // set while the marker waits between wall tiling and round prep

	outcome Outcome
}

// Option configures New.
type Option func(*options)

type options struct {
	seed   int64
	seeded bool
	source *mrand.Rand
}

// WithSeed makes bag shuffling reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed, o.seeded = seed, true }
}

// WithSource injects the random source owned by the bag.
func WithSource(r *mrand.Rand) Option {
	return func(o *options) { o.source = r }
}

// New creates a game for 2..4 players and runs Setup into the first Draft.
func New(players int, opts ...Option) (*Game, error) {
	if players < MinPlayers || players > MaxPlayers {
		return nil, &ConfigError{Players: players}
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if !o.seeded {
		o.seed = RandomSeed()
	}
	if o.source == nil {
		o.source = tile.NewSource(o.seed)
	}

	g := &Game{
		phase:   PhaseSetup,
		round:   firstRound,
		seed:    o.seed,
		gen:     tile.NewGenerator(),
		bag:     tile.NewBag(nil, o.source),
		discard: tile.NewHolder(0),
		center:  tile.NewHolder(0),
		players: make([]*board.Board, players),
		outcome: Outcome{Status: NotCompleted, Winner: NoPlayer},
	}
	if err := g.transition(PhaseSetup); err != nil {
		return nil, err
	}
	return g, nil
}

// RandomSeed returns a seed from crypto/rand so each unseeded game gets a
// fresh source.
func RandomSeed() int64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return int64(binary.BigEndian.Uint64(b[:]) >> 1)
}

// Phase returns the current phase.
func (g *Game) Phase() Phase { return g.phase }

// Round returns the 1-based round counter.
func (g *Game) Round() int { return g.round }

// CurrentPlayer returns the index of the player to act.
func (g *Game) CurrentPlayer() int { return g.current }

// NumPlayers returns the player count.
func (g *Game) NumPlayers() int { return len(g.players) }

// Seed returns the seed the bag was created with.
func (g *Game) Seed() int64 { return g.seed }

// Terminal reports whether the game has ended, naturally or by abort.
func (g *Game) Terminal() bool { return g.phase == PhaseGameEnd }

// Outcome returns the terminal outcome; Status is NotCompleted while running.
func (g *Game) Outcome() Outcome { return g.outcome }

// ApplyAction validates a and, only if it is legal, applies it. It is the
// sole mutating entry point for play.
func (g *Game) ApplyAction(a Action) error {
	if err := g.validate(a); err != nil {
		return err
	}

	pb := g.players[g.current]
	var taken []tile.Tile
	switch a.Source {
	case FromFactory:
		f := g.factories[a.Factory]
		taken = f.RemoveAll(a.Color)
		g.center.Add(f.Clear()...)
	case FromCenter:
		taken = g.center.RemoveAll(a.Color)
		if !g.claimed {
			if m, ok := g.center.RemoveOne(tile.FirstPlayer); ok {
				pb.Floor.AddMarker(m)
				g.claimed = true
				g.nextStart = g.current
			}
		}
	}
	g.discard.Add(pb.PlaceOrOverflow(a.Line, taken)...)
	g.current = (g.current + 1) % len(g.players)

	if g.draftExhausted() {
		return g.transition(PhaseWallTiling)
	}
	return nil
}

// Abort ends the game immediately without bonuses. Aborting a finished game
// is a no-op.
func (g *Game) Abort() {
	if g.Terminal() {
		return
	}
	g.phase = PhaseGameEnd
	g.outcome = Outcome{Status: Aborted, Winner: NoPlayer, FinalScores: g.scores()}
}

// transition enters p and keeps following the phase each entry step hands
// back until it reaches a resting phase (Draft or GameEnd).
func (g *Game) transition(p Phase) error {
	for {
		g.phase = p
		next, err := g.step(p)
		if err != nil {
			return err
		}
		if next == p {
			return nil
		}
		p = next
	}
}

// step runs the entry work of phase p and returns the phase that follows.
func (g *Game) step(p Phase) (Phase, error) {
	switch p {
	case PhaseSetup:
		g.setup()
		return PhaseDraft, nil
	case PhaseDraft:
		g.fillFactories()
		g.current = g.nextStart
		g.claimed = false
		if g.draftExhausted() {
			// Nothing could be dealt: every tile is on a wall or a pattern line.
			return PhaseGameEnd, nil
		}
		return PhaseDraft, nil
	case PhaseWallTiling:
		if err := g.wallTiling(); err != nil {
			return p, err
		}
		if g.anyCompletedRow() {
			return PhaseGameEnd, nil
		}
		return PhaseRoundPrep, nil
	case PhaseRoundPrep:
		g.round++
		if g.marker != nil {
			g.center.Add(*g.marker)
			g.marker = nil
		}
		return PhaseDraft, nil
	case PhaseGameEnd:
		g.finish()
		return PhaseGameEnd, nil
	}
	return p, invariant("unknown phase %q", p)
}

func (g *Game) setup() {
	for i := range g.players {
		g.players[i] = board.New()
	}
	g.factories = make([]*tile.Holder, 2*len(g.players)+1)
	for i := range g.factories {
		g.factories[i] = tile.NewHolder(FactorySize)
	}
	g.bag.Refill(g.gen.GameTiles())
	g.center.Add(g.gen.Marker())
}

// fillFactories fills each factory in turn. When the bag runs dry part-way
// through a factory the discard pile becomes the new bag before the next
// draw, so recycling happens per factory.
func (g *Game) fillFactories() {
	for _, f := range g.factories {
		for !f.Full() {
			drawn := g.bag.Draw(f.Free())
			f.Add(drawn...)
			if f.Full() {
				break
			}
			if g.discard.Empty() {
				break
			}
			g.bag.Refill(g.discard.Clear())
		}
	}
}

// draftExhausted reports whether no factory and no non-marker center tile
// remain.
func (g *Game) draftExhausted() bool {
	for _, f := range g.factories {
		if !f.Empty() {
			return false
		}
	}
	for _, c := range g.center.Unique() {
		if c.Drawable() {
			return false
		}
	}
	return true
}

func (g *Game) wallTiling() error {
	for i, pb := range g.players {
		res, err := pb.ResolveWallTiling()
		if err != nil {
			return invariant("player %d: %v", i, err)
		}
		g.discard.Add(res.Discard...)
		for _, m := range res.Markers {
			if g.marker != nil {
				return invariant("more than one first-player marker in play")
			}
			g.marker = &m
		}
	}
	return nil
}

func (g *Game) anyCompletedRow() bool {
	for _, pb := range g.players {
		if pb.HasCompletedRow() {
			return true
		}
	}
	return false
}

// finish adds bonuses and resolves the winner: highest score, then most
// complete wall rows; a remaining tie is a draw.
func (g *Game) finish() {
	out := Outcome{Status: Completed, Winner: NoPlayer, Bonuses: make([]int, len(g.players))}
	for i, pb := range g.players {
		bonus := pb.FinalBonus()
		pb.Score += bonus
		out.Bonuses[i] = bonus
	}
	out.FinalScores = g.scores()

	leaders := argmax(len(g.players), func(i int) int { return g.players[i].Score })
	if len(leaders) > 1 {
		leaders = subsetMax(leaders, func(i int) int { return g.players[i].Wall.CompleteRows() })
	}
	if len(leaders) == 1 {
		out.Winner = leaders[0]
	} else {
		out.Draw = true
		out.Tied = leaders
	}
	g.outcome = out
}

func (g *Game) scores() []int {
	out := make([]int, len(g.players))
	for i, pb := range g.players {
		out[i] = pb.Score
	}
	return out
}

func argmax(n int, key func(int) int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return subsetMax(idx, key)
}

func subsetMax(idx []int, key func(int) int) []int {
	var best []int
	bestKey := 0
	for _, i := range idx {
		k := key(i)
		switch {
		case len(best) == 0 || k > bestKey:
			best, bestKey = []int{i}, k
		case k == bestKey:
			best = append(best, i)
		}
	}
	return best
}
