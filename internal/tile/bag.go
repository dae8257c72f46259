package tile

import "math/rand/v2"

// Bag is the draw source. It owns its random source; two bags never share one.
type Bag struct {
	Holder
	rng *rand.Rand
}

// NewSource returns a deterministic random source for seed.
func NewSource(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// NewBag returns a bag holding tiles, shuffled with rng.
func NewBag(tiles []Tile, rng *rand.Rand) *Bag {
	b := &Bag{rng: rng}
	b.Refill(tiles)
	return b
}

// Refill adds tiles to the bag and reshuffles its whole content.
func (b *Bag) Refill(tiles []Tile) {
	b.Add(tiles...)
	b.rng.Shuffle(len(b.tiles), func(i, j int) {
		b.tiles[i], b.tiles[j] = b.tiles[j], b.tiles[i]
	})
}

// Draw removes up to n tiles chosen uniformly without replacement. When fewer
// than n remain it returns all of them; an empty bag yields nil.
func (b *Bag) Draw(n int) []Tile {
	if n > len(b.tiles) {
		n = len(b.tiles)
	}
	if n <= 0 {
		return nil
	}
	out := make([]Tile, 0, n)
	for i := 0; i < n; i++ {
		last := len(b.tiles) - 1
		j := b.rng.IntN(last + 1)
		b.tiles[j], b.tiles[last] = b.tiles[last], b.tiles[j]
		out = append(out, b.tiles[last])
		b.tiles = b.tiles[:last]
	}
	return out
}
