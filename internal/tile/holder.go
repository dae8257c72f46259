package tile

// Holder is an ordered multiset of tiles. Factories, the center, pattern
// lines, the floor line, the discard pile and the bag are all Holders with
// different capacity policies layered on top.
//
// A zero Holder is empty and unbounded.
type Holder struct {
	tiles    []Tile
	capacity int // 0 means unbounded
}

// NewHolder returns an empty holder. capacity <= 0 means unbounded.
func NewHolder(capacity int) *Holder {
	if capacity < 0 {
		capacity = 0
	}
	return &Holder{capacity: capacity}
}

// Capacity returns the slot count, or 0 when unbounded.
func (h *Holder) Capacity() int { return h.capacity }

// Len returns the number of tiles held.
func (h *Holder) Len() int { return len(h.tiles) }

// Empty reports whether the holder has no tiles.
func (h *Holder) Empty() bool { return len(h.tiles) == 0 }

// Full reports whether a bounded holder has no free slot.
func (h *Holder) Full() bool { return h.capacity > 0 && len(h.tiles) >= h.capacity }

// Free returns the number of open slots; -1 when unbounded.
func (h *Holder) Free() int {
	if h.capacity == 0 {
		return -1
	}
	return h.capacity - len(h.tiles)
}

// Add appends tiles regardless of capacity.
func (h *Holder) Add(ts ...Tile) { h.tiles = append(h.tiles, ts...) }

// AddUpTo appends tiles in order until the holder is full and returns the
// tiles that did not fit.
func (h *Holder) AddUpTo(ts []Tile) (overflow []Tile) {
	if h.capacity == 0 {
		h.Add(ts...)
		return nil
	}
	n := h.capacity - len(h.tiles)
	if n < 0 {
		n = 0
	}
	if n > len(ts) {
		n = len(ts)
	}
	h.tiles = append(h.tiles, ts[:n]...)
	if n == len(ts) {
		return nil
	}
	return append([]Tile(nil), ts[n:]...)
}

// Tiles returns a copy of the held tiles in order.
func (h *Holder) Tiles() []Tile { return append([]Tile(nil), h.tiles...) }

// ColorsOf returns the colors of the held tiles in order.
func (h *Holder) ColorsOf() []Color {
	out := make([]Color, len(h.tiles))
	for i, t := range h.tiles {
		out[i] = t.Color
	}
	return out
}

// Count returns how many tiles of color c are held.
func (h *Holder) Count(c Color) int {
	n := 0
	for _, t := range h.tiles {
		if t.Color == c {
			n++
		}
	}
	return n
}

// Has reports whether at least one tile of color c is held.
func (h *Holder) Has(c Color) bool {
	for _, t := range h.tiles {
		if t.Color == c {
			return true
		}
	}
	return false
}

// Unique returns the distinct colors present, in canonical color order with
// the marker last.
func (h *Holder) Unique() []Color {
	var seen [FirstPlayer + 1]bool
	for _, t := range h.tiles {
		if int(t.Color) < len(seen) {
			seen[t.Color] = true
		}
	}
	var out []Color
	for c := range seen {
		if seen[c] {
			out = append(out, Color(c))
		}
	}
	return out
}

// RemoveFunc removes every tile for which match returns true and returns them
// in order.
func (h *Holder) RemoveFunc(match func(Tile) bool) []Tile {
	var removed []Tile
	kept := h.tiles[:0]
	for _, t := range h.tiles {
		if match(t) {
			removed = append(removed, t)
		} else {
			kept = append(kept, t)
		}
	}
	// clear the tail of the reused backing array
	for i := len(kept); i < len(h.tiles); i++ {
		h.tiles[i] = Tile{}
	}
	h.tiles = kept
	return removed
}

// RemoveAll removes every tile of color c.
func (h *Holder) RemoveAll(c Color) []Tile {
	return h.RemoveFunc(func(t Tile) bool { return t.Color == c })
}

// RemoveOne removes the first tile of color c, if any.
func (h *Holder) RemoveOne(c Color) (Tile, bool) {
	for i, t := range h.tiles {
		if t.Color == c {
			h.tiles = append(h.tiles[:i], h.tiles[i+1:]...)
			return t, true
		}
	}
	return Tile{}, false
}

// Clear empties the holder and returns what it held.
func (h *Holder) Clear() []Tile {
	out := h.tiles
	h.tiles = nil
	return out
}
