package board

import "math/bits"

// Zobrist keys: one random number per cell per absolute player, plus a
// side-to-move key toggled every ply. Stones are keyed by the player who
// placed them (ply parity), so the incremental update in Play and the full
// recomputation in computeHash agree.

var (
	zobristCell [2][Width * columnStride]uint64
	zobristSide uint64
)

func init() {
	rng := splitmix64{state: 0x6a09e667f3bcc908}
	for owner := range zobristCell {
		for i := range zobristCell[owner] {
			zobristCell[owner][i] = rng.next()
		}
	}
	zobristSide = rng.next()
}

// computeHash recomputes the Zobrist key from scratch. The stones of the
// first player are those of the mover when an even number of moves has been
// played, and those of the opponent otherwise.
func computeHash(mover, mask uint64, moves uint8) uint64 {
	first := mover
	if moves&1 == 1 {
		first = mask ^ mover
	}
	second := mask ^ first

	var h uint64
	for bb := first; bb != 0; bb &= bb - 1 {
		h ^= zobristCell[0][bits.TrailingZeros64(bb)]
	}
	for bb := second; bb != 0; bb &= bb - 1 {
		h ^= zobristCell[1][bits.TrailingZeros64(bb)]
	}
	if moves&1 == 1 {
		h ^= zobristSide
	}
	return h
}

// splitmix64 is a small deterministic generator used to seed the Zobrist
// tables with a fixed stream.
type splitmix64 struct {
	state uint64
}

func (r *splitmix64) next() uint64 {
	r.state += 0x9E3779B97F4A7C15
	z := r.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}
