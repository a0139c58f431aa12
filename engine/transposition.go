package engine

import "sync/atomic"

// DefaultTableBits gives 2^22 slots, roughly the table of the original
// tuning: large enough for a full-budget midgame search.
const DefaultTableBits = 22

type EntryType uint8

const (
	EntryTypeUnknown EntryType = iota
	EntryTypeExact
	EntryTypeLowerBound
	EntryTypeUpperBound
)

// partitionBits reserves the low index bits for the root-parallel workers,
// one partition per root move, so workers never share a slot.
const partitionBits = 3

// TranspositionTable is a fixed-size, open-addressed cache of search
// results. Collisions overwrite a single slot; correctness relies on the
// full-key equality check in Probe, not on slot exclusivity. Entries age out
// by generation stamp rather than by clearing memory.
type TranspositionTable struct {
	entries    []entry
	mask       uint64
	generation uint8

	// stats
	hits   atomic.Int64
	misses atomic.Int64
	writes atomic.Int64
}

type entry struct {
	key        uint64
	value      int32
	depth      int8
	move       int8
	kind       EntryType
	generation uint8
}

// NewTranspositionTable allocates a table with 2^bits slots. bits == 0
// returns a disabled table where every probe misses; the search must stay
// move-stable without the cache.
func NewTranspositionTable(bits uint8) *TranspositionTable {
	if bits == 0 {
		return &TranspositionTable{}
	}
	size := uint64(1) << bits
	return &TranspositionTable{
		entries: make([]entry, size),
		mask:    size - 1,
	}
}

// index returns the slot for a hash. Worker 0 is the single-threaded search
// and uses the plain masked index; workers 1..8 are root-parallel and get
// the low bits reserved for their id.
func (t *TranspositionTable) index(hash, worker uint64) uint64 {
	if worker == 0 {
		return hash & t.mask
	}
	return (hash & t.mask &^ ((1 << partitionBits) - 1)) | (worker - 1)
}

// Probe looks up a position. The move hint is returned on any key match;
// the value is only usable (ok=true) when the stored depth covers the
// probing depth and the stored bound decides the (alpha, beta) window:
// an exact entry is returned as is, a lower bound tightens alpha, an upper
// bound tightens beta, and a crossed window returns the stored value.
func (t *TranspositionTable) Probe(hash, worker uint64, depth int8, alpha, beta int32) (value int32, move int8, ok bool) {
	if t.entries == nil {
		return 0, -1, false
	}
	e := &t.entries[t.index(hash, worker)]
	if e.kind == EntryTypeUnknown || e.key != hash || e.generation != t.generation {
		t.misses.Add(1)
		return 0, -1, false
	}
	t.hits.Add(1)
	move = e.move
	if e.depth < depth {
		return 0, move, false
	}

	v := e.value
	switch e.kind {
	case EntryTypeExact:
		return v, move, true
	case EntryTypeLowerBound:
		if v > alpha {
			alpha = v
		}
	case EntryTypeUpperBound:
		if v < beta {
			beta = v
		}
	}
	if alpha >= beta {
		return v, move, true
	}
	return 0, move, false
}

// Store records a search result. A same-generation entry for the same
// position with strictly greater depth is kept instead: deeper analysis
// must not be clobbered by a cheaper result.
func (t *TranspositionTable) Store(hash, worker uint64, depth int8, value int32, kind EntryType, move int8) {
	if t.entries == nil {
		return
	}
	e := &t.entries[t.index(hash, worker)]
	if e.kind != EntryTypeUnknown && e.generation == t.generation && e.key == hash && e.depth > depth {
		return
	}
	t.writes.Add(1)
	*e = entry{
		key:        hash,
		value:      value,
		depth:      depth,
		move:       move,
		kind:       kind,
		generation: t.generation,
	}
}

// NextGeneration invalidates all stored entries lazily.
func (t *TranspositionTable) NextGeneration() {
	t.generation++
}

// Clear erases the table eagerly. Optional between move decisions: trades
// cache reuse for predictable timing and bounded cross-game staleness.
func (t *TranspositionTable) Clear() {
	for i := range t.entries {
		t.entries[i] = entry{}
	}
}

func (t *TranspositionTable) ResetStats() {
	t.hits.Store(0)
	t.misses.Store(0)
	t.writes.Store(0)
}

func (t *TranspositionTable) Stats() (hits, misses, writes int64) {
	return t.hits.Load(), t.misses.Load(), t.writes.Load()
}
