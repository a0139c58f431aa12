package engine

import (
	"github.com/sleiman-mohamad/error404-connect4/board"
)

// ThreatResult is the outcome of a threat-space proof attempt for the side
// to move.
type ThreatResult int8

const (
	ThreatUnknown ThreatResult = iota
	ThreatWin
	ThreatLoss
)

func (r ThreatResult) String() string {
	switch r {
	case ThreatWin:
		return "win"
	case ThreatLoss:
		return "loss"
	default:
		return "unknown"
	}
}

const defaultThreatCacheBits = 18

type threatEntry struct {
	key        uint64
	result     ThreatResult
	budget     int8
	generation uint8
}

// ThreatSearcher proves forced wins by expanding only forcing lines: moves
// that create an immediate connect-four threat and so dictate the reply.
// The tree it visits is a tiny slice of the full game tree, which lets it
// look much further ahead than the main search within its ply budget.
type ThreatSearcher struct {
	entries    []threatEntry
	mask       uint64
	generation uint8
}

func NewThreatSearcher(bits int) *ThreatSearcher {
	if bits <= 0 {
		bits = defaultThreatCacheBits
	}
	size := uint64(1) << bits
	return &ThreatSearcher{
		entries: make([]threatEntry, size),
		mask:    size - 1,
	}
}

// NewSearch invalidates cached results from previous move decisions.
func (t *ThreatSearcher) NewSearch() {
	t.generation++
}

func (t *ThreatSearcher) probe(key uint64, budget int8) (ThreatResult, bool) {
	e := &t.entries[key&t.mask]
	if e.key != key || e.generation != t.generation {
		return ThreatUnknown, false
	}
	// proven results hold at any budget; an unknown only covers budgets no
	// larger than the one it was searched with
	if e.result != ThreatUnknown || e.budget >= budget {
		return e.result, true
	}
	return ThreatUnknown, false
}

func (t *ThreatSearcher) store(key uint64, result ThreatResult, budget int8) {
	t.entries[key&t.mask] = threatEntry{
		key:        key,
		result:     result,
		budget:     budget,
		generation: t.generation,
	}
}

// Prove reports whether the side to move in p has a forced win, is forcibly
// lost, or neither can be established within the given ply budget.
func (t *ThreatSearcher) Prove(p board.Position, budget int8) ThreatResult {
	for col := 0; col < board.Width; col++ {
		if p.IsWinningMove(col) {
			return ThreatWin
		}
	}

	opponentWins := countOpponentWinningColumns(p)
	if opponentWins >= 2 {
		// two threats, one block
		return ThreatLoss
	}

	// a non-immediate win needs at least our move, their reply, our win
	if budget < 3 || p.Remaining() < 3 {
		return ThreatUnknown
	}

	key := p.Hash()
	if result, ok := t.probe(key, budget); ok {
		return result
	}

	result := t.prove(p, budget, opponentWins)
	t.store(key, result, budget)
	return result
}

func (t *ThreatSearcher) prove(p board.Position, budget int8, opponentWins int) ThreatResult {
	if opponentWins == 1 {
		// the block is forced, follow it
		for col := 0; col < board.Width; col++ {
			if !p.IsOpponentWinningMove(col) {
				continue
			}
			switch t.Prove(p.Play(col), budget-1) {
			case ThreatLoss:
				return ThreatWin
			case ThreatWin:
				return ThreatLoss
			}
			return ThreatUnknown
		}
	}

	// win scan: only moves that make a threat force the opponent's hand
	for _, col := range board.MoveOrder() {
		if !p.CanPlay(col) {
			continue
		}
		child := p.Play(col)
		if countOpponentWinningColumns(child) == 0 {
			continue
		}
		if t.Prove(child, budget-1) == ThreatLoss {
			return ThreatWin
		}
	}

	// loss scan, one ply only: lost if every legal move hands the opponent
	// an immediate win. Deeper losses always pass through a forced block or
	// a double threat, both covered above.
	lost := true
	for col := 0; col < board.Width && lost; col++ {
		if !p.CanPlay(col) {
			continue
		}
		if countWinningColumns(p.Play(col)) == 0 {
			lost = false
		}
	}
	if lost {
		return ThreatLoss
	}
	return ThreatUnknown
}

// ProveMove returns a column (zero-based) that starts a forced winning line
// within the budget, if the searcher can prove one.
func (t *ThreatSearcher) ProveMove(p board.Position, budget int8) (int, bool) {
	t.NewSearch()

	for _, col := range board.MoveOrder() {
		if p.CanPlay(col) && p.IsWinningMove(col) {
			return col, true
		}
	}
	if countOpponentWinningColumns(p) >= 2 || budget < 3 {
		return 0, false
	}

	for _, col := range board.MoveOrder() {
		if !p.CanPlay(col) {
			continue
		}
		if t.Prove(p.Play(col), budget-1) == ThreatLoss {
			return col, true
		}
	}
	return 0, false
}
