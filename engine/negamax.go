package engine

import (
	"github.com/sleiman-mohamad/error404-connect4/board"
)

const (
	// Late move reductions: late, quiet moves at sufficient depth are first
	// searched shallower with a null window and re-searched on improvement.
	lateMoveReductionMinDepth  int8 = 5
	lateMoveReductionFullMoves      = 3
	lateMoveReduction          int8 = 1

	// Near the end of the game the search cannot usefully go deeper than
	// the number of empty cells.
	endgameDepthClamp int8 = 8
)

// searcher carries the per-search mutable state: the killer and history
// tables are rebuilt for every move decision and, in root-parallel mode,
// every worker owns its own searcher so nothing here needs locking.
type searcher struct {
	tt     *TranspositionTable
	clock  *Clock
	worker uint64

	killers [board.TotalCells + 1][2]int8
	history [board.Width]int32
	nodes   uint32
}

func newSearcher(tt *TranspositionTable, clock *Clock, worker uint64) *searcher {
	s := &searcher{
		tt:     tt,
		clock:  clock,
		worker: worker,
	}
	s.resetOrdering()
	return s
}

// negamax searches the position to the given remaining depth within the
// (alpha, beta) window and returns its score from the mover's perspective.
// Once the clock expires the recursion unwinds immediately and the returned
// value is provisional: it is neither stored nor trusted by the driver.
func (s *searcher) negamax(p board.Position, depth, ply int8, alpha, beta int32, pvl *PVLine) int32 {
	s.nodes++
	if s.clock.Done() {
		return 0
	}

	// the side that just moved connected four: lost, and losing later is
	// better than losing now
	if board.HasFour(p.Opponent()) {
		return -(scoreWin - int32(ply))
	}
	if p.IsFull() {
		return 0
	}

	if remaining := int8(p.Remaining()); remaining <= endgameDepthClamp && depth > remaining {
		depth = remaining
	}

	if depth == 0 {
		// one-ply tactics are invisible to the static evaluator
		for col := 0; col < board.Width; col++ {
			if p.IsWinningMove(col) {
				return scoreWin - int32(ply) - 1
			}
		}
		return evaluate(p)
	}

	alphaOrig := alpha
	ttValue, ttMove, ok := s.tt.Probe(p.Hash(), s.worker, depth, alpha, beta)
	if ok {
		return ttValue
	}

	moves, count := s.orderMoves(p, ttMove, ply)

	bestScore := -ScoreInfinite
	bestMove := int8(-1)
	var childPVL PVLine
	for i := 0; i < count; i++ {
		col := int(moves[i].col)
		child := p.Play(col)
		immediateWin := board.HasFour(child.Opponent())

		newDepth := depth - 1
		var score int32
		if newDepth >= lateMoveReductionMinDepth && i >= lateMoveReductionFullMoves && !immediateWin {
			reduced := max(newDepth-lateMoveReduction, 1)
			score = -s.negamax(child, reduced, ply+1, -(alpha + 1), -alpha, nil)
			if score > alpha && !s.clock.Done() {
				// looked interesting, re-search at full depth and window
				score = -s.negamax(child, newDepth, ply+1, -beta, -alpha, &childPVL)
			}
		} else {
			score = -s.negamax(child, newDepth, ply+1, -beta, -alpha, &childPVL)
		}
		if s.clock.Done() {
			return bestScore
		}

		if score > bestScore {
			bestScore = score
			bestMove = moves[i].col
		}
		if score > alpha {
			alpha = score
			pvl.Set(col, childPVL)
		}
		if alpha >= beta {
			s.recordCutoff(moves[i].col, depth, ply)
			break
		}
		childPVL.Clear()
	}

	kind := EntryTypeExact
	if bestScore <= alphaOrig {
		kind = EntryTypeUpperBound
	} else if bestScore >= beta {
		kind = EntryTypeLowerBound
	}
	s.tt.Store(p.Hash(), s.worker, depth, bestScore, kind, bestMove)

	return bestScore
}
