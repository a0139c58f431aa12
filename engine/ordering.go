package engine

import (
	"github.com/sleiman-mohamad/error404-connect4/board"
)

const (
	// ordering score offsets, highest tried first
	offsetTTMove   int32 = 1 << 22
	offsetWin      int32 = 1 << 21
	offsetBlock    int32 = 1 << 20
	offsetKiller   int32 = 1 << 18
	offsetKiller2  int32 = 1 << 17
	historyMax     int32 = 1 << 16
)

// centerBias breaks ties towards the middle of the board; together with the
// center-first static order it keeps the ordering stable and deterministic.
var centerBias = [board.Width]int32{1, 2, 4, 8, 4, 2, 1}

type scoredMove struct {
	col   int8
	score int32
}

// orderMoves ranks the legal columns: transposition hint first, then
// immediate wins, blocks of the opponent's immediate wins, killer moves of
// this ply, and finally history score plus center bias over the static
// center-first order.
func (s *searcher) orderMoves(p board.Position, ttMove int8, ply int8) ([board.Width]scoredMove, int) {
	var moves [board.Width]scoredMove
	count := 0

	for _, col := range board.MoveOrder() {
		if !p.CanPlay(col) {
			continue
		}
		score := s.history[col] + centerBias[col]
		switch {
		case int8(col) == ttMove:
			score += offsetTTMove
		case p.IsWinningMove(col):
			score += offsetWin
		case p.IsOpponentWinningMove(col):
			score += offsetBlock
		case int8(col) == s.killers[ply][0]:
			score += offsetKiller
		case int8(col) == s.killers[ply][1]:
			score += offsetKiller2
		}
		moves[count] = scoredMove{col: int8(col), score: score}
		count++
	}

	// selection sort, descending; at most seven entries
	for i := 0; i < count; i++ {
		best := i
		for j := i + 1; j < count; j++ {
			if moves[j].score > moves[best].score {
				best = j
			}
		}
		moves[i], moves[best] = moves[best], moves[i]
	}
	return moves, count
}

// recordCutoff registers a beta cutoff for move ordering: the move becomes
// the ply's first killer and its history score grows with the square of the
// remaining depth, capped to keep it below the ordering offsets.
func (s *searcher) recordCutoff(col int8, depth, ply int8) {
	if s.killers[ply][0] != col {
		s.killers[ply][1] = s.killers[ply][0]
		s.killers[ply][0] = col
	}
	s.history[col] = min(s.history[col]+int32(depth)*int32(depth), historyMax)
}

func (s *searcher) resetOrdering() {
	for i := range s.killers {
		s.killers[i] = [2]int8{-1, -1}
	}
	s.history = [board.Width]int32{}
}
