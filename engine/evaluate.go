package engine

import (
	"math/bits"

	"github.com/sleiman-mohamad/error404-connect4/board"
)

const (
	scoreCenterStone  int32 = 6
	scoreThreatColumn int32 = 120
	scoreDoubleThreat int32 = 2400
)

// scoreUncontestedWindow weighs a four-cell window by the stone count of its
// single owner. The steep growth reflects that an open three is
// disproportionately more dangerous than an open two. Four-stone windows are
// terminal and handled by the search, the weight here is defensive only.
var scoreUncontestedWindow = [5]int32{0, 2, 12, 60, 512}

// evaluate statically scores a non-terminal position from the side to
// move's perspective. It is called at depth-cutoff leaves and for move
// ranking, never as a substitute for terminal win/draw detection.
func evaluate(p board.Position) int32 {
	mover := p.Mover()
	opponent := p.Opponent()

	center := board.ColumnMask(board.CenterColumn)
	score := scoreCenterStone * int32(bits.OnesCount64(mover&center)-bits.OnesCount64(opponent&center))

	for _, w := range board.WindowMasks() {
		m := bits.OnesCount64(mover & w)
		o := bits.OnesCount64(opponent & w)
		if m > 0 && o > 0 {
			continue // contested window, no side can complete it
		}
		score += scoreUncontestedWindow[m] - scoreUncontestedWindow[o]
	}

	moverThreats := countWinningColumns(p)
	opponentThreats := countOpponentWinningColumns(p)
	score += scoreThreatColumn * int32(moverThreats-opponentThreats)
	if moverThreats >= 2 {
		score += scoreDoubleThreat
	}
	if opponentThreats >= 2 {
		score -= scoreDoubleThreat
	}

	// small tempo bias from the original tuning
	score += int32(p.Moves()) - board.TotalCells/2

	return score
}

// countWinningColumns counts the columns where the mover would complete four
// in a row by playing now.
func countWinningColumns(p board.Position) int {
	n := 0
	for col := 0; col < board.Width; col++ {
		if p.IsWinningMove(col) {
			n++
		}
	}
	return n
}

// countOpponentWinningColumns counts the columns where the opponent would
// complete four in a row if it were their turn.
func countOpponentWinningColumns(p board.Position) int {
	n := 0
	for col := 0; col < board.Width; col++ {
		if p.IsOpponentWinningMove(col) {
			n++
		}
	}
	return n
}
