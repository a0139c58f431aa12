package engine

import (
	"math/rand"

	"github.com/sleiman-mohamad/error404-connect4/board"
)

// EasyMove picks a uniformly random legal column (one-based).
func EasyMove(p board.Position, rng *rand.Rand) (int, error) {
	var legal [board.Width]int
	count := 0
	for col := 0; col < board.Width; col++ {
		if p.CanPlay(col) {
			legal[count] = col
			count++
		}
	}
	if count == 0 {
		return 0, ErrNoLegalMoves
	}
	return legal[rng.Intn(count)] + 1, nil
}

// MediumMove plays one-ply tactics without any search: take a win, block
// the opponent's win, otherwise the most central column that does not hand
// the opponent a win next turn. When every column is risky it settles for
// the most central legal one.
func MediumMove(p board.Position) (int, error) {
	for col := 0; col < board.Width; col++ {
		if p.CanPlay(col) && p.IsWinningMove(col) {
			return col + 1, nil
		}
	}
	for col := 0; col < board.Width; col++ {
		if p.CanPlay(col) && p.IsOpponentWinningMove(col) {
			return col + 1, nil
		}
	}

	for _, col := range board.MoveOrder() {
		if !p.CanPlay(col) {
			continue
		}
		if countWinningColumns(p.Play(col)) == 0 {
			return col + 1, nil
		}
	}

	for _, col := range board.MoveOrder() {
		if p.CanPlay(col) {
			return col + 1, nil
		}
	}
	return 0, ErrNoLegalMoves
}
