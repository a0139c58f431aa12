package board

import (
	"errors"
	"math/bits"
)

var (
	ErrInvalidMove = errors.New("invalid move")
)

// Position is a Connect-Four position encoded as two bitboards: the stones
// of the side to move and the stones of both sides. Cell (col, row) maps to
// bit col*columnStride+row, row 0 being the bottom of the column.
//
// Position is a value type: Play returns a new child, the parent is never
// mutated, and no position outlives the search that created it.
type Position struct {
	mover uint64 // stones of the side to move
	mask  uint64 // stones of both sides
	moves uint8  // stones on the board
	hash  uint64 // incrementally maintained Zobrist key
}

// NewPosition returns the empty position with the first player to move.
func NewPosition() Position {
	return Position{}
}

// CanPlay reports whether the column still has room.
func (p Position) CanPlay(col int) bool {
	return col >= 0 && col < Width && p.mask&maskTop[col] == 0
}

// Play drops a stone into the column and returns the resulting position with
// the mover and opponent roles swapped. The caller must have checked CanPlay;
// playing a full column corrupts the child. Use Move on untrusted input.
func (p Position) Play(col int) Position {
	move := (p.mask + maskBottom[col]) & maskColumn[col]
	return Position{
		mover: p.mover ^ p.mask,
		mask:  p.mask | move,
		moves: p.moves + 1,
		hash:  p.hash ^ zobristCell[p.moves&1][bits.TrailingZeros64(move)] ^ zobristSide,
	}
}

// Move is the checked variant of Play.
func (p Position) Move(col int) (Position, error) {
	if !p.CanPlay(col) {
		return Position{}, ErrInvalidMove
	}
	return p.Play(col), nil
}

// IsWinningMove reports whether dropping a mover stone into the column
// completes four in a row.
func (p Position) IsWinningMove(col int) bool {
	if !p.CanPlay(col) {
		return false
	}
	move := (p.mask + maskBottom[col]) & maskColumn[col]
	return HasFour(p.mover | move)
}

// IsOpponentWinningMove reports whether the opponent would complete four in
// a row by dropping into the column, were it their turn.
func (p Position) IsOpponentWinningMove(col int) bool {
	if !p.CanPlay(col) {
		return false
	}
	move := (p.mask + maskBottom[col]) & maskColumn[col]
	return HasFour(p.Opponent() | move)
}

// HasFour reports whether the bitboard contains four contiguous stones in
// any direction. Each direction is checked with two shift-AND steps: the
// first AND marks cells that start a pair, the second pairs the pairs.
func HasFour(bb uint64) bool {
	m := bb & (bb >> shiftHorizontal)
	if m&(m>>(2*shiftHorizontal)) != 0 {
		return true
	}
	m = bb & (bb >> shiftDiagonalDown)
	if m&(m>>(2*shiftDiagonalDown)) != 0 {
		return true
	}
	m = bb & (bb >> shiftDiagonalUp)
	if m&(m>>(2*shiftDiagonalUp)) != 0 {
		return true
	}
	m = bb & (bb >> shiftVertical)
	return m&(m>>(2*shiftVertical)) != 0
}

// Mover returns the bitboard of the side to move.
func (p Position) Mover() uint64 {
	return p.mover
}

// Opponent returns the bitboard of the side that just moved.
func (p Position) Opponent() uint64 {
	return p.mask ^ p.mover
}

// Occupied returns the bitboard of both sides.
func (p Position) Occupied() uint64 {
	return p.mask
}

// Moves returns the number of stones on the board.
func (p Position) Moves() uint8 {
	return p.moves
}

// Remaining returns the number of empty cells.
func (p Position) Remaining() int {
	return TotalCells - int(p.moves)
}

// IsFull reports whether no column can be played.
func (p Position) IsFull() bool {
	return p.moves == TotalCells
}

// Hash returns the 64-bit Zobrist key of the position.
func (p Position) Hash() uint64 {
	return p.hash
}

// Key returns a compact game-unique encoding of the position: the arithmetic
// sum mover+mask+bottom row is decodable column by column, so equal keys
// imply equal positions. Used by the opening book, where the canonical form
// is the smaller of Key and Mirror().Key.
func (p Position) Key() uint64 {
	return p.mover + p.mask + maskBottomRow
}

// Mirror returns the position reflected around the center column.
func (p Position) Mirror() Position {
	var mover, mask uint64
	for col := 0; col < Width; col++ {
		shift := uint((Width - 1 - col) * columnStride)
		mover |= (p.mover >> (col * columnStride) & ((1 << columnStride) - 1)) << shift
		mask |= (p.mask >> (col * columnStride) & ((1 << columnStride) - 1)) << shift
	}
	m := Position{mover: mover, mask: mask, moves: p.moves}
	m.hash = computeHash(mover, mask, p.moves)
	return m
}

// State returns the terminal state of the position.
func (p Position) State() State {
	if HasFour(p.Opponent()) || HasFour(p.mover) {
		return StateWon
	}
	if p.IsFull() {
		return StateDrawn
	}
	return StateRunning
}
