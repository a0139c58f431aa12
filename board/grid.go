package board

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/fatih/color"
)

var (
	ErrInvalidMark = errors.New("invalid player mark")
)

// Cell is the mark of a single grid cell.
type Cell uint8

const (
	CellEmpty Cell = iota
	CellPlayerOne
	CellPlayerTwo
)

func (c Cell) String() string {
	switch c {
	case CellPlayerOne:
		return "X"
	case CellPlayerTwo:
		return "O"
	default:
		return "."
	}
}

func (c Cell) Opposite() Cell {
	switch c {
	case CellPlayerOne:
		return CellPlayerTwo
	case CellPlayerTwo:
		return CellPlayerOne
	default:
		return CellEmpty
	}
}

// Grid is the external 6x7 board snapshot, row 0 being the top row. It is
// the only shape the engine accepts from callers.
type Grid [Height][Width]Cell

// FromGrid builds a Position from a snapshot, with mover as the side to
// move. Columns are scanned bottom-up and the scan stops at the first cell
// that is not a player mark, so floating stones are ignored rather than
// rejected.
func FromGrid(g Grid, mover Cell) (Position, error) {
	if mover != CellPlayerOne && mover != CellPlayerTwo {
		return Position{}, ErrInvalidMark
	}
	opponent := mover.Opposite()

	var moverBits, mask uint64
	var count uint8
	for col := 0; col < Width; col++ {
		for row := 0; row < Height; row++ {
			cell := g[Height-1-row][col]
			if cell != mover && cell != opponent {
				break
			}
			bit := cellMask(col, row)
			mask |= bit
			if cell == mover {
				moverBits |= bit
			}
			count++
		}
	}

	p := Position{mover: moverBits, mask: mask, moves: count}
	p.hash = computeHash(moverBits, mask, count)
	return p, nil
}

// Grid renders the position as a snapshot, mapping the side to move to the
// given mark.
func (p Position) Grid(mover Cell) Grid {
	var g Grid
	opponent := mover.Opposite()
	for bb := p.mover; bb != 0; bb &= bb - 1 {
		idx := bits.TrailingZeros64(bb)
		g[Height-1-idx%columnStride][idx/columnStride] = mover
	}
	for bb := p.Opponent(); bb != 0; bb &= bb - 1 {
		idx := bits.TrailingZeros64(bb)
		g[Height-1-idx%columnStride][idx/columnStride] = opponent
	}
	return g
}

// Dump renders the grid as plain ASCII.
func (g Grid) Dump() string {
	builder := strings.Builder{}
	for row := 0; row < Height; row++ {
		_, _ = builder.WriteString("|")
		for col := 0; col < Width; col++ {
			_, _ = builder.WriteString(fmt.Sprintf(" %s", g[row][col]))
		}
		_, _ = builder.WriteString(" |\n")
	}
	_, _ = builder.WriteString("  1 2 3 4 5 6 7\n")
	return builder.String()
}

// Draw renders the grid with colored stones.
func (g Grid) Draw() string {
	one := color.New(color.FgRed, color.Bold)
	two := color.New(color.FgYellow, color.Bold)
	builder := strings.Builder{}
	for row := 0; row < Height; row++ {
		_, _ = builder.WriteString("|")
		for col := 0; col < Width; col++ {
			switch g[row][col] {
			case CellPlayerOne:
				_, _ = builder.WriteString(" " + one.Sprint("●"))
			case CellPlayerTwo:
				_, _ = builder.WriteString(" " + two.Sprint("●"))
			default:
				_, _ = builder.WriteString(" ·")
			}
		}
		_, _ = builder.WriteString(" |\n")
	}
	_, _ = builder.WriteString("  1 2 3 4 5 6 7\n")
	return builder.String()
}
