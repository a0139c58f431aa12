package board

const (
	Width      = 7
	Height     = 6
	TotalCells = Width * Height

	// Each column occupies a slot of columnStride bits: Height playable rows
	// plus one sentinel row. The sentinel bit is never set, so the shift
	// chains in HasFour cannot bleed from the top of one column into the
	// bottom of the next.
	columnStride = Height + 1

	// Shift distances between adjacent cells of a line, in bit positions.
	shiftVertical     = 1
	shiftHorizontal   = columnStride
	shiftDiagonalUp   = columnStride + 1
	shiftDiagonalDown = columnStride - 1

	// CenterColumn is the 0-indexed middle column.
	CenterColumn = Width / 2
)

var (
	maskBottom [Width]uint64 // lowest cell of each column
	maskColumn [Width]uint64 // all playable cells of each column
	maskTop    [Width]uint64 // highest playable cell of each column

	maskBoard     uint64 // all playable cells
	maskBottomRow uint64 // lowest cell of every column

	// windowMasks holds every four-cell line on the board: 24 horizontal,
	// 21 vertical and 24 diagonal windows.
	windowMasks []uint64

	// moveOrder lists columns center-first. Center columns intersect more
	// winning lines, so trying them first improves both move quality and
	// alpha-beta cutoffs.
	moveOrder = [Width]int{3, 2, 4, 1, 5, 0, 6}
)

func init() {
	for c := 0; c < Width; c++ {
		maskBottom[c] = 1 << (c * columnStride)
		maskColumn[c] = ((1 << Height) - 1) << (c * columnStride)
		maskTop[c] = 1 << (c*columnStride + Height - 1)
		maskBoard |= maskColumn[c]
		maskBottomRow |= maskBottom[c]
	}
	windowMasks = buildWindowMasks()
}

func buildWindowMasks() []uint64 {
	var windows []uint64
	add := func(col, row, stepCol, stepRow int) {
		var w uint64
		for i := 0; i < 4; i++ {
			w |= cellMask(col+i*stepCol, row+i*stepRow)
		}
		windows = append(windows, w)
	}
	for col := 0; col < Width; col++ {
		for row := 0; row < Height; row++ {
			if row+3 < Height {
				add(col, row, 0, 1)
			}
			if col+3 < Width {
				add(col, row, 1, 0)
			}
			if col+3 < Width && row+3 < Height {
				add(col, row, 1, 1)
			}
			if col+3 < Width && row-3 >= 0 {
				add(col, row, 1, -1)
			}
		}
	}
	return windows
}

func cellMask(col, row int) uint64 {
	return 1 << (col*columnStride + row)
}

// WindowMasks returns every four-cell line on the board. The slice is shared
// and must not be modified.
func WindowMasks() []uint64 {
	return windowMasks
}

// ColumnMask returns the playable cells of the given column.
func ColumnMask(col int) uint64 {
	return maskColumn[col]
}

// MoveOrder returns the center-first static column order.
func MoveOrder() [Width]int {
	return moveOrder
}
