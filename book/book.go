// Package book implements a fixed-size opening book keyed by canonical
// position keys, loaded from a compact binary file.
package book

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sleiman-mohamad/error404-connect4/board"
)

var ErrMalformedBook = errors.New("malformed book")

// The on-disk format starts with a six byte header (board width, board
// height, maximum book depth, partial key bytes, value bytes, log2 of the
// table size) followed by the partial key array and the value array.
const (
	headerSize    = 6
	maxLogSize    = 30
	bookValueSize = 1
)

// Book is an open-addressing-free hash table: each position hashes to
// exactly one slot holding a truncated key for verification and a one byte
// value, the recommended column. Empty slots hold zeroes.
type Book struct {
	depth    int
	keyBytes int
	logSize  int
	size     uint64
	keys     []byte
	values   []byte
}

// New returns an empty book covering positions of at most depth stones.
func New(depth, keyBytes, logSize int) (*Book, error) {
	if depth <= 0 || depth > board.TotalCells {
		return nil, fmt.Errorf("%w: depth %d", ErrMalformedBook, depth)
	}
	if keyBytes < 1 || keyBytes > 8 {
		return nil, fmt.Errorf("%w: key size %d", ErrMalformedBook, keyBytes)
	}
	if logSize < 1 || logSize > maxLogSize {
		return nil, fmt.Errorf("%w: log size %d", ErrMalformedBook, logSize)
	}
	size := uint64(1) << logSize
	return &Book{
		depth:    depth,
		keyBytes: keyBytes,
		logSize:  logSize,
		size:     size,
		keys:     make([]byte, size*uint64(keyBytes)),
		values:   make([]byte, size),
	}, nil
}

// Load reads a book from disk. A missing file is reported as-is so callers
// can treat it as "no book" rather than a failure.
func Load(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("book %s: %w", path, err)
	}
	return b, nil
}

func Read(r io.Reader) (*Book, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedBook, err)
	}
	if header[0] != board.Width || header[1] != board.Height {
		return nil, fmt.Errorf("%w: board %dx%d", ErrMalformedBook, header[0], header[1])
	}
	if header[4] != bookValueSize {
		return nil, fmt.Errorf("%w: value size %d", ErrMalformedBook, header[4])
	}

	b, err := New(int(header[2]), int(header[3]), int(header[5]))
	if err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, b.keys); err != nil {
		return nil, fmt.Errorf("%w: key array: %v", ErrMalformedBook, err)
	}
	if _, err := io.ReadFull(r, b.values); err != nil {
		return nil, fmt.Errorf("%w: value array: %v", ErrMalformedBook, err)
	}
	return b, nil
}

func (b *Book) Save(w io.Writer) error {
	header := [headerSize]byte{
		board.Width,
		board.Height,
		byte(b.depth),
		byte(b.keyBytes),
		bookValueSize,
		byte(b.logSize),
	}
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.Write(b.keys); err != nil {
		return err
	}
	_, err := w.Write(b.values)
	return err
}

func (b *Book) Depth() int {
	return b.depth
}

// Put records col (one-based) as the recommended move for p. The position
// and its mirror share one entry under the canonical key.
func (b *Book) Put(p board.Position, col int) error {
	if col < 1 || col > board.Width {
		return fmt.Errorf("%w: column %d", ErrMalformedBook, col)
	}
	key, mirrored := canonicalKey(p)
	if mirrored {
		col = board.Width + 1 - col
	}
	slot := b.slot(key)
	off := slot * uint64(b.keyBytes)
	for i := 0; i < b.keyBytes; i++ {
		b.keys[off+uint64(i)] = byte(key >> (8 * i))
	}
	b.values[slot] = byte(col)
	return nil
}

// Lookup returns the recommended column (one-based) for p, if the book
// holds an entry for it.
func (b *Book) Lookup(p board.Position) (int, bool) {
	if int(p.Moves()) > b.depth {
		return 0, false
	}
	key, mirrored := canonicalKey(p)
	slot := b.slot(key)
	col := int(b.values[slot])
	if col < 1 || col > board.Width {
		return 0, false
	}

	off := slot * uint64(b.keyBytes)
	for i := 0; i < b.keyBytes; i++ {
		if b.keys[off+uint64(i)] != byte(key>>(8*i)) {
			return 0, false
		}
	}

	if mirrored {
		col = board.Width + 1 - col
	}
	return col, true
}

// slot spreads the arithmetic position keys, whose low bits barely vary,
// across the table with a multiplicative hash.
func (b *Book) slot(key uint64) uint64 {
	return (key * 0x9e3779b97f4a7c15) >> (64 - b.logSize)
}

// canonicalKey picks the smaller of the position key and its mirror's key
// and reports whether the mirror was chosen.
func canonicalKey(p board.Position) (uint64, bool) {
	key := p.Key()
	mirror := p.Mirror().Key()
	if mirror < key {
		return mirror, true
	}
	return key, false
}
