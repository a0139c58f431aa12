// Package bench counts move sequences to a fixed depth, as a correctness
// oracle for move generation and a throughput benchmark for the bitboard.
package bench

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sleiman-mohamad/error404-connect4/board"
)

func Perft(depth int, parallel, verbose bool, out chan string) error {
	var nodes, wins, draws uint64
	p := board.NewPosition()

	var run perftFunc
	if parallel {
		run = runPerftParallel
	} else {
		run = runPerft
	}

	start := time.Now()
	run(p, depth, true, verbose, out, &nodes, &wins, &draws)
	end := time.Now()

	out <- message.NewPrinter(language.English).
		Sprintf("d=%d nodes=%d rate=%dn/s wins=%d draws=%d (%.3fs elapsed)",
			depth, nodes, int(float64(nodes)/end.Sub(start).Seconds()), wins, draws, end.Sub(start).Seconds())

	return nil
}

type perftFunc func(p board.Position, d int, root, verbose bool, out chan string, nodes, wins, draws *uint64) uint64

func runPerft(p board.Position, d int, root, verbose bool, out chan string, nodes, wins, draws *uint64) uint64 {
	if d == 0 {
		*nodes++
		if board.HasFour(p.Opponent()) {
			*wins++
		} else if p.IsFull() {
			*draws++
		}
		return 1
	}
	// a decided game has no continuations
	if board.HasFour(p.Opponent()) {
		return 0
	}

	var sum uint64
	for col := 0; col < board.Width; col++ {
		if !p.CanPlay(col) {
			continue
		}
		child := runPerft(p.Play(col), d-1, false, verbose, out, nodes, wins, draws)
		if verbose && root {
			out <- fmt.Sprintf("col %d: %d", col+1, child)
		}
		sum += child
	}
	return sum
}

func runPerftParallel(p board.Position, d int, root, verbose bool, out chan string, nodes, wins, draws *uint64) uint64 {
	if d == 0 {
		atomic.AddUint64(nodes, 1)
		if board.HasFour(p.Opponent()) {
			atomic.AddUint64(wins, 1)
		} else if p.IsFull() {
			atomic.AddUint64(draws, 1)
		}
		return 1
	}
	if board.HasFour(p.Opponent()) {
		return 0
	}

	var sum uint64
	var wg sync.WaitGroup
	for col := 0; col < board.Width; col++ {
		if !p.CanPlay(col) {
			continue
		}
		col := col
		wg.Add(1)
		go func() {
			defer wg.Done()
			child := runPerftParallel(p.Play(col), d-1, false, verbose, out, nodes, wins, draws)
			if verbose && root {
				out <- fmt.Sprintf("col %d: %d", col+1, child)
			}
			atomic.AddUint64(&sum, child)
		}()
	}
	wg.Wait()
	return sum
}
