package engine

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/sleiman-mohamad/error404-connect4/board"
	"github.com/sleiman-mohamad/error404-connect4/book"
)

func newTestSearcher(tb testing.TB, bits uint8) *searcher {
	tb.Helper()
	clock := NewClock()
	clock.Start(context.Background(), &ClockConfig{})
	tb.Cleanup(clock.Stop)
	return newSearcher(NewTranspositionTable(bits), clock, 0)
}

func moverCell(p board.Position) board.Cell {
	if p.Moves()%2 == 0 {
		return board.CellPlayerOne
	}
	return board.CellPlayerTwo
}

func chooseMove(t *testing.T, e *Engine, p board.Position, cfg *SearchConfig) (int, error) {
	t.Helper()
	mover := moverCell(p)
	return e.ChooseMove(context.Background(), p.Grid(mover), mover, cfg)
}

func depthConfig(depth int8) *SearchConfig {
	return &SearchConfig{ClockConfig: ClockConfig{Depth: depth}}
}

func TestSearchFindsImmediateWin(t *testing.T) {
	t.Parallel()

	e := NewEngine(&EngineConfig{Logger: t.Log})
	p := playSequence(t, 0, 0, 1, 1, 2, 2)

	move, score, err := e.Search(context.Background(), p, depthConfig(4))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if move != 3 {
		t.Errorf("unexpected move: got=%d want=3", move)
	}
	if score != scoreWin-1 {
		t.Errorf("unexpected score: got=%d want=%d", score, scoreWin-1)
	}
}

func TestChooseMoveTakesWinAndBlock(t *testing.T) {
	t.Parallel()

	e := NewEngine(&EngineConfig{Logger: t.Log})

	// three on the bottom row, the win at column 4 is taken without search
	col, err := chooseMove(t, e, playSequence(t, 0, 0, 1, 1, 2, 2), depthConfig(2))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if col != 4 {
		t.Errorf("unexpected winning move: got=%d want=4", col)
	}

	// opponent's vertical three in column 1 must be blocked
	col, err = chooseMove(t, e, playSequence(t, 0, 6, 0, 6, 0), depthConfig(2))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if col != 1 {
		t.Errorf("unexpected blocking move: got=%d want=1", col)
	}
}

func TestChooseMoveOpensAtCenter(t *testing.T) {
	t.Parallel()

	e := NewEngine(&EngineConfig{Logger: t.Log})
	col, err := chooseMove(t, e, board.NewPosition(), depthConfig(5))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if col != 4 {
		t.Errorf("unexpected opening move: got=%d want=4", col)
	}
}

func TestChooseMoveAvoidsDoubleThreat(t *testing.T) {
	t.Parallel()

	// the first player holds two adjacent bottom stones; any reply other
	// than columns 3 or 6 lets them build an unstoppable open three
	e := NewEngine(&EngineConfig{Logger: t.Log})
	col, err := chooseMove(t, e, playSequence(t, 3, 6, 4), depthConfig(5))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if col != 3 && col != 6 {
		t.Errorf("unsafe move: got=%d want 3 or 6", col)
	}
}

func TestChooseMoveFullBoard(t *testing.T) {
	t.Parallel()

	p := board.NewPosition()
	for col := 0; col < board.Width; col++ {
		for row := 0; row < board.Height; row++ {
			p = p.Play(col)
		}
	}

	e := NewEngine(&EngineConfig{Logger: t.Log})
	if _, err := chooseMove(t, e, p, depthConfig(2)); !errors.Is(err, ErrNoLegalMoves) {
		t.Errorf("unexpected error: got=%v want=%v", err, ErrNoLegalMoves)
	}
}

func TestChooseMoveFollowsBook(t *testing.T) {
	t.Parallel()

	b, err := book.New(8, 4, 12)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if err := b.Put(board.NewPosition(), 2); err != nil {
		t.Fatal("unexpected error:", err)
	}

	e := NewEngine(&EngineConfig{Book: b, Logger: t.Log})
	col, err := chooseMove(t, e, board.NewPosition(), depthConfig(2))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if col != 2 {
		t.Errorf("book move ignored: got=%d want=2", col)
	}
}

func TestSearchAnytime(t *testing.T) {
	t.Parallel()

	e := NewEngine(&EngineConfig{Logger: t.Log})
	p := playSequence(t, 3, 3, 2, 4)

	start := time.Now()
	move, _, err := e.Search(context.Background(), p, &SearchConfig{
		ClockConfig: ClockConfig{Movetime: time.Millisecond},
	})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if !p.CanPlay(move) {
		t.Errorf("illegal move under pressure: %d", move)
	}
	if elapsed > time.Second {
		t.Errorf("search overran its budget: %s", elapsed)
	}
}

func TestWinScoreMonotonicity(t *testing.T) {
	t.Parallel()

	s := newTestSearcher(t, 14)

	winInOne := s.negamax(playSequence(t, 0, 0, 1, 1, 2, 2), 4, 0, -ScoreInfinite, ScoreInfinite, nil)
	if winInOne != scoreWin-1 {
		t.Errorf("unexpected win-in-1 score: got=%d want=%d", winInOne, scoreWin-1)
	}

	// two split bottom stones: drop between them, the block cannot cover
	// both open ends
	winInThree := s.negamax(playSequence(t, 1, 5, 2, 6), 4, 0, -ScoreInfinite, ScoreInfinite, nil)
	if winInThree != scoreWin-3 {
		t.Errorf("unexpected win-in-3 score: got=%d want=%d", winInThree, scoreWin-3)
	}

	if winInOne <= winInThree {
		t.Errorf("faster win does not score higher: %d <= %d", winInOne, winInThree)
	}

	// the double threat is already on the board: every reply loses next move
	lossInTwo := s.negamax(playSequence(t, 1, 5, 2, 6, 3), 4, 0, -ScoreInfinite, ScoreInfinite, nil)
	if lossInTwo != -(scoreWin - 2) {
		t.Errorf("unexpected loss-in-2 score: got=%d want=%d", lossInTwo, -(scoreWin - 2))
	}

	// the vertical triple forces a block first, then the double threat lands
	lossInFour := s.negamax(playSequence(t, 1, 1, 2, 2, 6, 5, 6, 1, 6), 4, 0, -ScoreInfinite, ScoreInfinite, nil)
	if lossInFour != -(scoreWin - 4) {
		t.Errorf("unexpected loss-in-4 score: got=%d want=%d", lossInFour, -(scoreWin - 4))
	}

	if lossInTwo >= lossInFour {
		t.Errorf("slower loss does not score higher: %d >= %d", lossInTwo, lossInFour)
	}
}

// naiveNegamax is a pruning-free reference with the same terminal and leaf
// rules as the real search.
func naiveNegamax(p board.Position, depth int8, ply int32) int32 {
	if board.HasFour(p.Opponent()) {
		return -(scoreWin - ply)
	}
	if p.IsFull() {
		return 0
	}
	if depth == 0 {
		for col := 0; col < board.Width; col++ {
			if p.IsWinningMove(col) {
				return scoreWin - ply - 1
			}
		}
		return evaluate(p)
	}

	best := -ScoreInfinite
	for col := 0; col < board.Width; col++ {
		if !p.CanPlay(col) {
			continue
		}
		best = max(best, -naiveNegamax(p.Play(col), depth-1, ply+1))
	}
	return best
}

func TestNegamaxMatchesReference(t *testing.T) {
	t.Parallel()

	// table disabled, depth 4: no reductions trigger, so pruning and move
	// ordering may only change the workload, never the value
	s := newTestSearcher(t, 0)

	rng := rand.New(rand.NewSource(3))
	for game := 0; game < 40; game++ {
		p := board.NewPosition()
		for moves := rng.Intn(10); moves > 0 && p.State().IsRunning(); moves-- {
			col := rng.Intn(board.Width)
			if !p.CanPlay(col) {
				continue
			}
			p = p.Play(col)
		}
		if !p.State().IsRunning() {
			continue
		}

		got := s.negamax(p, 4, 0, -ScoreInfinite, ScoreInfinite, nil)
		want := naiveNegamax(p, 4, 0)
		if got != want {
			t.Fatalf("value mismatch after %d moves: got=%d want=%d", p.Moves(), got, want)
		}
	}
}

func TestTranspositionTablePreservesScores(t *testing.T) {
	t.Parallel()

	cached := newTestSearcher(t, 14)
	plain := newTestSearcher(t, 0)

	rng := rand.New(rand.NewSource(11))
	for game := 0; game < 40; game++ {
		p := board.NewPosition()
		for moves := rng.Intn(12); moves > 0 && p.State().IsRunning(); moves-- {
			col := rng.Intn(board.Width)
			if !p.CanPlay(col) {
				continue
			}
			p = p.Play(col)
		}
		if !p.State().IsRunning() {
			continue
		}

		got := cached.negamax(p, 5, 0, -ScoreInfinite, ScoreInfinite, nil)
		want := plain.negamax(p, 5, 0, -ScoreInfinite, ScoreInfinite, nil)
		if got != want {
			t.Fatalf("table changed the score after %d moves: got=%d want=%d", p.Moves(), got, want)
		}
	}
}

func TestSearchParallelAgreesOnForcedWin(t *testing.T) {
	t.Parallel()

	e := NewEngine(&EngineConfig{Parallel: 4, Logger: t.Log})
	p := playSequence(t, 1, 5, 2, 6)

	move, score, err := e.Search(context.Background(), p, depthConfig(4))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if move != 3 || score != scoreWin-3 {
		t.Errorf("unexpected result: move=%d score=%d", move, score)
	}
}

func TestSimpleBots(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(5))

	// easy never plays an illegal column
	p := playSequence(t, 3, 3, 3, 3, 3, 3)
	for i := 0; i < 50; i++ {
		col, err := EasyMove(p, rng)
		if err != nil {
			t.Fatal("unexpected error:", err)
		}
		if !p.CanPlay(col - 1) {
			t.Fatalf("easy bot picked full column %d", col)
		}
	}

	// with both a win and a block available, medium takes the win
	if col, _ := MediumMove(playSequence(t, 0, 6, 1, 6, 2, 6)); col != 4 {
		t.Errorf("medium bot missed the win: got=%d want=4", col)
	}
	// no win of its own, so the vertical three must be blocked
	if col, _ := MediumMove(playSequence(t, 3, 6, 4, 6, 0, 6)); col != 7 {
		t.Errorf("medium bot missed the block: got=%d want=7", col)
	}
}
