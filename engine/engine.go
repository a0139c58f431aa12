package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/constraints"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sleiman-mohamad/error404-connect4/board"
	"github.com/sleiman-mohamad/error404-connect4/book"
)

const (
	ScoreInfinite int32 = 1 << 30

	// Wins are scored relative to how soon they land: a win at ply n scores
	// scoreWin - n, so faster wins always rank higher.
	scoreWin     int32 = 1_000_000
	winThreshold int32 = scoreWin - int32(board.TotalCells)

	aspirationMinDepth int8  = 3
	aspirationWindow   int32 = 64

	defaultThreatBudget int8 = 21
)

var ErrNoLegalMoves = errors.New("no legal moves")

func DefaultLogger(a ...any) {
	fmt.Println(a...)
}

// PVLine is the principal variation as a sequence of zero-based columns.
type PVLine struct {
	cols []int
}

func (pvl *PVLine) GetPV() int {
	if len(pvl.cols) == 0 {
		return -1
	}
	return pvl.cols[0]
}

func (pvl *PVLine) Set(col int, nextPVL PVLine) {
	if pvl == nil {
		return
	}
	pvl.cols = append([]int{col}, nextPVL.cols...)
}

func (pvl *PVLine) Clear() {
	pvl.cols = pvl.cols[:0] // memory not released for GC
}

func (pvl *PVLine) Len() int {
	return len(pvl.cols)
}

// String renders the line in one-based columns.
func (pvl *PVLine) String() string {
	if pvl == nil {
		return ""
	}
	builder := strings.Builder{}
	for i, col := range pvl.cols {
		_, _ = builder.WriteString(fmt.Sprintf("%d", col+1))
		if i < len(pvl.cols)-1 {
			_, _ = builder.WriteRune(' ')
		}
	}
	return builder.String()
}

type EngineConfig struct {
	// TableBits sizes the transposition table at 2^TableBits entries; zero
	// selects the default and a negative value disables the table.
	TableBits int

	// Parallel above one enables root parallelism: one worker goroutine per
	// legal root move, each with its own transposition table partition.
	Parallel int

	// ClearTableBetweenMoves drops all cached entries before each decision
	// instead of only aging them out.
	ClearTableBetweenMoves bool

	// ThreatBudget caps the threat-space proof depth in plies.
	ThreatBudget int8

	Book   *book.Book
	Logger func(...any)
}

type SearchConfig struct {
	ClockConfig ClockConfig
	Debug       bool
}

type Engine struct {
	tt        *TranspositionTable
	clock     *Clock
	threat    *ThreatSearcher
	searchers []*searcher
	book      *book.Book

	clearTable   bool
	threatBudget int8
	elapsedTime  time.Duration
	logger       func(...any)
}

func NewEngine(cfg *EngineConfig) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = DefaultLogger
	}
	tableBits := uint8(DefaultTableBits)
	if cfg.TableBits > 0 {
		tableBits = uint8(cfg.TableBits)
	} else if cfg.TableBits < 0 {
		tableBits = 0
	}
	threatBudget := cfg.ThreatBudget
	if threatBudget == 0 {
		threatBudget = defaultThreatBudget
	}

	e := &Engine{
		tt:           NewTranspositionTable(tableBits),
		clock:        NewClock(),
		threat:       NewThreatSearcher(0),
		book:         cfg.Book,
		clearTable:   cfg.ClearTableBetweenMoves,
		threatBudget: threatBudget,
		logger:       cfg.Logger,
	}

	if cfg.Parallel > 1 {
		// one searcher per column, with a stable table partition each
		for col := 0; col < board.Width; col++ {
			e.searchers = append(e.searchers, newSearcher(e.tt, e.clock, uint64(col+1)))
		}
	} else {
		e.searchers = []*searcher{newSearcher(e.tt, e.clock, 0)}
	}
	return e
}

// ChooseMove picks a column (one-based) for the given side in the given
// grid. Cheap certainties come first: an immediate win, the block of an
// opponent's immediate win, a book entry, then a threat-space proof; only
// when all of those pass does the full search run.
func (e *Engine) ChooseMove(ctx context.Context, g board.Grid, mover board.Cell, cfg *SearchConfig) (int, error) {
	p, err := board.FromGrid(g, mover)
	if err != nil {
		return 0, err
	}
	if p.IsFull() {
		return 0, ErrNoLegalMoves
	}

	for _, col := range board.MoveOrder() {
		if p.CanPlay(col) && p.IsWinningMove(col) {
			return col + 1, nil
		}
	}
	for _, col := range board.MoveOrder() {
		if p.CanPlay(col) && p.IsOpponentWinningMove(col) {
			return col + 1, nil
		}
	}

	if e.book != nil {
		if col, ok := e.book.Lookup(p); ok && p.CanPlay(col-1) {
			return col, nil
		}
	}

	if col, ok := e.threat.ProveMove(p, e.threatBudget); ok {
		return col + 1, nil
	}

	col, _, err := e.Search(ctx, p, cfg)
	if err != nil {
		return 0, err
	}
	return col + 1, nil
}

// Search runs iterative deepening on p and returns the best column
// (zero-based) with its score. The result of an interrupted depth is
// discarded, so the move returned always comes from a fully searched
// iteration, or falls back to the most central legal column.
func (e *Engine) Search(ctx context.Context, p board.Position, cfg *SearchConfig) (int, int32, error) {
	if p.IsFull() {
		return 0, 0, ErrNoLegalMoves
	}

	if e.clearTable {
		e.tt.Clear()
	}
	e.tt.NextGeneration()
	e.tt.ResetStats()
	for _, s := range e.searchers {
		s.resetOrdering()
		s.nodes = 0
	}
	e.elapsedTime = 0

	e.clock.Start(ctx, &cfg.ClockConfig)
	defer e.clock.Stop()

	bestMove := int8(-1)
	var bestScore, prevScore int32
	var pvl PVLine
	for d := int8(1); !e.clock.DoneByDepth(d) && !e.clock.Done(); d++ {
		startTime := time.Now()
		move, score, complete := e.searchDepth(p, d, prevScore, &pvl)
		e.elapsedTime += time.Since(startTime)
		if !complete {
			break
		}

		bestMove = move
		bestScore = score
		prevScore = score

		if cfg.Debug {
			nodes := e.totalNodes()
			e.logger(message.NewPrinter(language.English).
				Sprintf("depth:%d [%s] nodes:%d (%.0fn/s) t:%s\n    pv: %s",
					d, formatScore(bestScore), nodes, float64(nodes)/((e.elapsedTime + 1).Seconds()), e.elapsedTime, pvl.String()))
		}

		if bestScore >= winThreshold {
			break
		}
		pvl.Clear()
	}

	if bestMove < 0 {
		// never searched a full depth, fall back to the most central column
		for _, col := range board.MoveOrder() {
			if p.CanPlay(col) {
				return col, 0, nil
			}
		}
		return 0, 0, ErrNoLegalMoves
	}
	return int(bestMove), bestScore, nil
}

// searchDepth searches one iterative-deepening level, re-searching with a
// geometrically widened window whenever the score lands on or outside an
// aspiration bound.
func (e *Engine) searchDepth(p board.Position, depth int8, prevScore int32, pvl *PVLine) (int8, int32, bool) {
	alpha, beta := -ScoreInfinite, ScoreInfinite
	window := aspirationWindow
	if depth >= aspirationMinDepth {
		alpha = prevScore - window
		beta = prevScore + window
	}

	for {
		move, score := e.searchRoot(p, depth, alpha, beta, pvl)
		if e.clock.Done() {
			return -1, 0, false
		}
		if score > alpha && score < beta {
			return move, score, true
		}

		window *= 2
		if score <= alpha {
			alpha = max(score-window, -ScoreInfinite)
		} else {
			beta = min(score+window, ScoreInfinite)
		}
		pvl.Clear()
	}
}

func (e *Engine) searchRoot(p board.Position, depth int8, alpha, beta int32, pvl *PVLine) (int8, int32) {
	if len(e.searchers) == 1 {
		return e.searchers[0].searchRoot(p, depth, alpha, beta, pvl)
	}
	return e.searchRootParallel(p, depth, alpha, beta, pvl)
}

// searchRootParallel explores every legal root move in its own goroutine
// against the shared clock; each worker owns a searcher and a table
// partition, so the subtrees never contend. The workers share the incoming
// window but not each other's alpha improvements.
func (e *Engine) searchRootParallel(p board.Position, depth int8, alpha, beta int32, pvl *PVLine) (int8, int32) {
	type rootResult struct {
		score int32
		pvl   PVLine
		legal bool
	}
	var results [board.Width]rootResult

	g := new(errgroup.Group)
	for _, col := range board.MoveOrder() {
		if !p.CanPlay(col) {
			continue
		}
		col := col
		child := p.Play(col)
		s := e.searchers[col]
		g.Go(func() error {
			var childPVL PVLine
			score := -s.negamax(child, depth-1, 1, -beta, -alpha, &childPVL)
			results[col] = rootResult{score: score, pvl: childPVL, legal: true}
			return nil
		})
	}
	_ = g.Wait()

	bestMove := int8(-1)
	bestScore := -ScoreInfinite
	for _, col := range board.MoveOrder() {
		if !results[col].legal {
			continue
		}
		if results[col].score > bestScore {
			bestScore = results[col].score
			bestMove = int8(col)
		}
	}
	if bestMove >= 0 {
		pvl.Clear()
		pvl.Set(int(bestMove), results[bestMove].pvl)
	}
	return bestMove, bestScore
}

// searchRoot is negamax unrolled one level so the move, not just the score,
// survives the search.
func (s *searcher) searchRoot(p board.Position, depth int8, alpha, beta int32, pvl *PVLine) (int8, int32) {
	_, ttMove, _ := s.tt.Probe(p.Hash(), s.worker, depth, alpha, beta)
	moves, count := s.orderMoves(p, ttMove, 0)

	bestScore := -ScoreInfinite
	bestMove := int8(-1)
	var childPVL PVLine
	for i := 0; i < count; i++ {
		child := p.Play(int(moves[i].col))
		score := -s.negamax(child, depth-1, 1, -beta, -alpha, &childPVL)
		if s.clock.Done() {
			break
		}

		if score > bestScore {
			bestScore = score
			bestMove = moves[i].col
		}
		if score > alpha {
			alpha = score
			pvl.Set(int(moves[i].col), childPVL)
		}
		if alpha >= beta {
			s.recordCutoff(moves[i].col, depth, 0)
			break
		}
		childPVL.Clear()
	}
	return bestMove, bestScore
}

func (e *Engine) totalNodes() uint64 {
	var total uint64
	for _, s := range e.searchers {
		total += uint64(s.nodes)
	}
	return total
}

// TableStats exposes transposition table counters for diagnostics.
func (e *Engine) TableStats() (hits, misses, writes int64) {
	return e.tt.Stats()
}

func max[T constraints.Ordered](x1, x2 T) T {
	if x1 > x2 {
		return x1
	}
	return x2
}

func min[T constraints.Ordered](x1, x2 T) T {
	if x1 < x2 {
		return x1
	}
	return x2
}

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return x * -1
	}
	return x
}

func formatScore(s int32) string {
	if s == ScoreInfinite {
		return "+inf"
	}
	if s == -ScoreInfinite {
		return "-inf"
	}
	if s >= winThreshold {
		return fmt.Sprintf("#+%d", (scoreWin-s+1)/2)
	}
	if s <= -winThreshold {
		return fmt.Sprintf("#-%d", (scoreWin+s)/2)
	}
	if s > 0 {
		return fmt.Sprintf("+%.2f", float64(s)/100)
	}
	if s < 0 {
		return fmt.Sprintf("%.2f", float64(s)/100)
	}
	return "0"
}
