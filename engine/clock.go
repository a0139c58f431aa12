package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sleiman-mohamad/error404-connect4/board"
)

const (
	DefaultMovetime = 10 * time.Second

	MaxMovetime       = 24 * time.Hour
	MaxDepth    int8  = board.TotalCells

	minMovetime    = time.Millisecond
	movetimeMargin = 25 * time.Millisecond
)

type ClockMode uint8

const (
	ClockModeInfinite ClockMode = iota
	ClockModeMovetime
	ClockModeDepth
)

// Clock owns the search budget. Once started, a background goroutine flips
// the done flag when the context deadline passes, so the search only ever
// pays for an atomic load when polling.
type Clock struct {
	mode           ClockMode
	targetMovetime time.Duration
	targetDepth    int8

	done   atomic.Bool
	stopCh chan struct{}
}

type ClockConfig struct {
	// Movetime is the wall-clock budget for one move decision.
	Movetime time.Duration

	// Depth caps the iterative-deepening depth instead of the wall clock.
	Depth int8
}

func NewClock() *Clock {
	c := &Clock{
		stopCh: make(chan struct{}, 1),
	}
	c.done.Store(true)
	return c
}

func (c *Clock) Start(ctx context.Context, cfg *ClockConfig) {
	c.Stop()
	c.targetMovetime = MaxMovetime
	c.targetDepth = MaxDepth
	c.done.Store(false)

	switch {
	case cfg.Movetime != 0:
		c.mode = ClockModeMovetime
		c.targetMovetime = cfg.Movetime
		if c.targetMovetime > movetimeMargin+minMovetime {
			c.targetMovetime -= movetimeMargin
		}
		if c.targetMovetime < minMovetime {
			c.targetMovetime = minMovetime
		}
	case cfg.Depth != 0:
		c.mode = ClockModeDepth
		c.targetDepth = min(cfg.Depth, MaxDepth)
	default:
		c.mode = ClockModeInfinite
	}

	go func() {
		var cancel context.CancelFunc
		if c.mode == ClockModeMovetime {
			ctx, cancel = context.WithTimeout(ctx, c.targetMovetime)
			defer cancel()
		}
		select {
		case <-ctx.Done():
		case <-c.stopCh:
		}
		c.done.Store(true)
	}()
}

func (c *Clock) Stop() {
	if !c.done.Load() {
		select {
		case c.stopCh <- struct{}{}:
		default:
		}
	}
}

func (c *Clock) Mode() ClockMode {
	return c.mode
}

// Done reports whether the budget has expired. Checked inside the recursion;
// once true, every in-flight call unwinds without storing results.
func (c *Clock) Done() bool {
	return c.done.Load()
}

func (c *Clock) DoneByDepth(depth int8) bool {
	return depth > c.targetDepth
}
