package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/sleiman-mohamad/error404-connect4/board"
	"github.com/sleiman-mohamad/error404-connect4/book"
	"github.com/sleiman-mohamad/error404-connect4/cli"
	"github.com/sleiman-mohamad/error404-connect4/engine"
)

// selfplay pits the engine against the configured level bot, alternating
// who moves first. Boards and results go to stdout, diagnostics to the
// structured log.
func selfplay(log zerolog.Logger, games int, cfg *cli.Config) error {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var openingBook *book.Book
	if cfg.BookPath != "" {
		b, err := book.Load(cfg.BookPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.BookPath).Msg("running without opening book")
		} else {
			openingBook = b
			log.Info().Str("path", cfg.BookPath).Int("depth", b.Depth()).Msg("opening book loaded")
		}
	}

	e := engine.NewEngine(&engine.EngineConfig{
		TableBits: cfg.TableBits,
		Parallel:  cfg.Parallel,
		Book:      openingBook,
		Logger:    func(a ...any) { fmt.Println(a...) },
	})
	searchCfg := &engine.SearchConfig{
		ClockConfig: engine.ClockConfig{Movetime: cfg.Movetime},
		Debug:       cfg.Debug,
	}

	opponentMove := func(p board.Position) (int, error) {
		switch cfg.Level {
		case cli.LevelEasy:
			return engine.EasyMove(p, rng)
		default:
			return engine.MediumMove(p)
		}
	}

	var engineWins, opponentWins, draws int
	for game := 1; game <= games; game++ {
		p := board.NewPosition()
		engineFirst := game%2 == 1
		start := time.Now()

		for p.State().IsRunning() {
			engineToMove := (int(p.Moves())%2 == 0) == engineFirst
			mover := moverCell(p)

			var col int
			var err error
			if engineToMove {
				col, err = e.ChooseMove(ctx, p.Grid(mover), mover, searchCfg)
			} else {
				col, err = opponentMove(p)
			}
			if err != nil {
				return fmt.Errorf("game %d: %w", game, err)
			}
			if p, err = p.Move(col - 1); err != nil {
				return fmt.Errorf("game %d: %w", game, err)
			}
		}

		fmt.Println(p.Grid(moverCell(p)).Draw())

		result := "draw"
		switch {
		case p.State() == board.StateWon && engineLost(p, engineFirst):
			result = "opponent"
			opponentWins++
		case p.State() == board.StateWon:
			result = "engine"
			engineWins++
		default:
			draws++
		}

		hits, misses, writes := e.TableStats()
		log.Info().
			Int("game", game).
			Str("winner", result).
			Bool("engine_first", engineFirst).
			Uint8("moves", p.Moves()).
			Dur("elapsed", time.Since(start)).
			Int64("tt_hits", hits).
			Int64("tt_misses", misses).
			Int64("tt_writes", writes).
			Msg("game finished")
	}

	log.Info().
		Int("games", games).
		Int("engine", engineWins).
		Int("opponent", opponentWins).
		Int("draws", draws).
		Str("level", cfg.Level).
		Msg("selfplay finished")
	return nil
}

func moverCell(p board.Position) board.Cell {
	if p.Moves()%2 == 0 {
		return board.CellPlayerOne
	}
	return board.CellPlayerTwo
}

// engineLost reports whether the winning side was the opponent: the winner
// is the player who made the last move.
func engineLost(p board.Position, engineFirst bool) bool {
	lastMoverWasFirstPlayer := p.Moves()%2 == 1
	return lastMoverWasFirstPlayer != engineFirst
}
