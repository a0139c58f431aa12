// Package cli implements the interactive shell: a human (or scripted
// driver) plays columns against one of the bot levels.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sleiman-mohamad/error404-connect4/bench"
	"github.com/sleiman-mohamad/error404-connect4/board"
	"github.com/sleiman-mohamad/error404-connect4/book"
	"github.com/sleiman-mohamad/error404-connect4/engine"
)

const (
	LevelEasy   = "easy"
	LevelMedium = "medium"
	LevelHard   = "hard"
)

var defaultOptions = options{
	debug:         false,
	movetime:      engine.DefaultMovetime,
	tableBits:     engine.DefaultTableBits,
	parallel:      1,
	level:         LevelHard,
	parallelPerft: true,
}

type options struct {
	debug         bool
	movetime      time.Duration
	tableBits     int
	parallel      int
	level         string
	bookPath      string
	parallelPerft bool
}

type Config struct {
	Debug     bool
	Movetime  time.Duration
	TableBits int
	Parallel  int
	Level     string
	BookPath  string
}

type Interface struct {
	position board.Position
	engine   *engine.Engine
	options  options
	rng      *rand.Rand
}

func NewInterface(cfg *Config) *Interface {
	opts := defaultOptions
	if cfg != nil {
		opts.debug = cfg.Debug
		if cfg.Movetime > 0 {
			opts.movetime = cfg.Movetime
		}
		if cfg.TableBits != 0 {
			opts.tableBits = cfg.TableBits
		}
		if cfg.Parallel > 0 {
			opts.parallel = cfg.Parallel
		}
		if cfg.Level != "" {
			opts.level = cfg.Level
		}
		opts.bookPath = cfg.BookPath
	}
	return &Interface{
		options: opts,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (i *Interface) Run() error {
	ctx := context.Background()
	i.reset()

	i.println("connect4 shell, 'help' lists commands")
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		cmd, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		cmd = strings.TrimSpace(cmd)
		if cmd == "" {
			continue
		}

		switch args := strings.Fields(cmd); args[0] {
		case "new":
			i.reset()
			i.commandBoard()
		case "board", "d":
			i.commandBoard()
		case "play":
			i.commandPlay(ctx, args[1:])
		case "go":
			i.commandGo(ctx, args[1:])
		case "auto":
			i.commandAuto(ctx)
		case "level":
			i.commandLevel(args[1:])
		case "set":
			i.commandSetOption(args[1:])
		case "perft":
			i.commandPerft(args[1:])
		case "help":
			i.commandHelp()
		case "quit", "exit":
			return nil
		default:
			i.println("unknown command:", args[0])
		}
	}
}

func (i *Interface) commandHelp() {
	i.println("new              start a new game")
	i.println("board            show the board")
	i.println("play <col>       drop a piece in column 1-7, the bot replies")
	i.println("go [ms]          let the bot move, optionally with a one-off budget")
	i.println("auto             play the game out, engine against the level bot")
	i.println("level <l>        set bot level: easy, medium, hard")
	i.println("set <opt> <val>  set option: debug, movetime (ms), hash (bits), parallel")
	i.println("perft <depth>    count move sequences to the given depth")
	i.println("quit             leave")
}

func (i *Interface) commandBoard() {
	i.println(i.position.Grid(i.moverCell()).Draw())
	i.println(fmt.Sprintf("move %d, %s to play, game %s",
		i.position.Moves()+1, i.moverCell(), i.position.State()))
}

func (i *Interface) commandPlay(ctx context.Context, args []string) {
	if len(args) != 1 {
		i.println("usage: play <col>")
		return
	}
	col, err := strconv.Atoi(args[0])
	if err != nil || col < 1 || col > board.Width {
		i.println("column must be 1-7")
		return
	}
	if !i.position.State().IsRunning() {
		i.println("game over, start with 'new'")
		return
	}

	next, err := i.position.Move(col - 1)
	if err != nil {
		i.println("column", col, "is full")
		return
	}
	i.position = next
	i.commandBoard()

	if i.position.State().IsRunning() {
		i.commandGo(ctx, nil)
	}
}

func (i *Interface) commandGo(ctx context.Context, args []string) {
	if !i.position.State().IsRunning() {
		i.println("game over, start with 'new'")
		return
	}
	if len(args) == 1 {
		// one-off time budget for this move
		ms, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil || ms < 1 {
			i.println("usage: go [ms]")
			return
		}
		saved := i.options.movetime
		i.options.movetime = time.Duration(ms) * time.Millisecond
		defer func() { i.options.movetime = saved }()
	}

	col, err := i.botMove(ctx)
	if err != nil {
		i.println("bot error:", err)
		return
	}
	i.println(fmt.Sprintf("%s bot plays column %d", i.options.level, col))
	next, err := i.position.Move(col - 1)
	if err != nil {
		i.println("bot error:", err)
		return
	}
	i.position = next
	i.commandBoard()
}

// commandAuto plays the game out: the engine moves for the current side,
// the configured level bot for the other.
func (i *Interface) commandAuto(ctx context.Context) {
	engineCell := i.moverCell()
	for i.position.State().IsRunning() {
		var col int
		var err error
		if i.moverCell() == engineCell {
			mover := i.moverCell()
			col, err = i.engine.ChooseMove(ctx, i.position.Grid(mover), mover, i.searchConfig())
		} else {
			col, err = i.levelMove(ctx)
		}
		if err != nil {
			i.println("bot error:", err)
			return
		}
		next, err := i.position.Move(col - 1)
		if err != nil {
			i.println("bot error:", err)
			return
		}
		i.position = next
		i.commandBoard()
	}
}

func (i *Interface) commandLevel(args []string) {
	if len(args) != 1 {
		i.println("current level:", i.options.level)
		return
	}
	switch level := strings.ToLower(args[0]); level {
	case LevelEasy, LevelMedium, LevelHard:
		i.options.level = level
	default:
		i.println("level must be easy, medium or hard")
	}
}

func (i *Interface) commandSetOption(args []string) {
	if len(args) != 2 {
		i.println("usage: set <opt> <val>")
		return
	}
	switch name, valueStr := strings.ToLower(args[0]), args[1]; name {
	case "debug":
		value, err := strconv.ParseBool(valueStr)
		if err != nil {
			return
		}
		i.options.debug = value
	case "movetime":
		value, err := strconv.ParseUint(valueStr, 10, 32)
		if err != nil || value < 1 || value > 3600000 {
			return
		}
		i.options.movetime = time.Duration(value) * time.Millisecond
	case "hash":
		value, err := strconv.Atoi(valueStr)
		if err != nil || value > 30 {
			return
		}
		i.options.tableBits = value
		i.rebuildEngine()
	case "parallel":
		value, err := strconv.Atoi(valueStr)
		if err != nil || value < 1 {
			return
		}
		i.options.parallel = value
		i.rebuildEngine()
	}
}

func (i *Interface) commandPerft(args []string) {
	if len(args) != 1 {
		i.println("usage: perft <depth>")
		return
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil || depth < 0 {
		return
	}

	out := make(chan string, 64)
	done := make(chan struct{})
	go func() {
		for s := range out {
			i.println(s)
		}
		close(done)
	}()
	_ = bench.Perft(depth, i.options.parallelPerft, true, out)
	close(out)
	<-done
}

func (i *Interface) botMove(ctx context.Context) (int, error) {
	switch i.options.level {
	case LevelEasy, LevelMedium:
		return i.levelMove(ctx)
	default:
		mover := i.moverCell()
		return i.engine.ChooseMove(ctx, i.position.Grid(mover), mover, i.searchConfig())
	}
}

func (i *Interface) levelMove(_ context.Context) (int, error) {
	switch i.options.level {
	case LevelEasy:
		return engine.EasyMove(i.position, i.rng)
	default:
		return engine.MediumMove(i.position)
	}
}

func (i *Interface) searchConfig() *engine.SearchConfig {
	return &engine.SearchConfig{
		ClockConfig: engine.ClockConfig{Movetime: i.options.movetime},
		Debug:       i.options.debug,
	}
}

func (i *Interface) moverCell() board.Cell {
	if i.position.Moves()%2 == 0 {
		return board.CellPlayerOne
	}
	return board.CellPlayerTwo
}

func (i *Interface) reset() {
	i.position = board.NewPosition()
	i.rebuildEngine()
}

func (i *Interface) rebuildEngine() {
	var openingBook *book.Book
	if i.options.bookPath != "" {
		if b, err := book.Load(i.options.bookPath); err == nil {
			openingBook = b
		}
	}
	i.engine = engine.NewEngine(&engine.EngineConfig{
		TableBits: i.options.tableBits,
		Parallel:  i.options.parallel,
		Book:      openingBook,
		Logger:    i.println,
	})
}

func (i *Interface) println(a ...any) {
	fmt.Fprintln(os.Stdout, a...)
}
