package main

import (
	"errors"
	"flag"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/sleiman-mohamad/error404-connect4/cli"
)

const (
	exitOK  = 0
	exitErr = 1
)

var (
	debug      bool
	movetimeMS int
	hashBits   int
	parallel   int
	level      string
	bookPath   string

	selfplayRun   bool
	selfplayGames int
)

func main() {
	// .env must load before the flag defaults are read from the environment
	_ = godotenv.Load()

	flag.BoolVar(&debug, "debug", envBool("CONNECT4_DEBUG", false), "log search internals")
	flag.IntVar(&movetimeMS, "movetime", envInt("CONNECT4_MOVETIME_MS", 0), "engine time budget per move in milliseconds")
	flag.IntVar(&hashBits, "hash", envInt("CONNECT4_TT_BITS", 0), "transposition table size in bits, negative disables")
	flag.IntVar(&parallel, "parallel", envInt("CONNECT4_PARALLEL", 1), "root search workers")
	flag.StringVar(&level, "level", envString("CONNECT4_LEVEL", cli.LevelHard), "bot level: easy, medium, hard")
	flag.StringVar(&bookPath, "book", envString("CONNECT4_BOOK", ""), "opening book file")
	flag.BoolVar(&selfplayRun, "selfplay", false, "run selfplay mode instead of the shell")
	flag.IntVar(&selfplayGames, "selfplay.games", 2, "games to play in selfplay mode")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()

	if err := realMain(log); err != nil {
		log.Error().Err(err).Msg("exited")
		os.Exit(exitErr)
	}
	os.Exit(exitOK)
}

func realMain(log zerolog.Logger) error {
	cfg := &cli.Config{
		Debug:     debug,
		Movetime:  time.Duration(movetimeMS) * time.Millisecond,
		TableBits: hashBits,
		Parallel:  parallel,
		Level:     level,
		BookPath:  bookPath,
	}

	if bookPath != "" {
		if _, err := os.Stat(bookPath); err != nil {
			log.Warn().Err(err).Str("path", bookPath).Msg("opening book unavailable")
		}
	}

	if selfplayRun {
		return selfplay(log, selfplayGames, cfg)
	}

	err := cli.NewInterface(cfg).Run()
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
