package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chessai/internal/engine"
	"github.com/hailam/chessai/internal/render"
	"github.com/hailam/chessai/internal/rules"
	"github.com/hailam/chessai/internal/storage"
)

var (
	games     = flag.Int("games", 4, "number of games to play")
	parallel  = flag.Int("parallel", 2, "games played at the same time")
	whiteTier = flag.Int("white", 3, "White's difficulty 1-5")
	blackTier = flag.Int("black", 3, "Black's difficulty 1-5")
	budget    = flag.Duration("budget", time.Second, "time per move")
	maxMoves  = flag.Int("max-moves", 200, "adjourn a game after this many plies")
	noBook    = flag.Bool("no-book", false, "disable the opening book")
	seed      = flag.Int64("seed", 0, "random seed (0: time based)")
	dataDir   = flag.String("data-dir", "", "data directory (default: platform data dir)")
	dbDir     = flag.String("db", "", "database directory (default: <data-dir>/db)")
	memory    = flag.Bool("memory", false, "do not persist games")
	logLevel  = flag.String("log-level", "info", "log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger()

	var store *storage.Storage
	if *memory {
		store, err = storage.Open("", log)
	} else {
		var paths storage.Paths
		paths, err = storage.ResolvePaths(*dataDir, *dbDir)
		if err == nil {
			store, err = storage.NewStorage(paths, log)
		}
	}
	if err != nil {
		log.Fatal().Err(err).Msg("could not open storage")
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, store, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("self-play failed")
	}

	stats, err := store.LoadStats()
	if err != nil {
		log.Error().Err(err).Msg("could not load stats")
		return
	}
	fmt.Printf("games: %d  1-0: %d  0-1: %d  draws: %d  unfinished: %d\n",
		stats.GamesPlayed, stats.WhiteWins, stats.BlackWins, stats.Draws, stats.Unfinished)
	for _, line := range stats.Summary() {
		fmt.Println(line)
	}
}

// run plays the requested games, at most *parallel at a time. Every game
// gets its own engines, so nothing is shared between goroutines except the
// store.
func run(ctx context.Context, store *storage.Storage, log zerolog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(*parallel)

	for i := 0; i < *games; i++ {
		game := i
		g.Go(func() error {
			return playGame(ctx, game, store, log.With().Int("game", game).Logger())
		})
	}
	return g.Wait()
}

func newEngine(tier int, seed int64, log zerolog.Logger) *engine.Engine {
	opts := engine.DefaultOptions()
	opts.Tier = engine.ClampTier(tier)
	opts.Budget = *budget
	opts.BookEnabled = !*noBook
	opts.Seed = seed
	opts.Logger = log
	return engine.NewEngine(opts)
}

func playGame(ctx context.Context, n int, store *storage.Storage, log zerolog.Logger) error {
	var whiteSeed, blackSeed int64 // 0 seeds from the clock
	if *seed != 0 {
		whiteSeed = *seed + int64(n)*2
		blackSeed = whiteSeed + 1
	}
	white := newEngine(*whiteTier, whiteSeed, log)
	black := newEngine(*blackTier, blackSeed, log)

	game := rules.NewGame()
	start := time.Now()
	log.Info().Int("white", int(white.Tier())).Int("black", int(black.Tier())).Msg("game started")

	for ply := 0; ply < *maxMoves && !game.Over(); ply++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		eng := white
		if ply%2 == 1 {
			eng = black
		}
		pos := game.Board()
		move, err := eng.ChooseMove(pos, game.LegalMoves(), pos.SideToMove, eng.Tier())
		if err != nil {
			return fmt.Errorf("game %d ply %d: %w", n, ply, err)
		}
		if err := game.Play(move); err != nil {
			return fmt.Errorf("game %d ply %d: %w", n, ply, err)
		}
		log.Debug().Int("ply", ply).Str("move", render.Move(move)).Uint64("nodes", eng.Nodes()).Msg("move")
	}

	moves := make([]string, 0, len(game.Moves()))
	for _, m := range game.Moves() {
		moves = append(moves, m.String())
	}
	id, err := store.RecordGame(storage.GameRecord{
		StartedAt: start,
		Moves:     moves,
		Result:    string(game.Result()),
		Method:    game.Method(),
		WhiteTier: int(white.Tier()),
		BlackTier: int(black.Tier()),
		Duration:  time.Since(start),
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("id", id).
		Str("result", string(game.Result())).
		Str("method", game.Method()).
		Int("plies", len(moves)).
		Dur("duration", time.Since(start)).
		Msg("game finished")
	fmt.Printf("game %d (%s) %s\n%s\n", n, id, game.Result(), render.Board(game.Board()))
	return nil
}
