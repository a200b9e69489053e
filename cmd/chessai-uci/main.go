package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chessai/internal/book"
	"github.com/hailam/chessai/internal/engine"
	"github.com/hailam/chessai/internal/storage"
	"github.com/hailam/chessai/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	logLevel   = flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	tier       = flag.Int("tier", 0, "difficulty 1-5 (0 keeps the saved setting)")
	budget     = flag.Duration("budget", 0, "time per move (0 keeps the saved setting)")
	bookPath   = flag.String("book", "", "opening book JSON file (default: <data-dir>/book.json, else built-in book)")
	writeBook  = flag.Bool("write-book", false, "write the built-in book to <data-dir>/book.json and exit")
	noBook     = flag.Bool("no-book", false, "disable the opening book")
	dataDir    = flag.String("data-dir", "", "data directory (default: platform data dir)")
	dbDir      = flag.String("db", "", "database directory (default: <data-dir>/db)")
	memory     = flag.Bool("memory", false, "keep settings and games in memory only")
)

func main() {
	flag.Parse()

	// stdout carries the protocol; logs go to stderr.
	log := newLogger(*logLevel)

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	paths, err := storage.ResolvePaths(*dataDir, *dbDir)
	if err != nil {
		log.Fatal().Err(err).Msg("could not resolve data directory")
	}

	if *writeBook {
		if err := exportBook(paths.BookFile()); err != nil {
			log.Fatal().Err(err).Str("path", paths.BookFile()).Msg("could not write book")
		}
		log.Info().Str("path", paths.BookFile()).Msg("book written")
		return
	}

	store, err := openStorage(paths, log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open storage")
	}
	defer store.Close()

	settings, err := store.LoadSettings()
	if err != nil {
		log.Warn().Err(err).Msg("using default settings")
		settings = storage.DefaultSettings()
	}
	applyFlags(settings)
	if err := store.SaveSettings(settings); err != nil {
		log.Warn().Err(err).Msg("could not save settings")
	}

	opts := engine.DefaultOptions()
	opts.Tier = engine.ClampTier(settings.Tier)
	opts.Budget = settings.Budget()
	opts.TTCapacity = settings.TTCapacity
	opts.BookEnabled = settings.BookEnabled
	opts.Logger = log

	bk, err := loadBook(paths)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load book")
	}
	opts.Book = bk

	protocol := uci.New(engine.NewEngine(opts), log)
	protocol.SetRecorder(store)
	if err := protocol.Run(os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("reading commands")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger()
}

func openStorage(paths storage.Paths, log zerolog.Logger) (*storage.Storage, error) {
	if *memory {
		return storage.Open("", log)
	}
	return storage.NewStorage(paths, log)
}

// loadBook reads -book, or the data directory's book file when one exists.
// A nil book selects the built-in one.
func loadBook(paths storage.Paths) (*book.Book, error) {
	path := *bookPath
	if path == "" {
		ok, err := paths.HasBookFile()
		if err != nil || !ok {
			return nil, err
		}
		path = paths.BookFile()
	}
	bk, err := book.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bk, nil
}

func exportBook(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := book.Default().WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// applyFlags overrides saved settings with the flags given on the command line.
func applyFlags(s *storage.Settings) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "tier":
			s.Tier = int(engine.ClampTier(*tier))
		case "budget":
			if *budget > 0 {
				s.BudgetMillis = int(budget.Milliseconds())
			}
		case "no-book":
			s.BookEnabled = !*noBook
		}
	})
}
