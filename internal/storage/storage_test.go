package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := Open("", zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSettings(t *testing.T) {
	s := openTest(t)

	t.Run("Defaults", func(t *testing.T) {
		settings, err := s.LoadSettings()
		if err != nil {
			t.Fatalf("LoadSettings failed: %v", err)
		}
		if settings.Tier != 3 || !settings.BookEnabled {
			t.Errorf("Unexpected defaults %+v", settings)
		}
		if settings.Budget() != 5*time.Second {
			t.Errorf("Expected 5s budget, got %v", settings.Budget())
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		want := &Settings{Tier: 5, BookEnabled: false, BudgetMillis: 250, TTCapacity: 1024}
		if err := s.SaveSettings(want); err != nil {
			t.Fatalf("SaveSettings failed: %v", err)
		}
		got, err := s.LoadSettings()
		if err != nil {
			t.Fatalf("LoadSettings failed: %v", err)
		}
		if *got != *want {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})
}

func TestRecordGame(t *testing.T) {
	s := openTest(t)

	id, err := s.RecordGame(GameRecord{
		Moves:     []string{"f2f3", "e7e5", "g2g4", "d8h4"},
		Result:    "0-1",
		Method:    "Checkmate",
		WhiteTier: 1,
		BlackTier: 4,
		Duration:  3 * time.Second,
	})
	if err != nil {
		t.Fatalf("RecordGame failed: %v", err)
	}
	if id == "" {
		t.Fatal("Expected a generated ID")
	}

	rec, err := s.LoadGame(id)
	if err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}
	if rec.Result != "0-1" || len(rec.Moves) != 4 || rec.StartedAt.IsZero() {
		t.Errorf("Unexpected record %+v", rec)
	}

	if _, err := s.RecordGame(GameRecord{Result: "1/2-1/2", WhiteTier: 4, BlackTier: 4}); err != nil {
		t.Fatalf("RecordGame failed: %v", err)
	}
	if _, err := s.RecordGame(GameRecord{Result: "*", WhiteTier: 4}); err != nil {
		t.Fatalf("RecordGame failed: %v", err)
	}

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats failed: %v", err)
	}
	if stats.GamesPlayed != 3 || stats.BlackWins != 1 || stats.Draws != 1 || stats.Unfinished != 1 {
		t.Errorf("Unexpected totals %+v", stats)
	}
	if stats.TotalPlayTime != 3*time.Second {
		t.Errorf("Expected 3s play time, got %v", stats.TotalPlayTime)
	}
	if got := stats.ByTier[1]; got.Games != 1 || got.Losses != 1 {
		t.Errorf("Unexpected tier 1 stats %+v", got)
	}
	if got := stats.ByTier[4]; got.Games != 3 || got.Wins != 1 || got.Draws != 2 {
		t.Errorf("Unexpected tier 4 stats %+v", got)
	}

	games, err := s.ListGames()
	if err != nil {
		t.Fatalf("ListGames failed: %v", err)
	}
	if len(games) != 3 {
		t.Errorf("Expected 3 games, got %d", len(games))
	}

	for _, line := range stats.Summary() {
		t.Log(line)
	}
}

func TestLoadGameMissing(t *testing.T) {
	s := openTest(t)
	if _, err := s.LoadGame("nope"); !errors.Is(err, badger.ErrKeyNotFound) {
		t.Errorf("Expected ErrKeyNotFound, got %v", err)
	}
}

func TestRecordGameConcurrent(t *testing.T) {
	s := openTest(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.RecordGame(GameRecord{Result: "1-0", WhiteTier: 3, BlackTier: 2}); err != nil {
				t.Errorf("RecordGame failed: %v", err)
			}
		}()
	}
	wg.Wait()

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats failed: %v", err)
	}
	if stats.GamesPlayed != 8 || stats.ByTier[3].Wins != 8 || stats.ByTier[2].Losses != 8 {
		t.Errorf("Unexpected stats after concurrent writes %+v", stats)
	}
}

func TestWinRate(t *testing.T) {
	ts := TierStats{Games: 10, Wins: 5, Losses: 3, Draws: 2}
	if rate := ts.WinRate(); rate != 50 {
		t.Errorf("Expected 50%% win rate, got %.2f%%", rate)
	}
	if rate := (TierStats{}).WinRate(); rate != 0 {
		t.Errorf("Expected 0 win rate, got %.2f", rate)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	p, err := ResolvePaths("", "")
	if err != nil {
		t.Fatalf("ResolvePaths failed: %v", err)
	}
	if p.Root == "" {
		t.Fatal("ResolvePaths returned empty root")
	}
	if _, err := os.Stat(p.Root); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", p.Root)
	}
	dbDir, err := p.DatabaseDir()
	if err != nil {
		t.Fatalf("DatabaseDir failed: %v", err)
	}
	if dbDir != filepath.Join(p.Root, "db") {
		t.Errorf("Expected db under %s, got %s", p.Root, dbDir)
	}
	t.Logf("Data directory: %s", p.Root)
}

func TestPathsOverrides(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	db := filepath.Join(t.TempDir(), "games")

	p, err := ResolvePaths(root, db)
	if err != nil {
		t.Fatalf("ResolvePaths failed: %v", err)
	}
	if p.Root != root {
		t.Errorf("Expected root %s, got %s", root, p.Root)
	}
	dbDir, err := p.DatabaseDir()
	if err != nil {
		t.Fatalf("DatabaseDir failed: %v", err)
	}
	if dbDir != db {
		t.Errorf("Expected db override %s, got %s", db, dbDir)
	}

	st, err := NewStorage(p, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	defer st.Close()
	if _, err := os.Stat(filepath.Join(root, "db")); !os.IsNotExist(err) {
		t.Error("default db dir should not be created when overridden")
	}
}

func TestBookFile(t *testing.T) {
	p, err := ResolvePaths(t.TempDir(), "")
	if err != nil {
		t.Fatalf("ResolvePaths failed: %v", err)
	}
	if filepath.Dir(p.BookFile()) != p.Root {
		t.Errorf("Book file %s not under %s", p.BookFile(), p.Root)
	}

	ok, err := p.HasBookFile()
	if err != nil || ok {
		t.Fatalf("Expected no book file yet, got %v %v", ok, err)
	}
	if err := os.WriteFile(p.BookFile(), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, err := p.HasBookFile(); err != nil || !ok {
		t.Errorf("Expected book file, got %v %v", ok, err)
	}
}
