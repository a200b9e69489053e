package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Storage keys
const (
	keySettings   = "settings"
	keyStats      = "stats"
	keyGamePrefix = "game/"
)

// Settings stores the engine configuration between runs.
type Settings struct {
	Tier         int  `json:"tier"`
	BookEnabled  bool `json:"book_enabled"`
	BudgetMillis int  `json:"budget_ms"`
	TTCapacity   int  `json:"tt_capacity"`
}

// DefaultSettings returns the reference engine configuration.
func DefaultSettings() *Settings {
	return &Settings{
		Tier:         3,
		BookEnabled:  true,
		BudgetMillis: 5000,
		TTCapacity:   1_000_000,
	}
}

// Budget returns the move budget as a duration.
func (s *Settings) Budget() time.Duration {
	return time.Duration(s.BudgetMillis) * time.Millisecond
}

// GameRecord is one finished (or abandoned) game.
type GameRecord struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Moves     []string      `json:"moves"` // coordinate notation
	Result    string        `json:"result"`
	Method    string        `json:"method,omitempty"`
	WhiteTier int           `json:"white_tier"` // 0 for a non-engine player
	BlackTier int           `json:"black_tier"`
	Duration  time.Duration `json:"duration"`
}

// TierStats aggregates the games one tier played.
type TierStats struct {
	Games  int `json:"games"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}

// WinRate returns the win rate as a percentage (0-100).
func (ts TierStats) WinRate() float64 {
	if ts.Games == 0 {
		return 0
	}
	return float64(ts.Wins) / float64(ts.Games) * 100
}

// GameStats stores aggregate statistics.
type GameStats struct {
	GamesPlayed   int               `json:"games_played"`
	WhiteWins     int               `json:"white_wins"`
	BlackWins     int               `json:"black_wins"`
	Draws         int               `json:"draws"`
	Unfinished    int               `json:"unfinished"`
	TotalPlayTime time.Duration     `json:"total_play_time"`
	ByTier        map[int]TierStats `json:"by_tier"`
}

// NewGameStats returns empty game statistics.
func NewGameStats() *GameStats {
	return &GameStats{ByTier: make(map[int]TierStats)}
}

// Storage wraps BadgerDB for persistent storage.
// It is safe for concurrent use; badger serializes the transactions.
type Storage struct {
	db  *badger.DB
	log zerolog.Logger
}

// NewStorage opens the database laid out by p.
func NewStorage(p Paths, log zerolog.Logger) (*Storage, error) {
	dbDir, err := p.DatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir, log)
}

// Open opens the database at dir. An empty dir keeps everything in memory.
func Open(dir string, log zerolog.Logger) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Disable badger's own logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open %q: %w", dir, err)
	}

	log.Info().Str("dir", dir).Bool("in_memory", dir == "").Msg("storage opened")
	return &Storage{db: db, log: log}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	s.log.Info().Msg("storage closed")
	return s.db.Close()
}

func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes key into v. A missing key leaves v untouched and reports false.
func (s *Storage) get(key string, v any) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if err != nil {
		return false, fmt.Errorf("storage: get %s: %w", key, err)
	}
	return found, nil
}

// SaveSettings saves the engine settings.
func (s *Storage) SaveSettings(settings *Settings) error {
	return s.put(keySettings, settings)
}

// LoadSettings loads the engine settings, returns defaults if not found.
func (s *Storage) LoadSettings() (*Settings, error) {
	settings := DefaultSettings()
	_, err := s.get(keySettings, settings)
	return settings, err
}

// SaveStats saves game statistics.
func (s *Storage) SaveStats(stats *GameStats) error {
	return s.put(keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found.
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	if _, err := s.get(keyStats, stats); err != nil {
		return nil, err
	}
	if stats.ByTier == nil {
		stats.ByTier = make(map[int]TierStats)
	}
	return stats, nil
}

// RecordGame stores rec and folds it into the statistics. A record without
// an ID is given one. The ID is returned.
func (s *Storage) RecordGame(rec GameRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}

	update := func(txn *badger.Txn) error {
		stats := NewGameStats()
		item, err := txn.Get([]byte(keyStats))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, stats)
			}); err != nil {
				return err
			}
			if stats.ByTier == nil {
				stats.ByTier = make(map[int]TierStats)
			}
		}

		stats.apply(rec)
		statsData, err := json.Marshal(stats)
		if err != nil {
			return err
		}

		if err := txn.Set([]byte(keyGamePrefix+rec.ID), data); err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), statsData)
	}

	// Parallel games race on the stats key; badger rejects the loser.
	for {
		err = s.db.Update(update)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return "", fmt.Errorf("storage: record game: %w", err)
	}

	s.log.Debug().Str("id", rec.ID).Str("result", rec.Result).Int("moves", len(rec.Moves)).Msg("game recorded")
	return rec.ID, nil
}

// apply folds one game into the aggregate counters.
func (gs *GameStats) apply(rec GameRecord) {
	gs.GamesPlayed++
	gs.TotalPlayTime += rec.Duration

	var white, black string // outcome from each side's point of view
	switch rec.Result {
	case "1-0":
		gs.WhiteWins++
		white, black = "win", "loss"
	case "0-1":
		gs.BlackWins++
		white, black = "loss", "win"
	case "1/2-1/2":
		gs.Draws++
		white, black = "draw", "draw"
	default:
		gs.Unfinished++
		return
	}

	gs.addTier(rec.WhiteTier, white)
	gs.addTier(rec.BlackTier, black)
}

func (gs *GameStats) addTier(tier int, outcome string) {
	if tier == 0 {
		return
	}
	ts := gs.ByTier[tier]
	ts.Games++
	switch outcome {
	case "win":
		ts.Wins++
	case "loss":
		ts.Losses++
	default:
		ts.Draws++
	}
	gs.ByTier[tier] = ts
}

// LoadGame returns the record stored under id.
func (s *Storage) LoadGame(id string) (*GameRecord, error) {
	var rec GameRecord
	found, err := s.get(keyGamePrefix+id, &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("storage: game %s: %w", id, badger.ErrKeyNotFound)
	}
	return &rec, nil
}

// ListGames returns every stored game, oldest first.
func (s *Storage) ListGames() ([]GameRecord, error) {
	var games []GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyGamePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec GameRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			games = append(games, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list games: %w", err)
	}

	sort.SliceStable(games, func(i, j int) bool {
		return games[i].StartedAt.Before(games[j].StartedAt)
	})
	return games, nil
}

// Summary returns one line per tier, lowest tier first.
func (gs *GameStats) Summary() []string {
	tiers := make([]int, 0, len(gs.ByTier))
	for t := range gs.ByTier {
		tiers = append(tiers, t)
	}
	sort.Ints(tiers)

	lines := make([]string, 0, len(tiers))
	for _, t := range tiers {
		ts := gs.ByTier[t]
		lines = append(lines, fmt.Sprintf("tier %d: %d games, %dW %dL %dD, %.1f%% wins",
			t, ts.Games, ts.Wins, ts.Losses, ts.Draws, ts.WinRate()))
	}
	return lines
}
