// Package storage persists engine settings, game records and statistics.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chessai"

// Paths locates the files chessai keeps between runs under one root.
type Paths struct {
	Root string
	// DB overrides Root/db when set.
	DB string
}

// ResolvePaths roots the layout at dataDir, or at the platform data
// directory when dataDir is empty:
//   - macOS: ~/Library/Application Support/chessai
//   - Linux: $XDG_DATA_HOME/chessai or ~/.local/share/chessai
//   - Windows: %AppData%/chessai
func ResolvePaths(dataDir, dbDir string) (Paths, error) {
	if dataDir == "" {
		base, err := platformDataHome()
		if err != nil {
			return Paths{}, fmt.Errorf("storage: locate data dir: %w", err)
		}
		dataDir = filepath.Join(base, appName)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return Paths{}, err
	}
	return Paths{Root: dataDir, DB: dbDir}, nil
}

func platformDataHome() (string, error) {
	switch runtime.GOOS {
	case "darwin", "windows":
		return os.UserConfigDir()
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}

// DatabaseDir returns the badger directory, creating it if needed.
func (p Paths) DatabaseDir() (string, error) {
	dir := p.DB
	if dir == "" {
		dir = filepath.Join(p.Root, "db")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// BookFile is where a user opening book is looked up.
func (p Paths) BookFile() string {
	return filepath.Join(p.Root, "book.json")
}

// HasBookFile reports whether BookFile exists.
func (p Paths) HasBookFile() (bool, error) {
	_, err := os.Stat(p.BookFile())
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
