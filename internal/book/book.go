// Package book provides an exact-match opening book keyed by full position.
package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/hailam/chessai/internal/board"
)

// ErrInvalidBook is returned for malformed book data.
var ErrInvalidBook = errors.New("invalid opening book")

// Book maps a position key (placement, side to move, castling, en passant)
// to an ordered list of preferred moves.
type Book struct {
	entries map[string][]board.Move
}

// bookFile is the on-disk JSON layout.
type bookFile struct {
	Positions map[string][]string `json:"positions"`
}

// New creates an empty book.
func New() *Book {
	return &Book{
		entries: make(map[string][]board.Move),
	}
}

// NormalizeKey reduces a FEN or position key to its first four fields.
func NormalizeKey(key string) (string, error) {
	fields := strings.Fields(key)
	if len(fields) < 4 {
		return "", fmt.Errorf("%w: key %q needs 4 fields", ErrInvalidBook, key)
	}
	return strings.Join(fields[:4], " "), nil
}

// Add appends moves (coordinate notation) to the entry for key.
func (b *Book) Add(key string, moves ...string) error {
	k, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	for _, s := range moves {
		m, err := board.ParseMove(s)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBook, err)
		}
		if board.IndexOf(b.entries[k], m) >= 0 {
			continue
		}
		b.entries[k] = append(b.entries[k], m)
	}
	return nil
}

// Lookup returns the moves stored for an exact position key, in preference
// order, or nil.
func (b *Book) Lookup(key string) []board.Move {
	if b == nil {
		return nil
	}
	moves, ok := b.entries[key]
	if !ok {
		return nil
	}
	out := make([]board.Move, len(moves))
	copy(out, moves)
	return out
}

// Probe looks up the book moves for a position.
func (b *Book) Probe(pos *board.Board) []board.Move {
	return b.Lookup(pos.PositionKey())
}

// Size returns the number of unique positions in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Load reads a JSON book from a file.
func Load(filename string) (*Book, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadJSON(file)
}

// LoadJSON reads a book of the form {"positions": {"<key>": ["e2e4", ...]}}.
func LoadJSON(r io.Reader) (*Book, error) {
	var f bookFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBook, err)
	}

	b := New()
	for key, moves := range f.Positions {
		if err := b.Add(key, moves...); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// WriteJSON writes the book in the format LoadJSON reads.
func (b *Book) WriteJSON(w io.Writer) error {
	f := bookFile{Positions: make(map[string][]string, len(b.entries))}
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		moves := make([]string, len(b.entries[k]))
		for i, m := range b.entries[k] {
			moves[i] = m.String()
		}
		f.Positions[k] = moves
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}
