package book

import (
	"strings"

	"github.com/hailam/chessai/internal/board"
)

// defaultLines maps a move sequence from the starting position to the
// replies the built-in book prefers there.
var defaultLines = map[string][]string{
	"":     {"e2e4", "d2d4", "c2c4", "g1f3", "b1c3"},
	"e2e4": {"e7e5", "c7c5", "e7e6", "c7c6"},
	"d2d4": {"d7d5", "g8f6"},
	"c2c4": {"e7e5", "g8f6", "c7c5"},
	"g1f3": {"d7d5", "g8f6"},
	"b1c3": {"d7d5", "e7e5"},

	"e2e4 e7e5": {"g1f3", "f1c4", "b1c3"},
	"e2e4 c7c5": {"g1f3", "b1c3"},
	"e2e4 e7e6": {"d2d4"},
	"e2e4 c7c6": {"d2d4"},
	"d2d4 d7d5": {"c2c4", "g1f3"},
	"d2d4 g8f6": {"c2c4", "g1f3"},
	"c2c4 e7e5": {"b1c3", "g2g3"},
	"g1f3 d7d5": {"d2d4", "g2g3"},

	"e2e4 e7e5 g1f3":      {"b8c6", "g8f6"},
	"e2e4 c7c5 g1f3":      {"d7d6", "b8c6", "e7e6"},
	"e2e4 e7e6 d2d4":      {"d7d5"},
	"e2e4 c7c6 d2d4":      {"d7d5"},
	"d2d4 d7d5 c2c4":      {"e7e6", "c7c6"},
	"d2d4 g8f6 c2c4":      {"e7e6", "g7g6"},
	"e2e4 e7e5 g1f3 b8c6": {"f1b5", "f1c4", "d2d4"},
}

// Default returns the built-in book.
func Default() *Book {
	b := New()
	for line, replies := range defaultLines {
		pos := board.NewBoard()
		for _, s := range strings.Fields(line) {
			m, err := board.ParseMove(s)
			if err != nil {
				panic("book: bad default line " + line)
			}
			pos = pos.Apply(m)
		}
		if err := b.Add(pos.PositionKey(), replies...); err != nil {
			panic("book: bad default replies for " + line)
		}
	}
	return b
}
