package board

import (
	"errors"
	"fmt"
)

// ErrInvalidMove is returned when a coordinate move string cannot be parsed.
var ErrInvalidMove = errors.New("invalid move")

// Move is a from/to pair with an optional promotion piece.
// Notation optionally carries a human-readable form (e.g. SAN) supplied by
// the rules layer; it takes no part in equality.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType
	Notation  string
}

// NoMove is the zero move.
var NoMove = Move{From: NoSquare, To: NoSquare, Promotion: NoPieceType}

// NewMove creates a plain move.
func NewMove(from, to Square) Move {
	return Move{From: from, To: to, Promotion: NoPieceType}
}

// NewPromotion creates a promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	return Move{From: from, To: to, Promotion: promo}
}

// IsPromotion reports whether the move names a promotion piece.
func (m Move) IsPromotion() bool {
	return m.Promotion >= Knight && m.Promotion <= Queen
}

// IsNone reports whether m does not describe a move.
func (m Move) IsNone() bool {
	return !m.From.IsValid() || !m.To.IsValid() || m.From == m.To
}

// Equal compares two moves by from, to and promotion.
func (m Move) Equal(o Move) bool {
	if m.From != o.From || m.To != o.To {
		return false
	}
	if m.IsPromotion() || o.IsPromotion() {
		return m.Promotion == o.Promotion
	}
	return true
}

// String returns coordinate notation (e.g. "e2e4", "e7e8q").
func (m Move) String() string {
	if m.IsNone() {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += string(m.Promotion.Char())
	}
	return s
}

// ParseMove parses coordinate notation such as "g1f3" or "a7a8q".
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %q: %v", ErrInvalidMove, s, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %q: %v", ErrInvalidMove, s, err)
	}
	if len(s) == 5 {
		promo := pieceTypeFromChar(s[4])
		if promo < Knight || promo > Queen {
			return NoMove, fmt.Errorf("%w: bad promotion piece %q", ErrInvalidMove, s[4])
		}
		return NewPromotion(from, to, promo), nil
	}
	return NewMove(from, to), nil
}

// IndexOf returns the index of the first move in moves equal to m, or -1.
func IndexOf(moves []Move, m Move) int {
	for i, candidate := range moves {
		if candidate.Equal(m) {
			return i
		}
	}
	return -1
}
