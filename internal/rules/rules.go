// Package rules adapts github.com/notnil/chess as the rules authority:
// legal moves, move notation and game outcome.
package rules

import (
	"errors"
	"fmt"

	"github.com/notnil/chess"

	"github.com/hailam/chessai/internal/board"
)

// ErrIllegalMove is returned when a move is not among the legal moves.
var ErrIllegalMove = errors.New("illegal move")

// Provider returns rules-correct legal moves for a board snapshot.
type Provider struct{}

// NewProvider creates a legal-move provider.
func NewProvider() *Provider {
	return &Provider{}
}

// LegalMoves returns every legal move of side in b, with SAN in Notation.
func (p *Provider) LegalMoves(b board.Board, side board.Color) ([]board.Move, error) {
	if side != b.SideToMove {
		b.SideToMove = side
		b.EnPassant = board.NoSquare
	}
	pos, err := position(b)
	if err != nil {
		return nil, err
	}
	return convertMoves(pos, pos.ValidMoves()), nil
}

// position builds a notnil/chess position from a snapshot via FEN.
func position(b board.Board) (*chess.Position, error) {
	opt, err := chess.FEN(b.FEN())
	if err != nil {
		return nil, fmt.Errorf("rules: load position: %w", err)
	}
	return chess.NewGame(opt).Position(), nil
}

func convertMoves(pos *chess.Position, valid []*chess.Move) []board.Move {
	notation := chess.AlgebraicNotation{}
	moves := make([]board.Move, 0, len(valid))
	for _, cm := range valid {
		m := fromChess(cm)
		m.Notation = notation.Encode(pos, cm)
		moves = append(moves, m)
	}
	return moves
}

func fromChess(cm *chess.Move) board.Move {
	from := board.Square(cm.S1())
	to := board.Square(cm.S2())
	switch cm.Promo() {
	case chess.Queen:
		return board.NewPromotion(from, to, board.Queen)
	case chess.Rook:
		return board.NewPromotion(from, to, board.Rook)
	case chess.Bishop:
		return board.NewPromotion(from, to, board.Bishop)
	case chess.Knight:
		return board.NewPromotion(from, to, board.Knight)
	default:
		return board.NewMove(from, to)
	}
}

// findMove returns the library move matching m, or nil.
func findMove(valid []*chess.Move, m board.Move) *chess.Move {
	for _, cm := range valid {
		if fromChess(cm).Equal(m) {
			return cm
		}
	}
	return nil
}
