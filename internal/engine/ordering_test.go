package engine

import (
	"testing"

	"github.com/hailam/chessai/internal/board"
)

func TestOrderCapturesFirst(t *testing.T) {
	b := board.MustParseFEN("4k3/8/8/3q4/4P3/8/8/R3K3 w - - 0 1")
	moves := b.PseudoMoves(board.White)
	mo := NewMoveOrderer()

	ordered := mo.Order(moves, &b, board.White)
	if len(ordered) != len(moves) {
		t.Fatalf("Expected %d moves, got %d", len(moves), len(ordered))
	}
	if got := ordered[0].String(); got != "e4d5" {
		t.Errorf("Expected pawn takes queen first, got %s", got)
	}

	for i := 1; i < len(ordered); i++ {
		prev := mo.ScoreMove(&b, ordered[i-1], board.White)
		cur := mo.ScoreMove(&b, ordered[i], board.White)
		if cur > prev {
			t.Errorf("Move %s (%d) ordered after lower-scored %s (%d)", ordered[i], cur, ordered[i-1], prev)
		}
	}
}

func TestOrderIsStable(t *testing.T) {
	b := board.MustParseFEN("4k3/8/8/3q4/4P3/8/8/R3K3 w - - 0 1")
	moves := b.PseudoMoves(board.White)
	mo := NewMoveOrderer()

	var rookMoves []board.Move
	for _, m := range moves {
		if b.PieceAt(m.From).Type() == board.Rook {
			rookMoves = append(rookMoves, m)
		}
	}

	ordered := mo.Order(moves, &b, board.White)
	var orderedRook []board.Move
	for _, m := range ordered {
		if b.PieceAt(m.From).Type() == board.Rook {
			orderedRook = append(orderedRook, m)
		}
	}

	if len(rookMoves) != len(orderedRook) {
		t.Fatalf("Expected %d rook moves, got %d", len(rookMoves), len(orderedRook))
	}
	for i := range rookMoves {
		if !rookMoves[i].Equal(orderedRook[i]) {
			t.Errorf("Tie order changed at %d: expected %s, got %s", i, rookMoves[i], orderedRook[i])
		}
	}
}

func TestOrderDoesNotModifyInput(t *testing.T) {
	b := board.NewBoard()
	moves := b.PseudoMoves(board.White)
	before := append([]board.Move(nil), moves...)

	NewMoveOrderer().Order(moves, &b, board.White)
	for i := range moves {
		if !moves[i].Equal(before[i]) {
			t.Fatalf("Input slice changed at %d", i)
		}
	}
}

func TestScoreMoveCenterPawnBonus(t *testing.T) {
	b := board.NewBoard()
	mo := NewMoveOrderer()

	center := mo.ScoreMove(&b, board.NewMove(board.E2, board.E3), board.White)
	wing := mo.ScoreMove(&b, board.NewMove(board.A2, board.A3), board.White)
	if center-wing != centerPawnBonus {
		t.Errorf("Expected centre pawn bonus %d, got %d", centerPawnBonus, center-wing)
	}

	knight := mo.ScoreMove(&b, board.NewMove(board.G1, board.F3), board.White)
	if knight != KnightValue {
		t.Errorf("Expected quiet knight move to score %d, got %d", KnightValue, knight)
	}
}
