package rules

import (
	"errors"
	"testing"

	"github.com/hailam/chessai/internal/board"
)

func TestLegalMovesStartPosition(t *testing.T) {
	p := NewProvider()
	moves, err := p.LegalMoves(board.NewBoard(), board.White)
	if err != nil {
		t.Fatalf("LegalMoves failed: %v", err)
	}
	if len(moves) != 20 {
		t.Fatalf("Expected 20 legal moves, got %d", len(moves))
	}
	i := board.IndexOf(moves, board.NewMove(board.G1, board.F3))
	if i < 0 {
		t.Fatal("Expected g1f3 among legal moves")
	}
	if moves[i].Notation != "Nf3" {
		t.Errorf("Expected SAN Nf3, got %q", moves[i].Notation)
	}
}

func TestLegalMovesRespectSideArgument(t *testing.T) {
	p := NewProvider()
	b := board.NewBoard()
	moves, err := p.LegalMoves(b, board.Black)
	if err != nil {
		t.Fatalf("LegalMoves failed: %v", err)
	}
	if board.IndexOf(moves, board.NewMove(board.E7, board.E5)) < 0 {
		t.Errorf("Expected e7e5 for black, got %v", moves)
	}
}

func TestLegalMovesCheckmateAndPromotion(t *testing.T) {
	p := NewProvider()

	mated := board.MustParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	moves, err := p.LegalMoves(mated, board.Black)
	if err != nil {
		t.Fatalf("LegalMoves failed: %v", err)
	}
	if len(moves) != 0 {
		t.Errorf("Expected no legal moves when mated, got %v", moves)
	}

	promo := board.MustParseFEN("4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	moves, err = p.LegalMoves(promo, board.White)
	if err != nil {
		t.Fatalf("LegalMoves failed: %v", err)
	}
	for _, pt := range []board.PieceType{board.Queen, board.Rook, board.Bishop, board.Knight} {
		if board.IndexOf(moves, board.NewPromotion(board.A7, board.A8, pt)) < 0 {
			t.Errorf("Missing promotion to %s", pt)
		}
	}
}

func TestGamePlayAndOutcome(t *testing.T) {
	g := NewGame()
	for _, s := range []string{"f2f3", "e7e5", "g2g4"} {
		if err := g.PlayUCI(s); err != nil {
			t.Fatalf("PlayUCI(%s) failed: %v", s, err)
		}
	}
	if g.Over() {
		t.Fatal("Game should not be over yet")
	}
	if g.SideToMove() != board.Black {
		t.Errorf("Expected black to move, got %s", g.SideToMove())
	}

	if err := g.PlayUCI("d8h4"); err != nil {
		t.Fatalf("mating move failed: %v", err)
	}
	if g.Result() != ResultBlackWins {
		t.Errorf("Expected 0-1, got %s", g.Result())
	}
	if g.Method() != "Checkmate" {
		t.Errorf("Expected Checkmate, got %q", g.Method())
	}
	if len(g.Moves()) != 4 {
		t.Errorf("Expected 4 recorded moves, got %d", len(g.Moves()))
	}

	b := g.Board()
	if b.PieceAt(board.H4) != board.BlackQueen {
		t.Errorf("Expected black queen on h4, got %s", b.PieceAt(board.H4))
	}
}

func TestGameRejectsIllegalMove(t *testing.T) {
	g := NewGame()
	err := g.Play(board.NewMove(board.E2, board.E5))
	if !errors.Is(err, ErrIllegalMove) {
		t.Errorf("Expected ErrIllegalMove, got %v", err)
	}
	if len(g.Moves()) != 0 {
		t.Error("Illegal move must not be recorded")
	}
}

func TestNewGameFromFEN(t *testing.T) {
	g, err := NewGameFromFEN("4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	if err != nil {
		t.Fatalf("NewGameFromFEN failed: %v", err)
	}
	if board.IndexOf(g.LegalMoves(), board.NewMove(board.E1, board.G1)) < 0 {
		t.Error("Expected castling e1g1 to be legal")
	}
	if _, err := NewGameFromFEN("garbage"); err == nil {
		t.Error("Expected error for bad FEN")
	}
}
