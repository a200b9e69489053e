package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/hailam/chessai/internal/board"
	"github.com/hailam/chessai/internal/book"
	"github.com/hailam/chessai/internal/rules"
)

func newTestEngine(t *testing.T, budget time.Duration) *Engine {
	t.Helper()
	opts := DefaultOptions()
	opts.Budget = budget
	opts.Seed = 1
	opts.TTCapacity = 1 << 18
	return NewEngine(opts)
}

func legalMoves(t *testing.T, b board.Board) []board.Move {
	t.Helper()
	legal, err := rules.NewProvider().LegalMoves(b, b.SideToMove)
	if err != nil {
		t.Fatalf("LegalMoves failed: %v", err)
	}
	return legal
}

func TestChooseMoveNoMoves(t *testing.T) {
	eng := newTestEngine(t, time.Second)
	b := board.NewBoard()

	for tier := MinTier; tier <= MaxTier; tier++ {
		if _, err := eng.ChooseMove(b, nil, board.White, tier); !errors.Is(err, ErrNoMoves) {
			t.Errorf("tier %d: expected ErrNoMoves, got %v", tier, err)
		}
	}
}

func TestChooseMoveTier1StartPosition(t *testing.T) {
	eng := newTestEngine(t, time.Second)
	b := board.NewBoard()
	legal := legalMoves(t, b)
	if len(legal) != 20 {
		t.Fatalf("Expected 20 legal moves, got %d", len(legal))
	}

	for i := 0; i < 10; i++ {
		m, err := eng.ChooseMove(b, legal, board.White, 1)
		if err != nil {
			t.Fatalf("ChooseMove failed: %v", err)
		}
		if board.IndexOf(legal, m) < 0 {
			t.Errorf("Move %s is not in the legal list", m)
		}
	}
}

func TestChooseMoveTier1AvoidsUnsafeMoves(t *testing.T) {
	eng := newTestEngine(t, time.Second)
	b := board.MustParseFEN("4k3/8/8/8/8/8/4r3/4K3 w - - 0 1")

	unsafe := []board.Move{board.NewMove(board.E1, board.D2), board.NewMove(board.E1, board.F2)}
	safe := board.NewMove(board.E1, board.D1)
	candidates := append(append([]board.Move(nil), unsafe...), safe)

	for i := 0; i < 20; i++ {
		m, err := eng.ChooseMove(b, candidates, board.White, 1)
		if err != nil {
			t.Fatalf("ChooseMove failed: %v", err)
		}
		if !m.Equal(safe) {
			t.Fatalf("Expected the only safe move %s, got %s", safe, m)
		}
	}

	// With no safe move the whole list is eligible.
	m, err := eng.ChooseMove(b, unsafe, board.White, 1)
	if err != nil {
		t.Fatalf("ChooseMove failed: %v", err)
	}
	if board.IndexOf(unsafe, m) < 0 {
		t.Errorf("Move %s is not in the list", m)
	}
}

func TestChooseMoveTier2TakesMaterial(t *testing.T) {
	eng := newTestEngine(t, time.Second)
	b := board.MustParseFEN("4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1")

	m, err := eng.ChooseMove(b, legalMoves(t, b), board.White, 2)
	if err != nil {
		t.Fatalf("ChooseMove failed: %v", err)
	}
	if m.String() != "e4d5" {
		t.Errorf("Expected e4d5, got %s", m)
	}
}

func TestChooseMoveBookAtTier3(t *testing.T) {
	eng := newTestEngine(t, time.Second)
	b := board.NewBoard()
	legal := legalMoves(t, b)

	want := map[string]bool{"e2e4": true, "d2d4": true, "c2c4": true, "g1f3": true, "b1c3": true}
	for i := 0; i < 10; i++ {
		m, err := eng.ChooseMove(b, legal, board.White, 3)
		if err != nil {
			t.Fatalf("ChooseMove failed: %v", err)
		}
		if !want[m.String()] {
			t.Errorf("Expected a book move, got %s", m)
		}
	}
}

func TestChooseMoveSingleLegalMove(t *testing.T) {
	eng := newTestEngine(t, time.Second)
	// Black's king is boxed in; only the pawn can move.
	b := board.MustParseFEN("k7/7R/8/8/4p3/8/8/1R5K b - - 0 1")
	legal := legalMoves(t, b)
	if len(legal) != 1 {
		t.Fatalf("Expected exactly one legal move, got %v", legal)
	}

	for tier := MinTier; tier <= MaxTier; tier++ {
		start := time.Now()
		m, err := eng.ChooseMove(b, legal, board.Black, tier)
		if err != nil {
			t.Fatalf("tier %d: ChooseMove failed: %v", tier, err)
		}
		if !m.Equal(legal[0]) {
			t.Errorf("tier %d: expected %s, got %s", tier, legal[0], m)
		}
		if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
			t.Errorf("tier %d: single move took %v", tier, elapsed)
		}
	}
}

func TestChooseMoveFindsBackRankMate(t *testing.T) {
	eng := newTestEngine(t, 5*time.Second)
	b := board.MustParseFEN("6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")

	var last SearchInfo
	eng.OnInfo = func(info SearchInfo) {
		last = info
		t.Logf("depth %d move %s score %d nodes %d", info.Depth, info.Move, info.Score, info.Nodes)
	}

	m, err := eng.ChooseMove(b, legalMoves(t, b), board.White, 3)
	if err != nil {
		t.Fatalf("ChooseMove failed: %v", err)
	}
	if m.String() != "a1a8" {
		t.Errorf("Expected a1a8, got %s", m)
	}
	if last.Score <= WinningScore {
		t.Errorf("Expected a winning score, got %d", last.Score)
	}
	if last.Depth >= StrategyFor(3).MaxDepth {
		t.Errorf("Expected search to stop early on a winning score, reached depth %d", last.Depth)
	}
}

func TestChooseMoveDeepeningIsLegal(t *testing.T) {
	b := board.MustParseFEN("r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4")
	legal := legalMoves(t, b)

	for tier := Tier(3); tier <= MaxTier; tier++ {
		eng := newTestEngine(t, 300*time.Millisecond)
		m, err := eng.ChooseMove(b, legal, board.White, tier)
		if err != nil {
			t.Fatalf("tier %d: ChooseMove failed: %v", tier, err)
		}
		if board.IndexOf(legal, m) < 0 {
			t.Errorf("tier %d: move %s is not legal", tier, m)
		}
		if eng.Nodes() == 0 {
			t.Errorf("tier %d: expected a search, got 0 nodes", tier)
		}
	}
}

func TestChooseMoveRespectsBudget(t *testing.T) {
	eng := newTestEngine(t, 200*time.Millisecond)
	b := board.MustParseFEN("r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4")

	start := time.Now()
	if _, err := eng.ChooseMove(b, legalMoves(t, b), board.White, 5); err != nil {
		t.Fatalf("ChooseMove failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected to stop near the 200ms budget, took %v", elapsed)
	}
}

func TestChooseMoveKeepsLastCompleteIteration(t *testing.T) {
	opts := DefaultOptions()
	opts.Budget = 150 * time.Millisecond
	opts.Seed = 1
	opts.BookEnabled = false
	// Depth 1 only runs captures; depth 2 stalls past the deadline on its first child.
	opts.Expander = &slowExpander{delay: 300 * time.Millisecond}
	eng := NewEngine(opts)

	var infos []SearchInfo
	eng.OnInfo = func(info SearchInfo) { infos = append(infos, info) }

	b := board.MustParseFEN("4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1")
	m, err := eng.ChooseMove(b, legalMoves(t, b), board.White, 3)
	if err != nil {
		t.Fatalf("ChooseMove failed: %v", err)
	}

	if len(infos) != 1 || infos[0].Depth != 1 {
		t.Fatalf("Expected only the depth 1 iteration to be adopted, got %+v", infos)
	}
	if !m.Equal(infos[0].Move) {
		t.Errorf("Expected depth 1 best %s, got %s", infos[0].Move, m)
	}
	if m.String() != "e4d5" {
		t.Errorf("Expected e4d5, got %s", m)
	}
}

func TestNodesGrowWithBudget(t *testing.T) {
	b := board.MustParseFEN("r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4")
	legal := legalMoves(t, b)

	short := newTestEngine(t, 20*time.Millisecond)
	long := newTestEngine(t, 300*time.Millisecond)

	if _, err := short.ChooseMove(b, legal, board.White, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := long.ChooseMove(b, legal, board.White, 5); err != nil {
		t.Fatal(err)
	}
	if short.Nodes() > long.Nodes() {
		t.Errorf("Expected nodes to grow with budget: %d (20ms) > %d (300ms)", short.Nodes(), long.Nodes())
	}
}

func TestEnginesDoNotShareState(t *testing.T) {
	b := board.MustParseFEN("r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4")
	a := newTestEngine(t, 100*time.Millisecond)
	other := newTestEngine(t, 100*time.Millisecond)

	if _, err := a.ChooseMove(b, legalMoves(t, b), board.White, 4); err != nil {
		t.Fatal(err)
	}
	if a.tt.Len() == 0 {
		t.Fatal("Expected the first engine to fill its table")
	}
	if other.tt.Len() != 0 {
		t.Errorf("Second engine table has %d entries", other.tt.Len())
	}

	a.Clear()
	if a.tt.Len() != 0 {
		t.Errorf("Clear left %d entries", a.tt.Len())
	}
}

func TestBookDisabledSearches(t *testing.T) {
	eng := newTestEngine(t, 100*time.Millisecond)
	eng.SetBookEnabled(false)
	b := board.NewBoard()

	if _, err := eng.ChooseMove(b, legalMoves(t, b), board.White, 3); err != nil {
		t.Fatal(err)
	}
	if eng.Nodes() == 0 {
		t.Error("Expected a search with the book disabled")
	}
}

func TestBookMoveMustBeLegal(t *testing.T) {
	eng := newTestEngine(t, 100*time.Millisecond)
	b := board.NewBoard()

	bk := book.New()
	if err := bk.Add(b.PositionKey(), "e2e5"); err != nil {
		t.Fatal(err)
	}
	eng.SetBook(bk)

	legal := legalMoves(t, b)
	m, err := eng.ChooseMove(b, legal, board.White, 3)
	if err != nil {
		t.Fatal(err)
	}
	if board.IndexOf(legal, m) < 0 {
		t.Errorf("Illegal book move %s leaked through", m)
	}
}

type failingProvider struct{}

func (failingProvider) LegalMoves(board.Board, board.Color) ([]board.Move, error) {
	return nil, errors.New("boom")
}

func TestSelectMove(t *testing.T) {
	eng := newTestEngine(t, time.Second)
	eng.SetTier(2)
	b := board.NewBoard()

	m, err := eng.SelectMove(b, rules.NewProvider())
	if err != nil {
		t.Fatalf("SelectMove failed: %v", err)
	}
	if board.IndexOf(legalMoves(t, b), m) < 0 {
		t.Errorf("Move %s is not legal", m)
	}

	if _, err := eng.SelectMove(b, failingProvider{}); err == nil {
		t.Error("Expected provider error to propagate")
	}
}

func TestSetTierClamps(t *testing.T) {
	eng := newTestEngine(t, time.Second)
	tests := []struct {
		in   int
		want Tier
	}{
		{-3, 1}, {0, 1}, {1, 1}, {3, 3}, {5, 5}, {9, 5},
	}
	for _, tt := range tests {
		eng.SetTier(tt.in)
		if got := eng.Tier(); got != tt.want {
			t.Errorf("SetTier(%d): got %d, expected %d", tt.in, got, tt.want)
		}
	}
}

func TestStrategyFor(t *testing.T) {
	tests := []struct {
		tier Tier
		want Strategy
	}{
		{1, Strategy{Kind: RandomSafe}},
		{2, Strategy{Kind: Positional}},
		{3, Strategy{Kind: Deepening, MaxDepth: 5}},
		{4, Strategy{Kind: Deepening, MaxDepth: 6}},
		{5, Strategy{Kind: Deepening, MaxDepth: 7}},
		{8, Strategy{Kind: Deepening, MaxDepth: MaxDepth}},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if got := StrategyFor(tt.tier); got != tt.want {
				t.Errorf("StrategyFor(%d) = %v, expected %v", tt.tier, got, tt.want)
			}
		})
	}
}
