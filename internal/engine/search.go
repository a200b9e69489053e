package engine

import (
	"github.com/hailam/chessai/internal/board"
)

// Search constants
const (
	Infinity         = 1_000_000
	WinningScore     = 9000 // deepening stops once the mover is this far ahead
	MaxDepth         = 8
	maxQuiescencePly = 10
)

// PseudoMoveExpander supplies the moves used to grow the search tree.
//
// It is an approximation layer, deliberately separate from LegalMoveProvider:
// the moves only need the right shape, and may leave the mover's own king in
// check. The evaluator's king terms and king capture inside the tree absorb
// the difference.
type PseudoMoveExpander interface {
	PseudoMoves(b *board.Board, side board.Color) []board.Move
	Captures(b *board.Board, side board.Color) []board.Move
}

// boardExpander is the default expander built on the board's own generator.
type boardExpander struct{}

func (boardExpander) PseudoMoves(b *board.Board, side board.Color) []board.Move {
	return b.PseudoMoves(side)
}

func (boardExpander) Captures(b *board.Board, side board.Color) []board.Move {
	return b.Captures(side)
}

// Searcher performs the alpha-beta search. Scores are from White's
// perspective: White maximises, Black minimises.
type Searcher struct {
	tt       *TranspositionTable
	expander PseudoMoveExpander
	orderer  *MoveOrderer
	budget   *Budget
}

// NewSearcher creates a searcher over the given table and expander.
// A nil expander selects the board's pseudo-legal generator.
func NewSearcher(tt *TranspositionTable, expander PseudoMoveExpander) *Searcher {
	if expander == nil {
		expander = boardExpander{}
	}
	return &Searcher{
		tt:       tt,
		expander: expander,
		orderer:  NewMoveOrderer(),
		budget:   NewBudget(0),
	}
}

// Begin attaches the budget for the next top-level decision.
func (s *Searcher) Begin(budget *Budget) {
	s.budget = budget
}

// Nodes returns the number of nodes visited under the current budget.
func (s *Searcher) Nodes() uint64 {
	return s.budget.Nodes()
}

// ttKey folds the side to move into the layout fingerprint. Castling rights
// and en passant are left out, so positions differing only in those share
// an entry.
func ttKey(b *board.Board) string {
	if b.SideToMove == board.Black {
		return b.Fingerprint() + " b"
	}
	return b.Fingerprint() + " w"
}

// Search returns the minimax value of b searched to depth within
// [alpha, beta]. maximizing is true when White is to move.
//
// If the budget runs out the node stops expanding and returns the best value
// seen so far; such partial results are not stored.
func (s *Searcher) Search(b *board.Board, depth, alpha, beta int, maximizing bool) int {
	if depth <= 0 {
		if maximizing {
			return s.quiescence(b, alpha, beta, 0)
		}
		return -s.quiescence(b, -beta, -alpha, 0)
	}

	s.budget.Visit()

	key := ttKey(b)
	if entry, ok := s.tt.Lookup(key); ok && entry.Depth >= depth {
		switch {
		case entry.Bound == BoundExact:
			return entry.Score
		case entry.Bound == BoundLower && entry.Score >= beta:
			return entry.Score
		case entry.Bound == BoundUpper && entry.Score <= alpha:
			return entry.Score
		}
	}

	side := board.White
	if !maximizing {
		side = board.Black
	}

	// A side whose king has been captured has nothing left to play for.
	if b.KingSquare(side) == board.NoSquare {
		return Evaluate(b)
	}

	moves := s.expander.PseudoMoves(b, side)
	if len(moves) == 0 {
		return Evaluate(b)
	}
	moves = s.orderer.Order(moves, b, side)

	alphaOrig, betaOrig := alpha, beta
	best := Infinity
	if maximizing {
		best = -Infinity
	}
	bestMove := board.NoMove
	searched := 0

	for _, m := range moves {
		if s.budget.Expired() {
			break
		}

		child := b.Apply(m)
		score := s.Search(&child, depth-1, alpha, beta, !maximizing)
		searched++

		if maximizing {
			if score > best {
				best, bestMove = score, m
			}
			if score > alpha {
				alpha = score
			}
		} else {
			if score < best {
				best, bestMove = score, m
			}
			if score < beta {
				beta = score
			}
		}

		if beta <= alpha {
			break
		}
	}

	if searched == 0 {
		return Evaluate(b)
	}
	// Any child searched after the deadline may hold a truncated value,
	// including the one that produced a cutoff. Only whole subtrees are stored.
	if s.budget.Expired() {
		return best
	}

	bound := BoundExact
	switch {
	case best <= alphaOrig:
		bound = BoundUpper
	case best >= betaOrig:
		bound = BoundLower
	}
	s.tt.Store(key, best, depth, bound, bestMove)

	return best
}

// quiescence extends the search over captures only, from the point of view
// of the side to move (negamax form).
func (s *Searcher) quiescence(b *board.Board, alpha, beta, qPly int) int {
	s.budget.Visit()

	side := b.SideToMove
	standPat := side.Sign() * Evaluate(b)

	if qPly >= maxQuiescencePly || b.KingSquare(side) == board.NoSquare {
		return standPat
	}
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	captures := s.expander.Captures(b, side)
	if len(captures) == 0 {
		return alpha
	}
	captures = s.orderer.Order(captures, b, side)

	for _, m := range captures {
		if s.budget.Expired() {
			break
		}

		child := b.Apply(m)
		score := -s.quiescence(&child, -beta, -alpha, qPly+1)

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}
