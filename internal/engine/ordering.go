package engine

import (
	"sort"

	"github.com/hailam/chessai/internal/board"
)

// Move ordering weights
const (
	captureMultiplier = 10 // victim value is scaled so captures dominate
	centerPawnBonus   = 50 // pawn move landing on the d or e file
)

// MoveOrderer ranks candidate moves so that likely cutoffs are searched first.
// It holds scratch space only; ordering depends on nothing but the position.
type MoveOrderer struct {
	scratch []scoredMove
}

// moverValues ranks the moving piece. The king counts 0 here rather than
// its KingValue anchor of 20000, which would push king moves below every capture.
var moverValues = [7]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, 0, 0}

type scoredMove struct {
	move  board.Move
	score int
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// ScoreMove returns the ordering score of m for side:
// captured value x10, plus the mover's own value, plus a bonus for pawn moves
// into the two centre files. Capturing a king scores its full anchor value.
func (mo *MoveOrderer) ScoreMove(b *board.Board, m board.Move, side board.Color) int {
	mover := b.PieceAt(m.From)
	score := moverValues[mover.Type()]

	if victim := b.PieceAt(m.To); victim != board.NoPiece && victim.Color() != side {
		score += pieceValues[victim.Type()] * captureMultiplier
	}

	if mover.Type() == board.Pawn {
		if f := m.To.File(); f == 3 || f == 4 {
			score += centerPawnBonus
		}
	}
	return score
}

// Order returns moves sorted by descending score. Equal scores keep their
// generation order. The input slice is not modified.
func (mo *MoveOrderer) Order(moves []board.Move, b *board.Board, side board.Color) []board.Move {
	mo.scratch = mo.scratch[:0]
	for _, m := range moves {
		mo.scratch = append(mo.scratch, scoredMove{move: m, score: mo.ScoreMove(b, m, side)})
	}
	sort.SliceStable(mo.scratch, func(i, j int) bool {
		return mo.scratch[i].score > mo.scratch[j].score
	})

	ordered := make([]board.Move, len(mo.scratch))
	for i, sm := range mo.scratch {
		ordered[i] = sm.move
	}
	return ordered
}
