// Package engine implements the chess AI search engine.
package engine

import (
	"github.com/hailam/chessai/internal/board"
)

// Evaluation constants
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
	KingValue   = 20000 // anchors king safety; never traded
)

// Piece values array for quick lookup
var pieceValues = [7]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, KingValue, 0}

const (
	mobilityWeight      = 10
	doubledPawnPenalty  = 30 // per extra pawn on a file
	isolatedPawnPenalty = 20
	kingCenterWeight    = 10 // per step away from the centre
	kingEdgePenalty     = 20
)

// Coarse endgame pattern bonuses, awarded to the side holding the material.
const (
	endgamePieceLimit = 6
	krkBonus          = 500
	krpkBonus         = 600
	kqkBonus          = 900
	kpkBonus          = 100
)

// Piece-Square Tables (PST) for positional evaluation
// Values are from White's perspective, first row is the 8th rank; mirrored for Black.

var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingPST = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

var psts = [...]*[64]int{
	&pawnPST, &knightPST, &bishopPST, &rookPST, &queenPST, &kingPST,
}

// pstIndex maps a square to its table slot for the given side.
func pstIndex(sq board.Square, c board.Color) int {
	if c == board.White {
		return (7-sq.Rank())*8 + sq.File()
	}
	return sq.Rank()*8 + sq.File()
}

// Evaluate returns the static evaluation of b from White's perspective, in
// centipawns. It is the plain sum of independent terms and has no state.
func Evaluate(b *board.Board) int {
	return evaluateMaterial(b) +
		evaluatePlacement(b) +
		evaluateMobility(b) +
		evaluatePawnStructure(b) +
		evaluateKingSafety(b) +
		evaluateEndgame(b)
}

// EvaluateMaterialPlacement is the reduced evaluator used by the positional
// tier: material and piece-square terms only.
func EvaluateMaterialPlacement(b *board.Board) int {
	return evaluateMaterial(b) + evaluatePlacement(b)
}

func evaluateMaterial(b *board.Board) int {
	score := 0
	for _, p := range b.Squares {
		if p == board.NoPiece {
			continue
		}
		score += p.Color().Sign() * pieceValues[p.Type()]
	}
	return score
}

func evaluatePlacement(b *board.Board) int {
	score := 0
	for sq := board.A1; sq <= board.H8; sq++ {
		p := b.Squares[sq]
		pt := p.Type()
		if pt >= board.NoPieceType {
			continue
		}
		c := p.Color()
		score += c.Sign() * psts[pt][pstIndex(sq, c)]
	}
	return score
}

// evaluateMobility counts pseudo-legal moves, so it ignores pins and checks.
func evaluateMobility(b *board.Board) int {
	return (b.CountPseudoMoves(board.White) - b.CountPseudoMoves(board.Black)) * mobilityWeight
}

func evaluatePawnStructure(b *board.Board) int {
	var files [2][8]int
	for sq := board.A1; sq <= board.H8; sq++ {
		p := b.Squares[sq]
		if p.Type() == board.Pawn {
			files[p.Color()][sq.File()]++
		}
	}

	score := 0
	for c := board.White; c <= board.Black; c++ {
		sign := c.Sign()
		for f := 0; f < 8; f++ {
			n := files[c][f]
			if n == 0 {
				continue
			}
			if n > 1 {
				score -= sign * doubledPawnPenalty * (n - 1)
			}
			left := f > 0 && files[c][f-1] > 0
			right := f < 7 && files[c][f+1] > 0
			if !left && !right {
				score -= sign * isolatedPawnPenalty * n
			}
		}
	}
	return score
}

// evaluateKingSafety skips a side that has no king on the board.
func evaluateKingSafety(b *board.Board) int {
	score := 0
	for c := board.White; c <= board.Black; c++ {
		ksq := b.KingSquare(c)
		if ksq == board.NoSquare {
			continue
		}
		penalty := centerDistance(ksq) * kingCenterWeight
		if f, r := ksq.File(), ksq.Rank(); f == 0 || f == 7 || r == 0 || r == 7 {
			penalty += kingEdgePenalty
		}
		score -= c.Sign() * penalty
	}
	return score
}

// centerDistance is the Manhattan distance from sq to the nearest of the four
// centre squares (0 on d4/e4/d5/e5, 6 in a corner).
func centerDistance(sq board.Square) int {
	return axisDistance(sq.File()) + axisDistance(sq.Rank())
}

func axisDistance(x int) int {
	if x <= 3 {
		return 3 - x
	}
	return x - 4
}

// evaluateEndgame recognises a few won material signatures once the board
// has thinned out. It is a nudge toward conversion, not a tablebase score.
func evaluateEndgame(b *board.Board) int {
	if b.PieceCount() > endgamePieceLimit {
		return 0
	}

	var counts [2][6]int
	var nonKing [2]int
	for _, p := range b.Squares {
		pt := p.Type()
		if pt >= board.NoPieceType {
			continue
		}
		counts[p.Color()][pt]++
		if pt != board.King {
			nonKing[p.Color()]++
		}
	}

	score := 0
	for c := board.White; c <= board.Black; c++ {
		them := c.Other()
		if counts[c][board.King] != 1 || counts[them][board.King] != 1 || nonKing[them] != 0 {
			continue
		}
		own := counts[c]
		switch {
		case nonKing[c] == 1 && own[board.Rook] == 1:
			score += c.Sign() * krkBonus
		case nonKing[c] == 2 && own[board.Rook] == 1 && own[board.Pawn] == 1:
			score += c.Sign() * krpkBonus
		case nonKing[c] == 1 && own[board.Queen] == 1:
			score += c.Sign() * kqkBonus
		case nonKing[c] == 1 && own[board.Pawn] == 1:
			score += c.Sign() * kpkBonus
		}
	}
	return score
}
