package board

// Pseudo-legal generation for search-tree expansion only.
//
// Pawns advance a single square and capture diagonally; there is no double
// step, en passant or promotion branching. Sliders stop on the first occupied
// square. Knights and kings use fixed offsets. The only filter is "does not
// land on an own piece": moves that leave the mover's king in check are kept.
// Authoritative legality lives in the rules layer.

type offset struct{ df, dr int }

var (
	knightOffsets = [8]offset{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingOffsets   = [8]offset{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookDirs      = [4]offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs    = [4]offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// PseudoMoves returns the pseudo-legal moves of side, in square order.
func (b *Board) PseudoMoves(side Color) []Move {
	moves := make([]Move, 0, 48)
	for sq := A1; sq <= H8; sq++ {
		p := b.Squares[sq]
		if p == NoPiece || p.Color() != side {
			continue
		}
		moves = b.appendPieceMoves(moves, sq, p, false)
	}
	return moves
}

// Captures returns the pseudo-legal moves of side that land on an enemy piece.
func (b *Board) Captures(side Color) []Move {
	moves := make([]Move, 0, 16)
	for sq := A1; sq <= H8; sq++ {
		p := b.Squares[sq]
		if p == NoPiece || p.Color() != side {
			continue
		}
		moves = b.appendPieceMoves(moves, sq, p, true)
	}
	return moves
}

// CountPseudoMoves returns len(PseudoMoves(side)) without building the list.
func (b *Board) CountPseudoMoves(side Color) int {
	n := 0
	for sq := A1; sq <= H8; sq++ {
		p := b.Squares[sq]
		if p == NoPiece || p.Color() != side {
			continue
		}
		switch p.Type() {
		case Pawn:
			n += b.countPawnMoves(sq, side)
		case Knight:
			n += b.countSteps(sq, side, knightOffsets[:])
		case King:
			n += b.countSteps(sq, side, kingOffsets[:])
		case Bishop:
			n += b.countSlides(sq, side, bishopDirs[:])
		case Rook:
			n += b.countSlides(sq, side, rookDirs[:])
		case Queen:
			n += b.countSlides(sq, side, rookDirs[:]) + b.countSlides(sq, side, bishopDirs[:])
		}
	}
	return n
}

func (b *Board) countPawnMoves(from Square, us Color) int {
	file, rank := from.File(), from.Rank()
	dir := 1
	if us == Black {
		dir = -1
	}
	n := 0
	if onBoard(file, rank+dir) && b.Squares[NewSquare(file, rank+dir)] == NoPiece {
		n++
	}
	for _, df := range [2]int{-1, 1} {
		if !onBoard(file+df, rank+dir) {
			continue
		}
		if target := b.Squares[NewSquare(file+df, rank+dir)]; target != NoPiece && target.Color() != us {
			n++
		}
	}
	return n
}

func (b *Board) countSteps(from Square, us Color, offsets []offset) int {
	file, rank := from.File(), from.Rank()
	n := 0
	for _, o := range offsets {
		f, r := file+o.df, rank+o.dr
		if !onBoard(f, r) {
			continue
		}
		if target := b.Squares[NewSquare(f, r)]; target == NoPiece || target.Color() != us {
			n++
		}
	}
	return n
}

func (b *Board) countSlides(from Square, us Color, dirs []offset) int {
	n := 0
	for _, d := range dirs {
		f, r := from.File()+d.df, from.Rank()+d.dr
		for onBoard(f, r) {
			target := b.Squares[NewSquare(f, r)]
			if target == NoPiece {
				n++
				f, r = f+d.df, r+d.dr
				continue
			}
			if target.Color() != us {
				n++
			}
			break
		}
	}
	return n
}

func (b *Board) appendPieceMoves(moves []Move, from Square, p Piece, capturesOnly bool) []Move {
	us := p.Color()
	file, rank := from.File(), from.Rank()

	switch p.Type() {
	case Pawn:
		dir := 1
		if us == Black {
			dir = -1
		}
		if !capturesOnly && onBoard(file, rank+dir) {
			to := NewSquare(file, rank+dir)
			if b.Squares[to] == NoPiece {
				moves = append(moves, NewMove(from, to))
			}
		}
		for _, df := range [2]int{-1, 1} {
			if !onBoard(file+df, rank+dir) {
				continue
			}
			to := NewSquare(file+df, rank+dir)
			if target := b.Squares[to]; target != NoPiece && target.Color() != us {
				moves = append(moves, NewMove(from, to))
			}
		}
	case Knight:
		moves = b.appendSteps(moves, from, us, knightOffsets[:], capturesOnly)
	case King:
		moves = b.appendSteps(moves, from, us, kingOffsets[:], capturesOnly)
	case Bishop:
		moves = b.appendSlides(moves, from, us, bishopDirs[:], capturesOnly)
	case Rook:
		moves = b.appendSlides(moves, from, us, rookDirs[:], capturesOnly)
	case Queen:
		moves = b.appendSlides(moves, from, us, rookDirs[:], capturesOnly)
		moves = b.appendSlides(moves, from, us, bishopDirs[:], capturesOnly)
	}
	return moves
}

func (b *Board) appendSteps(moves []Move, from Square, us Color, offsets []offset, capturesOnly bool) []Move {
	file, rank := from.File(), from.Rank()
	for _, o := range offsets {
		f, r := file+o.df, rank+o.dr
		if !onBoard(f, r) {
			continue
		}
		to := NewSquare(f, r)
		target := b.Squares[to]
		if target != NoPiece && target.Color() == us {
			continue
		}
		if capturesOnly && target == NoPiece {
			continue
		}
		moves = append(moves, NewMove(from, to))
	}
	return moves
}

func (b *Board) appendSlides(moves []Move, from Square, us Color, dirs []offset, capturesOnly bool) []Move {
	for _, d := range dirs {
		f, r := from.File()+d.df, from.Rank()+d.dr
		for onBoard(f, r) {
			to := NewSquare(f, r)
			target := b.Squares[to]
			if target == NoPiece {
				if !capturesOnly {
					moves = append(moves, NewMove(from, to))
				}
				f, r = f+d.df, r+d.dr
				continue
			}
			if target.Color() != us {
				moves = append(moves, NewMove(from, to))
			}
			break
		}
	}
	return moves
}

// IsSquareAttacked reports whether any piece of side by attacks sq.
func (b *Board) IsSquareAttacked(sq Square, by Color) bool {
	file, rank := sq.File(), sq.Rank()

	// Pawns attack diagonally forward, so look one rank behind sq.
	pawnRank := rank - 1
	if by == Black {
		pawnRank = rank + 1
	}
	for _, df := range [2]int{-1, 1} {
		if onBoard(file+df, pawnRank) && b.Squares[NewSquare(file+df, pawnRank)].Is(Pawn, by) {
			return true
		}
	}

	for _, o := range knightOffsets {
		if onBoard(file+o.df, rank+o.dr) && b.Squares[NewSquare(file+o.df, rank+o.dr)].Is(Knight, by) {
			return true
		}
	}
	for _, o := range kingOffsets {
		if onBoard(file+o.df, rank+o.dr) && b.Squares[NewSquare(file+o.df, rank+o.dr)].Is(King, by) {
			return true
		}
	}

	if b.slideHits(file, rank, rookDirs[:], by, Rook) || b.slideHits(file, rank, bishopDirs[:], by, Bishop) {
		return true
	}
	return false
}

// slideHits reports whether walking from (file, rank) along dirs first meets
// a piece of color by that is either slider or a queen.
func (b *Board) slideHits(file, rank int, dirs []offset, by Color, slider PieceType) bool {
	for _, d := range dirs {
		f, r := file+d.df, rank+d.dr
		for onBoard(f, r) {
			p := b.Squares[NewSquare(f, r)]
			if p != NoPiece {
				if p.Color() == by && (p.Type() == slider || p.Type() == Queen) {
					return true
				}
				break
			}
			f, r = f+d.df, r+d.dr
		}
	}
	return false
}

// InCheck reports whether side's king is attacked. A side without a king is
// never in check.
func (b *Board) InCheck(side Color) bool {
	ksq := b.KingSquare(side)
	if ksq == NoSquare {
		return false
	}
	return b.IsSquareAttacked(ksq, side.Other())
}
