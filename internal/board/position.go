package board

import (
	"strings"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	if cr&WhiteKingSideCastle != 0 {
		sb.WriteByte('K')
	}
	if cr&WhiteQueenSideCastle != 0 {
		sb.WriteByte('Q')
	}
	if cr&BlackKingSideCastle != 0 {
		sb.WriteByte('k')
	}
	if cr&BlackQueenSideCastle != 0 {
		sb.WriteByte('q')
	}
	return sb.String()
}

// swapped exchanges the white and black rights.
func (cr CastlingRights) swapped() CastlingRights {
	return (cr&(WhiteKingSideCastle|WhiteQueenSideCastle))<<2 | (cr&(BlackKingSideCastle|BlackQueenSideCastle))>>2
}

// castlingLoss lists the rights lost when a piece leaves or lands on sq.
var castlingLoss = map[Square]CastlingRights{
	A1: WhiteQueenSideCastle,
	H1: WhiteKingSideCastle,
	E1: WhiteKingSideCastle | WhiteQueenSideCastle,
	A8: BlackQueenSideCastle,
	H8: BlackKingSideCastle,
	E8: BlackKingSideCastle | BlackQueenSideCastle,
}

// Board is one position: an 8x8 grid of optional pieces plus side to move.
// It is a plain value; assigning it copies the whole grid, and the search
// never mutates a snapshot it did not create.
type Board struct {
	Squares        [64]Piece
	SideToMove     Color
	Castling       CastlingRights
	EnPassant      Square // NoSquare if none
	HalfMoveClock  int
	FullMoveNumber int
}

// NewBoard returns the standard starting position.
func NewBoard() Board {
	b, _ := ParseFEN(StartFEN)
	return b
}

// EmptyBoard returns a board with no pieces and the given side to move.
func EmptyBoard(side Color) Board {
	return Board{
		SideToMove:     side,
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}
}

// PieceAt returns the piece on sq, or NoPiece.
func (b *Board) PieceAt(sq Square) Piece {
	if !sq.IsValid() {
		return NoPiece
	}
	return b.Squares[sq]
}

// Set places p on sq, replacing anything there.
func (b *Board) Set(sq Square, p Piece) {
	b.Squares[sq] = p
}

// KingSquare returns the square of c's king, or NoSquare if it has none.
func (b *Board) KingSquare(c Color) Square {
	king := NewPiece(King, c)
	for sq := A1; sq <= H8; sq++ {
		if b.Squares[sq] == king {
			return sq
		}
	}
	return NoSquare
}

// PieceCount returns the number of pieces on the board, kings included.
func (b *Board) PieceCount() int {
	n := 0
	for _, p := range b.Squares {
		if p != NoPiece {
			n++
		}
	}
	return n
}

// Fingerprint encodes the piece layout rank by rank, in FEN placement form.
// Side to move, castling and en passant are not part of it.
func (b *Board) Fingerprint() string {
	var sb strings.Builder
	b.writePlacement(&sb)
	return sb.String()
}

// PositionKey is the full position key used by the opening book:
// placement, side to move, castling rights and en-passant target.
func (b *Board) PositionKey() string {
	var sb strings.Builder
	b.writePlacement(&sb)
	sb.WriteByte(' ')
	if b.SideToMove == Black {
		sb.WriteByte('b')
	} else {
		sb.WriteByte('w')
	}
	sb.WriteByte(' ')
	sb.WriteString(b.Castling.String())
	sb.WriteByte(' ')
	sb.WriteString(b.EnPassant.String())
	return sb.String()
}

// Apply returns a copy of b with m played. The receiver is left untouched.
// The move is not validated: captures, promotion (queen unless m names a
// piece), castling rook transfer and en passant are applied by shape only.
func (b *Board) Apply(m Move) Board {
	next := *b
	if m.IsNone() {
		next.SideToMove = b.SideToMove.Other()
		return next
	}

	piece := b.Squares[m.From]
	captured := b.Squares[m.To]
	us := piece.Color()
	if piece == NoPiece {
		us = b.SideToMove
	}
	pt := piece.Type()

	next.EnPassant = NoSquare

	if pt == Pawn && captured == NoPiece && m.To == b.EnPassant &&
		m.From.File() != m.To.File() && (m.To.Rank() == 2 || m.To.Rank() == 5) {
		capSq := NewSquare(m.To.File(), m.From.Rank())
		captured = next.Squares[capSq]
		next.Squares[capSq] = NoPiece
	}

	next.Squares[m.From] = NoPiece
	next.Squares[m.To] = piece

	switch pt {
	case Pawn:
		if m.To.Rank() == 7 || m.To.Rank() == 0 {
			promo := Queen
			if m.IsPromotion() {
				promo = m.Promotion
			}
			next.Squares[m.To] = NewPiece(promo, us)
		}
		if diff := m.To.Rank() - m.From.Rank(); diff == 2 || diff == -2 {
			next.EnPassant = NewSquare(m.From.File(), (m.From.Rank()+m.To.Rank())/2)
		}
	case King:
		if diff := m.To.File() - m.From.File(); (diff == 2 || diff == -2) && m.From.Rank() == m.To.Rank() {
			rank := m.From.Rank()
			rookFrom, rookTo := NewSquare(7, rank), NewSquare(5, rank)
			if diff < 0 {
				rookFrom, rookTo = NewSquare(0, rank), NewSquare(3, rank)
			}
			if next.Squares[rookFrom].Is(Rook, us) {
				next.Squares[rookTo] = next.Squares[rookFrom]
				next.Squares[rookFrom] = NoPiece
			}
		}
	}

	next.Castling &^= castlingLoss[m.From] | castlingLoss[m.To]

	if pt == Pawn || captured != NoPiece {
		next.HalfMoveClock = 0
	} else {
		next.HalfMoveClock++
	}
	if us == Black {
		next.FullMoveNumber++
	}
	next.SideToMove = us.Other()
	return next
}

// Mirror returns the colour-swapped position: every piece is reflected across
// the horizontal midline and changes side, and so does the side to move.
func (b *Board) Mirror() Board {
	m := *b
	for sq := A1; sq <= H8; sq++ {
		p := b.Squares[sq]
		if p == NoPiece {
			m.Squares[sq.Mirror()] = NoPiece
			continue
		}
		m.Squares[sq.Mirror()] = NewPiece(p.Type(), p.Color().Other())
	}
	m.SideToMove = b.SideToMove.Other()
	m.Castling = b.Castling.swapped()
	if b.EnPassant.IsValid() {
		m.EnPassant = b.EnPassant.Mirror()
	}
	return m
}

// String returns an ASCII diagram of the board.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		sb.WriteString("  ")
		for file := 0; file < 8; file++ {
			p := b.Squares[NewSquare(file, rank)]
			if p == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(p.String() + " ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	sb.WriteString("Side to move: " + b.SideToMove.String() + "\n")
	sb.WriteString("Castling: " + b.Castling.String() + "\n")
	sb.WriteString("En passant: " + b.EnPassant.String() + "\n")
	return sb.String()
}
