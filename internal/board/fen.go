package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFEN is returned for malformed FEN strings.
var ErrInvalidFEN = errors.New("invalid FEN")

// ParseFEN parses a FEN string into a Board.
// The clocks (fields 5 and 6) are optional.
func ParseFEN(fen string) (Board, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return Board{}, fmt.Errorf("%w: need at least 4 fields, got %d", ErrInvalidFEN, len(parts))
	}

	b := EmptyBoard(White)

	if err := parsePlacement(&b, parts[0]); err != nil {
		return Board{}, err
	}

	switch parts[1] {
	case "w":
		b.SideToMove = White
	case "b":
		b.SideToMove = Black
	default:
		return Board{}, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, parts[1])
	}

	if parts[2] != "-" {
		for i := 0; i < len(parts[2]); i++ {
			switch parts[2][i] {
			case 'K':
				b.Castling |= WhiteKingSideCastle
			case 'Q':
				b.Castling |= WhiteQueenSideCastle
			case 'k':
				b.Castling |= BlackKingSideCastle
			case 'q':
				b.Castling |= BlackQueenSideCastle
			default:
				return Board{}, fmt.Errorf("%w: castling %q", ErrInvalidFEN, parts[2])
			}
		}
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return Board{}, fmt.Errorf("%w: en passant %q", ErrInvalidFEN, parts[3])
		}
		b.EnPassant = sq
	}

	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil {
			return Board{}, fmt.Errorf("%w: half-move clock %q", ErrInvalidFEN, parts[4])
		}
		b.HalfMoveClock = hmc
	}
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil {
			return Board{}, fmt.Errorf("%w: full-move number %q", ErrInvalidFEN, parts[5])
		}
		b.FullMoveNumber = fmn
	}

	return b, nil
}

// MustParseFEN is like ParseFEN but panics on error. Intended for fixtures.
func MustParseFEN(fen string) Board {
	b, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return b
}

func parsePlacement(b *Board, field string) error {
	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			p := PieceFromChar(c)
			if p == NoPiece {
				return fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, c)
			}
			if file > 7 {
				return fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, rank+1)
			}
			b.Squares[NewSquare(file, rank)] = p
			file++
		}
		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, rank+1, file)
		}
	}
	return nil
}

func (b *Board) writePlacement(sb *strings.Builder) {
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.Squares[NewSquare(file, rank)]
			if p == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(p.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
}

// FEN returns the FEN string for the board.
func (b *Board) FEN() string {
	var sb strings.Builder
	sb.WriteString(b.PositionKey())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.HalfMoveClock))
	sb.WriteByte(' ')
	fmn := b.FullMoveNumber
	if fmn < 1 {
		fmn = 1
	}
	sb.WriteString(strconv.Itoa(fmn))
	return sb.String()
}
