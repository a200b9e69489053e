// Package render draws board snapshots for terminals.
package render

import (
	"strings"

	"github.com/fatih/color"

	"github.com/hailam/chessai/internal/board"
)

var (
	whitePiece = color.New(color.FgHiWhite, color.Bold)
	blackPiece = color.New(color.FgRed, color.Bold)
	emptyCell  = color.New(color.FgHiBlack)
	label      = color.New(color.FgCyan)
)

// Board draws b with rank and file labels, White at the bottom.
// Colours are dropped automatically when color.NoColor is set.
func Board(b board.Board) string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteString(label.Sprint(string(rune('1' + rank))))
		sb.WriteString(" ")
		for file := 0; file < 8; file++ {
			p := b.PieceAt(board.NewSquare(file, rank))
			switch {
			case p == board.NoPiece:
				sb.WriteString(emptyCell.Sprint("."))
			case p.Color() == board.White:
				sb.WriteString(whitePiece.Sprint(p.String()))
			default:
				sb.WriteString(blackPiece.Sprint(p.String()))
			}
			if file < 7 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  " + label.Sprint("a b c d e f g h") + "\n")
	sb.WriteString(b.SideToMove.String() + " to move\n")
	return sb.String()
}

// Move formats m with its notation when the rules layer supplied one.
func Move(m board.Move) string {
	if m.Notation == "" {
		return m.String()
	}
	return m.String() + " (" + m.Notation + ")"
}
