package rules

import (
	"fmt"

	"github.com/notnil/chess"

	"github.com/hailam/chessai/internal/board"
)

// Result is a game result in PGN form.
type Result string

const (
	ResultNone      Result = "*"
	ResultWhiteWins Result = "1-0"
	ResultBlackWins Result = "0-1"
	ResultDraw      Result = "1/2-1/2"
)

// Game tracks an actual game under full rules.
type Game struct {
	game  *chess.Game
	moves []board.Move
}

// NewGame starts a game from the initial position.
func NewGame() *Game {
	return &Game{game: chess.NewGame()}
}

// NewGameFromFEN starts a game from a FEN position.
func NewGameFromFEN(fen string) (*Game, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	return &Game{game: chess.NewGame(opt)}, nil
}

// Board returns a snapshot of the current position.
func (g *Game) Board() board.Board {
	b, err := board.ParseFEN(g.FEN())
	if err != nil {
		// The library always emits well-formed FEN.
		panic(fmt.Sprintf("rules: unreadable FEN %q: %v", g.FEN(), err))
	}
	return b
}

// FEN returns the current position as FEN.
func (g *Game) FEN() string {
	return g.game.Position().String()
}

// SideToMove returns the side to move.
func (g *Game) SideToMove() board.Color {
	if g.game.Position().Turn() == chess.Black {
		return board.Black
	}
	return board.White
}

// LegalMoves returns the legal moves in the current position.
func (g *Game) LegalMoves() []board.Move {
	pos := g.game.Position()
	return convertMoves(pos, g.game.ValidMoves())
}

// Play applies m if it is legal.
func (g *Game) Play(m board.Move) error {
	cm := findMove(g.game.ValidMoves(), m)
	if cm == nil {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	if err := g.game.Move(cm); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIllegalMove, m, err)
	}
	g.moves = append(g.moves, m)
	return nil
}

// PlayUCI parses coordinate notation and applies the move.
func (g *Game) PlayUCI(s string) error {
	m, err := board.ParseMove(s)
	if err != nil {
		return err
	}
	return g.Play(m)
}

// Moves returns the moves played so far.
func (g *Game) Moves() []board.Move {
	out := make([]board.Move, len(g.moves))
	copy(out, g.moves)
	return out
}

// Result returns the game result, ResultNone while in progress.
func (g *Game) Result() Result {
	return Result(g.game.Outcome())
}

// Method describes how the game ended (e.g. "Checkmate"), or "" if ongoing.
func (g *Game) Method() string {
	if g.game.Outcome() == chess.NoOutcome {
		return ""
	}
	return g.game.Method().String()
}

// Over reports whether the game has ended.
func (g *Game) Over() bool {
	return g.game.Outcome() != chess.NoOutcome
}
