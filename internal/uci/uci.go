// Package uci adapts the engine to the Universal Chess Interface line protocol.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chessai/internal/board"
	"github.com/hailam/chessai/internal/engine"
	"github.com/hailam/chessai/internal/render"
	"github.com/hailam/chessai/internal/rules"
	"github.com/hailam/chessai/internal/storage"
)

// Recorder persists finished sessions.
type Recorder interface {
	RecordGame(rec storage.GameRecord) (string, error)
}

// UCI implements the Universal Chess Interface protocol.
// Searches run synchronously; "stop" is accepted but a search always ends
// at its own deadline.
type UCI struct {
	engine   *engine.Engine
	game     *rules.Game
	started  time.Time
	recorder Recorder
	log      zerolog.Logger

	// engineSides marks the colours the engine has searched for in this game.
	engineSides [2]bool

	out io.Writer
}

// New creates a new UCI protocol handler.
func New(eng *engine.Engine, log zerolog.Logger) *UCI {
	return &UCI{
		engine:  eng,
		game:    rules.NewGame(),
		started: time.Now(),
		log:     log,
		out:     io.Discard,
	}
}

// SetRecorder makes the handler store each game when it is replaced or on quit.
func (u *UCI) SetRecorder(r Recorder) {
	u.recorder = r
}

// Run reads commands from in until "quit" or end of input, writing
// responses to out.
func (u *UCI) Run(in io.Reader, out io.Writer) error {
	u.out = out
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			// Searches are synchronous; nothing is running here.
		case "setoption":
			u.handleSetOption(args)
		case "d":
			u.handleDisplay()
		case "quit":
			u.recordGame()
			return nil
		default:
			u.log.Debug().Str("cmd", cmd).Msg("unknown command")
		}
	}
	u.recordGame()
	return scanner.Err()
}

func (u *UCI) println(a ...any) {
	fmt.Fprintln(u.out, a...)
}

func (u *UCI) printf(format string, a ...any) {
	fmt.Fprintf(u.out, format, a...)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name ChessAI")
	u.println("id author ChessAI Team")
	u.println()
	u.printf("option name Difficulty type spin default %d min %d max %d\n", u.engine.Tier(), engine.MinTier, engine.MaxTier)
	u.println("option name OwnBook type check default true")
	u.printf("option name MoveTime type spin default %d min 10 max 600000\n", u.engine.Budget().Milliseconds())
	u.println("uciok")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.recordGame()
	u.engine.Clear()
	u.game = rules.NewGame()
	u.engineSides = [2]bool{}
	u.started = time.Now()
}

// recordGame stores the current game if anything was played.
func (u *UCI) recordGame() {
	if u.recorder == nil || len(u.game.Moves()) == 0 {
		return
	}

	moves := make([]string, 0, len(u.game.Moves()))
	for _, m := range u.game.Moves() {
		moves = append(moves, m.String())
	}
	rec := storage.GameRecord{
		StartedAt: u.started,
		Moves:     moves,
		Result:    string(u.game.Result()),
		Method:    u.game.Method(),
		WhiteTier: u.sideTier(board.White),
		BlackTier: u.sideTier(board.Black),
		Duration:  time.Since(u.started),
	}
	if _, err := u.recorder.RecordGame(rec); err != nil {
		u.log.Warn().Err(err).Msg("could not record game")
	}
	u.game = rules.NewGame()
	u.engineSides = [2]bool{}
}

// sideTier is the engine tier for a colour the engine played, 0 otherwise.
func (u *UCI) sideTier(c board.Color) int {
	if !u.engineSides[c] {
		return 0
	}
	return int(u.engine.Tier())
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	// Moves follow the "moves" keyword, if present.
	fenEnd, moveStart := len(args), len(args)
	for i, arg := range args {
		if arg == "moves" {
			fenEnd, moveStart = i, i+1
			break
		}
	}

	var game *rules.Game
	switch args[0] {
	case "startpos":
		game = rules.NewGame()
	case "fen":
		g, err := rules.NewGameFromFEN(strings.Join(args[1:fenEnd], " "))
		if err != nil {
			u.printf("info string Invalid FEN: %v\n", err)
			return
		}
		game = g
	default:
		return
	}

	for _, s := range args[moveStart:] {
		if err := game.PlayUCI(s); err != nil {
			u.printf("info string Invalid move: %s\n", s)
			break
		}
	}
	u.game = game
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	MoveTime  time.Duration
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
}

// handleGo searches the current position and reports the best move.
func (u *UCI) handleGo(args []string) {
	opts := parseGoOptions(args)

	legal := u.game.LegalMoves()
	if len(legal) == 0 {
		// Only send 0000 for checkmate/stalemate (no legal moves)
		u.println("bestmove 0000")
		return
	}

	pos := u.game.Board()
	u.engineSides[pos.SideToMove] = true
	if budget := u.moveTime(opts, pos); budget > 0 {
		saved := u.engine.Budget()
		u.engine.SetBudget(budget)
		defer u.engine.SetBudget(saved)
	}

	u.engine.OnInfo = func(info engine.SearchInfo) {
		u.sendInfo(info, pos.SideToMove)
	}
	defer func() { u.engine.OnInfo = nil }()

	move, err := u.engine.ChooseMove(pos, legal, pos.SideToMove, u.engine.Tier())
	if err != nil {
		u.log.Error().Err(err).Str("fen", pos.FEN()).Msg("no move chosen")
		u.println("bestmove 0000")
		return
	}
	u.printf("bestmove %s\n", move.String())
}

// parseGoOptions parses "go" command arguments.
func parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	millis := func(i int) time.Duration {
		ms, _ := strconv.Atoi(args[i])
		return time.Duration(ms) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		if i+1 >= len(args) {
			break
		}
		switch args[i] {
		case "movetime":
			opts.MoveTime = millis(i + 1)
		case "wtime":
			opts.WTime = millis(i + 1)
		case "btime":
			opts.BTime = millis(i + 1)
		case "winc":
			opts.WInc = millis(i + 1)
		case "binc":
			opts.BInc = millis(i + 1)
		case "movestogo":
			opts.MovesToGo, _ = strconv.Atoi(args[i+1])
		default:
			continue
		}
		i++
	}

	return opts
}

// moveTime returns the budget for this move, or 0 to keep the engine's own.
func (u *UCI) moveTime(opts GoOptions, pos board.Board) time.Duration {
	if opts.MoveTime > 0 {
		return opts.MoveTime
	}

	ourTime, ourInc := opts.WTime, opts.WInc
	if pos.SideToMove == board.Black {
		ourTime, ourInc = opts.BTime, opts.BInc
	}
	if ourTime <= 0 {
		return 0
	}

	movesRemaining := opts.MovesToGo
	if movesRemaining == 0 {
		movesRemaining = estimateMovesRemaining(pos)
	}

	moveTime := ourTime/time.Duration(movesRemaining) + ourInc*90/100

	// Never use more than 90% of remaining time
	if maxTime := ourTime * 90 / 100; moveTime > maxTime {
		moveTime = maxTime
	}
	if moveTime < 10*time.Millisecond {
		moveTime = 10 * time.Millisecond
	}
	// The engine's configured budget stays the ceiling.
	if limit := u.engine.Budget(); moveTime > limit {
		moveTime = limit
	}
	return moveTime
}

// estimateMovesRemaining estimates remaining moves based on piece count.
func estimateMovesRemaining(pos board.Board) int {
	switch n := pos.PieceCount(); {
	case n > 24:
		return 40
	case n > 12:
		return 30
	default:
		return 20
	}
}

// sendInfo outputs search info in UCI format. Scores are reported from the
// mover's side, as the protocol expects.
func (u *UCI) sendInfo(info engine.SearchInfo, side board.Color) {
	parts := []string{
		fmt.Sprintf("depth %d", info.Depth),
		fmt.Sprintf("score cp %d", side.Sign()*info.Score),
		fmt.Sprintf("nodes %d", info.Nodes),
		fmt.Sprintf("time %d", info.Time.Milliseconds()),
	}

	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}
	parts = append(parts, "pv "+info.Move.String())

	u.printf("info %s\n", strings.Join(parts, " "))
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "difficulty":
		tier, err := strconv.Atoi(value)
		if err != nil {
			u.printf("info string Invalid difficulty: %s\n", value)
			return
		}
		u.engine.SetTier(tier)
	case "ownbook":
		u.engine.SetBookEnabled(strings.ToLower(value) == "true")
	case "movetime":
		ms, err := strconv.Atoi(value)
		if err != nil || ms <= 0 {
			u.printf("info string Invalid move time: %s\n", value)
			return
		}
		u.engine.SetBudget(time.Duration(ms) * time.Millisecond)
	default:
		u.log.Debug().Str("name", name).Msg("unknown option")
	}
}

// handleDisplay prints the current position.
func (u *UCI) handleDisplay() {
	u.printf("%s", render.Board(u.game.Board()))
	u.printf("Fen: %s\n", u.game.FEN())
	if u.game.Over() {
		u.printf("Result: %s (%s)\n", u.game.Result(), u.game.Method())
	}
}
