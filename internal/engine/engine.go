package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chessai/internal/board"
	"github.com/hailam/chessai/internal/book"
)

// ErrNoMoves is returned when ChooseMove is given an empty legal-move list.
// Callers are expected to detect game over before asking for a move.
var ErrNoMoves = errors.New("engine: no moves available")

// LegalMoveProvider is the rules authority: it returns the rules-correct
// moves for side in b. The engine never substitutes its own generator for it
// at the top level.
type LegalMoveProvider interface {
	LegalMoves(b board.Board, side board.Color) ([]board.Move, error)
}

// SearchInfo contains information about a completed deepening iteration.
type SearchInfo struct {
	Depth    int
	Move     board.Move
	Score    int
	Nodes    uint64
	Time     time.Duration
	HashFull int // Permille of hash table used
}

// Options configures a new Engine.
type Options struct {
	Budget      time.Duration // wall-clock time per decision
	TTCapacity  int           // transposition table entries
	Tier        Tier
	BookEnabled bool
	Book        *book.Book // nil selects book.Default()
	Seed        int64      // 0 seeds from the clock
	Expander    PseudoMoveExpander
	Logger      zerolog.Logger
}

// DefaultOptions returns the reference configuration.
func DefaultOptions() Options {
	return Options{
		Budget:      DefaultBudget,
		TTCapacity:  DefaultTTCapacity,
		Tier:        3,
		BookEnabled: true,
		Logger:      zerolog.Nop(),
	}
}

// Engine is the chess AI engine. Each engine owns its transposition table,
// book and random source, so independent engines never share state.
// An Engine is not safe for concurrent use: callers must serialize calls.
type Engine struct {
	searcher    *Searcher
	tt          *TranspositionTable
	book        *book.Book
	bookEnabled bool
	tier        Tier
	budget      time.Duration
	rng         *rand.Rand
	log         zerolog.Logger
	lastNodes   uint64

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine from opts.
func NewEngine(opts Options) *Engine {
	tt := NewTranspositionTable(opts.TTCapacity)

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	bk := opts.Book
	if bk == nil {
		bk = book.Default()
	}
	budget := opts.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	tier := opts.Tier
	if tier == 0 {
		tier = 3
	}

	return &Engine{
		searcher:    NewSearcher(tt, opts.Expander),
		tt:          tt,
		book:        bk,
		bookEnabled: opts.BookEnabled,
		tier:        ClampTier(int(tier)),
		budget:      budget,
		rng:         rand.New(rand.NewSource(seed)),
		log:         opts.Logger,
	}
}

// SetTier sets the difficulty, clamped to [1, 5].
func (e *Engine) SetTier(t int) {
	e.tier = ClampTier(t)
}

// Tier returns the current difficulty.
func (e *Engine) Tier() Tier {
	return e.tier
}

// SetBudget sets the wall-clock time per decision.
func (e *Engine) SetBudget(d time.Duration) {
	if d > 0 {
		e.budget = d
	}
}

// Budget returns the wall-clock time per decision.
func (e *Engine) Budget() time.Duration {
	return e.budget
}

// SetBook replaces the opening book. A nil book disables book moves.
func (e *Engine) SetBook(b *book.Book) {
	e.book = b
}

// SetBookEnabled turns book probing on or off.
func (e *Engine) SetBookEnabled(on bool) {
	e.bookEnabled = on
}

// Nodes returns the node count of the last decision.
func (e *Engine) Nodes() uint64 {
	return e.lastNodes
}

// HashFull returns the permille of the transposition table in use.
func (e *Engine) HashFull() int {
	return e.tt.HashFull()
}

// Clear empties the transposition table. Call it between games only.
func (e *Engine) Clear() {
	e.tt.Clear()
}

// SelectMove asks provider for the legal moves of the side to move and picks
// one at the engine's current tier.
func (e *Engine) SelectMove(b board.Board, provider LegalMoveProvider) (board.Move, error) {
	legal, err := provider.LegalMoves(b, b.SideToMove)
	if err != nil {
		return board.NoMove, fmt.Errorf("engine: legal moves: %w", err)
	}
	return e.ChooseMove(b, legal, b.SideToMove, e.tier)
}

// ChooseMove picks one move out of legal for side. The result is always an
// element of legal. tier is not re-validated here; out-of-range values map to
// the nearest strategy.
func (e *Engine) ChooseMove(b board.Board, legal []board.Move, side board.Color, tier Tier) (board.Move, error) {
	if len(legal) == 0 {
		e.log.Warn().Str("fen", b.FEN()).Msg("choose move called without legal moves")
		return board.NoMove, ErrNoMoves
	}

	b.SideToMove = side
	e.lastNodes = 0

	if len(legal) == 1 {
		return legal[0], nil
	}

	strategy := StrategyFor(tier)
	e.log.Debug().Int("tier", int(tier)).Stringer("strategy", strategy).Int("moves", len(legal)).Msg("choosing move")

	switch strategy.Kind {
	case RandomSafe:
		return e.chooseRandomSafe(&b, legal), nil
	case Positional:
		return e.choosePositional(&b, legal), nil
	default:
		return e.chooseDeepening(&b, legal, strategy.MaxDepth), nil
	}
}

// chooseRandomSafe picks uniformly among moves that do not leave the mover's
// king attacked, or among all moves if none qualify.
func (e *Engine) chooseRandomSafe(b *board.Board, legal []board.Move) board.Move {
	side := b.SideToMove
	safe := make([]board.Move, 0, len(legal))
	for _, m := range legal {
		child := b.Apply(m)
		if !child.InCheck(side) {
			safe = append(safe, m)
		}
	}

	pool := safe
	if len(pool) == 0 {
		pool = legal
	}
	return pool[e.rng.Intn(len(pool))]
}

// choosePositional keeps the move with the best material + placement score
// after one ply. Ties go to the earlier move.
func (e *Engine) choosePositional(b *board.Board, legal []board.Move) board.Move {
	sign := b.SideToMove.Sign()
	best := legal[0]
	bestScore := -Infinity
	for _, m := range legal {
		child := b.Apply(m)
		score := sign * EvaluateMaterialPlacement(&child)
		if score > bestScore {
			best, bestScore = m, score
		}
	}
	return best
}

// probeBook returns a book move for b that is also in legal, chosen at
// random among the qualifying ones.
func (e *Engine) probeBook(b *board.Board, legal []board.Move) (board.Move, bool) {
	if !e.bookEnabled || e.book == nil {
		return board.NoMove, false
	}

	var candidates []board.Move
	for _, m := range e.book.Probe(b) {
		if i := board.IndexOf(legal, m); i >= 0 {
			candidates = append(candidates, legal[i])
		}
	}
	if len(candidates) == 0 {
		return board.NoMove, false
	}
	return candidates[e.rng.Intn(len(candidates))], true
}

// chooseDeepening runs iterative deepening over the legal root moves until
// maxDepth, the deadline, or a winning score.
func (e *Engine) chooseDeepening(b *board.Board, legal []board.Move, maxDepth int) board.Move {
	budget := NewBudget(e.budget)
	e.searcher.Begin(budget)
	defer func() { e.lastNodes = budget.Nodes() }()

	if m, ok := e.probeBook(b, legal); ok {
		e.log.Debug().Str("move", m.String()).Msg("book move")
		return m
	}

	sign := b.SideToMove.Sign()
	best := legal[0]
	bestScore := 0
	found := false
	scored := make([]scoredMove, 0, len(legal))

	for depth := 1; depth <= maxDepth; depth++ {
		scored = scored[:0]
		for _, m := range legal {
			if budget.Expired() {
				break
			}
			child := b.Apply(m)
			score := e.searcher.Search(&child, depth-1, -Infinity, Infinity, child.SideToMove == board.White)
			scored = append(scored, scoredMove{move: m, score: score})
		}

		// Scores gathered after the deadline may come from truncated trees.
		complete := len(scored) == len(legal) && !budget.Expired()

		if len(scored) > 0 && (complete || !found) {
			sort.SliceStable(scored, func(i, j int) bool {
				return sign*scored[i].score > sign*scored[j].score
			})
			best, bestScore, found = scored[0].move, scored[0].score, true

			e.log.Debug().
				Int("depth", depth).
				Str("move", best.String()).
				Int("score", bestScore).
				Uint64("nodes", budget.Nodes()).
				Dur("elapsed", budget.Elapsed()).
				Bool("complete", complete).
				Msg("iteration")

			if e.OnInfo != nil {
				e.OnInfo(SearchInfo{
					Depth:    depth,
					Move:     best,
					Score:    bestScore,
					Nodes:    budget.Nodes(),
					Time:     budget.Elapsed(),
					HashFull: e.tt.HashFull(),
				})
			}
		}

		if !complete {
			break
		}
		if sign*bestScore > WinningScore {
			e.log.Debug().Int("depth", depth).Int("score", bestScore).Msg("winning score, stopping")
			break
		}
	}

	return best
}
