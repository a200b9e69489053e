package engine

import "strconv"

// Tier is the difficulty level, 1 (weakest) to 5.
type Tier int

const (
	MinTier Tier = 1
	MaxTier Tier = 5
)

// ClampTier converts any integer to a valid tier.
func ClampTier(t int) Tier {
	if t < int(MinTier) {
		return MinTier
	}
	if t > int(MaxTier) {
		return MaxTier
	}
	return Tier(t)
}

// StrategyKind selects how a move is chosen.
type StrategyKind uint8

const (
	RandomSafe StrategyKind = iota // random move that does not leave the king attacked
	Positional                     // best one-ply material + placement score
	Deepening                      // iterative-deepening alpha-beta search
)

// Strategy is the move-selection plan for one call. MaxDepth is only
// meaningful for Deepening.
type Strategy struct {
	Kind     StrategyKind
	MaxDepth int
}

// StrategyFor maps a tier to its strategy. Tiers 3 and above search to
// tier+2 plies, capped at MaxDepth.
func StrategyFor(t Tier) Strategy {
	switch {
	case t <= 1:
		return Strategy{Kind: RandomSafe}
	case t == 2:
		return Strategy{Kind: Positional}
	default:
		depth := int(t) + 2
		if depth > MaxDepth {
			depth = MaxDepth
		}
		return Strategy{Kind: Deepening, MaxDepth: depth}
	}
}

// String returns a short description for logs.
func (s Strategy) String() string {
	switch s.Kind {
	case RandomSafe:
		return "random-safe"
	case Positional:
		return "positional"
	case Deepening:
		return "deepening(" + strconv.Itoa(s.MaxDepth) + ")"
	default:
		return "unknown"
	}
}
