package engine

import (
	"time"
)

// DefaultBudget is the wall-clock time allowed for one move decision.
const DefaultBudget = 5 * time.Second

// Budget bounds one top-level move decision: a fixed deadline plus a count
// of visited nodes for diagnostics. It is created per call and never reused.
type Budget struct {
	start    time.Time
	deadline time.Time // zero means no deadline
	nodes    uint64
}

// NewBudget starts a budget that expires after d. A non-positive d never expires.
func NewBudget(d time.Duration) *Budget {
	b := &Budget{start: time.Now()}
	if d > 0 {
		b.deadline = b.start.Add(d)
	}
	return b
}

// Expired reports whether the deadline has passed.
func (b *Budget) Expired() bool {
	return !b.deadline.IsZero() && !time.Now().Before(b.deadline)
}

// Visit counts one node.
func (b *Budget) Visit() {
	b.nodes++
}

// Nodes returns the number of nodes visited so far.
func (b *Budget) Nodes() uint64 {
	return b.nodes
}

// Elapsed returns the time since the budget started.
func (b *Budget) Elapsed() time.Duration {
	return time.Since(b.start)
}

// Remaining returns the time left before the deadline, or 0 once expired.
func (b *Budget) Remaining() time.Duration {
	if b.deadline.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	if r := time.Until(b.deadline); r > 0 {
		return r
	}
	return 0
}
