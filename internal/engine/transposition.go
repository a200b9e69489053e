package engine

import (
	"github.com/hailam/chessai/internal/board"
)

// Bound indicates how a stored score relates to the true value of a node.
type Bound uint8

const (
	BoundExact Bound = iota // Exact score
	BoundLower              // Failed high (beta cutoff); true score >= Score
	BoundUpper              // Failed low (alpha cutoff); true score <= Score
)

// String returns the bound name.
func (b Bound) String() string {
	switch b {
	case BoundExact:
		return "exact"
	case BoundLower:
		return "lower"
	case BoundUpper:
		return "upper"
	default:
		return "unknown"
	}
}

// DefaultTTCapacity is the default maximum number of entries.
const DefaultTTCapacity = 1_000_000

// evictFraction is the share of the table dropped when it is full.
const evictFraction = 10

// TTEntry represents an entry in the transposition table.
type TTEntry struct {
	Score    int
	Depth    int
	Bound    Bound
	BestMove board.Move // NoMove if the node had no children
}

// TranspositionTable is a bounded cache of search results keyed by position.
//
// When full it drops the oldest-inserted tenth of its entries in one batch.
// Overwriting a key keeps its original insertion slot, so this is FIFO
// batch eviction rather than LRU. Not safe for concurrent use.
type TranspositionTable struct {
	entries  map[string]TTEntry
	order    []string // insertion order; order[head:] are live keys
	head     int
	capacity int

	// Statistics
	hits      uint64
	probes    uint64
	evictions uint64
}

// NewTranspositionTable creates a table holding at most capacity entries.
// A non-positive capacity selects DefaultTTCapacity.
func NewTranspositionTable(capacity int) *TranspositionTable {
	if capacity <= 0 {
		capacity = DefaultTTCapacity
	}
	return &TranspositionTable{
		entries:  make(map[string]TTEntry),
		capacity: capacity,
	}
}

// Lookup returns the entry for key if present. Callers must still check the
// entry's depth against the depth they need.
func (tt *TranspositionTable) Lookup(key string) (TTEntry, bool) {
	tt.probes++
	entry, ok := tt.entries[key]
	if ok {
		tt.hits++
	}
	return entry, ok
}

// Store records a result for key, overwriting any previous entry.
// A full table evicts a batch first, so Store always succeeds.
func (tt *TranspositionTable) Store(key string, score, depth int, bound Bound, bestMove board.Move) {
	if _, exists := tt.entries[key]; !exists {
		if len(tt.entries) >= tt.capacity {
			tt.evictBatch()
		}
		tt.order = append(tt.order, key)
	}
	tt.entries[key] = TTEntry{
		Score:    score,
		Depth:    depth,
		Bound:    bound,
		BestMove: bestMove,
	}
}

// evictBatch drops the oldest-inserted entries.
func (tt *TranspositionTable) evictBatch() {
	n := tt.capacity / evictFraction
	if n < 1 {
		n = 1
	}
	for i := 0; i < n && tt.head < len(tt.order); i++ {
		delete(tt.entries, tt.order[tt.head])
		tt.order[tt.head] = ""
		tt.head++
		tt.evictions++
	}

	// Compact once the dead prefix dominates the queue.
	if tt.head > len(tt.order)/2 {
		live := make([]string, len(tt.order)-tt.head, tt.capacity)
		copy(live, tt.order[tt.head:])
		tt.order = live
		tt.head = 0
	}
}

// Clear drops every entry. Only the engine calls this, between games.
func (tt *TranspositionTable) Clear() {
	tt.entries = make(map[string]TTEntry)
	tt.order = nil
	tt.head = 0
	tt.hits = 0
	tt.probes = 0
	tt.evictions = 0
}

// Len returns the number of stored entries.
func (tt *TranspositionTable) Len() int {
	return len(tt.entries)
}

// Capacity returns the maximum number of entries.
func (tt *TranspositionTable) Capacity() int {
	return tt.capacity
}

// HashFull returns the permille (parts per thousand) of the table that is used.
func (tt *TranspositionTable) HashFull() int {
	return len(tt.entries) * 1000 / tt.capacity
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Evictions returns how many entries have been evicted since the last Clear.
func (tt *TranspositionTable) Evictions() uint64 {
	return tt.evictions
}
