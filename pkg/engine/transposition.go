package engine

import "github.com/ashgrove/deepply/pkg/hashcode"

// Bound classifies how exact a transposition entry's stored score is.
type Bound uint8

const (
	// Open marks a node that has been entered but not yet completed; a
	// stale Open entry is reused the same way Exact is, matching the
	// reference implementation.
	Open Bound = iota
	// Upper means the true value is at most the stored score.
	Upper
	// Exact means the stored score is the true minimax value.
	Exact
	// Lower means the true value is at least the stored score.
	Lower
	// NoValidMoves marks a node where every candidate failed.
	NoValidMoves
)

func (b Bound) String() string {
	switch b {
	case Open:
		return "open"
	case Upper:
		return "upper"
	case Exact:
		return "exact"
	case Lower:
		return "lower"
	case NoValidMoves:
		return "novalidmoves"
	default:
		return "?"
	}
}

// fullDepth marks an entry that completed a full search of its subtree
// (every candidate tried, none left unexplored), so it is valid regardless
// of how shallow a later lookup's remaining depth is.
const fullDepth = 255

// ttEntry is one slot of a transposition table: the verification hash, the
// stored result, and a two-slot most-recently-cutoff child list used as a
// move-ordering hint independent of whether the entry's depth is still
// usable for a direct cutoff.
type ttEntry struct {
	hash         hashcode.HashCode
	score        int
	depth        uint8
	bound        Bound
	bestChildren [2]int8
}

func freshEntry() ttEntry {
	return ttEntry{bestChildren: [2]int8{-1, -1}}
}

// markBestChoice records index as the most recently cutoff child, keeping
// at most the two most recent distinct values in most-recently-used order.
func (e *ttEntry) markBestChoice(index int) {
	if int8(index) == e.bestChildren[0] {
		return
	}
	if int8(index) == e.bestChildren[1] {
		e.bestChildren[0], e.bestChildren[1] = e.bestChildren[1], e.bestChildren[0]
		return
	}
	e.bestChildren[1] = e.bestChildren[0]
	e.bestChildren[0] = int8(index)
}

// transpositionTable is a fixed-size, open-addressed cache of search
// results, one per seeking player (the minimax value of a position depends
// on whose viewpoint it is scored from).
type transpositionTable struct {
	entries []ttEntry
	mask    uint64
}

func newTranspositionTable(order int) *transpositionTable {
	size := uint64(1) << uint(order)
	t := &transpositionTable{entries: make([]ttEntry, size), mask: size - 1}
	for i := range t.entries {
		t.entries[i] = freshEntry()
	}
	return t
}

// slot returns the entry addressed by hash1, and whether it currently holds
// a result verified for the (hash1,hash2) call site.
func (t *transpositionTable) slot(hash1, hash2 hashcode.HashCode) (*ttEntry, bool) {
	idx := uint64(hash1) & t.mask
	e := &t.entries[idx]
	verify := hash1 ^ hash2
	return e, e.hash == verify
}
