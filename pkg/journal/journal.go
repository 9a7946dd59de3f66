// Package journal implements the undo log that lets the search engine
// explore a branch of the game tree by mutating state in place and later
// restoring it exactly, instead of deep-copying the state at every node.
//
// Every write during a search goes through Write or WriteGlobal. Each call
// records enough to undo itself (a closure over the old value, not a raw
// byte copy — Go's type system lets us restore type-safely) and updates a
// running content hash using the same identity the search relies on for
// transposition lookups: replacing bytes B with B' at a stable offset O
// changes the hash by exactly hash(B,O) ^ hash(B',O).
package journal

import (
	"unsafe"

	"github.com/ashgrove/deepply/pkg/hashcode"
	"golang.org/x/exp/constraints"
)

// InitialHash is the hash of an as-yet-unwritten state, matching the
// all-ones seed the engine starts every game from.
const InitialHash hashcode.HashCode = 0xFFFFFFFF

type entry struct {
	preHash hashcode.HashCode
	restore func()
}

// Journal is an undo log plus the incremental hash it maintains. The zero
// value is not usable; construct with New.
type Journal struct {
	hasher  hashcode.Hasher
	hash    hashcode.HashCode
	on      bool
	entries []entry
}

// New creates a Journal using the given hash function. The hasher must not
// change for the lifetime of the Journal: stored transposition entries are
// only comparable under the hash that produced them.
func New(hasher hashcode.Hasher) *Journal {
	return &Journal{hasher: hasher, hash: InitialHash}
}

// Hash returns the current content hash.
func (j *Journal) Hash() hashcode.HashCode {
	return j.hash
}

// Top returns the current journal depth; pass it to a later Rollback to
// undo everything written since now.
func (j *Journal) Top() int {
	return len(j.entries)
}

// Enabled reports whether writes are currently being journaled. Writes made
// while disabled mutate state directly and cannot be rolled back. The engine
// leaves this on for its entire lifetime; it exists as a package-level
// primitive (and for tests) independent of how any particular caller uses it.
func (j *Journal) Enabled() bool {
	return j.on
}

// SetEnabled turns journaling on or off.
func (j *Journal) SetEnabled(on bool) {
	j.on = on
}

// bytesOf returns the raw in-memory representation of v. T must be a flat,
// pointer-free value (integers, bools, arrays/structs thereof); the engine
// never journals slices, maps, or other reference types.
func bytesOf[T any](v T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v))
}

// Write journals *dst = val. base must be the address of the object dst is
// a field of (often the game state pointer itself); dst's offset from base
// is folded into the hash as its salt, so that the same value written at a
// different field hashes differently. If journaling is disabled the write
// still happens, just without an undo record or hash update.
func Write[T any](j *Journal, base uintptr, dst *T, val T) {
	if !j.on {
		*dst = val
		return
	}
	old := *dst
	offset := uintptr(unsafe.Pointer(dst)) - base
	preHash := j.hash
	j.hash ^= j.hasher(bytesOf(old), offset) ^ j.hasher(bytesOf(val), offset)
	j.entries = append(j.entries, entry{preHash: preHash, restore: func() { *dst = old }})
	*dst = val
}

// WriteGlobal journals *dst = val for a mutation that does not belong to
// any particular game state object (current player, search bookkeeping,
// and similar engine-owned fields). slot distinguishes one global from
// another the way a field offset distinguishes state; it must be a small,
// caller-assigned constant rather than a real address, so the hash stays
// reproducible across runs regardless of where the runtime happens to place
// the backing memory.
func WriteGlobal[T any](j *Journal, slot uintptr, dst *T, val T) {
	if !j.on {
		*dst = val
		return
	}
	old := *dst
	preHash := j.hash
	j.hash ^= j.hasher(bytesOf(old), slot) ^ j.hasher(bytesOf(val), slot)
	j.entries = append(j.entries, entry{preHash: preHash, restore: func() { *dst = old }})
	*dst = val
}

// Add journals *dst += delta.
func Add[T constraints.Integer](j *Journal, base uintptr, dst *T, delta T) {
	Write(j, base, dst, *dst+delta)
}

// AddGlobal journals *dst += delta for a global field (see WriteGlobal).
func AddGlobal[T constraints.Integer](j *Journal, slot uintptr, dst *T, delta T) {
	WriteGlobal(j, slot, dst, *dst+delta)
}

// Rollback undoes every write recorded since top (as returned by an earlier
// Top), restoring both the mutated memory and the hash, in reverse
// insertion order.
func (j *Journal) Rollback(top int) {
	for len(j.entries) > top {
		last := len(j.entries) - 1
		e := j.entries[last]
		e.restore()
		j.hash = e.preHash
		j.entries = j.entries[:last]
	}
}

// Commit discards the undo log, accepting all mutations made since the last
// commit (or since New) as permanent.
func (j *Journal) Commit() {
	j.entries = j.entries[:0]
}
