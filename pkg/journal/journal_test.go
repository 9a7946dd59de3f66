package journal_test

import (
	"testing"
	"unsafe"

	"github.com/ashgrove/deepply/pkg/hashcode"
	"github.com/ashgrove/deepply/pkg/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// state64 is a 64-byte deterministic-content state used for the journal
// round-trip scenario.
type state64 struct {
	Head [4]byte
	Mid  [16]byte
	Tail [44]byte
}

func newState64() *state64 {
	var s state64
	for i := range s.Tail {
		s.Tail[i] = byte(i)
	}
	return &s
}

func TestRoundTrip(t *testing.T) {
	j := journal.New(hashcode.CRC32)
	j.SetEnabled(true)

	s := newState64()
	original := *s
	h0 := j.Hash()

	base := uintptr(unsafe.Pointer(s))
	top := j.Top()

	var mid [16]byte
	for i := range mid {
		mid[i] = 0xFF
	}
	journal.Write(j, base, &s.Mid, mid)
	h1 := j.Hash()
	assert.NotEqual(t, h0, h1)

	journal.Write(j, base, &s.Head, [4]byte{1, 2, 3, 4})
	h2 := j.Hash()
	assert.NotEqual(t, h1, h2)

	j.Rollback(top)

	assert.Equal(t, original, *s, "rollback must restore every mutated byte exactly")
	assert.Equal(t, h0, j.Hash(), "rollback must restore the pre-mutation hash")
	assert.Equal(t, top, j.Top())
}

func TestRollbackReverseOrder(t *testing.T) {
	// The same field written twice in one branch must unwind in reverse.
	j := journal.New(hashcode.Murmur2)
	j.SetEnabled(true)

	var x int32
	base := uintptr(unsafe.Pointer(&x))
	top := j.Top()

	journal.Write(j, base, &x, 1)
	journal.Write(j, base, &x, 2)
	journal.Write(j, base, &x, 3)

	j.Rollback(top)
	assert.Equal(t, int32(0), x)
}

func TestCommitDiscardsUndoLog(t *testing.T) {
	j := journal.New(hashcode.CRC32)
	j.SetEnabled(true)

	var x int
	base := uintptr(unsafe.Pointer(&x))
	journal.Write(j, base, &x, 7)
	require.Equal(t, 1, j.Top())

	j.Commit()
	assert.Equal(t, 0, j.Top())
	assert.Equal(t, 7, x, "commit must keep the mutation, only drop the undo record")
}

func TestDisabledJournalBypassesUndo(t *testing.T) {
	j := journal.New(hashcode.CRC32)
	// journaling left off

	var x int
	base := uintptr(unsafe.Pointer(&x))
	h0 := j.Hash()

	journal.Write(j, base, &x, 42)
	assert.Equal(t, 42, x)
	assert.Equal(t, h0, j.Hash(), "disabled journal must not touch the hash")
	assert.Equal(t, 0, j.Top())
}

func TestWriteGlobalUsesSlotNotAddress(t *testing.T) {
	j := journal.New(hashcode.CRC32)
	j.SetEnabled(true)

	var a, b int
	const slotA, slotB uintptr = 1, 2

	top := j.Top()
	journal.WriteGlobal(j, slotA, &a, 9)
	ha := j.Hash()
	j.Rollback(top)

	journal.WriteGlobal(j, slotB, &b, 9)
	hb := j.Hash()
	j.Rollback(top)

	assert.NotEqual(t, ha, hb, "distinct slots must salt the hash differently even for identical values")
}

func TestAddHelpers(t *testing.T) {
	j := journal.New(hashcode.CRC32)
	j.SetEnabled(true)

	var score int32
	base := uintptr(unsafe.Pointer(&score))
	top := j.Top()

	journal.Add(j, base, &score, 5)
	journal.Add(j, base, &score, 3)
	assert.Equal(t, int32(8), score)

	j.Rollback(top)
	assert.Equal(t, int32(0), score)
}
