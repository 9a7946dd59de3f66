// Package engine implements a generic alpha-beta search core for
// turn-based, perfect-information or chance-driven games. The engine never
// looks inside a game's state: a game drives it by calling Choice or Chance
// with a bitmask of candidate move indices and a callback that applies one
// of them, and the engine decides, depending on its current Mode, whether
// that call is answered by search, by sampling, or by simply replaying a
// previously computed line.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"unsafe"

	"github.com/ashgrove/deepply/pkg/hashcode"
	"github.com/ashgrove/deepply/pkg/journal"
	"github.com/seekerror/logw"
	"golang.org/x/exp/constraints"
)

// Global journal slots. Only state that must survive exactly as far back as
// a journal rollback takes it — the current player, the transition marker,
// and player scores — is written through the journal; everything else
// (search level, alpha/beta, the choice sequence cursor) is plain recursive
// bookkeeping restored by ordinary control flow, matching the reference
// engine's own split between SETGLOBAL-backed globals and local variables.
const (
	slotCurrentPlayer uintptr = iota
	slotChoiceSeqTransition
	slotPlayerScore // + p, for p in [0,MaxPlayers)
)

// Engine holds all search state for one game in progress. It is not safe
// for concurrent use: Mode transitions and search are inherently sequential,
// mirroring the single-threaded reference design.
type Engine struct {
	journal *journal.Journal
	hasher  hashcode.Hasher
	rng     *rand.Rand

	mode           Mode
	numPlayers     int
	currentPlayer  int
	seekingPlayer  int
	playerState    [MaxPlayers]playerState
	playerSettings [MaxPlayers]PlayerSettings

	defaultSearchLevel      int
	maxSearchLevel          int
	maxAllocatedSearchLevel int
	maxWalkLevel            int
	walkLevel               int
	searchLevel             int

	preliminarySearchIncrement int
	fullSearch                 bool
	reorderSiblings            bool
	printStats                 bool
	verbose                    bool
	verboseAtLine              int
	linesPrinted               int

	alpha, beta       int
	bestModifiedScore int
	resultScore       int

	choiceSeq           []int
	choiceSeqTop        int
	choiceSeqTransition int

	bestChoiceSeq     []int
	bestChoiceSeqTop  int
	bestChoiceSeqNext int

	levelStats []stats
	tt         [MaxPlayers]*transpositionTable
}

// New allocates an Engine per params, or reports a configuration error.
func New(ctx context.Context, params Params) (*Engine, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	maxAlloc := params.maxAllocatedSearchLevel()
	e := &Engine{
		journal:                    journal.New(params.hasher()),
		hasher:                     params.hasher(),
		rng:                        rand.New(rand.NewSource(params.Seed)),
		numPlayers:                 params.NumPlayers,
		defaultSearchLevel:         params.maxSearchLevel(),
		maxSearchLevel:             params.maxSearchLevel(),
		maxAllocatedSearchLevel:    maxAlloc,
		maxWalkLevel:               params.MaxWalkLevel,
		preliminarySearchIncrement: params.PreliminarySearchIncrement,
		fullSearch:                 params.FullSearch,
		reorderSiblings:            params.reorderSiblings(),
		printStats:                 params.PrintStats,
		verbose:                    params.Verbose,
		verboseAtLine:              params.VerboseAtLine,
		levelStats:                 make([]stats, maxAlloc+1),
		choiceSeq:                  make([]int, maxAlloc+1),
		bestChoiceSeq:              make([]int, maxAlloc+1),
	}
	for i := range e.tt {
		e.tt[i] = newTranspositionTable(params.hashTableOrder())
	}
	// Journaling stays on for the engine's entire lifetime: even outside
	// Search, makeValidRandomMove needs Rollback to actually undo a rejected
	// candidate's mutation before retrying the next one. SetModePlay's
	// Commit() is what makes an accepted move permanent, not disabling the
	// journal.
	e.journal.SetEnabled(true)

	e.SetCurrentPlayer(0)
	e.SetModePlay()

	if e.verbose {
		logw.Infof(ctx, "engine: initialized, players=%d max_search_level=%d hash_table_order=%d", e.numPlayers, e.maxSearchLevel, params.hashTableOrder())
	}
	return e, nil
}

// writeGlobalInt journals an int through a fixed slot constant rather than
// the field's address, so hashes stay reproducible across process runs
// (unlike real pointers, Go's allocator gives no run-to-run guarantee about
// the relative offsets between unrelated allocations).
func (e *Engine) writeGlobalInt(slot uintptr, dst *int, val int) {
	journal.WriteGlobal(e.journal, slot, dst, val)
}

// Base returns the journal offset base for a game state value: the address
// of the state itself, so every field written through it hashes by its byte
// offset within the state, matching the reference implementation's use of
// the state pointer as the SET macro's base.
func Base[S any](state *S) uintptr {
	return uintptr(unsafe.Pointer(state))
}

// Write journals a field mutation within a game state, restored on
// rollback and folded into the incremental content hash. base is the
// state's Base(...); dst must point inside the same state value.
func Write[T any](e *Engine, base uintptr, dst *T, val T) {
	journal.Write(e.journal, base, dst, val)
}

// Add journals dst += delta the same way Write journals a plain assignment.
func Add[T constraints.Integer](e *Engine, base uintptr, dst *T, delta T) {
	journal.Add(e.journal, base, dst, delta)
}

// updateNodeScore refreshes the current node's cached evaluation from the
// seeking player's point of view. Called whenever a player's score changes.
func (e *Engine) updateNodeScore() {
	e.resultScore = e.modifiedScore(e.seekingPlayer)
}

// keepBestScore records state's current choice sequence, up to the first
// transition boundary, as the best line found so far, if score improves on
// the best seen this search. Only meaningful once a transition has
// occurred: a search that never changes player or hits a chance node has no
// "sequence to replay" worth capturing.
//
// Re-captures every time score improves on bestModifiedScore, so the line
// replayed by Play mode is always the best one found, not just the first to
// raise alpha.
func (e *Engine) keepBestScore(score int) {
	if e.choiceSeqTransition <= 0 {
		return
	}
	if score <= e.bestModifiedScore {
		return
	}
	e.bestModifiedScore = score
	n := e.choiceSeqTransition
	copy(e.bestChoiceSeq, e.choiceSeq[:n])
	e.bestChoiceSeqTop = n
	e.bestChoiceSeqNext = 0
}

// nextChoice consumes and returns the next index of the captured best
// sequence during Play mode replay.
func (e *Engine) nextChoice() int {
	c := e.bestChoiceSeq[e.bestChoiceSeqNext]
	e.bestChoiceSeqNext++
	return c
}

// GameOver records a terminal node's outcome in the current ply's stats and
// refreshes the node's cached score. Games call this from within a Choice
// or Chance callback once no further moves are possible.
func (e *Engine) GameOver() {
	s := &e.levelStats[e.searchLevel]
	winners := e.GetWinningPlayers()
	if winners >= 0 {
		s.Wins[winners]++
	} else {
		s.Draws++
	}
	e.updateNodeScore()
}

// PrintStats writes the per-ply search statistics table to stdout if
// PrintStats was requested in Params, or verbose diagnostics are on. It
// also counts the table's output lines toward Params.VerboseAtLine, turning
// verbose diagnostics on, once, as soon as that many lines have gone by --
// matching the reference's `-L`: verbosity switches on partway through a
// run instead of from the very first line.
func (e *Engine) PrintStats() {
	out := e.FormatStats()
	if e.verboseAtLine > 0 {
		e.linesPrinted += strings.Count(out, "\n")
		if e.linesPrinted >= e.verboseAtLine {
			e.verbose = true
			e.verboseAtLine = 0
			fmt.Println("=== VERBOSITY ON ===")
		}
	}
	if e.printStats || e.verbose {
		fmt.Print(out)
	}
}

// SetVerbose turns verbose diagnostic output on or off. A caller can flip
// this mid-run rather than fixing it for the whole game via Params.Verbose.
// (deepply's -L does not use it: it sets Params.VerboseAtLine, which
// PrintStats acts on.)
func (e *Engine) SetVerbose(v bool) {
	e.verbose = v
}

// Verbose reports whether verbose diagnostic output is currently on.
func (e *Engine) Verbose() bool {
	return e.verbose
}
