package engine_test

import (
	"context"
	"testing"

	"github.com/ashgrove/deepply/pkg/engine"
	"github.com/ashgrove/deepply/pkg/games/tictactoe"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/require"
)

// counterState is a minimal single-field game state for tests that don't
// need a real game's rules, only a journaled mutation site.
type counterState struct {
	Value int
}

func setValue(e *engine.Engine, s *counterState, v int) {
	engine.Write(e, engine.Base(s), &s.Value, v)
}

func newEngine(t *testing.T, params engine.Params) *engine.Engine {
	t.Helper()
	e, err := engine.New(context.Background(), params)
	require.NoError(t, err)
	return e
}

func TestNewRejectsInvalidNumPlayers(t *testing.T) {
	_, err := engine.New(context.Background(), engine.Params{NumPlayers: 0})
	require.Error(t, err)

	_, err = engine.New(context.Background(), engine.Params{NumPlayers: engine.MaxPlayers + 1})
	require.Error(t, err)
}

func TestNewRejectsSearchLevelBeyondAllocation(t *testing.T) {
	_, err := engine.New(context.Background(), engine.Params{
		NumPlayers:              2,
		MaxAllocatedSearchLevel: lang.Some(5),
		MaxSearchLevel:          lang.Some(6),
	})
	require.Error(t, err)
}

func TestModeDefaultsToPlayWithoutInteractiveSettings(t *testing.T) {
	e := newEngine(t, engine.Params{NumPlayers: 2})
	require.Equal(t, engine.Play, e.GetMode())
}

func TestModeBecomesInteractiveWhenCurrentPlayerHasACallback(t *testing.T) {
	e, err := engine.New(context.Background(), engine.Params{NumPlayers: 2})
	require.NoError(t, err)
	e.PlayerSettings(0).Interactive = func(player int, mask engine.ChoiceMask, attempt func(int) bool) bool {
		return false
	}
	e.SetCurrentPlayer(0)
	e.SetModePlay()
	require.Equal(t, engine.Interactive, e.GetMode())
}

func TestChoiceInteractiveDelegatesToCallback(t *testing.T) {
	e, err := engine.New(context.Background(), engine.Params{NumPlayers: 1})
	require.NoError(t, err)

	var seenPlayer int
	var seenMask engine.ChoiceMask
	e.PlayerSettings(0).Interactive = func(player int, mask engine.ChoiceMask, attempt func(int) bool) bool {
		seenPlayer, seenMask = player, mask
		return attempt(1)
	}
	e.SetCurrentPlayer(0)
	e.SetModePlay()

	s := &counterState{}
	accepted := engine.Choice(e, s, 0, engine.Bit(0)|engine.Bit(1), func(s *counterState, index int) bool {
		setValue(e, s, index)
		return true
	})

	require.True(t, accepted)
	require.Equal(t, 0, seenPlayer)
	require.Equal(t, engine.Bit(0)|engine.Bit(1), seenMask)
	require.Equal(t, 1, s.Value)
}

// TestChoiceEmptyMaskFails covers the boundary where a driver offers no
// candidates at all: Play mode must search, find nothing, and report
// failure without leaving the engine in a stuck mode.
func TestChoiceEmptyMaskFails(t *testing.T) {
	e := newEngine(t, engine.Params{NumPlayers: 1, MaxSearchLevel: lang.Some(3)})
	s := &counterState{}
	accepted := engine.Choice(e, s, 0, 0, func(s *counterState, index int) bool {
		t.Fatal("fn must never be called for an empty mask")
		return true
	})
	require.False(t, accepted)
	require.Equal(t, engine.Play, e.GetMode())
}

// TestChoiceAllCandidatesRejectedFails covers the boundary where every
// candidate is legal-looking but the game rejects all of them.
func TestChoiceAllCandidatesRejectedFails(t *testing.T) {
	e := newEngine(t, engine.Params{NumPlayers: 1, MaxSearchLevel: lang.Some(3)})
	s := &counterState{}
	accepted := engine.Choice(e, s, 0, engine.Range(0, 3), func(s *counterState, index int) bool {
		return false
	})
	require.False(t, accepted)
	require.Equal(t, engine.Play, e.GetMode())
}

// TestChanceBypassesSearchForARealDraw covers the rule that a chance node
// reached outside of Search mode (ordinary play, not tree exploration)
// resolves to exactly one concrete random draw: it must never fall through
// to the full-mask expectation pass that Search mode uses.
func TestChanceBypassesSearchForARealDraw(t *testing.T) {
	e := newEngine(t, engine.Params{NumPlayers: 1, MaxSearchLevel: lang.Some(2)})
	s := &counterState{}

	calls := 0
	engine.Chance(e, s, 0, engine.Range(0, 3), func(s *counterState, index int) bool {
		calls++
		e.AddPlayerScore(0, index*10)
		e.GameOver()
		return true
	})

	require.Equal(t, 1, calls)
	require.Equal(t, engine.Play, e.GetMode())
}

// TestChanceExpandsAllCandidatesDuringSearch verifies that a chance node
// reached while the engine is actually exploring a hypothetical tree (here,
// nested under a real Choice that triggers a search) samples every
// candidate to compute its expectation, never alpha-beta cutting off the
// way a Choice node does.
func TestChanceExpandsAllCandidatesDuringSearch(t *testing.T) {
	e := newEngine(t, engine.Params{NumPlayers: 1, MaxSearchLevel: lang.Some(2)})
	s := &counterState{}

	visited := map[int]bool{}
	engine.Choice(e, s, 0, engine.Bit(0), func(s *counterState, _ int) bool {
		return engine.Chance(e, s, 0, engine.Range(0, 3), func(s *counterState, index int) bool {
			visited[index] = true
			e.AddPlayerScore(0, index*10)
			e.GameOver()
			return true
		})
	})

	require.Len(t, visited, 4)
}

// TestChanceWeightedExpandsAllCandidatesDuringSearch mirrors
// TestChanceExpandsAllCandidatesDuringSearch for the weighted variant: an
// explicit probability map changes how candidates are scored, not which
// ones get visited.
func TestChanceWeightedExpandsAllCandidatesDuringSearch(t *testing.T) {
	e := newEngine(t, engine.Params{NumPlayers: 1, MaxSearchLevel: lang.Some(2)})
	s := &counterState{}

	probabilities := engine.ChanceProbabilities{0: 0.9, 1: 0.1}
	visited := map[int]bool{}
	engine.Choice(e, s, 0, engine.Bit(0), func(s *counterState, _ int) bool {
		return engine.ChanceWeighted(e, s, 0, engine.Bit(0)|engine.Bit(1), func(s *counterState, index int) bool {
			visited[index] = true
			e.AddPlayerScore(0, index)
			e.GameOver()
			return true
		}, probabilities)
	})

	require.Len(t, visited, 2)
}

// TestSearchIsDeterministicForAFixedSeed covers the §8 determinism
// property: two independent engines, same params and seed, playing the
// same driver from scratch, must reach the same outcome and visit counts.
func TestSearchIsDeterministicForAFixedSeed(t *testing.T) {
	params := engine.Params{
		NumPlayers:     2,
		MaxSearchLevel: lang.Some(9),
		MaxWalkLevel:   0,
		Seed:           42,
	}

	e1 := newEngine(t, params)
	s1 := tictactoe.Play(e1, 2)

	e2 := newEngine(t, params)
	s2 := tictactoe.Play(e2, 2)

	require.Equal(t, s1, s2)
	require.Equal(t, tictactoe.PlayerWon(s1, 2), tictactoe.PlayerWon(s2, 2))
	require.Equal(t, e1.CumulativeStats(), e2.CumulativeStats())
}

// TestTwoSearchingPlayersReachATerminalOutcome is the §8 scenario-1
// end-to-end check: a fully-searched tic-tac-toe game between two
// searching players always terminates in a win or a draw, never an
// incomplete board.
func TestTwoSearchingPlayersReachATerminalOutcome(t *testing.T) {
	e := newEngine(t, engine.Params{NumPlayers: 2, MaxSearchLevel: lang.Some(9), Seed: 1})
	s := tictactoe.Play(e, 2)

	winner := tictactoe.PlayerWon(s, 2)
	if winner < 0 {
		require.Equal(t, e.GetWinningPlayers(), -3) // both players tied: a draw
	}
}

// TestAddPlayerScoreUpdatesWinner exercises score bookkeeping and
// GetWinningPlayers' tie-handling directly, independent of any driver.
func TestAddPlayerScoreUpdatesWinner(t *testing.T) {
	e := newEngine(t, engine.Params{NumPlayers: 3})
	e.AddPlayerScore(0, 5)
	e.AddPlayerScore(1, 5)
	e.AddPlayerScore(2, 1)

	require.Equal(t, -0b011, e.GetWinningPlayers())

	e.AddPlayerScore(2, 10)
	require.Equal(t, 2, e.GetWinningPlayers())
}
