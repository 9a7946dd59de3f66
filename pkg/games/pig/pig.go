// Package pig is a dice-race driver: each turn a player repeatedly rolls
// (a Chance node) and chooses to bank the running total or roll again (a
// Choice node), risking the total on a roll of 1. First to 100 points wins.
// Unlike the other drivers, it exercises engine.Chance. A random playout
// past the search horizon ends when a player reaches winningScore or when
// MaxWalkLevel choices have been made, whichever comes first.
package pig

import "github.com/ashgrove/deepply/pkg/engine"

const winningScore = 100

// State tracks each player's running, not-yet-banked total for the turn in
// progress.
type State struct {
	TurnTotal [engine.MaxPlayers]int
}

const (
	choiceHold = 0
	choiceRoll = 1
)

func holdOrRoll(e *engine.Engine, numPlayers int) engine.ChoiceFunc[State] {
	return func(s *State, choice int) bool {
		player := e.CurrentPlayer()
		switch choice {
		case choiceHold:
			e.AddPlayerScore(player, s.TurnTotal[player])
			base := engine.Base(s)
			engine.Write(e, base, &s.TurnTotal[player], 0)
			if e.NextPlayer() {
				playTurn(e, s, numPlayers)
			}
			return true
		case choiceRoll:
			playTurn(e, s, numPlayers)
			return true
		default:
			return false
		}
	}
}

func dieRolled(e *engine.Engine, numPlayers int) engine.ChoiceFunc[State] {
	return func(s *State, die int) bool {
		player := e.CurrentPlayer()
		base := engine.Base(s)
		if die == 0 {
			// rolled a 1: forfeit the turn's unbanked total
			engine.Write(e, base, &s.TurnTotal[player], 0)
			if e.NextPlayer() {
				playTurn(e, s, numPlayers)
			}
			return true
		}
		engine.Add(e, base, &s.TurnTotal[player], die+1)
		return engine.Choice(e, s, 0, engine.Bit(choiceHold)|engine.Bit(choiceRoll), holdOrRoll(e, numPlayers))
	}
}

// IsGameOver returns the winning player's index + 1, or 0 if nobody has
// reached winningScore yet (matching the reference's 1-based sentinel so
// 0 unambiguously means "not over").
func IsGameOver(e *engine.Engine, numPlayers int) int {
	for i := 0; i < numPlayers; i++ {
		if e.GetPlayerScore(i) >= winningScore {
			return i + 1
		}
	}
	return 0
}

func playTurn(e *engine.Engine, s *State, numPlayers int) {
	if IsGameOver(e, numPlayers) != 0 {
		e.GameOver()
		return
	}
	engine.Chance(e, s, 0, engine.Range(0, 5), dieRolled(e, numPlayers))
}

// Play drives one full game to completion on e.
func Play(e *engine.Engine, numPlayers int) *State {
	s := &State{}
	for IsGameOver(e, numPlayers) == 0 {
		playTurn(e, s, numPlayers)
	}
	return s
}
