// Package tictactoe is a minimal driver exercising engine.Choice over a
// fixed 3x3 board: every cell is a candidate index, a player wins by
// controlling a full line, and a full board with no winner is a draw.
package tictactoe

import "github.com/ashgrove/deepply/pkg/engine"

const (
	BoardX = 3
	BoardY = 3
)

// BoardMask is a bitmask over the 9 board cells.
type BoardMask uint32

// State is one tictactoe position: one bitboard per player.
type State struct {
	Pieces [engine.MaxPlayers]BoardMask
}

// BI returns the bit index of cell (x,y).
func BI(x, y int) int { return y*BoardX + x }

func bm(x, y int) BoardMask {
	if x < 0 || y < 0 || x >= BoardX || y >= BoardY {
		return 0
	}
	return BoardMask(1) << uint(BI(x, y))
}

const allMask = BoardMask((1 << (BoardX * BoardY)) - 1)

// PieceAt returns the occupying player's index, or -1 if empty.
func PieceAt(s *State, x, y int) int {
	bit := BoardMask(1) << uint(BI(x, y))
	for i, pieces := range s.Pieces {
		if pieces&bit != 0 {
			return i
		}
	}
	return -1
}

func occupancy(s *State) BoardMask {
	var m BoardMask
	for _, p := range s.Pieces {
		m |= p
	}
	return m
}

func setPieceAt(e *engine.Engine, s *State, index, player int) {
	base := engine.Base(s)
	engine.Write(e, base, &s.Pieces[player], s.Pieces[player]|(BoardMask(1)<<uint(index)))
}

// winLines are the 8 ways to control a full line on a 3x3 board.
func winLines() []BoardMask {
	var lines []BoardMask
	diag1 := bm(0, 0) | bm(1, 1) | bm(2, 2)
	diag2 := bm(2, 0) | bm(1, 1) | bm(0, 2)
	lines = append(lines, diag1, diag2)
	horiz := bm(0, 0) | bm(1, 0) | bm(2, 0)
	for y := 0; y < BoardY; y++ {
		lines = append(lines, horiz<<uint(y*BoardX))
	}
	vert := bm(0, 0) | bm(0, 1) | bm(0, 2)
	for x := 0; x < BoardX; x++ {
		lines = append(lines, vert<<uint(x))
	}
	return lines
}

var lines = winLines()

// PlayerWon returns the winning player's index, or -1 if nobody has
// completed a line yet.
func PlayerWon(s *State, numPlayers int) int {
	for _, line := range lines {
		for p := 0; p < numPlayers; p++ {
			if s.Pieces[p]&line == line {
				return p
			}
		}
	}
	return -1
}

func makeMove(e *engine.Engine, numPlayers int) engine.ChoiceFunc[State] {
	return func(s *State, index int) bool {
		player := e.CurrentPlayer()
		setPieceAt(e, s, index, player)

		if winner := PlayerWon(s, numPlayers); winner >= 0 {
			e.SetPlayerScore(winner, int(engine.MaxScore))
			e.GameOver()
			return true
		}

		if e.NextPlayer() {
			playTurn(e, s, numPlayers)
		}
		return true
	}
}

func playTurn(e *engine.Engine, s *State, numPlayers int) bool {
	mask := engine.ChoiceMask(allMask &^ occupancy(s))
	if mask == 0 {
		e.GameOver()
		return false
	}
	return engine.Choice(e, s, 0, mask, makeMove(e, numPlayers))
}

// Play drives one full game to completion (win or draw) on e, starting
// from an empty board.
func Play(e *engine.Engine, numPlayers int) *State {
	s := &State{}
	for playTurn(e, s, numPlayers) && PlayerWon(s, numPlayers) < 0 {
	}
	return s
}
