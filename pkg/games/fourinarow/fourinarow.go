// Package fourinarow is a Connect-Four driver: candidates are columns, not
// cells, so applying a move means finding the lowest empty row in that
// column. It exercises random-walk-past-horizon search via MaxWalkLevel.
package fourinarow

import "github.com/ashgrove/deepply/pkg/engine"

const (
	BoardX = 7
	BoardY = 6
)

// BoardMask is a bitmask over the BoardX*BoardY board cells.
type BoardMask uint64

// State is one four-in-a-row position: one bitboard per player, plus each
// column's current fill height.
type State struct {
	Pieces  [engine.MaxPlayers]BoardMask
	Columns [BoardX]uint8
}

func bi(x, y int) int { return y*BoardX + x }

func bm(x, y int) BoardMask {
	if x < 0 || y < 0 || x >= BoardX || y >= BoardY {
		return 0
	}
	return BoardMask(1) << uint(bi(x, y))
}

func setPieceAt(e *engine.Engine, s *State, index, player int) {
	base := engine.Base(s)
	engine.Write(e, base, &s.Pieces[player], s.Pieces[player]|(BoardMask(1)<<uint(index)))
}

func incColumn(e *engine.Engine, s *State, col int) {
	base := engine.Base(s)
	engine.Add(e, base, &s.Columns[col], uint8(1))
}

type line struct {
	mask BoardMask
	x, y int
}

// winLines enumerates every 4-in-a-row window on the board: horizontal,
// vertical and both diagonals.
func winLines() []BoardMask {
	var lines []BoardMask
	horiz := bm(0, 0) | bm(1, 0) | bm(2, 0) | bm(3, 0)
	vert := bm(0, 0) | bm(0, 1) | bm(0, 2) | bm(0, 3)
	diag1 := bm(0, 0) | bm(1, 1) | bm(2, 2) | bm(3, 3)
	diag2 := bm(3, 0) | bm(2, 1) | bm(1, 2) | bm(0, 3)
	for x := 0; x <= BoardX-4; x++ {
		for y := 0; y < BoardY; y++ {
			lines = append(lines, horiz<<uint(x+y*BoardX))
		}
		for y := 0; y <= BoardY-4; y++ {
			lines = append(lines, diag1<<uint(x+y*BoardX))
			lines = append(lines, diag2<<uint(x+y*BoardX))
		}
	}
	for x := 0; x < BoardX; x++ {
		for y := 0; y <= BoardY-4; y++ {
			lines = append(lines, vert<<uint(x+y*BoardX))
		}
	}
	return lines
}

var lines = winLines()

// PlayerWon returns the winning player's index, or -1 if no one has four in
// a row yet.
func PlayerWon(s *State, numPlayers int) int {
	for _, l := range lines {
		for p := 0; p < numPlayers; p++ {
			if s.Pieces[p]&l == l {
				return p
			}
		}
	}
	return -1
}

func makeMove(e *engine.Engine, numPlayers int) engine.ChoiceFunc[State] {
	return func(s *State, column int) bool {
		player := e.CurrentPlayer()
		y := int(s.Columns[column])
		index := bi(column, y)
		setPieceAt(e, s, index, player)
		incColumn(e, s, column)

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
	var mask engine.ChoiceMask
	for x := 0; x < BoardX; x++ {
		if s.Columns[x] < BoardY {
			mask |= engine.Bit(x)
		}
	}
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
	for playTurn(e, s, numPlayers) {
		if PlayerWon(s, numPlayers) >= 0 {
			break
		}
	}
	return s
}
