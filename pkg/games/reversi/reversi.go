// Package reversi is an 8x8 Othello driver. Unlike tictactoe and
// fourinarow, applying a move can flip many existing pieces and a player
// with no legal move must pass; two consecutive passes end the game. It
// exercises engine.AddPlayerScore (score tracks flipped-piece count, not
// just win/lose) and repeated re-derivation of the legal-move mask.
package reversi

import "github.com/ashgrove/deepply/pkg/engine"

const (
	BoardX = 8
	BoardY = 8
)

// BoardMask is a bitmask over the 64 board cells.
type BoardMask uint64

// State is one reversi position: one bitboard per player, plus the number
// of consecutive passes (2 ends the game).
type State struct {
	Pieces            [engine.MaxPlayers]BoardMask
	ConsecutivePasses uint8
}

// BI returns the bit index of cell (x,y).
func BI(x, y int) int { return y*BoardX + x }

func bm(x, y int) BoardMask {
	if x < 0 || y < 0 || x >= BoardX || y >= BoardY {
		return 0
	}
	return BoardMask(1) << uint(BI(x, y))
}

// Init sets up the standard starting position (four center pieces).
func Init(s *State) {
	s.Pieces[0] = bm(3, 4) | bm(4, 3)
	s.Pieces[1] = bm(3, 3) | bm(4, 4)
}

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

// setPieceAt overwrites cell index to belong to player, clearing it from
// whichever other player (if any) previously held it.
func setPieceAt(s *State, index, player, numPlayers int) {
	mask := BoardMask(1) << uint(index)
	for i := 0; i < numPlayers; i++ {
		if i == player {
			s.Pieces[i] |= mask
		} else {
			s.Pieces[i] &^= mask
		}
	}
}

var (
	dirs = [8][2]int{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}
)

// flippablePieces walks from (x,y) in direction (dx,dy) and returns how
// many of the opponent's pieces would flip if player moved here, or 0 if
// the line doesn't end in one of player's own pieces.
func flippablePieces(s *State, player, x, y, dx, dy int) int {
	count := 0
	for {
		x += dx
		y += dy
		if x < 0 || y < 0 || x >= BoardX || y >= BoardY {
			return 0
		}
		piece := PieceAt(s, x, y)
		if piece < 0 {
			return 0
		}
		count++
		if piece == player {
			break
		}
	}
	if count < 2 {
		return 0
	}
	return count - 1
}

func flipPieces(s *State, player, x, y, dx, dy, numPlayers int) int {
	n := flippablePieces(s, player, x, y, dx, dy)
	fx, fy := x, y
	for i := 0; i < n; i++ {
		fx += dx
		fy += dy
		setPieceAt(s, BI(fx, fy), player, numPlayers)
	}
	return n
}

// possibleMoves returns empty cells adjacent to any opponent cell: a cheap
// superset of the legal moves, further narrowed by validMoves.
func possibleMoves(s *State, player int) BoardMask {
	occ := occupancy(s)
	opp := occ ^ s.Pieces[player]
	adj := opp
	for x := 0; x < BoardX; x++ {
		for y := 0; y < BoardY; y++ {
			if opp&bm(x, y) == 0 {
				continue
			}
			for _, d := range dirs {
				adj |= bm(x+d[0], y+d[1])
			}
		}
	}
	return ^occ & adj
}

// ValidMoves narrows possibleMoves to cells that would actually flip at
// least one opponent piece.
func ValidMoves(s *State, player int) engine.ChoiceMask {
	candidates := possibleMoves(s, player)
	var result engine.ChoiceMask
	for x := 0; x < BoardX; x++ {
		for y := 0; y < BoardY; y++ {
			if candidates&bm(x, y) == 0 {
				continue
			}
			for _, d := range dirs {
				if flippablePieces(s, player, x, y, d[0], d[1]) > 0 {
					result |= engine.Bit(BI(x, y))
					break
				}
			}
		}
	}
	return result
}

func makeMove(e *engine.Engine, numPlayers int) engine.ChoiceFunc[State] {
	return func(s *State, index int) bool {
		player := e.CurrentPlayer()
		x, y := index%BoardX, index/BoardX

		tmp := *s
		count := 0
		for _, d := range dirs {
			count += flipPieces(&tmp, player, x, y, d[0], d[1], numPlayers)
		}
		if count == 0 {
			return false
		}
		setPieceAt(&tmp, index, player, numPlayers)
		tmp.ConsecutivePasses = 0

		base := engine.Base(s)
		engine.Write(e, base, s, tmp)
		e.AddPlayerScore(player, count*100)

		if e.NextPlayer() {
			playTurn(e, s, numPlayers)
		}
		return true
	}
}

func playerPasses(e *engine.Engine, s *State, numPlayers int) bool {
	base := engine.Base(s)
	engine.Add(e, base, &s.ConsecutivePasses, uint8(1))
	if int(s.ConsecutivePasses) >= numPlayers {
		e.GameOver()
		return true
	}
	return false
}

func playTurn(e *engine.Engine, s *State, numPlayers int) {
	mask := ValidMoves(s, e.CurrentPlayer())
	if mask != 0 {
		if !engine.Choice(e, s, 0, mask, makeMove(e, numPlayers)) {
			mask = 0
		}
	}
	if mask == 0 {
		if playerPasses(e, s, numPlayers) {
			return
		}
		if e.NextPlayer() {
			playTurn(e, s, numPlayers)
		}
	}
}

// Play drives one full game to completion on e, starting from the standard
// opening position.
func Play(e *engine.Engine, numPlayers int) *State {
	s := &State{}
	Init(s)
	for int(s.ConsecutivePasses) < numPlayers {
		playTurn(e, s, numPlayers)
	}
	return s
}
