package engine

import "fmt"

// Score is a per-player or node-relative integer score.
type Score int

// MaxScore and MinScore bound any single player's score; node scores that
// sum across all players use MaxScore*MaxPlayers as their true bound.
const (
	MaxScore Score = 1_000_000
	MinScore Score = -MaxScore
)

func (s Score) String() string {
	return fmt.Sprintf("%+d", int(s))
}
