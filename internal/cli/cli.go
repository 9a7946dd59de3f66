// Package cli layers a small clustered single-dash option scanner in front
// of the standard flag package. flag requires one token per flag
// (-0, -1, -2, -3 would each need their own registered name collision-free
// of the digit), so ExtractPlayerFlags removes each argument of the form
// "-<digits>" (digits only), where every digit names a player index, and
// returns those indices before flag.Parse ever sees the remaining
// arguments. "-A" is the same kind of selector, naming every player index
// instead of an explicit digit set. Every other argument passes through
// untouched.
package cli

import (
	"strconv"
	"strings"
)

// MaxPlayers mirrors engine.MaxPlayers: the player-selector cluster expands
// "-A" to every index in [0, MaxPlayers), the same set the reference
// implementation's own "-A" selects (`players = (1<<MAX_PLAYERS)-1`).
// Duplicated as a constant rather than importing pkg/engine so this package
// stays a leaf the engine (and any other driver) can depend on freely.
const MaxPlayers = 4

// ExtractPlayerFlags scans args for clustered player-selector flags of the
// form "-0", "-13", "-023", etc. (one or more digits following a single
// dash, and nothing else in that token), plus the literal "-A" meaning
// every player index. It returns, in first-seen order, every player index
// named this way, plus the remaining args with those tokens removed.
func ExtractPlayerFlags(args []string) (players []int, rest []string) {
	seen := make(map[int]bool)
	add := func(p int) {
		if !seen[p] {
			seen[p] = true
			players = append(players, p)
		}
	}
	for _, a := range args {
		switch {
		case a == "-A":
			for p := 0; p < MaxPlayers; p++ {
				add(p)
			}
		case isPlayerCluster(a):
			for _, r := range a[1:] {
				p, _ := strconv.Atoi(string(r))
				add(p)
			}
		default:
			rest = append(rest, a)
		}
	}
	return players, rest
}

func isPlayerCluster(a string) bool {
	if len(a) < 2 || a[0] != '-' {
		return false
	}
	for _, r := range a[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Positional returns the first argument in args that doesn't look like a
// flag (doesn't start with '-'), and the remaining arguments with it
// removed, preserving order.
func Positional(args []string) (value string, rest []string) {
	for i, a := range args {
		if !strings.HasPrefix(a, "-") {
			rest = append(append([]string{}, args[:i]...), args[i+1:]...)
			return a, rest
		}
	}
	return "", args
}
