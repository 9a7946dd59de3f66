// Command deepply drives one of the representative game packages to
// completion against the generic search engine, following the reference
// CLI's flag surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/ashgrove/deepply/internal/cli"
	"github.com/ashgrove/deepply/pkg/engine"
	"github.com/ashgrove/deepply/pkg/games/fourinarow"
	"github.com/ashgrove/deepply/pkg/games/pig"
	"github.com/ashgrove/deepply/pkg/games/reversi"
	"github.com/ashgrove/deepply/pkg/games/tictactoe"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var version = build.NewVersion(0, 1, 0)

var (
	verbose       = flag.Bool("v", false, "Verbose diagnostic logging")
	printStats    = flag.Bool("s", false, "Print per-ply search statistics")
	fullSearch    = flag.Bool("F", false, "Disable alpha-beta cutoffs (exhaustive search)")
	depth         = flag.Int("d", 0, "Default max search level (0 = engine default)")
	hashOrder     = flag.Int("H", 0, "Transposition table order, size 2^k (0 = engine default)")
	walkLevel     = flag.Int("w", 0, "Random walk depth past the search horizon")
	prelimInc     = flag.Int("i", 0, "Preliminary search depth increment (0 = disabled)")
	seed          = flag.Int64("r", 0, "Random seed")
	verboseAtLine = flag.Int("L", 0, "Turn on verbose diagnostics once this many stats lines have printed (0 = disabled)")
	noReorder     = flag.Bool("K", false, "Disable killer-move sibling reordering")
	numPlayers    = flag.Int("n", 2, "Number of players")
)

// "-0".."-3" and "-A" are player-selector flags (see internal/cli): which
// players are set up as interactive (human) players, matching the
// reference's own use of that cluster to scope per-player options.

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `usage: deepply <game> [options]   (%v)

DEEPLY runs a generic alpha-beta search engine against a representative
game driver: tictactoe, fourinarow, reversi, or pig.

Options:
`, version)
		flag.PrintDefaults()
	}
}

func main() {
	players, rest := cli.ExtractPlayerFlags(os.Args[1:])
	game, rest := cli.Positional(rest)
	flag.CommandLine.Parse(rest)

	ctx := context.Background()

	if game == "" {
		flag.Usage()
		logw.Exitf(ctx, "missing game argument")
	}

	params := engine.Params{
		NumPlayers:      *numPlayers,
		MaxWalkLevel:    *walkLevel,
		Seed:            *seed,
		FullSearch:      *fullSearch,
		ReorderSiblings: lang.Some(!*noReorder),
		Verbose:         *verbose,
		PrintStats:      *printStats,
		VerboseAtLine:   *verboseAtLine,
	}
	if *depth > 0 {
		params.MaxSearchLevel = lang.Some(*depth)
	}
	if *hashOrder > 0 {
		params.HashTableOrder = lang.Some(*hashOrder)
	}
	if *prelimInc > 0 {
		params.PreliminarySearchIncrement = *prelimInc
	}

	e, err := engine.New(ctx, params)
	if err != nil {
		logw.Exitf(ctx, "engine: %v", err)
	}
	if len(players) > 0 {
		stdin := engine.ReadStdinLines(ctx)
		for _, p := range players {
			e.PlayerSettings(p).Interactive = humanInteractive(stdin)
		}
	}

	switch game {
	case "tictactoe":
		s := tictactoe.Play(e, *numPlayers)
		winner := tictactoe.PlayerWon(s, *numPlayers)
		if winner < 0 {
			winner = e.GetWinningPlayers()
		}
		printResult(ctx, e, winner)
	case "fourinarow":
		s := fourinarow.Play(e, *numPlayers)
		winner := fourinarow.PlayerWon(s, *numPlayers)
		if winner < 0 {
			winner = e.GetWinningPlayers()
		}
		printResult(ctx, e, winner)
	case "reversi":
		reversi.Play(e, *numPlayers)
		printResult(ctx, e, e.GetWinningPlayers())
	case "pig":
		pig.Play(e, *numPlayers)
		printResult(ctx, e, e.GetWinningPlayers())
	default:
		flag.Usage()
		logw.Exitf(ctx, "unknown game %q", game)
	}
}

// humanInteractive prompts a human player on stdout and reads their choice
// index from the shared stdin line channel, retrying on an invalid or
// rejected index until one of the candidates in mask is accepted. The
// engine itself never touches stdin/stdout; console I/O lives entirely in
// this driver.
func humanInteractive(stdin <-chan string) engine.InteractiveFunc {
	return func(player int, mask engine.ChoiceMask, attempt func(index int) bool) bool {
		for {
			fmt.Printf("player %d, choose an index (mask=%#b): ", player, mask)
			line, ok := <-stdin
			if !ok {
				return false
			}
			index, err := strconv.Atoi(line)
			if err != nil || index < 0 || index >= 64 {
				fmt.Println("not a valid index, try again")
				continue
			}
			if mask&engine.Bit(index) == 0 {
				fmt.Println("index not a legal candidate, try again")
				continue
			}
			if attempt(index) {
				return true
			}
			fmt.Println("move rejected, try again")
		}
	}
}

func printResult(ctx context.Context, e *engine.Engine, winner int) {
	if winner >= 0 {
		logw.Infof(ctx, "player %d wins", winner)
	} else if winner < 0 {
		logw.Infof(ctx, "draw among players %#b", -winner)
	}
	for p := 0; p < *numPlayers; p++ {
		logw.Infof(ctx, "player %d score: %d", p, e.GetPlayerScore(p))
	}
}
