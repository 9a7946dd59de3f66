package pig_test

import (
	"context"
	"testing"

	"github.com/ashgrove/deepply/pkg/engine"
	"github.com/ashgrove/deepply/pkg/games/pig"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/require"
)

func TestGameReachesAWinner(t *testing.T) {
	e, err := engine.New(context.Background(), engine.Params{
		NumPlayers:     2,
		MaxSearchLevel: lang.Some(4),
		MaxWalkLevel:   30,
		Seed:           7,
	})
	require.NoError(t, err)

	pig.Play(e, 2)
	require.NotEqual(t, 0, pig.IsGameOver(e, 2), "Play returns once a score has crossed the winning threshold")
}
