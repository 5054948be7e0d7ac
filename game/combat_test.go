package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaseDamage(t *testing.T) {
	cases := []struct {
		archetype Archetype
		distance  int
		want      int
	}{
		{Gunslinger, 0, 0},
		{Gunslinger, 1, 3},
		{Gunslinger, 2, 2},
		{Gunslinger, 3, 2},
		{Gunslinger, 4, 0},
		{Bruiser, 0, 0},
		{Bruiser, 1, 3},
		{Bruiser, 2, 0},
		{King, 1, 3},
		{King, 3, 0},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, BaseDamage(tc.archetype, tc.distance), "%s at %d", tc.archetype, tc.distance)
	}
}

func TestResolveAttack(t *testing.T) {
	t.Run("gunslinger at distance 2 with a 5 deals 6", func(t *testing.T) {
		gs := playState(append(kings(),
			piece("g", Player1, Gunslinger, 3, 0),
			piece("b", Player2, Bruiser, 1, 0),
			piece("b2", Player2, Bruiser, 0, 0),
		)...)

		result, err := gs.ResolveAttack("g", "b", MultiplierFor(5))

		require.NoError(t, err)
		require.Equal(t, 6, result.Damage)
		require.Equal(t, 2, gs.FindPiece("b").HP)
		require.False(t, result.Eliminated)
	})

	t.Run("bruiser adjacent deals 3", func(t *testing.T) {
		gs := playState(append(kings(),
			piece("b1", Player1, Bruiser, 3, 3),
			piece("g2", Player2, Gunslinger, 2, 3),
		)...)

		result, err := gs.ResolveAttack("b1", "g2", 1)

		require.NoError(t, err)
		require.Equal(t, 3, result.Damage)
		require.Equal(t, 4, gs.FindPiece("g2").HP)
	})

	t.Run("out of band is rejected without change", func(t *testing.T) {
		gs := playState(append(kings(),
			piece("b1", Player1, Bruiser, 3, 3),
			piece("g2", Player2, Gunslinger, 1, 3),
		)...)
		before := gs.Copy()

		_, err := gs.ResolveAttack("b1", "g2", 3)

		require.ErrorIs(t, err, ErrOutOfRange)
		require.Equal(t, before, gs)
	})

	t.Run("friendly fire is rejected", func(t *testing.T) {
		gs := playState(append(kings(), piece("b1", Player1, Bruiser, 4, 0))...)
		_, err := gs.ResolveAttack("b1", "k1", 1)
		require.ErrorIs(t, err, ErrFriendlyTarget)
	})

	t.Run("a king falls on the fourth hit and the game ends at once", func(t *testing.T) {
		gs := playState(
			piece("k1", Player1, King, 5, 0),
			piece("b1", Player1, Bruiser, 1, 5),
			piece("k2", Player2, King, 0, 5),
			piece("g2", Player2, Gunslinger, 3, 3),
		)

		for hit := 1; hit <= 3; hit++ {
			result, err := gs.ResolveAttack("b1", "k2", 1)
			require.NoError(t, err)
			require.Equal(t, NoPlayer, result.Winner)
		}
		require.Equal(t, 1, gs.FindPiece("k2").HP)
		require.Equal(t, Play, gs.Phase)

		result, err := gs.ResolveAttack("b1", "k2", 1)

		require.NoError(t, err)
		require.True(t, result.Eliminated)
		require.Equal(t, Player1, result.Winner)
		require.Nil(t, gs.FindPiece("k2"), "dead pieces leave the roster")
		require.Equal(t, Finished, gs.Phase)
		require.Equal(t, Player1, gs.Winner())
	})

	t.Run("losing the last fighter loses the game", func(t *testing.T) {
		gs := playState(append(kings(),
			piece("g1", Player1, Gunslinger, 2, 2),
			piece("b2", Player2, Bruiser, 2, 3),
		)...)
		gs.FindPiece("b2").HP = 3

		result, err := gs.ResolveAttack("b2", "g1", 1)
		require.NoError(t, err)
		require.Equal(t, NoPlayer, result.Winner, "g1 survives with 4")

		result, err = gs.ResolveAttack("g1", "b2", 1)
		require.NoError(t, err)
		require.Equal(t, Player1, result.Winner)
	})
}

func TestThreatCount(t *testing.T) {
	gs := playState(append(kings(),
		piece("g2", Player2, Gunslinger, 1, 1),
		piece("b2", Player2, Bruiser, 3, 3),
	)...)

	require.Equal(t, 2, gs.ThreatCount(Player1, Cell{Row: 3, Col: 2}))
	require.Equal(t, 1, gs.ThreatCount(Player1, Cell{Row: 4, Col: 3}), "only the bruiser reaches")
	require.Equal(t, 0, gs.ThreatCount(Player1, Cell{Row: 5, Col: 5}))
}
