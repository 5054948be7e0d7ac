package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

var fourPicks = []Archetype{Gunslinger, Gunslinger, Bruiser, Bruiser}

func TestValidateRoster(t *testing.T) {
	require.NoError(t, ValidateRoster(fourPicks))
	require.ErrorIs(t, ValidateRoster(fourPicks[:3]), ErrRosterSize)
	require.ErrorIs(t, ValidateRoster(append(fourPicks, Bruiser)), ErrRosterSize)
	require.ErrorIs(t, ValidateRoster([]Archetype{King, Bruiser, Bruiser, Bruiser}), ErrKingInRoster)

	roster, err := ParseRoster([]string{"gunslinger", "bruiser", "bruiser", "gunslinger"})
	require.NoError(t, err)
	require.NoError(t, ValidateRoster(roster))
	_, err = ParseRoster([]string{"outlaw"})
	require.ErrorIs(t, err, ErrUnknownArchetype)
}

func TestRandomRoster(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	roster := RandomRoster(rng, DefaultOffer)
	require.NoError(t, ValidateRoster(roster))
}

func TestPlacement(t *testing.T) {
	t.Run("rejects bad rosters without leaving setup", func(t *testing.T) {
		gs := NewGameState()
		err := gs.StartPlacement(fourPicks[:2], fourPicks)
		require.ErrorIs(t, err, ErrRosterSize)
		require.Equal(t, Setup, gs.Phase)
		require.Empty(t, gs.Roster(Player1).Pieces)
	})

	t.Run("player 1 king is placed at its home cell", func(t *testing.T) {
		gs := NewGameState()
		require.NoError(t, gs.StartPlacement(fourPicks, fourPicks))

		require.Equal(t, Placement, gs.Phase)
		require.Equal(t, Player1, gs.Placement.Owner)
		require.Equal(t, 4, gs.Placement.Remaining())
		king := gs.OccupantAt(Cell{Row: 5, Col: 0})
		require.NotNil(t, king)
		require.True(t, king.IsKing)
		require.Equal(t, 10, king.HP)
	})

	t.Run("row 3 is outside player 1's band", func(t *testing.T) {
		gs := NewGameState()
		require.NoError(t, gs.StartPlacement(fourPicks, fourPicks))
		before := gs.Copy()

		_, err := gs.ApplyPlacement(Cell{Row: 3, Col: 2})

		require.ErrorIs(t, err, ErrOutOfBand)
		require.Equal(t, before, gs)
		require.Equal(t, 4, gs.Placement.Remaining())
	})

	t.Run("occupied cells are rejected", func(t *testing.T) {
		gs := NewGameState()
		require.NoError(t, gs.StartPlacement(fourPicks, fourPicks))
		before := gs.Copy()

		_, err := gs.ApplyPlacement(Cell{Row: 5, Col: 0})

		require.ErrorIs(t, err, ErrOccupied)
		require.Equal(t, before, gs)
	})

	t.Run("full placement hands over and then waits for the duel", func(t *testing.T) {
		gs := NewGameState()
		require.NoError(t, gs.StartPlacement(fourPicks, []Archetype{Bruiser, Bruiser, Bruiser, Bruiser}))

		for col := 1; col <= 4; col++ {
			p, err := gs.ApplyPlacement(Cell{Row: 5, Col: col})
			require.NoError(t, err)
			require.Equal(t, Player1, p.Owner)
			require.Equal(t, fourPicks[col-1], p.Type)
		}
		require.Equal(t, Player2, gs.Placement.Owner)
		require.NotNil(t, gs.OccupantAt(Cell{Row: 0, Col: 5}), "player 2 king arrives with its segment")

		_, err := gs.ApplyPlacement(Cell{Row: 4, Col: 0})
		require.ErrorIs(t, err, ErrOutOfBand, "player 2 places in rows 0 and 1")

		for col := 0; col < 4; col++ {
			_, err := gs.ApplyPlacement(Cell{Row: 1, Col: col})
			require.NoError(t, err)
		}
		require.True(t, gs.PlacementDone())
		require.Len(t, gs.Roster(Player1).Pieces, 5)
		require.Len(t, gs.Roster(Player2).Pieces, 5)

		_, err = gs.ApplyPlacement(Cell{Row: 1, Col: 4})
		require.ErrorIs(t, err, ErrWrongPhase)
	})

	t.Run("auto placement fills the band", func(t *testing.T) {
		gs := NewGameState()
		rng := rand.New(rand.NewSource(1))
		require.NoError(t, gs.StartPlacement(fourPicks, fourPicks))

		placed, err := gs.AutoPlace(rng)
		require.NoError(t, err)
		require.Len(t, placed, 4)
		for _, p := range placed {
			require.True(t, InBand(Player1, p.Cell))
		}

		placed, err = gs.AutoPlace(rng)
		require.NoError(t, err)
		require.Len(t, placed, 4)
		require.True(t, gs.PlacementDone())
	})
}

func TestDecideFirstPlayer(t *testing.T) {
	gs := NewGameState()
	_, err := gs.DecideFirstPlayer(Sequence(1, 2))
	require.ErrorIs(t, err, ErrPlacementPending)

	rng := rand.New(rand.NewSource(3))
	require.NoError(t, gs.StartPlacement(fourPicks, fourPicks))
	_, err = gs.AutoPlace(rng)
	require.NoError(t, err)
	_, err = gs.AutoPlace(rng)
	require.NoError(t, err)

	rolls, err := gs.DecideFirstPlayer(Sequence(4, 4, 2, 5))

	require.NoError(t, err)
	require.Equal(t, []DuelRoll{{4, 4}, {2, 5}}, rolls, "ties are rerolled")
	require.Equal(t, Player2, gs.CurrentPlayer)
	require.Equal(t, Play, gs.Phase)
	require.Zero(t, gs.Dice)
}

func TestTurns(t *testing.T) {
	board := func() *GameState {
		return playState(append(kings(),
			piece("g1", Player1, Gunslinger, 4, 1),
			piece("b1", Player1, Bruiser, 4, 4),
			piece("g2", Player2, Gunslinger, 1, 1),
			piece("b2", Player2, Bruiser, 1, 4),
		)...)
	}

	t.Run("rolling opens the multiplier window", func(t *testing.T) {
		gs := board()
		v, err := gs.RollTurnDice(Sequence(5))
		require.NoError(t, err)
		require.Equal(t, 5, v)
		require.Equal(t, 3, gs.Multiplier)

		_, err = gs.RollTurnDice(Sequence(2))
		require.ErrorIs(t, err, ErrAlreadyRolled)
	})

	t.Run("acting before rolling is rejected", func(t *testing.T) {
		gs := board()
		_, err := gs.MovePiece("g1", Cell{Row: 3, Col: 1})
		require.ErrorIs(t, err, ErrNotRolled)
	})

	t.Run("a 6 forfeits the turn", func(t *testing.T) {
		gs := board()
		_, err := gs.RollTurnDice(Sequence(6))
		require.NoError(t, err)

		require.Empty(t, gs.LegalActions(Player1))
		_, err = gs.MovePiece("g1", Cell{Row: 3, Col: 1})
		require.ErrorIs(t, err, ErrTurnForfeited)
		_, err = gs.Attack("g1", "g2")
		require.ErrorIs(t, err, ErrTurnForfeited)

		require.NoError(t, gs.EndTurn())
		require.Equal(t, Player2, gs.CurrentPlayer)
		require.Zero(t, gs.Dice)
		require.Equal(t, 1, gs.Multiplier)
	})

	t.Run("moving with no enemy in range ends the turn", func(t *testing.T) {
		gs := board()
		_, err := gs.RollTurnDice(Sequence(1))
		require.NoError(t, err)

		ended, err := gs.MovePiece("b1", Cell{Row: 4, Col: 5})

		require.NoError(t, err)
		require.True(t, ended)
		require.Equal(t, Player2, gs.CurrentPlayer)
		require.Zero(t, gs.Dice)
		require.Equal(t, Cell{Row: 4, Col: 5}, gs.FindPiece("b1").Cell)
	})

	t.Run("move then attack keeps the 2x window", func(t *testing.T) {
		gs := board()
		_, err := gs.RollTurnDice(Sequence(4))
		require.NoError(t, err)

		ended, err := gs.MovePiece("g1", Cell{Row: 3, Col: 1})
		require.NoError(t, err)
		require.False(t, ended)
		require.True(t, gs.AttackPending)

		_, err = gs.MovePiece("g1", Cell{Row: 2, Col: 1})
		require.ErrorIs(t, err, ErrActionLocked, "one move per turn")
		_, err = gs.Attack("b1", "b2")
		require.ErrorIs(t, err, ErrActionLocked, "only the moved piece may attack")

		result, err := gs.Attack("g1", "g2")
		require.NoError(t, err)
		require.Equal(t, 4, result.Damage, "gunslinger at distance 2 with a 4")
		require.Equal(t, 3, gs.FindPiece("g2").HP)
		require.Equal(t, Player2, gs.CurrentPlayer)
		require.Equal(t, 1, gs.Multiplier)
	})

	t.Run("gunslinger at distance 3 with a 4 deals 4", func(t *testing.T) {
		gs := board()
		gs.FindPiece("g1").Cell = Cell{Row: 3, Col: 0}
		_, err := gs.RollTurnDice(Sequence(4))
		require.NoError(t, err)

		result, err := gs.Attack("g1", "g2")

		require.NoError(t, err)
		require.Equal(t, 4, result.Damage)
	})

	t.Run("out of range attack leaves the turn open", func(t *testing.T) {
		gs := board()
		_, err := gs.RollTurnDice(Sequence(2))
		require.NoError(t, err)
		before := gs.Copy()

		_, err = gs.Attack("b1", "b2")

		require.ErrorIs(t, err, ErrOutOfRange)
		require.Equal(t, before, gs)
	})

	t.Run("cannot act with the opponent's pieces", func(t *testing.T) {
		gs := board()
		_, err := gs.RollTurnDice(Sequence(2))
		require.NoError(t, err)
		require.ErrorIs(t, gs.SelectPiece("g2"), ErrNotYourPiece)
		require.NoError(t, gs.SelectPiece("g1"))
		require.Equal(t, "g1", gs.SelectedID)
	})

	t.Run("4 and 5 offer targets from one step away", func(t *testing.T) {
		gs := board()
		gs.FindPiece("b1").Cell = Cell{Row: 2, Col: 3}
		_, err := gs.RollTurnDice(Sequence(5))
		require.NoError(t, err)

		targets, err := gs.OfferedTargets("b1")
		require.NoError(t, err)
		require.Equal(t, []string{"b2"}, targets, "b2 is adjacent to the cell above")

		gs = board()
		gs.FindPiece("b1").Cell = Cell{Row: 2, Col: 3}
		_, err = gs.RollTurnDice(Sequence(3))
		require.NoError(t, err)
		targets, err = gs.OfferedTargets("b1")
		require.NoError(t, err)
		require.Empty(t, targets)
	})

	t.Run("the winning attack freezes the game", func(t *testing.T) {
		gs := board()
		gs.FindPiece("b1").Cell = Cell{Row: 1, Col: 5}
		gs.FindPiece("k2").HP = 3
		_, err := gs.RollTurnDice(Sequence(1))
		require.NoError(t, err)

		result, err := gs.Attack("b1", "k2")

		require.NoError(t, err)
		require.Equal(t, Player1, result.Winner)
		require.Equal(t, Finished, gs.Phase)
		require.Equal(t, Player1, gs.Result)
		require.Equal(t, Player1, gs.CurrentPlayer, "the winner keeps the turn")
		require.ErrorIs(t, gs.EndTurn(), ErrGameOver)
		_, err = gs.RollTurnDice(Sequence(1))
		require.ErrorIs(t, err, ErrGameOver)
		require.Empty(t, gs.LegalActions(Player2))
	})
}
