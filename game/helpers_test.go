package game

func piece(id string, owner Player, a Archetype, row, col int) Piece {
	p := NewPiece(owner, a, Cell{Row: row, Col: col})
	p.ID = id
	return p
}

// playState builds a game already in play with player 1 to move.
func playState(pieces ...Piece) *GameState {
	gs := NewGameState()
	for _, p := range pieces {
		roster := gs.Roster(p.Owner)
		roster.Pieces = append(roster.Pieces, p)
	}
	gs.Phase = Play
	gs.CurrentPlayer = Player1
	return gs
}

func kings() []Piece {
	return []Piece{
		piece("k1", Player1, King, 5, 0),
		piece("k2", Player2, King, 0, 5),
	}
}
