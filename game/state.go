package game

import (
	"fmt"
	"hash/fnv"

	"golang.org/x/exp/slices"
)

type Phase int

const (
	Setup Phase = iota
	Placement
	Play
	Finished
)

func (p Phase) String() string {
	switch p {
	case Setup:
		return "setup"
	case Placement:
		return "placement"
	case Play:
		return "play"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for candidate := Setup; candidate <= Finished; candidate++ {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Roster holds one player's pieces in placement order.
type Roster struct {
	Owner  Player  `json:"owner"`
	Pieces []Piece `json:"pieces"`
}

// Snapshot is the part of the game AI and search see and copy. A Snapshot
// never shares memory with another one returned by Clone or Play.
type Snapshot struct {
	Rosters       [2]Roster `json:"rosters"`
	CurrentPlayer Player    `json:"currentPlayer"`
	Dice          int       `json:"dice"` // 0 until rolled
	Phase         Phase     `json:"phase"`
}

func NewSnapshot() Snapshot {
	return Snapshot{
		Rosters: [2]Roster{{Owner: Player1}, {Owner: Player2}},
		Phase:   Setup,
	}
}

func (s Snapshot) Clone() Snapshot {
	c := s
	for i := range s.Rosters {
		c.Rosters[i].Pieces = slices.Clone(s.Rosters[i].Pieces)
	}
	return c
}

func (s *Snapshot) Roster(p Player) *Roster {
	if !p.Valid() {
		panic(fmt.Sprintf("no roster for player %d", p))
	}
	return &s.Rosters[p-1]
}

// Living returns the living pieces of p. The result aliases the roster.
func (s *Snapshot) Living(p Player) []*Piece {
	roster := s.Roster(p)
	living := make([]*Piece, 0, len(roster.Pieces))
	for i := range roster.Pieces {
		if roster.Pieces[i].Alive() {
			living = append(living, &roster.Pieces[i])
		}
	}
	return living
}

// OccupantAt returns the sole living piece on c, or nil.
func (s *Snapshot) OccupantAt(c Cell) *Piece {
	for i := range s.Rosters {
		pieces := s.Rosters[i].Pieces
		for j := range pieces {
			if pieces[j].Alive() && pieces[j].Cell == c {
				return &pieces[j]
			}
		}
	}
	return nil
}

// FindPiece returns the piece with the given id, dead or alive, or nil.
func (s *Snapshot) FindPiece(id string) *Piece {
	for i := range s.Rosters {
		pieces := s.Rosters[i].Pieces
		for j := range pieces {
			if pieces[j].ID == id {
				return &pieces[j]
			}
		}
	}
	return nil
}

func (s *Snapshot) removeDead() {
	for i := range s.Rosters {
		s.Rosters[i].Pieces = slices.DeleteFunc(s.Rosters[i].Pieces, func(p Piece) bool {
			return !p.Alive()
		})
	}
}

// Winner returns the side that has eliminated the opposing king or every
// opposing non-king piece. Player 1 is checked first.
func (s *Snapshot) Winner() Player {
	if s.Phase != Play && s.Phase != Finished {
		return NoPlayer
	}
	for _, p := range []Player{Player1, Player2} {
		king, fighters := false, 0
		for _, piece := range s.Living(p.Opponent()) {
			if piece.IsKing {
				king = true
			} else {
				fighters++
			}
		}
		if !king || fighters == 0 {
			return p
		}
	}
	return NoPlayer
}

// CheckWin finishes the game if a side has won.
func (s *Snapshot) CheckWin() (Player, bool) {
	winner := s.Winner()
	if winner == NoPlayer {
		return NoPlayer, false
	}
	s.Phase = Finished
	return winner, true
}

// Hash identifies a position. Piece ids are excluded so equal boards reached
// by different games hash the same.
func (s Snapshot) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%d|%d", s.CurrentPlayer, s.Dice, s.Phase)
	for _, roster := range s.Rosters {
		for _, p := range roster.Pieces {
			fmt.Fprintf(h, "|%d:%d:%d,%d:%d", p.Owner, p.Type, p.Cell.Row, p.Cell.Col, p.HP)
		}
	}
	return h.Sum64()
}

// PlacementState tracks the active placement segment.
type PlacementState struct {
	Owner   Player      `json:"owner"`
	Pending []Archetype `json:"pending"`
}

func (p PlacementState) Remaining() int {
	return len(p.Pending)
}

// GameState is the canonical live game. Only the turn operations in this
// package mutate it.
type GameState struct {
	Snapshot
	Multiplier    int            `json:"multiplier"`
	SelectedID    string         `json:"selectedId,omitempty"`
	Choices       [2][]Archetype `json:"choices"`
	Placement     PlacementState `json:"placement"`
	ActionLocked  bool           `json:"actionLocked"`
	AttackPending bool           `json:"attackPending"`
	MovedID       string         `json:"movedId,omitempty"`
	Result        Player         `json:"winner"`
}

func NewGameState() *GameState {
	return &GameState{
		Snapshot:   NewSnapshot(),
		Multiplier: 1,
	}
}

// View returns an independent copy of the AI-visible part of the game.
func (gs *GameState) View() Snapshot {
	return gs.Snapshot.Clone()
}

func (gs *GameState) Copy() *GameState {
	c := *gs
	c.Snapshot = gs.Snapshot.Clone()
	for i := range gs.Choices {
		c.Choices[i] = slices.Clone(gs.Choices[i])
	}
	c.Placement.Pending = slices.Clone(gs.Placement.Pending)
	return &c
}
