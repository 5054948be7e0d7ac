package game

import (
	"fmt"

	"github.com/google/uuid"
)

// Player identifies a side. The zero value means no player.
type Player int

const (
	NoPlayer Player = 0
	Player1  Player = 1
	Player2  Player = 2
)

func (p Player) Opponent() Player {
	if p == Player1 {
		return Player2
	}
	return Player1
}

func (p Player) Valid() bool {
	return p == Player1 || p == Player2
}

type Archetype int

const (
	King Archetype = iota
	Gunslinger
	Bruiser
)

var archetypeNames = map[Archetype]string{
	King:       "king",
	Gunslinger: "gunslinger",
	Bruiser:    "bruiser",
}

func (a Archetype) String() string {
	if name, ok := archetypeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("archetype(%d)", int(a))
}

func ParseArchetype(s string) (Archetype, error) {
	for a, name := range archetypeNames {
		if name == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("cannot parse %q: %w", s, ErrUnknownArchetype)
}

func (a Archetype) MarshalText() ([]byte, error) {
	if _, ok := archetypeNames[a]; !ok {
		return nil, fmt.Errorf("cannot marshal archetype %d: %w", int(a), ErrUnknownArchetype)
	}
	return []byte(a.String()), nil
}

func (a *Archetype) UnmarshalText(text []byte) error {
	parsed, err := ParseArchetype(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// BaseHP is the hit points a freshly placed piece starts with.
func (a Archetype) BaseHP() int {
	switch a {
	case King:
		return 10
	case Gunslinger:
		return 7
	case Bruiser:
		return 8
	}
	return 0
}

type Piece struct {
	ID     string    `json:"id"`
	Owner  Player    `json:"owner"`
	Type   Archetype `json:"type"`
	Cell   Cell      `json:"cell"`
	HP     int       `json:"hp"`
	IsKing bool      `json:"isKing"`
}

func NewPiece(owner Player, a Archetype, cell Cell) Piece {
	return Piece{
		ID:     uuid.NewString(),
		Owner:  owner,
		Type:   a,
		Cell:   cell,
		HP:     a.BaseHP(),
		IsKing: a == King,
	}
}

func (p Piece) Alive() bool {
	return p.HP > 0
}

func (p Piece) String() string {
	return fmt.Sprintf("Player %d's %s", p.Owner, p.Type)
}
