package communication

import (
	"kotw/game"
	"kotw/gamemaster"
)

// Controller is the live game the bridge drives.
type Controller interface {
	Setup(choices1, choices2 []game.Archetype) error
	Place(c game.Cell) error
	Roll() (int, error)
	Select(id string) ([]string, error)
	Move(id string, dest game.Cell) error
	Attack(attackerID, targetID string) (game.AttackResult, error)
	EndTurn() error
	State() *game.GameState
	History() []string
	Subscribe() (<-chan gamemaster.Update, func())
}

var _ Controller = (*gamemaster.GameMaster)(nil)

type SetupRequest struct {
	Player1 []game.Archetype `json:"player1"`
	Player2 []game.Archetype `json:"player2"`
}

type SelectRequest struct {
	PieceID string `json:"pieceId"`
}

type MoveRequest struct {
	PieceID string    `json:"pieceId"`
	To      game.Cell `json:"to"`
}

type AttackRequest struct {
	AttackerID string `json:"attackerId"`
	TargetID   string `json:"targetId"`
}

// StateResponse answers every accepted request.
type StateResponse struct {
	State   *game.GameState    `json:"state"`
	Log     []string           `json:"log,omitempty"`
	Dice    int                `json:"dice,omitempty"`
	Targets []string           `json:"targets,omitempty"`
	Result  *game.AttackResult `json:"result,omitempty"`
}

// ErrorResponse answers a rejected request.
type ErrorResponse struct {
	Error string `json:"error"`
}
