package game

import "errors"

var (
	ErrWrongPhase        = errors.New("operation not allowed in the current phase")
	ErrGameOver          = errors.New("game is over")
	ErrRosterSize        = errors.New("a roster must hold exactly 4 non-king pieces")
	ErrKingInRoster      = errors.New("the king is added automatically and cannot be chosen")
	ErrUnknownArchetype  = errors.New("unknown archetype")
	ErrOutOfBounds       = errors.New("cell is outside the board")
	ErrOutOfBand         = errors.New("cell is outside the placer's back two rows")
	ErrOccupied          = errors.New("cell is occupied")
	ErrPlacementPending  = errors.New("placement is not complete")
	ErrNotRolled         = errors.New("dice have not been rolled")
	ErrAlreadyRolled     = errors.New("dice already rolled this turn")
	ErrTurnForfeited     = errors.New("rolled a 6, the turn is forfeited")
	ErrActionLocked      = errors.New("another piece already acted this turn")
	ErrUnknownPiece      = errors.New("unknown piece")
	ErrNotYourPiece      = errors.New("piece does not belong to the current player")
	ErrFriendlyTarget    = errors.New("cannot attack a friendly piece")
	ErrUnreachable       = errors.New("destination is not reachable")
	ErrOutOfRange        = errors.New("target is out of range")
	ErrInvalidMultiplier = errors.New("damage multiplier must be at least 1")
	ErrIllegalAction     = errors.New("action is not legal in this state")
)
