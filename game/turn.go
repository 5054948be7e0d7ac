package game

import (
	"fmt"

	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
)

// RosterSize is the number of non-king pieces each player picks.
const RosterSize = 4

// DefaultOffer is the pick list presented to each player at setup.
var DefaultOffer = []Archetype{Gunslinger, Gunslinger, Gunslinger, Bruiser, Bruiser, Bruiser}

func ValidateRoster(choices []Archetype) error {
	if len(choices) != RosterSize {
		return fmt.Errorf("cannot accept %d pieces: %w", len(choices), ErrRosterSize)
	}
	for _, a := range choices {
		switch a {
		case Gunslinger, Bruiser:
		case King:
			return ErrKingInRoster
		default:
			return fmt.Errorf("cannot accept %s: %w", a, ErrUnknownArchetype)
		}
	}
	return nil
}

func ParseRoster(names []string) ([]Archetype, error) {
	roster := make([]Archetype, 0, len(names))
	for _, name := range names {
		a, err := ParseArchetype(name)
		if err != nil {
			return nil, err
		}
		roster = append(roster, a)
	}
	return roster, nil
}

// RandomRoster shuffles the offered picks and keeps the first four.
func RandomRoster(rng *rand.Rand, offer []Archetype) []Archetype {
	picks := slices.Clone(offer)
	rng.Shuffle(len(picks), func(i, j int) { picks[i], picks[j] = picks[j], picks[i] })
	if len(picks) > RosterSize {
		picks = picks[:RosterSize]
	}
	return picks
}

// StartPlacement records both rosters and opens player 1's placement segment.
func (gs *GameState) StartPlacement(choices1, choices2 []Archetype) error {
	if gs.Phase != Setup {
		return fmt.Errorf("cannot start placement in %s: %w", gs.Phase, ErrWrongPhase)
	}
	if err := ValidateRoster(choices1); err != nil {
		return fmt.Errorf("player 1 roster: %w", err)
	}
	if err := ValidateRoster(choices2); err != nil {
		return fmt.Errorf("player 2 roster: %w", err)
	}

	gs.Choices = [2][]Archetype{slices.Clone(choices1), slices.Clone(choices2)}
	gs.Phase = Placement
	gs.beginSegment(Player1)
	return nil
}

func (gs *GameState) beginSegment(p Player) {
	roster := gs.Roster(p)
	roster.Pieces = append(roster.Pieces, NewPiece(p, King, HomeCell(p)))
	gs.Placement = PlacementState{Owner: p, Pending: slices.Clone(gs.Choices[p-1])}
}

// PlacementDone reports whether both segments are complete.
func (gs *GameState) PlacementDone() bool {
	return gs.Phase == Placement && gs.Placement.Owner == NoPlayer
}

// ApplyPlacement drops the next pending piece of the active placer on c.
func (gs *GameState) ApplyPlacement(c Cell) (Piece, error) {
	if gs.Phase != Placement || gs.Placement.Remaining() == 0 {
		return Piece{}, fmt.Errorf("cannot place piece: %w", ErrWrongPhase)
	}
	owner := gs.Placement.Owner
	if !c.InBounds() {
		return Piece{}, fmt.Errorf("cannot place piece on %s: %w", c, ErrOutOfBounds)
	}
	if !InBand(owner, c) {
		return Piece{}, fmt.Errorf("cannot place piece on %s: %w", c, ErrOutOfBand)
	}
	if gs.OccupantAt(c) != nil {
		return Piece{}, fmt.Errorf("cannot place piece on %s: %w", c, ErrOccupied)
	}

	piece := NewPiece(owner, gs.Placement.Pending[0], c)
	roster := gs.Roster(owner)
	roster.Pieces = append(roster.Pieces, piece)
	gs.Placement.Pending = gs.Placement.Pending[1:]
	if gs.Placement.Remaining() == 0 {
		if owner == Player1 {
			gs.beginSegment(Player2)
		} else {
			gs.Placement = PlacementState{}
		}
	}
	return piece, nil
}

// AutoPlace fills the active placer's remaining queue onto shuffled empty
// cells of its band.
func (gs *GameState) AutoPlace(rng *rand.Rand) ([]Piece, error) {
	if gs.Phase != Placement || gs.Placement.Remaining() == 0 {
		return nil, fmt.Errorf("cannot auto-place: %w", ErrWrongPhase)
	}
	owner := gs.Placement.Owner
	var empty []Cell
	for _, c := range BandCells(owner) {
		if gs.OccupantAt(c) == nil {
			empty = append(empty, c)
		}
	}
	if len(empty) < gs.Placement.Remaining() {
		return nil, fmt.Errorf("cannot auto-place %d pieces on %d cells: %w", gs.Placement.Remaining(), len(empty), ErrOccupied)
	}
	rng.Shuffle(len(empty), func(i, j int) { empty[i], empty[j] = empty[j], empty[i] })

	placed := make([]Piece, 0, gs.Placement.Remaining())
	for i := 0; gs.Placement.Owner == owner && gs.Placement.Remaining() > 0; i++ {
		piece, err := gs.ApplyPlacement(empty[i])
		if err != nil {
			return placed, err
		}
		placed = append(placed, piece)
	}
	return placed, nil
}

type DuelRoll struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

// DecideFirstPlayer rolls for both players until the rolls differ and opens
// play for the higher roller. Every roll pair is returned.
func (gs *GameState) DecideFirstPlayer(d Roller) ([]DuelRoll, error) {
	if !gs.PlacementDone() {
		return nil, ErrPlacementPending
	}
	var rolls []DuelRoll
	for {
		r := DuelRoll{Player1: d.Roll(), Player2: d.Roll()}
		rolls = append(rolls, r)
		if r.Player1 != r.Player2 {
			break
		}
	}
	last := rolls[len(rolls)-1]
	gs.CurrentPlayer = Player1
	if last.Player2 > last.Player1 {
		gs.CurrentPlayer = Player2
	}
	gs.Phase = Play
	gs.resetTurn()
	return rolls, nil
}

func (gs *GameState) playable() error {
	switch gs.Phase {
	case Play:
		return nil
	case Finished:
		return ErrGameOver
	}
	return fmt.Errorf("%s: %w", gs.Phase, ErrWrongPhase)
}

// RollTurnDice rolls once for the current player and opens the roll's
// multiplier window.
func (gs *GameState) RollTurnDice(d Roller) (int, error) {
	if err := gs.playable(); err != nil {
		return 0, fmt.Errorf("cannot roll: %w", err)
	}
	if gs.Dice != 0 {
		return 0, fmt.Errorf("cannot roll: %w", ErrAlreadyRolled)
	}
	v := d.Roll()
	if v < 1 || v > 6 {
		return 0, fmt.Errorf("cannot roll: die returned %d", v)
	}
	gs.Dice = v
	gs.Multiplier = MultiplierFor(v)
	gs.SelectedID = ""
	gs.ActionLocked = false
	gs.AttackPending = false
	gs.MovedID = ""
	return v, nil
}

// actor validates that id names a living piece the current player may act
// with this turn.
func (gs *GameState) actor(id string) (*Piece, error) {
	if err := gs.playable(); err != nil {
		return nil, err
	}
	if gs.Dice == 0 {
		return nil, ErrNotRolled
	}
	if gs.Dice == 6 {
		return nil, ErrTurnForfeited
	}
	p := gs.FindPiece(id)
	if p == nil || !p.Alive() {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownPiece)
	}
	if p.Owner != gs.CurrentPlayer {
		return nil, fmt.Errorf("%s: %w", p, ErrNotYourPiece)
	}
	if gs.ActionLocked && p.ID != gs.MovedID {
		return nil, ErrActionLocked
	}
	return p, nil
}

// SelectPiece marks a piece as selected for presentation purposes.
func (gs *GameState) SelectPiece(id string) error {
	p, err := gs.actor(id)
	if err != nil {
		return fmt.Errorf("cannot select piece: %w", err)
	}
	if gs.ActionLocked {
		return fmt.Errorf("cannot select piece: %w", ErrActionLocked)
	}
	gs.SelectedID = p.ID
	return nil
}

// MovePiece moves a piece within the roll's step budget. The turn ends at
// once when no enemy is in range of the destination. It reports whether
// the turn ended.
func (gs *GameState) MovePiece(id string, dest Cell) (bool, error) {
	p, err := gs.actor(id)
	if err != nil {
		return false, fmt.Errorf("cannot move piece: %w", err)
	}
	if gs.ActionLocked {
		return false, fmt.Errorf("cannot move piece: %w", ErrActionLocked)
	}
	if !slices.Contains(gs.ReachableCells(*p, StepBudget(gs.Dice)), dest) {
		return false, fmt.Errorf("cannot move %s to %s: %w", p, dest, ErrUnreachable)
	}

	p.Cell = dest
	gs.ActionLocked = true
	gs.MovedID = p.ID
	gs.SelectedID = p.ID
	if len(gs.EnemiesInRange(*p, dest)) == 0 {
		gs.finishTurn()
		return true, nil
	}
	gs.AttackPending = true
	return false, nil
}

// Attack resolves an attack with the open multiplier and ends the turn.
func (gs *GameState) Attack(attackerID, targetID string) (AttackResult, error) {
	if _, err := gs.actor(attackerID); err != nil {
		return AttackResult{}, fmt.Errorf("cannot attack: %w", err)
	}
	result, err := gs.ResolveAttack(attackerID, targetID, gs.Multiplier)
	if err != nil {
		return AttackResult{}, err
	}
	if result.Winner != NoPlayer {
		gs.Result = result.Winner
		gs.Dice = 0
		gs.resetTurn()
		return result, nil
	}
	gs.finishTurn()
	return result, nil
}

// EndTurn passes control to the other player.
func (gs *GameState) EndTurn() error {
	if err := gs.playable(); err != nil {
		return fmt.Errorf("cannot end turn: %w", err)
	}
	gs.finishTurn()
	return nil
}

func (gs *GameState) finishTurn() {
	gs.Dice = 0
	gs.CurrentPlayer = gs.CurrentPlayer.Opponent()
	gs.resetTurn()
}

func (gs *GameState) resetTurn() {
	gs.Multiplier = 1
	gs.SelectedID = ""
	gs.ActionLocked = false
	gs.AttackPending = false
	gs.MovedID = ""
}

// OfferedTargets lists the enemies a piece may be offered as targets. After
// a move only the destination counts. A 4 or 5 also offers targets reachable
// from every cell one step away.
func (gs *GameState) OfferedTargets(id string) ([]string, error) {
	p, err := gs.actor(id)
	if err != nil {
		return nil, fmt.Errorf("cannot list targets: %w", err)
	}
	origins := []Cell{p.Cell}
	if !gs.ActionLocked && (gs.Dice == 4 || gs.Dice == 5) {
		origins = append(origins, gs.ReachableCells(*p, 1)...)
	}

	var targets []string
	for _, from := range origins {
		for _, e := range gs.EnemiesInRange(*p, from) {
			if !slices.Contains(targets, e.Target.ID) {
				targets = append(targets, e.Target.ID)
			}
		}
	}
	return targets, nil
}

// ApplyAction performs an action chosen from the snapshot's legal set on the
// live game. Nothing changes when the action is not legal.
func (gs *GameState) ApplyAction(a Action) error {
	if err := gs.playable(); err != nil {
		return fmt.Errorf("cannot apply action: %w", err)
	}
	if gs.ActionLocked || !gs.IsLegal(a) {
		return fmt.Errorf("cannot apply %s: %w", a, ErrIllegalAction)
	}

	if a.Move != nil {
		ended, err := gs.MovePiece(a.PieceID, *a.Move)
		if err != nil {
			return err
		}
		if ended {
			return nil
		}
	}
	if a.TargetID != "" {
		_, err := gs.Attack(a.PieceID, a.TargetID)
		return err
	}
	gs.finishTurn()
	return nil
}
