package game

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Action is one piece's turn: an optional move followed by an optional
// attack. An action with neither is a pass.
type Action struct {
	PieceID  string `json:"pieceId"`
	Move     *Cell  `json:"move,omitempty"`
	TargetID string `json:"targetId,omitempty"`
}

func (a Action) IsPass() bool {
	return a.Move == nil && a.TargetID == ""
}

// Key is a comparable identity for the action.
func (a Action) Key() string {
	var b strings.Builder
	b.WriteString(a.PieceID)
	b.WriteByte('|')
	if a.Move != nil {
		b.WriteString(a.Move.String())
	}
	b.WriteByte('|')
	b.WriteString(a.TargetID)
	return b.String()
}

func (a Action) Equal(other Action) bool {
	return a.Key() == other.Key()
}

func (a Action) String() string {
	move, target := "stay", "no attack"
	if a.Move != nil {
		move = "move to " + a.Move.String()
	}
	if a.TargetID != "" {
		target = "attack " + a.TargetID
	}
	return fmt.Sprintf("%s: %s, %s", a.PieceID, move, target)
}

// LegalActions enumerates player's actions under the rolled dice. For each
// living piece: attacks from its cell, then every reachable cell followed by
// staying put, each paired with every target in range from there or alone
// when none is. No action is legal before a roll or after a 6.
func (s *Snapshot) LegalActions(player Player) []Action {
	if s.Phase != Play || s.Dice < 1 || s.Dice > 5 || !player.Valid() {
		return nil
	}

	var actions []Action
	budget := StepBudget(s.Dice)
	for _, p := range s.Living(player) {
		piece := *p
		for _, e := range s.EnemiesInRange(piece, piece.Cell) {
			actions = append(actions, Action{PieceID: piece.ID, TargetID: e.Target.ID})
		}
		if budget == 0 {
			continue
		}

		destinations := s.ReachableCells(piece, budget)
		for i := 0; i <= len(destinations); i++ {
			var move *Cell
			from := piece.Cell
			if i < len(destinations) {
				dest := destinations[i]
				move, from = &dest, dest
			}
			enemies := s.EnemiesInRange(piece, from)
			if len(enemies) == 0 {
				actions = append(actions, Action{PieceID: piece.ID, Move: move})
				continue
			}
			for _, e := range enemies {
				actions = append(actions, Action{PieceID: piece.ID, Move: move, TargetID: e.Target.ID})
			}
		}
	}
	return actions
}

func (s *Snapshot) IsLegal(a Action) bool {
	return slices.ContainsFunc(s.LegalActions(s.CurrentPlayer), a.Equal)
}

// Play returns the state after the current player performs a. The receiver
// is left untouched. Play panics if a cannot be applied; callers pass only
// actions taken from LegalActions.
func (s Snapshot) Play(a Action) Snapshot {
	next := s.Clone()
	if err := next.apply(a); err != nil {
		panic(fmt.Sprintf("cannot play %s: %v", a, err))
	}
	return next
}

// Apply is Play for actions of unknown origin.
func (s Snapshot) Apply(a Action) (Snapshot, error) {
	if !s.IsLegal(a) {
		return s, fmt.Errorf("cannot apply %s: %w", a, ErrIllegalAction)
	}
	return s.Play(a), nil
}

func (s *Snapshot) apply(a Action) error {
	piece := s.FindPiece(a.PieceID)
	if piece == nil || !piece.Alive() {
		return fmt.Errorf("piece %q: %w", a.PieceID, ErrUnknownPiece)
	}
	if a.Move != nil {
		piece.Cell = *a.Move
	}
	if a.TargetID != "" {
		if _, err := s.ResolveAttack(a.PieceID, a.TargetID, MultiplierFor(s.Dice)); err != nil {
			return err
		}
	}
	s.Dice = 0
	if s.Phase != Finished {
		s.CurrentPlayer = s.CurrentPlayer.Opponent()
	}
	return nil
}

// Forfeit passes the turn without acting.
func (s Snapshot) Forfeit() Snapshot {
	next := s.Clone()
	next.Dice = 0
	next.CurrentPlayer = next.CurrentPlayer.Opponent()
	return next
}
