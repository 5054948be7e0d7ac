package agent

import (
	"math"

	"kotw/game"
)

// Greedy scores every legal action one ply deep and plays the best one.
// It has no randomness: ties go to the first action enumerated.
type Greedy struct{}

func NewGreedy() *Greedy {
	return &Greedy{}
}

func (g *Greedy) Name() string { return Easy.String() }

func (g *Greedy) ChooseAction(state game.Snapshot, player game.Player) (game.Action, bool) {
	s := state.Clone()
	multiplier := game.MultiplierFor(s.Dice)

	var best game.Action
	found, bestScore := false, 0
	for _, a := range s.LegalActions(player) {
		if score := Score(&s, a, multiplier); !found || score > bestScore {
			best, bestScore, found = a, score, true
		}
	}
	return best, found
}

// Score rates an action: damage dealt, a kill bonus, exposure of the
// resulting cell, closeness to the enemy king and a bias towards moving.
func Score(s *game.Snapshot, a game.Action, multiplier int) int {
	p := s.FindPiece(a.PieceID)
	if p == nil {
		return math.MinInt
	}
	from := p.Cell
	if a.Move != nil {
		from = *a.Move
	}

	score := 0
	if target := s.FindPiece(a.TargetID); target != nil {
		dmg := game.BaseDamage(p.Type, from.DistanceTo(target.Cell)) * multiplier
		score += dmg * 10
		if target.HP <= dmg {
			score += 50
		}
	}

	score -= s.ThreatCount(p.Owner, from) * 6

	nearest := -1
	for _, e := range s.Living(p.Owner.Opponent()) {
		if d := e.Cell.DistanceTo(from); e.IsKing && (nearest < 0 || d < nearest) {
			nearest = d
		}
	}
	if nearest >= 0 {
		score += 10 - nearest
	}

	if a.Move != nil {
		score++
	}
	return score
}
