package game

import "fmt"

// BaseDamage is the damage an archetype deals at a distance before any
// dice multiplier. Zero means the target is out of range.
func BaseDamage(a Archetype, distance int) int {
	if distance == 1 {
		return 3
	}
	if a == Gunslinger && distance >= 2 && distance <= 3 {
		return 2
	}
	return 0
}

// MultiplierFor returns the damage multiplier a roll opens.
func MultiplierFor(dice int) int {
	switch dice {
	case 4:
		return 2
	case 5:
		return 3
	}
	return 1
}

type InRange struct {
	Target   *Piece
	Distance int
	Damage   int // before multiplier
}

// EnemiesInRange lists the living enemies p could hit standing on from.
func (s *Snapshot) EnemiesInRange(p Piece, from Cell) []InRange {
	var enemies []InRange
	for _, e := range s.Living(p.Owner.Opponent()) {
		dist := e.Cell.DistanceTo(from)
		if dmg := BaseDamage(p.Type, dist); dmg > 0 {
			enemies = append(enemies, InRange{Target: e, Distance: dist, Damage: dmg})
		}
	}
	return enemies
}

// ThreatCount counts the enemies of owner able to attack c.
func (s *Snapshot) ThreatCount(owner Player, c Cell) int {
	count := 0
	for _, e := range s.Living(owner.Opponent()) {
		if BaseDamage(e.Type, e.Cell.DistanceTo(c)) > 0 {
			count++
		}
	}
	return count
}

type AttackResult struct {
	AttackerID string `json:"attackerId"`
	TargetID   string `json:"targetId"`
	Damage     int    `json:"damage"`
	Eliminated bool   `json:"eliminated"`
	Winner     Player `json:"winner"`
}

// ResolveAttack applies one attack. Dead targets leave their roster and the
// win condition is evaluated before returning.
func (s *Snapshot) ResolveAttack(attackerID, targetID string, multiplier int) (AttackResult, error) {
	if multiplier < 1 {
		return AttackResult{}, fmt.Errorf("cannot attack with multiplier %d: %w", multiplier, ErrInvalidMultiplier)
	}
	attacker := s.FindPiece(attackerID)
	if attacker == nil || !attacker.Alive() {
		return AttackResult{}, fmt.Errorf("cannot attack with %q: %w", attackerID, ErrUnknownPiece)
	}
	target := s.FindPiece(targetID)
	if target == nil || !target.Alive() {
		return AttackResult{}, fmt.Errorf("cannot attack %q: %w", targetID, ErrUnknownPiece)
	}
	if target.Owner == attacker.Owner {
		return AttackResult{}, fmt.Errorf("cannot attack %s: %w", target, ErrFriendlyTarget)
	}
	base := BaseDamage(attacker.Type, attacker.Cell.DistanceTo(target.Cell))
	if base == 0 {
		return AttackResult{}, fmt.Errorf("cannot attack %s from %s: %w", target, attacker.Cell, ErrOutOfRange)
	}

	result := AttackResult{AttackerID: attackerID, TargetID: targetID, Damage: base * multiplier}
	target.HP -= result.Damage
	if !target.Alive() {
		result.Eliminated = true
		s.removeDead()
	}
	result.Winner, _ = s.CheckWin()
	return result, nil
}
