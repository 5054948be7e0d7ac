package game

// StepBudget is how many orthogonal steps a roll allows.
func StepBudget(dice int) int {
	switch {
	case dice >= 1 && dice <= 3:
		return dice
	case dice == 4 || dice == 5:
		return 1
	}
	return 0
}

// ReachableCells runs a breadth-first search from p's cell. Occupied cells
// block passage. The origin is never part of the result, which is ordered
// by discovery.
func (s *Snapshot) ReachableCells(p Piece, steps int) []Cell {
	type frontier struct {
		cell Cell
		dist int
	}

	reachable := []Cell{}
	if steps <= 0 {
		return reachable
	}

	seen := map[Cell]bool{p.Cell: true}
	queue := []frontier{{cell: p.Cell}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range cur.cell.Neighbors() {
			if seen[next] {
				continue
			}
			seen[next] = true
			if s.OccupantAt(next) != nil || cur.dist+1 > steps {
				continue
			}
			reachable = append(reachable, next)
			queue = append(queue, frontier{cell: next, dist: cur.dist + 1})
		}
	}
	return reachable
}
