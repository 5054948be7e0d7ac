package game

import "fmt"

const (
	Rows = 6
	Cols = 6
)

// Cell is a (row, col) position on the board. Row 0 is player 2's edge.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Orthogonal step order used by every traversal.
var directions = [4]Cell{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

func (c Cell) InBounds() bool {
	return c.Row >= 0 && c.Row < Rows && c.Col >= 0 && c.Col < Cols
}

// DistanceTo returns the Manhattan distance between two cells.
func (c Cell) DistanceTo(other Cell) int {
	return abs(c.Row-other.Row) + abs(c.Col-other.Col)
}

// Neighbors returns the in-bounds orthogonal neighbours of c.
func (c Cell) Neighbors() []Cell {
	neighbors := make([]Cell, 0, len(directions))
	for _, d := range directions {
		n := Cell{Row: c.Row + d.Row, Col: c.Col + d.Col}
		if n.InBounds() {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// HomeCell is where a player's king is dropped when its placement segment begins.
func HomeCell(p Player) Cell {
	if p == Player1 {
		return Cell{Row: Rows - 1, Col: 0}
	}
	return Cell{Row: 0, Col: Cols - 1}
}

// InBand reports whether c lies in the two back rows of player p.
func InBand(p Player, c Cell) bool {
	if !c.InBounds() {
		return false
	}
	if p == Player1 {
		return c.Row >= Rows-2
	}
	return c.Row <= 1
}

// BandCells lists the cells of p's back rows in row-major order.
func BandCells(p Player) []Cell {
	cells := make([]Cell, 0, 2*Cols)
	for r := 0; r < Rows; r++ {
		for col := 0; col < Cols; col++ {
			if c := (Cell{Row: r, Col: col}); InBand(p, c) {
				cells = append(cells, c)
			}
		}
	}
	return cells
}
