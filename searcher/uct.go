package searcher

import "math"

const (
	// C is the exploration constant.
	C = 1.4

	Win  = 1.0
	Draw = 0.5
	Loss = 0.0

	DefaultCutoff = 40
)

// uct scores a child. Unvisited children count as visited once.
func uct(value float64, visits, parentVisits int, c float64) float64 {
	n := float64(max(visits, 1))
	return value/n + c*math.Sqrt(math.Log(float64(parentVisits)+1)/n)
}
