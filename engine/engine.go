package engine

import (
	"kotw/experiments/metrics"
	"kotw/game"
)

type Engine interface {
	// Run plays one game until there's a winner or the turn cap is reached
	Run() (winner game.Player, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric)
}
