package agent

import (
	"kotw/experiments/metrics"
	"kotw/game"
	"kotw/searcher"
)

const DefaultIterations = 160

type SearchConfig struct {
	Iterations  int
	Goroutines  int
	Cutoff      int
	Exploration float64
	Seed        uint64
}

func (c SearchConfig) withDefaults() SearchConfig {
	if c.Iterations <= 0 {
		c.Iterations = DefaultIterations
	}
	if c.Goroutines <= 0 {
		c.Goroutines = 1
	}
	if c.Cutoff <= 0 {
		c.Cutoff = searcher.DefaultCutoff
	}
	if c.Exploration <= 0 {
		c.Exploration = searcher.C
	}
	return c
}

// Search plays the most visited action of an MCTS run.
type Search struct {
	config SearchConfig
	mcts   *searcher.MCTS
	last   metrics.SearchMetric
}

func NewSearch(cfg SearchConfig) *Search {
	cfg = cfg.withDefaults()
	options := []searcher.Option{
		searcher.WithCutoff(cfg.Cutoff),
		searcher.WithExploration(cfg.Exploration),
		searcher.WithMetrics(),
	}
	if cfg.Seed != 0 {
		options = append(options, searcher.WithSeed(cfg.Seed))
	}
	return &Search{
		config: cfg,
		mcts:   searcher.NewMCTS(cfg.Goroutines, options...),
	}
}

func (s *Search) Name() string { return Medium.String() }

func (s *Search) Config() SearchConfig { return s.config }

func (s *Search) ChooseAction(state game.Snapshot, player game.Player) (game.Action, bool) {
	stats, metric := s.mcts.Simulate(state, player, s.config.Iterations)
	s.last = metric
	return searcher.Best(stats)
}

func (s *Search) LastMetric() metrics.SearchMetric {
	return s.last
}
