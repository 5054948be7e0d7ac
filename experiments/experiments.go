package experiments

import (
	"fmt"

	"kotw/agent"
	"kotw/engine"
	"kotw/experiments/metrics"
	"kotw/game"
	"kotw/meta"

	"github.com/rs/zerolog/log"
)

// Options control an arena experiment.
type Options struct {
	Games      int   // per matchup
	MaxTurns   int   // per game
	Budgets    []int // medium agent iteration budgets
	Goroutines []int // parallel trees compared by RunParallelizationExperiment
	Cutoff     int
	OutputDir  string
	Seed       uint64 // game i of the experiment is seeded with Seed+i
}

func (o Options) withDefaults() Options {
	if o.Games <= 0 {
		o.Games = meta.NUM_GAMES
	}
	if o.MaxTurns <= 0 {
		o.MaxTurns = meta.MAX_TURNS
	}
	if len(o.Budgets) == 0 {
		o.Budgets = []int{40, meta.ITERATIONS, 640}
	}
	if len(o.Goroutines) == 0 {
		o.Goroutines = []int{1, 2, meta.GO_ROUTINES, 8}
	}
	if o.Cutoff <= 0 {
		o.Cutoff = meta.WITH_CUTOFF
	}
	if o.OutputDir == "" {
		o.OutputDir = "experiments/results"
	}
	if o.Seed == 0 {
		o.Seed = 1
	}
	return o
}

// RunDifficultyExperiment pits the greedy agent against the search agent at
// each iteration budget, in both seat orders. It returns the results
// directory.
func RunDifficultyExperiment(opts Options) (string, error) {
	opts = opts.withDefaults()
	baseline := metrics.AgentConfig{ID: 0, Difficulty: agent.Easy.String()}
	configs := []metrics.AgentConfig{baseline}
	var matchUps []metrics.MatchUp
	for i, budget := range opts.Budgets {
		config := metrics.AgentConfig{
			ID:         i + 1,
			Difficulty: agent.Medium.String(),
			Iterations: budget,
			Goroutines: 1,
			Cutoff:     opts.Cutoff,
		}
		configs = append(configs, config)
		matchUps = append(matchUps,
			metrics.MatchUp{Player1: baseline.ID, Player2: config.ID},
			metrics.MatchUp{Player1: config.ID, Player2: baseline.ID},
		)
	}
	return runExperiment("difficulty", opts, configs, matchUps)
}

// RunParallelizationExperiment pits sequential search against root
// parallel search with the same total iterations.
func RunParallelizationExperiment(opts Options) (string, error) {
	opts = opts.withDefaults()
	baseline := metrics.AgentConfig{ID: 0, Difficulty: agent.Medium.String(), Iterations: meta.ITERATIONS, Goroutines: 1, Cutoff: opts.Cutoff}
	configs := []metrics.AgentConfig{baseline}
	var matchUps []metrics.MatchUp
	for i, goroutines := range opts.Goroutines {
		config := baseline
		config.ID = i + 1
		config.Goroutines = goroutines
		configs = append(configs, config)
		matchUps = append(matchUps,
			metrics.MatchUp{Player1: baseline.ID, Player2: config.ID},
			metrics.MatchUp{Player1: config.ID, Player2: baseline.ID},
		)
	}
	return runExperiment("parallelization", opts, configs, matchUps)
}

func runExperiment(name string, opts Options, configs []metrics.AgentConfig, matchUps []metrics.MatchUp) (string, error) {
	byID := make(map[int]metrics.AgentConfig, len(configs))
	for _, c := range configs {
		byID[c.ID] = c
	}

	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}
	wins := map[int]int{}

	log.Info().Msgf("starting %s experiment...", name)

	for mi, matchUp := range matchUps {
		config1, config2 := byID[matchUp.Player1], byID[matchUp.Player2]
		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(matchUps), config1, config2)

		for i := 0; i < opts.Games; i++ {
			seed := opts.Seed + uint64(count)
			agents := [2]agent.Agent{createAgent(config1, seed), createAgent(config2, seed)}
			e := engine.LocalEngine(agents, engine.WithSeed(seed), engine.WithMaxTurns(opts.MaxTurns))

			winner, gameMetric, moveMetrics := e.Run()
			count++
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     config1.ID,
				Agent2:     config2.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{Game: count, MoveMetric: mm})
			}
			switch winner {
			case game.Player1:
				wins[config1.ID]++
			case game.Player2:
				wins[config2.ID]++
			}

			log.Debug().Msgf("completed matchup %d game %d with winner %d after %d turns", mi+1, i+1, winner, gameMetric.Turns)
		}
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(matchUps))
	}

	for _, c := range configs {
		log.Info().Int("agent", c.ID).Str("difficulty", c.Difficulty).Int("iterations", c.Iterations).
			Int("goroutines", c.Goroutines).Int("wins", wins[c.ID]).Msg("result")
	}
	log.Info().Msgf("completed %s experiment", name)

	writer, err := metrics.NewWriter(opts.OutputDir, name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	setup := metrics.Setup{
		Name:     name,
		Games:    opts.Games,
		MaxTurns: opts.MaxTurns,
		Seed:     opts.Seed,
		Agents:   configs,
		MatchUps: matchUps,
	}
	if err := writer.WriteSetup(setup); err != nil {
		return "", err
	}
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Str("dir", writer.Dir()).Msg("stored experiment results")
	return writer.Dir(), nil
}

func createAgent(config metrics.AgentConfig, seed uint64) agent.Agent {
	d, err := agent.ParseDifficulty(config.Difficulty)
	if err != nil {
		log.Warn().Err(err).Msg("using the easy agent")
	}
	return agent.New(d, agent.SearchConfig{
		Iterations: config.Iterations,
		Goroutines: config.Goroutines,
		Cutoff:     config.Cutoff,
		Seed:       seed,
	})
}
