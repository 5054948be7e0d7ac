package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kotw/agent"
	"kotw/communication/server"
	"kotw/config"
	"kotw/experiments"
	"kotw/game"
	"kotw/gamemaster"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	mode := flag.String("mode", "serve", "serve | arena")
	configPath := flag.String("config", "", "path to a config file")
	experiment := flag.String("experiment", "difficulty", "arena experiment: difficulty | parallelization")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	cfg := config.Get()
	setupLogging(cfg.Server)
	if path := config.ConfigFilePath(); path != "" {
		log.Info().Str("path", path).Msg("loaded config file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "serve":
		serve(ctx, cfg)
	case "arena":
		runArena(cfg, *experiment)
	default:
		log.Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}

func setupLogging(cfg config.ServerConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	})
}

// liveAgent builds the AI for the live game from config.
func liveAgent(cfg *config.Config) agent.Agent {
	if cfg.Game.AgentURL != "" {
		return agent.NewRemote(cfg.Game.AgentURL)
	}
	d, err := agent.ParseDifficulty(cfg.Game.Difficulty)
	if err != nil {
		log.Warn().Err(err).Msg("using the easy agent")
	}
	return agent.New(d, agent.SearchConfig{
		Iterations:  cfg.Search.Iterations,
		Goroutines:  cfg.Search.Goroutines,
		Cutoff:      cfg.Search.Cutoff,
		Exploration: cfg.Search.Exploration,
	})
}

// localAgent answers remote agents. It never forwards to another process.
func localAgent(cfg *config.Config) agent.Agent {
	local := *cfg
	local.Game.AgentURL = ""
	return liveAgent(&local)
}

func serve(ctx context.Context, cfg *config.Config) {
	gm := gamemaster.New(gamemaster.Options{
		AIPlayer:   game.Player(cfg.Game.AIPlayer),
		Agent:      liveAgent(cfg),
		AIDelay:    cfg.Game.AIDelay,
		SkipDelay:  cfg.Game.SkipDelay,
		ReadyDelay: cfg.Game.ReadyDelay,
	})
	srv := server.New(gm, localAgent(cfg))

	if config.ConfigFilePath() != "" {
		config.WatchConfig(func(c *config.Config) {
			log.Info().Str("difficulty", c.Game.Difficulty).Msg("config reloaded")
			gm.SetAgent(liveAgent(c))
			srv.SetAgent(localAgent(c))
		}, func(err error) {
			log.Error().Err(err).Msg("keeping previous config")
		})
	}

	if err := srv.ListenAndServe(ctx, cfg.Server.Addr()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server shutdown complete")
}

func runArena(cfg *config.Config, experiment string) {
	opts := experiments.Options{
		Games:     cfg.Arena.Games,
		MaxTurns:  cfg.Arena.MaxTurns,
		Budgets:   []int{cfg.Search.Iterations / 4, cfg.Search.Iterations, cfg.Search.Iterations * 4},
		Cutoff:    cfg.Search.Cutoff,
		OutputDir: cfg.Arena.OutputDir,
	}

	var (
		dir string
		err error
	)
	switch experiment {
	case "difficulty":
		dir, err = experiments.RunDifficultyExperiment(opts)
	case "parallelization":
		dir, err = experiments.RunParallelizationExperiment(opts)
	default:
		log.Fatal().Str("experiment", experiment).Msg("unknown experiment")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("experiment failed")
	}
	log.Info().Str("dir", dir).Msg("experiment complete")
}
