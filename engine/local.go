package engine

import (
	"fmt"
	"time"

	"kotw/agent"
	"kotw/experiments/metrics"
	"kotw/game"
	"kotw/meta"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option func(e *Local)

var _ Engine = (*Local)(nil)

// Local plays AI against AI on the live rules: the same roll, choose and
// apply path the game master drives, without delays.
type Local struct {
	agents   [2]agent.Agent
	state    *game.GameState
	maxTurns int
	rng      *rand.Rand
	die      game.Roller
	offer    []game.Archetype
	logger   zerolog.Logger
}

func WithMaxTurns(n int) Option {
	return func(e *Local) {
		if n > 0 {
			e.maxTurns = n
		}
	}
}

// WithSeed fixes rosters, placement and dice.
func WithSeed(seed uint64) Option {
	return func(e *Local) {
		e.rng = rand.New(rand.NewSource(seed))
		e.die = game.NewDie(e.rng)
	}
}

func WithDie(d game.Roller) Option {
	return func(e *Local) {
		e.die = d
	}
}

func LocalEngine(agents [2]agent.Agent, options ...Option) *Local {
	if agents[0] == nil || agents[1] == nil {
		panic("need an agent for each player")
	}
	e := &Local{
		agents:   agents,
		state:    game.NewGameState(),
		maxTurns: meta.MAX_TURNS,
		offer:    game.DefaultOffer,
		logger:   log.With().Str("component", "engine").Logger(),
	}
	for _, option := range options {
		option(e)
	}
	if e.rng == nil {
		e.rng = game.NewRand()
	}
	if e.die == nil {
		e.die = game.NewDie(e.rng)
	}
	return e
}

// State returns a copy of the game as it stands.
func (e *Local) State() *game.GameState {
	return e.state.Copy()
}

// Run plays a single game. A second call reports the setup error and no
// winner.
func (e *Local) Run() (game.Player, metrics.GameMetric, []metrics.MoveMetric) {
	gameMetric := metrics.GameMetric{StartTime: time.Now()}
	defer func() {
		gameMetric.EndTime = time.Now()
		gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	}()

	if err := e.setup(); err != nil {
		e.logger.Error().Err(err).Msg("cannot set up game")
		return game.NoPlayer, gameMetric, nil
	}
	gameMetric.StartingPlayer = int(e.state.CurrentPlayer)
	e.logger.Debug().Msgf("player %d is starting", e.state.CurrentPlayer)

	var moveMetrics []metrics.MoveMetric
	for e.state.Phase == game.Play && gameMetric.Turns < e.maxTurns {
		gameMetric.Turns++
		mm, err := e.turn(gameMetric.Turns)
		if err != nil {
			e.logger.Error().Err(err).Msg("cannot continue game")
			break
		}
		moveMetrics = append(moveMetrics, mm)
	}

	winner := e.state.Result
	gameMetric.Winner = int(winner)
	if winner == game.NoPlayer {
		e.logger.Debug().Msgf("stopped after %d turns (no winner)", gameMetric.Turns)
	} else {
		e.logger.Debug().Msgf("player %d wins after %d turns", winner, gameMetric.Turns)
	}
	return winner, gameMetric, moveMetrics
}

func (e *Local) setup() error {
	rosters := [2][]game.Archetype{
		game.RandomRoster(e.rng, e.offer),
		game.RandomRoster(e.rng, e.offer),
	}
	if err := e.state.StartPlacement(rosters[0], rosters[1]); err != nil {
		return err
	}
	for !e.state.PlacementDone() {
		if _, err := e.state.AutoPlace(e.rng); err != nil {
			return err
		}
	}
	_, err := e.state.DecideFirstPlayer(e.die)
	return err
}

// turn rolls for the current player and applies its agent's action. An
// agent that fails or picks an illegal action forfeits the turn.
func (e *Local) turn(step int) (metrics.MoveMetric, error) {
	player := e.state.CurrentPlayer
	a := e.agents[player-1]

	dice, err := e.state.RollTurnDice(e.die)
	if err != nil {
		return metrics.MoveMetric{}, err
	}
	mm := metrics.MoveMetric{Step: step, Player: int(player), Dice: dice, Agent: a.Name()}
	if dice == 6 {
		return mm, e.state.EndTurn()
	}

	action, ok, err := choose(a, e.state.View(), player)
	if r, isReporter := a.(agent.Reporter); isReporter {
		mm.SearchMetric = r.LastMetric()
	}
	if err == nil && !ok {
		err = fmt.Errorf("no action with dice %d", dice)
	}
	if err == nil {
		err = e.state.ApplyAction(action)
	}
	if err != nil {
		e.logger.Warn().Err(err).Str("agent", a.Name()).Int("player", int(player)).Msg("ending turn")
		if e.state.Phase == game.Play && e.state.CurrentPlayer == player {
			return mm, e.state.EndTurn()
		}
	}
	return mm, nil
}

func choose(a agent.Agent, s game.Snapshot, p game.Player) (action game.Action, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent %s panicked: %v", a.Name(), r)
		}
	}()
	action, ok = a.ChooseAction(s, p)
	return action, ok, nil
}
