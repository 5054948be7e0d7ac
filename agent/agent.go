package agent

import (
	"errors"
	"fmt"
	"strings"

	"kotw/experiments/metrics"
	"kotw/game"
)

// Agent picks one action for player from a read-only snapshot.
type Agent interface {
	Name() string
	ChooseAction(state game.Snapshot, player game.Player) (game.Action, bool)
}

// Reporter is implemented by agents that measure their own searches.
type Reporter interface {
	LastMetric() metrics.SearchMetric
}

type Difficulty int

const (
	Easy Difficulty = iota
	Medium
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	}
	return Easy, fmt.Errorf("cannot parse %q: %w", s, ErrUnknownDifficulty)
}

func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// New builds the agent for a difficulty. Unknown values get the greedy agent.
func New(d Difficulty, cfg SearchConfig) Agent {
	if d == Medium {
		return NewSearch(cfg)
	}
	return NewGreedy()
}
