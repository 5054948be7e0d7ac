package searcher

import (
	"sync"
	"time"

	"kotw/experiments/metrics"
	"kotw/game"

	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
)

type Option func(mcts *MCTS)

type MCTS struct {
	goroutines  int
	cutoff      int
	exploration float64
	seed        uint64
	metrics     metrics.Collector
}

// ActionStat is the merged statistics of one root action.
type ActionStat struct {
	Action game.Action
	Visits int
	Value  float64
}

func WithCutoff(depth int) Option {
	return func(m *MCTS) {
		if depth > 0 {
			m.cutoff = depth
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c > 0 {
			m.exploration = c
		}
	}
}

// WithSeed makes searches reproducible. Worker i draws from seed+i.
func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed = seed
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

// NewMCTS returns a searcher that splits its iterations over independent
// trees, one per goroutine, and merges them by summed visits.
func NewMCTS(goroutines int, options ...Option) *MCTS {
	m := &MCTS{ // Default values
		goroutines:  max(goroutines, 1),
		cutoff:      DefaultCutoff,
		exploration: C,
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// ChooseAction returns the most visited root action for player, or false
// when player has no legal action in state.
func (m *MCTS) ChooseAction(state game.Snapshot, player game.Player, iterations int) (game.Action, bool) {
	stats, _ := m.Simulate(state, player, iterations)
	return Best(stats)
}

// Simulate runs the search and returns per-action statistics in the order
// LegalActions enumerates them.
func (m *MCTS) Simulate(state game.Snapshot, player game.Player, iterations int) ([]ActionStat, metrics.SearchMetric) {
	m.metrics.Start(m.goroutines, m.cutoff, iterations)

	legal := state.LegalActions(player)
	if len(legal) == 0 {
		return nil, m.metrics.Complete()
	}
	iterations = max(iterations, 1)

	seed := m.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	workers := min(m.goroutines, iterations)
	roots := make([]*node, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		share := iterations / workers
		if i < iterations%workers {
			share++
		}
		wg.Add(1)
		go func(i, share int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed + uint64(i)))
			roots[i] = m.search(state.Clone(), player, legal, share, rng)
		}(i, share)
	}
	wg.Wait()

	stats := merge(legal, roots)
	m.metrics.SetChildren(explored(stats))
	return stats, m.metrics.Complete()
}

func (m *MCTS) search(state game.Snapshot, player game.Player, legal []game.Action, iterations int, rng *rand.Rand) *node {
	root := newNode(nil, game.Action{}, state)
	root.expanded = true
	root.untried = slices.Clone(legal)

	for i := 0; i < iterations; i++ {
		leaf := selectThenExpand(root, m.exploration, rng)
		reward := m.rollout(leaf.state, player, rng)
		backup(leaf, reward)
		m.metrics.AddEpisode()
	}
	return root
}

func selectThenExpand(root *node, c float64, rng *rand.Rand) *node {
	n := root
	for n.fullyExpanded() {
		n = n.selectChild(c)
	}
	if !n.expanded {
		n.enumerate(rng)
	}
	if len(n.untried) > 0 {
		return n.expand(rng)
	}
	if len(n.children) > 0 { // Fresh forfeit child
		return n.children[0]
	}
	return n
}

// rollout plays uniformly random actions until the game ends or the cutoff
// is reached and scores the result for player.
func (m *MCTS) rollout(state game.Snapshot, player game.Player, rng *rand.Rand) float64 {
	depth := 0
	for state.Winner() == game.NoPlayer && depth < m.cutoff {
		depth++
		if state.Dice == 0 {
			state.Dice = rng.Intn(6) + 1
		}
		actions := state.LegalActions(state.CurrentPlayer)
		if len(actions) == 0 {
			state = state.Forfeit()
			continue
		}
		state = state.Play(actions[rng.Intn(len(actions))])
	}

	winner := state.Winner()
	switch winner {
	case game.NoPlayer:
		return Draw
	case player:
		m.metrics.AddFullPlayout()
		return Win
	}
	m.metrics.AddFullPlayout()
	return Loss
}

// merge sums the root children of every tree by action. Duplicate legal
// actions share one entry.
func merge(legal []game.Action, roots []*node) []ActionStat {
	index := make(map[string]int, len(legal))
	var stats []ActionStat
	for _, a := range legal {
		if _, ok := index[a.Key()]; ok {
			continue
		}
		index[a.Key()] = len(stats)
		stats = append(stats, ActionStat{Action: a})
	}
	for _, root := range roots {
		for _, child := range root.children {
			s := &stats[index[child.action.Key()]]
			s.Visits += child.visits
			s.Value += child.value
		}
	}
	return stats
}

// Best applies the robust-child rule. Ties keep the earlier action.
func Best(stats []ActionStat) (game.Action, bool) {
	bestIndex, bestVisits := -1, 0
	for i, s := range stats {
		if s.Visits > bestVisits {
			bestIndex, bestVisits = i, s.Visits
		}
	}
	if bestIndex < 0 {
		return game.Action{}, false
	}
	return stats[bestIndex].Action, true
}

func explored(stats []ActionStat) int {
	n := 0
	for _, s := range stats {
		if s.Visits > 0 {
			n++
		}
	}
	return n
}
