package searcher

import (
	"math"

	"kotw/game"

	"golang.org/x/exp/rand"
)

// node is owned by a single worker and is never shared between goroutines.
type node struct {
	parent   *node
	action   game.Action
	forfeit  bool // reached by passing a turn with no legal action
	state    game.Snapshot
	untried  []game.Action
	expanded bool
	children []*node
	visits   int
	value    float64
}

func newNode(parent *node, action game.Action, state game.Snapshot) *node {
	return &node{parent: parent, action: action, state: state}
}

func (n *node) terminal() bool {
	return n.state.Phase == game.Finished || n.state.Winner() != game.NoPlayer
}

// enumerate rolls the node's dice if needed and lists the side to move's
// actions. A live side with no action gets a single forfeit child.
func (n *node) enumerate(rng *rand.Rand) {
	n.expanded = true
	if n.terminal() {
		return
	}
	if n.state.Dice == 0 {
		n.state.Dice = rng.Intn(6) + 1
	}
	n.untried = n.state.LegalActions(n.state.CurrentPlayer)
	if len(n.untried) == 0 {
		n.children = append(n.children, &node{parent: n, forfeit: true, state: n.state.Forfeit()})
	}
}

// selectChild picks the child with the highest UCT score. Ties keep the
// earliest child.
func (n *node) selectChild(c float64) *node {
	var best *node
	bestScore := math.Inf(-1)
	for _, child := range n.children {
		if score := uct(child.value, child.visits, n.visits, c); score > bestScore {
			best, bestScore = child, score
		}
	}
	return best
}

// expand removes a random untried action and adds the child it leads to.
func (n *node) expand(rng *rand.Rand) *node {
	i := rng.Intn(len(n.untried))
	action := n.untried[i]
	n.untried[i] = n.untried[len(n.untried)-1]
	n.untried = n.untried[:len(n.untried)-1]

	child := newNode(n, action, n.state.Play(action))
	n.children = append(n.children, child)
	return child
}

func (n *node) fullyExpanded() bool {
	return n.expanded && len(n.untried) == 0 && len(n.children) > 0
}

func backup(leaf *node, reward float64) {
	for cur := leaf; cur != nil; cur = cur.parent {
		cur.visits++
		cur.value += reward
	}
}
