// meta/meta.go
package meta

// GO_ROUTINES defines the number of search trees per arena decision.
const GO_ROUTINES = 4

// ITERATIONS defines the MCTS iterations of the medium agent.
const ITERATIONS = 160

// WITH_CUTOFF defines the rollout depth cap for MCTS.
const WITH_CUTOFF = 40

// MAX_TURNS caps an arena game.
const MAX_TURNS = 300

// NUM_GAMES defines the games played per arena matchup.
const NUM_GAMES = 20
