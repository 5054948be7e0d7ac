package gamemaster

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"kotw/agent"
	"kotw/game"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
)

var ErrAIControlled = errors.New("that side is controlled by the AI")

type Options struct {
	AIPlayer   game.Player // NoPlayer for two humans
	Agent      agent.Agent
	AIDelay    time.Duration
	SkipDelay  time.Duration
	ReadyDelay time.Duration
	Die        game.Roller
	Rand       *rand.Rand
	Offer      []game.Archetype
}

// GameMaster owns the canonical game state and is its only writer.
type GameMaster struct {
	mu             sync.Mutex
	opts           Options
	state          *game.GameState
	turn           int
	history        []string
	subscribers    map[int]chan Update
	nextSubscriber int
	logger         zerolog.Logger
}

func New(opts Options) *GameMaster {
	if opts.Rand == nil {
		opts.Rand = game.NewRand()
	}
	if opts.Die == nil {
		opts.Die = game.NewDie(opts.Rand)
	}
	if opts.Agent == nil {
		opts.Agent = agent.NewGreedy()
	}
	if len(opts.Offer) == 0 {
		opts.Offer = game.DefaultOffer
	}
	return &GameMaster{
		opts:        opts,
		state:       game.NewGameState(),
		subscribers: map[int]chan Update{},
		logger:      log.With().Str("component", "gamemaster").Logger(),
	}
}

// State returns a copy of the canonical state.
func (gm *GameMaster) State() *game.GameState {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	return gm.state.Copy()
}

// History returns every game log line so far.
func (gm *GameMaster) History() []string {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	return slices.Clone(gm.history)
}

func (gm *GameMaster) AIPlayer() game.Player {
	return gm.opts.AIPlayer
}

// SetAgent swaps the strategy used for the AI side from its next turn on.
func (gm *GameMaster) SetAgent(a agent.Agent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.opts.Agent = a
	gm.logger.Info().Str("agent", a.Name()).Msg("AI strategy changed")
}

func (gm *GameMaster) isAI(p game.Player) bool {
	return gm.opts.AIPlayer != game.NoPlayer && p == gm.opts.AIPlayer
}

// Setup validates the rosters and opens placement. The AI side's roster is
// picked at random and its argument ignored.
func (gm *GameMaster) Setup(choices1, choices2 []game.Archetype) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if gm.state.Phase != game.Setup {
		return fmt.Errorf("cannot set up in %s: %w", gm.state.Phase, game.ErrWrongPhase)
	}
	choices := [2][]game.Archetype{choices1, choices2}
	var picked []game.Archetype
	if gm.isAI(gm.opts.AIPlayer) {
		picked = game.RandomRoster(gm.opts.Rand, gm.opts.Offer)
		choices[gm.opts.AIPlayer-1] = picked
	}
	if err := gm.state.StartPlacement(choices[0], choices[1]); err != nil {
		return err
	}
	if picked != nil {
		gm.publish(EventAI, fmt.Sprintf("AI selected roster: %v", picked))
	}
	gm.publish(EventSetup, segmentMessage(game.Player1))
	gm.continuePlacement()
	return nil
}

func segmentMessage(p game.Player) string {
	rows := "rows 4-5"
	if p == game.Player2 {
		rows = "rows 0-1"
	}
	return fmt.Sprintf("Player %d king placed at %s. Player %d: place your remaining pieces in %s.", p, game.HomeCell(p), p, rows)
}

// Place drops the next pending piece of the human placer.
func (gm *GameMaster) Place(c game.Cell) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	owner := gm.state.Placement.Owner
	if gm.state.Phase == game.Placement && gm.isAI(owner) {
		return fmt.Errorf("cannot place piece: %w", ErrAIControlled)
	}
	piece, err := gm.state.ApplyPlacement(c)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Placed %s at %s.", piece.Type, c)
	if next := gm.state.Placement; next.Owner == owner {
		msg += fmt.Sprintf(" %d left to place.", next.Remaining())
	}
	gm.publish(EventPlaced, msg)
	if gm.state.Placement.Owner != owner && gm.state.Placement.Owner != game.NoPlayer {
		gm.publish(EventSetup, segmentMessage(gm.state.Placement.Owner))
	}
	gm.continuePlacement()
	return nil
}

// continuePlacement auto-places for the AI and starts play once both sides
// are down.
func (gm *GameMaster) continuePlacement() {
	for owner := gm.state.Placement.Owner; gm.isAI(owner); owner = gm.state.Placement.Owner {
		placed, err := gm.state.AutoPlace(gm.opts.Rand)
		if err != nil {
			gm.logger.Error().Err(err).Msg("AI placement failed")
			return
		}
		gm.publish(EventPlaced, fmt.Sprintf("AI (Player %d) auto-placed %d pieces.", owner, len(placed)))
		if next := gm.state.Placement.Owner; next != game.NoPlayer {
			gm.publish(EventSetup, segmentMessage(next))
		}
	}
	if gm.state.PlacementDone() {
		gm.publish(EventPlaced, "Both players placed. Ready to begin.")
		gm.schedule(gm.opts.ReadyDelay, gm.startPlay)
	}
}

func (gm *GameMaster) startPlay() {
	rolls, err := gm.state.DecideFirstPlayer(gm.opts.Die)
	if err != nil {
		gm.logger.Error().Err(err).Msg("cannot start play")
		return
	}
	last := rolls[len(rolls)-1]
	gm.publish(EventStarted, fmt.Sprintf("Player 1 rolled %d, Player 2 rolled %d. Player %d goes first.",
		last.Player1, last.Player2, gm.state.CurrentPlayer))
	gm.beginTurn()
}

// human rejects operations on the AI's turn.
func (gm *GameMaster) human(op string) error {
	if gm.state.Phase == game.Play && gm.isAI(gm.state.CurrentPlayer) {
		return fmt.Errorf("cannot %s: %w", op, ErrAIControlled)
	}
	return nil
}

func (gm *GameMaster) Roll() (int, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if err := gm.human("roll"); err != nil {
		return 0, err
	}
	return gm.roll(fmt.Sprintf("Player %d", gm.state.CurrentPlayer))
}

func (gm *GameMaster) roll(who string) (int, error) {
	dice, err := gm.state.RollTurnDice(gm.opts.Die)
	if err != nil {
		return 0, err
	}
	gm.publish(EventRolled, fmt.Sprintf("%s rolled %d", who, dice))
	if dice == 6 {
		gm.publish(EventRolled, "Unlucky! Turn skipped.")
		gm.schedule(gm.opts.SkipDelay, gm.endTurn)
	}
	return dice, nil
}

func (gm *GameMaster) Select(id string) ([]string, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if err := gm.human("select"); err != nil {
		return nil, err
	}
	if err := gm.state.SelectPiece(id); err != nil {
		return nil, err
	}
	targets, err := gm.state.OfferedTargets(id)
	if err != nil {
		return nil, err
	}
	gm.publish(EventSelected)
	return targets, nil
}

func (gm *GameMaster) Move(id string, dest game.Cell) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if err := gm.human("move"); err != nil {
		return err
	}
	p := gm.state.FindPiece(id)
	ended, err := gm.state.MovePiece(id, dest)
	if err != nil {
		return err
	}
	gm.publish(EventMoved, fmt.Sprintf("%s moves to %s.", p, dest))
	if ended {
		gm.turnEnded()
	}
	return nil
}

func (gm *GameMaster) Attack(attackerID, targetID string) (game.AttackResult, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if err := gm.human("attack"); err != nil {
		return game.AttackResult{}, err
	}
	attacker, target := gm.state.FindPiece(attackerID), gm.state.FindPiece(targetID)
	if attacker == nil || target == nil {
		return game.AttackResult{}, fmt.Errorf("cannot attack: %w", game.ErrUnknownPiece)
	}
	a, t := *attacker, *target
	result, err := gm.state.Attack(attackerID, targetID)
	if err != nil {
		return result, err
	}
	gm.publishAttack(a, t, result)
	return result, nil
}

func (gm *GameMaster) publishAttack(attacker, target game.Piece, result game.AttackResult) {
	messages := []string{fmt.Sprintf("%s hits %s for %d damage.", attacker, target, result.Damage)}
	if result.Eliminated {
		messages = append(messages, fmt.Sprintf("%s (Player %d) was eliminated.", target.Type, target.Owner))
	}
	gm.publish(EventAttacked, messages...)
	if result.Winner != game.NoPlayer {
		gm.publish(EventFinished, fmt.Sprintf("Player %d wins!", result.Winner))
		return
	}
	gm.turnEnded()
}

func (gm *GameMaster) EndTurn() error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if err := gm.human("end turn"); err != nil {
		return err
	}
	if err := gm.state.EndTurn(); err != nil {
		return err
	}
	gm.turnEnded()
	return nil
}

// endTurn is the forced end used by skips and AI failures.
func (gm *GameMaster) endTurn() {
	if err := gm.state.EndTurn(); err != nil {
		gm.logger.Debug().Err(err).Msg("turn already over")
		return
	}
	gm.turnEnded()
}

func (gm *GameMaster) turnEnded() {
	gm.turn++
	gm.publish(EventTurn, fmt.Sprintf("Player %d's turn.", gm.state.CurrentPlayer))
	gm.beginTurn()
}

func (gm *GameMaster) beginTurn() {
	if gm.state.Phase == game.Play && gm.isAI(gm.state.CurrentPlayer) {
		gm.schedule(gm.opts.AIDelay, gm.aiTurn)
	}
}

// aiTurn rolls for the AI and applies its action. Any failure ends the
// turn so the game cannot stall.
func (gm *GameMaster) aiTurn() {
	player := gm.state.CurrentPlayer
	if gm.state.Phase != game.Play || !gm.isAI(player) {
		return
	}
	who := fmt.Sprintf("AI (Player %d)", player)

	dice, err := gm.roll(who)
	if err != nil {
		gm.logger.Warn().Err(err).Msg("AI cannot roll, ending turn")
		gm.endTurn()
		return
	}
	if dice == 6 {
		return
	}

	action, ok, err := gm.choose(player)
	switch {
	case err != nil:
		gm.logger.Warn().Err(err).Str("agent", gm.opts.Agent.Name()).Msg("AI failed, ending turn")
		gm.publish(EventAI, "AI error, ending turn.")
		gm.endTurn()
		return
	case !ok:
		gm.publish(EventAI, "AI found no action; ending turn.")
		gm.endTurn()
		return
	}

	before := gm.state.Copy()
	if err := gm.state.ApplyAction(action); err != nil {
		gm.logger.Warn().Err(err).
			Str("piece", action.PieceID).
			Str("target", action.TargetID).
			Msg("AI chose an action that cannot be applied, ending turn")
		gm.publish(EventAI, "AI chose an illegal action; ending turn.")
		gm.endTurn()
		return
	}
	gm.publishAction(before, action)
}

func (gm *GameMaster) choose(player game.Player) (action game.Action, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent panicked: %v", r)
		}
	}()
	action, ok = gm.opts.Agent.ChooseAction(gm.state.View(), player)
	return action, ok, nil
}

// publishAction reports an applied AI action by comparing against the state
// before it.
func (gm *GameMaster) publishAction(before *game.GameState, a game.Action) {
	actor := *before.FindPiece(a.PieceID)
	if a.Move != nil {
		gm.publish(EventMoved, fmt.Sprintf("%s moves to %s.", actor, *a.Move))
	}
	if a.TargetID == "" {
		gm.turnEnded()
		return
	}

	target := *before.FindPiece(a.TargetID)
	result := game.AttackResult{AttackerID: a.PieceID, TargetID: a.TargetID, Winner: gm.state.Winner()}
	if after := gm.state.FindPiece(a.TargetID); after != nil {
		result.Damage = target.HP - after.HP
	} else {
		result.Eliminated = true
		result.Damage = game.BaseDamage(actor.Type, gm.state.FindPiece(a.PieceID).Cell.DistanceTo(target.Cell)) * game.MultiplierFor(before.Dice)
	}
	gm.publishAttack(actor, target, result)
}
