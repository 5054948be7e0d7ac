package gamemaster

import (
	"time"

	"kotw/game"
)

type Event string

const (
	EventState    Event = "state" // initial push to a new subscriber
	EventSetup    Event = "setup"
	EventPlaced   Event = "placed"
	EventStarted  Event = "started"
	EventRolled   Event = "rolled"
	EventSelected Event = "selected"
	EventMoved    Event = "moved"
	EventAttacked Event = "attacked"
	EventTurn     Event = "turn"
	EventFinished Event = "finished"
	EventAI       Event = "ai"
)

// Update is pushed to subscribers after every change to the game.
type Update struct {
	Event    Event           `json:"event"`
	Messages []string        `json:"messages,omitempty"`
	State    *game.GameState `json:"state"`
}

const subscriberBuffer = 64

// Subscribe returns a channel of updates and a function that closes it.
// Updates are dropped for subscribers whose buffer is full.
func (gm *GameMaster) Subscribe() (<-chan Update, func()) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	id := gm.nextSubscriber
	gm.nextSubscriber++
	ch := make(chan Update, subscriberBuffer)
	gm.subscribers[id] = ch

	return ch, func() {
		gm.mu.Lock()
		defer gm.mu.Unlock()
		if ch, ok := gm.subscribers[id]; ok {
			delete(gm.subscribers, id)
			close(ch)
		}
	}
}

// publish must be called with gm.mu held.
func (gm *GameMaster) publish(event Event, messages ...string) {
	for _, m := range messages {
		gm.logger.Info().Str("event", string(event)).Msg(m)
	}
	gm.history = append(gm.history, messages...)

	u := Update{Event: event, Messages: messages, State: gm.state.Copy()}
	for id, ch := range gm.subscribers {
		select {
		case ch <- u:
		default:
			gm.logger.Warn().Int("subscriber", id).Msg("subscriber is full, dropping update")
		}
	}
}

// schedule runs fn after d with gm.mu held, or at once when d is not
// positive. The caller must hold gm.mu. fn is skipped when the turn has
// changed in the meantime.
func (gm *GameMaster) schedule(d time.Duration, fn func()) {
	if d <= 0 {
		fn()
		return
	}
	turn := gm.turn
	time.AfterFunc(d, func() {
		gm.mu.Lock()
		defer gm.mu.Unlock()
		if gm.turn != turn {
			return
		}
		fn()
	})
}
