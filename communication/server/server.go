package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"kotw/agent"
	"kotw/communication"
	"kotw/game"
	"kotw/gamemaster"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
)

// Server exposes one local game over HTTP and a websocket update stream.
type Server struct {
	ctrl     communication.Controller
	mu       sync.RWMutex
	agent    agent.Agent
	router   *mux.Router
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

func New(ctrl communication.Controller, a agent.Agent) *Server {
	s := &Server{
		ctrl:     ctrl,
		agent:    a,
		router:   mux.NewRouter(),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		logger:   log.With().Str("component", "server").Logger(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/setup", s.handleSetup).Methods(http.MethodPost)
	api.HandleFunc("/place", s.handlePlace).Methods(http.MethodPost)
	api.HandleFunc("/roll", s.handleRoll).Methods(http.MethodPost)
	api.HandleFunc("/select", s.handleSelect).Methods(http.MethodPost)
	api.HandleFunc("/move", s.handleMove).Methods(http.MethodPost)
	api.HandleFunc("/attack", s.handleAttack).Methods(http.MethodPost)
	api.HandleFunc("/end-turn", s.handleEndTurn).Methods(http.MethodPost)
	api.HandleFunc("/agent/choose", s.handleChoose).Methods(http.MethodPost)

	s.router.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// SetAgent replaces the agent answering /api/agent/choose.
func (s *Server) SetAgent(a agent.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agent = a
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, communication.ErrorResponse{Error: err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, err)
		return false
	}
	return true
}

func (s *Server) reply(w http.ResponseWriter, resp communication.StateResponse) {
	resp.State = s.ctrl.State()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.reply(w, communication.StateResponse{Log: s.ctrl.History()})
}

func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	var req communication.SetupRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.ctrl.Setup(req.Player1, req.Player2); err != nil {
		writeError(w, err)
		return
	}
	s.reply(w, communication.StateResponse{})
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var cell game.Cell
	if !decode(w, r, &cell) {
		return
	}
	if err := s.ctrl.Place(cell); err != nil {
		writeError(w, err)
		return
	}
	s.reply(w, communication.StateResponse{})
}

func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	dice, err := s.ctrl.Roll()
	if err != nil {
		writeError(w, err)
		return
	}
	s.reply(w, communication.StateResponse{Dice: dice})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req communication.SelectRequest
	if !decode(w, r, &req) {
		return
	}
	targets, err := s.ctrl.Select(req.PieceID)
	if err != nil {
		writeError(w, err)
		return
	}
	s.reply(w, communication.StateResponse{Targets: targets})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req communication.MoveRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.ctrl.Move(req.PieceID, req.To); err != nil {
		writeError(w, err)
		return
	}
	s.reply(w, communication.StateResponse{})
}

func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request) {
	var req communication.AttackRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := s.ctrl.Attack(req.AttackerID, req.TargetID)
	if err != nil {
		writeError(w, err)
		return
	}
	s.reply(w, communication.StateResponse{Result: &result})
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.EndTurn(); err != nil {
		writeError(w, err)
		return
	}
	s.reply(w, communication.StateResponse{})
}

func (s *Server) handleChoose(w http.ResponseWriter, r *http.Request) {
	var req agent.ChooseRequest
	if !decode(w, r, &req) {
		return
	}
	if !req.Player.Valid() {
		writeError(w, errors.New("player must be 1 or 2"))
		return
	}
	s.mu.RLock()
	a := s.agent
	s.mu.RUnlock()

	action, ok := a.ChooseAction(req.State, req.Player)
	writeJSON(w, http.StatusOK, agent.ChooseResponse{Action: action, OK: ok})
}

// handleWS sends the current state, then every game master update.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel := s.ctrl.Subscribe()
	defer cancel()
	s.logger.Info().Str("remote", r.RemoteAddr).Msg("websocket connected")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(u gamemaster.Update) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(u)
	}
	if err := send(gamemaster.Update{Event: gamemaster.EventState, Messages: s.ctrl.History(), State: s.ctrl.State()}); err != nil {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return
			}
			if err := send(u); err != nil {
				s.logger.Debug().Err(err).Msg("websocket write failed")
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-closed:
			s.logger.Info().Str("remote", r.RemoteAddr).Msg("websocket closed")
			return
		}
	}
}
