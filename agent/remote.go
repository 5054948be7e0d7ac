package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kotw/game"

	"github.com/rs/zerolog/log"
)

const ChoosePath = "/api/agent/choose"

// ChooseRequest is the body a Remote agent posts.
type ChooseRequest struct {
	State  game.Snapshot `json:"state"`
	Player game.Player   `json:"player"`
}

// ChooseResponse is the reply of the remote side.
type ChooseResponse struct {
	Action game.Action `json:"action"`
	OK     bool        `json:"ok"`
}

// Remote asks another process for its action. Any transport or protocol
// failure is reported as no action.
type Remote struct {
	baseURL string
	client  *http.Client
}

func NewRemote(baseURL string) *Remote {
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Remote) Name() string { return "remote" }

func (r *Remote) ChooseAction(state game.Snapshot, player game.Player) (game.Action, bool) {
	resp, err := r.request(state, player)
	if err != nil {
		log.Warn().Err(err).Str("url", r.baseURL).Msg("remote agent failed")
		return game.Action{}, false
	}
	return resp.Action, resp.OK
}

func (r *Remote) request(state game.Snapshot, player game.Player) (*ChooseResponse, error) {
	body, err := json.Marshal(ChooseRequest{State: state, Player: player})
	if err != nil {
		return nil, fmt.Errorf("cannot encode request: %w", err)
	}

	resp, err := r.client.Post(r.baseURL+ChoosePath, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		out, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("agent returned status %d: %s", resp.StatusCode, bytes.TrimSpace(out))
	}

	var decoded ChooseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("cannot decode response: %w", err)
	}
	return &decoded, nil
}
