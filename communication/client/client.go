package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kotw/communication"
	"kotw/game"
)

// Client drives a bridge over HTTP the way the presentation does.
type Client struct {
	serverURL string
	http      *http.Client
}

func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) State() (*communication.StateResponse, error) {
	resp, err := c.http.Get(c.serverURL + "/api/state")
	if err != nil {
		return nil, err
	}
	return decodeResponse(resp)
}

func (c *Client) Setup(player1, player2 []game.Archetype) (*communication.StateResponse, error) {
	return c.post("/api/setup", communication.SetupRequest{Player1: player1, Player2: player2})
}

func (c *Client) Place(cell game.Cell) (*communication.StateResponse, error) {
	return c.post("/api/place", cell)
}

func (c *Client) Roll() (*communication.StateResponse, error) {
	return c.post("/api/roll", nil)
}

func (c *Client) Select(pieceID string) (*communication.StateResponse, error) {
	return c.post("/api/select", communication.SelectRequest{PieceID: pieceID})
}

func (c *Client) Move(pieceID string, to game.Cell) (*communication.StateResponse, error) {
	return c.post("/api/move", communication.MoveRequest{PieceID: pieceID, To: to})
}

func (c *Client) Attack(attackerID, targetID string) (*communication.StateResponse, error) {
	return c.post("/api/attack", communication.AttackRequest{AttackerID: attackerID, TargetID: targetID})
}

func (c *Client) EndTurn() (*communication.StateResponse, error) {
	return c.post("/api/end-turn", nil)
}

func (c *Client) post(path string, body any) (*communication.StateResponse, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewReader(data)
	}
	resp, err := c.http.Post(c.serverURL+path, "application/json", payload)
	if err != nil {
		return nil, err
	}
	return decodeResponse(resp)
}

func decodeResponse(resp *http.Response) (*communication.StateResponse, error) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure communication.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&failure); err != nil || failure.Error == "" {
			return nil, fmt.Errorf("bridge returned status %d", resp.StatusCode)
		}
		return nil, errors.New(failure.Error)
	}

	var out communication.StateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("cannot decode response: %w", err)
	}
	return &out, nil
}
