package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kotw/agent"
	"kotw/communication/client"
	"kotw/game"
	"kotw/gamemaster"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

var roster = []game.Archetype{game.Gunslinger, game.Bruiser, game.Gunslinger, game.Bruiser}

func newTestServer(t *testing.T) (*httptest.Server, *client.Client) {
	t.Helper()
	gm := gamemaster.New(gamemaster.Options{
		Die:  game.Sequence(5, 2, 1),
		Rand: rand.New(rand.NewSource(3)),
	})
	ts := httptest.NewServer(New(gm, agent.NewGreedy()).Handler())
	t.Cleanup(ts.Close)
	return ts, client.NewClient(ts.URL)
}

func placeRows(t *testing.T, c *client.Client) {
	t.Helper()
	for _, r := range []int{4, 0} {
		for col := 0; col < 4; col++ {
			_, err := c.Place(game.Cell{Row: r, Col: col})
			require.NoError(t, err)
		}
	}
}

func TestPlayOverHTTP(t *testing.T) {
	_, c := newTestServer(t)

	resp, err := c.State()
	require.NoError(t, err)
	require.Equal(t, game.Setup, resp.State.Phase)

	_, err = c.Setup(roster[:3], roster)
	require.ErrorContains(t, err, "player 1 roster")

	resp, err = c.Setup(roster, roster)
	require.NoError(t, err)
	require.Equal(t, game.Placement, resp.State.Phase)

	_, err = c.Place(game.Cell{Row: 2, Col: 0})
	require.ErrorContains(t, err, game.ErrOutOfBand.Error())

	placeRows(t, c)
	resp, err = c.State()
	require.NoError(t, err)
	require.Equal(t, game.Play, resp.State.Phase)
	require.Equal(t, game.Player1, resp.State.CurrentPlayer)
	require.NotEmpty(t, resp.Log)

	resp, err = c.Roll()
	require.NoError(t, err)
	require.Equal(t, 1, resp.Dice)

	king := resp.State.Roster(game.Player1).Pieces[0]
	require.True(t, king.IsKing)

	resp, err = c.Select(king.ID)
	require.NoError(t, err)
	require.Empty(t, resp.Targets)
	require.Equal(t, king.ID, resp.State.SelectedID)

	_, err = c.Move(king.ID, game.Cell{Row: 3, Col: 3})
	require.ErrorContains(t, err, game.ErrUnreachable.Error())

	resp, err = c.Move(king.ID, game.Cell{Row: 5, Col: 1})
	require.NoError(t, err)
	require.Equal(t, game.Player2, resp.State.CurrentPlayer, "no enemy in range ends the turn")

	_, err = c.Attack(king.ID, "nobody")
	require.Error(t, err)

	resp, err = c.EndTurn()
	require.NoError(t, err)
	require.Equal(t, game.Player1, resp.State.CurrentPlayer)
}

func TestRejectsMalformedRequests(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/place", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/roll")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/api/agent/choose", "application/json", strings.NewReader(`{"player":0}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAgentChooseServesRemote(t *testing.T) {
	ts, _ := newTestServer(t)
	remote := agent.NewRemote(ts.URL)

	s := game.NewSnapshot()
	s.Phase = game.Play
	s.CurrentPlayer = game.Player1
	for _, p := range []game.Piece{
		game.NewPiece(game.Player1, game.King, game.HomeCell(game.Player1)),
		game.NewPiece(game.Player1, game.Gunslinger, game.Cell{Row: 3, Col: 3}),
		game.NewPiece(game.Player2, game.King, game.HomeCell(game.Player2)),
		game.NewPiece(game.Player2, game.Bruiser, game.Cell{Row: 1, Col: 3}),
	} {
		roster := s.Roster(p.Owner)
		roster.Pieces = append(roster.Pieces, p)
	}

	s.Dice = 6
	_, ok := remote.ChooseAction(s, game.Player1)
	require.False(t, ok)

	s.Dice = 3
	want, _ := agent.NewGreedy().ChooseAction(s, game.Player1)
	got, ok := remote.ChooseAction(s, game.Player1)
	require.True(t, ok)
	require.True(t, want.Equal(got))
	require.True(t, s.IsLegal(got))
}

func TestWebsocketStreamsUpdates(t *testing.T) {
	ts, c := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var u gamemaster.Update
	require.NoError(t, conn.ReadJSON(&u))
	require.Equal(t, gamemaster.EventState, u.Event)
	require.Equal(t, game.Setup, u.State.Phase)

	_, err = c.Setup(roster, roster)
	require.NoError(t, err)

	require.NoError(t, conn.ReadJSON(&u))
	require.Equal(t, gamemaster.EventSetup, u.Event)
	require.Equal(t, game.Placement, u.State.Phase)
	require.NotEmpty(t, u.Messages)
}
