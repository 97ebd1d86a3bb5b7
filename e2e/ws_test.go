package e2e_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wsEvent mirrors the server's outbound event envelope
type wsEvent struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
	Session  *struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		CurrentTurn string `json:"current_turn"`
		Winner      string `json:"winner"`
	} `json:"session"`
	Guess *struct {
		PlayerID         string `json:"player_id"`
		Guess            string `json:"guess"`
		CorrectDigits    int    `json:"correct_digits"`
		CorrectPositions int    `json:"correct_positions"`
	} `json:"guess"`
	Message string `json:"message"`
}

func dialSession(t *testing.T, serverURL, sessionID, playerName string) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(serverURL, "http://", "ws://", 1)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws/"+sessionID+"/"+playerName, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) wsEvent {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev wsEvent
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func sendCommand(t *testing.T, conn *websocket.Conn, cmd map[string]string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(cmd))
}

func TestWebSocketGameEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)
	out, err := cli.run("session", "create")
	require.NoError(t, err, "output: %s", out)

	var created sessionResponse
	require.NoError(t, json.Unmarshal([]byte(out), &created))

	alice := dialSession(t, ts.addr, created.ID, "Alice")
	ev := readEvent(t, alice)
	require.Equal(t, "player_joined", ev.Type)
	aliceID := ev.PlayerID

	bob := dialSession(t, ts.addr, created.ID, "Bob")
	ev = readEvent(t, bob)
	require.Equal(t, "player_joined", ev.Type)
	readEvent(t, alice) // Bob's join seen by Alice

	sendCommand(t, alice, map[string]string{"type": "lock_number", "number": "1234"})
	readEvent(t, alice)
	readEvent(t, bob)

	sendCommand(t, bob, map[string]string{"type": "lock_number", "number": "5678"})
	ev = readEvent(t, alice)
	require.Equal(t, "number_locked", ev.Type)
	require.NotNil(t, ev.Session)
	assert.Equal(t, "in_progress", ev.Session.Status)
	assert.Equal(t, aliceID, ev.Session.CurrentTurn)
	readEvent(t, bob)

	sendCommand(t, alice, map[string]string{"type": "make_guess", "guess": "5678"})
	ev = readEvent(t, bob)
	require.Equal(t, "guess_made", ev.Type)
	require.NotNil(t, ev.Guess)
	assert.Equal(t, 4, ev.Guess.CorrectPositions)
	assert.Equal(t, "completed", ev.Session.Status)
	assert.Equal(t, aliceID, ev.Session.Winner)
}

func TestWebSocketRejectsUnknownSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	ts := startTestServer(t)
	defer ts.shutdown()

	wsURL := strings.Replace(ts.addr, "http://", "ws://", 1)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws/nonexistent/Alice", nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)

	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, 4004, closeErr.Code)
	assert.Equal(t, "Session not found", closeErr.Text)
}
