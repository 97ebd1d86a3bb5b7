package ws

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/numberduel-go/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one connection bound to a (session, player) pair for its lifetime
type Client struct {
	hub         *Hub
	conn        Conn
	sessionID   model.SessionID
	playerID    model.PlayerID
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a client for an accepted connection
func NewClient(hub *Hub, conn Conn, sessionID model.SessionID, playerID model.PlayerID) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		sessionID:   sessionID,
		playerID:    playerID,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// PlayerID returns the player this connection is bound to
func (c *Client) PlayerID() model.PlayerID {
	return c.playerID
}

// Enqueue queues a message for delivery to this client only. Returns false
// if the client's buffer is full.
func (c *Client) Enqueue(message []byte) bool {
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// readPump pumps inbound messages to the dispatcher. It runs on the
// connection's request goroutine and returns when the connection drops.
func (c *Client) readPump(d *Dispatcher) {
	defer func() {
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		d.dispatch(c, data)
	}
}

// writePump pumps queued messages to the connection and keeps it alive with
// pings. It exits when the hub closes the send channel or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
