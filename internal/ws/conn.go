package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

// Close codes sent when a connection is rejected
const (
	CloseSessionFull     = 4003
	CloseSessionNotFound = 4004
)

// Conn abstracts the bidirectional message channel underneath a client.
// *websocket.Conn is the production implementation; tests use a fake.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

var _ Conn = (*websocket.Conn)(nil)

// closeWithReason sends a close frame with the given code and reason, then
// closes the connection. Used to reject connections before they join a
// session.
func closeWithReason(conn Conn, code int, reason string) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	_ = conn.Close()
}
