// Package ws binds real-time connections to game sessions: it upgrades
// inbound connections, routes their commands to session operations, and fans
// resulting events out to every connection in the session's broadcast group.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mcoot/numberduel-go/internal/model"
	"github.com/mcoot/numberduel-go/internal/services/session"
)

// Dispatcher routes connection events to session operations and broadcasts
// the results. Each accepted connection is bound to exactly one
// (session, player) pair for its lifetime.
type Dispatcher struct {
	controller session.ControllerInterface
	hubs       *HubManager
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewDispatcher creates a new connection dispatcher
func NewDispatcher(controller session.ControllerInterface, hubs *HubManager, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		controller: controller,
		hubs:       hubs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The game is origin-agnostic; sessions carry no credentials
				return true
			},
		},
		logger: logger.With(slog.String("component", "dispatcher")),
	}
}

// ServeWS handles GET /ws/{session_id}/{player_name}
func (d *Dispatcher) ServeWS(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := model.SessionID(vars["session_id"])
	playerName := vars["player_name"]

	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	d.HandleConn(conn, sessionID, playerName)
}

// HandleConn runs the connection lifecycle: join the session, pump messages,
// and leave on disconnect. It blocks until the connection drops. Split from
// ServeWS so tests can drive it with a fake Conn.
func (d *Dispatcher) HandleConn(conn Conn, sessionID model.SessionID, playerName string) {
	// Session operations outlive the HTTP request context: a disconnect must
	// still run its leave operation.
	ctx := context.Background()

	playerID, event, err := d.controller.Join(ctx, sessionID, playerName)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrSessionNotFound):
			closeWithReason(conn, CloseSessionNotFound, "Session not found")
		case errors.Is(err, model.ErrSessionFull):
			closeWithReason(conn, CloseSessionFull, "Session is full")
		default:
			d.logger.Error("join failed", slog.String("session", string(sessionID)), slog.Any("error", err))
			closeWithReason(conn, websocket.CloseInternalServerErr, "Internal error")
		}
		return
	}

	hub := d.hubs.GetOrCreateHub(sessionID)
	client := NewClient(hub, conn, sessionID, playerID)
	hub.Register(client)
	go client.writePump()

	d.broadcastEvent(hub, event)

	client.readPump(d)
	d.handleDisconnect(client)
}

// dispatch handles one inbound message from a client. Domain rule violations
// are reported to the originating client only; accepted operations are
// broadcast to the whole session group.
func (d *Dispatcher) dispatch(c *Client, data []byte) {
	ctx := context.Background()

	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		d.sendError(c, "Malformed message")
		return
	}

	var (
		event model.Event
		err   error
	)
	switch cmd.Type {
	case CommandLockNumber:
		event, err = d.controller.LockNumber(ctx, c.sessionID, c.playerID, cmd.Number)
	case CommandMakeGuess:
		event, err = d.controller.MakeGuess(ctx, c.sessionID, c.playerID, cmd.Guess)
	default:
		d.sendError(c, "Unknown command")
		return
	}

	if err != nil {
		if !session.IsDomainError(err) {
			d.logger.Error("command failed",
				slog.String("session", string(c.sessionID)),
				slog.String("command", cmd.Type),
				slog.Any("error", err))
			d.sendError(c, "Internal error")
			return
		}
		d.sendError(c, err.Error())
		return
	}

	d.broadcastEvent(c.hub, event)
}

// handleDisconnect removes the player from the session once its connection
// has dropped. The disconnect queues behind any in-flight operation for the
// same session; it never aborts one.
func (d *Dispatcher) handleDisconnect(c *Client) {
	c.hub.Unregister(c)

	disposed, event, err := d.controller.Leave(context.Background(), c.sessionID, c.playerID)
	if err != nil {
		// The session may already be gone if the opponent left first
		if !errors.Is(err, model.ErrSessionNotFound) && !errors.Is(err, model.ErrNotInSession) {
			d.logger.Error("leave failed",
				slog.String("session", string(c.sessionID)),
				slog.String("player_id", string(c.playerID)),
				slog.Any("error", err))
		}
		return
	}

	if disposed {
		d.hubs.RemoveHub(c.sessionID)
		return
	}
	d.broadcastEvent(c.hub, event)
}

// broadcastEvent fans an event out to every connection in the hub.
// Enqueueing happens after the controller has released the session's
// serialization lock, so events committed back-to-back from different
// connections may be enqueued out of commit order; each event carries a
// complete post-mutation snapshot, so a client can observe a newer snapshot
// before an older one but never a torn state.
func (d *Dispatcher) broadcastEvent(hub *Hub, event model.Event) {
	data, err := MarshalEvent(event)
	if err != nil {
		d.logger.Error("failed to marshal event",
			slog.String("type", string(event.Type)),
			slog.Any("error", err))
		return
	}
	hub.Broadcast(data)
}

func (d *Dispatcher) sendError(c *Client, message string) {
	if !c.Enqueue(MarshalError(message)) {
		d.logger.Warn("error event dropped - client buffer full",
			slog.String("player_id", string(c.playerID)))
	}
}
