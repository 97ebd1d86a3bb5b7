package model

// EventType identifies the type of event broadcast to session connections
type EventType string

const (
	EventPlayerJoined EventType = "player_joined"
	EventPlayerLeft   EventType = "player_left"
	EventNumberLocked EventType = "number_locked"
	EventGuessMade    EventType = "guess_made"
	EventError        EventType = "error"
)

// Event is a state-change notification produced by a session operation.
// Session is always a post-mutation snapshot clone; Guess is set only for
// guess_made events.
type Event struct {
	Type     EventType
	PlayerID PlayerID
	Session  *Session
	Guess    *Guess
}
