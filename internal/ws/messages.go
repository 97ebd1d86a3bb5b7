package ws

import (
	"encoding/json"

	"github.com/mcoot/numberduel-go/internal/model"
)

// Inbound command types
const (
	CommandLockNumber = "lock_number"
	CommandMakeGuess  = "make_guess"
)

// Command is the envelope for inbound client messages
type Command struct {
	Type   string `json:"type"`
	Number string `json:"number,omitempty"` // lock_number
	Guess  string `json:"guess,omitempty"`  // make_guess
}

// PlayerView is a player as exposed to clients. Secret numbers are never
// serialized.
type PlayerView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsReady bool   `json:"is_ready"`
}

// SessionView is a sanitized session snapshot as exposed to clients
type SessionView struct {
	ID          string       `json:"id"`
	Players     []PlayerView `json:"players"`
	Status      string       `json:"status"`
	CurrentTurn string       `json:"current_turn,omitempty"`
	Winner      string       `json:"winner,omitempty"`
}

// GuessView is an evaluated guess as exposed to clients
type GuessView struct {
	PlayerID         string `json:"player_id"`
	PlayerName       string `json:"player_name,omitempty"`
	Guess            string `json:"guess"`
	CorrectDigits    int    `json:"correct_digits"`
	CorrectPositions int    `json:"correct_positions"`
}

// EventMessage is the envelope for outbound events
type EventMessage struct {
	Type     string       `json:"type"`
	PlayerID string       `json:"player_id,omitempty"`
	Session  *SessionView `json:"session,omitempty"`
	Guess    *GuessView   `json:"guess,omitempty"`
	Message  string       `json:"message,omitempty"`
}

// SessionViewFromModel converts a session snapshot, stripping secrets
func SessionViewFromModel(s *model.Session) *SessionView {
	if s == nil {
		return nil
	}
	players := make([]PlayerView, len(s.Players))
	for i, p := range s.Players {
		players[i] = PlayerView{
			ID:      string(p.ID),
			Name:    p.DisplayName,
			IsReady: p.IsReady,
		}
	}
	return &SessionView{
		ID:          string(s.ID),
		Players:     players,
		Status:      string(s.Status),
		CurrentTurn: string(s.CurrentTurn),
		Winner:      string(s.Winner),
	}
}

// GuessViewFromModel converts an evaluated guess
func GuessViewFromModel(g *model.Guess) *GuessView {
	if g == nil {
		return nil
	}
	return &GuessView{
		PlayerID:         string(g.PlayerID),
		PlayerName:       g.PlayerName,
		Guess:            g.Guess,
		CorrectDigits:    g.CorrectDigits,
		CorrectPositions: g.CorrectPositions,
	}
}

// MarshalEvent serializes a domain event into an outbound message
func MarshalEvent(ev model.Event) ([]byte, error) {
	return json.Marshal(EventMessage{
		Type:     string(ev.Type),
		PlayerID: string(ev.PlayerID),
		Session:  SessionViewFromModel(ev.Session),
		Guess:    GuessViewFromModel(ev.Guess),
	})
}

// MarshalError serializes an error event for the originating client
func MarshalError(message string) []byte {
	data, _ := json.Marshal(EventMessage{
		Type:    string(model.EventError),
		Message: message,
	})
	return data
}
