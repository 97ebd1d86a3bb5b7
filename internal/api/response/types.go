package response

import (
	"time"

	"github.com/mcoot/numberduel-go/internal/model"
)

// Player represents a player in API responses. Secret numbers are never
// included.
type Player struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	IsReady     bool      `json:"is_ready"`
	JoinedAt    time.Time `json:"joined_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsReady:     p.IsReady,
		JoinedAt:    p.JoinedAt,
	}
}

// Guess represents an evaluated guess in API responses
type Guess struct {
	PlayerID         string    `json:"player_id"`
	PlayerName       string    `json:"player_name,omitempty"`
	Guess            string    `json:"guess"`
	CorrectDigits    int       `json:"correct_digits"`
	CorrectPositions int       `json:"correct_positions"`
	Seq              int       `json:"seq"`
	MadeAt           time.Time `json:"made_at"`
}

// GuessFromModel converts a model.Guess
func GuessFromModel(g model.Guess) Guess {
	return Guess{
		PlayerID:         string(g.PlayerID),
		PlayerName:       g.PlayerName,
		Guess:            g.Guess,
		CorrectDigits:    g.CorrectDigits,
		CorrectPositions: g.CorrectPositions,
		Seq:              g.Seq,
		MadeAt:           g.MadeAt,
	}
}

// Session represents a session in API responses
type Session struct {
	ID          string    `json:"id"`
	Players     []Player  `json:"players"`
	Status      string    `json:"status"`
	CurrentTurn *string   `json:"current_turn"`
	Guesses     []Guess   `json:"guesses"`
	Winner      *string   `json:"winner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SessionFromModel converts a model.Session, stripping secrets
func SessionFromModel(s *model.Session) Session {
	players := make([]Player, len(s.Players))
	for i := range s.Players {
		players[i] = PlayerFromModel(&s.Players[i])
	}

	guesses := make([]Guess, len(s.Guesses))
	for i, g := range s.Guesses {
		guesses[i] = GuessFromModel(g)
	}

	var currentTurn *string
	if s.CurrentTurn != "" {
		t := string(s.CurrentTurn)
		currentTurn = &t
	}

	var winner *string
	if s.Winner != "" {
		w := string(s.Winner)
		winner = &w
	}

	return Session{
		ID:          string(s.ID),
		Players:     players,
		Status:      string(s.Status),
		CurrentTurn: currentTurn,
		Guesses:     guesses,
		Winner:      winner,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// SessionSummary represents a session in list responses
type SessionSummary struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"player_count"`
	Status      string `json:"status"`
}

// SummaryFromModel converts a model.SessionSummary
func SummaryFromModel(s model.SessionSummary) SessionSummary {
	return SessionSummary{
		ID:          string(s.ID),
		PlayerCount: s.PlayerCount,
		Status:      string(s.Status),
	}
}

// SessionList is the response for listing sessions
type SessionList struct {
	Sessions []SessionSummary `json:"sessions"`
}

// SessionListFromModel converts a slice of summaries
func SessionListFromModel(summaries []model.SessionSummary) SessionList {
	sessions := make([]SessionSummary, len(summaries))
	for i, s := range summaries {
		sessions[i] = SummaryFromModel(s)
	}
	return SessionList{Sessions: sessions}
}
