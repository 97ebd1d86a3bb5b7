package model

import "time"

// MaxPlayers is the number of players a session holds once full
const MaxPlayers = 2

// SessionID is a short human-shareable identifier for joining sessions
type SessionID string

// SessionStatus represents the current phase of a session
type SessionStatus string

const (
	SessionStatusWaiting    SessionStatus = "waiting"     // Fewer than two players
	SessionStatusReady      SessionStatus = "ready"       // Two players, secrets not both locked
	SessionStatusInProgress SessionStatus = "in_progress" // Both secrets locked, guessing underway
	SessionStatusCompleted  SessionStatus = "completed"   // A guess matched the opponent's secret
)

// Session is a single game instance shared by up to two players.
// Players are kept in join order; the first joiner takes the first turn.
type Session struct {
	ID      SessionID
	Status  SessionStatus
	Players []Player

	// CurrentTurn is the player currently allowed to guess.
	// Empty until the session is in progress.
	CurrentTurn PlayerID

	Guesses []Guess

	// Winner is set exactly once, on the in_progress -> completed transition
	Winner PlayerID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetPlayer returns the player with the given ID, or nil if not present
func (s *Session) GetPlayer(id PlayerID) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// Opponent returns the other player in the session, or nil if there is none
func (s *Session) Opponent(id PlayerID) *Player {
	for i := range s.Players {
		if s.Players[i].ID != id {
			return &s.Players[i]
		}
	}
	return nil
}

// IsFull returns true if the session has reached its player limit
func (s *Session) IsFull() bool {
	return len(s.Players) >= MaxPlayers
}

// AllReady returns true if the session is full and every player has locked a number
func (s *Session) AllReady() bool {
	if !s.IsFull() {
		return false
	}
	for i := range s.Players {
		if !s.Players[i].IsReady {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the session. Controllers hand out clones so
// that a snapshot broadcast after a mutation commits cannot observe a
// subsequent mutation of the stored session.
func (s *Session) Clone() *Session {
	c := *s
	c.Players = make([]Player, len(s.Players))
	copy(c.Players, s.Players)
	c.Guesses = make([]Guess, len(s.Guesses))
	copy(c.Guesses, s.Guesses)
	return &c
}

// SessionSummary is a lightweight listing view of a session
type SessionSummary struct {
	ID          SessionID
	PlayerCount int
	Status      SessionStatus
}

// Summary returns the listing view of the session
func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		ID:          s.ID,
		PlayerCount: len(s.Players),
		Status:      s.Status,
	}
}
