package model

import "time"

// PlayerID uniquely identifies a player within a session
type PlayerID string

// Player represents a participant in a game session
type Player struct {
	ID          PlayerID
	DisplayName string
	// SecretNumber is the 4-distinct-digit number the opponent must guess.
	// Empty until the player locks a number. Never included in snapshots.
	SecretNumber string
	IsReady      bool // true once the secret number is locked
	JoinedAt     time.Time
}
