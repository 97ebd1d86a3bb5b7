package model

import "time"

// Guess records a single evaluated guess. Immutable once appended to a
// session's history.
type Guess struct {
	PlayerID   PlayerID
	PlayerName string
	Guess      string
	// CorrectDigits is the number of digit values shared between the guess
	// and the secret, irrespective of position
	CorrectDigits int
	// CorrectPositions is the number of positions where the guess and the
	// secret hold the same digit; 4 wins the game
	CorrectPositions int
	// Seq is the 1-based position of this guess in the session history
	Seq    int
	MadeAt time.Time
}

// IsWinning returns true if this guess exactly matched the secret
func (g Guess) IsWinning() bool {
	return g.CorrectPositions == SecretLength
}

// SecretLength is the required length of secret numbers and guesses
const SecretLength = 4
