package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionFull     = errors.New("session is full")
	ErrNotInSession    = errors.New("player is not in session")

	// Number locking errors
	ErrInvalidNumber = errors.New("number must be 4 unique digits")
	ErrAlreadyLocked = errors.New("number is already locked")

	// Guessing errors
	ErrNotInProgress = errors.New("game is not in progress")
	ErrNotYourTurn   = errors.New("not this player's turn")
	ErrInvalidGuess  = errors.New("guess must be 4 unique digits")

	// Evaluator errors
	ErrInvalidInput = errors.New("invalid evaluator input")
)
