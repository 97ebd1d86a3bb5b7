// Package session implements the session registry and the per-session game
// state machine: joining and leaving, secret-number locking, turn-based guess
// evaluation, and win detection.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mcoot/numberduel-go/internal/dependencies/clock"
	"github.com/mcoot/numberduel-go/internal/dependencies/random"
	"github.com/mcoot/numberduel-go/internal/model"
	"github.com/mcoot/numberduel-go/internal/services/guess"
	"github.com/mcoot/numberduel-go/internal/storage"
)

const (
	// SessionIDLength is the length of generated session identifiers
	SessionIDLength = 8
	// SessionIDAlphabet is the characters used in session identifiers
	// (lowercase, avoiding confusable characters)
	SessionIDAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"

	// PlayerIDLength is the length of generated player identifiers
	PlayerIDLength = 8
)

// Controller owns the process-wide session registry and serializes all
// mutating operations per session. Different sessions are fully independent;
// operations on the same session are applied one at a time, so the
// check-evaluate-append-flip sequence of a guess is atomic with respect to
// the other connection.
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[model.SessionID]*sync.Mutex
}

// NewController creates a new session controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "session")),
		locks:   make(map[model.SessionID]*sync.Mutex),
	}
}

// lockSession returns the serialization lock for a session, creating it on
// first use. Lock instances are dropped when the session is disposed; a
// caller holding a stale instance re-reads the session afterwards and fails
// with ErrSessionNotFound, so no mutation can slip past disposal.
func (c *Controller) lockSession(id model.SessionID) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[id]
	if !ok {
		l = &sync.Mutex{}
		c.locks[id] = l
	}
	return l
}

// dropLock removes the serialization lock for a session that no longer
// exists. The table entry is removed only if it is still the instance the
// caller holds: a waiter that re-created the entry after an earlier drop
// must not have it deleted out from under it, or two goroutines could end
// up serializing the same session on different mutexes.
func (c *Controller) dropLock(id model.SessionID, l *sync.Mutex) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locks[id] == l {
		delete(c.locks, id)
	}
}

// loadSession reads a session while its serialization lock is held. A lookup
// of an identifier with no session behind it removes the lock-table entry
// that lockSession just created; otherwise lookups of bogus or disposed
// identifiers from remote clients would grow the table without bound.
func (c *Controller) loadSession(ctx context.Context, id model.SessionID, l *sync.Mutex) (*model.Session, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			c.dropLock(id, l)
		}
		return nil, err
	}
	return session, nil
}

// CreateSession creates a new empty session with a fresh collision-checked
// identifier and returns a snapshot of it.
func (c *Controller) CreateSession(ctx context.Context) (*model.Session, error) {
	now := c.clock.Now()

	var id model.SessionID
	for {
		id = model.SessionID(c.random.String(SessionIDLength, SessionIDAlphabet))
		exists, err := c.storage.SessionExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	session := &model.Session{
		ID:        id,
		Status:    model.SessionStatusWaiting,
		Players:   []model.Player{},
		Guesses:   []model.Guess{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("session created", slog.String("session_id", string(id)))

	return session.Clone(), nil
}

// GetSession returns a snapshot of the session with the given identifier
func (c *Controller) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	l := c.lockSession(id)
	l.Lock()
	defer l.Unlock()

	session, err := c.loadSession(ctx, id, l)
	if err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

// ListSessions returns summaries of all live sessions
func (c *Controller) ListSessions(ctx context.Context) ([]model.SessionSummary, error) {
	return c.storage.ListSessions(ctx)
}

// Join adds a player with the given display name to a session. The second
// joiner moves the session from waiting to ready. A third join attempt fails
// with ErrSessionFull and leaves the session untouched.
func (c *Controller) Join(ctx context.Context, id model.SessionID, name string) (model.PlayerID, model.Event, error) {
	l := c.lockSession(id)
	l.Lock()
	defer l.Unlock()

	session, err := c.loadSession(ctx, id, l)
	if err != nil {
		return "", model.Event{}, err
	}

	if session.IsFull() {
		return "", model.Event{}, model.ErrSessionFull
	}

	playerID := newPlayerID()
	session.Players = append(session.Players, model.Player{
		ID:          playerID,
		DisplayName: name,
		JoinedAt:    c.clock.Now(),
	})
	if session.IsFull() {
		session.Status = model.SessionStatusReady
	}
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return "", model.Event{}, err
	}

	c.logger.Info("player joined",
		slog.String("session_id", string(id)),
		slog.String("player_id", string(playerID)),
		slog.String("name", name),
	)

	return playerID, model.Event{
		Type:     model.EventPlayerJoined,
		PlayerID: playerID,
		Session:  session.Clone(),
	}, nil
}

// Leave removes a player from a session. The last player leaving disposes
// the session; disposed is true and the event carries no snapshot. If a
// player leaves after the match has started, the match is reset and the
// session reverts to waiting for a new opponent.
func (c *Controller) Leave(ctx context.Context, id model.SessionID, playerID model.PlayerID) (disposed bool, _ model.Event, _ error) {
	l := c.lockSession(id)
	l.Lock()
	defer l.Unlock()

	session, err := c.loadSession(ctx, id, l)
	if err != nil {
		return false, model.Event{}, err
	}

	if session.GetPlayer(playerID) == nil {
		return false, model.Event{}, model.ErrNotInSession
	}

	for i := range session.Players {
		if session.Players[i].ID == playerID {
			session.Players = append(session.Players[:i], session.Players[i+1:]...)
			break
		}
	}

	if len(session.Players) == 0 {
		if err := c.storage.DeleteSession(ctx, id); err != nil {
			return false, model.Event{}, err
		}
		c.dropLock(id, l)
		c.logger.Info("session disposed", slog.String("session_id", string(id)))
		return true, model.Event{Type: model.EventPlayerLeft, PlayerID: playerID}, nil
	}

	// A departure after the match has started abandons the match: history
	// and the remaining player's secret are cleared so a new opponent can
	// join a fresh game.
	if session.Status == model.SessionStatusInProgress || session.Status == model.SessionStatusCompleted {
		session.Guesses = []model.Guess{}
		session.CurrentTurn = ""
		session.Winner = ""
		for i := range session.Players {
			session.Players[i].SecretNumber = ""
			session.Players[i].IsReady = false
		}
	}
	session.Status = model.SessionStatusWaiting
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return false, model.Event{}, err
	}

	c.logger.Info("player left",
		slog.String("session_id", string(id)),
		slog.String("player_id", string(playerID)),
	)

	return false, model.Event{
		Type:     model.EventPlayerLeft,
		PlayerID: playerID,
		Session:  session.Clone(),
	}, nil
}

// LockNumber sets a player's secret number. Once both players have locked,
// the session moves to in_progress and the first joiner takes the first turn.
func (c *Controller) LockNumber(ctx context.Context, id model.SessionID, playerID model.PlayerID, number string) (model.Event, error) {
	l := c.lockSession(id)
	l.Lock()
	defer l.Unlock()

	session, err := c.loadSession(ctx, id, l)
	if err != nil {
		return model.Event{}, err
	}

	player := session.GetPlayer(playerID)
	if player == nil {
		return model.Event{}, model.ErrNotInSession
	}
	if player.IsReady {
		return model.Event{}, model.ErrAlreadyLocked
	}
	if err := guess.ValidateNumber(number); err != nil {
		return model.Event{}, err
	}

	player.SecretNumber = number
	player.IsReady = true

	if session.AllReady() {
		session.Status = model.SessionStatusInProgress
		session.CurrentTurn = session.Players[0].ID
	}
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return model.Event{}, err
	}

	c.logger.Info("number locked",
		slog.String("session_id", string(id)),
		slog.String("player_id", string(playerID)),
		slog.String("status", string(session.Status)),
	)

	return model.Event{
		Type:     model.EventNumberLocked,
		PlayerID: playerID,
		Session:  session.Clone(),
	}, nil
}

// MakeGuess evaluates a guess against the opponent's secret. Four correct
// positions complete the session with the guesser as winner; otherwise the
// turn flips to the opponent.
func (c *Controller) MakeGuess(ctx context.Context, id model.SessionID, playerID model.PlayerID, number string) (model.Event, error) {
	l := c.lockSession(id)
	l.Lock()
	defer l.Unlock()

	session, err := c.loadSession(ctx, id, l)
	if err != nil {
		return model.Event{}, err
	}

	if session.Status != model.SessionStatusInProgress {
		return model.Event{}, model.ErrNotInProgress
	}

	player := session.GetPlayer(playerID)
	if player == nil {
		return model.Event{}, model.ErrNotInSession
	}
	if session.CurrentTurn != playerID {
		return model.Event{}, model.ErrNotYourTurn
	}
	if guess.ValidateNumber(number) != nil {
		return model.Event{}, model.ErrInvalidGuess
	}

	opponent := session.Opponent(playerID)
	correctDigits, correctPositions, err := guess.Evaluate(opponent.SecretNumber, number)
	if err != nil {
		return model.Event{}, err
	}

	g := model.Guess{
		PlayerID:         playerID,
		PlayerName:       player.DisplayName,
		Guess:            number,
		CorrectDigits:    correctDigits,
		CorrectPositions: correctPositions,
		Seq:              len(session.Guesses) + 1,
		MadeAt:           c.clock.Now(),
	}
	session.Guesses = append(session.Guesses, g)

	if g.IsWinning() {
		session.Status = model.SessionStatusCompleted
		session.Winner = playerID
	} else {
		session.CurrentTurn = opponent.ID
	}
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return model.Event{}, err
	}

	if g.IsWinning() {
		c.logger.Info("session completed",
			slog.String("session_id", string(id)),
			slog.String("winner", string(playerID)),
			slog.Int("guesses", len(session.Guesses)),
		)
	}

	return model.Event{
		Type:     model.EventGuessMade,
		PlayerID: playerID,
		Session:  session.Clone(),
		Guess:    &g,
	}, nil
}

// newPlayerID generates a short unique player identifier
func newPlayerID() model.PlayerID {
	return model.PlayerID(uuid.NewString()[:PlayerIDLength])
}

// ControllerInterface is the full controller surface, for dependency injection
type ControllerInterface interface {
	CreateSession(ctx context.Context) (*model.Session, error)
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	ListSessions(ctx context.Context) ([]model.SessionSummary, error)
	Join(ctx context.Context, id model.SessionID, name string) (model.PlayerID, model.Event, error)
	Leave(ctx context.Context, id model.SessionID, playerID model.PlayerID) (bool, model.Event, error)
	LockNumber(ctx context.Context, id model.SessionID, playerID model.PlayerID, number string) (model.Event, error)
	MakeGuess(ctx context.Context, id model.SessionID, playerID model.PlayerID, number string) (model.Event, error)
}

var _ ControllerInterface = (*Controller)(nil)

// IsDomainError reports whether err is a recoverable, user-facing rule
// violation rather than an infrastructure failure.
func IsDomainError(err error) bool {
	for _, domainErr := range []error{
		model.ErrSessionNotFound,
		model.ErrSessionFull,
		model.ErrNotInSession,
		model.ErrInvalidNumber,
		model.ErrAlreadyLocked,
		model.ErrNotInProgress,
		model.ErrNotYourTurn,
		model.ErrInvalidGuess,
	} {
		if errors.Is(err, domainErr) {
			return true
		}
	}
	return false
}
