package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/numberduel-go/internal/dependencies/mocks"
	"github.com/mcoot/numberduel-go/internal/model"
	"github.com/mcoot/numberduel-go/internal/storage/memory"
	"github.com/mcoot/numberduel-go/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.controller = NewController(s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

// createSession creates a session with a known identifier
func (s *ControllerSuite) createSession(id string) model.SessionID {
	s.random.QueueString(id)
	session, err := s.controller.CreateSession(s.ctx)
	s.Require().NoError(err)
	return session.ID
}

// joinTwo joins Alice and Bob and returns their player IDs
func (s *ControllerSuite) joinTwo(id model.SessionID) (alice, bob model.PlayerID) {
	alice, _, err := s.controller.Join(s.ctx, id, "Alice")
	s.Require().NoError(err)
	bob, _, err = s.controller.Join(s.ctx, id, "Bob")
	s.Require().NoError(err)
	return alice, bob
}

// startGame gets a session to in_progress with the given secrets
func (s *ControllerSuite) startGame(id model.SessionID, aliceSecret, bobSecret string) (alice, bob model.PlayerID) {
	alice, bob = s.joinTwo(id)
	_, err := s.controller.LockNumber(s.ctx, id, alice, aliceSecret)
	s.Require().NoError(err)
	_, err = s.controller.LockNumber(s.ctx, id, bob, bobSecret)
	s.Require().NoError(err)
	return alice, bob
}

// CreateSession tests

func (s *ControllerSuite) TestCreateSessionSucceeds() {
	s.random.QueueString("abc23456")

	session, err := s.controller.CreateSession(s.ctx)
	s.Require().NoError(err)

	s.Equal(model.SessionID("abc23456"), session.ID)
	s.Equal(model.SessionStatusWaiting, session.Status)
	s.Empty(session.Players)
	s.Empty(session.Guesses)
	s.Empty(session.Winner)
}

func (s *ControllerSuite) TestCreateSessionRetriesOnCollision() {
	first := s.createSession("abc23456")

	// Queue a colliding identifier followed by a fresh one
	s.random.QueueString("abc23456", "def23456")
	second, err := s.controller.CreateSession(s.ctx)
	s.Require().NoError(err)

	s.NotEqual(first, second.ID)
	s.Equal(model.SessionID("def23456"), second.ID)
}

func (s *ControllerSuite) TestGetSessionNotFound() {
	_, err := s.controller.GetSession(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Join tests

func (s *ControllerSuite) TestJoinFirstPlayerStaysWaiting() {
	id := s.createSession("abc23456")

	playerID, event, err := s.controller.Join(s.ctx, id, "Alice")
	s.Require().NoError(err)

	s.NotEmpty(playerID)
	s.Equal(model.EventPlayerJoined, event.Type)
	s.Equal(playerID, event.PlayerID)
	s.Equal(model.SessionStatusWaiting, event.Session.Status)
	s.Len(event.Session.Players, 1)
	s.Equal("Alice", event.Session.Players[0].DisplayName)
}

func (s *ControllerSuite) TestJoinSecondPlayerMovesToReady() {
	id := s.createSession("abc23456")
	alice, bob := s.joinTwo(id)

	s.NotEqual(alice, bob)

	session, err := s.controller.GetSession(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.SessionStatusReady, session.Status)
	// Insertion order is join order
	s.Equal(alice, session.Players[0].ID)
	s.Equal(bob, session.Players[1].ID)
}

func (s *ControllerSuite) TestThirdJoinRejectedWithoutMutation() {
	id := s.createSession("abc23456")
	s.joinTwo(id)

	before, err := s.controller.GetSession(s.ctx, id)
	s.Require().NoError(err)

	_, _, err = s.controller.Join(s.ctx, id, "Carol")
	s.ErrorIs(err, model.ErrSessionFull)

	after, err := s.controller.GetSession(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(before.Players, after.Players)
	s.Equal(before.Status, after.Status)
}

func (s *ControllerSuite) TestJoinUnknownSession() {
	_, _, err := s.controller.Join(s.ctx, "nonexistent", "Alice")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// LockNumber tests

func (s *ControllerSuite) TestLockNumberMarksPlayerReady() {
	id := s.createSession("abc23456")
	alice, _ := s.joinTwo(id)

	event, err := s.controller.LockNumber(s.ctx, id, alice, "1234")
	s.Require().NoError(err)

	s.Equal(model.EventNumberLocked, event.Type)
	s.Equal(model.SessionStatusReady, event.Session.Status)
	s.True(event.Session.GetPlayer(alice).IsReady)
	s.Empty(event.Session.CurrentTurn)
}

func (s *ControllerSuite) TestLockNumberBothReadyStartsGame() {
	id := s.createSession("abc23456")
	alice, bob := s.joinTwo(id)

	_, err := s.controller.LockNumber(s.ctx, id, alice, "1234")
	s.Require().NoError(err)
	event, err := s.controller.LockNumber(s.ctx, id, bob, "5678")
	s.Require().NoError(err)

	s.Equal(model.SessionStatusInProgress, event.Session.Status)
	// First joiner goes first
	s.Equal(alice, event.Session.CurrentTurn)
}

func (s *ControllerSuite) TestLockNumberInvalid() {
	id := s.createSession("abc23456")
	alice, _ := s.joinTwo(id)

	for _, number := range []string{"", "123", "12345", "1123", "12a4"} {
		_, err := s.controller.LockNumber(s.ctx, id, alice, number)
		s.ErrorIs(err, model.ErrInvalidNumber, "number %q", number)
	}

	session, _ := s.controller.GetSession(s.ctx, id)
	s.False(session.GetPlayer(alice).IsReady)
}

func (s *ControllerSuite) TestLockNumberTwiceRejected() {
	id := s.createSession("abc23456")
	alice, _ := s.joinTwo(id)

	_, err := s.controller.LockNumber(s.ctx, id, alice, "1234")
	s.Require().NoError(err)

	_, err = s.controller.LockNumber(s.ctx, id, alice, "5678")
	s.ErrorIs(err, model.ErrAlreadyLocked)

	// State unchanged by the rejected call
	session, _ := s.controller.GetSession(s.ctx, id)
	s.Equal("1234", session.GetPlayer(alice).SecretNumber)
}

func (s *ControllerSuite) TestLockNumberUnknownPlayer() {
	id := s.createSession("abc23456")
	s.joinTwo(id)

	_, err := s.controller.LockNumber(s.ctx, id, "stranger", "1234")
	s.ErrorIs(err, model.ErrNotInSession)
}

// MakeGuess tests

func (s *ControllerSuite) TestWinningGuessCompletesSession() {
	id := s.createSession("abc23456")
	alice, _ := s.startGame(id, "1234", "5678")

	event, err := s.controller.MakeGuess(s.ctx, id, alice, "5678")
	s.Require().NoError(err)

	s.Equal(model.EventGuessMade, event.Type)
	s.Require().NotNil(event.Guess)
	s.Equal(4, event.Guess.CorrectDigits)
	s.Equal(4, event.Guess.CorrectPositions)
	s.Equal(model.SessionStatusCompleted, event.Session.Status)
	s.Equal(alice, event.Session.Winner)
	// Turn pointer is left on the winner
	s.Equal(alice, event.Session.CurrentTurn)
}

func (s *ControllerSuite) TestNonWinningGuessFlipsTurn() {
	id := s.createSession("abc23456")
	alice, bob := s.startGame(id, "1234", "5678")

	event, err := s.controller.MakeGuess(s.ctx, id, alice, "1567")
	s.Require().NoError(err)

	s.Require().NotNil(event.Guess)
	s.Equal(3, event.Guess.CorrectDigits)
	s.Equal(0, event.Guess.CorrectPositions)
	s.Equal(model.SessionStatusInProgress, event.Session.Status)
	s.Equal(bob, event.Session.CurrentTurn)
	s.Empty(event.Session.Winner)
}

func (s *ControllerSuite) TestTurnAlternatesStrictly() {
	id := s.createSession("abc23456")
	alice, bob := s.startGame(id, "1234", "5678")

	// Guesses chosen to never win
	turns := []struct {
		player model.PlayerID
		guess  string
	}{
		{alice, "9012"},
		{bob, "9012"},
		{alice, "3456"},
		{bob, "3456"},
		{alice, "7890"},
		{bob, "7890"},
	}

	for i, turn := range turns {
		event, err := s.controller.MakeGuess(s.ctx, id, turn.player, turn.guess)
		s.Require().NoError(err, "turn %d", i)
		s.Equal(i+1, event.Guess.Seq)
	}

	session, _ := s.controller.GetSession(s.ctx, id)
	s.Len(session.Guesses, 6)
	s.Equal(alice, session.CurrentTurn)
}

func (s *ControllerSuite) TestGuessOutOfTurnRejected() {
	id := s.createSession("abc23456")
	_, bob := s.startGame(id, "1234", "5678")

	_, err := s.controller.MakeGuess(s.ctx, id, bob, "1234")
	s.ErrorIs(err, model.ErrNotYourTurn)

	session, _ := s.controller.GetSession(s.ctx, id)
	s.Empty(session.Guesses)
}

func (s *ControllerSuite) TestGuessBeforeStartRejected() {
	id := s.createSession("abc23456")
	alice, _ := s.joinTwo(id)

	_, err := s.controller.MakeGuess(s.ctx, id, alice, "1234")
	s.ErrorIs(err, model.ErrNotInProgress)
}

func (s *ControllerSuite) TestGuessAfterCompletionRejected() {
	id := s.createSession("abc23456")
	alice, bob := s.startGame(id, "1234", "5678")

	_, err := s.controller.MakeGuess(s.ctx, id, alice, "5678")
	s.Require().NoError(err)

	_, err = s.controller.MakeGuess(s.ctx, id, bob, "1234")
	s.ErrorIs(err, model.ErrNotInProgress)

	session, _ := s.controller.GetSession(s.ctx, id)
	s.Equal(alice, session.Winner)
	s.Len(session.Guesses, 1)
}

func (s *ControllerSuite) TestInvalidGuessRejectedWithoutMutation() {
	id := s.createSession("abc23456")
	alice, _ := s.startGame(id, "1234", "5678")

	_, err := s.controller.MakeGuess(s.ctx, id, alice, "1122")
	s.ErrorIs(err, model.ErrInvalidGuess)

	session, _ := s.controller.GetSession(s.ctx, id)
	s.Empty(session.Guesses)
	s.Equal(alice, session.CurrentTurn)
}

// Leave tests

func (s *ControllerSuite) TestLeaveRecomputesStatus() {
	id := s.createSession("abc23456")
	alice, bob := s.joinTwo(id)

	disposed, event, err := s.controller.Leave(s.ctx, id, bob)
	s.Require().NoError(err)

	s.False(disposed)
	s.Equal(model.EventPlayerLeft, event.Type)
	s.Equal(bob, event.PlayerID)
	s.Equal(model.SessionStatusWaiting, event.Session.Status)
	s.Len(event.Session.Players, 1)
	s.Equal(alice, event.Session.Players[0].ID)
}

func (s *ControllerSuite) TestLastLeaveDisposesSession() {
	id := s.createSession("abc23456")
	alice, _, err := s.controller.Join(s.ctx, id, "Alice")
	s.Require().NoError(err)

	disposed, _, err := s.controller.Leave(s.ctx, id, alice)
	s.Require().NoError(err)
	s.True(disposed)

	_, err = s.controller.GetSession(s.ctx, id)
	s.ErrorIs(err, model.ErrSessionNotFound)

	summaries, err := s.controller.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(summaries)
}

func (s *ControllerSuite) TestLeaveMidGameResetsMatch() {
	id := s.createSession("abc23456")
	alice, bob := s.startGame(id, "1234", "5678")

	_, err := s.controller.MakeGuess(s.ctx, id, alice, "9012")
	s.Require().NoError(err)

	disposed, event, err := s.controller.Leave(s.ctx, id, bob)
	s.Require().NoError(err)
	s.False(disposed)

	// The session reverts to waiting for a new opponent with a clean slate
	s.Equal(model.SessionStatusWaiting, event.Session.Status)
	s.Empty(event.Session.Guesses)
	s.Empty(event.Session.CurrentTurn)
	s.Empty(event.Session.Winner)
	remaining := event.Session.GetPlayer(alice)
	s.Require().NotNil(remaining)
	s.False(remaining.IsReady)
	s.Empty(remaining.SecretNumber)
}

func (s *ControllerSuite) TestLeaveUnknownPlayer() {
	id := s.createSession("abc23456")
	s.joinTwo(id)

	_, _, err := s.controller.Leave(s.ctx, id, "stranger")
	s.ErrorIs(err, model.ErrNotInSession)
}

func (s *ControllerSuite) TestRejoinAfterMatchReset() {
	id := s.createSession("abc23456")
	alice, bob := s.startGame(id, "1234", "5678")

	_, _, err := s.controller.Leave(s.ctx, id, bob)
	s.Require().NoError(err)

	carol, _, err := s.controller.Join(s.ctx, id, "Carol")
	s.Require().NoError(err)

	_, err = s.controller.LockNumber(s.ctx, id, alice, "4321")
	s.Require().NoError(err)
	event, err := s.controller.LockNumber(s.ctx, id, carol, "8765")
	s.Require().NoError(err)

	s.Equal(model.SessionStatusInProgress, event.Session.Status)
	s.Equal(alice, event.Session.CurrentTurn)
}

// Snapshot isolation

func (s *ControllerSuite) TestSnapshotsAreIsolatedFromLaterMutations() {
	id := s.createSession("abc23456")
	alice, bob := s.startGame(id, "1234", "5678")

	event, err := s.controller.MakeGuess(s.ctx, id, alice, "9012")
	s.Require().NoError(err)
	snapshot := event.Session

	_, err = s.controller.MakeGuess(s.ctx, id, bob, "9012")
	s.Require().NoError(err)

	// The earlier snapshot must not observe the later guess
	s.Len(snapshot.Guesses, 1)
	s.Equal(bob, snapshot.CurrentTurn)
}

// Concurrency: simultaneous guesses from both players must be serialized so
// that exactly one succeeds and the other is rejected out of turn.
func (s *ControllerSuite) TestConcurrentGuessesSerialized() {
	id := s.createSession("abc23456")
	alice, bob := s.startGame(id, "1234", "5678")

	const rounds = 50
	var wg sync.WaitGroup
	errs := make([]error, 2*rounds)

	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, errs[2*i] = s.controller.MakeGuess(s.ctx, id, alice, "9012")
		}(i)
		go func(i int) {
			defer wg.Done()
			_, errs[2*i+1] = s.controller.MakeGuess(s.ctx, id, bob, "9012")
		}(i)
		wg.Wait()
	}

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.ErrorIs(err, model.ErrNotYourTurn)
		}
	}

	session, err := s.controller.GetSession(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(succeeded, len(session.Guesses))

	// Accepted guesses must strictly alternate between the two players
	for i := 1; i < len(session.Guesses); i++ {
		s.NotEqual(session.Guesses[i-1].PlayerID, session.Guesses[i].PlayerID)
	}
}

func (s *ControllerSuite) TestConcurrentJoinsNeverExceedTwoPlayers() {
	id := s.createSession("abc23456")

	const joiners = 8
	var wg sync.WaitGroup
	errs := make([]error, joiners)

	wg.Add(joiners)
	for i := 0; i < joiners; i++ {
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = s.controller.Join(s.ctx, id, "Player")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.ErrorIs(err, model.ErrSessionFull)
		}
	}
	s.Equal(2, succeeded)

	session, err := s.controller.GetSession(s.ctx, id)
	s.Require().NoError(err)
	s.Len(session.Players, 2)
	s.Equal(model.SessionStatusReady, session.Status)
}

// lockTableSize reports how many per-session lock entries the controller holds
func (s *ControllerSuite) lockTableSize() int {
	s.controller.mu.Lock()
	defer s.controller.mu.Unlock()
	return len(s.controller.locks)
}

// The lock table is keyed by identifiers supplied by remote clients, so
// failed lookups must not leave entries behind.
func (s *ControllerSuite) TestLockTableNotGrownByUnknownLookups() {
	for i := 0; i < 100; i++ {
		id := model.SessionID(fmt.Sprintf("bogus%03d", i))
		_, err := s.controller.GetSession(s.ctx, id)
		s.Require().ErrorIs(err, model.ErrSessionNotFound)
	}

	_, _, err := s.controller.Join(s.ctx, "bogus", "Alice")
	s.Require().ErrorIs(err, model.ErrSessionNotFound)
	_, err = s.controller.LockNumber(s.ctx, "bogus", "p1", "1234")
	s.Require().ErrorIs(err, model.ErrSessionNotFound)
	_, err = s.controller.MakeGuess(s.ctx, "bogus", "p1", "1234")
	s.Require().ErrorIs(err, model.ErrSessionNotFound)
	_, _, err = s.controller.Leave(s.ctx, "bogus", "p1")
	s.Require().ErrorIs(err, model.ErrSessionNotFound)

	s.Equal(0, s.lockTableSize())
}

func (s *ControllerSuite) TestLockTableEmptyAfterFullLifecycle() {
	id := s.createSession("abc23456")
	alice, bob := s.joinTwo(id)

	_, _, err := s.controller.Leave(s.ctx, id, alice)
	s.Require().NoError(err)
	disposed, _, err := s.controller.Leave(s.ctx, id, bob)
	s.Require().NoError(err)
	s.True(disposed)

	// The trailing leave a dropped connection issues after its opponent
	// already disposed the session must not re-create a table entry
	_, _, err = s.controller.Leave(s.ctx, id, alice)
	s.Require().ErrorIs(err, model.ErrSessionNotFound)

	s.Equal(0, s.lockTableSize())
}

// Listing must be safe against concurrent game operations on the same
// sessions (run under -race).
func (s *ControllerSuite) TestListSessionsConcurrentWithMutations() {
	id := s.createSession("abc23456")

	// A resident player keeps the session alive across the churn below
	_, _, err := s.controller.Join(s.ctx, id, "Bob")
	s.Require().NoError(err)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			pid, _, err := s.controller.Join(s.ctx, id, "Alice")
			if err != nil {
				continue
			}
			_, _, _ = s.controller.Leave(s.ctx, id, pid)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, _ = s.controller.ListSessions(s.ctx)
		}
	}()

	wg.Wait()

	summaries, err := s.controller.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Len(summaries, 1)
}
