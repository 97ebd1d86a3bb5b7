package storage

import (
	"context"

	"github.com/mcoot/numberduel-go/internal/model"
)

// Storage defines the interface for session persistence. Sessions live only
// for the duration of a match; backends are free to expire them.
type Storage interface {
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error
	SessionExists(ctx context.Context, id model.SessionID) (bool, error)

	// ListSessions returns summaries of all live sessions, for diagnostics
	// and the listing endpoint. Order is unspecified.
	ListSessions(ctx context.Context) ([]model.SessionSummary, error)
}
