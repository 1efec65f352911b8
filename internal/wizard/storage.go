package wizard

import (
	"context"
	"errors"
)

var (
	// ErrSessionNotFound indicates that no session exists for the thread.
	ErrSessionNotFound = errors.New("wizard session not found")
	// ErrSessionLocked indicates that a concurrent operation already holds
	// the per-thread lock.
	ErrSessionLocked = errors.New("session is locked, try again later")
)

// Storage defines the persistence contract for wizard sessions, keyed by the
// owning thread identifier.
type Storage interface {
	// GetSession returns the session for the thread.
	GetSession(ctx context.Context, threadID int64) (*Session, error)
	// SetSession saves the session for the thread.
	SetSession(ctx context.Context, threadID int64, session *Session) error
	// ClearSession removes the session for the thread.
	ClearSession(ctx context.Context, threadID int64) error
	// AllSessions returns every stored session.
	AllSessions(ctx context.Context) ([]*Session, error)
}
