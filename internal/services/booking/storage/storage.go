// Package storage defines the persistence contracts for the booking service.
//
// Stores hold deep copies of domain values. Mutations run through
// MutateSession so that concurrent transitions for the same session id are
// serialized by the store rather than by callers.
package storage

import (
	"context"

	apperrors "github.com/tableside/tableside/internal/platform/errors"
	"github.com/tableside/tableside/internal/services/booking/domain/session"
	"github.com/tableside/tableside/internal/services/booking/domain/user"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// UserStore persists user accounts.
type UserStore interface {
	// PutUser saves a user keyed by its id.
	PutUser(ctx context.Context, u user.User) error
	// GetUser returns the user with the given id or ErrNotFound.
	GetUser(ctx context.Context, id int64) (user.User, error)
}

// SessionStore persists sessions and serializes per-session mutations.
type SessionStore interface {
	// PutSession saves a new session keyed by its id.
	PutSession(ctx context.Context, s session.Session) error

	// GetSession returns a copy of the session or ErrNotFound.
	GetSession(ctx context.Context, id int64) (session.Session, error)

	// MutateSession applies fn to the current session value under the
	// per-session lock and stores the result. If fn returns an error the
	// stored value is left untouched and the error is returned as-is.
	// Returns ErrNotFound when the id is unknown.
	MutateSession(ctx context.Context, id int64, fn func(session.Session) (session.Session, error)) (session.Session, error)

	// DeleteSession removes the session if guard approves the current
	// value. The guard runs under the same lock as mutations so the
	// check and the removal are atomic. Returns ErrNotFound when the id
	// is unknown.
	DeleteSession(ctx context.Context, id int64, guard func(session.Session) error) error

	// SnapshotSessions returns copies of all stored sessions in insertion
	// order.
	SnapshotSessions(ctx context.Context) ([]session.Session, error)

	// AddSessionView increments the best-effort view counter and returns
	// the resulting session copy. Returns ErrNotFound when the id is
	// unknown.
	AddSessionView(ctx context.Context, id int64) (session.Session, error)
}
