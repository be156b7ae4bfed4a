// Package service orchestrates booking operations: authorization, domain
// transitions, and storage. All mutations to a session run inside the
// store's per-session critical section so the check and the write are one
// atomic step.
package service

import (
	"context"
	"log"
	"time"

	apperrors "github.com/tableside/tableside/internal/platform/errors"
	"github.com/tableside/tableside/internal/platform/id"
	"github.com/tableside/tableside/internal/services/booking/domain/session"
	"github.com/tableside/tableside/internal/services/booking/domain/user"
	"github.com/tableside/tableside/internal/services/booking/policy"
	"github.com/tableside/tableside/internal/services/booking/query"
	"github.com/tableside/tableside/internal/services/booking/storage"
)

// Stores bundles the persistence dependencies of the booking service.
type Stores struct {
	Users    storage.UserStore
	Sessions storage.SessionStore
}

// Service implements the booking operations.
type Service struct {
	stores     Stores
	now        func() time.Time
	userIDs    *id.Sequence
	sessionIDs *id.Sequence
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a booking service backed by the given stores.
func New(stores Stores, opts ...Option) *Service {
	svc := &Service{
		stores:     stores,
		now:        time.Now,
		userIDs:    &id.Sequence{},
		sessionIDs: &id.Sequence{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// RegisterUser creates a new account. Registration is open; no caller
// identity is required.
func (s *Service) RegisterUser(ctx context.Context, input user.CreateInput) (user.User, error) {
	u, err := user.Create(input, s.now, s.userIDs.Next)
	if err != nil {
		return user.User{}, err
	}
	if err := s.stores.Users.PutUser(ctx, u); err != nil {
		return user.User{}, err
	}
	log.Printf("user registered: id=%d role=%s", u.ID, u.Role)
	return u, nil
}

// GetUser returns the account with the given id.
func (s *Service) GetUser(ctx context.Context, userID int64) (user.User, error) {
	return s.stores.Users.GetUser(ctx, userID)
}

// CreateSession creates a draft session owned by the caller. The caller
// must hold the host role.
func (s *Service) CreateSession(ctx context.Context, caller policy.Caller, input session.CreateInput) (session.Session, error) {
	if err := policy.Allowed(caller, policy.OpCreate, session.Session{}); err != nil {
		return session.Session{}, err
	}

	input.HostID = caller.ID
	created, err := session.Create(input, s.now, s.sessionIDs.Next)
	if err != nil {
		return session.Session{}, err
	}
	if err := s.stores.Sessions.PutSession(ctx, created); err != nil {
		return session.Session{}, err
	}
	log.Printf("session created: id=%d host=%d", created.ID, created.HostID)
	return created, nil
}

// GetSession returns the session and counts the read as a view. The view
// counter is best effort and does not bump UpdatedAt.
func (s *Service) GetSession(ctx context.Context, sessionID int64) (session.Session, error) {
	return s.stores.Sessions.AddSessionView(ctx, sessionID)
}

// ListSessions returns one page of sessions matching the query parameters.
func (s *Service) ListSessions(ctx context.Context, params query.Params) (query.Result, error) {
	snapshot, err := s.stores.Sessions.SnapshotSessions(ctx)
	if err != nil {
		return query.Result{}, err
	}
	return query.List(snapshot, params)
}

// UpdateSession applies a content patch to a session owned by the caller.
func (s *Service) UpdateSession(ctx context.Context, caller policy.Caller, sessionID int64, patch session.ContentPatch) (session.Session, error) {
	return s.mutate(ctx, caller, sessionID, policy.OpUpdate, func(current session.Session) (session.Session, error) {
		return session.ApplyPatch(current, patch, s.now)
	})
}

// PublishSession makes a draft session visible to participants.
func (s *Service) PublishSession(ctx context.Context, caller policy.Caller, sessionID int64) (session.Session, error) {
	updated, err := s.mutate(ctx, caller, sessionID, policy.OpPublish, func(current session.Session) (session.Session, error) {
		return session.Publish(current, s.now)
	})
	if err != nil {
		return session.Session{}, err
	}
	log.Printf("session published: id=%d", updated.ID)
	return updated, nil
}

// JoinSession admits the caller as a participant.
func (s *Service) JoinSession(ctx context.Context, caller policy.Caller, sessionID int64) (session.Session, error) {
	updated, err := s.mutate(ctx, caller, sessionID, policy.OpJoin, func(current session.Session) (session.Session, error) {
		return session.Join(current, caller.ID, s.now)
	})
	if err != nil {
		return session.Session{}, err
	}
	log.Printf("session joined: id=%d user=%d seats=%d/%d", updated.ID, caller.ID, len(updated.Participants), updated.MaxParticipants)
	return updated, nil
}

// LeaveSession releases the caller's seat. Leaving a session the caller is
// not part of, or one that has already started, is a no-op.
func (s *Service) LeaveSession(ctx context.Context, caller policy.Caller, sessionID int64) (session.Session, error) {
	return s.mutate(ctx, caller, sessionID, policy.OpLeave, func(current session.Session) (session.Session, error) {
		return session.Leave(current, caller.ID, s.now)
	})
}

// StartSession moves a session with bookings to in-progress.
func (s *Service) StartSession(ctx context.Context, caller policy.Caller, sessionID int64) (session.Session, error) {
	updated, err := s.mutate(ctx, caller, sessionID, policy.OpStart, func(current session.Session) (session.Session, error) {
		return session.Start(current, s.now)
	})
	if err != nil {
		return session.Session{}, err
	}
	log.Printf("session started: id=%d participants=%d", updated.ID, len(updated.Participants))
	return updated, nil
}

// EndSession completes an in-progress session.
func (s *Service) EndSession(ctx context.Context, caller policy.Caller, sessionID int64) (session.Session, error) {
	updated, err := s.mutate(ctx, caller, sessionID, policy.OpEnd, func(current session.Session) (session.Session, error) {
		return session.End(current, s.now)
	})
	if err != nil {
		return session.Session{}, err
	}
	log.Printf("session ended: id=%d", updated.ID)
	return updated, nil
}

// DeleteSession removes a session owned by the caller. Sessions that have
// started cannot be removed.
func (s *Service) DeleteSession(ctx context.Context, caller policy.Caller, sessionID int64) error {
	err := s.stores.Sessions.DeleteSession(ctx, sessionID, func(current session.Session) error {
		if err := policy.Allowed(caller, policy.OpDelete, current); err != nil {
			return err
		}
		return session.CanDelete(current)
	})
	if err != nil {
		return err
	}
	log.Printf("session deleted: id=%d host=%d", sessionID, caller.ID)
	return nil
}

// mutate runs the policy check and the domain transition inside the store's
// per-session critical section.
func (s *Service) mutate(ctx context.Context, caller policy.Caller, sessionID int64, op policy.Operation, fn func(session.Session) (session.Session, error)) (session.Session, error) {
	updated, err := s.stores.Sessions.MutateSession(ctx, sessionID, func(current session.Session) (session.Session, error) {
		if err := policy.Allowed(caller, op, current); err != nil {
			return session.Session{}, err
		}
		return fn(current)
	})
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeUnknown {
			return session.Session{}, apperrors.Wrap(apperrors.CodeUnknown, "mutate session", err)
		}
		return session.Session{}, err
	}
	return updated, nil
}
