// Package memory provides an in-process implementation of the booking stores.
//
// Each session lives in its own entry with a dedicated mutex, so mutations
// against different sessions never contend while mutations against the same
// session are serialized. The map lock is always acquired before an entry
// lock; no code path waits on the map lock while holding an entry lock.
package memory

import (
	"context"
	"sync"

	"github.com/tableside/tableside/internal/services/booking/domain/session"
	"github.com/tableside/tableside/internal/services/booking/domain/user"
	"github.com/tableside/tableside/internal/services/booking/storage"
)

// Store keeps users and sessions in process memory.
type Store struct {
	usersMu sync.RWMutex
	users   map[int64]user.User

	sessionsMu sync.RWMutex
	sessions   map[int64]*sessionEntry
	order      []int64
}

type sessionEntry struct {
	mu sync.Mutex
	// deleted marks an entry that was removed from the map while another
	// goroutine still held a pointer to it.
	deleted bool
	value   session.Session
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:    make(map[int64]user.User),
		sessions: make(map[int64]*sessionEntry),
	}
}

// PutUser saves a user keyed by its id.
func (s *Store) PutUser(_ context.Context, u user.User) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	s.users[u.ID] = u
	return nil
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(_ context.Context, id int64) (user.User, error) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

// PutSession saves a new session keyed by its id.
func (s *Store) PutSession(_ context.Context, value session.Session) error {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if _, ok := s.sessions[value.ID]; !ok {
		s.order = append(s.order, value.ID)
	}
	s.sessions[value.ID] = &sessionEntry{value: value.Clone()}
	return nil
}

// GetSession returns a copy of the session.
func (s *Store) GetSession(_ context.Context, id int64) (session.Session, error) {
	entry, err := s.entry(id)
	if err != nil {
		return session.Session{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return session.Session{}, storage.ErrNotFound
	}
	return entry.value.Clone(), nil
}

// MutateSession applies fn under the per-session lock and stores the result.
func (s *Store) MutateSession(_ context.Context, id int64, fn func(session.Session) (session.Session, error)) (session.Session, error) {
	entry, err := s.entry(id)
	if err != nil {
		return session.Session{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return session.Session{}, storage.ErrNotFound
	}

	updated, err := fn(entry.value.Clone())
	if err != nil {
		return session.Session{}, err
	}
	entry.value = updated.Clone()
	return updated, nil
}

// DeleteSession removes the session if guard approves the current value.
func (s *Store) DeleteSession(_ context.Context, id int64, guard func(session.Session) error) error {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return storage.ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return storage.ErrNotFound
	}

	if guard != nil {
		if err := guard(entry.value.Clone()); err != nil {
			return err
		}
	}

	entry.deleted = true
	delete(s.sessions, id)
	for i, orderedID := range s.order {
		if orderedID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// SnapshotSessions returns copies of all stored sessions in insertion order.
func (s *Store) SnapshotSessions(_ context.Context) ([]session.Session, error) {
	s.sessionsMu.RLock()
	entries := make([]*sessionEntry, 0, len(s.order))
	for _, id := range s.order {
		if entry, ok := s.sessions[id]; ok {
			entries = append(entries, entry)
		}
	}
	s.sessionsMu.RUnlock()

	snapshot := make([]session.Session, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		if !entry.deleted {
			snapshot = append(snapshot, entry.value.Clone())
		}
		entry.mu.Unlock()
	}
	return snapshot, nil
}

// AddSessionView increments the view counter and returns the updated copy.
func (s *Store) AddSessionView(_ context.Context, id int64) (session.Session, error) {
	entry, err := s.entry(id)
	if err != nil {
		return session.Session{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return session.Session{}, storage.ErrNotFound
	}
	entry.value.Views++
	return entry.value.Clone(), nil
}

func (s *Store) entry(id int64) (*sessionEntry, error) {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return entry, nil
}
