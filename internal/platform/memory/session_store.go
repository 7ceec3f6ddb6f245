// Package memory provides an in-process store.SessionStore. It backs tests
// and single-instance local runs where no Redis address is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/store"
)

type sessionEntry struct {
	session   store.Session
	expiresAt time.Time
}

// SessionStore is a mutex-guarded map of sessions with lazy expiry.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]sessionEntry
	now      func() time.Time
}

var _ store.SessionStore = (*SessionStore)(nil)

// NewSessionStore returns an empty SessionStore using the wall clock.
func NewSessionStore() *SessionStore {
	return NewSessionStoreWithClock(time.Now)
}

// NewSessionStoreWithClock returns an empty SessionStore that reads time from now.
func NewSessionStoreWithClock(now func() time.Time) *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]sessionEntry),
		now:      now,
	}
}

// Put implements store.SessionStore.Put.
func (s *SessionStore) Put(_ context.Context, userID uuid.UUID, sess store.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[userID] = sessionEntry{session: sess, expiresAt: s.now().Add(ttl)}
	return nil
}

// Get implements store.SessionStore.Get.
func (s *SessionStore) Get(_ context.Context, userID uuid.UUID) (*store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.live(userID)
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	sess := entry.session
	return &sess, nil
}

// Delete implements store.SessionStore.Delete.
func (s *SessionStore) Delete(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
	return nil
}

// Replace implements store.SessionStore.Replace.
func (s *SessionStore) Replace(
	_ context.Context,
	userID uuid.UUID,
	expected, next store.Session,
	ttl time.Duration,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.live(userID)
	if !ok {
		return store.ErrSessionNotFound
	}
	if entry.session != expected {
		return store.ErrSessionConflict
	}

	s.sessions[userID] = sessionEntry{session: next, expiresAt: s.now().Add(ttl)}
	return nil
}

// Len returns the number of unexpired sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id := range s.sessions {
		if _, ok := s.live(id); ok {
			n++
		}
	}
	return n
}

// live returns the entry for userID if it has not expired, evicting it otherwise.
// The caller must hold s.mu.
func (s *SessionStore) live(userID uuid.UUID) (sessionEntry, bool) {
	entry, ok := s.sessions[userID]
	if !ok {
		return sessionEntry{}, false
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.sessions, userID)
		return sessionEntry{}, false
	}
	return entry, true
}
