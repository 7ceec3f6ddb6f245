package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/platform/memory"
	"github.com/phrazzld/tasker-api/internal/store"
)

// MockSessionStore implements store.SessionStore on top of a memory.SessionStore,
// with per-method overrides for injecting failures.
type MockSessionStore struct {
	PutFn     func(ctx context.Context, userID uuid.UUID, s store.Session, ttl time.Duration) error
	GetFn     func(ctx context.Context, userID uuid.UUID) (*store.Session, error)
	DeleteFn  func(ctx context.Context, userID uuid.UUID) error
	ReplaceFn func(ctx context.Context, userID uuid.UUID, expected, next store.Session, ttl time.Duration) error

	mu      sync.Mutex
	lastTTL time.Duration

	*memory.SessionStore
}

var _ store.SessionStore = (*MockSessionStore)(nil)

// NewMockSessionStore creates an empty mock session store.
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{SessionStore: memory.NewSessionStore()}
}

// Put implements store.SessionStore.
func (m *MockSessionStore) Put(ctx context.Context, userID uuid.UUID, s store.Session, ttl time.Duration) error {
	m.setTTL(ttl)
	if m.PutFn != nil {
		return m.PutFn(ctx, userID, s, ttl)
	}
	return m.SessionStore.Put(ctx, userID, s, ttl)
}

// Get implements store.SessionStore.
func (m *MockSessionStore) Get(ctx context.Context, userID uuid.UUID) (*store.Session, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID)
	}
	return m.SessionStore.Get(ctx, userID)
}

// Delete implements store.SessionStore.
func (m *MockSessionStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID)
	}
	return m.SessionStore.Delete(ctx, userID)
}

// Replace implements store.SessionStore.
func (m *MockSessionStore) Replace(
	ctx context.Context,
	userID uuid.UUID,
	expected, next store.Session,
	ttl time.Duration,
) error {
	m.setTTL(ttl)
	if m.ReplaceFn != nil {
		return m.ReplaceFn(ctx, userID, expected, next, ttl)
	}
	return m.SessionStore.Replace(ctx, userID, expected, next, ttl)
}

// LastTTL returns the ttl passed to the most recent Put or Replace.
func (m *MockSessionStore) LastTTL() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTTL
}

func (m *MockSessionStore) setTTL(ttl time.Duration) {
	m.mu.Lock()
	m.lastTTL = ttl
	m.mu.Unlock()
}
