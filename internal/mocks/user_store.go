package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/store"
)

// MockUserStore implements store.UserStore for testing.
type MockUserStore struct {
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ListFn       func(ctx context.Context, page domain.PageRequest) ([]*domain.User, int, error)

	mu    sync.Mutex
	users []*domain.User
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates an empty mock store.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{}
}

// Create implements store.UserStore.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	stored := *user
	m.users = append(m.users, &stored)
	return nil
}

// GetByEmail implements store.UserStore.
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByID implements store.UserStore.
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID == id {
			found := *u
			return &found, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// List implements store.UserStore in insertion order.
func (m *MockUserStore) List(ctx context.Context, page domain.PageRequest) ([]*domain.User, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, page)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.User, 0, page.Limit)
	for _, u := range paginate(m.users, page) {
		copied := *u
		out = append(out, &copied)
	}
	return out, len(m.users), nil
}

// Count returns the number of stored users.
func (m *MockUserStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func paginate[T any](items []T, page domain.PageRequest) []T {
	start := page.Offset()
	if start < 0 || start >= len(items) {
		return nil
	}
	end := start + page.Limit
	if end < start || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
