package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing.
type MockTaskStore struct {
	CreateFn  func(ctx context.Context, task *domain.Task) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListFn    func(ctx context.Context, ownerID uuid.UUID, filter store.TaskFilter, page domain.PageRequest) ([]*domain.Task, int, error)
	UpdateFn  func(ctx context.Context, id uuid.UUID, fn store.TaskMutator) (*domain.Task, error)
	DeleteFn  func(ctx context.Context, id uuid.UUID) error

	mu    sync.Mutex
	tasks []*domain.Task
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty mock store.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{}
}

// Create implements store.TaskStore.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *task
	m.tasks = append(m.tasks, &stored)
	return nil
}

// GetByID implements store.TaskStore.
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexOf(id); i >= 0 {
		found := *m.tasks[i]
		return &found, nil
	}
	return nil, store.ErrTaskNotFound
}

// List implements store.TaskStore in insertion order.
func (m *MockTaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
	page domain.PageRequest,
) ([]*domain.Task, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, ownerID, filter, page)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var matching []*domain.Task
	for _, t := range m.tasks {
		if t.Owner.ID != ownerID {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		matching = append(matching, t)
	}

	out := make([]*domain.Task, 0, page.Limit)
	for _, t := range paginate(matching, page) {
		copied := *t
		out = append(out, &copied)
	}
	return out, len(matching), nil
}

// Update implements store.TaskStore. fn runs on a copy that replaces the
// stored task only if fn succeeds.
func (m *MockTaskStore) Update(ctx context.Context, id uuid.UUID, fn store.TaskMutator) (*domain.Task, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, fn)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return nil, store.ErrTaskNotFound
	}

	working := *m.tasks[i]
	if err := fn(&working); err != nil {
		return nil, err
	}
	stored := working
	m.tasks[i] = &stored
	return &working, nil
}

// Delete implements store.TaskStore.
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return store.ErrTaskNotFound
	}
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	return nil
}

// Count returns the number of stored tasks.
func (m *MockTaskStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *MockTaskStore) indexOf(id uuid.UUID) int {
	for i, t := range m.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
