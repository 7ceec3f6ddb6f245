package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// TaskFilter narrows a task listing. Nil fields match everything.
type TaskFilter struct {
	Priority *domain.TaskPriority
	Status   *domain.TaskStatus
}

// TaskMutator is applied to the current version of a task inside Update.
// Returning an error aborts the update and is passed back to the caller.
type TaskMutator func(task *domain.Task) error

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create saves a new task.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns one page of ownerID's tasks matching filter, oldest first,
	// along with the total number of matching tasks.
	List(
		ctx context.Context,
		ownerID uuid.UUID,
		filter TaskFilter,
		page domain.PageRequest,
	) ([]*domain.Task, int, error)

	// Update loads the task, applies fn and persists the result atomically
	// with respect to other updates of the same task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, id uuid.UUID, fn TaskMutator) (*domain.Task, error)

	// Delete removes a task.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
