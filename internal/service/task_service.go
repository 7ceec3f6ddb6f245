package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/store"
)

// CreateTaskInput carries the fields of a new task as submitted.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     string
	Priority    string
}

// UpdateTaskInput carries a partial update. Nil fields are left unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	DueDate     *string
	Priority    *string
	Status      *string
}

// ListTasksInput carries raw listing parameters. Empty filters match everything.
type ListTasksInput struct {
	Page     int
	Limit    int
	Priority string
	Status   string
}

// TaskList is one page of a caller's tasks.
type TaskList struct {
	Tasks      []*domain.Task    `json:"tasks"`
	Pagination domain.Pagination `json:"pagination"`
}

// TaskService provides task operations scoped to the calling user.
type TaskService interface {
	// Create stores a new pending task owned by caller.
	Create(ctx context.Context, caller domain.Identity, in CreateTaskInput) (*domain.Task, error)

	// List returns one page of caller's tasks, optionally filtered by priority and status.
	List(ctx context.Context, caller domain.Identity, in ListTasksInput) (*TaskList, error)

	// Get returns a task if caller owns it.
	Get(ctx context.Context, caller domain.Identity, id uuid.UUID) (*domain.Task, error)

	// Update merges in into a task caller owns and returns the result.
	Update(ctx context.Context, caller domain.Identity, id uuid.UUID, in UpdateTaskInput) (*domain.Task, error)

	// Delete removes a task caller owns.
	Delete(ctx context.Context, caller domain.Identity, id uuid.UUID) error
}

// TaskServiceImpl implements TaskService.
type TaskServiceImpl struct {
	tasks  store.TaskStore
	users  store.UserStore
	logger *slog.Logger
}

var _ TaskService = (*TaskServiceImpl)(nil)

// NewTaskService creates a TaskService.
func NewTaskService(tasks store.TaskStore, users store.UserStore, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, errors.New("tasks cannot be nil")
	}
	if users == nil {
		return nil, errors.New("users cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceImpl{
		tasks:  tasks,
		users:  users,
		logger: logger.With(slog.String("component", "task_service")),
	}, nil
}

// Create implements TaskService.
func (s *TaskServiceImpl) Create(ctx context.Context, caller domain.Identity, in CreateTaskInput) (*domain.Task, error) {
	if caller.IsZero() {
		return nil, ErrUnauthenticated
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	verr := domain.NewValidationError()
	var priority domain.TaskPriority
	if in.Priority != "" {
		p, err := domain.ParsePriority(in.Priority)
		if err != nil {
			verr.Add("priority", "priority must be one of [low medium high]")
		}
		priority = p
	}
	due, err := domain.ParseDueDate(in.DueDate)
	if err != nil && in.DueDate != "" {
		verr.Add("dueDate", "dueDate must be a valid date")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	user, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Warn("task create by unknown user", slog.String("user_id", caller.UserID.String()))
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load task owner: %w", err)
	}

	task, err := domain.NewTask(domain.OwnerFromUser(user), in.Title, in.Description, due, priority)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		log.Error("failed to create task",
			"error", err,
			"user_id", caller.UserID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	log.Debug("task created",
		"task_id", task.ID,
		"user_id", caller.UserID)
	return task, nil
}

// List implements TaskService.
func (s *TaskServiceImpl) List(ctx context.Context, caller domain.Identity, in ListTasksInput) (*TaskList, error) {
	if caller.IsZero() {
		return nil, ErrUnauthenticated
	}

	var filter store.TaskFilter
	if in.Priority != "" {
		p, err := domain.ParsePriority(in.Priority)
		if err != nil {
			return nil, err
		}
		filter.Priority = &p
	}
	if in.Status != "" {
		st, err := domain.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &st
	}

	page := domain.NewPageRequest(in.Page, in.Limit)
	tasks, total, err := s.tasks.List(ctx, caller.UserID, filter, page)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			"error", err,
			"user_id", caller.UserID)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	return &TaskList{Tasks: tasks, Pagination: domain.NewPagination(total, page)}, nil
}

// Get implements TaskService.
func (s *TaskServiceImpl) Get(ctx context.Context, caller domain.Identity, id uuid.UUID) (*domain.Task, error) {
	if caller.IsZero() {
		return nil, ErrUnauthenticated
	}

	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.IsOwnedBy(caller.UserID) {
		logger.FromContextOrDefault(ctx, s.logger).Debug("task read denied",
			"task_id", id,
			"user_id", caller.UserID)
		return nil, ErrTaskForbidden
	}
	return task, nil
}

// Update implements TaskService. The ownership check and merge run against
// the locked current row, so concurrent updates are applied one at a time.
func (s *TaskServiceImpl) Update(
	ctx context.Context,
	caller domain.Identity,
	id uuid.UUID,
	in UpdateTaskInput,
) (*domain.Task, error) {
	if caller.IsZero() {
		return nil, ErrUnauthenticated
	}

	patch, err := parsePatch(in)
	if err != nil {
		return nil, err
	}

	updated, err := s.tasks.Update(ctx, id, func(task *domain.Task) error {
		if !task.IsOwnedBy(caller.UserID) {
			return ErrUpdateNotAllowed
		}
		return task.Apply(patch)
	})
	if err != nil {
		return nil, s.classify(ctx, "update", id, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task updated",
		"task_id", id,
		"user_id", caller.UserID)
	return updated, nil
}

// Delete implements TaskService.
func (s *TaskServiceImpl) Delete(ctx context.Context, caller domain.Identity, id uuid.UUID) error {
	if caller.IsZero() {
		return ErrUnauthenticated
	}

	task, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !task.IsOwnedBy(caller.UserID) {
		return ErrDeleteNotAllowed
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		return s.classify(ctx, "delete", id, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task deleted",
		"task_id", id,
		"user_id", caller.UserID)
	return nil
}

func (s *TaskServiceImpl) load(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, s.classify(ctx, "get", id, err)
	}
	return task, nil
}

// classify converts store and domain failures into service errors, passing
// through the ones callers already understand.
func (s *TaskServiceImpl) classify(ctx context.Context, op string, id uuid.UUID, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, ErrUpdateNotAllowed), errors.As(err, &verr):
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Error("task store failure",
		"error", err,
		"operation", op,
		"task_id", id)
	return fmt.Errorf("failed to %s task: %w", op, err)
}

func parsePatch(in UpdateTaskInput) (domain.TaskPatch, error) {
	patch := domain.TaskPatch{Title: in.Title, Description: in.Description}
	verr := domain.NewValidationError()

	if in.DueDate != nil {
		due, err := domain.ParseDueDate(*in.DueDate)
		if err != nil {
			verr.Add("dueDate", "dueDate must be a valid date")
		} else {
			patch.DueDate = &due
		}
	}
	if in.Priority != nil {
		p, err := domain.ParsePriority(*in.Priority)
		if err != nil {
			verr.Add("priority", "priority must be one of [low medium high]")
		} else {
			patch.Priority = &p
		}
	}
	if in.Status != nil {
		st, err := domain.ParseStatus(*in.Status)
		if err != nil {
			verr.Add("status", "status must be one of [pending completed]")
		} else {
			patch.Status = &st
		}
	}

	return patch, verr.OrNil()
}
