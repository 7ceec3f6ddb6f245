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

// UserList is one page of public user profiles.
type UserList struct {
	Users      []domain.PublicUser `json:"users"`
	Pagination domain.Pagination   `json:"pagination"`
}

// UserService provides read access to user profiles.
type UserService interface {
	// List returns one page of users as public profiles.
	List(ctx context.Context, page, limit int) (*UserList, error)

	// Get returns the profile of id, which must be the caller's own.
	Get(ctx context.Context, caller domain.Identity, id uuid.UUID) (*domain.PublicUser, error)
}

// UserServiceImpl implements UserService.
type UserServiceImpl struct {
	users  store.UserStore
	logger *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a UserService.
func NewUserService(users store.UserStore, logger *slog.Logger) (UserService, error) {
	if users == nil {
		return nil, errors.New("users cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		users:  users,
		logger: logger.With(slog.String("component", "user_service")),
	}, nil
}

// List implements UserService.
func (s *UserServiceImpl) List(ctx context.Context, page, limit int) (*UserList, error) {
	req := domain.NewPageRequest(page, limit)

	users, total, err := s.users.List(ctx, req)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return &UserList{Users: out, Pagination: domain.NewPagination(total, req)}, nil
}

// Get implements UserService.
func (s *UserServiceImpl) Get(ctx context.Context, caller domain.Identity, id uuid.UUID) (*domain.PublicUser, error) {
	if caller.IsZero() {
		return nil, ErrUnauthenticated
	}
	if caller.UserID != id {
		return nil, ErrProfileForbidden
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve user",
			"error", err,
			"user_id", id)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	public := user.Public()
	return &public, nil
}
