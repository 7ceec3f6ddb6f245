package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// UserStore defines the interface for user credential persistence.
type UserStore interface {
	// Create saves a new user. The user's email must already be normalized.
	// Returns ErrEmailExists if the email is taken, including when a
	// concurrent registration wins the race past the service's pre-check.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by normalized email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns one page of users ordered by creation time, along with
	// the total number of users.
	List(ctx context.Context, page domain.PageRequest) ([]*domain.User, int, error)
}
