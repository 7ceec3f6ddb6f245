package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is the root of every validation failure. *ValidationError
	// unwraps to it.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidPriority is returned when a priority is outside low/medium/high.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidStatus is returned when a status is outside pending/completed.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidDueDate is returned when a due date cannot be parsed.
	ErrInvalidDueDate = errors.New("invalid due date")

	// ErrEmptyUserID is returned when an entity is missing its user reference.
	ErrEmptyUserID = errors.New("user ID cannot be empty")
)
