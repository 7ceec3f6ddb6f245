package service

import "errors"

// Sentinel errors returned by the task and user services. The API layer
// maps each to an HTTP status with errors.Is.
var (
	// ErrUnauthenticated indicates no caller identity, or one whose user no longer exists.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrTaskNotFound indicates the requested task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskForbidden indicates a read of a task owned by someone else.
	ErrTaskForbidden = errors.New("task is owned by another user")

	// ErrUpdateNotAllowed indicates an update of a task owned by someone else.
	ErrUpdateNotAllowed = errors.New("not allowed to update this task")

	// ErrDeleteNotAllowed indicates a delete of a task owned by someone else.
	ErrDeleteNotAllowed = errors.New("not allowed to delete this task")

	// ErrProfileForbidden indicates a read of another user's profile.
	ErrProfileForbidden = errors.New("profile belongs to another user")

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
)
