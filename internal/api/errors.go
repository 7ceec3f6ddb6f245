package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

// Client-facing messages. Tests and clients assert on these strings.
const (
	MsgValidationFailed    = "Validation failed"
	MsgInvalidRequest      = "Invalid request format"
	MsgDuplicateEmail      = "Oops! This email is taken. Try a different email address."
	MsgInvalidCredentials  = "Invalid email or password"
	MsgMissingRefreshToken = "Refresh token is required"
	MsgInvalidRefreshToken = "Invalid or expired refresh token"
	MsgSessionNotFound     = "Session expired. Please log in again."
	MsgTokenMismatch       = "Refresh token does not match the active session"
	MsgSessionConflict     = "Session changed during refresh. Please try again."
	MsgUnauthorized        = "Unauthorized"
	MsgInvalidPriority     = "Invalid priority"
	MsgInvalidStatus       = "Invalid status"
	MsgInvalidTaskID       = "Invalid task ID format"
	MsgInvalidUserID       = "Invalid user ID format"
	MsgTaskNotFound        = "Task not found"
	MsgTaskForbidden       = "Forbidden"
	MsgUpdateNotAllowed    = "Unauthorized to update this task"
	MsgDeleteNotAllowed    = "Unauthorized to delete this task"
	MsgProfileForbidden    = "Access denied. You can only view your own profile."
	MsgUserNotFound        = "User not found"
	MsgRouteNotFound       = "Route not found"
	MsgMethodNotAllowed    = "Method not allowed"
	MsgInternalError       = "An unexpected error occurred"
)

// MapErrorToStatusCode maps a service error to its HTTP status. Unknown
// errors map to 500.
func MapErrorToStatusCode(err error) int {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, auth.ErrDuplicateEmail),
		errors.Is(err, auth.ErrMissingRefreshToken),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrSessionNotFound),
		errors.Is(err, auth.ErrTokenMismatch),
		errors.Is(err, auth.ErrSessionConflict),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrUpdateNotAllowed),
		errors.Is(err, service.ErrDeleteNotAllowed):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrTaskForbidden),
		errors.Is(err, service.ErrProfileForbidden):
		return http.StatusForbidden

	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrUserNotFound),
		store.IsNotFoundError(err):
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the client-facing message for err. It never
// includes text from err itself.
func GetSafeErrorMessage(err error) string {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return MsgInternalError
	case errors.As(err, &verr), errors.Is(err, domain.ErrValidation):
		return MsgValidationFailed
	case errors.Is(err, auth.ErrDuplicateEmail):
		return MsgDuplicateEmail
	case errors.Is(err, auth.ErrInvalidCredentials):
		return MsgInvalidCredentials
	case errors.Is(err, auth.ErrMissingRefreshToken):
		return MsgMissingRefreshToken
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return MsgInvalidRefreshToken
	case errors.Is(err, auth.ErrSessionNotFound):
		return MsgSessionNotFound
	case errors.Is(err, auth.ErrTokenMismatch):
		return MsgTokenMismatch
	case errors.Is(err, auth.ErrSessionConflict):
		return MsgSessionConflict
	case errors.Is(err, service.ErrUnauthenticated):
		return MsgUnauthorized
	case errors.Is(err, domain.ErrInvalidPriority):
		return MsgInvalidPriority
	case errors.Is(err, domain.ErrInvalidStatus):
		return MsgInvalidStatus
	case errors.Is(err, service.ErrTaskNotFound), errors.Is(err, store.ErrTaskNotFound):
		return MsgTaskNotFound
	case errors.Is(err, service.ErrTaskForbidden):
		return MsgTaskForbidden
	case errors.Is(err, service.ErrUpdateNotAllowed):
		return MsgUpdateNotAllowed
	case errors.Is(err, service.ErrDeleteNotAllowed):
		return MsgDeleteNotAllowed
	case errors.Is(err, service.ErrProfileForbidden):
		return MsgProfileForbidden
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, store.ErrUserNotFound):
		return MsgUserNotFound
	default:
		return MsgInternalError
	}
}

// HandleAPIError writes the error envelope for err and logs it.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
