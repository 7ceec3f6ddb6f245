package api

import (
	"net/http"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/service"
)

// UserHandler serves the read-only /users endpoints.
type UserHandler struct {
	users service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// ListUsers handles GET /users?page&limit.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerIdentity(w, r); !ok {
		return
	}

	list, err := h.users.List(r.Context(), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "Users retrieved successfully", list)
}

// GetUser handles GET /users/{id}. Callers may only read their own profile.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", MsgInvalidUserID)
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), caller, id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "User details retrieved", user)
}
