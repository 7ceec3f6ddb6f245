package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service/auth"
)

// AuthService is the subset of *auth.Service used by AuthHandler.
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, userID uuid.UUID) error
}

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{auth: svc}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.auth.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusCreated, "User Registered successfully!", user.Public())
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "User Logged in successfully!", pair)
}

// RefreshToken handles POST /auth/refresh-token.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgInvalidRequest, err)
		return
	}

	access, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "Token refreshed successfully!",
		RefreshTokenResponse{AccessToken: access})
}

// Logout handles POST /auth/logout. It requires the auth middleware.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	if err := h.auth.Logout(r.Context(), caller.UserID); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "User Logged out successfully!", nil)
}
