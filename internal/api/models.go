package api

// RegisterRequest is the payload of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"omitempty,min=3"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the payload of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the payload of POST /auth/refresh-token. An empty
// token is rejected by the auth service, not by validation.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshTokenResponse carries the rotated access token.
type RefreshTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// CreateTaskRequest is the payload of POST /tasks.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=2000"`
	DueDate     string `json:"dueDate"     validate:"required"`
	Priority    string `json:"priority"`
}

// UpdateTaskRequest is the payload of PUT /tasks/{id}. Omitted fields are
// left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	DueDate     *string `json:"dueDate"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
}
