package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// User represents a registered account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never leaves the service boundary
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the outward projection of a User.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeEmail trims and lowercases an email address. Registration and
// login both go through it so lookups always compare normalized values.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName trims surrounding whitespace from a display name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// NewUser creates a User with a fresh ID from already hashed credentials.
// Name and email are normalized before validation.
func NewUser(name, email, passwordHash string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:           uuid.New(),
		Name:         NormalizeName(name),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks the invariants every stored user must satisfy.
func (u *User) Validate() error {
	verr := NewValidationError()

	if u.ID == uuid.Nil {
		verr.Add("id", "id is required")
	}
	if u.Email == "" {
		verr.Add("email", "email is required")
	} else if validate.Var(u.Email, "email") != nil {
		verr.Add("email", "email must be a valid email")
	}
	if u.PasswordHash == "" {
		verr.Add("password", "password hash is required")
	}

	return verr.OrNil()
}

// Public returns the projection that is safe to serialize to clients.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Identity is the authenticated caller, as decoded from a verified access token.
type Identity struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
}

// IsZero reports whether no caller is present.
func (i Identity) IsZero() bool {
	return i.UserID == uuid.Nil
}
