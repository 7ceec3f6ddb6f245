package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is the token pair currently honored for a user. Any access or
// refresh token that differs from the stored one is treated as revoked.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SessionStore holds at most one Session per user, each with a time-to-live.
//
// Implementations must be read-your-writes consistent: a Get that follows a
// Put for the same user observes the written value.
type SessionStore interface {
	// Put writes s for userID, replacing any existing record, and (re)sets its TTL.
	Put(ctx context.Context, userID uuid.UUID, s Session, ttl time.Duration) error

	// Get returns the live session for userID.
	// Returns ErrSessionNotFound if there is none.
	Get(ctx context.Context, userID uuid.UUID) (*Session, error)

	// Delete removes the session for userID. Deleting a missing session is not an error.
	Delete(ctx context.Context, userID uuid.UUID) error

	// Replace writes next only if the stored session still equals expected.
	// Returns ErrSessionNotFound if there is no session, or ErrSessionConflict
	// if it changed since expected was read.
	Replace(ctx context.Context, userID uuid.UUID, expected, next Session, ttl time.Duration) error
}
