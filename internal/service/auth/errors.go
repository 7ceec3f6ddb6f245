package auth

import "errors"

// Token verification errors.
var (
	// ErrInvalidToken indicates a malformed token, a bad signature or unusable claims.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token's exp claim has passed.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrWrongTokenType indicates a refresh token was presented as an access token or vice versa.
	ErrWrongTokenType = errors.New("wrong token type")
)

// Request authentication errors, one per rejection step of the middleware.
var (
	// ErrMissingToken indicates no Authorization header was sent.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrMalformedHeader indicates the Authorization header is not "Bearer <token>".
	ErrMalformedHeader = errors.New("malformed authorization header")

	// ErrSessionExpired indicates the token verified but its user has no live session.
	ErrSessionExpired = errors.New("session expired")

	// ErrStaleToken indicates the token verified but a newer one has replaced it.
	ErrStaleToken = errors.New("token superseded by a newer session")
)

// Auth flow errors.
var (
	// ErrDuplicateEmail indicates registration with an email already in use.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMissingRefreshToken indicates an empty refresh request.
	ErrMissingRefreshToken = errors.New("refresh token is required")

	// ErrInvalidRefreshToken indicates the refresh token failed verification.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

	// ErrSessionNotFound indicates a verified refresh token whose session is gone.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTokenMismatch indicates a verified refresh token that is not the one on record.
	ErrTokenMismatch = errors.New("refresh token does not match session")

	// ErrSessionConflict indicates the session changed while a refresh was in flight.
	ErrSessionConflict = errors.New("session changed during refresh")
)
