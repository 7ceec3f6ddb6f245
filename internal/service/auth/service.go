package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/store"
)

// Auth event names and outcomes passed to EventRecorder.
const (
	EventRegister = "register"
	EventLogin    = "login"
	EventRefresh  = "refresh"
	EventLogout   = "logout"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// EventRecorder receives one call per completed auth flow.
type EventRecorder interface {
	RecordAuthEvent(event, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordAuthEvent(string, string) {}

// TokenPair is returned by a successful login.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterInput carries registration fields as submitted.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Service orchestrates registration, login, refresh and logout.
type Service struct {
	users      store.UserStore
	sessions   store.SessionStore
	tokens     TokenService
	hasher     PasswordHasher
	sessionTTL time.Duration
	events     EventRecorder
	logger     *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithEventRecorder reports auth outcomes to r.
func WithEventRecorder(r EventRecorder) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.events = r
		}
	}
}

// NewService creates an auth Service. Every dependency is required.
func NewService(
	users store.UserStore,
	sessions store.SessionStore,
	tokens TokenService,
	hasher PasswordHasher,
	sessionTTL time.Duration,
	logger *slog.Logger,
	opts ...ServiceOption,
) (*Service, error) {
	if users == nil {
		return nil, errors.New("users cannot be nil")
	}
	if sessions == nil {
		return nil, errors.New("sessions cannot be nil")
	}
	if tokens == nil {
		return nil, errors.New("tokens cannot be nil")
	}
	if hasher == nil {
		return nil, errors.New("hasher cannot be nil")
	}
	if sessionTTL <= 0 {
		return nil, errors.New("session TTL must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		hasher:     hasher,
		sessionTTL: sessionTTL,
		events:     noopRecorder{},
		logger:     logger.With(slog.String("component", "auth_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates a user with a normalized email and name and a hashed password.
// Returns ErrDuplicateEmail if the normalized email is taken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	email := domain.NormalizeEmail(in.Email)

	// Fast path; the unique index on users.email is what actually enforces this.
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.events.RecordAuthEvent(EventRegister, OutcomeFailure)
		return nil, ErrDuplicateEmail
	case !errors.Is(err, store.ErrUserNotFound):
		s.events.RecordAuthEvent(EventRegister, OutcomeError)
		return nil, fmt.Errorf("failed to check email availability: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			verr := domain.NewValidationError()
			verr.Add("password", "password must be at most 72 bytes")
			s.events.RecordAuthEvent(EventRegister, OutcomeFailure)
			return nil, verr
		}
		s.events.RecordAuthEvent(EventRegister, OutcomeError)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := domain.NewUser(in.Name, email, hash)
	if err != nil {
		s.events.RecordAuthEvent(EventRegister, OutcomeFailure)
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.events.RecordAuthEvent(EventRegister, OutcomeFailure)
			return nil, ErrDuplicateEmail
		}
		s.events.RecordAuthEvent(EventRegister, OutcomeError)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	s.events.RecordAuthEvent(EventRegister, OutcomeSuccess)
	return user, nil
}

// Login verifies credentials, issues a fresh token pair and makes it the
// user's only live session. Returns ErrInvalidCredentials for an unknown
// email or a wrong password alike.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Compare anyway so unknown emails take as long as wrong passwords.
			_ = s.hasher.Compare(s.placeholderHash(), password)
			s.events.RecordAuthEvent(EventLogin, OutcomeFailure)
			return nil, ErrInvalidCredentials
		}
		s.events.RecordAuthEvent(EventLogin, OutcomeError)
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			log.Debug("login rejected", slog.String("user_id", user.ID.String()))
			s.events.RecordAuthEvent(EventLogin, OutcomeFailure)
			return nil, ErrInvalidCredentials
		}
		s.events.RecordAuthEvent(EventLogin, OutcomeError)
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	identity := domain.Identity{UserID: user.ID, Email: user.Email}
	access, err := s.tokens.IssueAccessToken(ctx, identity)
	if err != nil {
		s.events.RecordAuthEvent(EventLogin, OutcomeError)
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(ctx, identity)
	if err != nil {
		s.events.RecordAuthEvent(EventLogin, OutcomeError)
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	sess := store.Session{AccessToken: access, RefreshToken: refresh}
	if err := s.sessions.Put(ctx, user.ID, sess, s.sessionTTL); err != nil {
		s.events.RecordAuthEvent(EventLogin, OutcomeError)
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	log.Info("user logged in", slog.String("user_id", user.ID.String()))
	s.events.RecordAuthEvent(EventLogin, OutcomeSuccess)
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges the refresh token on record for a new access token. The
// refresh token itself is kept, and the session TTL restarts.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if refreshToken == "" {
		s.events.RecordAuthEvent(EventRefresh, OutcomeFailure)
		return "", ErrMissingRefreshToken
	}

	claims, err := s.tokens.Verify(ctx, refreshToken, RefreshToken)
	if err != nil {
		s.events.RecordAuthEvent(EventRefresh, OutcomeFailure)
		return "", fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}

	stored, err := s.sessions.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			s.events.RecordAuthEvent(EventRefresh, OutcomeFailure)
			return "", ErrSessionNotFound
		}
		s.events.RecordAuthEvent(EventRefresh, OutcomeError)
		return "", fmt.Errorf("failed to load session: %w", err)
	}

	if !TokensEqual(stored.RefreshToken, refreshToken) {
		log.Debug("refresh token does not match session", slog.String("user_id", claims.UserID.String()))
		s.events.RecordAuthEvent(EventRefresh, OutcomeFailure)
		return "", ErrTokenMismatch
	}

	access, err := s.tokens.IssueAccessToken(ctx, claims.Identity())
	if err != nil {
		s.events.RecordAuthEvent(EventRefresh, OutcomeError)
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}

	next := store.Session{AccessToken: access, RefreshToken: stored.RefreshToken}
	if err := s.sessions.Replace(ctx, claims.UserID, *stored, next, s.sessionTTL); err != nil {
		switch {
		case errors.Is(err, store.ErrSessionNotFound):
			s.events.RecordAuthEvent(EventRefresh, OutcomeFailure)
			return "", ErrSessionNotFound
		case errors.Is(err, store.ErrSessionConflict):
			log.Warn("session changed during refresh", slog.String("user_id", claims.UserID.String()))
			s.events.RecordAuthEvent(EventRefresh, OutcomeFailure)
			return "", ErrSessionConflict
		default:
			s.events.RecordAuthEvent(EventRefresh, OutcomeError)
			return "", fmt.Errorf("failed to store session: %w", err)
		}
	}

	log.Info("access token refreshed", slog.String("user_id", claims.UserID.String()))
	s.events.RecordAuthEvent(EventRefresh, OutcomeSuccess)
	return access, nil
}

// Logout removes the user's session record. Logging out without a session succeeds.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessions.Delete(ctx, userID); err != nil {
		s.events.RecordAuthEvent(EventLogout, OutcomeError)
		return fmt.Errorf("failed to delete session: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user logged out", slog.String("user_id", userID.String()))
	s.events.RecordAuthEvent(EventLogout, OutcomeSuccess)
	return nil
}

// placeholderHash returns a hash of a random value, computed once.
func (s *Service) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

// TokensEqual compares two tokens in constant time.
func TokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
