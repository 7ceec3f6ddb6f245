package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
)

// TokenKind distinguishes access tokens from refresh tokens. Each kind is
// signed with its own secret and carries its kind in the "type" claim.
type TokenKind string

// Token kinds.
const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// minSecretLength is the shortest HMAC secret accepted.
const minSecretLength = 32

// Claims is the verified content of a token.
type Claims struct {
	UserID    uuid.UUID
	Email     string
	Kind      TokenKind
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity returns the caller identity carried by the token.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{UserID: c.UserID, Email: c.Email}
}

// TokenService issues and verifies signed, time-bounded tokens. It checks
// signature, expiry and kind only; revocation is decided by the session record.
type TokenService interface {
	// IssueAccessToken signs a short-lived access token for id.
	IssueAccessToken(ctx context.Context, id domain.Identity) (string, error)

	// IssueRefreshToken signs a long-lived refresh token for id.
	IssueRefreshToken(ctx context.Context, id domain.Identity) (string, error)

	// Verify checks token against the secret for kind and returns its claims.
	// Returns ErrExpiredToken, ErrWrongTokenType or ErrInvalidToken.
	Verify(ctx context.Context, token string, kind TokenKind) (*Claims, error)
}

// jwtCustomClaims is the JWT payload.
type jwtCustomClaims struct {
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	TokenType TokenKind `json:"type"`
	jwt.RegisteredClaims
}

type tokenSpec struct {
	secret   []byte
	lifetime time.Duration
}

// HMACTokenService implements TokenService with HS256 and a distinct secret per kind.
type HMACTokenService struct {
	specs     map[TokenKind]tokenSpec
	timeFunc  func() time.Time
	idFunc    func() string
	clockSkew time.Duration
}

var _ TokenService = (*HMACTokenService)(nil)

// TokenOption customizes an HMACTokenService.
type TokenOption func(*HMACTokenService)

// WithClock replaces the time source used for iat, exp and validation.
func WithClock(now func() time.Time) TokenOption {
	return func(s *HMACTokenService) { s.timeFunc = now }
}

// WithTokenIDs replaces the jti generator.
func WithTokenIDs(next func() string) TokenOption {
	return func(s *HMACTokenService) { s.idFunc = next }
}

// WithClockSkew sets the leeway allowed when validating time claims.
func WithClockSkew(d time.Duration) TokenOption {
	return func(s *HMACTokenService) { s.clockSkew = d }
}

// NewTokenService creates an HMACTokenService from the auth configuration.
func NewTokenService(cfg config.AuthConfig, opts ...TokenOption) (*HMACTokenService, error) {
	if len(cfg.AccessTokenSecret) < minSecretLength || len(cfg.RefreshTokenSecret) < minSecretLength {
		return nil, fmt.Errorf("token secrets must be at least %d characters", minSecretLength)
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, errors.New("access and refresh token secrets must differ")
	}
	if cfg.AccessTokenLifetime() <= 0 || cfg.RefreshTokenLifetime() <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}

	s := &HMACTokenService{
		specs: map[TokenKind]tokenSpec{
			AccessToken:  {secret: []byte(cfg.AccessTokenSecret), lifetime: cfg.AccessTokenLifetime()},
			RefreshToken: {secret: []byte(cfg.RefreshTokenSecret), lifetime: cfg.RefreshTokenLifetime()},
		},
		timeFunc: time.Now,
		idFunc:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IssueAccessToken implements TokenService.
func (s *HMACTokenService) IssueAccessToken(ctx context.Context, id domain.Identity) (string, error) {
	return s.issue(ctx, id, AccessToken)
}

// IssueRefreshToken implements TokenService.
func (s *HMACTokenService) IssueRefreshToken(ctx context.Context, id domain.Identity) (string, error) {
	return s.issue(ctx, id, RefreshToken)
}

func (s *HMACTokenService) issue(ctx context.Context, id domain.Identity, kind TokenKind) (string, error) {
	spec := s.specs[kind]
	now := s.timeFunc()

	claims := jwtCustomClaims{
		UserID:    id.UserID,
		Email:     id.Email,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(spec.lifetime)),
			ID:        s.idFunc(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(spec.secret)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign token",
			"error", err,
			"user_id", id.UserID,
			"token_type", kind)
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify implements TokenService.
func (s *HMACTokenService) Verify(ctx context.Context, tokenString string, kind TokenKind) (*Claims, error) {
	log := logger.FromContext(ctx)

	spec, ok := s.specs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token kind %q", ErrInvalidToken, kind)
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return spec.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(s.timeFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("token validation failed: expired", "token_type", kind)
			return nil, ErrExpiredToken
		}
		log.Debug("token validation failed",
			"error", err,
			"token_type", kind)
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil {
		log.Debug("token validation failed: invalid claims", "token_type", kind)
		return nil, ErrInvalidToken
	}
	if claims.TokenType != kind {
		log.Debug("token validation failed: wrong token type",
			"expected", kind,
			"actual", claims.TokenType)
		return nil, ErrWrongTokenType
	}

	result := &Claims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Kind:      claims.TokenType,
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	return result, nil
}
