package mocks

import (
	"context"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service/auth"
)

// MockTokenService implements auth.TokenService. Methods without an Fn
// override delegate to Delegate, which must then be set.
type MockTokenService struct {
	IssueAccessTokenFn  func(ctx context.Context, id domain.Identity) (string, error)
	IssueRefreshTokenFn func(ctx context.Context, id domain.Identity) (string, error)
	VerifyFn            func(ctx context.Context, token string, kind auth.TokenKind) (*auth.Claims, error)

	Delegate auth.TokenService
}

var _ auth.TokenService = (*MockTokenService)(nil)

// IssueAccessToken implements auth.TokenService.
func (m *MockTokenService) IssueAccessToken(ctx context.Context, id domain.Identity) (string, error) {
	if m.IssueAccessTokenFn != nil {
		return m.IssueAccessTokenFn(ctx, id)
	}
	return m.Delegate.IssueAccessToken(ctx, id)
}

// IssueRefreshToken implements auth.TokenService.
func (m *MockTokenService) IssueRefreshToken(ctx context.Context, id domain.Identity) (string, error) {
	if m.IssueRefreshTokenFn != nil {
		return m.IssueRefreshTokenFn(ctx, id)
	}
	return m.Delegate.IssueRefreshToken(ctx, id)
}

// Verify implements auth.TokenService.
func (m *MockTokenService) Verify(ctx context.Context, token string, kind auth.TokenKind) (*auth.Claims, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, token, kind)
	}
	return m.Delegate.Verify(ctx, token, kind)
}
