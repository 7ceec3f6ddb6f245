package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

// Messages written for each authentication failure.
const (
	MsgMissingToken   = "Access denied. No token provided."
	MsgMalformedToken = "Invalid token format. Use: Bearer <token>"
	MsgInvalidToken   = "Invalid or expired token."
	MsgSessionExpired = "Session expired. Please log in again."
	MsgStaleToken     = "Token is no longer valid. Please log in again."
	MsgInternalError  = "An unexpected error occurred"
)

// Rejection reasons reported to a RejectionRecorder.
const (
	ReasonMissingToken   = "missing_token"
	ReasonMalformed      = "malformed_header"
	ReasonInvalidToken   = "invalid_token"
	ReasonSessionExpired = "session_expired"
	ReasonStaleToken     = "stale_token"
)

// RejectionRecorder is told why a request was turned away.
type RejectionRecorder interface {
	RecordAuthRejection(reason string)
}

type noopRejections struct{}

func (noopRejections) RecordAuthRejection(string) {}

// AuthMiddleware authenticates requests with an access token that must also
// be the one on the caller's session record.
type AuthMiddleware struct {
	tokens     auth.TokenService
	sessions   store.SessionStore
	rejections RejectionRecorder
}

// NewAuthMiddleware creates an AuthMiddleware. rejections may be nil.
func NewAuthMiddleware(tokens auth.TokenService, sessions store.SessionStore, rejections RejectionRecorder) *AuthMiddleware {
	if rejections == nil {
		rejections = noopRejections{}
	}
	return &AuthMiddleware{
		tokens:     tokens,
		sessions:   sessions,
		rejections: rejections,
	}
}

// Authenticate rejects the request with 401 unless it carries a verified
// access token matching the stored session, and otherwise attaches the
// caller's identity to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		header := r.Header.Get("Authorization")
		if header == "" {
			m.reject(w, r, ReasonMissingToken, MsgMissingToken, auth.ErrMissingToken)
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			m.reject(w, r, ReasonMalformed, MsgMalformedToken, auth.ErrMalformedHeader)
			return
		}

		claims, err := m.tokens.Verify(ctx, token, auth.AccessToken)
		if err != nil {
			m.reject(w, r, ReasonInvalidToken, MsgInvalidToken, err)
			return
		}

		sess, err := m.sessions.Get(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrSessionNotFound) {
				m.reject(w, r, ReasonSessionExpired, MsgSessionExpired, auth.ErrSessionExpired)
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, MsgInternalError, err)
			return
		}

		if !auth.TokensEqual(sess.AccessToken, token) {
			m.reject(w, r, ReasonStaleToken, MsgStaleToken, auth.ErrStaleToken)
			return
		}

		identity := claims.Identity()
		ctx = shared.WithIdentity(ctx, identity)
		ctx = logger.WithLogger(ctx, logger.FromContext(ctx).With(slog.String("user_id", identity.UserID.String())))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, reason, message string, err error) {
	m.rejections.RecordAuthRejection(reason)
	shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, message, err)
}

// bearerToken extracts the token from a "Bearer <token>" header value.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// GetIdentity returns the authenticated caller attached by Authenticate.
func GetIdentity(r *http.Request) (domain.Identity, bool) {
	return shared.IdentityFromContext(r.Context())
}
