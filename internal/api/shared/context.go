package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/phrazzld/tasker-api/internal/domain"
)

// ContextKey is the type of request-scoped values set by this package.
type ContextKey string

const (
	// TraceIDKey holds the request's trace ID.
	TraceIDKey ContextKey = "traceID"

	// IdentityContextKey holds the authenticated caller's domain.Identity.
	IdentityContextKey ContextKey = "identity"

	// errorDetailKey marks requests whose error responses may carry detail.
	errorDetailKey ContextKey = "errorDetail"

	// TraceIDLength is the number of random bytes in a trace ID.
	TraceIDLength = 16
)

// SetTraceID adds a fresh trace ID to ctx.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID returns the trace ID in ctx, or "" if there is none.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// WithIdentity attaches the authenticated caller to ctx.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, id)
}

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(IdentityContextKey).(domain.Identity)
	if !ok || id.IsZero() {
		return domain.Identity{}, false
	}
	return id, true
}

// WithErrorDetail enables or disables redacted error detail in error
// responses written for this request.
func WithErrorDetail(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, errorDetailKey, enabled)
}

// ErrorDetailEnabled reports whether error responses may include detail.
func ErrorDetailEnabled(ctx context.Context) bool {
	enabled, _ := ctx.Value(errorDetailKey).(bool)
	return enabled
}

// generateTraceID returns 32 hex characters. When crypto/rand fails it
// falls back to a clock-derived value rather than a constant.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if _, err := rand.Read(b); err != nil {
		now := time.Now()
		binary.BigEndian.PutUint64(b[:8], uint64(now.UnixNano()))
		binary.BigEndian.PutUint64(b[8:], uint64(now.Unix())^uint64(now.Nanosecond()))
	}
	return hex.EncodeToString(b)
}
