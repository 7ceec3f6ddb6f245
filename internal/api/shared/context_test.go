package shared

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTraceID(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))

	ctx := SetTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, TraceIDLength*2)

	other := GetTraceID(SetTraceID(context.Background()))
	assert.NotEqual(t, id, other)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	_, ok = IdentityFromContext(WithIdentity(context.Background(), domain.Identity{}))
	assert.False(t, ok)

	want := domain.Identity{UserID: uuid.New(), Email: "a@example.com"}
	got, ok := IdentityFromContext(WithIdentity(context.Background(), want))
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestErrorDetailFlag(t *testing.T) {
	assert.False(t, ErrorDetailEnabled(context.Background()))
	assert.True(t, ErrorDetailEnabled(WithErrorDetail(context.Background(), true)))
	assert.False(t, ErrorDetailEnabled(WithErrorDetail(context.Background(), false)))
}
