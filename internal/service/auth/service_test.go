package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/mocks"
	"github.com/phrazzld/tasker-api/internal/platform/memory"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionTTL = 7 * 24 * time.Hour

type recordedEvent struct {
	event, outcome string
}

type eventLog struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (l *eventLog) RecordAuthEvent(event, outcome string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, recordedEvent{event, outcome})
}

func (l *eventLog) last() recordedEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return recordedEvent{}
	}
	return l.events[len(l.events)-1]
}

type serviceFixture struct {
	svc      *auth.Service
	users    *mocks.MockUserStore
	sessions *mocks.MockSessionStore
	tokens   *auth.HMACTokenService
	clock    *fakeClock
	events   *eventLog
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		users:    mocks.NewMockUserStore(),
		sessions: mocks.NewMockSessionStore(),
		clock:    &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)},
		events:   &eventLog{},
	}
	f.tokens = newTestTokenService(t, f.clock)

	svc, err := auth.NewService(
		f.users,
		f.sessions,
		f.tokens,
		&mocks.MockPasswordHasher{},
		testSessionTTL,
		nil,
		auth.WithEventRecorder(f.events),
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *serviceFixture) register(t *testing.T, email, password string) *domain.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), auth.RegisterInput{
		Name:     "Test User",
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func TestNewService_RequiresDependencies(t *testing.T) {
	t.Parallel()

	users := mocks.NewMockUserStore()
	sessions := mocks.NewMockSessionStore()
	tokens := &mocks.MockTokenService{}
	hasher := &mocks.MockPasswordHasher{}

	tests := []struct {
		name string
		call func() (*auth.Service, error)
	}{
		{"nil users", func() (*auth.Service, error) {
			return auth.NewService(nil, sessions, tokens, hasher, time.Hour, nil)
		}},
		{"nil sessions", func() (*auth.Service, error) {
			return auth.NewService(users, nil, tokens, hasher, time.Hour, nil)
		}},
		{"nil tokens", func() (*auth.Service, error) {
			return auth.NewService(users, sessions, nil, hasher, time.Hour, nil)
		}},
		{"nil hasher", func() (*auth.Service, error) {
			return auth.NewService(users, sessions, tokens, nil, time.Hour, nil)
		}},
		{"zero ttl", func() (*auth.Service, error) {
			return auth.NewService(users, sessions, tokens, hasher, 0, nil)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, err := tt.call()
			assert.Error(t, err)
			assert.Nil(t, svc)
		})
	}
}

func TestRegister_NormalizesAndHashes(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)

	user, err := f.svc.Register(context.Background(), auth.RegisterInput{
		Name:     "  Jane  ",
		Email:    "JANE@EX.com",
		Password: "secret1!",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane", user.Name)
	assert.Equal(t, "jane@ex.com", user.Email)
	assert.NotEqual(t, "secret1!", user.PasswordHash)

	stored, err := f.users.GetByEmail(context.Background(), "jane@ex.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
	assert.Equal(t, recordedEvent{auth.EventRegister, auth.OutcomeSuccess}, f.events.last())

	pair, err := f.svc.Login(context.Background(), "jane@ex.com", "secret1!")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestRegister_DuplicateNormalizedEmail(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)

	f.register(t, "dup@example.com", "password1")

	_, err := f.svc.Register(context.Background(), auth.RegisterInput{
		Name:     "Other",
		Email:    "  DUP@Example.COM ",
		Password: "password2",
	})
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	assert.Equal(t, 1, f.users.Count())
	assert.Equal(t, recordedEvent{auth.EventRegister, auth.OutcomeFailure}, f.events.last())
}

func TestRegister_UniqueConstraintBackstop(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)

	// The lookup misses but the insert loses a race to a concurrent registration.
	f.users.CreateFn = func(context.Context, *domain.User) error {
		return store.NewStoreError("user", "create", store.ErrEmailExists)
	}

	_, err := f.svc.Register(context.Background(), auth.RegisterInput{
		Name:     "Racer",
		Email:    "race@example.com",
		Password: "password1",
	})
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
}

func TestRegister_Failures(t *testing.T) {
	t.Parallel()

	t.Run("store lookup error", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		boom := errors.New("connection reset")
		f.users.GetByEmailFn = func(context.Context, string) (*domain.User, error) { return nil, boom }

		_, err := f.svc.Register(context.Background(), auth.RegisterInput{Name: "A", Email: "a@example.com", Password: "pw"})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, recordedEvent{auth.EventRegister, auth.OutcomeError}, f.events.last())
	})

	t.Run("invalid email", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)

		_, err := f.svc.Register(context.Background(), auth.RegisterInput{Name: "A", Email: "not-an-email", Password: "pw"})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "email")
		assert.Equal(t, recordedEvent{auth.EventRegister, auth.OutcomeFailure}, f.events.last())
	})

	t.Run("password too long", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		svc, err := auth.NewService(f.users, f.sessions, f.tokens, auth.NewBcryptHasher(4), testSessionTTL, nil,
			auth.WithEventRecorder(f.events))
		require.NoError(t, err)

		long := strings.Repeat("a", 80)
		_, err = svc.Register(context.Background(), auth.RegisterInput{Name: "A", Email: "a@example.com", Password: long})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "password")
		assert.Equal(t, recordedEvent{auth.EventRegister, auth.OutcomeFailure}, f.events.last())
		assert.Zero(t, f.users.Count())
	})
}

func TestLogin_IssuesPairAndStoresSession(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	user := f.register(t, "login@example.com", "hunter22")

	pair, err := f.svc.Login(context.Background(), "  LOGIN@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	sess, err := f.sessions.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, store.Session{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, *sess)
	assert.Equal(t, testSessionTTL, f.sessions.LastTTL())

	claims, err := f.tokens.Verify(context.Background(), pair.AccessToken, auth.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "login@example.com", claims.Email)
	assert.Equal(t, recordedEvent{auth.EventLogin, auth.OutcomeSuccess}, f.events.last())
}

func TestLogin_InvalidCredentialsAreIndistinguishable(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	f.register(t, "real@example.com", "rightpass")

	_, unknownErr := f.svc.Login(context.Background(), "ghost@example.com", "rightpass")
	_, wrongErr := f.svc.Login(context.Background(), "real@example.com", "wrongpass")

	assert.ErrorIs(t, unknownErr, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, auth.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.Equal(t, 0, f.sessions.Len())
}

func TestLogin_SessionWriteFailure(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	f.register(t, "a@example.com", "pw")
	f.sessions.PutFn = func(context.Context, uuid.UUID, store.Session, time.Duration) error {
		return errors.New("redis unavailable")
	}

	pair, err := f.svc.Login(context.Background(), "a@example.com", "pw")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Nil(t, pair)
	assert.Equal(t, recordedEvent{auth.EventLogin, auth.OutcomeError}, f.events.last())
}

func TestLogin_SecondLoginReplacesSession(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	user := f.register(t, "twice@example.com", "pw")

	first, err := f.svc.Login(context.Background(), "twice@example.com", "pw")
	require.NoError(t, err)
	second, err := f.svc.Login(context.Background(), "twice@example.com", "pw")
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	sess, err := f.sessions.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.AccessToken, sess.AccessToken)

	// The first refresh token still verifies but no longer matches the record.
	_, err = f.svc.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenMismatch)
}

func TestRefresh_RotatesAccessTokenOnly(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	user := f.register(t, "refresh@example.com", "pw")

	pair, err := f.svc.Login(context.Background(), "refresh@example.com", "pw")
	require.NoError(t, err)

	access, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, access)

	sess, err := f.sessions.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, access, sess.AccessToken)
	assert.Equal(t, pair.RefreshToken, sess.RefreshToken)
	assert.Equal(t, recordedEvent{auth.EventRefresh, auth.OutcomeSuccess}, f.events.last())

	// The carried-over refresh token keeps working.
	again, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, access, again)
}

func TestRefresh_RestartsSessionTTL(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	users := mocks.NewMockUserStore()
	tokens := newTestTokenService(t, clock)

	mem := memory.NewSessionStoreWithClock(clock.Now)
	svc, err := auth.NewService(users, mem, tokens, &mocks.MockPasswordHasher{}, testSessionTTL, nil)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), auth.RegisterInput{Name: "T", Email: "ttl@example.com", Password: "pw"})
	require.NoError(t, err)
	pair, err := svc.Login(context.Background(), "ttl@example.com", "pw")
	require.NoError(t, err)

	clock.Advance(6 * 24 * time.Hour)
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	// Past the original TTL but within the restarted one.
	clock.Advance(2 * 24 * time.Hour)
	assert.Equal(t, 1, mem.Len())
}

func TestRefresh_Failures(t *testing.T) {
	t.Parallel()

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		_, err := f.svc.Refresh(context.Background(), "")
		assert.ErrorIs(t, err, auth.ErrMissingRefreshToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		_, err := f.svc.Refresh(context.Background(), "garbage")
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})

	t.Run("access token presented", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.register(t, "a@example.com", "pw")
		pair, err := f.svc.Login(context.Background(), "a@example.com", "pw")
		require.NoError(t, err)

		_, err = f.svc.Refresh(context.Background(), pair.AccessToken)
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.register(t, "a@example.com", "pw")
		pair, err := f.svc.Login(context.Background(), "a@example.com", "pw")
		require.NoError(t, err)

		f.clock.Advance(8 * 24 * time.Hour)
		_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})

	t.Run("session gone after logout", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		user := f.register(t, "a@example.com", "pw")
		pair, err := f.svc.Login(context.Background(), "a@example.com", "pw")
		require.NoError(t, err)
		require.NoError(t, f.svc.Logout(context.Background(), user.ID))

		_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	})

	t.Run("session changed concurrently", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.register(t, "a@example.com", "pw")
		pair, err := f.svc.Login(context.Background(), "a@example.com", "pw")
		require.NoError(t, err)
		f.sessions.ReplaceFn = func(context.Context, uuid.UUID, store.Session, store.Session, time.Duration) error {
			return store.ErrSessionConflict
		}

		_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrSessionConflict)
		assert.Equal(t, recordedEvent{auth.EventRefresh, auth.OutcomeFailure}, f.events.last())
	})

	t.Run("session store unavailable on write", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.register(t, "a@example.com", "pw")
		pair, err := f.svc.Login(context.Background(), "a@example.com", "pw")
		require.NoError(t, err)
		boom := errors.New("redis down")
		f.sessions.ReplaceFn = func(context.Context, uuid.UUID, store.Session, store.Session, time.Duration) error {
			return boom
		}

		_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, recordedEvent{auth.EventRefresh, auth.OutcomeError}, f.events.last())
	})
}

func TestRefresh_ConcurrentCallsHaveOneWinner(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	user := f.register(t, "race@example.com", "pw")
	pair, err := f.svc.Login(context.Background(), "race@example.com", "pw")
	require.NoError(t, err)

	// Both refreshes read the session before either writes.
	var reads sync.WaitGroup
	reads.Add(2)
	f.sessions.GetFn = func(ctx context.Context, id uuid.UUID) (*store.Session, error) {
		sess, err := f.sessions.SessionStore.Get(ctx, id)
		reads.Done()
		reads.Wait()
		return sess, err
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = f.svc.Refresh(context.Background(), pair.RefreshToken)
		}()
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, auth.ErrSessionConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	f.sessions.GetFn = nil
	sess, err := f.sessions.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, sess.AccessToken)
}

func TestLogout_Idempotent(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	user := f.register(t, "bye@example.com", "pw")
	_, err := f.svc.Login(context.Background(), "bye@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), user.ID))
	_, err = f.sessions.Get(context.Background(), user.ID)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	assert.NoError(t, f.svc.Logout(context.Background(), user.ID))
	assert.Equal(t, recordedEvent{auth.EventLogout, auth.OutcomeSuccess}, f.events.last())
}

func TestLogout_StoreFailure(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	f.sessions.DeleteFn = func(context.Context, uuid.UUID) error { return errors.New("redis down") }

	err := f.svc.Logout(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.Equal(t, recordedEvent{auth.EventLogout, auth.OutcomeError}, f.events.last())
}

func TestTokensEqual(t *testing.T) {
	t.Parallel()
	assert.True(t, auth.TokensEqual("abc", "abc"))
	assert.False(t, auth.TokensEqual("abc", "abd"))
	assert.False(t, auth.TokensEqual("abc", "abcd"))
	assert.False(t, auth.TokensEqual("", "a"))
}
