package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/store"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces session keys: session:<userId>.
const DefaultKeyPrefix = "session:"

// SessionStore stores one JSON-encoded store.Session per user under a TTL.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

var _ store.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore over client. If logger is nil the
// default logger is used.
func NewSessionStore(client redis.UniversalClient, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		client: client,
		prefix: DefaultKeyPrefix,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

func (s *SessionStore) key(userID uuid.UUID) string {
	return s.prefix + userID.String()
}

// Put implements store.SessionStore.Put.
func (s *SessionStore) Put(ctx context.Context, userID uuid.UUID, sess store.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(userID), data, ttl).Err(); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to write session",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Get implements store.SessionStore.Get.
func (s *SessionStore) Get(ctx context.Context, userID uuid.UUID) (*store.Session, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrSessionNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to read session",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return decodeSession(data)
}

// Delete implements store.SessionStore.Delete. DEL on a missing key returns
// zero rather than an error, so repeated logouts succeed.
func (s *SessionStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Replace implements store.SessionStore.Replace with WATCH/MULTI: the SET is
// discarded by Redis if the key changes between the read and EXEC.
func (s *SessionStore) Replace(
	ctx context.Context,
	userID uuid.UUID,
	expected, next store.Session,
	ttl time.Duration,
) error {
	key := s.key(userID)
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return store.ErrSessionNotFound
			}
			return fmt.Errorf("failed to read session: %w", err)
		}

		stored, err := decodeSession(current)
		if err != nil {
			return err
		}
		if *stored != expected {
			return store.ErrSessionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		logger.FromContextOrDefault(ctx, s.logger).Warn("session changed during replace",
			slog.String("user_id", userID.String()))
		return store.ErrSessionConflict
	case errors.Is(err, store.ErrSessionNotFound), errors.Is(err, store.ErrSessionConflict):
		return err
	default:
		return fmt.Errorf("failed to replace session: %w", err)
	}
}

func decodeSession(data []byte) (*store.Session, error) {
	var sess store.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, nil
}
