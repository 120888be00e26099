package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"practica/models"
	"practica/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a session does not exist or has lapsed.
var ErrNotFound = errors.New("booking session not found or expired")

// Store persists the per-visitor wizard state across page reloads. One
// serializable snapshot per session, keyed by a locally generated ID; the
// visitor is unauthenticated so the key is the whole identity.
type Store interface {
	Create(ctx context.Context) (*models.BookingSession, error)
	Get(ctx context.Context, sessionID string) (*models.BookingSession, error)
	Save(ctx context.Context, s *models.BookingSession) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisStore implements Store on Redis with a rolling TTL.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{Client: client, TTL: ttl}
}

func key(sessionID string) string {
	return utils.SessionCachePrefix + sessionID
}

func (s *RedisStore) Create(ctx context.Context) (*models.BookingSession, error) {
	sess := &models.BookingSession{
		SessionID: uuid.New().String(),
		Version:   1,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking session: %w", err)
	}
	if err := s.Client.Set(ctx, key(sess.SessionID), data, s.TTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to store booking session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	data, err := s.Client.Get(ctx, key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking session: %w", err)
	}

	var sess models.BookingSession
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("failed to parse booking session: %w", err)
	}
	return &sess, nil
}

// Save writes the snapshot back and refreshes the TTL. Version increments on
// every save.
func (s *RedisStore) Save(ctx context.Context, sess *models.BookingSession) error {
	sess.Version++

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal booking session: %w", err)
	}
	if err := s.Client.Set(ctx, key(sess.SessionID), data, s.TTL).Err(); err != nil {
		return fmt.Errorf("failed to update booking session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.Client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete booking session: %w", err)
	}
	return nil
}
