package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nestly/models"

	"github.com/go-redis/redis/v8"
)

const BookingSessionPrefix = "bookingSession:"

// ErrSessionNotFound is returned for unknown, expired or foreign sessions.
var ErrSessionNotFound = NewError(ErrNotFound, "booking session not found or expired")

// SessionStore persists wizard sessions with a TTL.
type SessionStore interface {
	Save(ctx context.Context, session *models.BookingSession, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*models.BookingSession, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisSessionStore keeps sessions as JSON under BookingSessionPrefix.
type RedisSessionStore struct {
	Client *redis.Client
}

func (r *RedisSessionStore) Save(ctx context.Context, session *models.BookingSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal booking session: %w", err)
	}
	if err := r.Client.Set(ctx, BookingSessionPrefix+session.SessionID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store booking session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	data, err := r.Client.Get(ctx, BookingSessionPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load booking session: %w", err)
	}
	var session models.BookingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse booking session %s: %w", sessionID, err)
	}
	return &session, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return r.Client.Del(ctx, BookingSessionPrefix+sessionID).Err()
}
