package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "posterminal:session:"

// Hash fields of the persisted session.
const (
	fieldAccessToken  = "accessToken"
	fieldRefreshToken = "refreshToken"
	fieldUser         = "user"
)

// RedisStore persists the session of one terminal in a Redis hash so it
// survives process restarts.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store for the given terminal id.
// A zero ttl keeps the session until it is cleared.
func NewRedisStore(client *redis.Client, terminalID string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		key:    keyPrefix + terminalID,
		ttl:    ttl,
	}
}

// Get reads the session hash.
func (r *RedisStore) Get(ctx context.Context) (*Session, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall session: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	s := &Session{
		AccessToken:  fields[fieldAccessToken],
		RefreshToken: fields[fieldRefreshToken],
	}
	if raw := fields[fieldUser]; raw != "" {
		var u User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return nil, fmt.Errorf("unmarshal session user: %w", err)
		}
		s.User = &u
	}
	return s, nil
}

// Set replaces the session hash atomically.
func (r *RedisStore) Set(ctx context.Context, s *Session) error {
	if s == nil {
		return r.Clear(ctx)
	}

	var user string
	if s.User != nil {
		data, err := json.Marshal(s.User)
		if err != nil {
			return fmt.Errorf("marshal session user: %w", err)
		}
		user = string(data)
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		pipe.HSet(ctx, r.key,
			fieldAccessToken, s.AccessToken,
			fieldRefreshToken, s.RefreshToken,
			fieldUser, user,
		)
		if r.ttl > 0 {
			pipe.Expire(ctx, r.key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Clear deletes the session hash.
func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
