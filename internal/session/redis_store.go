package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps bindings in Redis with a per-key TTL, so stale
// bindings clean themselves up and every handler process observes the
// same state. Single-instance Redis gives read-your-write directly;
// replicated setups must read from the primary to keep it.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "gateway:conn:",
	}
}

func (r *RedisStore) key(connectionID string) string {
	return r.prefix + connectionID
}

func (r *RedisStore) Put(ctx context.Context, s Session) error {
	if s.ConnectionID == "" || s.Identity.Subject == "" {
		return fmt.Errorf("session: missing connection_id or subject")
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: expires_at must be in the future")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	return r.client.Set(ctx, r.key(s.ConnectionID), data, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, connectionID string) (*Session, error) {
	val, err := r.client.Get(ctx, r.key(connectionID)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}

	return &s, nil
}

func (r *RedisStore) Remove(ctx context.Context, connectionID string) error {
	return r.client.Del(ctx, r.key(connectionID)).Err()
}
