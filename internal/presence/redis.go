package presence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const presenceKeyPrefix = "presence:"

// redisTracker implements Tracker with TTL'd per-user keys. The TTL acts
// as a dead-man switch: a connection that vanishes without a clean
// shutdown stops being "connected" once its last heartbeat expires.
type redisTracker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTracker creates a Tracker backed by the given Redis client.
// ttl should comfortably exceed the websocket heartbeat interval.
func NewRedisTracker(client *redis.Client, ttl time.Duration) Tracker {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &redisTracker{client: client, ttl: ttl}
}

func key(userID string) string {
	return presenceKeyPrefix + userID
}

func (t *redisTracker) MarkOnline(ctx context.Context, userID string) error {
	return t.client.Set(ctx, key(userID), time.Now().UTC().Unix(), t.ttl).Err()
}

func (t *redisTracker) MarkOffline(ctx context.Context, userID string) error {
	return t.client.Del(ctx, key(userID)).Err()
}

func (t *redisTracker) IsConnected(ctx context.Context, userID string) (bool, error) {
	n, err := t.client.Exists(ctx, key(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
