package redis

import (
	"context"
	"errors"
	"fmt"
	redis2 "github.com/redis/go-redis/v9"
	"gophergrub/internal/storage"
	"gophergrub/pkg/client/redis"
	"time"
)

type repositoryRedis struct {
	Client redis.Client
	TTL    time.Duration
}

// NewRepositoryRedis stores session values in one hash per session. The hash
// expires together with the refresh credential it belongs to.
func NewRepositoryRedis(client redis.Client, ttl time.Duration) storage.Storage {
	return &repositoryRedis{Client: client, TTL: ttl}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func (r *repositoryRedis) Save(ctx context.Context, sessionID, key, value string) error {
	const op = "redis.Save"

	k := sessionKey(sessionID)

	_, err := r.Client.TxPipelined(ctx, func(pipe redis2.Pipeliner) error {
		pipe.HSet(ctx, k, key, value)
		pipe.Expire(ctx, k, r.TTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repositoryRedis) Get(ctx context.Context, sessionID, key string) (string, error) {
	const op = "redis.Get"

	val, err := r.Client.HGet(ctx, sessionKey(sessionID), key).Result()
	if errors.Is(err, redis2.Nil) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return val, nil
}

func (r *repositoryRedis) Clear(ctx context.Context, sessionID string) error {
	const op = "redis.Clear"

	if err := r.Client.Del(ctx, sessionKey(sessionID)).Err(); err != nil && !errors.Is(err, redis2.Nil) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
