package redis

import (
	"context"
	"fmt"
	"github.com/redis/go-redis/v9"
	"gophergrub/internal/config"
	"time"
)

type Client interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
	Ping(ctx context.Context) *redis.StatusCmd
}

func NewClient(ctx context.Context, maxAttempts int, sc config.StorageRedis) (client *redis.Client, err error) {
	err = doWithTries(func() error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		client = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", sc.Host, sc.Port),
			Username: sc.Username,
			Password: sc.Password,
			DB:       sc.DB,
		})

		if _, err := client.Ping(ctx).Result(); err != nil {
			_ = client.Close()
			return err
		}
		return nil
	}, maxAttempts, sc.RetryDelay)

	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", maxAttempts, err)
	}

	return client, nil
}

func doWithTries(fn func() error, attempts int, delay time.Duration) (err error) {
	for attempts > 0 {
		if err = fn(); err != nil {
			attempts--
			if attempts > 0 {
				time.Sleep(delay)
			}
			continue
		}
		return nil
	}
	return
}
