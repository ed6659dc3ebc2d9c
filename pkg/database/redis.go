package database

import (
	"achievify/configs"
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis returns nil, nil when no Redis host is configured.
func ConnectRedis(ctx context.Context, cfg configs.Config) (*redis.Client, error) {
	addr := cfg.RedisAddr()
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}
	return client, nil
}
