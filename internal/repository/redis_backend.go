package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "uiguide:"

type redisBackend struct {
	redisClient *redis.Client
}

// NewRedisBackend 创建一个基于 Redis 的 Backend。
func NewRedisBackend(redisClient *redis.Client) Backend {
	return &redisBackend{redisClient: redisClient}
}

func (r *redisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.redisClient.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

func (r *redisBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := r.redisClient.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (r *redisBackend) Delete(ctx context.Context, key string) error {
	if err := r.redisClient.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (r *redisBackend) Close() error {
	return r.redisClient.Close()
}
