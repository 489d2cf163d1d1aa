package kvstore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/insider_watchlist_bot/utils"
	"github.com/redis/go-redis/v9"
)

// RedisKV keeps values without expiration.
type RedisKV struct {
	redis *redis.Client
}

func NewRedisKV(redisClient *redis.Client) *RedisKV {
	return &RedisKV{redis: redisClient}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return "", err
	}

	return res, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	err := r.redis.Set(ctx, key, value, 0).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return err
	}

	return nil
}

func (r *RedisKV) Remove(ctx context.Context, key string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	err := r.redis.Del(ctx, key).Err()
	if err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return err
	}

	return nil
}
