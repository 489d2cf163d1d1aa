package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
	"github.com/KotFed0t/insider_watchlist_bot/utils"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

var ErrNotFound = errors.New("error session not found")

type RedisSession struct {
	redis      *redis.Client
	expiration time.Duration
}

func NewRedisSession(redisClient *redis.Client, expiration time.Duration) *RedisSession {
	return &RedisSession{redis: redisClient, expiration: expiration}
}

func (r *RedisSession) GetSession(ctx context.Context, key string) (model.Session, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := r.redis.Get(ctx, sessionKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Session{Filter: model.DefaultFilterState()}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return model.Session{}, err
	}

	chatSession := model.Session{}
	err = json.Unmarshal([]byte(res), &chatSession)
	if err != nil {
		slog.Warn("can't unmarshall session, starting a new one", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{Filter: model.DefaultFilterState()}, ErrNotFound
	}

	if !chatSession.Filter.Tab.Valid() {
		chatSession.Filter.Tab = model.CategoryAll
	}

	return chatSession, nil
}

func (r *RedisSession) SetSession(ctx context.Context, key string, chatSession model.Session) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	sessionJson, err := json.Marshal(chatSession)
	if err != nil {
		slog.Error("can't marshall session", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	err = r.redis.Set(ctx, sessionKeyPrefix+key, sessionJson, r.expiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return err
	}

	return nil
}
