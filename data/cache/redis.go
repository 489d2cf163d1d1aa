package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/KotFed0t/insider_watchlist_bot/config"
	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
	"github.com/KotFed0t/insider_watchlist_bot/utils"
	"github.com/redis/go-redis/v9"
)

const tradesKeyPrefix = "trades:"

var ErrNotFound = errors.New("error not found in cache")

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func (r *RedisCache) SetTrades(ctx context.Context, category model.Category, trades []model.TradeRecord) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetTrades start", slog.String("rqID", rqID), slog.String("category", string(category)))

	tradesJson, err := json.Marshal(trades)
	if err != nil {
		slog.Error(
			"can't marshall trades in SetTrades",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("category", string(category)),
		)
		return errors.New("can't marshall trades")
	}

	err = r.redis.Set(ctx, tradesKeyPrefix+string(category), tradesJson, r.cfg.Cache.TradesExpiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetTrades completed", slog.String("rqID", rqID), slog.Int("count", len(trades)))

	return nil
}

// SetAllTrades writes every category in one pipeline.
func (r *RedisCache) SetAllTrades(ctx context.Context, categories map[model.Category][]model.TradeRecord) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetAllTrades start", slog.String("rqID", rqID))

	pipe := r.redis.Pipeline()
	for category, trades := range categories {
		tradesJson, err := json.Marshal(trades)
		if err != nil {
			slog.Error(
				"can't marshall trades in SetAllTrades",
				slog.String("rqID", rqID),
				slog.String("err", err.Error()),
				slog.String("category", string(category)),
			)
			return errors.New("can't marshall trades")
		}

		pipe.Set(ctx, tradesKeyPrefix+string(category), tradesJson, r.cfg.Cache.TradesExpiration)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("failed on pipe.Exec", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetAllTrades completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetTrades(ctx context.Context, category model.Category) ([]model.TradeRecord, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetTrades start", slog.String("rqID", rqID), slog.String("category", string(category)))

	res, err := r.redis.Get(ctx, tradesKeyPrefix+string(category)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("category", string(category)))
		return nil, err
	}

	var trades []model.TradeRecord
	err = json.Unmarshal([]byte(res), &trades)
	if err != nil {
		slog.Error(
			"can't unmarshall trades in GetTrades",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("category", string(category)),
		)
		return nil, errors.New("can't unmarshall trades")
	}

	slog.Debug("GetTrades finished", slog.String("rqID", rqID), slog.Int("count", len(trades)))

	return trades, nil
}
