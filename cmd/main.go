package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/insider_watchlist_bot/config"
	"github.com/KotFed0t/insider_watchlist_bot/data"
	"github.com/KotFed0t/insider_watchlist_bot/data/cache"
	"github.com/KotFed0t/insider_watchlist_bot/data/kvstore"
	"github.com/KotFed0t/insider_watchlist_bot/data/repository/postgres"
	"github.com/KotFed0t/insider_watchlist_bot/data/session"
	"github.com/KotFed0t/insider_watchlist_bot/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/insider_watchlist_bot/internal/externalApi/tradieApi"
	"github.com/KotFed0t/insider_watchlist_bot/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/insider_watchlist_bot/internal/scheduler"
	"github.com/KotFed0t/insider_watchlist_bot/internal/service/insiderService"
	"github.com/KotFed0t/insider_watchlist_bot/internal/service/watchlistService"
	"github.com/KotFed0t/insider_watchlist_bot/internal/tgbot"
	"github.com/KotFed0t/insider_watchlist_bot/internal/transport/telegram"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)
	chartCache := cache.NewChartCache(cfg.Cache.ChartExpiration)
	redisSession := session.NewRedisSession(redisClient, cfg.SessionExpiration)

	kvStorage, closeKV := newKVStorage(cfg, pgClient, redisClient)
	defer closeKV()

	tradieApiClient := tradieApi.New(cfg)

	reportGenerator := xslsxGenerator.New()

	// a typed nil would make the service believe drive is configured
	var cloudStorage insiderService.CloudStorage
	if cfg.GoogleDrive.CredentialsFile != "" {
		cloudStorage = googleDriveApi.New(ctx, cfg)
	}

	insiderSrv := insiderService.New(
		pgRepo,
		redisCache,
		chartCache,
		tradieApiClient,
		reportGenerator,
		cloudStorage,
		cfg.Telegram.FileLimitInBytes,
	)
	watchlistSrv := watchlistService.New(kvStorage)

	sched := scheduler.New(cfg.Jobs.Timeout)
	sched.NewIntervalJob("fill trades cache", insiderSrv.FillTradesCache, cfg.Jobs.FillTradesCacheInterval, true)
	sched.NewCrontabJob("delete old exports", insiderSrv.DeleteOldExports, cfg.Jobs.DeleteOldExportsCrontab, false)
	sched.Start()
	defer sched.Stop()

	tgController := telegram.NewController(insiderSrv, watchlistSrv, redisSession, cfg.TradesPerPage)

	tgBot := tgbot.New(cfg, tgController, redisSession)
	tgBot.Start()
	defer tgBot.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

// newKVStorage picks the watchlist storage backend by KV_BACKEND.
func newKVStorage(cfg *config.Config, pgClient *sqlx.DB, redisClient *redis.Client) (watchlistService.Storage, func()) {
	switch cfg.KVBackend {
	case "postgres":
		return kvstore.NewSQLKV(pgClient), func() {}
	case "sqlite":
		sqliteClient := data.NewSQLiteClient(cfg)
		return kvstore.NewSQLKV(sqliteClient), func() { _ = sqliteClient.Close() }
	case "redis":
		return kvstore.NewRedisKV(redisClient), func() {}
	default:
		slog.Error("unknown KV_BACKEND", slog.String("backend", cfg.KVBackend))
		panic("unknown KV_BACKEND " + cfg.KVBackend)
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
