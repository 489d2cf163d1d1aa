package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	KVBackend         string `env:"KV_BACKEND" envDefault:"redis"`
	Postgres          Postgres
	SQLite            SQLite
	Telegram          Telegram
	Redis             Redis
	API               API
	Cache             Cache
	Jobs              Jobs
	GoogleDrive       GoogleDrive
	SessionExpiration time.Duration `env:"SESSION_EXPIRATION"`
	TradesPerPage     int           `env:"TRADES_PER_PAGE" envDefault:"5"`
}

type Postgres struct {
	Host            string `env:"PG_HOST"`
	Port            int    `env:"PG_PORT"`
	DbName          string `env:"PG_DB_NAME"`
	Password        string `env:"PG_PASSWORD"`
	User            string `env:"PG_USER"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME"`
	MigrationDir    string `env:"PG_MIGRATION_DIR"`
}

// SQLite is only used when KV_BACKEND=sqlite.
type SQLite struct {
	Path string `env:"SQLITE_PATH" envDefault:"watchlist.db"`
}

type Telegram struct {
	Token            string        `env:"TELEGRAM_TOKEN"`
	UpdTimeout       time.Duration `env:"TELEGRAM_UPD_TIMEOUT"`
	FileLimitInBytes int           `env:"TELEGRAM_FILE_LIMIT_IN_BYTES"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB"`
}

type API struct {
	Debug     bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout   time.Duration `env:"API_TIMEOUT"`
	TradieApi TradieApi
}

type TradieApi struct {
	Url       string  `env:"TRADIE_API_URL"`
	RateLimit float64 `env:"TRADIE_API_RATE_LIMIT" envDefault:"10"`
	RateBurst int     `env:"TRADIE_API_RATE_BURST" envDefault:"6"`
}

type Cache struct {
	TradesExpiration time.Duration `env:"CACHE_TRADES_EXPIRATION"`
	ChartExpiration  time.Duration `env:"CACHE_CHART_EXPIRATION" envDefault:"5m"`
}

type Jobs struct {
	FillTradesCacheInterval time.Duration `env:"FILL_TRADES_CACHE_JOB_INTERVAL"`
	DeleteOldExportsCrontab string        `env:"DELETE_OLD_EXPORTS_JOB_CRONTAB" envDefault:"0 4 * * *"`
	Timeout                 time.Duration `env:"JOB_TIMEOUT" envDefault:"2m"`
}

// GoogleDrive is optional: without a credentials file exports are only sent as documents.
type GoogleDrive struct {
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"72h"`
	ExportTag       string        `env:"GOOGLE_DRIVE_EXPORT_TAG" envDefault:"watchlist_export"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
