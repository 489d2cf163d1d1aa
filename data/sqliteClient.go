package data

import (
	"log/slog"

	"github.com/KotFed0t/insider_watchlist_bot/config"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

const createSQLiteKVTable = `
	CREATE TABLE IF NOT EXISTS kv_storage (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		dt_update TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
`

func NewSQLiteClient(cfg *config.Config) *sqlx.DB {
	db, err := OpenSQLite(cfg.SQLite.Path)
	if err != nil {
		slog.Error("failed to open sqlite", slog.String("path", cfg.SQLite.Path), slog.String("err", err.Error()))
		panic(err)
	}
	slog.Info("SQLite opened", slog.String("path", cfg.SQLite.Path))
	return db
}

// OpenSQLite opens the database file (or ":memory:") and makes sure kv_storage exists.
func OpenSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// single writer, sqlite serializes writes anyway
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(createSQLiteKVTable); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
