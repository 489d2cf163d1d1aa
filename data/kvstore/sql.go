package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/KotFed0t/insider_watchlist_bot/utils"
	"github.com/jmoiron/sqlx"
)

// SQLKV stores values in the kv_storage table. The queries are valid for both postgres and sqlite.
type SQLKV struct {
	db     *sqlx.DB
	driver string
}

func NewSQLKV(db *sqlx.DB) *SQLKV {
	return &SQLKV{db: db, driver: db.DriverName()}
}

func (s *SQLKV) Get(ctx context.Context, key string) (value string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT value FROM kv_storage WHERE key = $1`

	slog.Debug("SQLKV.Get start", slog.String("rqID", rqID), slog.String("driver", s.driver), slog.String("key", key))

	err = s.db.GetContext(ctx, &value, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		slog.Error("SQLKV.Get failed", slog.String("rqID", rqID), slog.String("driver", s.driver), slog.String("err", err.Error()))
		return "", err
	}

	return value, nil
}

func (s *SQLKV) Set(ctx context.Context, key, value string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO kv_storage(key, value, dt_update)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			dt_update = EXCLUDED.dt_update
	`

	slog.Debug("SQLKV.Set start", slog.String("rqID", rqID), slog.String("driver", s.driver), slog.String("key", key))

	_, err := s.db.ExecContext(ctx, query, key, value)
	if err != nil {
		slog.Error("SQLKV.Set failed", slog.String("rqID", rqID), slog.String("driver", s.driver), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *SQLKV) Remove(ctx context.Context, key string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `DELETE FROM kv_storage WHERE key = $1`

	_, err := s.db.ExecContext(ctx, query, key)
	if err != nil {
		slog.Error("SQLKV.Remove failed", slog.String("rqID", rqID), slog.String("driver", s.driver), slog.String("err", err.Error()))
		return err
	}

	return nil
}
