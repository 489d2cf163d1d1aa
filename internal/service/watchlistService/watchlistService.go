package watchlistService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/KotFed0t/insider_watchlist_bot/data/kvstore"
	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
	"github.com/KotFed0t/insider_watchlist_bot/internal/service"
	"github.com/KotFed0t/insider_watchlist_bot/utils"
)

type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// WatchlistService owns the favorited trades of every user. Storage is the
// source of truth, a returned Watchlist is only a snapshot of it.
type WatchlistService struct {
	storage Storage
	locks   sync.Map // userID -> *sync.Mutex
}

func New(storage Storage) *WatchlistService {
	return &WatchlistService{storage: storage}
}

func storageKey(userID int64) string {
	return fmt.Sprintf("watchlist:%d", userID)
}

func (s *WatchlistService) userLock(userID int64) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Load reads the user's watchlist. A missing or corrupt blob yields an empty
// watchlist; only a failing storage read is reported.
func (s *WatchlistService) Load(ctx context.Context, userID int64) (model.Watchlist, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "WatchlistService.Load"

	slog.Debug("Load start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))

	value, err := s.storage.Get(ctx, storageKey(userID))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return model.Watchlist{}, nil
		}
		slog.Error("got error from storage.Get", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Watchlist{}, fmt.Errorf("%w: %w", service.ErrPersistenceReadFailed, err)
	}

	wl, err := decodeWatchlist(value)
	if err != nil {
		slog.Warn(
			"stored watchlist is corrupt, treating as empty",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.Int64("userID", userID),
			slog.String("err", err.Error()),
		)
		return model.Watchlist{}, nil
	}

	slog.Debug("Load finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("favorites", len(wl)))

	return wl, nil
}

// Refresh is called by the transport layer each time a screen showing favorites is (re)opened.
func (s *WatchlistService) Refresh(ctx context.Context, userID int64) (model.Watchlist, error) {
	return s.Load(ctx, userID)
}

func (s *WatchlistService) IsFavorite(record model.TradeRecord, wl model.Watchlist) bool {
	return wl.Contains(record)
}

// ToggleFavorite removes the record if it is in wl, otherwise appends it. The
// result is persisted before returning. On a failed write wl is returned unchanged.
func (s *WatchlistService) ToggleFavorite(ctx context.Context, userID int64, record model.TradeRecord, wl model.Watchlist) (model.Watchlist, bool, error) {
	next, added := wl.Toggle(record)

	if err := s.save(ctx, userID, next); err != nil {
		return wl, false, err
	}

	return next, added, nil
}

// RemoveFavorite is idempotent, removing an absent record does not touch storage.
func (s *WatchlistService) RemoveFavorite(ctx context.Context, userID int64, record model.TradeRecord, wl model.Watchlist) (model.Watchlist, error) {
	next, removed := wl.Remove(record)
	if !removed {
		return wl, nil
	}

	if err := s.save(ctx, userID, next); err != nil {
		return wl, err
	}

	return next, nil
}

// ToggleStoredFavorite serializes concurrent toggles of one user: it reloads
// the stored watchlist under the user's lock and toggles against it.
func (s *WatchlistService) ToggleStoredFavorite(ctx context.Context, userID int64, record model.TradeRecord) (model.Watchlist, bool, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	wl, err := s.Load(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	return s.ToggleFavorite(ctx, userID, record, wl)
}

func (s *WatchlistService) RemoveStoredFavorite(ctx context.Context, userID int64, record model.TradeRecord) (model.Watchlist, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	wl, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.RemoveFavorite(ctx, userID, record, wl)
}

func (s *WatchlistService) save(ctx context.Context, userID int64, wl model.Watchlist) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "WatchlistService.save"

	value, err := encodeWatchlist(wl)
	if err != nil {
		slog.Error("can't marshall watchlist", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("%w: %w", service.ErrPersistenceWriteFailed, err)
	}

	err = s.storage.Set(ctx, storageKey(userID), value)
	if err != nil {
		slog.Error("got error from storage.Set", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("%w: %w", service.ErrPersistenceWriteFailed, err)
	}

	slog.Debug("watchlist saved", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.Int("favorites", len(wl)))

	return nil
}

// Clear drops the user's whole watchlist.
func (s *WatchlistService) Clear(ctx context.Context, userID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "WatchlistService.Clear"

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	err := s.storage.Remove(ctx, storageKey(userID))
	if err != nil {
		slog.Error("got error from storage.Remove", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("%w: %w", service.ErrPersistenceWriteFailed, err)
	}

	return nil
}
