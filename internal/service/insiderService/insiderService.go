package insiderService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/insider_watchlist_bot/data/repository"
	"github.com/KotFed0t/insider_watchlist_bot/internal/externalApi"
	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
	"github.com/KotFed0t/insider_watchlist_bot/internal/model/dbModel"
	"github.com/KotFed0t/insider_watchlist_bot/internal/service"
	"github.com/KotFed0t/insider_watchlist_bot/utils"
	"github.com/shopspring/decimal"
)

type TradieApi interface {
	FetchCategory(ctx context.Context, category model.Category) ([]model.TradeRecord, error)
	FetchChart(ctx context.Context, ticker string, chartRange model.ChartRange) ([]model.ChartPoint, error)
	FetchAnalysis(ctx context.Context, ticker string) (string, error)
}

type Cache interface {
	GetTrades(ctx context.Context, category model.Category) ([]model.TradeRecord, error)
	SetTrades(ctx context.Context, category model.Category, trades []model.TradeRecord) error
	SetAllTrades(ctx context.Context, categories map[model.Category][]model.TradeRecord) error
}

type ChartCache interface {
	GetChart(ticker string, chartRange model.ChartRange) ([]model.ChartPoint, bool)
	SetChart(ticker string, chartRange model.ChartRange, points []model.ChartPoint)
}

type Repository interface {
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
	InsertUser(ctx context.Context, chatID int64) (userID int64, err error)
	GetUser(ctx context.Context, chatID int64) (user dbModel.User, err error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, wl model.Watchlist) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
	DeleteOldFiles(ctx context.Context) error
}

type InsiderService struct {
	repo            Repository
	cache           Cache
	chartCache      ChartCache
	tradieApi       TradieApi
	reportGenerator ReportGenerator
	cloudStorage    CloudStorage
	fileLimit       int
}

// New wires the service. cloudStorage may be nil, then exports above fileLimit fail with service.ErrExportTooLarge.
func New(
	repo Repository,
	cache Cache,
	chartCache ChartCache,
	tradieApi TradieApi,
	reportGenerator ReportGenerator,
	cloudStorage CloudStorage,
	fileLimit int,
) *InsiderService {
	return &InsiderService{
		repo:            repo,
		cache:           cache,
		chartCache:      chartCache,
		tradieApi:       tradieApi,
		reportGenerator: reportGenerator,
		cloudStorage:    cloudStorage,
		fileLimit:       fileLimit,
	}
}

// RegUser returns the user id of the chat, creating the user on first contact.
func (s *InsiderService) RegUser(ctx context.Context, chatID int64) (userID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InsiderService.RegUser"

	slog.Debug("RegUser start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID))
	defer func() {
		slog.Debug("RegUser finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.repo.GetUser(ctx, chatID)
		if err == nil {
			userID = user.UserID
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		userID, err = s.repo.InsertUser(ctx, chatID)
		return err
	})
	if errors.Is(err, repository.ErrAlreadyExists) {
		// registered concurrently by another update of the same chat
		user, getErr := s.repo.GetUser(ctx, chatID)
		if getErr != nil {
			return 0, getErr
		}
		return user.UserID, nil
	}
	if err != nil {
		slog.Error("got error while registering user", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return 0, err
	}

	return userID, nil
}

// GetCategory serves the category from cache, falling back to the API and refilling the cache.
func (s *InsiderService) GetCategory(ctx context.Context, category model.Category) ([]model.TradeRecord, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InsiderService.GetCategory"

	slog.Debug("GetCategory start", slog.String("rqID", rqID), slog.String("op", op), slog.String("category", string(category)))

	trades, err := s.cache.GetTrades(ctx, category)
	if err == nil {
		return trades, nil
	}

	slog.Warn("can't get trades from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))

	trades, err = s.tradieApi.FetchCategory(ctx, category)
	if err != nil {
		slog.Error("can't get trades from tradieApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%w: %w", service.ErrDataUnavailable, err)
	}

	if err = s.cache.SetTrades(ctx, category, trades); err != nil {
		slog.Warn("can't put trades to cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return trades, nil
}

// FillTradesCache refetches every category. Categories that fail keep their previous cache entry.
func (s *InsiderService) FillTradesCache(ctx context.Context) error {
	ctx = utils.WithRequestID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InsiderService.FillTradesCache"

	categories := make(map[model.Category][]model.TradeRecord, len(model.Categories))
	var errs []error
	for _, category := range model.Categories {
		trades, err := s.tradieApi.FetchCategory(ctx, category)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", category, err))
			continue
		}
		categories[category] = trades
	}

	if len(categories) > 0 {
		if err := s.cache.SetAllTrades(ctx, categories); err != nil {
			errs = append(errs, err)
		}
	}

	slog.Info("trades cache filled", slog.String("rqID", rqID), slog.String("op", op), slog.Int("categories", len(categories)))

	return errors.Join(errs...)
}

func (s *InsiderService) GetChart(ctx context.Context, ticker string, chartRange model.ChartRange) (model.ChartSummary, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InsiderService.GetChart"
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	if !chartRange.Valid() {
		return model.ChartSummary{}, service.ErrInvalidRange
	}

	slog.Debug("GetChart start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("range", string(chartRange)))

	points, ok := s.chartCache.GetChart(ticker, chartRange)
	if !ok {
		var err error
		points, err = s.tradieApi.FetchChart(ctx, ticker, chartRange)
		if err != nil {
			if errors.Is(err, externalApi.ErrNotFound) {
				return model.ChartSummary{}, service.ErrNotFound
			}
			slog.Error("can't get chart from tradieApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return model.ChartSummary{}, fmt.Errorf("%w: %w", service.ErrDataUnavailable, err)
		}
		s.chartCache.SetChart(ticker, chartRange, points)
	}

	if len(points) == 0 {
		return model.ChartSummary{}, service.ErrDataUnavailable
	}

	return SummarizeChart(ticker, chartRange, points), nil
}

// SummarizeChart expects at least one point.
func SummarizeChart(ticker string, chartRange model.ChartRange, points []model.ChartPoint) model.ChartSummary {
	first, last := points[0], points[len(points)-1]
	summary := model.ChartSummary{
		Ticker:    ticker,
		Range:     chartRange,
		Points:    len(points),
		FirstDate: first.Date,
		LastDate:  last.Date,
		First:     first.Close,
		Last:      last.Close,
		Min:       first.Close,
		Max:       first.Close,
	}

	for _, p := range points[1:] {
		summary.Min = decimal.Min(summary.Min, p.Close)
		summary.Max = decimal.Max(summary.Max, p.Close)
	}

	if !first.Close.IsZero() {
		summary.ChangePct = last.Close.Sub(first.Close).Div(first.Close).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return summary
}

func (s *InsiderService) GetAnalysis(ctx context.Context, ticker string) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InsiderService.GetAnalysis"

	analysis, err := s.tradieApi.FetchAnalysis(ctx, strings.ToUpper(strings.TrimSpace(ticker)))
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			return "", service.ErrNotFound
		}
		slog.Error("can't get analysis from tradieApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", fmt.Errorf("%w: %w", service.ErrDataUnavailable, err)
	}

	if analysis == "" {
		return "", service.ErrDataUnavailable
	}

	return analysis, nil
}

// ExportWatchlist renders wl to a spreadsheet. Files above the telegram limit are uploaded to cloud storage.
func (s *InsiderService) ExportWatchlist(ctx context.Context, wl model.Watchlist) (model.ExportFile, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InsiderService.ExportWatchlist"

	slog.Debug("ExportWatchlist start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("trades", len(wl)))

	fileBytes, ext, err := s.reportGenerator.Generate(ctx, wl)
	if err != nil {
		if !errors.Is(err, service.ErrNothingToExport) {
			slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		return model.ExportFile{}, err
	}

	export := model.ExportFile{FileName: fmt.Sprintf("watchlist_%s%s", time.Now().Format("2006-01-02_150405"), ext)}

	if s.fileLimit <= 0 || len(fileBytes) <= s.fileLimit {
		export.Bytes = fileBytes
		return export, nil
	}

	if s.cloudStorage == nil {
		return model.ExportFile{}, service.ErrExportTooLarge
	}

	export.Link, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), export.FileName)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.ExportFile{}, err
	}

	return export, nil
}

func (s *InsiderService) DeleteOldExports(ctx context.Context) error {
	if s.cloudStorage == nil {
		return nil
	}
	return s.cloudStorage.DeleteOldFiles(utils.WithRequestID(ctx))
}
