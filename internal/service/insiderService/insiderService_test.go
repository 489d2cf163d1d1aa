package insiderService

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/KotFed0t/insider_watchlist_bot/data/cache"
	"github.com/KotFed0t/insider_watchlist_bot/data/repository"
	"github.com/KotFed0t/insider_watchlist_bot/internal/externalApi"
	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
	"github.com/KotFed0t/insider_watchlist_bot/internal/model/dbModel"
	"github.com/KotFed0t/insider_watchlist_bot/internal/service"
	"github.com/shopspring/decimal"
)

type fakeApi struct {
	trades     map[model.Category][]model.TradeRecord
	failing    map[model.Category]bool
	chart      []model.ChartPoint
	chartErr   error
	fetchCalls int
	chartCalls int
	analysis   string
}

func (f *fakeApi) FetchCategory(_ context.Context, category model.Category) ([]model.TradeRecord, error) {
	f.fetchCalls++
	if f.failing[category] {
		return nil, errors.New("connection refused")
	}
	return f.trades[category], nil
}

func (f *fakeApi) FetchChart(_ context.Context, _ string, _ model.ChartRange) ([]model.ChartPoint, error) {
	f.chartCalls++
	return f.chart, f.chartErr
}

func (f *fakeApi) FetchAnalysis(_ context.Context, _ string) (string, error) {
	return f.analysis, nil
}

type fakeCache struct {
	trades map[model.Category][]model.TradeRecord
}

func (f *fakeCache) GetTrades(_ context.Context, category model.Category) ([]model.TradeRecord, error) {
	trades, ok := f.trades[category]
	if !ok {
		return nil, cache.ErrNotFound
	}
	return trades, nil
}

func (f *fakeCache) SetTrades(_ context.Context, category model.Category, trades []model.TradeRecord) error {
	f.trades[category] = trades
	return nil
}

func (f *fakeCache) SetAllTrades(_ context.Context, categories map[model.Category][]model.TradeRecord) error {
	for k, v := range categories {
		f.trades[k] = v
	}
	return nil
}

type fakeRepo struct {
	users  map[int64]int64
	nextID int64
}

func (f *fakeRepo) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	return tFunc(ctx)
}

func (f *fakeRepo) InsertUser(_ context.Context, chatID int64) (int64, error) {
	if _, ok := f.users[chatID]; ok {
		return 0, repository.ErrAlreadyExists
	}
	f.nextID++
	f.users[chatID] = f.nextID
	return f.nextID, nil
}

func (f *fakeRepo) GetUser(_ context.Context, chatID int64) (dbModel.User, error) {
	id, ok := f.users[chatID]
	if !ok {
		return dbModel.User{}, repository.ErrNotFound
	}
	return dbModel.User{UserID: id, ChatID: chatID}, nil
}

type fakeGenerator struct {
	size int
}

func (f *fakeGenerator) Generate(_ context.Context, wl model.Watchlist) ([]byte, string, error) {
	if len(wl) == 0 {
		return nil, "", service.ErrNothingToExport
	}
	return make([]byte, f.size), ".xlsx", nil
}

type fakeCloud struct {
	uploaded string
}

func (f *fakeCloud) UploadFile(_ context.Context, _ io.Reader, filename string) (string, error) {
	f.uploaded = filename
	return "https://drive.example/" + filename, nil
}

func (f *fakeCloud) DeleteOldFiles(context.Context) error { return nil }

type noChartCache struct{}

func (noChartCache) GetChart(string, model.ChartRange) ([]model.ChartPoint, bool) { return nil, false }
func (noChartCache) SetChart(string, model.ChartRange, []model.ChartPoint)        {}

func newTestService(api *fakeApi, c *fakeCache, gen *fakeGenerator, cloud CloudStorage, limit int) *InsiderService {
	if gen == nil {
		gen = &fakeGenerator{size: 10}
	}
	return New(&fakeRepo{users: map[int64]int64{}}, c, noChartCache{}, api, gen, cloud, limit)
}

func TestGetCategory_CacheMissFillsCache(t *testing.T) {
	api := &fakeApi{trades: map[model.Category][]model.TradeRecord{model.CategoryCEO: {{Ticker: "AAA"}}}}
	c := &fakeCache{trades: map[model.Category][]model.TradeRecord{}}
	srv := newTestService(api, c, nil, nil, 0)

	for i := 0; i < 2; i++ {
		trades, err := srv.GetCategory(context.Background(), model.CategoryCEO)
		if err != nil {
			t.Fatalf("GetCategory failed: %v", err)
		}
		if len(trades) != 1 || trades[0].Ticker != "AAA" {
			t.Fatalf("Unexpected trades %v", trades)
		}
	}

	if api.fetchCalls != 1 {
		t.Errorf("Expected a single api call, got %d", api.fetchCalls)
	}
}

func TestGetCategory_ApiFailureIsDataUnavailable(t *testing.T) {
	api := &fakeApi{failing: map[model.Category]bool{model.CategoryAll: true}}
	srv := newTestService(api, &fakeCache{trades: map[model.Category][]model.TradeRecord{}}, nil, nil, 0)

	_, err := srv.GetCategory(context.Background(), model.CategoryAll)
	if !errors.Is(err, service.ErrDataUnavailable) {
		t.Errorf("Expected ErrDataUnavailable, got %v", err)
	}
}

func TestFillTradesCache_PartialFailure(t *testing.T) {
	api := &fakeApi{
		trades:  map[model.Category][]model.TradeRecord{model.CategoryAll: {{Ticker: "AAA"}}},
		failing: map[model.Category]bool{model.CategoryCFO: true},
	}
	c := &fakeCache{trades: map[model.Category][]model.TradeRecord{}}
	srv := newTestService(api, c, nil, nil, 0)

	err := srv.FillTradesCache(context.Background())
	if err == nil {
		t.Error("Expected error for the failed category")
	}

	if len(c.trades) != len(model.Categories)-1 {
		t.Errorf("Expected %d cached categories, got %d", len(model.Categories)-1, len(c.trades))
	}
	if _, ok := c.trades[model.CategoryCFO]; ok {
		t.Error("Failed category must not be cached")
	}
}

func TestGetChart(t *testing.T) {
	api := &fakeApi{chart: []model.ChartPoint{
		{Date: "d1", Close: decimal.NewFromInt(100)},
		{Date: "d2", Close: decimal.NewFromInt(90)},
		{Date: "d3", Close: decimal.NewFromInt(125)},
	}}
	srv := newTestService(api, &fakeCache{}, nil, nil, 0)

	summary, err := srv.GetChart(context.Background(), " aaa", model.RangeOneMonth)
	if err != nil {
		t.Fatalf("GetChart failed: %v", err)
	}

	if summary.Ticker != "AAA" || summary.Points != 3 {
		t.Errorf("Unexpected summary %+v", summary)
	}
	if !summary.Min.Equal(decimal.NewFromInt(90)) || !summary.Max.Equal(decimal.NewFromInt(125)) {
		t.Errorf("Expected min 90 max 125, got %s %s", summary.Min, summary.Max)
	}
	if !summary.ChangePct.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected change 25%%, got %s", summary.ChangePct)
	}
}

func TestGetChart_Errors(t *testing.T) {
	srv := newTestService(&fakeApi{}, &fakeCache{}, nil, nil, 0)
	if _, err := srv.GetChart(context.Background(), "AAA", model.ChartRange("5y")); !errors.Is(err, service.ErrInvalidRange) {
		t.Errorf("Expected ErrInvalidRange, got %v", err)
	}

	if _, err := srv.GetChart(context.Background(), "AAA", model.RangeYTD); !errors.Is(err, service.ErrDataUnavailable) {
		t.Errorf("Expected ErrDataUnavailable for an empty series, got %v", err)
	}

	srv = newTestService(&fakeApi{chartErr: externalApi.ErrNotFound}, &fakeCache{}, nil, nil, 0)
	if _, err := srv.GetChart(context.Background(), "ZZZ", model.RangeYTD); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRegUser_IsIdempotent(t *testing.T) {
	srv := newTestService(&fakeApi{}, &fakeCache{}, nil, nil, 0)

	first, err := srv.RegUser(context.Background(), 555)
	if err != nil {
		t.Fatalf("RegUser failed: %v", err)
	}
	second, err := srv.RegUser(context.Background(), 555)
	if err != nil {
		t.Fatalf("RegUser failed: %v", err)
	}
	if first != second {
		t.Errorf("Expected the same user id, got %d and %d", first, second)
	}
}

func TestExportWatchlist(t *testing.T) {
	wl := model.Watchlist{{Ticker: "AAA"}}

	small := newTestService(&fakeApi{}, &fakeCache{}, &fakeGenerator{size: 10}, nil, 100)
	export, err := small.ExportWatchlist(context.Background(), wl)
	if err != nil {
		t.Fatalf("ExportWatchlist failed: %v", err)
	}
	if len(export.Bytes) != 10 || export.Link != "" {
		t.Errorf("Expected document export, got %+v", export)
	}

	cloud := &fakeCloud{}
	large := newTestService(&fakeApi{}, &fakeCache{}, &fakeGenerator{size: 1000}, cloud, 100)
	export, err = large.ExportWatchlist(context.Background(), wl)
	if err != nil {
		t.Fatalf("ExportWatchlist failed: %v", err)
	}
	if export.Link == "" || cloud.uploaded != export.FileName {
		t.Errorf("Expected upload to cloud storage, got %+v", export)
	}

	noCloud := newTestService(&fakeApi{}, &fakeCache{}, &fakeGenerator{size: 1000}, nil, 100)
	if _, err = noCloud.ExportWatchlist(context.Background(), wl); !errors.Is(err, service.ErrExportTooLarge) {
		t.Errorf("Expected ErrExportTooLarge, got %v", err)
	}

	if _, err = small.ExportWatchlist(context.Background(), nil); !errors.Is(err, service.ErrNothingToExport) {
		t.Errorf("Expected ErrNothingToExport, got %v", err)
	}
}
