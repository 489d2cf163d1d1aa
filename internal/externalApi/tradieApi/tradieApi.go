package tradieApi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/KotFed0t/insider_watchlist_bot/config"
	"github.com/KotFed0t/insider_watchlist_bot/internal/converter/tradieConverter"
	"github.com/KotFed0t/insider_watchlist_bot/internal/externalApi"
	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
	"github.com/KotFed0t/insider_watchlist_bot/internal/model/tradieModel"
	"github.com/KotFed0t/insider_watchlist_bot/utils"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

var categoryPaths = map[model.Category]string{
	model.CategoryAll:        "/allData",
	model.CategoryCEO:        "/ceo",
	model.CategoryCFO:        "/cfo",
	model.CategoryPresident:  "/pres",
	model.CategoryDirector:   "/dir",
	model.CategoryTenPercent: "/ten-percent",
}

var chartPaths = map[model.ChartRange]string{
	model.RangeOneDay:     "/ticker-one-day/",
	model.RangeOneWeek:    "/ticker-one-week/",
	model.RangeOneMonth:   "/ticker-one-month/",
	model.RangeThreeMonth: "/ticker-three-month/",
	model.RangeYTD:        "/ticker-ytd/",
	model.RangeOneYear:    "/ticker-one-year/",
}

type TradieApi struct {
	client  *resty.Client
	limiter *rate.Limiter
}

func New(cfg *config.Config) *TradieApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.TradieApi.Url).
		SetHeader("Accept", "application/json")

	limit := rate.Inf
	if cfg.API.TradieApi.RateLimit > 0 {
		limit = rate.Limit(cfg.API.TradieApi.RateLimit)
	}

	return &TradieApi{
		client:  client,
		limiter: rate.NewLimiter(limit, max(cfg.API.TradieApi.RateBurst, 1)),
	}
}

func (a *TradieApi) get(ctx context.Context, path string) ([]byte, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := a.client.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, externalApi.ErrNotFound
	case resp.IsError():
		return nil, fmt.Errorf("%w: %d on %s", externalApi.ErrBadStatusCode, resp.StatusCode(), path)
	}

	return resp.Body(), nil
}

func decode(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}

// FetchCategory returns normalized trades of one category; rows failing normalization are skipped.
func (a *TradieApi) FetchCategory(ctx context.Context, category model.Category) ([]model.TradeRecord, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TradieApi.FetchCategory"

	path, ok := categoryPaths[category]
	if !ok {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	slog.Debug("start request", slog.String("rqID", rqID), slog.String("op", op), slog.String("category", string(category)))

	body, err := a.get(ctx, path)
	if err != nil {
		slog.Error("error while dialing TradieApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	var rawTrades []tradieModel.RawTrade
	err = decode(body, &rawTrades)
	if err != nil {
		slog.Error("can't unmarshall response into []tradieModel.RawTrade", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	trades := make([]model.TradeRecord, 0, len(rawTrades))
	rejected := 0
	for i, raw := range rawTrades {
		trade, err := tradieConverter.ConvertTrade(raw)
		if err != nil {
			rejected++
			slog.Warn(
				"skip invalid trade",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.Int("row", i),
				slog.String("ticker", raw.Ticker),
				slog.String("err", err.Error()),
			)
			continue
		}
		trades = append(trades, trade)
	}

	slog.Debug(
		"request complete",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.Int("trades", len(trades)),
		slog.Int("rejected", rejected),
	)

	return trades, nil
}

func (a *TradieApi) FetchChart(ctx context.Context, ticker string, chartRange model.ChartRange) ([]model.ChartPoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TradieApi.FetchChart"

	prefix, ok := chartPaths[chartRange]
	if !ok {
		return nil, fmt.Errorf("unknown chart range %q", chartRange)
	}

	slog.Debug("start request", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("range", string(chartRange)))

	body, err := a.get(ctx, prefix+url.PathEscape(strings.ToUpper(ticker)))
	if err != nil {
		slog.Error("error while dialing TradieApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	var rawPoints []tradieModel.RawChartPoint
	err = decode(body, &rawPoints)
	if err != nil {
		slog.Error("can't unmarshall response into []tradieModel.RawChartPoint", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	points := make([]model.ChartPoint, 0, len(rawPoints))
	for _, raw := range rawPoints {
		point, err := tradieConverter.ConvertChartPoint(raw)
		if err != nil {
			slog.Warn("skip invalid chart point", slog.String("rqID", rqID), slog.String("op", op), slog.String("date", raw.Date))
			continue
		}
		points = append(points, point)
	}

	slog.Debug("request complete", slog.String("rqID", rqID), slog.String("op", op), slog.Int("points", len(points)))

	return points, nil
}

// FetchAnalysis returns the AI generated summary for a ticker. The service
// answers either with a bare JSON string or with an object.
func (a *TradieApi) FetchAnalysis(ctx context.Context, ticker string) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TradieApi.FetchAnalysis"

	slog.Debug("start request", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	body, err := a.get(ctx, "/analysis/"+url.PathEscape(strings.ToUpper(ticker)))
	if err != nil {
		slog.Error("error while dialing TradieApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	var text string
	if err = json.Unmarshal(body, &text); err == nil {
		return strings.TrimSpace(text), nil
	}

	var rawAnalysis tradieModel.RawAnalysis
	if err = json.Unmarshal(body, &rawAnalysis); err != nil {
		slog.Error("can't unmarshall response into tradieModel.RawAnalysis", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	if rawAnalysis.Analysis != "" {
		return strings.TrimSpace(rawAnalysis.Analysis), nil
	}
	return strings.TrimSpace(rawAnalysis.Summary), nil
}
