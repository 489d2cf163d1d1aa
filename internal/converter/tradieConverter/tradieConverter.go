package tradieConverter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
	"github.com/KotFed0t/insider_watchlist_bot/internal/model/tradieModel"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyTicker      = errors.New("empty ticker")
	ErrInvalidNumber    = errors.New("invalid number")
	ErrNegativePrice    = errors.New("negative price")
	ErrUnknownTradeType = errors.New("unknown trade type")
)

// ConvertTrade normalizes a raw API row. Rows without a ticker, with a
// non-numeric price or quantity, a negative price or an unknown trade type are
// rejected. An unparsable ownership change ("New") becomes NaN.
func ConvertTrade(raw tradieModel.RawTrade) (model.TradeRecord, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw.Ticker))
	if ticker == "" {
		return model.TradeRecord{}, ErrEmptyTicker
	}

	tradeType, ok := model.ParseTradeType(raw.TradeType)
	if !ok {
		return model.TradeRecord{}, fmt.Errorf("%w: %q", ErrUnknownTradeType, raw.TradeType)
	}

	price, err := ParseDecimal(raw.Price)
	if err != nil {
		return model.TradeRecord{}, fmt.Errorf("price: %w", err)
	}
	if price.IsNegative() {
		return model.TradeRecord{}, ErrNegativePrice
	}

	quantity, err := parseInt(raw.Quantity)
	if err != nil {
		return model.TradeRecord{}, fmt.Errorf("quantity: %w", err)
	}
	if quantity < 0 {
		quantity = -quantity
	}

	owned, err := parseInt(raw.AlreadyOwned)
	if err != nil {
		owned = 0
	}

	value, err := ParseDecimal(raw.MoneyValueIncrease)
	if err != nil {
		value = decimal.Zero
	}

	return model.TradeRecord{
		Ticker:               ticker,
		CompanyName:          strings.TrimSpace(raw.CompanyName),
		InsiderName:          strings.TrimSpace(raw.InsiderName),
		Title:                strings.TrimSpace(raw.Title),
		TradeType:            tradeType,
		TradeDate:            strings.TrimSpace(raw.TradeDate),
		FilingDate:           strings.TrimSpace(raw.FilingDate),
		Price:                price,
		Quantity:             quantity,
		AlreadyOwned:         owned,
		PercentOwnedIncrease: parsePercent(raw.PercentOwnedIncrease),
		MoneyValueIncrease:   value,
	}, nil
}

func ConvertChartPoint(raw tradieModel.RawChartPoint) (model.ChartPoint, error) {
	closePrice, err := ParseDecimal(raw.Close)
	if err != nil {
		return model.ChartPoint{}, fmt.Errorf("close: %w", err)
	}
	return model.ChartPoint{Date: strings.TrimSpace(raw.Date), Close: closePrice}, nil
}

// ParseDecimal accepts json numbers and strings decorated with "$", ",", "+", "%", ">" or "<".
func ParseDecimal(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case json.Number:
		return decimal.NewFromString(val.String())
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero, ErrInvalidNumber
		}
		return decimal.NewFromFloat(val), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case string:
		s := cleanNumber(val)
		if s == "" {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, val)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, val)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidNumber, v)
	}
}

func parseInt(v any) (int64, error) {
	d, err := ParseDecimal(v)
	if err != nil {
		return 0, err
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("%w: fractional %s", ErrInvalidNumber, d.String())
	}
	return d.IntPart(), nil
}

func parsePercent(v any) model.Percent {
	d, err := ParseDecimal(v)
	if err != nil {
		return model.Percent(math.NaN())
	}
	f, _ := d.Float64()
	return model.Percent(f)
}

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch r {
		case '$', ',', '+', '%', '>', '<', ' ':
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
