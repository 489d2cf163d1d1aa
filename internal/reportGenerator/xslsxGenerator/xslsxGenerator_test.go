package xslsxGenerator

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
	"github.com/KotFed0t/insider_watchlist_bot/internal/service"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestGenerate_EmptyWatchlist(t *testing.T) {
	_, _, err := New().Generate(context.Background(), nil)
	if !errors.Is(err, service.ErrNothingToExport) {
		t.Errorf("Expected ErrNothingToExport, got %v", err)
	}
}

func TestGenerate_WritesRows(t *testing.T) {
	wl := model.Watchlist{
		{Ticker: "AAA", InsiderName: "Doe John", TradeType: model.Purchase, Price: decimal.NewFromInt(10), Quantity: 5, PercentOwnedIncrease: 12},
		{Ticker: "BBB", InsiderName: "Roe Jane", TradeType: model.Sale, Price: decimal.NewFromInt(3), Quantity: 7, PercentOwnedIncrease: model.Percent(math.NaN())},
	}

	b, ext, err := New().Generate(context.Background(), wl)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if ext != ".xlsx" {
		t.Errorf("Expected .xlsx extension, got %q", ext)
	}

	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("Failed to open generated file: %v", err)
	}
	defer f.Close()

	tests := map[string]string{
		"A1": "Company",
		"E2": "type",
		"A3": "AAA",
		"C4": "Roe Jane",
		"I4": "n/a",
		"G3": "5",
	}
	for cell, want := range tests {
		got, err := f.GetCellValue(sheetName, cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) failed: %v", cell, err)
		}
		if got != want {
			t.Errorf("Cell %s: expected %q, got %q", cell, want, got)
		}
	}
}
