package cache

import (
	"testing"
	"time"

	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
	"github.com/shopspring/decimal"
)

func TestChartCache_SetGet(t *testing.T) {
	c := NewChartCache(time.Minute)

	if _, ok := c.GetChart("AAA", model.RangeOneWeek); ok {
		t.Fatal("Expected empty cache")
	}

	points := []model.ChartPoint{{Date: "2025-01-02", Close: decimal.NewFromInt(10)}}
	c.SetChart("AAA", model.RangeOneWeek, points)

	got, ok := c.GetChart("AAA", model.RangeOneWeek)
	if !ok || len(got) != 1 {
		t.Fatalf("Expected 1 cached point, got %v (ok=%v)", got, ok)
	}

	if _, ok := c.GetChart("AAA", model.RangeOneMonth); ok {
		t.Error("Ranges must be cached separately")
	}
}
