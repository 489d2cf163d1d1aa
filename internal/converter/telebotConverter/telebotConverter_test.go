package telebotConverter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
	"github.com/KotFed0t/insider_watchlist_bot/internal/model/tg/tgCallback"
	"github.com/KotFed0t/insider_watchlist_bot/internal/tradeFilter"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"
)

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   model.Percent
		want string
	}{
		{in: 12.5, want: "+12.5%"},
		{in: -3, want: "-3.0%"},
		{in: 0, want: "0.0%"},
		{in: model.Percent(math.NaN()), want: "New"},
	}

	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSignedMoney(t *testing.T) {
	if got := FormatSignedMoney(decimal.NewFromInt(-12500)); got != "-$12500.00" {
		t.Errorf("Unexpected %q", got)
	}
	if got := FormatSignedMoney(decimal.NewFromInt(12500)); got != "+$12500.00" {
		t.Errorf("Unexpected %q", got)
	}
}

func findButton(markup *tele.ReplyMarkup, unique string) (tele.InlineButton, bool) {
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			if btn.Unique == unique {
				return btn, true
			}
		}
	}
	return tele.InlineButton{}, false
}

func TestTradesListResponse_Empty(t *testing.T) {
	text, markup := TradesListResponse(TradesPage{Filter: model.DefaultFilterState()})

	if !strings.Contains(text, EmptyCategoryText) {
		t.Errorf("Expected empty state text, got %q", text)
	}
	if _, ok := findButton(markup, tgCallback.ClearSearch); ok {
		t.Error("Clear search button must be hidden without a query")
	}
	if btn, ok := findButton(markup, tgCallback.ToggleSort); !ok || btn.Text != "Sort" {
		t.Errorf("Expected sort button labeled Sort, got %+v", btn)
	}
}

func TestTradesListResponse_MarksFavorites(t *testing.T) {
	fav := model.TradeRecord{Ticker: "AAA", InsiderName: "Jane <Doe>", Price: decimal.NewFromInt(10), Quantity: 5}
	other := model.TradeRecord{Ticker: "BBB", InsiderName: "John", Price: decimal.NewFromInt(3), Quantity: 1}

	filter := model.FilterState{Tab: model.CategoryCEO, Sort: model.SortDescending, Query: "a"}
	text, markup := TradesListResponse(TradesPage{
		Filter:     filter,
		Trades:     []model.TradeRecord{fav, other},
		PageSize:   2,
		TotalPages: 1,
		Watchlist:  model.Watchlist{fav},
	})

	if !strings.Contains(text, "Jane &lt;Doe&gt;") {
		t.Errorf("Expected escaped insider name, got %q", text)
	}

	stars := map[string]string{}
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			if btn.Unique == tgCallback.ToggleFavorite {
				stars[btn.Data] = btn.Text
			}
		}
	}
	if stars[fav.Ref()+"|"+OriginList] != "⭐" || stars[other.Ref()+"|"+OriginList] != "☆" {
		t.Errorf("Unexpected favorite marks %v", stars)
	}

	if btn, ok := findButton(markup, tgCallback.ToggleSort); !ok || btn.Text != model.SortDescending.Label() {
		t.Errorf("Expected sort button labeled %q, got %+v", model.SortDescending.Label(), btn)
	}
	if _, ok := findButton(markup, tgCallback.ClearSearch); !ok {
		t.Error("Expected clear search button with an active query")
	}
	if _, ok := findButton(markup, tgCallback.Page); ok {
		t.Error("Single page must not show pagination")
	}
}

func TestTradeCardResponse(t *testing.T) {
	trade := model.TradeRecord{Ticker: "AAA", TradeType: model.Sale, PercentOwnedIncrease: -4}

	text, markup := TradeCardResponse(trade, true)
	if !strings.Contains(text, "Sale") || !strings.Contains(text, "-4.0%") {
		t.Errorf("Unexpected card %q", text)
	}

	btn, ok := findButton(markup, tgCallback.ToggleFavorite)
	if !ok || !strings.Contains(btn.Text, "Remove from watchlist") {
		t.Errorf("Expected remove button, got %+v", btn)
	}
}

func TestWatchlistResponse_Empty(t *testing.T) {
	text, _ := WatchlistResponse(WatchlistPage{})
	if text != EmptyWatchlistText {
		t.Errorf("Unexpected text %q", text)
	}
}

func TestWatchlistResponse_PagesLargeWatchlist(t *testing.T) {
	const pageSize = 5

	var wl model.Watchlist
	for i := 0; i < 60; i++ {
		wl = wl.Add(model.TradeRecord{
			Ticker:      fmt.Sprintf("T%02d", i),
			InsiderName: "Some Quite Long Insider Name Holdings LLC",
			TradeDate:   "2024-01-02",
			Quantity:    int64(i + 1),
			Price:       decimal.NewFromInt(10),
		})
	}

	for _, page := range []int{0, 5, 11, 99} {
		trades, curPage, totalPages := tradeFilter.Page(wl, page, pageSize)
		text, markup := WatchlistResponse(WatchlistPage{
			Trades:     trades,
			Total:      len(wl),
			PageSize:   pageSize,
			CurPage:    curPage,
			TotalPages: totalPages,
		})

		if totalPages != 12 {
			t.Fatalf("Expected 12 pages, got %d", totalPages)
		}
		if n := utf8.RuneCountInString(text); n > 4096 {
			t.Errorf("page %d: text has %d runes, over the telegram limit", page, n)
		}

		shown, removeBtns, buttons := 0, 0, 0
		for _, row := range markup.InlineKeyboard {
			for _, btn := range row {
				buttons++
				switch btn.Unique {
				case tgCallback.ShowTrade:
					shown++
				case tgCallback.RemoveFavorite:
					removeBtns++
					if !strings.HasSuffix(btn.Data, "|"+strconv.Itoa(curPage)) {
						t.Errorf("page %d: remove button must carry the page, got %q", page, btn.Data)
					}
				}
			}
		}
		if shown > pageSize || removeBtns > pageSize {
			t.Errorf("page %d: expected at most %d entries, got %d", page, pageSize, shown)
		}
		if buttons > 100 {
			t.Errorf("page %d: %d buttons, over the telegram limit", page, buttons)
		}

		if _, ok := findButton(markup, tgCallback.WatchlistPage); !ok {
			t.Errorf("page %d: expected pagination row", page)
		}
	}
}
