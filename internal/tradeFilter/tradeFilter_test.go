package tradeFilter

import (
	"math"
	"testing"

	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
)

func trade(ticker, insider string, pct float64) model.TradeRecord {
	return model.TradeRecord{Ticker: ticker, InsiderName: insider, PercentOwnedIncrease: model.Percent(pct)}
}

func tickers(trades []model.TradeRecord) []string {
	res := make([]string, 0, len(trades))
	for _, t := range trades {
		res = append(res, t.Ticker)
	}
	return res
}

func assertTickers(t *testing.T, got []model.TradeRecord, want ...string) {
	t.Helper()
	gotTickers := tickers(got)
	if len(gotTickers) != len(want) {
		t.Fatalf("Expected %v, got %v", want, gotTickers)
	}
	for i := range want {
		if gotTickers[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, gotTickers)
		}
	}
}

func TestApply_SortCycleRestoresFetchOrder(t *testing.T) {
	categories := map[model.Category][]model.TradeRecord{
		model.CategoryAll: {trade("AAA", "Alice", 5), trade("BBB", "Bob", -2), trade("CCC", "Carol", 10)},
	}
	state := model.DefaultFilterState()

	assertTickers(t, Apply(categories, state), "AAA", "BBB", "CCC")

	state.Sort = state.Sort.Next()
	if state.Sort != model.SortAscending {
		t.Fatalf("Expected Ascending after None, got %v", state.Sort)
	}
	assertTickers(t, Apply(categories, state), "BBB", "AAA", "CCC")

	state.Sort = state.Sort.Next()
	assertTickers(t, Apply(categories, state), "CCC", "AAA", "BBB")

	state.Sort = state.Sort.Next()
	if state.Sort != model.SortNone {
		t.Fatalf("Expected None after Descending, got %v", state.Sort)
	}
	assertTickers(t, Apply(categories, state), "AAA", "BBB", "CCC")

	assertTickers(t, categories[model.CategoryAll], "AAA", "BBB", "CCC")
}

func TestSort_IsStable(t *testing.T) {
	trades := []model.TradeRecord{
		trade("A1", "x", 3),
		trade("B1", "x", 1),
		trade("A2", "x", 3),
		trade("B2", "x", 1),
		trade("A3", "x", 3),
	}

	assertTickers(t, Sort(trades, model.SortAscending), "B1", "B2", "A1", "A2", "A3")
	assertTickers(t, Sort(trades, model.SortDescending), "A1", "A2", "A3", "B1", "B2")
}

func TestSort_NaNGoesLast(t *testing.T) {
	trades := []model.TradeRecord{
		trade("NAN1", "x", math.NaN()),
		trade("LOW", "x", -4),
		trade("NAN2", "x", math.NaN()),
		trade("HIGH", "x", 40),
	}

	assertTickers(t, Sort(trades, model.SortAscending), "LOW", "HIGH", "NAN1", "NAN2")
	assertTickers(t, Sort(trades, model.SortDescending), "HIGH", "LOW", "NAN1", "NAN2")
}

func TestSelectCategory_DoesNotUnion(t *testing.T) {
	categories := map[model.Category][]model.TradeRecord{
		model.CategoryAll: {trade("AAA", "a", 1)},
		model.CategoryCEO: {trade("ZZZ", "z", 1)},
	}

	assertTickers(t, SelectCategory(categories, model.CategoryAll), "AAA")
	assertTickers(t, SelectCategory(categories, model.CategoryCEO), "ZZZ")
	if got := SelectCategory(categories, model.CategoryCFO); len(got) != 0 {
		t.Errorf("Expected empty CFO tab, got %v", tickers(got))
	}
}

func TestSearch(t *testing.T) {
	trades := []model.TradeRecord{
		trade("AAPL", "Cook Timothy", 1),
		trade("MSFT", "Nadella Satya", 2),
		trade("TAP", "Hattersley Gavin", 3),
	}

	tests := []struct {
		query string
		want  []string
	}{
		{query: "ap", want: []string{"AAPL", "TAP"}},
		{query: "  satya ", want: []string{"MSFT"}},
		{query: "COOK", want: []string{"AAPL"}},
		{query: "nothing", want: []string{}},
		{query: "", want: []string{"AAPL", "MSFT", "TAP"}},
		{query: "   ", want: []string{"AAPL", "MSFT", "TAP"}},
	}

	for _, tt := range tests {
		got := Search(trades, tt.query)
		if len(got) > len(trades) {
			t.Errorf("Search(%q) must narrow the list", tt.query)
		}
		assertTickers(t, got, tt.want...)
	}
}

func TestApply_SearchScansSortedList(t *testing.T) {
	categories := map[model.Category][]model.TradeRecord{
		model.CategoryDirector: {trade("AB1", "x", 1), trade("ZZZ", "x", 9), trade("AB2", "x", 5)},
	}
	state := model.FilterState{Tab: model.CategoryDirector, Sort: model.SortDescending, Query: "ab"}

	assertTickers(t, Apply(categories, state), "AB2", "AB1")
}

func TestPage(t *testing.T) {
	trades := []model.TradeRecord{trade("A", "", 0), trade("B", "", 0), trade("C", "", 0)}

	got, cur, total := Page(trades, 1, 2)
	if cur != 1 || total != 2 {
		t.Errorf("Expected page 1 of 2, got %d of %d", cur, total)
	}
	assertTickers(t, got, "C")

	got, cur, _ = Page(trades, 7, 2)
	if cur != 1 {
		t.Errorf("Expected clamped page 1, got %d", cur)
	}
	assertTickers(t, got, "C")

	if got, _, total := Page(nil, 0, 2); got != nil || total != 0 {
		t.Errorf("Expected no pages for empty list")
	}
}
