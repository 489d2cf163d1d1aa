// Package tradeFilter derives the list a trades screen shows from the fetched
// category arrays and the chat's filter state.
package tradeFilter

import (
	"cmp"
	"slices"
	"strings"

	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
	"golang.org/x/text/cases"
)

// Apply runs category selection, then sorting, then search. The input slices are never modified.
func Apply(categories map[model.Category][]model.TradeRecord, state model.FilterState) []model.TradeRecord {
	res := SelectCategory(categories, state.Tab)
	res = Sort(res, state.Sort)
	return Search(res, state.Query)
}

// SelectCategory returns the array fetched for the tab. Categories are
// independent fetches, "All" is not the union of the others.
func SelectCategory(categories map[model.Category][]model.TradeRecord, tab model.Category) []model.TradeRecord {
	return categories[tab]
}

// Sort orders by PercentOwnedIncrease keeping the fetch order of equal values.
// NaN values go last for both orders.
func Sort(trades []model.TradeRecord, order model.SortOrder) []model.TradeRecord {
	if order == model.SortNone || len(trades) == 0 {
		return trades
	}

	res := slices.Clone(trades)
	slices.SortStableFunc(res, func(a, b model.TradeRecord) int {
		return comparePercent(a.PercentOwnedIncrease, b.PercentOwnedIncrease, order)
	})
	return res
}

func comparePercent(a, b model.Percent, order model.SortOrder) int {
	aNaN, bNaN := a.IsNaN(), b.IsNaN()
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	}

	if order == model.SortDescending {
		return cmp.Compare(b, a)
	}
	return cmp.Compare(a, b)
}

// Search keeps trades whose ticker or insider name contains the query, ignoring case.
// A blank query means search is inactive and the list is returned as is.
func Search(trades []model.TradeRecord, query string) []model.TradeRecord {
	query = strings.TrimSpace(query)
	if query == "" {
		return trades
	}

	folder := cases.Fold()
	needle := folder.String(query)

	res := make([]model.TradeRecord, 0, len(trades))
	for _, t := range trades {
		if strings.Contains(folder.String(t.Ticker), needle) || strings.Contains(folder.String(t.InsiderName), needle) {
			res = append(res, t)
		}
	}
	return res
}

// Page cuts one page out of trades. Pages are zero based; an out of range page is clamped.
func Page(trades []model.TradeRecord, page, size int) (res []model.TradeRecord, curPage, totalPages int) {
	if size <= 0 {
		size = len(trades)
	}
	if len(trades) == 0 {
		return nil, 0, 0
	}

	totalPages = (len(trades) + size - 1) / size
	curPage = min(max(page, 0), totalPages-1)

	start := curPage * size
	end := min(start+size, len(trades))
	return trades[start:end], curPage, totalPages
}
