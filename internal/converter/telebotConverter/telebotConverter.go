package telebotConverter

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
	"github.com/KotFed0t/insider_watchlist_bot/internal/model/tg/tgCallback"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"
)

const (
	EmptyCategoryText  = "No insider trades found for this category"
	EmptyWatchlistText = "Your watchlist is empty. Tap ☆ next to a trade to add it."

	// origin of a favorite toggle, decides which screen is redrawn
	OriginList = "list"
	OriginCard = "card"
)

// TradesPage is one rendered page of the trades screen.
type TradesPage struct {
	Filter     model.FilterState
	Trades     []model.TradeRecord
	PageSize   int
	CurPage    int
	TotalPages int
	Watchlist  model.Watchlist
}

func TradesListResponse(p TradesPage) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📈 <b>Insider trades: %s</b>\n", p.Filter.Tab.Label()))
	if q := strings.TrimSpace(p.Filter.Query); q != "" {
		sb.WriteString(fmt.Sprintf("🔎 Search: <i>%s</i>\n", html.EscapeString(q)))
	}
	if p.Filter.Sort != model.SortNone {
		sb.WriteString(fmt.Sprintf("Sorted: %s\n", p.Filter.Sort.Label()))
	}
	sb.WriteString("\n")

	rows := tabRows(markup, p.Filter.Tab)

	if len(p.Trades) == 0 {
		sb.WriteString(EmptyCategoryText)
	}

	for i, trade := range p.Trades {
		ordinal := p.CurPage*p.PageSize + i + 1
		star := "☆"
		if p.Watchlist.Contains(trade) {
			star = "⭐"
		}

		sb.WriteString(fmt.Sprintf("%d. %s <b>%s</b> %s\n", ordinal, typeBadge(trade.TradeType), html.EscapeString(trade.Ticker), html.EscapeString(trade.CompanyName)))
		sb.WriteString(fmt.Sprintf("   ▸ %s, %s\n", html.EscapeString(trade.InsiderName), html.EscapeString(trade.Title)))
		sb.WriteString(fmt.Sprintf("   ▸ %s × %s, owned %s\n\n", FormatMoney(trade.Price), strconv.FormatInt(trade.Quantity, 10), FormatPercent(trade.PercentOwnedIncrease)))

		ref := trade.Ref()
		rows = append(rows, markup.Row(
			markup.Data(fmt.Sprintf("%d. %s", ordinal, trade.Ticker), tgCallback.ShowTrade, ref),
			markup.Data(star, tgCallback.ToggleFavorite, ref, OriginList),
		))
	}

	searchBtn := markup.Data("🔎 Search", tgCallback.StartSearch)
	controls := []tele.Btn{markup.Data(p.Filter.Sort.Label(), tgCallback.ToggleSort), searchBtn}
	if strings.TrimSpace(p.Filter.Query) != "" {
		controls = append(controls, markup.Data("✖ Clear search", tgCallback.ClearSearch))
	}
	rows = append(rows, markup.Row(controls...))

	if p.TotalPages > 1 {
		rows = append(rows, paginationRow(markup, tgCallback.Page, p.CurPage, p.TotalPages))
	}

	markup.Inline(rows...)

	return sb.String(), markup
}

func tabRows(markup *tele.ReplyMarkup, active model.Category) []tele.Row {
	btns := make([]tele.Btn, 0, len(model.Categories))
	for _, category := range model.Categories {
		label := category.Label()
		if category == active {
			label = "• " + label
		}
		btns = append(btns, markup.Data(label, tgCallback.SelectTab, string(category)))
	}
	return markup.Split(3, btns)
}

func TradeCardResponse(trade model.TradeRecord, isFavorite bool) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("<b>%s</b> %s\n", html.EscapeString(trade.Ticker), html.EscapeString(trade.CompanyName)))
	sb.WriteString(fmt.Sprintf("%s %s\n\n", typeBadge(trade.TradeType), trade.TradeType))
	sb.WriteString(fmt.Sprintf("👤 %s\n", html.EscapeString(trade.InsiderName)))
	sb.WriteString(fmt.Sprintf("💼 %s\n", html.EscapeString(trade.Title)))
	sb.WriteString(fmt.Sprintf("💵 Price: %s\n", FormatMoney(trade.Price)))
	sb.WriteString(fmt.Sprintf("🔢 Quantity: %d\n", trade.Quantity))
	sb.WriteString(fmt.Sprintf("📦 Already owned: %d\n", trade.AlreadyOwned))
	sb.WriteString(fmt.Sprintf("📊 Position change: %s\n", FormatPercent(trade.PercentOwnedIncrease)))
	sb.WriteString(fmt.Sprintf("💰 Value: %s\n", FormatSignedMoney(trade.MoneyValueIncrease)))
	sb.WriteString(fmt.Sprintf("📅 Traded %s, filed %s\n", html.EscapeString(trade.TradeDate), html.EscapeString(trade.FilingDate)))

	favoriteLabel := "☆ Add to watchlist"
	if isFavorite {
		favoriteLabel = "⭐ Remove from watchlist"
	}

	markup.Inline(
		markup.Row(markup.Data(favoriteLabel, tgCallback.ToggleFavorite, trade.Ref(), OriginCard)),
		chartRow(markup, trade.Ticker, ""),
		markup.Row(markup.Data("⬅ Back to trades", tgCallback.BackToTrades)),
	)

	return sb.String(), markup
}

// WatchlistPage is one rendered page of the favorites screen.
type WatchlistPage struct {
	Trades     model.Watchlist
	Total      int
	PageSize   int
	CurPage    int
	TotalPages int
}

func WatchlistResponse(p WatchlistPage) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}

	if p.Total == 0 || len(p.Trades) == 0 {
		return EmptyWatchlistText, markup
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⭐ <b>Watchlist</b> (%d)\n\n", p.Total))

	page := strconv.Itoa(p.CurPage)
	rows := make([]tele.Row, 0, len(p.Trades)+1)
	for i, trade := range p.Trades {
		ordinal := p.CurPage*p.PageSize + i + 1
		sb.WriteString(fmt.Sprintf("%d. %s <b>%s</b> %s\n", ordinal, typeBadge(trade.TradeType), html.EscapeString(trade.Ticker), html.EscapeString(trade.InsiderName)))
		sb.WriteString(fmt.Sprintf("   ▸ %s, %s × %d, %s\n\n", html.EscapeString(trade.TradeDate), FormatMoney(trade.Price), trade.Quantity, FormatPercent(trade.PercentOwnedIncrease)))

		ref := trade.Ref()
		rows = append(rows, markup.Row(
			markup.Data(fmt.Sprintf("%d. %s", ordinal, trade.Ticker), tgCallback.ShowTrade, ref),
			markup.Data("🗑 Remove", tgCallback.RemoveFavorite, ref, page),
		))
	}

	if p.TotalPages > 1 {
		rows = append(rows, paginationRow(markup, tgCallback.WatchlistPage, p.CurPage, p.TotalPages))
	}

	markup.Inline(rows...)

	return sb.String(), markup
}

// paginationRow renders ◀ n/m ▶, unique receives the target page as payload.
func paginationRow(markup *tele.ReplyMarkup, unique string, curPage, totalPages int) tele.Row {
	btns := make([]tele.Btn, 0, 3)
	if curPage > 0 {
		btns = append(btns, markup.Data("◀", unique, strconv.Itoa(curPage-1)))
	}
	btns = append(btns, markup.Data(fmt.Sprintf("%d/%d", curPage+1, totalPages), unique, strconv.Itoa(curPage)))
	if curPage < totalPages-1 {
		btns = append(btns, markup.Data("▶", unique, strconv.Itoa(curPage+1)))
	}
	return markup.Row(btns...)
}

func ChartResponse(summary model.ChartSummary) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	arrow := "➖"
	switch summary.ChangePct.Sign() {
	case 1:
		arrow = "🟢"
	case -1:
		arrow = "🔴"
	}

	sb.WriteString(fmt.Sprintf("📉 <b>%s</b>, %s\n\n", html.EscapeString(summary.Ticker), RangeLabel(summary.Range)))
	sb.WriteString(fmt.Sprintf("%s: %s\n", html.EscapeString(summary.FirstDate), FormatMoney(summary.First)))
	sb.WriteString(fmt.Sprintf("%s: %s\n", html.EscapeString(summary.LastDate), FormatMoney(summary.Last)))
	sb.WriteString(fmt.Sprintf("%s Change: %s%%\n", arrow, signed(summary.ChangePct.StringFixed(2), summary.ChangePct.Sign())))
	sb.WriteString(fmt.Sprintf("Min %s, max %s over %d points\n", FormatMoney(summary.Min), FormatMoney(summary.Max), summary.Points))

	markup.Inline(
		chartRow(markup, summary.Ticker, summary.Range),
		markup.Row(markup.Data("⬅ Back to trades", tgCallback.BackToTrades)),
	)

	return sb.String(), markup
}

func chartRow(markup *tele.ReplyMarkup, ticker string, active model.ChartRange) tele.Row {
	btns := make([]tele.Btn, 0, len(model.ChartRanges))
	for _, r := range model.ChartRanges {
		label := string(r)
		if r == active {
			label = "• " + label
		}
		btns = append(btns, markup.Data(label, tgCallback.ShowChart, ticker, string(r)))
	}
	return markup.Row(btns...)
}

func AnalysisResponse(ticker, analysis string) string {
	return fmt.Sprintf("🤖 <b>%s</b>\n\n%s", html.EscapeString(ticker), html.EscapeString(analysis))
}

func RangeLabel(r model.ChartRange) string {
	switch r {
	case model.RangeOneDay:
		return "1 day"
	case model.RangeOneWeek:
		return "1 week"
	case model.RangeOneMonth:
		return "1 month"
	case model.RangeThreeMonth:
		return "3 months"
	case model.RangeYTD:
		return "year to date"
	case model.RangeOneYear:
		return "1 year"
	default:
		return string(r)
	}
}

func typeBadge(t model.TradeType) string {
	if t == model.Purchase {
		return "🟢"
	}
	return "🔴"
}

// FormatPercent renders a signed percentage, "New" for a position that did not exist before.
func FormatPercent(p model.Percent) string {
	if p.IsNaN() || math.IsInf(float64(p), 0) {
		return "New"
	}
	d := decimal.NewFromFloat(float64(p))
	return signed(d.StringFixed(1), d.Sign()) + "%"
}

func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func FormatSignedMoney(d decimal.Decimal) string {
	return signed("$"+d.Abs().StringFixed(2), d.Sign())
}

func signed(s string, sign int) string {
	switch {
	case sign > 0:
		return "+" + s
	case sign < 0 && !strings.HasPrefix(s, "-"):
		return "-" + s
	}
	return s
}
