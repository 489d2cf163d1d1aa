package telegram

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/KotFed0t/insider_watchlist_bot/data/session"
	"github.com/KotFed0t/insider_watchlist_bot/internal/converter/telebotConverter"
	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
	"github.com/KotFed0t/insider_watchlist_bot/internal/service"
	"github.com/KotFed0t/insider_watchlist_bot/internal/tradeFilter"
	"github.com/KotFed0t/insider_watchlist_bot/utils"
	tele "gopkg.in/telebot.v4"
)

const (
	internalErrMsg    = "something went wrong..."
	tradeGoneMsg      = "This trade is no longer available"
	favoriteFailedMsg = "could not save favorite"
	sessionCtxKey     = "session"
)

type InsiderService interface {
	RegUser(ctx context.Context, chatID int64) (userID int64, err error)
	GetCategory(ctx context.Context, category model.Category) ([]model.TradeRecord, error)
	GetChart(ctx context.Context, ticker string, chartRange model.ChartRange) (model.ChartSummary, error)
	GetAnalysis(ctx context.Context, ticker string) (string, error)
	ExportWatchlist(ctx context.Context, wl model.Watchlist) (model.ExportFile, error)
}

type WatchlistService interface {
	Refresh(ctx context.Context, userID int64) (model.Watchlist, error)
	IsFavorite(record model.TradeRecord, wl model.Watchlist) bool
	ToggleStoredFavorite(ctx context.Context, userID int64, record model.TradeRecord) (model.Watchlist, bool, error)
	RemoveStoredFavorite(ctx context.Context, userID int64, record model.TradeRecord) (model.Watchlist, error)
	Clear(ctx context.Context, userID int64) error
}

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, session model.Session) error
}

type Controller struct {
	insiderService   InsiderService
	watchlistService WatchlistService
	session          Session
	tradesPerPage    int
}

func NewController(insiderService InsiderService, watchlistService WatchlistService, session Session, tradesPerPage int) *Controller {
	return &Controller{
		insiderService:   insiderService,
		watchlistService: watchlistService,
		session:          session,
		tradesPerPage:    tradesPerPage,
	}
}

func (ctrl *Controller) Start(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	userID, err := ctrl.insiderService.RegUser(ctx, c.Chat().ID)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	chatSession := model.Session{UserID: userID, Filter: model.DefaultFilterState()}
	if err = ctrl.session.SetSession(ctx, sessionKey(c), chatSession); err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}

	if err = c.Send("Hello! I track insider trades.\n/trades to browse, /watchlist for your favorites, /chart TICKER [range], /analysis TICKER, /export."); err != nil {
		return err
	}

	return ctrl.sendTrades(ctx, c, chatSession, false)
}

// Trades shows the trades screen with the filter kept in the session.
func (ctrl *Controller) Trades(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.commandSession(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	return ctrl.sendTrades(ctx, c, chatSession, false)
}

func (ctrl *Controller) SelectTab(c tele.Context) error {
	category := model.Category(c.Callback().Data)
	if !category.Valid() {
		return c.Respond()
	}

	return ctrl.updateFilter(c, func(f *model.FilterState) {
		f.Tab = category
		f.Page = 0
	})
}

func (ctrl *Controller) ToggleSort(c tele.Context) error {
	return ctrl.updateFilter(c, func(f *model.FilterState) {
		f.Sort = f.Sort.Next()
		f.Page = 0
	})
}

func (ctrl *Controller) ClearSearch(c tele.Context) error {
	return ctrl.updateFilter(c, func(f *model.FilterState) {
		f.Query = ""
		f.Page = 0
	})
}

func (ctrl *Controller) Page(c tele.Context) error {
	page, err := strconv.Atoi(c.Callback().Data)
	if err != nil {
		return c.Respond()
	}

	return ctrl.updateFilter(c, func(f *model.FilterState) {
		f.Page = page
	})
}

func (ctrl *Controller) BackToTrades(c tele.Context) error {
	return ctrl.updateFilter(c, func(*model.FilterState) {})
}

func (ctrl *Controller) updateFilter(c tele.Context, fn func(f *model.FilterState)) error {
	ctx := utils.CreateCtxWithRqID(c)
	_ = c.Respond()

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	fn(&chatSession.Filter)
	chatSession.State = model.DefaultState
	ctrl.saveSession(ctx, c, chatSession)

	return ctrl.sendTrades(ctx, c, chatSession, true)
}

func (ctrl *Controller) StartSearch(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	_ = c.Respond()

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	chatSession.State = model.ExpectingSearchQuery
	if err = ctrl.session.SetSession(ctx, sessionKey(c), chatSession); err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Send("Enter a ticker or insider name:")
}

func (ctrl *Controller) ProcessSearch(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	chatSession.State = model.DefaultState
	chatSession.Filter.Query = strings.TrimSpace(c.Text())
	chatSession.Filter.Page = 0
	ctrl.saveSession(ctx, c, chatSession)

	return ctrl.sendTrades(ctx, c, chatSession, false)
}

func (ctrl *Controller) ShowTrade(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		_ = c.Respond()
		return c.Send(internalErrMsg)
	}

	wl, err := ctrl.watchlist(ctx, c, &chatSession)
	if err != nil {
		_ = c.Respond()
		return c.Send(internalErrMsg)
	}

	trade, ok := ctrl.resolveTrade(ctx, c.Callback().Data, chatSession, wl)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: tradeGoneMsg})
	}

	_ = c.Respond()
	text, markup := telebotConverter.TradeCardResponse(trade, ctrl.watchlistService.IsFavorite(trade, wl))
	return ctrl.edit(c, text, markup)
}

func (ctrl *Controller) ToggleFavorite(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	args := c.Args()
	if len(args) == 0 {
		return c.Respond()
	}
	ref := args[0]
	origin := telebotConverter.OriginList
	if len(args) > 1 {
		origin = args[1]
	}

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: internalErrMsg})
	}

	wl, err := ctrl.watchlist(ctx, c, &chatSession)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: internalErrMsg})
	}

	trade, ok := ctrl.resolveTrade(ctx, ref, chatSession, wl)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: tradeGoneMsg})
	}

	wl, added, err := ctrl.watchlistService.ToggleStoredFavorite(ctx, chatSession.UserID, trade)
	if err != nil {
		slog.Error("got error from watchlistService.ToggleStoredFavorite", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Respond(&tele.CallbackResponse{Text: favoriteFailedMsg, ShowAlert: true})
	}

	notice := "Removed from watchlist"
	if added {
		notice = "Added to watchlist"
	}
	_ = c.Respond(&tele.CallbackResponse{Text: notice})

	if origin == telebotConverter.OriginCard {
		text, markup := telebotConverter.TradeCardResponse(trade, added)
		return ctrl.edit(c, text, markup)
	}

	return ctrl.renderTrades(ctx, c, chatSession, wl, true)
}

func (ctrl *Controller) RemoveFavorite(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: internalErrMsg})
	}

	wl, err := ctrl.watchlist(ctx, c, &chatSession)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: internalErrMsg})
	}

	args := c.Args()
	page := 0
	if len(args) > 1 {
		page, _ = strconv.Atoi(args[1])
	}

	trade, ok := wl.FindByRef(args[0])
	if !ok {
		// already removed, e.g. from another message
		_ = c.Respond()
		text, markup := ctrl.watchlistResponse(wl, page)
		return ctrl.edit(c, text, markup)
	}

	wl, err = ctrl.watchlistService.RemoveStoredFavorite(ctx, chatSession.UserID, trade)
	if err != nil {
		slog.Error("got error from watchlistService.RemoveStoredFavorite", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Respond(&tele.CallbackResponse{Text: favoriteFailedMsg, ShowAlert: true})
	}

	_ = c.Respond(&tele.CallbackResponse{Text: "Removed from watchlist"})
	text, markup := ctrl.watchlistResponse(wl, page)
	return ctrl.edit(c, text, markup)
}

// Watchlist reloads the stored favorites every time it is shown.
func (ctrl *Controller) Watchlist(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.commandSession(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	wl, err := ctrl.watchlist(ctx, c, &chatSession)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Send(ctrl.watchlistResponse(wl, 0))
}

func (ctrl *Controller) WatchlistPage(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	page, err := strconv.Atoi(c.Callback().Data)
	if err != nil {
		return c.Respond()
	}
	_ = c.Respond()

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	wl, err := ctrl.watchlist(ctx, c, &chatSession)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	text, markup := ctrl.watchlistResponse(wl, page)
	return ctrl.edit(c, text, markup)
}

func (ctrl *Controller) watchlistResponse(wl model.Watchlist, page int) (string, *tele.ReplyMarkup) {
	trades, curPage, totalPages := tradeFilter.Page(wl, page, ctrl.tradesPerPage)
	return telebotConverter.WatchlistResponse(telebotConverter.WatchlistPage{
		Trades:     trades,
		Total:      len(wl),
		PageSize:   ctrl.tradesPerPage,
		CurPage:    curPage,
		TotalPages: totalPages,
	})
}

func (ctrl *Controller) ClearWatchlist(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession, err := ctrl.commandSession(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	userID, err := ctrl.userID(ctx, c, &chatSession)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	if err = ctrl.watchlistService.Clear(ctx, userID); err != nil {
		slog.Error("got error from watchlistService.Clear", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send("Watchlist cleared")
}

// Chart handles "/chart TICKER [range]", the range defaults to one month.
func (ctrl *Controller) Chart(c tele.Context) error {
	if _, err := ctrl.commandSession(utils.CreateCtxWithRqID(c), c); err != nil {
		return c.Send(internalErrMsg)
	}

	args := c.Args()
	if len(args) == 0 {
		return c.Send("Usage: /chart TICKER [1d|1w|1m|3m|ytd|1y]")
	}

	chartRange := model.RangeOneMonth
	if len(args) > 1 {
		chartRange = model.ChartRange(strings.ToLower(args[1]))
	}

	return ctrl.sendChart(c, args[0], chartRange, false)
}

func (ctrl *Controller) ShowChart(c tele.Context) error {
	args := c.Args()
	if len(args) < 2 {
		return c.Respond()
	}
	_ = c.Respond()

	return ctrl.sendChart(c, args[0], model.ChartRange(args[1]), true)
}

func (ctrl *Controller) sendChart(c tele.Context, ticker string, chartRange model.ChartRange, edit bool) error {
	ctx := utils.CreateCtxWithRqID(c)

	summary, err := ctrl.insiderService.GetChart(ctx, ticker, chartRange)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRange):
			return c.Send("Unknown range, use one of 1d, 1w, 1m, 3m, ytd, 1y")
		case errors.Is(err, service.ErrNotFound):
			return c.Send("Ticker not found")
		case errors.Is(err, service.ErrDataUnavailable):
			return c.Send("Chart data is unavailable right now")
		default:
			return c.Send(internalErrMsg)
		}
	}

	if edit {
		text, markup := telebotConverter.ChartResponse(summary)
		return ctrl.edit(c, text, markup)
	}
	return c.Send(telebotConverter.ChartResponse(summary))
}

func (ctrl *Controller) Analysis(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	if _, err := ctrl.commandSession(ctx, c); err != nil {
		return c.Send(internalErrMsg)
	}

	args := c.Args()
	if len(args) == 0 {
		return c.Send("Usage: /analysis TICKER")
	}
	ticker := strings.ToUpper(args[0])

	analysis, err := ctrl.insiderService.GetAnalysis(ctx, ticker)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.Send("Ticker not found")
		case errors.Is(err, service.ErrDataUnavailable):
			return c.Send("Analysis is unavailable right now")
		default:
			return c.Send(internalErrMsg)
		}
	}

	return c.Send(telebotConverter.AnalysisResponse(ticker, analysis))
}

func (ctrl *Controller) Export(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession, err := ctrl.commandSession(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	wl, err := ctrl.watchlist(ctx, c, &chatSession)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	export, err := ctrl.insiderService.ExportWatchlist(ctx, wl)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNothingToExport):
			return c.Send(telebotConverter.EmptyWatchlistText)
		case errors.Is(err, service.ErrExportTooLarge):
			return c.Send("Watchlist is too large to send")
		default:
			slog.Error("got error from insiderService.ExportWatchlist", slog.String("rqID", rqID), slog.String("err", err.Error()))
			return c.Send(internalErrMsg)
		}
	}

	if export.Link != "" {
		return c.Send("Your export is ready: " + export.Link)
	}

	return c.Send(&tele.Document{File: tele.FromReader(bytes.NewReader(export.Bytes)), FileName: export.FileName})
}

// Unexpected answers free text that arrives outside of a dialog.
func (ctrl *Controller) Unexpected(c tele.Context) error {
	return c.Send("Use /trades to browse insider trades or /watchlist to see your favorites")
}

func (ctrl *Controller) sendTrades(ctx context.Context, c tele.Context, chatSession model.Session, edit bool) error {
	wl, err := ctrl.watchlist(ctx, c, &chatSession)
	if err != nil {
		return c.Send(internalErrMsg)
	}
	return ctrl.renderTrades(ctx, c, chatSession, wl, edit)
}

func (ctrl *Controller) renderTrades(ctx context.Context, c tele.Context, chatSession model.Session, wl model.Watchlist, edit bool) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	filter := chatSession.Filter

	trades, err := ctrl.insiderService.GetCategory(ctx, filter.Tab)
	if err != nil && !errors.Is(err, service.ErrDataUnavailable) {
		slog.Error("got error from insiderService.GetCategory", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	filtered := tradeFilter.Apply(map[model.Category][]model.TradeRecord{filter.Tab: trades}, filter)
	page, curPage, totalPages := tradeFilter.Page(filtered, filter.Page, ctrl.tradesPerPage)

	text, markup := telebotConverter.TradesListResponse(telebotConverter.TradesPage{
		Filter:     filter,
		Trades:     page,
		PageSize:   ctrl.tradesPerPage,
		CurPage:    curPage,
		TotalPages: totalPages,
		Watchlist:  wl,
	})

	if edit {
		return ctrl.edit(c, text, markup)
	}
	return c.Send(text, markup)
}

// resolveTrade looks the ref up in the watchlist first, then in the active category.
func (ctrl *Controller) resolveTrade(ctx context.Context, ref string, chatSession model.Session, wl model.Watchlist) (model.TradeRecord, bool) {
	if trade, ok := wl.FindByRef(ref); ok {
		return trade, true
	}

	trades, err := ctrl.insiderService.GetCategory(ctx, chatSession.Filter.Tab)
	if err != nil {
		return model.TradeRecord{}, false
	}

	return model.Watchlist(trades).FindByRef(ref)
}

func (ctrl *Controller) watchlist(ctx context.Context, c tele.Context, chatSession *model.Session) (model.Watchlist, error) {
	userID, err := ctrl.userID(ctx, c, chatSession)
	if err != nil {
		return nil, err
	}

	wl, err := ctrl.watchlistService.Refresh(ctx, userID)
	if err != nil {
		slog.Error("got error from watchlistService.Refresh", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return nil, err
	}
	return wl, nil
}

// userID registers the chat on first use and remembers the id in the session.
func (ctrl *Controller) userID(ctx context.Context, c tele.Context, chatSession *model.Session) (int64, error) {
	if chatSession.UserID != 0 {
		return chatSession.UserID, nil
	}

	userID, err := ctrl.insiderService.RegUser(ctx, c.Chat().ID)
	if err != nil {
		return 0, err
	}

	chatSession.UserID = userID
	ctrl.saveSession(ctx, c, *chatSession)

	return userID, nil
}

// commandSession loads the session for a command; a command ends any pending dialog such as search input.
func (ctrl *Controller) commandSession(ctx context.Context, c tele.Context) (model.Session, error) {
	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return model.Session{}, err
	}

	if chatSession.State != model.DefaultState {
		chatSession.State = model.DefaultState
		ctrl.saveSession(ctx, c, chatSession)
	}

	return chatSession, nil
}

func (ctrl *Controller) getSessionFromTeleCtxOrStorage(ctx context.Context, c tele.Context) (model.Session, error) {
	chatSession, ok := c.Get(sessionCtxKey).(model.Session)
	if ok {
		return chatSession, nil
	}

	rqID := utils.GetRequestIDFromCtx(ctx)
	chatSession, err := ctrl.session.GetSession(ctx, sessionKey(c))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return chatSession, nil
		}
		slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{}, err
	}
	return chatSession, nil
}

func (ctrl *Controller) saveSession(ctx context.Context, c tele.Context, chatSession model.Session) {
	c.Set(sessionCtxKey, chatSession)
	if err := ctrl.session.SetSession(ctx, sessionKey(c), chatSession); err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
	}
}

func (ctrl *Controller) edit(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	err := c.Edit(text, markup)
	if errors.Is(err, tele.ErrSameMessageContent) {
		return nil
	}
	return err
}

func sessionKey(c tele.Context) string {
	return strconv.FormatInt(c.Chat().ID, 10)
}
