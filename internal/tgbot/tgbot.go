package tgbot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/KotFed0t/insider_watchlist_bot/config"
	"github.com/KotFed0t/insider_watchlist_bot/data/session"
	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
	"github.com/KotFed0t/insider_watchlist_bot/internal/model/tg/tgCallback"
	"github.com/KotFed0t/insider_watchlist_bot/internal/transport/telegram"
	customMW "github.com/KotFed0t/insider_watchlist_bot/internal/transport/telegram/middleware"
	"github.com/KotFed0t/insider_watchlist_bot/utils"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, session model.Session) error
}

type TGBot struct {
	bot     *tele.Bot
	ctrl    *telegram.Controller
	session Session
}

func New(cfg *config.Config, ctrl *telegram.Controller, session Session) *TGBot {
	settings := tele.Settings{
		Token:     cfg.Telegram.Token,
		Poller:    &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
		ParseMode: tele.ModeHTML,
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TGBot{bot: b, ctrl: ctrl, session: session}
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), customMW.Logger())

	b.setupRoutes()

	if err := b.bot.SetCommands(commands); err != nil {
		slog.Warn("can't set bot commands", slog.String("err", err.Error()))
	}

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

var commands = []tele.Command{
	{Text: "trades", Description: "Browse insider trades"},
	{Text: "watchlist", Description: "Show favorite trades"},
	{Text: "chart", Description: "Price chart: /chart TICKER [range]"},
	{Text: "analysis", Description: "AI analysis: /analysis TICKER"},
	{Text: "export", Description: "Export watchlist to xlsx"},
	{Text: "clear_watchlist", Description: "Remove all favorites"},
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle(tele.OnText, func(c tele.Context) error {
		// pick the controller method by the dialog step stored in the session
		ctx := utils.CreateCtxWithRqID(c)
		rqID := utils.GetRequestIDFromCtx(ctx)
		chatSession, err := b.session.GetSession(ctx, strconv.FormatInt(c.Chat().ID, 10))
		if err != nil && !errors.Is(err, session.ErrNotFound) {
			slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
			return c.Send("something went wrong...")
		}

		c.Set("session", chatSession)

		switch chatSession.State {
		case model.ExpectingSearchQuery:
			return b.ctrl.ProcessSearch(c)
		default:
			return b.ctrl.Unexpected(c)
		}
	})

	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/trades", b.ctrl.Trades)
	b.bot.Handle("/watchlist", b.ctrl.Watchlist)
	b.bot.Handle("/chart", b.ctrl.Chart)
	b.bot.Handle("/analysis", b.ctrl.Analysis)
	b.bot.Handle("/export", b.ctrl.Export)
	b.bot.Handle("/clear_watchlist", b.ctrl.ClearWatchlist)

	b.bot.Handle("\f"+tgCallback.SelectTab, b.ctrl.SelectTab)
	b.bot.Handle("\f"+tgCallback.ToggleSort, b.ctrl.ToggleSort)
	b.bot.Handle("\f"+tgCallback.StartSearch, b.ctrl.StartSearch)
	b.bot.Handle("\f"+tgCallback.ClearSearch, b.ctrl.ClearSearch)
	b.bot.Handle("\f"+tgCallback.Page, b.ctrl.Page)
	b.bot.Handle("\f"+tgCallback.ShowTrade, b.ctrl.ShowTrade)
	b.bot.Handle("\f"+tgCallback.ToggleFavorite, b.ctrl.ToggleFavorite)
	b.bot.Handle("\f"+tgCallback.RemoveFavorite, b.ctrl.RemoveFavorite)
	b.bot.Handle("\f"+tgCallback.WatchlistPage, b.ctrl.WatchlistPage)
	b.bot.Handle("\f"+tgCallback.ShowChart, b.ctrl.ShowChart)
	b.bot.Handle("\f"+tgCallback.BackToTrades, b.ctrl.BackToTrades)
}
