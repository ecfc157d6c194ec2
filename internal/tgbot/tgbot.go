package tgbot

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/KotFed0t/sim_trading_dashboard/config"
	"github.com/KotFed0t/sim_trading_dashboard/internal/converter/telebotConverter"
	"github.com/KotFed0t/sim_trading_dashboard/internal/dashboard"
	"github.com/KotFed0t/sim_trading_dashboard/internal/model/tg/tgCallback"
	"github.com/KotFed0t/sim_trading_dashboard/internal/transport/telegram"
	customMW "github.com/KotFed0t/sim_trading_dashboard/internal/transport/telegram/middleware"
	"github.com/KotFed0t/sim_trading_dashboard/utils"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

// Messenger is the part of the bot API the publisher needs.
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type TGBot struct {
	bot       *tele.Bot
	messenger Messenger
	ctrl      *telegram.Controller
	session   *dashboard.Session
}

func New(cfg *config.Config, ctrl *telegram.Controller, session *dashboard.Session) *TGBot {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TGBot{bot: b, messenger: b, ctrl: ctrl, session: session}
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), customMW.Logger())

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle("/start", b.withPublish(b.ctrl.Start))
	b.bot.Handle("/help", b.ctrl.Help)
	b.bot.Handle("/stock", b.withPublish(b.ctrl.Stock))
	b.bot.Handle("/buy", b.withPublish(b.ctrl.Buy))
	b.bot.Handle("/sell", b.withPublish(b.ctrl.Sell))
	b.bot.Handle("/positions", b.withPublish(b.ctrl.Positions))
	b.bot.Handle("/orders", b.withPublish(b.ctrl.Orders))
	b.bot.Handle("/history", b.withPublish(b.ctrl.History))
	b.bot.Handle("/chart", b.ctrl.Chart)
	b.bot.Handle("/export", b.ctrl.Export)

	b.bot.Handle(tele.OnText, b.withPublish(b.ctrl.Text))

	b.bot.Handle(&tele.Btn{Unique: tgCallback.Tab}, b.withPublish(b.ctrl.Tab))
	b.bot.Handle(&tele.Btn{Unique: tgCallback.Prev}, b.withPublish(b.ctrl.PrevPage))
	b.bot.Handle(&tele.Btn{Unique: tgCallback.Next}, b.withPublish(b.ctrl.NextPage))
	b.bot.Handle(&tele.Btn{Unique: tgCallback.Search}, b.ctrl.Search)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.Cancel}, b.withPublish(b.ctrl.CancelOrder))
	b.bot.Handle(&tele.Btn{Unique: tgCallback.Stock}, b.withPublish(b.ctrl.SampleStock))
}

// withPublish refreshes the dashboard message right after the handler so
// the chat does not wait for the next publish tick.
func (b *TGBot) withPublish(h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		err := h(c)
		if pubErr := b.Publish(utils.CreateCtxWithRqID(c)); pubErr != nil && err == nil {
			err = pubErr
		}
		return err
	}
}

// Publish renders the dashboard and edits the bound message in place. A new
// message is sent when none exists yet; an unchanged text is skipped.
func (b *TGBot) Publish(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TGBot.Publish"

	chatID, messageID := b.session.Message()
	if chatID == 0 {
		return nil
	}

	text, markup := telebotConverter.DashboardResponse(b.session.Dashboard())
	if messageID != 0 && text == b.session.Published() {
		return nil
	}

	if messageID != 0 {
		msg := tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}
		_, err := b.messenger.Edit(msg, text, markup, tele.ModeHTML)
		if err == nil || isNotModified(err) {
			b.session.MarkPublished(messageID, text)
			return nil
		}
		slog.Warn("can't edit dashboard message, sending a new one", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	sent, err := b.messenger.Send(tele.ChatID(chatID), text, markup, tele.ModeHTML)
	if err != nil {
		slog.Error("can't send dashboard message", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	b.session.MarkPublished(sent.ID, text)
	return nil
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
