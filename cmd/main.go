package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/sim_trading_dashboard/config"
	"github.com/KotFed0t/sim_trading_dashboard/internal/chart/equityChart"
	"github.com/KotFed0t/sim_trading_dashboard/internal/dashboard"
	"github.com/KotFed0t/sim_trading_dashboard/internal/externalApi/tradingApi"
	"github.com/KotFed0t/sim_trading_dashboard/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/sim_trading_dashboard/internal/scheduler"
	"github.com/KotFed0t/sim_trading_dashboard/internal/service/dashboardService"
	"github.com/KotFed0t/sim_trading_dashboard/internal/tgbot"
	"github.com/KotFed0t/sim_trading_dashboard/internal/transport/telegram"
	"github.com/KotFed0t/sim_trading_dashboard/utils"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	session := dashboard.NewSession(dashboard.Options{
		PositionsPerPage: cfg.Pagination.PositionsPerPage,
		OrdersPerPage:    cfg.Pagination.OrdersPerPage,
		HistoryPerPage:   cfg.Pagination.HistoryPerPage,
		DefaultStock:     cfg.Trading.DefaultStock,
		SampleStocks:     cfg.Trading.SampleStocks,
	})

	tradingApiClient := tradingApi.New(cfg)

	reportGenerator := xslsxGenerator.New()

	dashboardSrv := dashboardService.New(tradingApiClient, session, reportGenerator, equityChart.New(), cfg.Trading.LotSize)

	// initial stock load pre-fills the trade price, like a search would
	if err := dashboardSrv.SearchStock(utils.WithRqID(context.Background()), cfg.Trading.DefaultStock); err != nil {
		slog.Warn("can't load default stock", slog.String("stock", cfg.Trading.DefaultStock), slog.String("err", err.Error()))
	}

	tgController := telegram.NewController(dashboardSrv, session)

	tgBot := tgbot.New(cfg, tgController, session)

	sched := scheduler.New()
	sched.Register(
		scheduler.Job{Name: "update clock", Fn: dashboardSrv.UpdateClock, Interval: cfg.Jobs.ClockInterval},
		scheduler.Job{Name: "update trading phase", Fn: dashboardSrv.UpdateTradingPhase, Interval: cfg.Jobs.TradingPhaseInterval},
		scheduler.Job{Name: "update quote", Fn: dashboardSrv.UpdateQuote, Interval: cfg.Jobs.QuoteInterval},
		scheduler.Job{Name: "update portfolio", Fn: dashboardSrv.UpdatePortfolio, Interval: cfg.Jobs.PortfolioInterval},
		scheduler.Job{Name: "update orders", Fn: dashboardSrv.UpdateOrders, Interval: cfg.Jobs.OrdersInterval},
		scheduler.Job{Name: "update history", Fn: dashboardSrv.UpdateHistory, Interval: cfg.Jobs.HistoryInterval},
		scheduler.Job{Name: "publish dashboard", Fn: tgBot.Publish, Interval: cfg.Jobs.PublishInterval},
	)
	sched.Start()
	defer sched.Stop()

	tgBot.Start()
	defer tgBot.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
