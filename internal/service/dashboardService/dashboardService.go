package dashboardService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/sim_trading_dashboard/internal/dashboard"
	"github.com/KotFed0t/sim_trading_dashboard/internal/externalApi"
	"github.com/KotFed0t/sim_trading_dashboard/internal/model"
	"github.com/KotFed0t/sim_trading_dashboard/internal/model/tradingModel"
	"github.com/KotFed0t/sim_trading_dashboard/internal/service"
	"github.com/KotFed0t/sim_trading_dashboard/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type TradingApi interface {
	GetTradingPhase(ctx context.Context) (model.TradingPhase, error)
	GetQuote(ctx context.Context, code string) (tradingModel.Quote, error)
	GetPortfolio(ctx context.Context) (tradingModel.Portfolio, error)
	GetOrders(ctx context.Context) ([]tradingModel.Order, error)
	GetHistory(ctx context.Context) ([]tradingModel.Trade, error)
	Buy(ctx context.Context, rq tradingModel.OrderRequest) (tradingModel.ActionResult, error)
	Sell(ctx context.Context, rq tradingModel.OrderRequest) (tradingModel.ActionResult, error)
	CancelOrder(ctx context.Context, orderID string) (tradingModel.ActionResult, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, snapshot dashboard.Snapshot) (fileBytes []byte, fileExtension string, err error)
}

type ChartRenderer interface {
	Render(ctx context.Context, samples []tradingModel.EquitySample) ([]byte, error)
}

type side struct {
	name      string
	pending   string
	failed    string
	submitter func(ctx context.Context, rq tradingModel.OrderRequest) (tradingModel.ActionResult, error)
}

type DashboardService struct {
	api             TradingApi
	session         *dashboard.Session
	reportGenerator ReportGenerator
	chart           ChartRenderer
	lotSize         int64
	now             func() time.Time
}

func New(api TradingApi, session *dashboard.Session, reportGenerator ReportGenerator, chart ChartRenderer, lotSize int) *DashboardService {
	if lotSize <= 0 {
		lotSize = 100
	}
	return &DashboardService{
		api:             api,
		session:         session,
		reportGenerator: reportGenerator,
		chart:           chart,
		lotSize:         int64(lotSize),
		now:             time.Now,
	}
}

func (s *DashboardService) Session() *dashboard.Session {
	return s.session
}

func (s *DashboardService) UpdateClock(ctx context.Context) error {
	s.session.SetClock(s.now())
	return nil
}

func (s *DashboardService) UpdateTradingPhase(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.UpdateTradingPhase"

	ticket := s.session.Begin(dashboard.EndpointPhase)
	phase, err := s.api.GetTradingPhase(ctx)
	if err != nil {
		slog.Error("got error from api.GetTradingPhase", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if !s.session.ApplyPhase(ticket, phase) {
		logStale(rqID, op, dashboard.EndpointPhase)
	}
	return nil
}

// UpdateQuote refreshes the current stock. Empty quotes leave the display
// untouched.
func (s *DashboardService) UpdateQuote(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.UpdateQuote"

	code := s.session.CurrentStock()
	if code == "" {
		return nil
	}

	ticket := s.session.Begin(dashboard.EndpointQuote)
	quote, err := s.api.GetQuote(ctx, code)
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			slog.Warn("empty quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", code))
			return nil
		}
		slog.Error("got error from api.GetQuote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if !s.session.ApplyQuote(ticket, code, quote) {
		logStale(rqID, op, dashboard.EndpointQuote)
	}
	return nil
}

func (s *DashboardService) UpdatePortfolio(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.UpdatePortfolio"

	ticket := s.session.Begin(dashboard.EndpointPortfolio)
	portfolio, err := s.api.GetPortfolio(ctx)
	if err != nil {
		slog.Error("got error from api.GetPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if !s.session.ApplyPortfolio(ticket, portfolio) {
		logStale(rqID, op, dashboard.EndpointPortfolio)
	}
	return nil
}

func (s *DashboardService) UpdateOrders(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.UpdateOrders"

	ticket := s.session.Begin(dashboard.EndpointOrders)
	orders, err := s.api.GetOrders(ctx)
	if err != nil {
		slog.Error("got error from api.GetOrders", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if !s.session.ApplyOrders(ticket, orders) {
		logStale(rqID, op, dashboard.EndpointOrders)
	}
	return nil
}

func (s *DashboardService) UpdateHistory(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.UpdateHistory"

	ticket := s.session.Begin(dashboard.EndpointHistory)
	trades, err := s.api.GetHistory(ctx)
	if err != nil {
		slog.Error("got error from api.GetHistory", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if !s.session.ApplyHistory(ticket, trades) {
		logStale(rqID, op, dashboard.EndpointHistory)
	}
	return nil
}

func logStale(rqID, op string, endpoint dashboard.Endpoint) {
	slog.Debug("discarded stale response", slog.String("rqID", rqID), slog.String("op", op), slog.String("endpoint", endpoint.String()))
}

func (s *DashboardService) setStatus(kind model.StatusKind, text string) {
	s.session.SetStatus(model.StatusMessage{Kind: kind, Text: text})
}

// SearchStock switches the dashboard to code and pre-fills the trade price
// with its current quote.
func (s *DashboardService) SearchStock(ctx context.Context, code string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.SearchStock"

	slog.Debug("SearchStock start", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", code))
	defer func() {
		slog.Debug("SearchStock finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", code))
	}()

	code = strings.TrimSpace(code)
	if code == "" {
		s.setStatus(model.StatusError, "错误: 股票代码不能为空")
		return fmt.Errorf("%s: empty stock code: %w", op, service.ErrValidation)
	}

	s.setStatus(model.StatusInfo, fmt.Sprintf("正在获取 %s 股票数据...", code))

	ticket := s.session.Begin(dashboard.EndpointStockSwitch)
	quote, err := s.api.GetQuote(ctx, code)
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			slog.Warn("stock not found", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", code))
			s.setStatus(model.StatusError, fmt.Sprintf("获取股票 %s 数据失败", code))
			return service.ErrNotFound
		}
		slog.Error("got error from api.GetQuote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		s.setStatus(model.StatusError, fmt.Sprintf("获取数据时出错: %s", err.Error()))
		return err
	}

	if !s.session.ApplyStockSwitch(ticket, code, quote) {
		// a newer search was issued after this one and owns the status line
		logStale(rqID, op, dashboard.EndpointStockSwitch)
		return nil
	}
	s.setStatus(model.StatusSuccess, fmt.Sprintf("成功获取 %s 数据", quote.Name))
	return nil
}

func (s *DashboardService) Buy(ctx context.Context, price, lots string) error {
	return s.placeOrder(ctx, side{
		name:      "buy",
		pending:   "正在执行买入操作...",
		failed:    "买入操作失败",
		submitter: s.api.Buy,
	}, price, lots)
}

func (s *DashboardService) Sell(ctx context.Context, price, lots string) error {
	return s.placeOrder(ctx, side{
		name:      "sell",
		pending:   "正在执行卖出操作...",
		failed:    "卖出操作失败",
		submitter: s.api.Sell,
	}, price, lots)
}

// placeOrder validates the price and the lot count, then submits
// lots * lotSize shares for the current stock.
func (s *DashboardService) placeOrder(ctx context.Context, sd side, priceInput, lotsInput string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.placeOrder"

	slog.Debug("placeOrder start", slog.String("rqID", rqID), slog.String("op", op), slog.String("side", sd.name), slog.String("price", priceInput), slog.String("lots", lotsInput))
	defer func() {
		slog.Debug("placeOrder finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("side", sd.name))
	}()

	price, err := decimal.NewFromString(strings.TrimSpace(priceInput))
	if err != nil || !price.IsPositive() {
		s.setStatus(model.StatusError, "错误: 价格必须大于0")
		return fmt.Errorf("%s: price %q: %w", op, priceInput, service.ErrValidation)
	}

	// fractional lots are truncated to whole lots
	lotsDec, err := decimal.NewFromString(strings.TrimSpace(lotsInput))
	lots := lotsDec.IntPart()
	if err != nil || lots <= 0 {
		s.setStatus(model.StatusError, "错误: 数量必须大于0")
		return fmt.Errorf("%s: lots %q: %w", op, lotsInput, service.ErrValidation)
	}

	s.setStatus(model.StatusInfo, sd.pending)

	rq := tradingModel.OrderRequest{
		Stock:    s.session.CurrentStock(),
		Price:    price.InexactFloat64(),
		Quantity: lots * s.lotSize,
	}
	res, err := sd.submitter(ctx, rq)
	if err != nil {
		slog.Error("order request failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("side", sd.name), slog.String("err", err.Error()))
		s.setStatus(model.StatusError, sd.failed)
		return err
	}

	s.session.SetStatus(model.ResultStatus(res.Success, res.Message))
	if res.Success {
		s.refresh(ctx, s.UpdatePortfolio, s.UpdateOrders, s.UpdateHistory)
	}
	return nil
}

func (s *DashboardService) CancelOrder(ctx context.Context, orderID string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.CancelOrder"

	slog.Debug("CancelOrder start", slog.String("rqID", rqID), slog.String("op", op), slog.String("orderID", orderID))
	defer func() {
		slog.Debug("CancelOrder finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("orderID", orderID))
	}()

	s.setStatus(model.StatusInfo, "正在取消订单...")

	res, err := s.api.CancelOrder(ctx, orderID)
	if err != nil {
		slog.Error("got error from api.CancelOrder", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		s.setStatus(model.StatusError, "取消订单失败")
		return err
	}

	s.session.SetStatus(model.ResultStatus(res.Success, res.Message))
	if res.Success {
		s.refresh(ctx, s.UpdateOrders, s.UpdatePortfolio)
	}
	return nil
}

// SearchTable filters a paged panel by term and re-pulls its snapshot.
func (s *DashboardService) SearchTable(ctx context.Context, panel model.Panel, term string) error {
	if !panel.Paged() {
		return fmt.Errorf("DashboardService.SearchTable: panel %q: %w", panel, service.ErrValidation)
	}
	s.session.Search(panel, term)
	s.session.SetPanel(panel)
	return s.pull(ctx, panel)
}

// PrevPage steps back and re-pulls; nothing happens on the first page.
func (s *DashboardService) PrevPage(ctx context.Context, panel model.Panel) error {
	if !panel.Paged() {
		return fmt.Errorf("DashboardService.PrevPage: panel %q: %w", panel, service.ErrValidation)
	}
	if !s.session.Prev(panel) {
		return nil
	}
	return s.pull(ctx, panel)
}

func (s *DashboardService) NextPage(ctx context.Context, panel model.Panel) error {
	if !panel.Paged() {
		return fmt.Errorf("DashboardService.NextPage: panel %q: %w", panel, service.ErrValidation)
	}
	s.session.Next(panel)
	return s.pull(ctx, panel)
}

// Refresh re-pulls everything the given panel shows.
func (s *DashboardService) Refresh(ctx context.Context, panel model.Panel) error {
	if panel == model.PanelQuote {
		return s.UpdateQuote(ctx)
	}
	return s.pull(ctx, panel)
}

func (s *DashboardService) pull(ctx context.Context, panel model.Panel) error {
	switch panel {
	case model.PanelPortfolio:
		return s.UpdatePortfolio(ctx)
	case model.PanelOrders:
		return s.UpdateOrders(ctx)
	case model.PanelHistory:
		return s.UpdateHistory(ctx)
	default:
		return nil
	}
}

// refresh runs pulls concurrently and waits for all of them. Each pull logs
// its own failure.
func (s *DashboardService) refresh(ctx context.Context, pulls ...func(context.Context) error) {
	var g errgroup.Group
	for _, pull := range pulls {
		g.Go(func() error {
			return pull(ctx)
		})
	}
	_ = g.Wait()
}

// ExportSnapshot builds a workbook from the cached tables.
func (s *DashboardService) ExportSnapshot(ctx context.Context) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.ExportSnapshot"

	slog.Debug("ExportSnapshot start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("ExportSnapshot finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	fileBytes, fileExtension, err = s.reportGenerator.Generate(ctx, s.session.Snapshot())
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	return fileBytes, fileExtension, nil
}

// EquityChart renders the cached equity history.
func (s *DashboardService) EquityChart(ctx context.Context) ([]byte, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.EquityChart"

	page, err := s.chart.Render(ctx, s.session.Snapshot().Equity)
	if err != nil {
		slog.Warn("can't render equity chart", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return page, nil
}
