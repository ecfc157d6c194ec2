package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/sim_trading_dashboard/internal/chart/equityChart"
	"github.com/KotFed0t/sim_trading_dashboard/internal/converter/telebotConverter"
	"github.com/KotFed0t/sim_trading_dashboard/internal/dashboard"
	"github.com/KotFed0t/sim_trading_dashboard/internal/model"
	"github.com/KotFed0t/sim_trading_dashboard/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/sim_trading_dashboard/utils"
	tele "gopkg.in/telebot.v4"
)

const (
	internalErrMsg = "出了点问题, 请稍后再试"
	searchPrompt   = "请输入搜索关键字:"
	stockPrompt    = "请输入股票代码, 例如 sh600519:"
)

type DashboardService interface {
	SearchStock(ctx context.Context, code string) error
	Buy(ctx context.Context, price, lots string) error
	Sell(ctx context.Context, price, lots string) error
	CancelOrder(ctx context.Context, orderID string) error
	SearchTable(ctx context.Context, panel model.Panel, term string) error
	PrevPage(ctx context.Context, panel model.Panel) error
	NextPage(ctx context.Context, panel model.Panel) error
	Refresh(ctx context.Context, panel model.Panel) error
	ExportSnapshot(ctx context.Context) (fileBytes []byte, fileExtension string, err error)
	EquityChart(ctx context.Context) ([]byte, error)
}

type Controller struct {
	dashboardService DashboardService
	session          *dashboard.Session
}

func NewController(dashboardService DashboardService, session *dashboard.Session) *Controller {
	return &Controller{
		dashboardService: dashboardService,
		session:          session,
	}
}

// Start binds the dashboard to this chat. The dashboard message itself is
// sent by the publisher.
func (ctrl *Controller) Start(c tele.Context) error {
	ctrl.session.Bind(c.Chat().ID)
	ctrl.session.SetInput(model.DefaultState)
	ctrl.session.SetPanel(model.PanelQuote)
	return c.Send(telebotConverter.HelpResponse())
}

func (ctrl *Controller) Help(c tele.Context) error {
	return c.Send(telebotConverter.HelpResponse())
}

func (ctrl *Controller) Stock(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	ctrl.session.SetPanel(model.PanelQuote)
	code := c.Message().Payload
	if strings.TrimSpace(code) == "" {
		ctrl.session.SetInput(model.ExpectingStockCode)
		return c.Send(stockPrompt)
	}

	// failures are shown in the status line
	_ = ctrl.dashboardService.SearchStock(ctx, code)
	return nil
}

func (ctrl *Controller) Buy(c tele.Context) error {
	return ctrl.placeOrder(c, ctrl.dashboardService.Buy)
}

func (ctrl *Controller) Sell(c tele.Context) error {
	return ctrl.placeOrder(c, ctrl.dashboardService.Sell)
}

// placeOrder accepts "<price> <lots>" or just "<lots>", the latter trading
// at the pre-filled price.
func (ctrl *Controller) placeOrder(c tele.Context, submit func(ctx context.Context, price, lots string) error) error {
	ctx := utils.CreateCtxWithRqID(c)

	var price, lots string
	switch args := c.Args(); len(args) {
	case 0:
		price = ctrl.session.TradePrice()
	case 1:
		price, lots = ctrl.session.TradePrice(), args[0]
	default:
		price, lots = args[0], args[1]
	}

	ctrl.session.SetPanel(model.PanelQuote)
	_ = submit(ctx, price, lots)
	return nil
}

func (ctrl *Controller) Positions(c tele.Context) error {
	return ctrl.showTable(c, model.PanelPortfolio)
}

func (ctrl *Controller) Orders(c tele.Context) error {
	return ctrl.showTable(c, model.PanelOrders)
}

func (ctrl *Controller) History(c tele.Context) error {
	return ctrl.showTable(c, model.PanelHistory)
}

// showTable opens a table panel; a command payload becomes its search term.
func (ctrl *Controller) showTable(c tele.Context, panel model.Panel) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	ctrl.session.SetPanel(panel)

	var err error
	if term := c.Message().Payload; term != "" {
		err = ctrl.dashboardService.SearchTable(ctx, panel, term)
	} else {
		err = ctrl.dashboardService.Refresh(ctx, panel)
	}
	if err != nil {
		slog.Warn("can't refresh table", slog.String("rqID", rqID), slog.String("panel", string(panel)), slog.String("err", err.Error()))
	}
	return nil
}

func (ctrl *Controller) Chart(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	page, err := ctrl.dashboardService.EquityChart(ctx)
	if err != nil {
		if errors.Is(err, equityChart.ErrNoEquityData) {
			return c.Send("暂无资产曲线数据")
		}
		return c.Send(internalErrMsg)
	}

	return c.Send(&tele.Document{
		File:     tele.FromReader(bytes.NewReader(page)),
		FileName: "equity.html",
		Caption:  "资产曲线",
	})
}

func (ctrl *Controller) Export(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	file, ext, err := ctrl.dashboardService.ExportSnapshot(ctx)
	if err != nil {
		if errors.Is(err, xslsxGenerator.ErrEmptySnapshot) {
			return c.Send("暂无可导出的数据")
		}
		return c.Send(internalErrMsg)
	}

	return c.Send(&tele.Document{
		File:     tele.FromReader(bytes.NewReader(file)),
		FileName: fmt.Sprintf("dashboard_%s%s", time.Now().Format("20060102_150405"), ext),
	})
}

// Text handles free text according to what the session waits for.
func (ctrl *Controller) Text(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)
	text := c.Text()

	state := ctrl.session.Input()
	ctrl.session.SetInput(model.DefaultState)

	switch state {
	case model.ExpectingStockCode:
		_ = ctrl.dashboardService.SearchStock(ctx, text)
	case model.ExpectingPositionSearch:
		_ = ctrl.dashboardService.SearchTable(ctx, model.PanelPortfolio, text)
	case model.ExpectingOrderSearch:
		_ = ctrl.dashboardService.SearchTable(ctx, model.PanelOrders, text)
	case model.ExpectingHistorySearch:
		_ = ctrl.dashboardService.SearchTable(ctx, model.PanelHistory, text)
	default:
		slog.Debug("unexpected text", slog.String("rqID", rqID), slog.Any("state", state))
		return c.Send(telebotConverter.HelpResponse())
	}
	return nil
}

func (ctrl *Controller) Tab(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	panel, ok := model.ParsePanel(c.Callback().Data)
	if !ok {
		return c.Respond()
	}

	ctrl.session.SetPanel(panel)
	_ = ctrl.dashboardService.Refresh(ctx, panel)
	return c.Respond()
}

func (ctrl *Controller) PrevPage(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	panel, ok := model.ParsePanel(c.Callback().Data)
	if !ok {
		return c.Respond()
	}

	_ = ctrl.dashboardService.PrevPage(ctx, panel)
	return c.Respond()
}

func (ctrl *Controller) NextPage(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	panel, ok := model.ParsePanel(c.Callback().Data)
	if !ok {
		return c.Respond()
	}

	_ = ctrl.dashboardService.NextPage(ctx, panel)
	return c.Respond()
}

func (ctrl *Controller) Search(c tele.Context) error {
	panel, ok := model.ParsePanel(c.Callback().Data)
	if !ok {
		return c.Respond()
	}

	state, ok := model.SearchState(panel)
	if !ok {
		return c.Respond()
	}
	ctrl.session.SetInput(state)

	prompt := searchPrompt
	if state == model.ExpectingStockCode {
		prompt = stockPrompt
	}
	_ = c.Respond()
	return c.Send(prompt)
}

func (ctrl *Controller) CancelOrder(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	orderID := c.Callback().Data
	if orderID == "" {
		return c.Respond()
	}

	_ = ctrl.dashboardService.CancelOrder(ctx, orderID)
	return c.Respond(&tele.CallbackResponse{Text: ctrl.session.Status().Text})
}

func (ctrl *Controller) SampleStock(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	ctrl.session.SetPanel(model.PanelQuote)
	_ = ctrl.dashboardService.SearchStock(ctx, c.Callback().Data)
	return c.Respond()
}
