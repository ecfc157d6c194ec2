package dashboardService

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KotFed0t/sim_trading_dashboard/internal/dashboard"
	"github.com/KotFed0t/sim_trading_dashboard/internal/externalApi"
	"github.com/KotFed0t/sim_trading_dashboard/internal/model"
	"github.com/KotFed0t/sim_trading_dashboard/internal/model/tradingModel"
	"github.com/KotFed0t/sim_trading_dashboard/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type apiMock struct {
	mock.Mock
}

func (m *apiMock) GetTradingPhase(ctx context.Context) (model.TradingPhase, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.TradingPhase), args.Error(1)
}

func (m *apiMock) GetQuote(ctx context.Context, code string) (tradingModel.Quote, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(tradingModel.Quote), args.Error(1)
}

func (m *apiMock) GetPortfolio(ctx context.Context) (tradingModel.Portfolio, error) {
	args := m.Called(ctx)
	return args.Get(0).(tradingModel.Portfolio), args.Error(1)
}

func (m *apiMock) GetOrders(ctx context.Context) ([]tradingModel.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]tradingModel.Order), args.Error(1)
}

func (m *apiMock) GetHistory(ctx context.Context) ([]tradingModel.Trade, error) {
	args := m.Called(ctx)
	return args.Get(0).([]tradingModel.Trade), args.Error(1)
}

func (m *apiMock) Buy(ctx context.Context, rq tradingModel.OrderRequest) (tradingModel.ActionResult, error) {
	args := m.Called(ctx, rq)
	return args.Get(0).(tradingModel.ActionResult), args.Error(1)
}

func (m *apiMock) Sell(ctx context.Context, rq tradingModel.OrderRequest) (tradingModel.ActionResult, error) {
	args := m.Called(ctx, rq)
	return args.Get(0).(tradingModel.ActionResult), args.Error(1)
}

func (m *apiMock) CancelOrder(ctx context.Context, orderID string) (tradingModel.ActionResult, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(tradingModel.ActionResult), args.Error(1)
}

func newService(api *apiMock) *DashboardService {
	session := dashboard.NewSession(dashboard.Options{
		PositionsPerPage: 100,
		OrdersPerPage:    100,
		HistoryPerPage:   100,
		DefaultStock:     "sh600519",
	})
	return New(api, session, &generatorMock{}, &chartMock{}, 100)
}

type generatorMock struct {
	mock.Mock
}

func (m *generatorMock) Generate(ctx context.Context, snapshot dashboard.Snapshot) ([]byte, string, error) {
	args := m.Called(ctx, snapshot)
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type chartMock struct {
	mock.Mock
}

func (m *chartMock) Render(ctx context.Context, samples []tradingModel.EquitySample) ([]byte, error) {
	args := m.Called(ctx, samples)
	return args.Get(0).([]byte), args.Error(1)
}

var anyCtx = mock.Anything

func TestSearchStockEmptyCode(t *testing.T) {
	api := &apiMock{}
	svc := newService(api)

	err := svc.SearchStock(context.Background(), "  ")
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Equal(t, model.StatusMessage{Kind: model.StatusError, Text: "错误: 股票代码不能为空"}, svc.Session().Status())
	api.AssertNotCalled(t, "GetQuote", anyCtx, mock.Anything)
}

func TestSearchStockSuccess(t *testing.T) {
	api := &apiMock{}
	api.On("GetQuote", anyCtx, "sz000001").Return(tradingModel.Quote{Code: "sz000001", Name: "平安银行", Current: 12.345}, nil)
	svc := newService(api)

	require.NoError(t, svc.SearchStock(context.Background(), "sz000001"))

	assert.Equal(t, "sz000001", svc.Session().CurrentStock())
	assert.Equal(t, "12.35", svc.Session().TradePrice())
	assert.Equal(t, model.StatusMessage{Kind: model.StatusSuccess, Text: "成功获取 平安银行 数据"}, svc.Session().Status())
	api.AssertExpectations(t)
}

func TestSearchStockNotFound(t *testing.T) {
	api := &apiMock{}
	api.On("GetQuote", anyCtx, "xx").Return(tradingModel.Quote{}, externalApi.ErrNotFound)
	svc := newService(api)

	err := svc.SearchStock(context.Background(), "xx")
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Equal(t, "获取股票 xx 数据失败", svc.Session().Status().Text)
	assert.Equal(t, "sh600519", svc.Session().CurrentStock())
}

func TestSearchStockTransportError(t *testing.T) {
	api := &apiMock{}
	api.On("GetQuote", anyCtx, "sh600000").Return(tradingModel.Quote{}, errors.New("connection refused"))
	svc := newService(api)

	assert.Error(t, svc.SearchStock(context.Background(), "sh600000"))
	assert.Equal(t, model.StatusMessage{Kind: model.StatusError, Text: "获取数据时出错: connection refused"}, svc.Session().Status())
}

func TestBuyValidation(t *testing.T) {
	tests := []struct {
		name   string
		price  string
		lots   string
		status string
	}{
		{name: "zero price", price: "0", lots: "1", status: "错误: 价格必须大于0"},
		{name: "negative price", price: "-5", lots: "1", status: "错误: 价格必须大于0"},
		{name: "unparsable price", price: "abc", lots: "1", status: "错误: 价格必须大于0"},
		{name: "zero lots", price: "10", lots: "0", status: "错误: 数量必须大于0"},
		{name: "empty lots", price: "10", lots: "", status: "错误: 数量必须大于0"},
		{name: "lots below one", price: "10", lots: "0.5", status: "错误: 数量必须大于0"},
		{name: "lots with trailing text", price: "10", lots: "2abc", status: "错误: 数量必须大于0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &apiMock{}
			svc := newService(api)

			err := svc.Buy(context.Background(), tt.price, tt.lots)
			assert.ErrorIs(t, err, service.ErrValidation)
			assert.Equal(t, model.StatusMessage{Kind: model.StatusError, Text: tt.status}, svc.Session().Status())
			api.AssertNotCalled(t, "Buy", anyCtx, mock.Anything)
		})
	}
}

func TestBuySuccessRefreshesTables(t *testing.T) {
	api := &apiMock{}
	rq := tradingModel.OrderRequest{Stock: "sh600519", Price: 10.5, Quantity: 200}
	api.On("Buy", anyCtx, rq).Return(tradingModel.ActionResult{Success: true, Message: "下单成功"}, nil).Once()
	api.On("GetPortfolio", anyCtx).Return(tradingModel.Portfolio{TotalAssets: 1}, nil).Once()
	api.On("GetOrders", anyCtx).Return([]tradingModel.Order{{OrderID: "o1", Status: tradingModel.OrderPending}}, nil).Once()
	api.On("GetHistory", anyCtx).Return([]tradingModel.Trade{}, nil).Once()
	svc := newService(api)

	require.NoError(t, svc.Buy(context.Background(), "10.50", "2"))

	assert.Equal(t, model.StatusMessage{Kind: model.StatusSuccess, Text: "下单成功"}, svc.Session().Status())
	assert.Len(t, svc.Session().Snapshot().Orders, 1)
	api.AssertExpectations(t)
}

func TestSellRejected(t *testing.T) {
	api := &apiMock{}
	api.On("Sell", anyCtx, mock.MatchedBy(func(rq tradingModel.OrderRequest) bool {
		return rq.Quantity == 100
	})).Return(tradingModel.ActionResult{Success: false, Message: "持仓不足"}, nil)
	svc := newService(api)

	require.NoError(t, svc.Sell(context.Background(), "9", "1"))

	assert.Equal(t, model.StatusMessage{Kind: model.StatusError, Text: "持仓不足"}, svc.Session().Status())
	api.AssertNotCalled(t, "GetPortfolio", anyCtx)
}

func TestSellTransportError(t *testing.T) {
	api := &apiMock{}
	api.On("Sell", anyCtx, mock.Anything).Return(tradingModel.ActionResult{}, errors.New("timeout"))
	svc := newService(api)

	assert.Error(t, svc.Sell(context.Background(), "9", "1"))
	assert.Equal(t, "卖出操作失败", svc.Session().Status().Text)
}

func TestCancelOrder(t *testing.T) {
	api := &apiMock{}
	api.On("CancelOrder", anyCtx, "o1").Return(tradingModel.ActionResult{Success: true, Message: "订单已取消"}, nil)
	api.On("GetOrders", anyCtx).Return([]tradingModel.Order{}, nil).Once()
	api.On("GetPortfolio", anyCtx).Return(tradingModel.Portfolio{}, nil).Once()
	svc := newService(api)

	require.NoError(t, svc.CancelOrder(context.Background(), "o1"))
	assert.Equal(t, "订单已取消", svc.Session().Status().Text)
	api.AssertExpectations(t)
	api.AssertNotCalled(t, "GetHistory", anyCtx)
}

func TestCancelOrderFailure(t *testing.T) {
	api := &apiMock{}
	api.On("CancelOrder", anyCtx, "o1").Return(tradingModel.ActionResult{}, errors.New("boom"))
	svc := newService(api)

	assert.Error(t, svc.CancelOrder(context.Background(), "o1"))
	assert.Equal(t, model.StatusMessage{Kind: model.StatusError, Text: "取消订单失败"}, svc.Session().Status())
}

func TestPollFailureKeepsState(t *testing.T) {
	api := &apiMock{}
	api.On("GetOrders", anyCtx).Return([]tradingModel.Order{{OrderID: "o1"}}, nil).Once()
	api.On("GetOrders", anyCtx).Return([]tradingModel.Order(nil), errors.New("down")).Once()
	svc := newService(api)

	require.NoError(t, svc.UpdateOrders(context.Background()))
	assert.Error(t, svc.UpdateOrders(context.Background()))
	assert.Len(t, svc.Session().Snapshot().Orders, 1)
}

func TestUpdateQuoteEmptyKeepsDisplay(t *testing.T) {
	api := &apiMock{}
	api.On("GetQuote", anyCtx, "sh600519").Return(tradingModel.Quote{Code: "sh600519", Name: "贵州茅台", Current: 1500}, nil).Once()
	api.On("GetQuote", anyCtx, "sh600519").Return(tradingModel.Quote{}, externalApi.ErrNotFound).Once()
	svc := newService(api)

	require.NoError(t, svc.UpdateQuote(context.Background()))
	require.NoError(t, svc.UpdateQuote(context.Background()))

	view := svc.Session().Dashboard().Quote
	assert.True(t, view.Loaded)
	assert.Equal(t, "1500.00", view.Current)
}

func TestUpdateTradingPhase(t *testing.T) {
	api := &apiMock{}
	api.On("GetTradingPhase", anyCtx).Return(model.PhaseClosed, nil)
	svc := newService(api)

	require.NoError(t, svc.UpdateTradingPhase(context.Background()))
	assert.Equal(t, "闭市", svc.Session().Dashboard().Header.Phase.Label)
}

func TestUpdateClock(t *testing.T) {
	svc := newService(&apiMock{})
	fixed := time.Date(2026, 10, 14, 9, 30, 0, 0, time.Local)
	svc.now = func() time.Time { return fixed }

	require.NoError(t, svc.UpdateClock(context.Background()))
	assert.Equal(t, fixed, svc.Session().Dashboard().Header.Clock)
}

func TestSearchTableRepulls(t *testing.T) {
	api := &apiMock{}
	api.On("GetOrders", anyCtx).Return([]tradingModel.Order{
		{OrderID: "abc", Stock: "sh600519"},
		{OrderID: "def", Stock: "sz000001"},
	}, nil).Once()
	svc := newService(api)

	require.NoError(t, svc.SearchTable(context.Background(), model.PanelOrders, "SZ"))

	d := svc.Session().Dashboard()
	assert.Equal(t, model.PanelOrders, d.Panel)
	assert.Len(t, d.Orders.Rows, 1)
	assert.Equal(t, "sz", d.Orders.SearchTerm)
	api.AssertExpectations(t)
}

func TestPrevPageOnFirstPageDoesNothing(t *testing.T) {
	api := &apiMock{}
	svc := newService(api)

	require.NoError(t, svc.PrevPage(context.Background(), model.PanelHistory))
	api.AssertNotCalled(t, "GetHistory", anyCtx)
}

func TestNextPageRepulls(t *testing.T) {
	api := &apiMock{}
	api.On("GetHistory", anyCtx).Return([]tradingModel.Trade{}, nil).Once()
	svc := newService(api)

	require.NoError(t, svc.NextPage(context.Background(), model.PanelHistory))
	assert.Equal(t, 1, svc.Session().Dashboard().History.Page)
	api.AssertExpectations(t)
}

func TestPagingRejectsQuotePanel(t *testing.T) {
	svc := newService(&apiMock{})
	assert.ErrorIs(t, svc.NextPage(context.Background(), model.PanelQuote), service.ErrValidation)
}

func TestExportSnapshotUsesCachedTables(t *testing.T) {
	api := &apiMock{}
	api.On("GetOrders", anyCtx).Return([]tradingModel.Order{{OrderID: "o1"}}, nil).Once()
	generator := &generatorMock{}
	generator.On("Generate", anyCtx, mock.MatchedBy(func(s dashboard.Snapshot) bool {
		return len(s.Orders) == 1 && s.Orders[0].OrderID == "o1"
	})).Return([]byte("xlsx"), ".xlsx", nil)

	session := dashboard.NewSession(dashboard.Options{OrdersPerPage: 10})
	svc := New(api, session, generator, &chartMock{}, 100)
	require.NoError(t, svc.UpdateOrders(context.Background()))

	data, ext, err := svc.ExportSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), data)
	assert.Equal(t, ".xlsx", ext)
	generator.AssertExpectations(t)
}

func TestEquityChartError(t *testing.T) {
	chart := &chartMock{}
	chart.On("Render", anyCtx, mock.Anything).Return([]byte(nil), errors.New("no data"))
	svc := New(&apiMock{}, dashboard.NewSession(dashboard.Options{}), &generatorMock{}, chart, 100)

	_, err := svc.EquityChart(context.Background())
	assert.Error(t, err)
}

func TestSearchStockSurvivesOverlappingPoll(t *testing.T) {
	api := &apiMock{}
	svc := newService(api)

	// the poll of the old stock starts and finishes while the search waits
	api.On("GetQuote", anyCtx, "sz000001").Run(func(mock.Arguments) {
		assert.NoError(t, svc.UpdateQuote(context.Background()))
	}).Return(tradingModel.Quote{Code: "sz000001", Name: "平安银行", Current: 11.2}, nil).Once()
	api.On("GetQuote", anyCtx, "sh600519").Return(tradingModel.Quote{Code: "sh600519", Name: "贵州茅台", Current: 1500}, nil).Once()

	require.NoError(t, svc.SearchStock(context.Background(), "sz000001"))

	session := svc.Session()
	assert.Equal(t, "sz000001", session.CurrentStock())
	assert.Equal(t, "11.20", session.TradePrice())
	assert.Equal(t, model.StatusMessage{Kind: model.StatusSuccess, Text: "成功获取 平安银行 数据"}, session.Status())
	assert.Equal(t, "平安银行 (SZ000001)", session.Dashboard().Quote.Title)
	api.AssertExpectations(t)
}

func TestPollOfOldStockAfterSearchIsIgnored(t *testing.T) {
	api := &apiMock{}
	svc := newService(api)

	// the search starts and finishes while the poll of the old stock waits
	api.On("GetQuote", anyCtx, "sh600519").Run(func(mock.Arguments) {
		assert.NoError(t, svc.SearchStock(context.Background(), "sz000001"))
	}).Return(tradingModel.Quote{Code: "sh600519", Name: "贵州茅台", Current: 1500}, nil).Once()
	api.On("GetQuote", anyCtx, "sz000001").Return(tradingModel.Quote{Code: "sz000001", Name: "平安银行", Current: 11.2}, nil).Once()

	require.NoError(t, svc.UpdateQuote(context.Background()))

	assert.Equal(t, "sz000001", svc.Session().CurrentStock())
	assert.Equal(t, "11.20", svc.Session().Dashboard().Quote.Current)
}

func TestBuyRefreshLosesToNewerPoll(t *testing.T) {
	api := &apiMock{}
	svc := newService(api)

	before := []tradingModel.Order{{OrderID: "old", Status: tradingModel.OrderFilled}}
	after := []tradingModel.Order{
		{OrderID: "old", Status: tradingModel.OrderFilled},
		{OrderID: "new", Status: tradingModel.OrderPending},
	}

	api.On("Buy", anyCtx, mock.Anything).Return(tradingModel.ActionResult{Success: true, Message: "下单成功"}, nil).Once()
	api.On("GetPortfolio", anyCtx).Return(tradingModel.Portfolio{}, nil).Once()
	api.On("GetHistory", anyCtx).Return([]tradingModel.Trade{}, nil).Once()
	// the refresh answers late with data older than the poll issued after it
	api.On("GetOrders", anyCtx).Run(func(mock.Arguments) {
		assert.NoError(t, svc.UpdateOrders(context.Background()))
	}).Return(before, nil).Once()
	api.On("GetOrders", anyCtx).Return(after, nil).Once()

	require.NoError(t, svc.Buy(context.Background(), "10", "1"))

	orders := svc.Session().Snapshot().Orders
	require.Len(t, orders, 2)
	assert.Equal(t, "new", orders[1].OrderID)
	api.AssertExpectations(t)
}

func TestBuyTruncatesFractionalLots(t *testing.T) {
	api := &apiMock{}
	api.On("Buy", anyCtx, tradingModel.OrderRequest{Stock: "sh600519", Price: 10, Quantity: 100}).
		Return(tradingModel.ActionResult{Success: false, Message: "资金不足"}, nil).Once()
	svc := newService(api)

	require.NoError(t, svc.Buy(context.Background(), "10", "1.9"))
	assert.Equal(t, "资金不足", svc.Session().Status().Text)
	api.AssertExpectations(t)
}
