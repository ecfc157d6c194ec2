package dashboard

import (
	"fmt"
	"strings"

	"github.com/KotFed0t/sim_trading_dashboard/internal/format"
	"github.com/KotFed0t/sim_trading_dashboard/internal/model"
	"github.com/KotFed0t/sim_trading_dashboard/internal/model/tradingModel"
	"github.com/KotFed0t/sim_trading_dashboard/internal/pager"
)

const (
	ActionColumn = "操作"

	NoPositions = "无持仓"
	NoOrders    = "无订单"
	NoHistory   = "无交易记录"
)

var (
	PositionColumns = []string{"股票", "数量", "成本价", "现价", "市值", "盈亏", "买入日期"}
	OrderColumns    = []string{"订单号", "类型", "股票", "价格", "数量", "状态", "时间"}
	HistoryColumns  = []string{"时间", "类型", "股票", "价格", "数量", "金额", "盈亏"}
)

func priceInput(v float64) string {
	return format.Price(v)
}

// Dashboard renders every panel from the cached snapshots. Rendering pulls
// page cursors back into range, so it runs under the session lock.
func (s *Session) Dashboard() model.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()

	return model.Dashboard{
		Header:       s.header(),
		Panel:        s.panel,
		Quote:        s.quoteView(),
		Portfolio:    s.portfolioView(),
		Orders:       s.ordersTable(),
		History:      s.historyTable(),
		SampleStocks: s.sampleStocks,
	}
}

func (s *Session) header() model.Header {
	phase := model.PhaseDisplay{Label: model.UnknownPhaseLabel, Color: model.PhaseColorAuction}
	if s.phaseSeen {
		phase = s.phase.Display()
	}
	return model.Header{Clock: s.clock, Phase: phase, Status: s.status}
}

func (s *Session) quoteView() model.QuoteView {
	if !s.quoteLoaded {
		return model.QuoteView{Title: strings.ToUpper(s.currentStock), TradePrice: s.tradePrice}
	}

	q := s.quote
	change, up := format.Change(q.Current, q.PrevClose)
	view := model.QuoteView{
		Title:      fmt.Sprintf("%s (%s)", q.Name, strings.ToUpper(q.Code)),
		Current:    format.Price(q.Current),
		Change:     change,
		ChangeUp:   up,
		TradePrice: s.tradePrice,
		Loaded:     true,
		Lines: []model.QuoteLine{
			{Label: "今开", Value: format.Price(q.Open)},
			{Label: "昨收", Value: format.Price(q.PrevClose)},
			{Label: "最高", Value: format.Price(q.High)},
			{Label: "最低", Value: format.Price(q.Low)},
			{Label: "成交量", Value: format.Number(q.Volume)},
			{Label: "成交额", Value: format.Amount(q.Amount)},
		},
	}
	if q.UpperLimit > 0 || q.LowerLimit > 0 {
		view.Lines = append(view.Lines,
			model.QuoteLine{Label: "涨停", Value: format.Price(q.UpperLimit), Style: model.StylePriceUp},
			model.QuoteLine{Label: "跌停", Value: format.Price(q.LowerLimit), Style: model.StylePriceDown},
		)
	}

	bids, asks := q.Bids(), q.Asks()
	for i := range bids {
		view.Book = append(view.Book, model.BookLine{
			Level:     i + 1,
			BidPrice:  format.Price(bids[i].Price),
			BidVolume: format.Number(bids[i].Volume),
			AskPrice:  format.Price(asks[i].Price),
			AskVolume: format.Number(asks[i].Volume),
		})
	}
	return view
}

func (s *Session) portfolioView() model.PortfolioView {
	p := s.portfolio
	return model.PortfolioView{
		TotalAssets:   format.Money(p.TotalAssets),
		StockValue:    format.Money(p.StockValue),
		TotalProfit:   format.SignedMoney(p.TotalProfit),
		TotalProfitUp: p.TotalProfit >= 0,
		TodayProfit:   format.SignedMoney(p.TodayProfit),
		TodayProfitUp: p.TodayProfit >= 0,
		EquitySamples: len(p.EquityHistory),
		Positions:     s.positionsTable(),
	}
}

func profitStyle(v float64) string {
	if v >= 0 {
		return model.StyleProfitUp
	}
	return model.StyleProfitDown
}

func typeStyle(t string) string {
	if t == tradingModel.TypeBuy {
		return model.StyleTypeBuy
	}
	return model.StyleTypeSell
}

func statusStyle(status tradingModel.OrderStatus) string {
	switch status {
	case tradingModel.OrderPending:
		return model.StyleStatusPending
	case tradingModel.OrderFilled:
		return model.StyleStatusFilled
	case tradingModel.OrderCanceled, tradingModel.OrderExpired:
		return model.StyleStatusCanceled
	default:
		return ""
	}
}

func newTable[T any](columns []string, placeholder string, p *pager.Pager[T], w pager.Window[T]) model.Table {
	return model.Table{
		Columns:      columns,
		Placeholder:  placeholder,
		PageInfo:     w.PageInfo(),
		Page:         w.Page,
		TotalPages:   w.TotalPages,
		PrevDisabled: w.PrevDisabled,
		NextDisabled: w.NextDisabled,
		SearchTerm:   p.Term(),
	}
}

func (s *Session) positionsTable() model.Table {
	w := s.positions.Render(heldPositions(s.portfolio.Positions))
	table := newTable(PositionColumns, NoPositions, s.positions, w)
	for i, p := range w.Items {
		table.Rows = append(table.Rows, model.Row{
			Alt: i%2 == 0,
			Cells: []model.Cell{
				{Text: strings.ToUpper(p.Stock)},
				{Text: format.Int(p.Quantity)},
				{Text: format.Price(p.AvgCost)},
				{Text: format.Price(p.CurrentPrice)},
				{Text: format.Money(p.MarketValue)},
				{Text: format.SignedMoney(p.Profit), Style: profitStyle(p.Profit)},
				{Text: p.BuyDate},
			},
		})
	}
	return table
}

func (s *Session) ordersTable() model.Table {
	w := s.orderPage.Render(s.orders)
	table := newTable(OrderColumns, NoOrders, s.orderPage, w)
	table.ActionColumn = ActionColumn
	for i, o := range w.Items {
		row := model.Row{
			Alt: i%2 == 0,
			Cells: []model.Cell{
				{Text: format.ShortOrderID(o.OrderID), Style: model.StyleOrderID},
				{Text: o.Type, Style: typeStyle(o.Type)},
				{Text: strings.ToUpper(o.Stock)},
				{Text: format.Price(o.Price)},
				{Text: format.Int(o.Quantity)},
				{Text: string(o.Status), Style: statusStyle(o.Status)},
				{Text: o.CreatedAt},
			},
		}
		if o.Cancelable() {
			row.CancelOrderID = o.OrderID
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func (s *Session) historyTable() model.Table {
	w := s.tradePage.Render(s.history)
	table := newTable(HistoryColumns, NoHistory, s.tradePage, w)
	for i, t := range w.Items {
		profit := t.ProfitOrZero()
		table.Rows = append(table.Rows, model.Row{
			Alt: i%2 == 0,
			Cells: []model.Cell{
				{Text: t.Datetime},
				{Text: t.Type, Style: typeStyle(t.Type)},
				{Text: strings.ToUpper(t.Stock)},
				{Text: format.Price(t.Price)},
				{Text: format.Int(t.Quantity)},
				{Text: format.Money(t.Amount)},
				{Text: format.SignedMoney(profit), Style: profitStyle(profit)},
			},
		})
	}
	return table
}
