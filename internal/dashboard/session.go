// Package dashboard holds the state of the one dashboard this process drives
// and turns it into view models.
//
// A Session is created at startup, mutated by poll jobs and action handlers
// and dropped on shutdown. Poll jobs and chat handlers run on different
// goroutines, so every access goes through the session mutex, and responses
// are applied only when they answer the latest request issued for their
// endpoint.
package dashboard

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/KotFed0t/sim_trading_dashboard/internal/model"
	"github.com/KotFed0t/sim_trading_dashboard/internal/model/tradingModel"
	"github.com/KotFed0t/sim_trading_dashboard/internal/pager"
)

type Endpoint int

const (
	EndpointPhase Endpoint = iota
	EndpointQuote
	EndpointStockSwitch
	EndpointPortfolio
	EndpointOrders
	EndpointHistory
	endpointCount
)

func (e Endpoint) String() string {
	switch e {
	case EndpointPhase:
		return "trading_phase"
	case EndpointQuote:
		return "quote"
	case EndpointStockSwitch:
		return "stock_switch"
	case EndpointPortfolio:
		return "portfolio"
	case EndpointOrders:
		return "orders"
	case EndpointHistory:
		return "history"
	default:
		return "unknown"
	}
}

// Ticket identifies one issued request of an endpoint.
type Ticket struct {
	endpoint Endpoint
	seq      uint64
}

type Options struct {
	PositionsPerPage int
	OrdersPerPage    int
	HistoryPerPage   int
	DefaultStock     string
	SampleStocks     []string
}

type Session struct {
	mu sync.Mutex

	issued  [endpointCount]uint64
	version uint64

	clock     time.Time
	phase     model.TradingPhase
	phaseSeen bool
	status    model.StatusMessage

	currentStock string
	tradePrice   string
	quote        tradingModel.Quote
	quoteLoaded  bool

	portfolio tradingModel.Portfolio
	orders    []tradingModel.Order
	history   []tradingModel.Trade

	positions *pager.Pager[tradingModel.Position]
	orderPage *pager.Pager[tradingModel.Order]
	tradePage *pager.Pager[tradingModel.Trade]

	sampleStocks []string
	panel        model.Panel
	input        model.InputState
	chatID       int64
	messageID    int
	published    string
}

func NewSession(opts Options) *Session {
	return &Session{
		currentStock: opts.DefaultStock,
		positions:    pager.New(opts.PositionsPerPage, MatchPosition),
		orderPage:    pager.New(opts.OrdersPerPage, MatchOrder),
		tradePage:    pager.New(opts.HistoryPerPage, MatchTrade),
		sampleStocks: append([]string(nil), opts.SampleStocks...),
		panel:        model.PanelQuote,
	}
}

// Begin registers a new request for endpoint. Only the newest ticket of an
// endpoint may apply its response.
func (s *Session) Begin(endpoint Endpoint) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[endpoint]++
	return Ticket{endpoint: endpoint, seq: s.issued[endpoint]}
}

func (s *Session) apply(t Ticket, fn func()) bool {
	return s.applyIf(t, func() bool {
		fn()
		return true
	})
}

// applyIf runs fn for the newest ticket only; fn may still refuse the
// response by returning false.
func (s *Session) applyIf(t Ticket, fn func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.seq != s.issued[t.endpoint] || !fn() {
		return false
	}
	s.version++
	return true
}

func (s *Session) ApplyPhase(t Ticket, phase model.TradingPhase) bool {
	return s.apply(t, func() {
		s.phase = phase
		s.phaseSeen = true
	})
}

// ApplyQuote stores a polled quote. It is refused when code is no longer the
// current stock.
func (s *Session) ApplyQuote(t Ticket, code string, quote tradingModel.Quote) bool {
	return s.applyIf(t, func() bool {
		if code != s.currentStock {
			return false
		}
		s.quote = quote
		s.quoteLoaded = true
		return true
	})
}

// ApplyStockSwitch makes code the current stock and pre-fills the trade
// price. Switches are sequenced apart from polls, so a poll of the previous
// stock never supersedes one.
func (s *Session) ApplyStockSwitch(t Ticket, code string, quote tradingModel.Quote) bool {
	return s.apply(t, func() {
		s.currentStock = code
		s.tradePrice = priceInput(quote.Current)
		s.quote = quote
		s.quoteLoaded = true
	})
}

func (s *Session) ApplyPortfolio(t Ticket, portfolio tradingModel.Portfolio) bool {
	return s.apply(t, func() {
		s.portfolio = portfolio
	})
}

func (s *Session) ApplyOrders(t Ticket, orders []tradingModel.Order) bool {
	return s.apply(t, func() {
		s.orders = orders
	})
}

func (s *Session) ApplyHistory(t Ticket, trades []tradingModel.Trade) bool {
	return s.apply(t, func() {
		s.history = trades
	})
}

func (s *Session) SetClock(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = now
	s.version++
}

func (s *Session) SetStatus(status model.StatusMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.version++
}

func (s *Session) Status() model.StatusMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) CurrentStock() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentStock
}

// TradePrice is the pre-filled price input, set from the last searched quote.
func (s *Session) TradePrice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tradePrice
}

func (s *Session) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Session) SampleStocks() []string {
	return s.sampleStocks
}

// Search sets the filter term of a paged panel and resets it to page 1.
func (s *Session) Search(panel model.Panel, term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch panel {
	case model.PanelPortfolio:
		s.positions.Search(term)
	case model.PanelOrders:
		s.orderPage.Search(term)
	case model.PanelHistory:
		s.tradePage.Search(term)
	}
	s.version++
}

// Prev reports false when the panel is already on its first page.
func (s *Session) Prev(panel model.Panel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	moved := false
	switch panel {
	case model.PanelPortfolio:
		moved = s.positions.Prev()
	case model.PanelOrders:
		moved = s.orderPage.Prev()
	case model.PanelHistory:
		moved = s.tradePage.Prev()
	}
	if moved {
		s.version++
	}
	return moved
}

func (s *Session) Next(panel model.Panel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch panel {
	case model.PanelPortfolio:
		s.positions.Next()
	case model.PanelOrders:
		s.orderPage.Next()
	case model.PanelHistory:
		s.tradePage.Next()
	}
	s.version++
}

func (s *Session) Panel() model.Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel
}

func (s *Session) SetPanel(panel model.Panel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel = panel
	s.version++
}

func (s *Session) Input() model.InputState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

func (s *Session) SetInput(state model.InputState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = state
}

// Bind attaches the dashboard to a chat and forgets the previous message.
func (s *Session) Bind(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatID = chatID
	s.messageID = 0
	s.published = ""
}

func (s *Session) ChatID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatID
}

// Message returns the chat and message id of the dashboard message, zero
// when nothing was sent yet.
func (s *Session) Message() (chatID int64, messageID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatID, s.messageID
}

// MarkPublished records the dashboard message and the text it now shows.
func (s *Session) MarkPublished(messageID int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messageID = messageID
	s.published = text
}

func (s *Session) Published() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.published
}

// Snapshot is a copy of the cached backend data, used by exports and charts.
type Snapshot struct {
	Positions []tradingModel.Position
	Orders    []tradingModel.Order
	History   []tradingModel.Trade
	Equity    []tradingModel.EquitySample
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Positions: heldPositions(s.portfolio.Positions),
		Orders:    append([]tradingModel.Order(nil), s.orders...),
		History:   append([]tradingModel.Trade(nil), s.history...),
		Equity:    append([]tradingModel.EquitySample(nil), s.portfolio.EquityHistory...),
	}
}

func heldPositions(all []tradingModel.Position) []tradingModel.Position {
	held := make([]tradingModel.Position, 0, len(all))
	for _, p := range all {
		if p.Quantity > 0 {
			held = append(held, p)
		}
	}
	return held
}

// MatchPosition filters on stock code and buy date.
func MatchPosition(p tradingModel.Position, term string) bool {
	return pager.ContainsFold(p.Stock, term) || pager.ContainsFold(p.BuyDate, term)
}

// MatchOrder filters on order id, stock, type and status.
func MatchOrder(o tradingModel.Order, term string) bool {
	return pager.ContainsFold(o.OrderID, term) ||
		pager.ContainsFold(o.Stock, term) ||
		pager.ContainsFold(o.Type, term) ||
		pager.ContainsFold(string(o.Status), term)
}

// MatchTrade filters on stock, type, datetime and a non-zero profit.
func MatchTrade(t tradingModel.Trade, term string) bool {
	if pager.ContainsFold(t.Stock, term) || pager.ContainsFold(t.Type, term) || pager.ContainsFold(t.Datetime, term) {
		return true
	}
	profit := t.ProfitOrZero()
	return profit != 0 && strings.Contains(strconv.FormatFloat(profit, 'f', -1, 64), term)
}
