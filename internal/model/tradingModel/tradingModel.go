package tradingModel

// Quote is the instrument snapshot served by /api/stock/{code}.
type Quote struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Current       float64 `json:"current"`
	Open          float64 `json:"open"`
	PrevClose     float64 `json:"prev_close"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        float64 `json:"volume"`
	Amount        float64 `json:"amount"`
	UpperLimit    float64 `json:"upper_limit"`
	LowerLimit    float64 `json:"lower_limit"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Timestamp     string  `json:"timestamp"`

	Bid1    float64 `json:"bid1"`
	Bid1Vol float64 `json:"bid1_vol"`
	Bid2    float64 `json:"bid2"`
	Bid2Vol float64 `json:"bid2_vol"`
	Bid3    float64 `json:"bid3"`
	Bid3Vol float64 `json:"bid3_vol"`
	Bid4    float64 `json:"bid4"`
	Bid4Vol float64 `json:"bid4_vol"`
	Bid5    float64 `json:"bid5"`
	Bid5Vol float64 `json:"bid5_vol"`

	Ask1    float64 `json:"ask1"`
	Ask1Vol float64 `json:"ask1_vol"`
	Ask2    float64 `json:"ask2"`
	Ask2Vol float64 `json:"ask2_vol"`
	Ask3    float64 `json:"ask3"`
	Ask3Vol float64 `json:"ask3_vol"`
	Ask4    float64 `json:"ask4"`
	Ask4Vol float64 `json:"ask4_vol"`
	Ask5    float64 `json:"ask5"`
	Ask5Vol float64 `json:"ask5_vol"`
}

type BookLevel struct {
	Price  float64
	Volume float64
}

// Bids returns bid levels 1..5.
func (q Quote) Bids() [5]BookLevel {
	return [5]BookLevel{
		{q.Bid1, q.Bid1Vol},
		{q.Bid2, q.Bid2Vol},
		{q.Bid3, q.Bid3Vol},
		{q.Bid4, q.Bid4Vol},
		{q.Bid5, q.Bid5Vol},
	}
}

// Asks returns ask levels 1..5.
func (q Quote) Asks() [5]BookLevel {
	return [5]BookLevel{
		{q.Ask1, q.Ask1Vol},
		{q.Ask2, q.Ask2Vol},
		{q.Ask3, q.Ask3Vol},
		{q.Ask4, q.Ask4Vol},
		{q.Ask5, q.Ask5Vol},
	}
}

type PositionInfo struct {
	Quantity     int64   `json:"quantity"`
	AvgCost      float64 `json:"avg_cost"`
	CurrentPrice float64 `json:"current_price"`
	MarketValue  float64 `json:"market_value"`
	Profit       float64 `json:"profit"`
	BuyDate      string  `json:"buy_date"`
}

// Position is a PositionInfo together with the stock code it is keyed by.
type Position struct {
	Stock string
	PositionInfo
}

type EquitySample struct {
	Timestamp   string  `json:"timestamp"`
	TotalAssets float64 `json:"total_assets"`
}

// Portfolio is the /api/portfolio report. Positions keep the order in which
// the backend listed them.
type Portfolio struct {
	TotalAssets   float64        `json:"total_assets"`
	StockValue    float64        `json:"stock_value"`
	TotalProfit   float64        `json:"total_profit"`
	TodayProfit   float64        `json:"today_profit"`
	Cash          float64        `json:"cash"`
	FrozenCash    float64        `json:"frozen_cash"`
	EquityHistory []EquitySample `json:"equity_history"`
	Positions     []Position     `json:"-"`
}

type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderFilled   OrderStatus = "filled"
	OrderCanceled OrderStatus = "canceled"
	OrderExpired  OrderStatus = "expired"
)

// Trade direction labels used by the backend.
const (
	TypeBuy  = "买入"
	TypeSell = "卖出"
)

type Order struct {
	OrderID   string      `json:"order_id"`
	Type      string      `json:"type"`
	Stock     string      `json:"stock"`
	Price     float64     `json:"price"`
	Quantity  int64       `json:"quantity"`
	Status    OrderStatus `json:"status"`
	CreatedAt string      `json:"created_at"`
}

func (o Order) Cancelable() bool {
	return o.Status == OrderPending
}

type Trade struct {
	Datetime string   `json:"datetime"`
	Type     string   `json:"type"`
	Stock    string   `json:"stock"`
	Price    float64  `json:"price"`
	Quantity int64    `json:"quantity"`
	Amount   float64  `json:"amount"`
	Profit   *float64 `json:"profit"`
}

// ProfitOrZero treats a missing profit as zero.
func (t Trade) ProfitOrZero() float64 {
	if t.Profit == nil {
		return 0
	}
	return *t.Profit
}

type PhaseResponse struct {
	Phase string `json:"phase"`
}

type OrderRequest struct {
	Stock    string  `json:"stock"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

type CancelRequest struct {
	OrderID string `json:"order_id"`
}

type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
