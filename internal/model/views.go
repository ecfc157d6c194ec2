package model

import "time"

type Header struct {
	Clock  time.Time
	Phase  PhaseDisplay
	Status StatusMessage
}

type QuoteLine struct {
	Label string
	Value string
	Style string
}

type BookLine struct {
	Level     int
	BidPrice  string
	BidVolume string
	AskPrice  string
	AskVolume string
}

type QuoteView struct {
	Title      string
	Current    string
	Change     string
	ChangeUp   bool
	Lines      []QuoteLine
	Book       []BookLine
	TradePrice string
	Loaded     bool
}

type PortfolioView struct {
	TotalAssets   string
	StockValue    string
	TotalProfit   string
	TotalProfitUp bool
	TodayProfit   string
	TodayProfitUp bool
	EquitySamples int
	Positions     Table
}

// Dashboard is everything the chat message shows for the active panel.
type Dashboard struct {
	Header       Header
	Panel        Panel
	Quote        QuoteView
	Portfolio    PortfolioView
	Orders       Table
	History      Table
	SampleStocks []string
}
