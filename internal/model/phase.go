package model

import "strings"

type TradingPhase string

const (
	PhasePreOpen          TradingPhase = "pre_open"
	PhaseOpenCallNoCancel TradingPhase = "open_call_no_cancel"
	PhaseOpenCall         TradingPhase = "open_call"
	PhaseContinuousAM     TradingPhase = "continuous_am"
	PhaseBreak            TradingPhase = "break"
	PhaseContinuousPM     TradingPhase = "continuous_pm"
	PhaseCloseCall        TradingPhase = "close_call"
	PhasePostMarket       TradingPhase = "post_market"
	PhaseNonTrading       TradingPhase = "non_trading"
	PhaseClosed           TradingPhase = "closed"
)

// AllTradingPhases lists every phase the backend may report, in session order.
var AllTradingPhases = []TradingPhase{
	PhasePreOpen,
	PhaseOpenCallNoCancel,
	PhaseOpenCall,
	PhaseContinuousAM,
	PhaseBreak,
	PhaseContinuousPM,
	PhaseCloseCall,
	PhasePostMarket,
	PhaseNonTrading,
	PhaseClosed,
}

type PhaseColor int

const (
	PhaseColorAuction PhaseColor = iota // call auctions, break, post market
	PhaseColorActive                    // continuous trading
	PhaseColorClosed
)

type PhaseDisplay struct {
	Label string
	Color PhaseColor
}

const UnknownPhaseLabel = "未知交易阶段"

var phaseDisplays = map[TradingPhase]PhaseDisplay{
	PhasePreOpen:          {Label: "开盘集合竞价(可撤单)", Color: PhaseColorAuction},
	PhaseOpenCallNoCancel: {Label: "开盘集合竞价(不可撤单)", Color: PhaseColorAuction},
	PhaseOpenCall:         {Label: "开盘集合竞价", Color: PhaseColorAuction},
	PhaseContinuousAM:     {Label: "早盘连续竞价", Color: PhaseColorActive},
	PhaseBreak:            {Label: "午间休市", Color: PhaseColorAuction},
	PhaseContinuousPM:     {Label: "午盘连续竞价", Color: PhaseColorActive},
	PhaseCloseCall:        {Label: "收盘集合竞价", Color: PhaseColorAuction},
	PhasePostMarket:       {Label: "盘后交易", Color: PhaseColorAuction},
	PhaseNonTrading:       {Label: "非交易日", Color: PhaseColorClosed},
	PhaseClosed:           {Label: "闭市", Color: PhaseColorClosed},
}

func (p TradingPhase) Valid() bool {
	_, ok := phaseDisplays[p]
	return ok
}

// Display maps the phase to its label and color category. Unknown values get
// the generic label; their color follows the backend's substring convention.
func (p TradingPhase) Display() PhaseDisplay {
	if d, ok := phaseDisplays[p]; ok {
		return d
	}
	if strings.Contains(string(p), "continuous") {
		return PhaseDisplay{Label: UnknownPhaseLabel, Color: PhaseColorActive}
	}
	return PhaseDisplay{Label: UnknownPhaseLabel, Color: PhaseColorAuction}
}
