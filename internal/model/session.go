package model

// InputState tells which free text the chat is expected to send next.
type InputState int

const (
	DefaultState InputState = iota
	ExpectingStockCode
	ExpectingPositionSearch
	ExpectingOrderSearch
	ExpectingHistorySearch
)

// SearchState returns the input state that awaits a search term for panel.
func SearchState(panel Panel) (InputState, bool) {
	switch panel {
	case PanelPortfolio:
		return ExpectingPositionSearch, true
	case PanelOrders:
		return ExpectingOrderSearch, true
	case PanelHistory:
		return ExpectingHistorySearch, true
	case PanelQuote:
		return ExpectingStockCode, true
	default:
		return DefaultState, false
	}
}
