package model

type Panel string

const (
	PanelQuote     Panel = "quote"
	PanelPortfolio Panel = "portfolio"
	PanelOrders    Panel = "orders"
	PanelHistory   Panel = "history"
)

func ParsePanel(s string) (Panel, bool) {
	switch Panel(s) {
	case PanelQuote, PanelPortfolio, PanelOrders, PanelHistory:
		return Panel(s), true
	default:
		return "", false
	}
}

// Paged reports whether the panel holds a paginated table.
func (p Panel) Paged() bool {
	return p == PanelPortfolio || p == PanelOrders || p == PanelHistory
}
