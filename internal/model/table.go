package model

// Style tokens attached to cells and rows.
const (
	StyleAltRow         = "alt-row"
	StyleProfitUp       = "profit-up"
	StyleProfitDown     = "profit-down"
	StylePriceUp        = "price-up"
	StylePriceDown      = "price-down"
	StyleTypeBuy        = "type-buy"
	StyleTypeSell       = "type-sell"
	StyleStatusPending  = "status-pending"
	StyleStatusFilled   = "status-filled"
	StyleStatusCanceled = "status-canceled"
	StyleOrderID        = "order-id"
	StyleNoData         = "no-data"
)

type Cell struct {
	Text  string
	Style string
}

type Row struct {
	Cells []Cell
	Alt   bool
	// CancelOrderID is set when the row offers a cancel action.
	CancelOrderID string
}

// Table is one rendered page of a paginated snapshot.
type Table struct {
	Columns []string
	// ActionColumn names the trailing column whose content is per-row
	// buttons rather than cell text.
	ActionColumn string

	Rows         []Row
	Placeholder  string
	PageInfo     string
	Page         int
	TotalPages   int
	PrevDisabled bool
	NextDisabled bool
	SearchTerm   string
}

// ColSpan is the width of the placeholder row.
func (t Table) ColSpan() int {
	if t.ActionColumn != "" {
		return len(t.Columns) + 1
	}
	return len(t.Columns)
}

// Empty reports whether the placeholder row is shown instead of records.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}
