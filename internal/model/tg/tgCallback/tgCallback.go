package tgCallback

// Callback button uniques. The button payload carries the panel, order id
// or stock code.
const (
	Tab    string = "tab"    // switch the visible panel
	Prev   string = "prev"   // previous page of a table
	Next   string = "next"   // next page of a table
	Search string = "search" // wait for a search term or stock code
	Cancel string = "cancel" // cancel a pending order
	Stock  string = "stock"  // load one of the sample stocks
)
