// Package format renders backend numbers the way the dashboard displays them:
// zh-CN grouping, two decimals for money, "¥" glyph where currency applies.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	CurrencySymbol = "¥"
	ClockLayout    = "2006/1/2 15:04:05"
	DatetimeLayout = "2006-01-02 15:04:05"
)

var printer = message.NewPrinter(language.SimplifiedChinese)

// Currency formats amount with two decimals and thousands separators.
// With showSign a positive amount gets a leading "+"; skipSymbol drops "¥".
// Negative amounts keep their "-".
func Currency(amount float64, showSign, skipSymbol bool) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	rounded := decimal.NewFromFloat(amount).Round(2)

	var sb strings.Builder
	switch {
	case rounded.IsNegative():
		sb.WriteString("-")
	case showSign && rounded.IsPositive():
		sb.WriteString("+")
	}
	if !skipSymbol {
		sb.WriteString(CurrencySymbol)
	}
	sb.WriteString(printer.Sprintf("%v", number.Decimal(rounded.Abs().InexactFloat64(),
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	)))

	return sb.String()
}

func Money(amount float64) string {
	return Currency(amount, false, false)
}

func SignedMoney(amount float64) string {
	return Currency(amount, true, false)
}

// Amount is money without the currency glyph.
func Amount(amount float64) string {
	return Currency(amount, false, true)
}

// Number groups thousands and keeps up to three fraction digits.
func Number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(3)))
}

func Int(v int64) string {
	return Number(float64(v))
}

// Price renders a fixed two decimal price without grouping.
func Price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Change renders "+1.23 (0.45%)" relative to prevClose and reports whether
// the move is non-negative.
func Change(current, prevClose float64) (string, bool) {
	change := decimal.NewFromFloat(current).Sub(decimal.NewFromFloat(prevClose))
	percent := decimal.Zero
	if prevClose != 0 {
		percent = change.Div(decimal.NewFromFloat(prevClose)).Mul(decimal.NewFromInt(100))
	}

	up := !change.IsNegative()
	sign := ""
	if up {
		sign = "+"
	}
	return fmt.Sprintf("%s%s (%s%%)", sign, change.StringFixed(2), percent.StringFixed(2)), up
}

func Clock(t time.Time) string {
	return t.Format(ClockLayout)
}

// EquityLabel turns a backend timestamp into the "H:MM" axis label. Values
// that do not parse are returned unchanged.
func EquityLabel(timestamp string) string {
	t, err := time.ParseInLocation(DatetimeLayout, timestamp, time.Local)
	if err != nil {
		return timestamp
	}
	return fmt.Sprintf("%d:%02d", t.Hour(), t.Minute())
}

// ShortOrderID keeps the first eight characters followed by an ellipsis.
func ShortOrderID(id string) string {
	runes := []rune(id)
	if len(runes) > 8 {
		runes = runes[:8]
	}
	return string(runes) + "..."
}
