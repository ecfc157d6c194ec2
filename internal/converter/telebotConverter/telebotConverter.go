package telebotConverter

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/KotFed0t/sim_trading_dashboard/internal/format"
	"github.com/KotFed0t/sim_trading_dashboard/internal/model"
	"github.com/KotFed0t/sim_trading_dashboard/internal/model/tg/tgCallback"
	tele "gopkg.in/telebot.v4"
)

// tableBudget bounds the rendered rows so the whole message stays under the
// 4096 character limit of Telegram. Page sizes are capped so that a full page
// fits; rows past the budget are only dropped for unusually long cells.
const tableBudget = 3000

// maxCancelButtons keeps the keyboard well below the 100 buttons Telegram
// accepts per message.
const maxCancelButtons = 50

var tabs = []struct {
	panel model.Panel
	label string
}{
	{panel: model.PanelQuote, label: "📈 行情"},
	{panel: model.PanelPortfolio, label: "💼 持仓"},
	{panel: model.PanelOrders, label: "📝 订单"},
	{panel: model.PanelHistory, label: "📜 成交"},
}

// cellMarks prefixes styled cells. Profit cells already carry their sign.
var cellMarks = map[string]string{
	model.StyleTypeBuy:        "🔴",
	model.StyleTypeSell:       "🟢",
	model.StyleStatusPending:  "⏳",
	model.StyleStatusFilled:   "✔",
	model.StyleStatusCanceled: "✖",
}

func PhaseMark(color model.PhaseColor) string {
	switch color {
	case model.PhaseColorActive:
		return "🟢"
	case model.PhaseColorClosed:
		return "⚪"
	default:
		return "🟠"
	}
}

func StatusMark(kind model.StatusKind) string {
	switch kind {
	case model.StatusSuccess:
		return "✅"
	case model.StatusError:
		return "❌"
	case model.StatusWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

func HelpResponse() string {
	var sb strings.Builder
	sb.WriteString("可用命令:\n")
	sb.WriteString("/start - 打开交易面板\n")
	sb.WriteString("/stock <代码> - 查询股票, 例如 /stock sh600519\n")
	sb.WriteString("/buy <价格> <手数> - 买入当前股票, 省略价格时使用最新价\n")
	sb.WriteString("/sell <价格> <手数> - 卖出当前股票\n")
	sb.WriteString("/positions [关键字] - 持仓\n")
	sb.WriteString("/orders [关键字] - 订单\n")
	sb.WriteString("/history [关键字] - 交易记录\n")
	sb.WriteString("/chart - 资产曲线\n")
	sb.WriteString("/export - 导出 Excel")
	return sb.String()
}

// DashboardResponse renders the header and the active panel as an HTML
// message together with its inline keyboard.
func DashboardResponse(d model.Dashboard) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	writeHeader(&sb, d.Header)
	sb.WriteString("\n")

	rows := []tele.Row{tabRow(markup, d.Panel)}

	switch d.Panel {
	case model.PanelPortfolio:
		writePortfolio(&sb, d.Portfolio)
		rows = append(rows, pagerRow(markup, model.PanelPortfolio, d.Portfolio.Positions))
	case model.PanelOrders:
		writeTable(&sb, "📝 当前订单", d.Orders)
		rows = append(rows, cancelRows(markup, d.Orders)...)
		rows = append(rows, pagerRow(markup, model.PanelOrders, d.Orders))
	case model.PanelHistory:
		writeTable(&sb, "📜 交易记录", d.History)
		rows = append(rows, pagerRow(markup, model.PanelHistory, d.History))
	default:
		writeQuote(&sb, d.Quote)
		if len(d.SampleStocks) > 0 {
			rows = append(rows, stockRow(markup, d.SampleStocks))
		}
		rows = append(rows, markup.Row(markup.Data("🔍 查询股票", tgCallback.Search, string(model.PanelQuote))))
	}

	markup.Inline(rows...)

	return sb.String(), markup
}

func writeHeader(sb *strings.Builder, h model.Header) {
	if !h.Clock.IsZero() {
		sb.WriteString(fmt.Sprintf("🕒 %s\n", format.Clock(h.Clock)))
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", PhaseMark(h.Phase.Color), html.EscapeString(h.Phase.Label)))
	if h.Status.Text != "" {
		sb.WriteString(fmt.Sprintf("%s %s\n", StatusMark(h.Status.Kind), html.EscapeString(h.Status.Text)))
	}
}

func writeQuote(sb *strings.Builder, q model.QuoteView) {
	if !q.Loaded {
		sb.WriteString(fmt.Sprintf("<b>%s</b>\n暂无行情数据\n", html.EscapeString(q.Title)))
		return
	}

	mark := upDownMark(q.ChangeUp)
	sb.WriteString(fmt.Sprintf("<b>📊 %s</b>\n", html.EscapeString(q.Title)))
	sb.WriteString(fmt.Sprintf("现价 <b>%s</b> %s %s\n\n", q.Current, mark, q.Change))

	for _, line := range q.Lines {
		sb.WriteString(fmt.Sprintf("%s: %s\n", line.Label, line.Value))
	}

	if len(q.Book) > 0 {
		sb.WriteString("\n<pre>")
		for i := len(q.Book) - 1; i >= 0; i-- {
			b := q.Book[i]
			sb.WriteString(fmt.Sprintf("卖%d %10s %12s\n", b.Level, b.AskPrice, b.AskVolume))
		}
		sb.WriteString("------------------------------\n")
		for _, b := range q.Book {
			sb.WriteString(fmt.Sprintf("买%d %10s %12s\n", b.Level, b.BidPrice, b.BidVolume))
		}
		sb.WriteString("</pre>\n")
	}

	if q.TradePrice != "" {
		sb.WriteString(fmt.Sprintf("\n交易价格: <code>%s</code> (/buy 手数, /sell 手数)\n", q.TradePrice))
	}
}

func writePortfolio(sb *strings.Builder, p model.PortfolioView) {
	sb.WriteString("<b>💼 资产概览</b>\n")
	sb.WriteString(fmt.Sprintf("总资产: %s\n", p.TotalAssets))
	sb.WriteString(fmt.Sprintf("股票市值: %s\n", p.StockValue))
	sb.WriteString(fmt.Sprintf("总盈亏: %s %s\n", p.TotalProfit, upDownMark(p.TotalProfitUp)))
	sb.WriteString(fmt.Sprintf("今日盈亏: %s %s\n", p.TodayProfit, upDownMark(p.TodayProfitUp)))
	if p.EquitySamples > 0 {
		sb.WriteString("资产曲线: /chart\n")
	}
	sb.WriteString("\n")
	writeTable(sb, "📋 持仓明细", p.Positions)
}

func upDownMark(up bool) string {
	if up {
		return "▲"
	}
	return "▼"
}

func writeTable(sb *strings.Builder, title string, t model.Table) {
	sb.WriteString(fmt.Sprintf("<b>%s</b>", title))
	if t.SearchTerm != "" {
		sb.WriteString(fmt.Sprintf(" 🔍 %s", html.EscapeString(t.SearchTerm)))
	}
	sb.WriteString("\n<pre>")
	sb.WriteString(html.EscapeString(strings.Join(t.Columns, " | ")))
	sb.WriteString("\n")

	if t.Empty() {
		sb.WriteString(html.EscapeString(t.Placeholder))
		sb.WriteString("\n")
	}

	used := 0
	for i, row := range t.Rows {
		line := html.EscapeString(rowText(row)) + "\n"
		used += utf8.RuneCountInString(line)
		if used > tableBudget {
			sb.WriteString(fmt.Sprintf("... 还有 %d 条\n", len(t.Rows)-i))
			break
		}
		sb.WriteString(line)
	}
	sb.WriteString("</pre>\n")
	sb.WriteString(t.PageInfo)
	sb.WriteString("\n")
}

func rowText(row model.Row) string {
	parts := make([]string, 0, len(row.Cells))
	for _, c := range row.Cells {
		parts = append(parts, cellMarks[c.Style]+c.Text)
	}
	return strings.Join(parts, " | ")
}

func tabRow(markup *tele.ReplyMarkup, active model.Panel) tele.Row {
	btns := make([]tele.Btn, 0, len(tabs))
	for _, tab := range tabs {
		label := tab.label
		if tab.panel == active {
			label = "• " + label
		}
		btns = append(btns, markup.Data(label, tgCallback.Tab, string(tab.panel)))
	}
	return markup.Row(btns...)
}

func pagerRow(markup *tele.ReplyMarkup, panel model.Panel, t model.Table) tele.Row {
	btns := make([]tele.Btn, 0, 3)
	if !t.PrevDisabled {
		btns = append(btns, markup.Data("◀ 上一页", tgCallback.Prev, string(panel)))
	}
	btns = append(btns, markup.Data("🔍 搜索", tgCallback.Search, string(panel)))
	if !t.NextDisabled {
		btns = append(btns, markup.Data("下一页 ▶", tgCallback.Next, string(panel)))
	}
	return markup.Row(btns...)
}

// cancelRows offers one cancel button per pending order on the page, two
// per row.
func cancelRows(markup *tele.ReplyMarkup, t model.Table) []tele.Row {
	btns := make([]tele.Btn, 0)
	for _, row := range t.Rows {
		if row.CancelOrderID == "" {
			continue
		}
		if len(btns) == maxCancelButtons {
			break
		}
		btns = append(btns, markup.Data("撤单 "+format.ShortOrderID(row.CancelOrderID), tgCallback.Cancel, row.CancelOrderID))
	}
	return markup.Split(2, btns)
}

func stockRow(markup *tele.ReplyMarkup, stocks []string) tele.Row {
	btns := make([]tele.Btn, 0, len(stocks))
	for _, code := range stocks {
		btns = append(btns, markup.Data(strings.ToUpper(code), tgCallback.Stock, code))
	}
	return markup.Row(btns...)
}
