package xslsxGenerator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/sim_trading_dashboard/internal/dashboard"
	"github.com/KotFed0t/sim_trading_dashboard/utils"
	"github.com/xuri/excelize/v2"
)

const (
	PositionsSheet = "持仓"
	OrdersSheet    = "订单"
	HistorySheet   = "交易记录"
)

var ErrEmptySnapshot = errors.New("nothing to export")

var (
	positionHeader = []string{"股票", "数量", "成本价", "现价", "市值", "盈亏", "买入日期"}
	orderHeader    = []string{"订单号", "类型", "股票", "价格", "数量", "状态", "时间"}
	historyHeader  = []string{"时间", "类型", "股票", "价格", "数量", "金额", "盈亏"}
)

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

// Generate writes the cached positions, orders and trades into one workbook,
// one sheet each.
func (g *XSLSXGenerator) Generate(ctx context.Context, snapshot dashboard.Snapshot) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	if len(snapshot.Positions) == 0 && len(snapshot.Orders) == 0 && len(snapshot.History) == 0 {
		return nil, "", ErrEmptySnapshot
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
	if err != nil {
		return nil, "", err
	}

	sheets := []struct {
		name   string
		header []string
		rows   [][]any
	}{
		{name: PositionsSheet, header: positionHeader, rows: positionRows(snapshot)},
		{name: OrdersSheet, header: orderHeader, rows: orderRows(snapshot)},
		{name: HistorySheet, header: historyHeader, rows: historyRows(snapshot)},
	}

	for _, sheet := range sheets {
		if err := g.fillSheet(ctx, f, sheet.name, sheet.header, sheet.rows, headerStyle); err != nil {
			return nil, "", err
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) fillSheet(ctx context.Context, f *excelize.File, name string, header []string, rows [][]any, headerStyle int) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.fillSheet"

	if _, err := f.NewSheet(name); err != nil {
		slog.Error("got error while creating NewSheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			slog.Error("got error while writing row", slog.String("rqID", rqID), slog.String("op", op), slog.String("sheet", name), slog.String("err", err.Error()))
			return err
		}
	}

	return nil
}

func positionRows(snapshot dashboard.Snapshot) [][]any {
	rows := make([][]any, 0, len(snapshot.Positions))
	for _, p := range snapshot.Positions {
		rows = append(rows, []any{p.Stock, p.Quantity, p.AvgCost, p.CurrentPrice, p.MarketValue, p.Profit, p.BuyDate})
	}
	return rows
}

func orderRows(snapshot dashboard.Snapshot) [][]any {
	rows := make([][]any, 0, len(snapshot.Orders))
	for _, o := range snapshot.Orders {
		rows = append(rows, []any{o.OrderID, o.Type, o.Stock, o.Price, o.Quantity, string(o.Status), o.CreatedAt})
	}
	return rows
}

func historyRows(snapshot dashboard.Snapshot) [][]any {
	rows := make([][]any, 0, len(snapshot.History))
	for _, t := range snapshot.History {
		rows = append(rows, []any{t.Datetime, t.Type, t.Stock, t.Price, t.Quantity, t.Amount, t.ProfitOrZero()})
	}
	return rows
}
