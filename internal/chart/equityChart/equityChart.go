// Package equityChart draws the total assets curve of the portfolio as a
// standalone HTML page.
package equityChart

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/sim_trading_dashboard/internal/format"
	"github.com/KotFed0t/sim_trading_dashboard/internal/model/tradingModel"
	"github.com/KotFed0t/sim_trading_dashboard/utils"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrNoEquityData = errors.New("no equity history")

const (
	seriesName      = "总资产"
	colorLine       = "#3b82f6"
	colorBackground = "#0f172a"
	colorText       = "#e2e8f0"
)

type EquityChart struct{}

func New() *EquityChart {
	return &EquityChart{}
}

// Render returns the HTML document of the equity line chart. The x axis is
// labelled "H:MM" from the sample timestamps.
func (c *EquityChart) Render(ctx context.Context, samples []tradingModel.EquitySample) ([]byte, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "EquityChart.Render"

	if len(samples) == 0 {
		return nil, ErrNoEquityData
	}

	labels := make([]string, 0, len(samples))
	values := make([]opts.LineData, 0, len(samples))
	for _, s := range samples {
		labels = append(labels, format.EquityLabel(s.Timestamp))
		values = append(values, opts.LineData{Value: s.TotalAssets})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       seriesName,
			Width:           "1000px",
			Height:          "500px",
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      seriesName,
			Subtitle:   format.Money(samples[len(samples)-1].TotalAssets),
			TitleStyle: &opts.TextStyle{Color: colorText},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), TextStyle: &opts.TextStyle{Color: colorText}}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorText},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorText, Formatter: format.CurrencySymbol + "{value}"},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorText, Opacity: opts.Float(0.1)}},
		}),
	)

	line.SetXAxis(labels).AddSeries(seriesName, values,
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorLine, Width: 2}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: colorLine, Opacity: opts.Float(0.1)}),
	)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		slog.Error("got error while rendering chart", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return buf.Bytes(), nil
}
