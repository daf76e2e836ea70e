package render

import (
	"bytes"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/verte-zerg/minedigest/internal/model"
)

const (
	trendTitle      = "Activity - Past %d Days"
	trendWidth      = 1200
	trendHeight     = 400
	trendLabelEvery = 3
	trendLabelDate  = "01/02"
)

var (
	colorBackground = drawing.ColorFromHex("2b2d31")
	colorActiveBar  = drawing.ColorFromHex("5865f2")
	colorEmptyBar   = drawing.ColorFromHex("404249")
	colorAxisText   = drawing.ColorFromHex("b5bac1")
	colorTitle      = drawing.ColorFromHex("ffffff")
)

// TrendPNG draws daily character totals as a dark-themed bar chart.
func TrendPNG(points []model.TrendPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("trend has no points")
	}

	bars := make([]chart.Value, 0, len(points))
	peak := 0
	for i, p := range points {
		label := ""
		if i%trendLabelEvery == 0 {
			label = p.Day.Format(trendLabelDate)
		}
		fill := colorEmptyBar
		if p.Chars > 0 {
			fill = colorActiveBar
		}
		if p.Chars > peak {
			peak = p.Chars
		}
		bars = append(bars, chart.Value{
			Value: float64(p.Chars),
			Label: label,
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		})
	}
	top := float64(peak)
	if top <= 0 {
		top = 1
	}

	barWidth := (trendWidth - 120) / len(points) * 4 / 5
	if barWidth < 1 {
		barWidth = 1
	}
	graph := chart.BarChart{
		Title:      fmt.Sprintf(trendTitle, len(points)),
		TitleStyle: chart.Style{FontColor: colorTitle, FontSize: 14},
		Width:      trendWidth,
		Height:     trendHeight,
		BarWidth:   barWidth,
		Background: chart.Style{
			FillColor: colorBackground,
			Padding:   chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{FillColor: colorBackground},
		XAxis:  chart.Style{FontColor: colorAxisText, FontSize: 8, StrokeColor: colorEmptyBar},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: colorAxisText, FontSize: 8, StrokeColor: colorEmptyBar},
			Range: &chart.ContinuousRange{Min: 0, Max: top},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return humanize.Comma(int64(f))
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render trend: %w", err)
	}
	return buf.Bytes(), nil
}
