// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/verte-zerg/minedigest/internal/model"
)

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisLabelWidth      = 7
	axisSeparator       = " │ "
	dayLabelLayout      = "Jan 02"
	barColor            = "\x1b[34m"
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

// PlotTrend renders daily character totals as a braille bar plot.
func PlotTrend(w io.Writer, title string, points []model.TrendPoint, width, height int) error {
	return plotTrend(w, title, points, width, height, false)
}

// PlotTrendWithColor renders the plot with optional forced color output.
func PlotTrendWithColor(w io.Writer, title string, points []model.TrendPoint, width, height int, forceColor bool) error {
	return plotTrend(w, title, points, width, height, forceColor)
}

func plotTrend(w io.Writer, title string, points []model.TrendPoint, width, height int, forceColor bool) error {
	if len(points) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = autoPlotWidth()
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	// Two braille dot columns per cell.
	columns := barColumns(TrendValues(points), width*2)
	peak := 0.0
	total := 0
	for _, p := range points {
		total += p.Chars
		if float64(p.Chars) > peak {
			peak = float64(p.Chars)
		}
	}

	dotRows := height * 4
	cells := makeCells(height, width)
	for x, v := range columns {
		filled := barHeight(v, peak, dotRows)
		for i := 0; i < filled; i++ {
			setBrailleDot(cells, x, dotRows-1-i)
		}
	}

	useColor := shouldUseColor(w, forceColor)
	labels := makeAxisLabels(height, int64(peak))

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "total=%s peak=%s\n", humanize.Comma(int64(total)), humanize.Comma(int64(peak))); err != nil {
		return err
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%*s%s", axisLabelWidth, labels[y], axisSeparator))
		if useColor {
			row.WriteString(barColor)
		}
		for x := 0; x < width; x++ {
			row.WriteRune(brailleFromMask(cells[y][x]))
		}
		if useColor {
			row.WriteString(colorReset)
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, dayAxis(points, width)); err != nil {
		return err
	}
	return nil
}

// barColumns maps every dot column onto the day it belongs to.
func barColumns(values []float64, columns int) []float64 {
	if len(values) == 0 || columns <= 0 {
		return nil
	}
	out := make([]float64, columns)
	for x := 0; x < columns; x++ {
		idx := x * len(values) / columns
		if idx >= len(values) {
			idx = len(values) - 1
		}
		out[x] = values[idx]
	}
	return out
}

func barHeight(v, peak float64, rows int) int {
	if v <= 0 || peak <= 0 || rows <= 0 {
		return 0
	}
	h := int(math.Ceil(v / peak * float64(rows)))
	if h > rows {
		h = rows
	}
	return h
}

func dayAxis(points []model.TrendPoint, width int) string {
	indent := strings.Repeat(" ", axisLabelWidth+utf8.RuneCountInString(axisSeparator))
	left := points[0].Day.Format(dayLabelLayout)
	if len(points) == 1 {
		return indent + left
	}
	right := points[len(points)-1].Day.Format(dayLabelLayout)
	gap := width - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return indent + left + strings.Repeat(" ", gap) + right
}

func autoPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - axisLabelWidth - utf8.RuneCountInString(axisSeparator)
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func makeAxisLabels(height int, peak int64) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = humanize.Comma(peak)
	if height > 1 {
		labels[height-1] = "0"
	}
	return labels
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

func brailleDotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
