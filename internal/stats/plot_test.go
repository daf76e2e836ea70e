package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/minedigest/internal/model"
)

func TestPlotTrend(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]model.TrendPoint, 0, 5)
	for i, chars := range []int{0, 1200, 300, 0, 600} {
		points = append(points, model.TrendPoint{Day: start.AddDate(0, 0, i), Chars: chars})
	}

	var buf bytes.Buffer
	if err := PlotTrend(&buf, "Characters", points, 10, 4); err != nil {
		t.Fatalf("PlotTrend failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Characters") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "total=2,100 peak=1,200") {
		t.Fatalf("expected totals line, got:\n%s", out)
	}
	if !strings.Contains(out, "Jan 01") || !strings.Contains(out, "Jan 05") {
		t.Fatalf("expected day axis labels, got:\n%s", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1+1+4+1 {
		t.Fatalf("expected 7 lines, got %d", len(lines))
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("NO_COLOR must disable escapes")
	}
}

func TestPlotTrendEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotTrend(&buf, "x", nil, 10, 4); err != nil {
		t.Fatalf("PlotTrend failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for empty trend")
	}
}

func TestBarHeight(t *testing.T) {
	if got := barHeight(0, 100, 16); got != 0 {
		t.Fatalf("zero value must be empty, got %d", got)
	}
	if got := barHeight(100, 100, 16); got != 16 {
		t.Fatalf("peak must fill the column, got %d", got)
	}
	if got := barHeight(1, 100, 16); got != 1 {
		t.Fatalf("small values must still show, got %d", got)
	}
	if got := barHeight(5, 0, 16); got != 0 {
		t.Fatalf("zero peak must be empty, got %d", got)
	}
}
