package stats

import (
	"testing"

	"github.com/verte-zerg/minedigest/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Source", "Lines", "Chars"}
	rows := [][]string{
		{"a", "12", "1,200"},
		{"ペルソナ", "3", "80"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Source   Lines Chars" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "a           12 1,200" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "ペルソナ     3    80" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatSourcesOverflow(t *testing.T) {
	sources := []model.SourceStat{
		{Name: "A", Chars: 1500, Events: 10},
		{Name: "B", Chars: 20, Events: 1},
		{Name: "C", Chars: 10, Events: 1},
	}
	lines := FormatSources(sources, 2)
	if len(lines) != 4 {
		t.Fatalf("expected header, 2 rows and overflow, got %d: %q", len(lines), lines)
	}
	if lines[1] != "1 A                10 1,500" {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
	if lines[3] != "  ...and 1 more" {
		t.Fatalf("unexpected overflow row: %q", lines[3])
	}
}
