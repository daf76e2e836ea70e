package stats

import (
	"testing"

	"github.com/verte-zerg/minedigest/internal/model"
)

func TestTopSources(t *testing.T) {
	sources := []model.SourceStat{
		{Name: "b", Chars: 10},
		{Name: "a", Chars: 10},
		{Name: "c", Chars: 30},
	}
	sortSources(sources)
	top, rest := TopSources(sources, 2)
	if len(top) != 2 || rest != 1 {
		t.Fatalf("expected 2 shown and 1 left, got %d and %d", len(top), rest)
	}
	if top[0].Name != "c" || top[1].Name != "a" {
		t.Fatalf("unexpected order: %v", top)
	}

	all, rest := TopSources(sources, 10)
	if len(all) != 3 || rest != 0 {
		t.Fatalf("expected all sources, got %d and %d", len(all), rest)
	}
}
