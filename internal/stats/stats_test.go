package stats

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/verte-zerg/minedigest/internal/calendar"
	"github.com/verte-zerg/minedigest/internal/model"
)

type fakeEvents struct {
	events []model.Event
	err    error
	calls  int
}

func (f *fakeEvents) Events(_ context.Context, start, end time.Time) ([]model.Event, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Event
	for _, ev := range f.events {
		if !ev.OccurredAt.Before(start) && !ev.OccurredAt.After(end) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func dayWindow(t *testing.T) calendar.Window {
	t.Helper()
	cal := calendar.New(time.UTC)
	return cal.Window(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), 0)
}

func TestSummarizeCountsAndRanks(t *testing.T) {
	w := dayWindow(t)
	events := []model.Event{
		{OccurredAt: w.Start, Source: "B", TextLen: 100, AnkiLinked: true},
		{OccurredAt: w.Start.Add(2 * time.Hour), Source: "A", TextLen: 300},
		{OccurredAt: w.Start.Add(3 * time.Hour), Source: "C", TextLen: 100},
		{OccurredAt: w.Start.Add(4 * time.Hour), Source: "B", TextLen: 50, AnkiLinked: true},
	}

	got := Summarize(w, events)

	if got.Day != "2024-01-15" {
		t.Fatalf("unexpected day %q", got.Day)
	}
	if got.EventCount != 4 || got.AnkiCardCount != 2 {
		t.Fatalf("unexpected counts: events=%d anki=%d", got.EventCount, got.AnkiCardCount)
	}
	if got.TotalChars != 550 {
		t.Fatalf("expected 550 chars, got %d", got.TotalChars)
	}
	if got.DistinctSourceCount != 3 {
		t.Fatalf("expected 3 sources, got %d", got.DistinctSourceCount)
	}
	wantOrder := []string{"A", "B", "C"}
	for i, name := range wantOrder {
		if got.Sources[i].Name != name {
			t.Fatalf("unexpected order: %+v", got.Sources)
		}
	}
	if got.Sources[1].Events != 2 || got.Sources[1].Chars != 150 {
		t.Fatalf("unexpected B stats: %+v", got.Sources[1])
	}
	if got.ActiveSpanHours != 4 {
		t.Fatalf("expected 4h span, got %v", got.ActiveSpanHours)
	}
}

func TestSummarizeTotalMatchesBreakdown(t *testing.T) {
	w := dayWindow(t)
	events := []model.Event{
		{OccurredAt: w.Start.Add(time.Hour), Source: "A", TextLen: 10},
		{OccurredAt: w.Start.Add(2 * time.Hour), Source: "", TextLen: 999, AnkiLinked: true},
		{OccurredAt: w.Start.Add(3 * time.Hour), Source: "B", TextLen: 5},
	}

	got := Summarize(w, events)

	sum := 0
	for _, s := range got.Sources {
		sum += s.Chars
	}
	if got.TotalChars != sum {
		t.Fatalf("total %d != breakdown sum %d", got.TotalChars, sum)
	}
	if got.EventCount != 3 || got.AnkiCardCount != 1 {
		t.Fatalf("empty-source event should still count: %+v", got)
	}
	if got.DistinctSourceCount != 2 {
		t.Fatalf("empty source must not be listed: %+v", got.Sources)
	}
}

func TestSummarizeWindowBoundaries(t *testing.T) {
	w := dayWindow(t)
	lastSecond := time.Date(2024, 1, 15, 23, 59, 59, 0, time.UTC)
	events := []model.Event{
		{OccurredAt: w.Start.Add(-time.Nanosecond), Source: "A", TextLen: 1},
		{OccurredAt: lastSecond, Source: "A", TextLen: 2},
		{OccurredAt: w.End.Add(time.Millisecond), Source: "A", TextLen: 4},
	}

	got := Summarize(w, events)

	if got.EventCount != 1 || got.TotalChars != 2 {
		t.Fatalf("expected only the 23:59:59 event, got %+v", got)
	}
	if got.ActiveSpanHours != 0 {
		t.Fatalf("single event span must be 0, got %v", got.ActiveSpanHours)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(dayWindow(t), nil)
	if !got.Empty() {
		t.Fatalf("expected empty stats, got %+v", got)
	}
	if got.Sources == nil || len(got.Sources) != 0 {
		t.Fatalf("expected empty non-nil breakdown")
	}
}

func TestAggregateUnavailable(t *testing.T) {
	src := &fakeEvents{err: errors.New("no such table: game_lines")}
	agg := NewAggregator(src, log.New(io.Discard))

	res := agg.Aggregate(context.Background(), dayWindow(t))

	if res.Status != model.StatsUnavailable {
		t.Fatalf("expected unavailable, got %v", res.Status)
	}
	if res.Reason == nil || res.Stats.Day != "2024-01-15" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestAggregateNilSource(t *testing.T) {
	res := NewAggregator(nil, nil).Aggregate(context.Background(), dayWindow(t))
	if res.Status != model.StatsUnavailable {
		t.Fatalf("expected unavailable, got %v", res.Status)
	}
}

func TestAggregateReadsOnce(t *testing.T) {
	w := dayWindow(t)
	src := &fakeEvents{events: []model.Event{{OccurredAt: w.Start.Add(time.Hour), Source: "A", TextLen: 7}}}
	res := NewAggregator(src, log.New(io.Discard)).Aggregate(context.Background(), w)

	if res.Status != model.StatsOK || res.Stats.TotalChars != 7 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if src.calls != 1 {
		t.Fatalf("expected one read, got %d", src.calls)
	}
}
