package stats

import (
	"context"
	"testing"
	"time"

	"github.com/verte-zerg/minedigest/internal/calendar"
	"github.com/verte-zerg/minedigest/internal/model"
)

func TestTrendFillsMissingDays(t *testing.T) {
	cal := calendar.New(time.UTC)
	ref := time.Date(2024, 1, 18, 8, 0, 0, 0, time.UTC)
	src := &fakeEvents{events: []model.Event{
		{OccurredAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), Source: "A", TextLen: 300},
		{OccurredAt: time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC), Source: "B", TextLen: 200},
		{OccurredAt: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), Source: "", TextLen: 40},
		{OccurredAt: time.Date(2024, 1, 18, 23, 0, 0, 0, time.UTC), Source: "A", TextLen: 5},
		{OccurredAt: time.Date(2024, 1, 19, 1, 0, 0, 0, time.UTC), Source: "A", TextLen: 1000},
	}}

	points, err := NewTrendBuilder(src, cal).Trend(context.Background(), ref, 5)
	if err != nil {
		t.Fatalf("Trend failed: %v", err)
	}
	if len(points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(points))
	}
	want := []struct {
		day   string
		chars int
	}{
		{"2024-01-14", 0},
		{"2024-01-15", 500},
		{"2024-01-16", 0},
		{"2024-01-17", 0},
		{"2024-01-18", 5},
	}
	for i, w := range want {
		if got := points[i].Day.Format(calendar.DayLayout); got != w.day {
			t.Fatalf("point %d: expected day %s, got %s", i, w.day, got)
		}
		if points[i].Chars != w.chars {
			t.Fatalf("point %d: expected %d chars, got %d", i, w.chars, points[i].Chars)
		}
	}
	if src.calls != 1 {
		t.Fatalf("expected a single read, got %d", src.calls)
	}
}

func TestTrendZeroDays(t *testing.T) {
	points, err := NewTrendBuilder(&fakeEvents{}, calendar.New(time.UTC)).Trend(context.Background(), time.Now(), 0)
	if err != nil || points != nil {
		t.Fatalf("expected nil points, got %v, %v", points, err)
	}
}
