// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"time"

	"github.com/verte-zerg/minedigest/internal/calendar"
	"github.com/verte-zerg/minedigest/internal/model"
)

// TrendBuilder produces per-day character totals for the trend image.
type TrendBuilder struct {
	src EventSource
	cal calendar.Resolver
}

// NewTrendBuilder returns a builder reading from src.
func NewTrendBuilder(src EventSource, cal calendar.Resolver) *TrendBuilder {
	return &TrendBuilder{src: src, cal: cal}
}

// Trend returns one point per day for the days ending at the day containing
// ref, oldest first. Days without activity are present with zero chars.
func (b *TrendBuilder) Trend(ctx context.Context, ref time.Time, days int) ([]model.TrendPoint, error) {
	if days <= 0 {
		return nil, nil
	}
	first := b.cal.Window(ref, days-1)
	last := b.cal.Window(ref, 0)

	events, err := b.src.Events(ctx, first.Start, last.End)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]int, days)
	for _, ev := range events {
		if ev.Source == "" {
			continue
		}
		byDay[b.cal.DayOf(ev.OccurredAt)] += ev.TextLen
	}

	points := make([]model.TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		w := b.cal.Window(ref, i)
		points = append(points, model.TrendPoint{Day: w.Day, Chars: byDay[w.Key()]})
	}
	return points, nil
}

// TrendValues flattens points into plot values.
func TrendValues(points []model.TrendPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = float64(p.Chars)
	}
	return out
}
