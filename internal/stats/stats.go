// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/verte-zerg/minedigest/internal/calendar"
	"github.com/verte-zerg/minedigest/internal/model"
)

// EventSource is the read surface of the event store used by aggregation.
type EventSource interface {
	Events(ctx context.Context, start, end time.Time) ([]model.Event, error)
}

// Aggregator computes per-day statistics from an event source.
type Aggregator struct {
	src    EventSource
	logger *log.Logger
}

// NewAggregator returns an aggregator reading from src.
func NewAggregator(src EventSource, logger *log.Logger) *Aggregator {
	return &Aggregator{src: src, logger: logger}
}

// Aggregate reads the events inside w and summarizes them. A store that cannot
// be read yields an unavailable result instead of an empty day.
func (a *Aggregator) Aggregate(ctx context.Context, w calendar.Window) model.StatsResult {
	if a.src == nil {
		return unavailable(w, fmt.Errorf("no event source configured"), a.logger)
	}
	events, err := a.src.Events(ctx, w.Start, w.End)
	if err != nil {
		return unavailable(w, err, a.logger)
	}
	return model.StatsResult{Status: model.StatsOK, Stats: Summarize(w, events)}
}

func unavailable(w calendar.Window, err error, logger *log.Logger) model.StatsResult {
	if logger != nil {
		logger.Warn("event store unavailable", "day", w.Key(), "err", err)
	}
	return model.StatsResult{
		Status: model.StatsUnavailable,
		Stats:  model.DailyStats{Day: w.Key()},
		Reason: err,
	}
}

// Summarize folds the events that fall inside w into daily statistics.
// Events with an empty source are counted as events and cards but are left out
// of the source breakdown, so TotalChars always equals the breakdown sum.
func Summarize(w calendar.Window, events []model.Event) model.DailyStats {
	out := model.DailyStats{Day: w.Key()}
	bySource := make(map[string]*model.SourceStat)
	var first, last time.Time

	for _, ev := range events {
		if !w.Contains(ev.OccurredAt) {
			continue
		}
		if out.EventCount == 0 || ev.OccurredAt.Before(first) {
			first = ev.OccurredAt
		}
		if out.EventCount == 0 || ev.OccurredAt.After(last) {
			last = ev.OccurredAt
		}
		out.EventCount++
		if ev.AnkiLinked {
			out.AnkiCardCount++
		}
		if ev.Source == "" {
			continue
		}
		s, ok := bySource[ev.Source]
		if !ok {
			s = &model.SourceStat{Name: ev.Source}
			bySource[ev.Source] = s
		}
		s.Events++
		s.Chars += ev.TextLen
		out.TotalChars += ev.TextLen
	}

	out.Sources = make([]model.SourceStat, 0, len(bySource))
	for _, s := range bySource {
		out.Sources = append(out.Sources, *s)
	}
	sortSources(out.Sources)
	out.DistinctSourceCount = len(out.Sources)

	if out.EventCount >= 2 {
		out.ActiveSpanHours = last.Sub(first).Hours()
	}
	return out
}
