package digest

import (
	"context"
	"fmt"

	"github.com/verte-zerg/minedigest/internal/model"
)

// Preview is what a run would report for one day.
type Preview struct {
	Day     string
	DaysAgo int
	Sent    bool
	Result  model.StatsResult
	Report  model.Report
	// Digest is rendered only for days with activity.
	Digest *model.Digest
}

// Preview computes a day's report without delivering or marking it. No lock
// is taken.
func (e *Engine) Preview(ctx context.Context, daysAgo int) (Preview, error) {
	ref := e.cfg.Now()
	w := e.cfg.Calendar.Window(ref, daysAgo)
	p := Preview{Day: w.Key(), DaysAgo: daysAgo}
	logger := e.cfg.Logger.With("day", p.Day, "preview", true)

	sent, err := e.cfg.Ledger.Has(ctx, p.Day)
	if err != nil {
		return p, fmt.Errorf("check ledger: %w", err)
	}
	p.Sent = sent

	p.Result = e.cfg.Stats.Aggregate(ctx, w)
	p.Report = model.Report{Day: w.Day, Stats: p.Result.Stats}
	if p.Result.Status == model.StatsUnavailable || p.Result.Stats.Empty() {
		return p, nil
	}
	p.Report.Streak = e.streak(ctx, ref, logger)
	p.Report.Trend = e.trend(ctx, w, logger)

	d, err := e.cfg.Renderer.Render(p.Report, ref)
	if err != nil {
		return p, fmt.Errorf("render: %w", err)
	}
	p.Digest = &d
	return p, nil
}

// DayState classifies a day in the catch-up range.
type DayState string

const (
	StateSent        DayState = "sent"
	StateOwed        DayState = "owed"
	StateEmpty       DayState = "empty"
	StateUnavailable DayState = "unavailable"
)

// DayStatus is the ledger and activity state of one day.
type DayStatus struct {
	Day     string
	DaysAgo int
	State   DayState
	Chars   int
}

// Status reports the state of the last maxDaysBack days, newest first. Days
// without a marker are aggregated to tell owed days from empty ones.
func (e *Engine) Status(ctx context.Context, maxDaysBack int) ([]DayStatus, error) {
	if maxDaysBack <= 0 {
		maxDaysBack = DefaultMaxDaysBack
	}
	ref := e.cfg.Now()
	out := make([]DayStatus, 0, maxDaysBack)
	for daysAgo := 1; daysAgo <= maxDaysBack; daysAgo++ {
		w := e.cfg.Calendar.Window(ref, daysAgo)
		st := DayStatus{Day: w.Key(), DaysAgo: daysAgo}
		sent, err := e.cfg.Ledger.Has(ctx, st.Day)
		if err != nil {
			return nil, fmt.Errorf("check ledger %s: %w", st.Day, err)
		}
		switch result := e.cfg.Stats.Aggregate(ctx, w); {
		case sent:
			st.State = StateSent
			st.Chars = result.Stats.TotalChars
		case result.Status == model.StatsUnavailable:
			st.State = StateUnavailable
		case result.Stats.Empty():
			st.State = StateEmpty
		default:
			st.State = StateOwed
			st.Chars = result.Stats.TotalChars
		}
		out = append(out, st)
	}
	return out, nil
}
