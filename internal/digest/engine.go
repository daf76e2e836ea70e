// Package digest decides which days are owed a report and delivers them.
//
// A day is reported at most once: the ledger marker is written only after a
// confirmed delivery, and a marked day is never sent again unless forced.
package digest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/verte-zerg/minedigest/internal/calendar"
	"github.com/verte-zerg/minedigest/internal/model"
)

const (
	// DefaultMaxDaysBack bounds catch-up when no limit is given.
	DefaultMaxDaysBack = 7
	// DefaultTrendDays is the length of the trend series.
	DefaultTrendDays = 30
)

// Ledger records delivered days.
type Ledger interface {
	Has(ctx context.Context, day string) (bool, error)
	Mark(ctx context.Context, day string, sentAt time.Time) error
}

// StatsAggregator computes one day's statistics.
type StatsAggregator interface {
	Aggregate(ctx context.Context, w calendar.Window) model.StatsResult
}

// StreakCalculator computes the activity streak as of an instant.
type StreakCalculator interface {
	CurrentStreak(ctx context.Context, ref time.Time) (int, error)
}

// TrendSource returns the per-day series ending at a day.
type TrendSource interface {
	Trend(ctx context.Context, ref time.Time, days int) ([]model.TrendPoint, error)
}

// Renderer turns a report into a deliverable digest.
type Renderer interface {
	Render(report model.Report, now time.Time) (model.Digest, error)
}

// Deliverer sends a digest.
type Deliverer interface {
	Deliver(ctx context.Context, d model.Digest) error
}

// Locker serializes runs across processes.
type Locker interface {
	Lock(ctx context.Context) (func(), error)
}

// Config wires an Engine. Ledger, Stats, Renderer and Deliverer are required.
type Config struct {
	Ledger          Ledger
	Stats           StatsAggregator
	Streak          StreakCalculator
	Trend           TrendSource
	Renderer        Renderer
	Deliverer       Deliverer
	Locker          Locker
	Calendar        calendar.Resolver
	Now             func() time.Time
	Logger          *log.Logger
	RunID           string
	Policy          OutagePolicy
	TrendDays       int
	DeliveryTimeout time.Duration
	DryRun          bool
}

// Engine runs single-day and catch-up reporting.
type Engine struct {
	cfg Config
}

// New returns an engine with defaults applied to cfg.
func New(cfg Config) (*Engine, error) {
	switch {
	case cfg.Ledger == nil:
		return nil, errors.New("digest: ledger is required")
	case cfg.Stats == nil:
		return nil, errors.New("digest: stats aggregator is required")
	case cfg.Renderer == nil:
		return nil, errors.New("digest: renderer is required")
	case cfg.Deliverer == nil:
		return nil, errors.New("digest: deliverer is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyTreatAsEmpty
	}
	if cfg.TrendDays <= 0 {
		cfg.TrendDays = DefaultTrendDays
	}
	if cfg.RunID != "" {
		cfg.Logger = cfg.Logger.With("run", cfg.RunID)
	}
	return &Engine{cfg: cfg}, nil
}

// RunDay reports the day daysAgo days before today. Unless force is set, a
// day that already has a marker is left alone. The error is non-nil when the
// day failed or its data was unavailable.
func (e *Engine) RunDay(ctx context.Context, daysAgo int, force bool) (DayResult, error) {
	res := e.runDay(ctx, e.cfg.Now(), daysAgo, force)
	return res, res.Err
}

// CatchUp reports every owed day from yesterday back to maxDaysBack days ago,
// newest first. Today is never included. One day's failure does not stop the
// others; their errors are joined.
func (e *Engine) CatchUp(ctx context.Context, maxDaysBack int) (CatchUpSummary, error) {
	if maxDaysBack <= 0 {
		maxDaysBack = DefaultMaxDaysBack
	}
	ref := e.cfg.Now()
	e.cfg.Logger.Info("checking for missing reports", "days", maxDaysBack)

	var summary CatchUpSummary
	var errs []error
	for daysAgo := 1; daysAgo <= maxDaysBack; daysAgo++ {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res := e.runDay(ctx, ref, daysAgo, false)
		summary.add(res)
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Day, res.Err))
		}
	}
	e.cfg.Logger.Info("catch-up finished",
		"sent", summary.Sent,
		"already_sent", summary.AlreadySent,
		"skipped", summary.Skipped,
		"unavailable", summary.Unavailable,
		"failed", summary.Failed,
	)
	return summary, errors.Join(errs...)
}

func (e *Engine) runDay(ctx context.Context, ref time.Time, daysAgo int, force bool) DayResult {
	w := e.cfg.Calendar.Window(ref, daysAgo)
	res := DayResult{Day: w.Key(), DaysAgo: daysAgo}
	logger := e.cfg.Logger.With("day", res.Day)

	if e.cfg.Locker != nil {
		release, err := e.cfg.Locker.Lock(ctx)
		if err != nil {
			return res.fail(OutcomeFailed, fmt.Errorf("acquire lock: %w", err), logger)
		}
		defer release()
	}

	if !force {
		sent, err := e.cfg.Ledger.Has(ctx, res.Day)
		if err != nil {
			return res.fail(OutcomeFailed, fmt.Errorf("check ledger: %w", err), logger)
		}
		if sent {
			logger.Info("report already sent")
			res.Outcome = OutcomeAlreadySent
			return res
		}
	}

	result := e.cfg.Stats.Aggregate(ctx, w)
	if result.Status == model.StatsUnavailable {
		if e.cfg.Policy == PolicyFail {
			return res.fail(OutcomeUnavailable, fmt.Errorf("%w: %v", ErrUnavailable, result.Reason), logger)
		}
		logger.Warn("event store unavailable, treating day as empty", "err", result.Reason)
		result.Stats = model.DailyStats{Day: res.Day}
	}
	res.Stats = result.Stats
	if res.Stats.Empty() {
		logger.Info("no activity, skipping")
		res.Outcome = OutcomeSkipped
		return res
	}

	report := model.Report{Day: w.Day, Stats: res.Stats, Streak: e.streak(ctx, ref, logger)}
	report.Trend = e.trend(ctx, w, logger)

	now := e.cfg.Now()
	digest, err := e.cfg.Renderer.Render(report, now)
	if err != nil {
		return res.fail(OutcomeFailed, fmt.Errorf("render: %w", err), logger)
	}

	if err := e.deliver(ctx, digest); err != nil {
		return res.fail(OutcomeFailed, fmt.Errorf("deliver: %w", err), logger)
	}

	if e.cfg.DryRun {
		logger.Info("dry run, report written and not marked", "chars", res.Stats.TotalChars)
		res.Outcome = OutcomeSent
		return res
	}
	if err := e.cfg.Ledger.Mark(ctx, res.Day, now); err != nil {
		return res.fail(OutcomeFailed, fmt.Errorf("delivered but not marked: %w", err), logger)
	}
	logger.Info("report sent", "chars", res.Stats.TotalChars, "events", res.Stats.EventCount, "streak", report.Streak)
	res.Outcome = OutcomeSent
	return res
}

// streak is measured at the run's reference instant, so a backfilled day
// reports the streak as it stands now.
func (e *Engine) streak(ctx context.Context, ref time.Time, logger *log.Logger) int {
	if e.cfg.Streak == nil {
		return 0
	}
	n, err := e.cfg.Streak.CurrentStreak(ctx, ref)
	if err != nil {
		logger.Warn("streak unavailable, reporting 0", "err", err)
		return 0
	}
	return n
}

func (e *Engine) trend(ctx context.Context, w calendar.Window, logger *log.Logger) []model.TrendPoint {
	if e.cfg.Trend == nil {
		return nil
	}
	points, err := e.cfg.Trend.Trend(ctx, w.Start, e.cfg.TrendDays)
	if err != nil {
		logger.Warn("trend unavailable, sending without image", "err", err)
		return nil
	}
	return points
}

func (e *Engine) deliver(ctx context.Context, d model.Digest) error {
	if e.cfg.DeliveryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.DeliveryTimeout)
		defer cancel()
	}
	return e.cfg.Deliverer.Deliver(ctx, d)
}
