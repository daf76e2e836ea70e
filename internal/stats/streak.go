// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"sort"
	"time"

	"github.com/verte-zerg/minedigest/internal/calendar"
)

// ActivitySource lists coarse activity buckets up to an instant.
type ActivitySource interface {
	ActivityBuckets(ctx context.Context, until time.Time) ([]time.Time, error)
}

// StreakCalculator counts consecutive active days.
type StreakCalculator struct {
	src ActivitySource
	cal calendar.Resolver
}

// NewStreakCalculator returns a calculator that maps activity to days with cal.
func NewStreakCalculator(src ActivitySource, cal calendar.Resolver) *StreakCalculator {
	return &StreakCalculator{src: src, cal: cal}
}

// CurrentStreak returns the streak as of the local day containing ref.
// Activity after that day is ignored.
func (c *StreakCalculator) CurrentStreak(ctx context.Context, ref time.Time) (int, error) {
	w := c.cal.Window(ref, 0)
	buckets, err := c.src.ActivityBuckets(ctx, w.End)
	if err != nil {
		return 0, err
	}
	dates := make([]string, 0, len(buckets))
	for _, b := range buckets {
		dates = append(dates, c.cal.DayOf(b))
	}
	return Streak(dates, w.Key()), nil
}

// Streak counts the run of consecutive days ending at the newest date in
// dates. The run only counts when the newest date is refDay or the day
// before it. Dates after refDay are ignored and duplicates collapse.
func Streak(dates []string, refDay string) int {
	uniq := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		if d == "" || d > refDay {
			continue
		}
		uniq[d] = struct{}{}
	}
	if len(uniq) == 0 {
		return 0
	}
	sorted := make([]string, 0, len(uniq))
	for d := range uniq {
		sorted = append(sorted, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))

	yesterday, err := calendar.AddDays(refDay, -1)
	if err != nil {
		return 0
	}
	if sorted[0] != refDay && sorted[0] != yesterday {
		return 0
	}

	streak := 1
	for i := 1; i < len(sorted); i++ {
		want, err := calendar.AddDays(sorted[i-1], -1)
		if err != nil || sorted[i] != want {
			break
		}
		streak++
	}
	return streak
}
