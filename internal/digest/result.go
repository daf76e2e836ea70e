package digest

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/verte-zerg/minedigest/internal/model"
)

// ErrUnavailable marks a day whose event data could not be read.
var ErrUnavailable = errors.New("event data unavailable")

// OutagePolicy decides how an unreadable event store is treated.
type OutagePolicy string

const (
	// PolicyTreatAsEmpty handles the day like one without activity.
	PolicyTreatAsEmpty OutagePolicy = "treat-as-empty"
	// PolicyFail leaves the day unmarked and fails the run.
	PolicyFail OutagePolicy = "fail"
)

// ParseOutagePolicy validates a configured policy name.
func ParseOutagePolicy(s string) (OutagePolicy, error) {
	switch OutagePolicy(s) {
	case "", PolicyTreatAsEmpty:
		return PolicyTreatAsEmpty, nil
	case PolicyFail:
		return PolicyFail, nil
	default:
		return "", fmt.Errorf("unknown outage policy %q (want %q or %q)", s, PolicyTreatAsEmpty, PolicyFail)
	}
}

// Outcome is what happened to a single day.
type Outcome string

const (
	OutcomeSent        Outcome = "sent"
	OutcomeAlreadySent Outcome = "already-sent"
	OutcomeSkipped     Outcome = "skipped"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeFailed      Outcome = "failed"
)

// DayResult describes one day's run.
type DayResult struct {
	Day     string
	DaysAgo int
	Outcome Outcome
	Stats   model.DailyStats
	Err     error
}

func (r DayResult) fail(outcome Outcome, err error, logger *log.Logger) DayResult {
	r.Outcome = outcome
	r.Err = err
	logger.Error("day not reported", "outcome", outcome, "err", err)
	return r
}

// CatchUpSummary tallies a catch-up run.
type CatchUpSummary struct {
	Days        []DayResult
	Sent        int
	AlreadySent int
	Skipped     int
	Unavailable int
	Failed      int
}

func (s *CatchUpSummary) add(r DayResult) {
	s.Days = append(s.Days, r)
	switch r.Outcome {
	case OutcomeSent:
		s.Sent++
	case OutcomeAlreadySent:
		s.AlreadySent++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeUnavailable:
		s.Unavailable++
	case OutcomeFailed:
		s.Failed++
	}
}

// DaysWith lists the days that ended with outcome, in processing order.
func (s CatchUpSummary) DaysWith(outcome Outcome) []string {
	var days []string
	for _, d := range s.Days {
		if d.Outcome == outcome {
			days = append(days, d.Day)
		}
	}
	return days
}
