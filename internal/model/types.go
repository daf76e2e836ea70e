// Package model defines shared data structures.
package model

import "time"

// Event is a single mined line read from the event store.
type Event struct {
	OccurredAt time.Time
	Source     string
	TextLen    int
	AnkiLinked bool
}

// SourceStat aggregates one source's activity within a day.
type SourceStat struct {
	Name   string
	Chars  int
	Events int
}

// DailyStats summarizes a single local-calendar day.
type DailyStats struct {
	Day                 string
	EventCount          int
	AnkiCardCount       int
	DistinctSourceCount int
	TotalChars          int
	Sources             []SourceStat
	ActiveSpanHours     float64
}

// Empty reports whether the day had no activity worth reporting.
func (s DailyStats) Empty() bool {
	return s.EventCount == 0 && s.TotalChars == 0
}

// StatsStatus tags the outcome of an aggregation.
type StatsStatus int

const (
	// StatsOK means the store was read successfully.
	StatsOK StatsStatus = iota
	// StatsUnavailable means the store could not be read.
	StatsUnavailable
)

// StatsResult separates a quiet day from an unreadable store.
type StatsResult struct {
	Status StatsStatus
	Stats  DailyStats
	Reason error
}

// TrendPoint is one day's character total for the trend image.
type TrendPoint struct {
	Day   time.Time
	Chars int
}

// SummaryField is a labeled value in a report.
type SummaryField struct {
	Name   string
	Value  string
	Inline bool
}

// Summary is the structured document handed to a deliverer.
type Summary struct {
	Title       string
	Description string
	Color       int
	Fields      []SummaryField
	Footer      string
	Timestamp   time.Time
	ImageName   string
}

// Digest bundles a rendered summary with its trend image.
type Digest struct {
	Day     string
	Summary Summary
	Image   []byte
}

// Report is the input to rendering.
type Report struct {
	Day    time.Time
	Stats  DailyStats
	Streak int
	Trend  []TrendPoint
}
