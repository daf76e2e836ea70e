// Package calendar maps instants onto local calendar days.
package calendar

import "time"

// DayLayout is the ISO date layout used for day keys.
const DayLayout = "2006-01-02"

// Window is an inclusive local-calendar day range.
type Window struct {
	Day   time.Time
	Start time.Time
	End   time.Time
}

// Key returns the ISO date of the window's day.
func (w Window) Key() string {
	return w.Day.Format(DayLayout)
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Resolver resolves day windows in a single location. Windows and streak
// dates must come from the same Resolver or day boundaries drift.
type Resolver struct {
	loc *time.Location
}

// New returns a resolver for loc. A nil loc means time.Local.
func New(loc *time.Location) Resolver {
	if loc == nil {
		loc = time.Local
	}
	return Resolver{loc: loc}
}

// Location returns the resolver's time zone.
func (r Resolver) Location() *time.Location {
	if r.loc == nil {
		return time.Local
	}
	return r.loc
}

// Window returns the window of the day daysAgo days before ref.
func (r Resolver) Window(ref time.Time, daysAgo int) Window {
	if daysAgo < 0 {
		daysAgo = 0
	}
	y, m, d := ref.In(r.Location()).Date()
	start := time.Date(y, m, d-daysAgo, 0, 0, 0, 0, r.Location())
	sy, sm, sd := start.Date()
	end := time.Date(sy, sm, sd, 23, 59, 59, int(999*time.Millisecond), r.Location())
	return Window{Day: start, Start: start, End: end}
}

// DayOf returns the ISO date of t in the resolver's location.
func (r Resolver) DayOf(t time.Time) string {
	return t.In(r.Location()).Format(DayLayout)
}

// AddDays shifts an ISO date by n calendar days.
func AddDays(day string, n int) (string, error) {
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return "", err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, time.UTC).Format(DayLayout), nil
}
