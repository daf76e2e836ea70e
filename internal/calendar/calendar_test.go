package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokyo(t *testing.T) *time.Location {
	t.Helper()
	return time.FixedZone("JST", 9*60*60)
}

func TestWindow_Today(t *testing.T) {
	r := New(tokyo(t))
	ref := time.Date(2024, 1, 18, 13, 45, 0, 0, r.Location())

	w := r.Window(ref, 0)

	assert.Equal(t, "2024-01-18", w.Key())
	assert.Equal(t, time.Date(2024, 1, 18, 0, 0, 0, 0, r.Location()), w.Start)
	assert.Equal(t, time.Date(2024, 1, 18, 23, 59, 59, int(999*time.Millisecond), r.Location()), w.End)
}

func TestWindow_DaysAgoCrossesMonth(t *testing.T) {
	r := New(tokyo(t))
	ref := time.Date(2024, 3, 2, 0, 30, 0, 0, r.Location())

	w := r.Window(ref, 3)

	assert.Equal(t, "2024-02-28", w.Key())
}

func TestWindow_NegativeOffsetClamped(t *testing.T) {
	r := New(tokyo(t))
	ref := time.Date(2024, 1, 18, 8, 0, 0, 0, r.Location())

	assert.Equal(t, r.Window(ref, 0), r.Window(ref, -2))
}

func TestWindow_UsesResolverZoneNotRefZone(t *testing.T) {
	r := New(tokyo(t))
	// 2024-01-17 20:00 UTC is already 2024-01-18 in Tokyo.
	ref := time.Date(2024, 1, 17, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-01-18", r.Window(ref, 0).Key())
	assert.Equal(t, "2024-01-18", r.DayOf(ref))
}

func TestWindow_ContainsBoundaries(t *testing.T) {
	r := New(tokyo(t))
	ref := time.Date(2024, 1, 15, 12, 0, 0, 0, r.Location())
	w := r.Window(ref, 0)

	lastSecond := time.Date(2024, 1, 15, 23, 59, 59, 0, r.Location())
	nextMidnight := time.Date(2024, 1, 16, 0, 0, 0, 0, r.Location())

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(lastSecond))
	assert.False(t, w.Contains(nextMidnight))
	assert.False(t, r.Window(nextMidnight, 0).Contains(lastSecond))
}

func TestWindow_DSTDayKeepsCalendarBounds(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	r := New(ny)
	ref := time.Date(2024, 3, 11, 9, 0, 0, 0, ny)

	w := r.Window(ref, 1)

	assert.Equal(t, "2024-03-10", w.Key())
	assert.Equal(t, 0, w.Start.Hour())
	assert.Equal(t, 23, w.End.Hour())
	assert.Equal(t, 10, w.End.Day())
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2024-03-01", -1)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)

	_, err = AddDays("nope", 1)
	assert.Error(t, err)
}

func TestNew_NilLocationIsLocal(t *testing.T) {
	assert.Equal(t, time.Local, New(nil).Location())
}
