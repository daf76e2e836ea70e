package reportui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/minedigest/internal/digest"
	"github.com/verte-zerg/minedigest/internal/model"
)

type fakeLoader struct {
	calls []int
	err   error
}

func (f *fakeLoader) Preview(_ context.Context, daysAgo int) (digest.Preview, error) {
	f.calls = append(f.calls, daysAgo)
	day := time.Date(2024, 1, 18-daysAgo, 0, 0, 0, 0, time.UTC)
	st := model.DailyStats{
		Day:                 day.Format("2006-01-02"),
		EventCount:          2,
		TotalChars:          1500,
		DistinctSourceCount: 1,
		Sources:             []model.SourceStat{{Name: "Persona 5", Chars: 1500, Events: 2}},
	}
	d := model.Digest{Day: st.Day, Summary: model.Summary{Title: "Report", Description: "**day**"}}
	return digest.Preview{
		Day:     st.Day,
		DaysAgo: daysAgo,
		Sent:    daysAgo == 2,
		Result:  model.StatsResult{Status: model.StatsOK, Stats: st},
		Report:  model.Report{Day: day, Stats: st, Streak: 3},
		Digest:  &d,
	}, f.err
}

func runCmd(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	m.Update(cmd())
}

func newLoaded(t *testing.T, loader *fakeLoader, daysAgo int) *Model {
	t.Helper()
	m := NewModel(loader, daysAgo, 7)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	runCmd(t, m, m.Init())
	return m
}

func TestNewModelClampsDay(t *testing.T) {
	assert.Equal(t, 7, NewModel(&fakeLoader{}, 30, 7).DaysAgo())
	assert.Equal(t, 0, NewModel(&fakeLoader{}, -2, 7).DaysAgo())
	assert.Equal(t, digest.DefaultMaxDaysBack, NewModel(&fakeLoader{}, 99, 0).DaysAgo())
}

func TestLoadRendersReport(t *testing.T) {
	loader := &fakeLoader{}
	m := newLoaded(t, loader, 1)

	assert.Equal(t, []int{1}, loader.calls)
	view := m.View()
	assert.Contains(t, view, "2024-01-17")
	assert.Contains(t, view, "yesterday")
	assert.Contains(t, view, "pending")
	assert.Contains(t, view, "1,500")
	assert.Contains(t, view, "Persona 5")
}

func TestNavigation(t *testing.T) {
	loader := &fakeLoader{}
	m := newLoaded(t, loader, 1)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 2, m.DaysAgo())
	runCmd(t, m, cmd)
	assert.Contains(t, m.View(), "sent")

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 0, m.DaysAgo())
	require.NotNil(t, cmd)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 0, m.DaysAgo())
	assert.Nil(t, cmd)
}

func TestStalePreviewIgnored(t *testing.T) {
	loader := &fakeLoader{}
	m := newLoaded(t, loader, 1)
	stale := m.load()

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(stale())

	assert.False(t, m.loaded)
	assert.Contains(t, m.View(), "Loading...")
}

func TestCopy(t *testing.T) {
	m := newLoaded(t, &fakeLoader{}, 1)
	var copied string
	m.copy = func(s string) error {
		copied = s
		return nil
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})

	assert.True(t, strings.HasPrefix(copied, "Report"))
	assert.NotContains(t, copied, "**")
	assert.Contains(t, m.View(), "Copied report to clipboard.")

	m.copy = func(string) error { return errors.New("no clipboard") }
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	assert.Contains(t, m.View(), "Copy failed: no clipboard")
}

func TestLoadError(t *testing.T) {
	m := newLoaded(t, &fakeLoader{err: errors.New("boom")}, 1)
	view := m.View()
	assert.Contains(t, view, "Failed to build report.")
	assert.Contains(t, view, "boom")
}

func TestQuit(t *testing.T) {
	m := NewModel(&fakeLoader{}, 1, 7)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRenderPreviewStates(t *testing.T) {
	unavailable := digest.Preview{Result: model.StatsResult{Status: model.StatsUnavailable, Reason: errors.New("locked")}}
	assert.Contains(t, renderPreview(unavailable, true, "", 80), "Event store unavailable: locked")

	empty := digest.Preview{Result: model.StatsResult{Status: model.StatsOK}}
	assert.Contains(t, renderPreview(empty, true, "", 80), "No activity")

	assert.Equal(t, "Loading...", renderPreview(digest.Preview{}, false, "", 80))
}

func TestRenderTrend(t *testing.T) {
	assert.Empty(t, renderTrend(nil, 80))
	points := []model.TrendPoint{
		{Day: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), Chars: 10},
		{Day: time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), Chars: 20},
	}
	out := renderTrend(points, 80)
	assert.Contains(t, out, "Activity, past 2 days")
}
