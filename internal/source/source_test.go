package source

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/minedigest/internal/source/sourcetest"
)

func openSeeded(t *testing.T, lines ...sourcetest.Line) *Reader {
	t.Helper()
	r, err := Open(sourcetest.NewDB(t, lines...))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestEvents_FiltersInclusiveRange(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	end := day.Add(24*time.Hour - time.Millisecond)
	r := openSeeded(t,
		sourcetest.Line{At: day.Add(-time.Second), Game: "Before", Text: "x"},
		sourcetest.Line{At: day, Game: "Persona 5", Text: "こんにちは", Screenshot: "img.png"},
		sourcetest.Line{At: day.Add(23*time.Hour + 59*time.Minute + 59*time.Second), Game: "Persona 5", Text: "abc"},
		sourcetest.Line{At: day.Add(24 * time.Hour), Game: "After", Text: "y"},
	)

	events, err := r.Events(context.Background(), day, end)
	require.NoError(t, err)
	require.Len(t, events, 2)

	var chars, anki int
	for _, ev := range events {
		assert.Equal(t, "Persona 5", ev.Source)
		chars += ev.TextLen
		if ev.AnkiLinked {
			anki++
		}
	}
	assert.Equal(t, 8, chars, "LENGTH counts characters, not bytes")
	assert.Equal(t, 1, anki)
}

func TestEvents_NullColumnsBecomeZeroValues(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	r := openSeeded(t, sourcetest.Line{At: at})

	events, err := r.Events(context.Background(), at.Add(-time.Hour), at.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "", events[0].Source)
	assert.Equal(t, 0, events[0].TextLen)
	assert.False(t, events[0].AnkiLinked)
	assert.True(t, events[0].OccurredAt.Equal(at))
}

func TestEvents_MissingTableIsError(t *testing.T) {
	r, err := Open(sourcetest.NewEmptyDB(t))
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	_, err = r.Events(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.db"))
	require.Error(t, err)

	_, err = Open("")
	require.Error(t, err)
}

func TestActivityBuckets_NewestFirstAndBounded(t *testing.T) {
	base := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	r := openSeeded(t,
		sourcetest.Line{At: base.Add(-48 * time.Hour), Text: "a"},
		sourcetest.Line{At: base, Text: "b"},
		sourcetest.Line{At: base.Add(5 * time.Minute), Text: "c"},
		sourcetest.Line{At: base.Add(48 * time.Hour), Text: "future"},
	)

	buckets, err := r.ActivityBuckets(context.Background(), base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.True(t, buckets[0].Equal(base))
	assert.True(t, buckets[1].Equal(base.Add(-48*time.Hour)))
}

func TestTablesAndRecent(t *testing.T) {
	base := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	r := openSeeded(t,
		sourcetest.Line{At: base, Game: "A", Text: "first"},
		sourcetest.Line{At: base.Add(time.Minute), Game: "B", Text: "second"},
	)
	ctx := context.Background()

	tables, err := r.Tables(ctx)
	require.NoError(t, err)
	assert.Contains(t, tables, "game_lines")

	lines, err := r.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "second", lines[0].Text)
	assert.Equal(t, "B", lines[0].Source)

	none, err := r.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReadOnlyDSN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gsm.db")
	dsn := readOnlyDSN(path)
	assert.True(t, strings.HasPrefix(dsn, "file:"), dsn)
	assert.Contains(t, dsn, filepath.ToSlash(path))
	assert.Contains(t, dsn, "mode=ro")
}

func TestUnixRoundTrip(t *testing.T) {
	at := time.Date(2024, 1, 15, 23, 59, 59, 0, time.UTC)
	assert.True(t, fromUnix(toUnix(at)).Equal(at))
}
