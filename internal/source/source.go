// Package source reads mined lines from the GameSentenceMiner database.
//
// The database belongs to another process. This package opens it read-only
// and never migrates it.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/minedigest/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// bucketSeconds is the granularity of activity buckets. Every UTC offset in
// use is a multiple of 15 minutes, so a bucket never straddles local midnight.
const bucketSeconds = 15 * 60

// Line is a raw mined line, used for inspection output.
type Line struct {
	OccurredAt time.Time
	Source     string
	Text       string
}

// Reader wraps read-only access to the game_lines table.
type Reader struct {
	db   *sql.DB
	path string
}

// Open opens the event store at path in read-only mode. The file must exist.
func Open(path string) (*Reader, error) {
	if path == "" {
		return nil, fmt.Errorf("event store path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat event store: %w", err)
	}
	db, err := sql.Open("sqlite", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open event store: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &Reader{db: db, path: path}, nil
}

func readOnlyDSN(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	p := filepath.ToSlash(path)
	if filepath.VolumeName(path) != "" {
		p = "/" + p
	}
	return "file:" + p + "?mode=ro&_pragma=busy_timeout(5000)"
}

// Path returns the database path the reader was opened with.
func (r *Reader) Path() string {
	return r.path
}

// Close closes the underlying database.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Events returns every line whose timestamp lies in [start, end].
func (r *Reader) Events(ctx context.Context, start, end time.Time) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT timestamp,
			COALESCE(game_name, ''),
			COALESCE(LENGTH(line_text), 0),
			(COALESCE(screenshot_in_anki, '') != '' OR COALESCE(audio_in_anki, '') != '')
		FROM game_lines
		WHERE timestamp >= ? AND timestamp <= ?`,
		toUnix(start), toUnix(end))
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var events []model.Event
	for rows.Next() {
		var ts float64
		var ev model.Event
		if err := rows.Scan(&ts, &ev.Source, &ev.TextLen, &ev.AnkiLinked); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.OccurredAt = fromUnix(ts)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// ActivityBuckets returns the start of every 15-minute bucket up to and
// including until that holds at least one line, newest first.
func (r *Reader) ActivityBuckets(ctx context.Context, until time.Time) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT CAST(timestamp / ? AS INTEGER) AS bucket
		FROM game_lines
		WHERE timestamp <= ?
		ORDER BY bucket DESC`,
		bucketSeconds, toUnix(until))
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var buckets []time.Time
	for rows.Next() {
		var bucket int64
		if err := rows.Scan(&bucket); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		buckets = append(buckets, time.Unix(bucket*bucketSeconds, 0))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return buckets, nil
}

// Tables lists the tables present in the database.
func (r *Reader) Tables(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Recent returns the newest n lines.
func (r *Reader) Recent(ctx context.Context, n int) ([]Line, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT timestamp, COALESCE(game_name, ''), COALESCE(line_text, '')
		FROM game_lines
		WHERE timestamp IS NOT NULL
		ORDER BY timestamp DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent lines: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var lines []Line
	for rows.Next() {
		var ts float64
		var line Line
		if err := rows.Scan(&ts, &line.Source, &line.Text); err != nil {
			return nil, err
		}
		line.OccurredAt = fromUnix(ts)
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func toUnix(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromUnix(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(math.Round(frac*float64(time.Second))))
}
