// Package ledger records which days have already been reported.
//
// A marker is written only after a confirmed delivery and is never updated.
// Its presence alone means the day is done.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/minedigest/internal/calendar"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Marker records that a day's report was delivered.
type Marker struct {
	Day    string
	SentAt time.Time
	RunID  string
}

// Recorder is the write surface shared by the ledger implementations.
type Recorder interface {
	Has(ctx context.Context, day string) (bool, error)
	Record(ctx context.Context, m Marker) (bool, error)
}

// SQLite persists markers in a local SQLite file.
type SQLite struct {
	db    *sql.DB
	runID string
}

var _ Recorder = (*SQLite)(nil)

// Open opens or creates the ledger database and applies migrations.
func Open(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := newMigrationRunner(db).run(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// WithRunID returns a view of the ledger that stamps new markers with id.
func (s *SQLite) WithRunID(id string) *SQLite {
	return &SQLite{db: s.db, runID: id}
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Has reports whether day already has a marker.
func (s *SQLite) Has(ctx context.Context, day string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM report_markers WHERE day = ?`, day).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check marker %s: %w", day, err)
	}
	return n > 0, nil
}

// Mark records day as delivered at sentAt. Marking an already marked day is
// a no-op that keeps the first marker.
func (s *SQLite) Mark(ctx context.Context, day string, sentAt time.Time) error {
	_, err := s.Record(ctx, Marker{Day: day, SentAt: sentAt, RunID: s.runID})
	return err
}

// Record inserts m unless its day is already marked and reports whether a
// new marker was written.
func (s *SQLite) Record(ctx context.Context, m Marker) (bool, error) {
	if err := validDay(m.Day); err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO report_markers (day, sent_at, run_id) VALUES (?, ?, ?)`,
		m.Day, m.SentAt.UTC().Format(time.RFC3339Nano), m.RunID)
	if err != nil {
		return false, fmt.Errorf("record marker %s: %w", m.Day, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns up to limit markers, newest day first. A limit <= 0 lists all.
func (s *SQLite) List(ctx context.Context, limit int) ([]Marker, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, sent_at, run_id FROM report_markers ORDER BY day DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list markers: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var markers []Marker
	for rows.Next() {
		var m Marker
		var sentAt string
		if err := rows.Scan(&m.Day, &sentAt, &m.RunID); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, sentAt)
		if err != nil {
			return nil, fmt.Errorf("parse sent_at for %s: %w", m.Day, err)
		}
		m.SentAt = parsed
		markers = append(markers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return markers, nil
}

func validDay(day string) error {
	if _, err := time.Parse(calendar.DayLayout, day); err != nil {
		return fmt.Errorf("invalid day %q", day)
	}
	return nil
}
