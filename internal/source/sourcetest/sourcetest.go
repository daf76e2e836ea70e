// Package sourcetest builds throwaway GameSentenceMiner databases for tests.
package sourcetest

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Line is a row to seed into game_lines.
type Line struct {
	At         time.Time
	Game       string
	Text       string
	Screenshot string
	Audio      string
}

// NewDB creates a gsm.db under t.TempDir with the given lines and returns its path.
func NewDB(t *testing.T, lines ...Line) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gsm.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open seed db: %v", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			t.Errorf("close seed db: %v", cerr)
		}
	}()

	if _, err := db.Exec(`CREATE TABLE game_lines (
		id TEXT PRIMARY KEY,
		game_name TEXT,
		line_text TEXT,
		timestamp REAL,
		screenshot_in_anki TEXT,
		audio_in_anki TEXT
	)`); err != nil {
		t.Fatalf("create game_lines: %v", err)
	}
	for i, line := range lines {
		ts := float64(line.At.UnixNano()) / float64(time.Second)
		if _, err := db.Exec(
			`INSERT INTO game_lines (id, game_name, line_text, timestamp, screenshot_in_anki, audio_in_anki)
			VALUES (?, ?, ?, ?, ?, ?)`,
			i, line.Game, line.Text, ts, line.Screenshot, line.Audio,
		); err != nil {
			t.Fatalf("insert line %d: %v", i, err)
		}
	}
	return path
}

// NewEmptyDB creates a SQLite file without the game_lines table.
func NewEmptyDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gsm.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open seed db: %v", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			t.Errorf("close seed db: %v", cerr)
		}
	}()
	if _, err := db.Exec(`CREATE TABLE unrelated (id INTEGER)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return path
}
