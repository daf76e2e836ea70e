package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/minedigest/internal/calendar"
)

const (
	legacyPrefix = "last_report_"
	legacySuffix = ".txt"
	// LegacyRunID tags markers imported from marker files.
	LegacyRunID = "legacy-import"
)

var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ImportLegacy records a marker for every last_report_YYYY-MM-DD.txt file in
// dir and returns how many markers were new. The file body holds the send
// time; the file modification time is used when the body does not parse.
func ImportLegacy(ctx context.Context, r Recorder, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read legacy dir: %w", err)
	}
	imported := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		day, ok := legacyDay(entry.Name())
		if !ok {
			continue
		}
		sentAt, err := legacySentAt(filepath.Join(dir, entry.Name()), entry)
		if err != nil {
			return imported, err
		}
		added, err := r.Record(ctx, Marker{Day: day, SentAt: sentAt, RunID: LegacyRunID})
		if err != nil {
			return imported, err
		}
		if added {
			imported++
		}
	}
	return imported, nil
}

func legacyDay(name string) (string, bool) {
	if !strings.HasPrefix(name, legacyPrefix) || !strings.HasSuffix(name, legacySuffix) {
		return "", false
	}
	day := strings.TrimSuffix(strings.TrimPrefix(name, legacyPrefix), legacySuffix)
	if _, err := time.Parse(calendar.DayLayout, day); err != nil {
		return "", false
	}
	return day, true
}

func legacySentAt(path string, entry os.DirEntry) (time.Time, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("read %s: %w", entry.Name(), err)
	}
	text := strings.TrimSpace(string(body))
	for _, layout := range legacyTimeLayouts {
		if t, err := time.ParseInLocation(layout, text, time.Local); err == nil {
			return t, nil
		}
	}
	info, err := entry.Info()
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w", entry.Name(), err)
	}
	return info.ModTime(), nil
}
