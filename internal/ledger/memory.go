package ledger

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process ledger with the same contract as SQLite.
type Memory struct {
	mu      sync.Mutex
	markers map[string]Marker
	RunID   string
}

var _ Recorder = (*Memory)(nil)

// NewMemory returns an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{markers: make(map[string]Marker)}
}

// Has reports whether day already has a marker.
func (m *Memory) Has(_ context.Context, day string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.markers[day]
	return ok, nil
}

// Mark records day as delivered at sentAt unless it is already marked.
func (m *Memory) Mark(ctx context.Context, day string, sentAt time.Time) error {
	_, err := m.Record(ctx, Marker{Day: day, SentAt: sentAt, RunID: m.RunID})
	return err
}

// Record inserts mk unless its day is already marked.
func (m *Memory) Record(_ context.Context, mk Marker) (bool, error) {
	if err := validDay(mk.Day); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markers == nil {
		m.markers = make(map[string]Marker)
	}
	if _, ok := m.markers[mk.Day]; ok {
		return false, nil
	}
	m.markers[mk.Day] = mk
	return true, nil
}

// List returns up to limit markers, newest day first.
func (m *Memory) List(_ context.Context, limit int) ([]Marker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Marker, 0, len(m.markers))
	for _, mk := range m.markers {
		out = append(out, mk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day > out[j].Day })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Days returns every marked day in ascending order.
func (m *Memory) Days() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	days := make([]string, 0, len(m.markers))
	for d := range m.markers {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}
