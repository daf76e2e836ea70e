// Package lock provides an advisory cross-process file lock.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const defaultPoll = 100 * time.Millisecond

// errBusy is returned by tryLock when another process holds the lock.
var errBusy = errors.New("lock busy")

// File is an exclusive lock backed by a file on disk.
type File struct {
	path string
	poll time.Duration
}

// New returns a lock on path. The file is created on first use.
func New(path string) *File {
	return &File{path: path, poll: defaultPoll}
}

// Path returns the lock file path.
func (l *File) Path() string {
	return l.path
}

// Lock blocks until the lock is held or ctx ends. The returned func releases it.
func (l *File) Lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()
	for {
		err := tryLock(f)
		if err == nil {
			return func() {
				if uerr := unlock(f); uerr != nil {
					// Best-effort unlock; closing the file releases it anyway.
					_ = uerr
				}
				if cerr := f.Close(); cerr != nil {
					// Best-effort close.
					_ = cerr
				}
			}, nil
		}
		if !errors.Is(err, errBusy) {
			if cerr := f.Close(); cerr != nil {
				// Best-effort close.
				_ = cerr
			}
			return nil, fmt.Errorf("lock %s: %w", l.path, err)
		}
		select {
		case <-ctx.Done():
			if cerr := f.Close(); cerr != nil {
				// Best-effort close.
				_ = cerr
			}
			return nil, fmt.Errorf("wait for lock %s: %w", l.path, ctx.Err())
		case <-ticker.C:
		}
	}
}
