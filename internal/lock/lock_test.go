package lock

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLock_ExcludesSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "ledger.lock")
	first := New(path)
	second := New(path)
	second.poll = 10 * time.Millisecond

	release, err := first.Lock(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	_, err = second.Lock(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	release()

	release2, err := second.Lock(context.Background())
	require.NoError(t, err)
	release2()
}

func TestLock_ReacquireAfterRelease(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "ledger.lock"))
	for i := 0; i < 3; i++ {
		release, err := l.Lock(context.Background())
		require.NoError(t, err)
		release()
	}
	assert.Equal(t, filepath.Base(l.Path()), "ledger.lock")
}
