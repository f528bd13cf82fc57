package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_AllowsUpToMax(t *testing.T) {
	l := NewMemoryLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		res, err := l.Allow(context.Background(), "1.2.3.4")
		require.NoError(t, err)
		require.True(t, res.Allowed, "hit %d", i+1)
	}

	res, err := l.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Zero(t, res.Remaining)
	require.Positive(t, res.RetryAfter)
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)

	res, err := l.Allow(context.Background(), "a")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = l.Allow(context.Background(), "b")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = l.Allow(context.Background(), "a")
	require.NoError(t, err)
	require.False(t, res.Allowed)
}

func TestMemoryLimiter_WindowResets(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 30, 0, time.UTC)
	l := NewMemoryLimiter(1, time.Minute).WithClock(func() time.Time { return now })

	res, err := l.Allow(context.Background(), "a")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = l.Allow(context.Background(), "a")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	now = now.Add(time.Minute)
	res, err = l.Allow(context.Background(), "a")
	require.NoError(t, err)
	require.True(t, res.Allowed)
}
