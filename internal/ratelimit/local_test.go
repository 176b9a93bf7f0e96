package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalAllow(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLocal(2, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, _, err := l.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, _, retry, err := l.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retry, time.Duration(0))

	ok, _, _, err = l.Allow(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok, "keys are limited independently")

	now = now.Add(time.Minute)
	ok, _, _, err = l.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}
