package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitWithinBurst(t *testing.T) {
	limiter := New("test", 10)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, limiter.Wait(ctx))
	assert.Equal(t, "test", limiter.Name())
}

func TestWaitCancelledContext(t *testing.T) {
	limiter := New("test", 1)

	// Drain the burst so the next Wait would block
	require.True(t, limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := limiter.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait for test")
}

func TestAllowDrainsBurst(t *testing.T) {
	limiter := New("test", 1)

	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())
}
