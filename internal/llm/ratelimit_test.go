package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	t.Run("unlimited when not configured", func(t *testing.T) {
		rl := newRateLimiter(0)
		assert.Nil(t, rl)
		require.NoError(t, rl.wait(context.Background()))
		rl.Close()
	})

	t.Run("allows burst up to capacity", func(t *testing.T) {
		rl := newRateLimiter(5)
		defer rl.Close()

		for i := 0; i < 5; i++ {
			assert.True(t, rl.tryAcquire(), "attempt %d", i+1)
		}
		assert.False(t, rl.tryAcquire())
	})

	t.Run("context cancellation", func(t *testing.T) {
		rl := newRateLimiter(1)
		defer rl.Close()

		require.NoError(t, rl.wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := rl.wait(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limiter canceled")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("close unblocks waiters", func(t *testing.T) {
		rl := newRateLimiter(1)
		require.True(t, rl.tryAcquire())

		done := make(chan error, 1)
		go func() { done <- rl.wait(context.Background()) }()

		rl.Close()
		rl.Close()

		select {
		case err := <-done:
			require.Error(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("waiter was not released")
		}
	})
}
