package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// rateLimiter is a token bucket refilled at requestsPerMinute.
// A nil *rateLimiter never blocks.
type rateLimiter struct {
	stopCh    chan struct{}
	tokens    int
	capacity  int
	pollEvery time.Duration
	mu        sync.Mutex
	closeOnce sync.Once
}

// newRateLimiter returns nil when requestsPerMinute is not positive.
func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		return nil
	}

	rl := &rateLimiter{
		tokens:    requestsPerMinute,
		capacity:  requestsPerMinute,
		pollEvery: 100 * time.Millisecond,
		stopCh:    make(chan struct{}),
	}

	go rl.refill(time.Minute / time.Duration(requestsPerMinute))

	return rl
}

// wait blocks until a token is available or the context is canceled.
func (rl *rateLimiter) wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}

	ticker := time.NewTicker(rl.pollEvery)
	defer ticker.Stop()

	for {
		if rl.tryAcquire() {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-rl.stopCh:
			return fmt.Errorf("rate limiter closed")
		case <-ticker.C:
		}
	}
}

func (rl *rateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}

func (rl *rateLimiter) refill(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.mu.Lock()
			if rl.tokens < rl.capacity {
				rl.tokens++
			}
			rl.mu.Unlock()
		}
	}
}

// Close stops the refill goroutine. Safe to call more than once.
func (rl *rateLimiter) Close() {
	if rl == nil {
		return
	}
	rl.closeOnce.Do(func() { close(rl.stopCh) })
}
