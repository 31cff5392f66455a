package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// fakeSignals replaces os/signal so tests can deliver interrupts directly.
func fakeSignals(h *InterruptHandler) (send func(), released <-chan struct{}) {
	var (
		mu  sync.Mutex
		ch  chan<- os.Signal
		rel = make(chan struct{})
	)
	h.notify = func(c chan<- os.Signal) {
		mu.Lock()
		ch = c
		mu.Unlock()
	}
	h.release = func(chan<- os.Signal) { close(rel) }
	return func() {
		mu.Lock()
		defer mu.Unlock()
		ch <- os.Interrupt
	}, rel
}

func TestNewInterruptHandler(t *testing.T) {
	handler := NewInterruptHandler(nil)
	assert.NotNil(t, handler.writer)
	assert.False(t, handler.WasInterrupted())
}

func TestHandleInterrupts_TwoStage(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output)
	send, released := fakeSignals(handler)

	var stops atomic.Int32
	ctx, cancel := handler.HandleInterrupts(context.Background(), func() { stops.Add(1) })
	defer cancel()

	send()
	require.Eventually(t, func() bool { return stops.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.NoError(t, ctx.Err())
	assert.True(t, handler.WasInterrupted())
	assert.Contains(t, output.String(), "Stopping after the current item...")

	send()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("second interrupt should cancel the context")
	}
	<-released
	assert.Equal(t, int32(1), stops.Load())
	assert.Contains(t, output.String(), "Aborted.")
}

func TestHandleInterrupts_NoStopFunctionCancelsImmediately(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output)
	send, released := fakeSignals(handler)

	ctx, cancel := handler.HandleInterrupts(context.Background(), nil)
	defer cancel()

	send()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("interrupt should cancel the context")
	}
	<-released
	assert.NotContains(t, output.String(), "Stopping after")
}

func TestHandleInterrupts_CancelReleasesSignals(t *testing.T) {
	handler := NewInterruptHandler(&syncBuffer{})
	_, released := fakeSignals(handler)

	_, cancel := handler.HandleInterrupts(context.Background(), func() {})
	cancel()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("cancel should stop signal delivery")
	}
	assert.False(t, handler.WasInterrupted())
}

func TestInterruptHandler_AbortError(t *testing.T) {
	boom := errors.New("boom")

	quiet := NewInterruptHandler(&syncBuffer{})
	assert.ErrorIs(t, quiet.AbortError(context.Canceled), context.Canceled)
	assert.Equal(t, boom, quiet.AbortError(boom))
	assert.NoError(t, quiet.AbortError(nil))

	aborted := NewInterruptHandler(&syncBuffer{})
	send, released := fakeSignals(aborted)
	ctx, cancel := aborted.HandleInterrupts(context.Background(), nil)
	defer cancel()
	send()
	<-released

	assert.NoError(t, aborted.AbortError(ctx.Err()))
	assert.NoError(t, aborted.AbortError(fmt.Errorf("sleep: %w", context.Canceled)))
	assert.Equal(t, boom, aborted.AbortError(boom))
}
