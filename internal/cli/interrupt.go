package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler turns Ctrl-C into a two-stage shutdown. The first signal
// calls the stop function so a bulk run ends after its current item; the
// second cancels the context and aborts in-flight requests.
type InterruptHandler struct {
	writer  io.Writer
	notify  func(chan<- os.Signal)
	release func(chan<- os.Signal)
	signals int
	mu      sync.Mutex
}

// NewInterruptHandler creates a new interrupt handler.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{
		writer: writer,
		notify: func(c chan<- os.Signal) {
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		},
		release: func(c chan<- os.Signal) {
			signal.Stop(c)
		},
	}
}

// HandleInterrupts watches for signals until the returned cancel function is
// called or ctx ends. stop may be nil, in which case the first signal cancels.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, stop func()) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	sigChan := make(chan os.Signal, 2)
	h.notify(sigChan)

	done := make(chan struct{})
	go func() {
		defer h.release(sigChan)
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-sigChan:
				if h.record() == 1 && stop != nil {
					h.showStopMessage()
					stop()
					continue
				}
				h.showAbortMessage()
				cancel()
				return
			}
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() { close(done) })
		cancel()
	}
}

func (h *InterruptHandler) record() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.signals++
	return h.signals
}

func (h *InterruptHandler) showStopMessage() {
	h.write("\n" + FormatWarning("Stopping after the current item...") +
		"\n" + FormatInfo("Press Ctrl-C again to abort immediately.") + "\n")
}

func (h *InterruptHandler) showAbortMessage() {
	h.write("\n" + FormatWarning("Aborted.") +
		"\n" + FormatInfo("Completed items are saved in the workspace.") + "\n")
}

func (h *InterruptHandler) write(msg string) {
	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		slog.Warn("Failed to write interrupt message", "error", err)
	}
}

// WasInterrupted reports whether at least one signal was received.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.signals > 0
}

// AbortError returns err unless it is the cancellation caused by an interrupt,
// which the abort message has already reported.
func (h *InterruptHandler) AbortError(err error) error {
	if errors.Is(err, context.Canceled) && h.WasInterrupted() {
		return nil
	}
	return err
}
