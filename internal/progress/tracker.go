// Package progress reports simulated progress for long-running backend
// operations. Each operation id ramps from 5% toward 90% until its owner
// stops it; only the owner asserts completion.
package progress

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Veraticus/clash-cost/internal/model"
)

// Ramp parameters.
const (
	StartPercent    = 5.0
	CeilingPercent  = 90.0
	DefaultInterval = 400 * time.Millisecond
	maxStep         = 3.0
)

type entry struct {
	stop     chan struct{}
	progress model.OperationProgress
}

// Tracker holds the progress of every running operation. Start launches a
// ticker goroutine per id; Stop and Close end them.
type Tracker struct {
	entries  map[model.OperationID]*entry
	step     func() float64
	interval time.Duration
	wg       sync.WaitGroup
	mu       sync.Mutex
	closed   bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithInterval sets the ramp tick interval.
func WithInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithStep sets the function returning each tick's increment.
func WithStep(step func() float64) Option {
	return func(t *Tracker) {
		if step != nil {
			t.step = step
		}
	}
}

// NewTracker creates a tracker that adds a random amount in [0,3) every 400ms.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		entries:  make(map[model.OperationID]*entry),
		interval: DefaultInterval,
		step:     func() float64 { return rand.Float64() * maxStep },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start sets id to 5% with label and begins ramping. A running id is
// restarted. Start after Close does nothing.
func (t *Tracker) Start(id model.OperationID, label string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	if prev, ok := t.entries[id]; ok {
		close(prev.stop)
	}

	e := &entry{
		stop:     make(chan struct{}),
		progress: model.OperationProgress{Label: label, Percent: StartPercent},
	}
	t.entries[id] = e

	t.wg.Add(1)
	go t.ramp(id, e)
}

func (t *Tracker) ramp(id model.OperationID, e *entry) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.entries[id] == e {
				e.progress.Percent = min(e.progress.Percent+t.step(), CeilingPercent)
			}
			t.mu.Unlock()
		}
	}
}

// SetLabel updates the label of a running id. A non-nil forced value
// replaces the current percent. Absent ids are ignored.
func (t *Tracker) SetLabel(id model.OperationID, label string, forced *float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return
	}
	e.progress.Label = label
	if forced != nil {
		e.progress.Percent = *forced
	}
}

// Stop ends the ramp for id and removes it. Absent ids are ignored.
func (t *Tracker) Stop(id model.OperationID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return
	}
	close(e.stop)
	delete(t.entries, id)
}

// Get returns the progress of id.
func (t *Tracker) Get(id model.OperationID) (model.OperationProgress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return model.OperationProgress{}, false
	}
	return e.progress, true
}

// Snapshot copies the progress of every running operation.
func (t *Tracker) Snapshot() map[model.OperationID]model.OperationProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[model.OperationID]model.OperationProgress, len(t.entries))
	for id, e := range t.entries {
		out[id] = e.progress
	}
	return out
}

// Close stops every ramp and waits for the goroutines to exit.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	for id, e := range t.entries {
		close(e.stop)
		delete(t.entries, id)
	}
	t.mu.Unlock()

	t.wg.Wait()
}

// Percent is a helper for SetLabel's forced argument.
func Percent(p float64) *float64 {
	return &p
}
