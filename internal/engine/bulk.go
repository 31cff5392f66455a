package engine

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Veraticus/clash-cost/internal/common"
	"github.com/Veraticus/clash-cost/internal/model"
)

// StopToken is the advisory cancellation flag of a bulk run. It is read only
// between candidates, so an in-flight backend call always completes.
type StopToken struct {
	stopped atomic.Bool
}

// NewStopToken returns a cleared token.
func NewStopToken() *StopToken {
	return &StopToken{}
}

// Stop requests that the run end before its next candidate.
func (t *StopToken) Stop() {
	if t != nil {
		t.stopped.Store(true)
	}
}

// Stopped reports whether Stop was called since the run started.
func (t *StopToken) Stopped() bool {
	return t != nil && t.stopped.Load()
}

func (t *StopToken) reset() {
	if t != nil {
		t.stopped.Store(false)
	}
}

// Default pacing between bulk candidates.
const (
	DefaultLoadDelay     = 500 * time.Millisecond
	DefaultGenerateDelay = 200 * time.Millisecond
	DefaultMatchDelay    = 200 * time.Millisecond
)

// BulkOptions controls pacing between candidates.
type BulkOptions struct {
	Sleep         func(ctx context.Context, d time.Duration) error
	LoadDelay     time.Duration
	GenerateDelay time.Duration
	MatchDelay    time.Duration
}

// DefaultBulkOptions returns the default pacing.
func DefaultBulkOptions() BulkOptions {
	return BulkOptions{
		Sleep:         common.SleepContext,
		LoadDelay:     DefaultLoadDelay,
		GenerateDelay: DefaultGenerateDelay,
		MatchDelay:    DefaultMatchDelay,
	}
}

func (o BulkOptions) normalize() BulkOptions {
	if o.Sleep == nil {
		o.Sleep = common.SleepContext
	}
	return o
}

func (o BulkOptions) delay(kind model.BulkKind) time.Duration {
	switch kind {
	case model.BulkLoad:
		return o.LoadDelay
	case model.BulkGenerate:
		return o.GenerateDelay
	default:
		return o.MatchDelay
	}
}

// BulkSummary reports the outcome of one bulk run.
type BulkSummary struct {
	Kind      model.BulkKind
	Succeeded int
	Failed    int
	Skipped   int
	Total     int
	Elapsed   time.Duration
	Stopped   bool
	NoOp      bool
}

type candidate struct {
	run   func(ctx context.Context) error
	key   string
	label string
}

// bulkAction returns the audit action name for a bulk kind.
func bulkAction(kind model.BulkKind) string {
	switch kind {
	case model.BulkLoad:
		return "Bulk Load"
	case model.BulkGenerate:
		return "Bulk Generate"
	default:
		return "Bulk Match"
	}
}

// candidates computes the work list of a run in processing order together
// with the number of items excluded up front.
func (e *Engine) candidates(kind model.BulkKind) ([]candidate, int, error) {
	switch kind {
	case model.BulkLoad:
		return e.loadCandidates(), e.countPopulated(), nil
	case model.BulkGenerate:
		return e.generateCandidates(), 0, nil
	case model.BulkMatch:
		list, skipped := e.matchCandidates()
		return list, skipped, nil
	default:
		return nil, 0, fmt.Errorf("unknown bulk kind %q", kind)
	}
}

func (e *Engine) countPopulated() int {
	n := 0
	for _, d := range e.cfg.Disciplines {
		if e.workspace.HasWorks(d.ID) {
			n++
		}
	}
	return n
}

func (e *Engine) loadCandidates() []candidate {
	var list []candidate
	for _, d := range e.cfg.Disciplines {
		if e.workspace.HasWorks(d.ID) {
			continue
		}
		id := d.ID
		list = append(list, candidate{
			key:   id,
			label: fmt.Sprintf("Loading %s...", d.Code),
			run: func(ctx context.Context) error {
				return e.LoadWorks(ctx, id)
			},
		})
	}
	return list
}

func (e *Engine) generateCandidates() []candidate {
	var list []candidate
	for _, row := range e.cfg.Disciplines {
		if !e.workspace.HasWorks(row.ID) {
			continue
		}
		for _, col := range e.cfg.Disciplines {
			key := model.MatrixKey{Row: row.ID, Col: col.ID}
			if key.Diagonal() || e.workspace.HasScenarios(key) {
				continue
			}
			list = append(list, candidate{
				key:   key.String(),
				label: fmt.Sprintf("Thinking %s:%s...", row.Code, col.Code),
				run: func(ctx context.Context) error {
					return e.GenerateScenarios(ctx, key)
				},
			})
		}
	}
	return list
}

func (e *Engine) matchCandidates() ([]candidate, int) {
	var (
		list    []candidate
		skipped int
	)
	for _, s := range e.workspace.Scenarios() {
		if len(s.Works) > 0 {
			continue
		}
		if !e.workspace.HasWorks(s.MatrixKey.Row) {
			skipped++
			continue
		}
		id := s.ID
		list = append(list, candidate{
			key:   id,
			label: fmt.Sprintf("Matching... %s...", truncateRunes(s.Name, 15)),
			run: func(ctx context.Context) error {
				_, err := e.MatchScenario(ctx, id)
				return err
			},
		})
	}
	return list, skipped
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// RunBulk processes every candidate of kind in order. Failures of single
// candidates are counted and never abort the run; token is checked before each
// candidate. Only one run may be active at a time.
func (e *Engine) RunBulk(ctx context.Context, kind model.BulkKind, token *StopToken) (*BulkSummary, error) {
	if !e.cfg.AutomationEnabled {
		return nil, common.NewUserError("automation is disabled in configuration", ErrAutomationDisabled)
	}
	if kind == model.BulkLoad && strings.TrimSpace(e.cfg.Source) == "" {
		return nil, common.NewUserError("set estimate.source_url before loading works", ErrMissingSource)
	}

	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, ErrBulkRunActive
	}
	e.running = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.running = false
		e.bulk = nil
		e.mu.Unlock()
	}()

	action := bulkAction(kind)
	list, skipped, err := e.candidates(kind)
	if err != nil {
		return nil, err
	}

	summary := &BulkSummary{Kind: kind, Skipped: skipped, Total: len(list)}
	if len(list) == 0 {
		summary.NoOp = true
		e.recorder.Success(ctx, action, "No candidates to process.", 0)
		e.currentObserver().BulkFinished(*summary)
		return summary, nil
	}

	token.reset()
	start := time.Now()
	e.setBulk(&model.BulkRun{Kind: kind, Total: len(list), Label: "Starting..."})
	e.recorder.Success(ctx, action, fmt.Sprintf("Starting. Candidates: %d, Skipped: %d.", len(list), skipped), 0)

	observer := e.currentObserver()
	observer.BulkStarted(*e.Status())

	var runErr error
	for i, c := range list {
		if token.Stopped() {
			summary.Stopped = true
			e.recorder.Failure(ctx, action, "Operation stopped by user.", 0)
			break
		}
		if err := ctx.Err(); err != nil {
			summary.Stopped = true
			runErr = err
			e.recorder.Failure(ctx, action, "Operation cancelled.", 0)
			break
		}

		run := model.BulkRun{Kind: kind, Total: len(list), Current: i + 1, Label: c.label}
		e.setBulk(&run)
		observer.Selected(run, c.key)

		if err := guard(ctx, c.run); err != nil {
			summary.Failed++
			e.logger.Warn("Bulk candidate failed",
				"kind", kind,
				"candidate", c.key,
				"error", err)
		} else {
			summary.Succeeded++
		}

		if i < len(list)-1 {
			if err := e.sleep(ctx, e.cfg.Bulk.delay(kind)); err != nil {
				summary.Stopped = true
				runErr = err
				e.recorder.Failure(ctx, action, "Operation cancelled.", 0)
				break
			}
		}
	}

	summary.Elapsed = time.Since(start)
	e.recorder.Success(ctx, action,
		fmt.Sprintf("%s Completed in %.1fs. Success: %d, Failed: %d, Skipped: %d.",
			action, summary.Elapsed.Seconds(), summary.Succeeded, summary.Failed, summary.Skipped), 0)
	observer.BulkFinished(*summary)

	return summary, runErr
}

// guard runs one candidate, turning a panic into an error.
func guard(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("candidate panicked: %v", r)
		}
	}()
	return fn(ctx)
}

func (e *Engine) setBulk(run *model.BulkRun) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bulk = run
}

// Status returns a copy of the active bulk run, or nil when idle.
func (e *Engine) Status() *model.BulkRun {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bulk == nil {
		return nil
	}
	run := *e.bulk
	return &run
}

// Stop sets token and relabels the active run.
func (e *Engine) Stop(token *StopToken) {
	token.Stop()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bulk != nil {
		e.bulk.Label = "Stopping..."
	}
}
