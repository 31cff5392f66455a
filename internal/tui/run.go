package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/clash-cost/internal/engine"
	"github.com/Veraticus/clash-cost/internal/model"
)

type runResult struct {
	err     error
	summary *engine.BulkSummary
}

// Run executes a bulk run of kind while showing the monitor. The first
// Ctrl-C (or "s") requests a stop after the current item; a second Ctrl-C
// cancels in-flight calls.
func Run(ctx context.Context, runner Runner, tracker ProgressSource, kind model.BulkKind, opts ...Option) (*engine.BulkSummary, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner is required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	token := engine.NewStopToken()
	program := tea.NewProgram(newModel(cfg, kind, runner, tracker, token, cancel), tea.WithContext(ctx))

	runner.SetObserver(programObserver{send: program.Send})
	defer runner.SetObserver(nil)

	results := make(chan runResult, 1)
	go func() {
		summary, err := runner.RunBulk(ctx, kind, token)
		program.Send(finishedMsg{summary: summary, err: err})
		results <- runResult{summary: summary, err: err}
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		runner.Stop(token)
		cancel()
		<-results
		return nil, fmt.Errorf("TUI error: %w", err)
	}

	result := <-results
	return result.summary, result.err
}
