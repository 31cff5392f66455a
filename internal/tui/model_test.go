package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/clash-cost/internal/engine"
	"github.com/Veraticus/clash-cost/internal/model"
	"github.com/Veraticus/clash-cost/internal/tui/themes"
)

type fakeRunner struct {
	status   *model.BulkRun
	observer engine.Observer
	stops    int
	mu       sync.Mutex
}

func (f *fakeRunner) RunBulk(context.Context, model.BulkKind, *engine.StopToken) (*engine.BulkSummary, error) {
	return &engine.BulkSummary{}, nil
}

func (f *fakeRunner) Status() *model.BulkRun {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeRunner) Stop(token *engine.StopToken) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	token.Stop()
}

func (f *fakeRunner) SetObserver(o engine.Observer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observer = o
}

type fakeTracker map[model.OperationID]model.OperationProgress

func (f fakeTracker) Snapshot() map[model.OperationID]model.OperationProgress {
	return f
}

func newTestModel(runner Runner, tracker ProgressSource) (Model, *engine.StopToken, *bool) {
	token := engine.NewStopToken()
	canceled := false
	m := newModel(defaultConfig(), model.BulkLoad, runner, tracker, token, func() { canceled = true })
	return m, token, &canceled
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(Model)
	require.True(t, ok)
	return updated, cmd
}

func TestModel_PollUpdatesRunAndOperations(t *testing.T) {
	runner := &fakeRunner{status: &model.BulkRun{Kind: model.BulkLoad, Label: "Loading KR...", Total: 4, Current: 2}}
	tracker := fakeTracker{
		model.LoadOperation("VK_K"):     {Label: "Classifying...", Percent: 40},
		model.LoadOperation("KR_WALLS"): {Label: "Parsing page...", Percent: 12},
	}
	m, _, _ := newTestModel(runner, tracker)

	m, cmd := update(t, m, tickMsg{})
	assert.NotNil(t, cmd)
	require.NotNil(t, m.run)
	assert.Equal(t, 2, m.run.Current)
	require.Len(t, m.operations, 2)
	assert.Equal(t, "KR_WALLS", m.operations[0].id.Key)

	view := m.View()
	assert.Contains(t, view, "Bulk Load")
	assert.Contains(t, view, "2/4")
	assert.Contains(t, view, "Loading KR...")
	assert.Contains(t, view, "load/VK_K")
}

func TestModel_TwoStageInterrupt(t *testing.T) {
	runner := &fakeRunner{}
	m, token, canceled := newTestModel(runner, nil)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Equal(t, StateStopping, m.State())
	assert.True(t, token.Stopped())
	assert.False(t, *canceled)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.Equal(t, 1, runner.stops)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Equal(t, StateAborting, m.State())
	assert.True(t, *canceled)
}

func TestModel_QuitOnlyWhenFinished(t *testing.T) {
	m, _, _ := newTestModel(&fakeRunner{}, nil)
	q := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}

	_, cmd := update(t, m, q)
	assert.Nil(t, cmd)

	summary := &engine.BulkSummary{Kind: model.BulkLoad, Succeeded: 3, Failed: 1, Elapsed: time.Second}
	m, cmd = update(t, m, finishedMsg{summary: summary})
	assert.NotNil(t, cmd)
	assert.Equal(t, StateFinished, m.State())

	got, err := m.Summary()
	require.NoError(t, err)
	assert.Same(t, summary, got)
	assert.Contains(t, m.View(), "Succeeded: 3")

	_, cmd = update(t, m, tickMsg{})
	assert.Nil(t, cmd)
}

func TestModel_SelectedKeepsBoundedHistory(t *testing.T) {
	m, _, _ := newTestModel(&fakeRunner{}, nil)
	m.config.HistorySize = 2

	for i, label := range []string{"Loading KR...", "Loading VK...", "Loading EOM..."} {
		m, _ = update(t, m, selectedMsg{key: label, run: model.BulkRun{Label: label, Current: i + 1, Total: 3}})
	}
	assert.Equal(t, []string{"Loading VK...", "Loading EOM..."}, m.history)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.Empty(t, m.history)
}

func TestModel_FinishedWithError(t *testing.T) {
	m, _, _ := newTestModel(&fakeRunner{}, nil)
	m, _ = update(t, m, finishedMsg{err: errors.New("boom")})
	assert.Contains(t, m.View(), "Run ended: boom")
}

func TestRunFraction(t *testing.T) {
	tests := []struct {
		run  *model.BulkRun
		name string
		want float64
	}{
		{name: "nil", run: nil, want: 0},
		{name: "not started", run: &model.BulkRun{Total: 4}, want: 0},
		{name: "first item", run: &model.BulkRun{Total: 4, Current: 1}, want: 0},
		{name: "third item", run: &model.BulkRun{Total: 4, Current: 3}, want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, runFraction(tt.run), 1e-9)
		})
	}
}

func TestProgramObserver(t *testing.T) {
	var got []tea.Msg
	o := programObserver{send: func(msg tea.Msg) { got = append(got, msg) }}

	o.BulkStarted(model.BulkRun{Total: 2})
	o.Selected(model.BulkRun{Total: 2, Current: 1}, "KR_WALLS")
	o.BulkFinished(engine.BulkSummary{})

	require.Len(t, got, 2)
	assert.IsType(t, startedMsg{}, got[0])
	assert.Equal(t, "KR_WALLS", got[1].(selectedMsg).key)
}

func TestModel_ProgressBarUsesThemeColors(t *testing.T) {
	cfg := defaultConfig()
	WithTheme(themes.CatppuccinMocha)(&cfg)

	m := newModel(cfg, model.BulkMatch, &fakeRunner{}, fakeTracker{}, engine.NewStopToken(), func() {})
	assert.Equal(t, string(themes.CatppuccinMocha.ProgressFull), m.bar.FullColor)
	assert.Equal(t, string(themes.CatppuccinMocha.ProgressEmpty), m.bar.EmptyColor)
}
