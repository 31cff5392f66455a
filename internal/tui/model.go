// Package tui renders a live monitor for bulk runs using bubbletea.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/clash-cost/internal/engine"
	"github.com/Veraticus/clash-cost/internal/model"
	"github.com/Veraticus/clash-cost/internal/tui/themes"
)

// Runner executes and reports on bulk runs.
type Runner interface {
	RunBulk(ctx context.Context, kind model.BulkKind, token *engine.StopToken) (*engine.BulkSummary, error)
	Status() *model.BulkRun
	Stop(token *engine.StopToken)
	SetObserver(observer engine.Observer)
}

// ProgressSource exposes the per-operation progress of in-flight calls.
type ProgressSource interface {
	Snapshot() map[model.OperationID]model.OperationProgress
}

// State is the lifecycle of the monitored run.
type State int

const (
	StateRunning State = iota
	StateStopping
	StateAborting
	StateFinished
)

// Model holds the monitor state.
type Model struct {
	startTime  time.Time
	err        error
	runner     Runner
	tracker    ProgressSource
	token      *engine.StopToken
	cancel     context.CancelFunc
	run        *model.BulkRun
	summary    *engine.BulkSummary
	keymap     KeyMap
	theme      themes.Theme
	kind       model.BulkKind
	help       help.Model
	bar        progress.Model
	operations []operationLine
	history    []string
	config     Config
	width      int
	state      State
}

type operationLine struct {
	id       model.OperationID
	label    string
	progress float64
}

func newModel(cfg Config, kind model.BulkKind, runner Runner, tracker ProgressSource, token *engine.StopToken, cancel context.CancelFunc) Model {
	h := help.New()
	h.ShowAll = cfg.ShowHelp

	bar := progress.New(progress.WithSolidFill(string(cfg.Theme.ProgressFull)), progress.WithoutPercentage())
	bar.EmptyColor = string(cfg.Theme.ProgressEmpty)

	m := Model{
		startTime: time.Now(),
		runner:    runner,
		tracker:   tracker,
		token:     token,
		cancel:    cancel,
		keymap:    DefaultKeyMap(),
		theme:     cfg.Theme,
		kind:      kind,
		help:      h,
		bar:       bar,
		config:    cfg,
	}
	m.resize(cfg.Width)
	return m
}

// Init starts polling.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width)

	case tickMsg:
		if m.state == StateFinished {
			return m, nil
		}
		m.poll()
		return m, m.tick()

	case startedMsg:
		run := msg.run
		m.run = &run

	case selectedMsg:
		run := msg.run
		m.run = &run
		m.history = append(m.history, run.Label)
		if over := len(m.history) - m.config.HistorySize; over > 0 {
			m.history = m.history[over:]
		}

	case finishedMsg:
		m.state = StateFinished
		m.summary = msg.summary
		m.err = msg.err
		m.run = nil
		m.operations = nil
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Stop):
		m.requestStop()

	case key.Matches(msg, m.keymap.Abort):
		switch m.state {
		case StateRunning:
			m.requestStop()
		case StateStopping:
			m.state = StateAborting
			if m.cancel != nil {
				m.cancel()
			}
		case StateFinished:
			return m, tea.Quit
		}

	case key.Matches(msg, m.keymap.Quit):
		if m.state == StateFinished {
			return m, tea.Quit
		}

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keymap.ClearLogs):
		m.history = nil
	}
	return m, nil
}

func (m *Model) requestStop() {
	if m.state != StateRunning {
		return
	}
	m.state = StateStopping
	if m.runner != nil {
		m.runner.Stop(m.token)
	}
}

// poll samples the run status and the tracker.
func (m *Model) poll() {
	if m.runner != nil {
		if run := m.runner.Status(); run != nil {
			m.run = run
		}
	}
	if m.tracker == nil {
		return
	}
	snapshot := m.tracker.Snapshot()
	m.operations = make([]operationLine, 0, len(snapshot))
	for id, p := range snapshot {
		m.operations = append(m.operations, operationLine{id: id, label: p.Label, progress: p.Percent})
	}
	sortOperations(m.operations)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.config.PollInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *Model) resize(width int) {
	if width <= 0 {
		return
	}
	m.width = width
	m.help.Width = width
	m.bar.Width = min(max(width-12, 10), 60)
}

// Summary returns the result of the run once finished.
func (m Model) Summary() (*engine.BulkSummary, error) {
	return m.summary, m.err
}

// State returns the current lifecycle state.
func (m Model) State() State {
	return m.state
}
