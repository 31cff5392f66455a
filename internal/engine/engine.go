// Package engine drives the estimation pipeline: single-item operations that
// load works, generate scenarios and match works, and bulk runs of each.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/clash-cost/internal/audit"
	"github.com/Veraticus/clash-cost/internal/common"
	"github.com/Veraticus/clash-cost/internal/model"
	"github.com/Veraticus/clash-cost/internal/progress"
	"github.com/Veraticus/clash-cost/internal/workspace"
)

// Engine errors.
var (
	ErrBulkRunActive      = errors.New("a bulk run is already active")
	ErrAutomationDisabled = errors.New("automation is disabled")
	ErrNoCandidateWorks   = errors.New("no works found for scenario")
	ErrMissingSource      = errors.New("pricing source URL is not set")
	ErrUnknownCategory    = errors.New("unknown category")
)

// DefaultMinScore is the relevance at which new works are auto-accepted.
const DefaultMinScore = 0.7

// Config holds the engine settings read from configuration.
type Config struct {
	Source            string
	Language          model.Language
	Disciplines       []model.Discipline
	MinScore          float64
	AutomationEnabled bool
	Bulk              BulkOptions
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Language:          model.LanguageEnglish,
		Disciplines:       model.DefaultDisciplines(),
		MinScore:          DefaultMinScore,
		AutomationEnabled: true,
		Bulk:              DefaultBulkOptions(),
	}
}

// Engine coordinates the estimator, the workspace, the progress tracker and
// the audit log.
type Engine struct {
	estimator Estimator
	workspace *workspace.Workspace
	tracker   *progress.Tracker
	recorder  *audit.Recorder
	logger    *slog.Logger
	observer  Observer
	newID     func() string
	bulk      *model.BulkRun
	cfg       Config
	mu        sync.Mutex
	running   bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithObserver sets the bulk run observer.
func WithObserver(observer Observer) Option {
	return func(e *Engine) {
		if observer != nil {
			e.observer = observer
		}
	}
}

// WithIDGenerator overrides uuid generation for new works and scenarios.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

// New creates an engine.
func New(estimator Estimator, ws *workspace.Workspace, tracker *progress.Tracker, recorder *audit.Recorder, cfg Config, opts ...Option) *Engine {
	if len(cfg.Disciplines) == 0 {
		cfg.Disciplines = model.DefaultDisciplines()
	}
	if cfg.Language == "" {
		cfg.Language = model.LanguageEnglish
	}
	cfg.Bulk = cfg.Bulk.normalize()

	e := &Engine{
		estimator: estimator,
		workspace: ws,
		tracker:   tracker,
		recorder:  recorder,
		logger:    slog.Default(),
		observer:  nopObserver{},
		newID:     uuid.NewString,
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Disciplines returns the reference categories in matrix order.
func (e *Engine) Disciplines() []model.Discipline {
	return e.cfg.Disciplines
}

// Workspace returns the engine's workspace.
func (e *Engine) Workspace() *workspace.Workspace {
	return e.workspace
}

// Tracker returns the progress tracker.
func (e *Engine) Tracker() *progress.Tracker {
	return e.tracker
}

// SetObserver replaces the bulk run observer.
func (e *Engine) SetObserver(observer Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if observer == nil {
		observer = nopObserver{}
	}
	e.observer = observer
}

func (e *Engine) currentObserver() Observer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.observer
}

func (e *Engine) discipline(id string) (model.Discipline, error) {
	d, ok := model.FindDiscipline(e.cfg.Disciplines, id)
	if !ok {
		return model.Discipline{}, common.NewUserError("unknown category "+id, ErrUnknownCategory)
	}
	return d, nil
}

func (e *Engine) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return e.cfg.Bulk.Sleep(ctx, d)
}
