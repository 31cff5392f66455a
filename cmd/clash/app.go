package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/clash-cost/internal/audit"
	"github.com/Veraticus/clash-cost/internal/config"
	"github.com/Veraticus/clash-cost/internal/engine"
	"github.com/Veraticus/clash-cost/internal/llm"
	"github.com/Veraticus/clash-cost/internal/progress"
	"github.com/Veraticus/clash-cost/internal/storage"
	"github.com/Veraticus/clash-cost/internal/workspace"
)

// newEstimator builds the backend estimator. Tests replace it with a fake.
var newEstimator = func(cfg llm.Config, logger *slog.Logger) (engine.Estimator, func() error, error) {
	caller, err := llm.NewCaller(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create backend caller: %w", err)
	}
	est := llm.NewEstimator(caller, cfg, llm.WithLogger(logger))
	return est, est.Close, nil
}

// appEnv holds the resources a command works with.
type appEnv struct {
	cfg       config.App
	store     *storage.SQLiteStorage
	workspace *workspace.Workspace
	engine    *engine.Engine
	tracker   *progress.Tracker
	closers   []func() error
}

// openStore loads the configuration and the persisted workspace.
func openStore(ctx context.Context) (*appEnv, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	env := &appEnv{cfg: cfg, store: store, closers: []func() error{store.Close}}

	if err := store.Migrate(ctx); err != nil {
		_ = env.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	ws, err := workspace.Open(ctx, store)
	if err != nil {
		_ = env.Close()
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}
	env.workspace = ws
	return env, nil
}

// openEngine additionally wires the estimator, tracker and audit log.
func openEngine(ctx context.Context) (*appEnv, error) {
	env, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	est, closeEst, err := newEstimator(env.cfg.LLM, logger)
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	env.closers = append(env.closers, closeEst)

	env.tracker = progress.NewTracker()
	env.closers = append(env.closers, func() error {
		env.tracker.Close()
		return nil
	})

	recorder := audit.NewRecorder(logger, env.store)
	env.engine = engine.New(est, env.workspace, env.tracker, recorder, env.cfg.EngineConfig(),
		engine.WithLogger(logger))
	return env, nil
}

// Close releases resources in reverse order of acquisition.
func (a *appEnv) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func closeEnv(env *appEnv) {
	if err := env.Close(); err != nil {
		slog.Warn("Failed to close resources", "error", err)
	}
}
