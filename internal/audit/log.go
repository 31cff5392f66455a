// Package audit records user-visible actions: every load, generate and match
// outcome together with its token usage.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/clash-cost/internal/model"
	"github.com/Veraticus/clash-cost/internal/service"
)

// Log is an in-memory, append-only audit log. List returns newest first.
type Log struct {
	entries []model.LogEntry
	mu      sync.RWMutex
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append adds an entry.
func (l *Log) Append(_ context.Context, entry model.LogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// List returns up to limit entries, newest first. A limit of zero or less
// returns everything.
func (l *Log) List(_ context.Context, limit int) ([]model.LogEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := len(l.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.LogEntry, 0, n)
	for i := len(l.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.entries[i])
	}
	return out, nil
}

// Recorder stamps entries and fans them out to sinks and slog.
type Recorder struct {
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
	sinks  []service.LogSink
}

// NewRecorder creates a recorder writing to sinks.
func NewRecorder(logger *slog.Logger, sinks ...service.LogSink) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
		sinks:  sinks,
	}
}

// Success records a successful action.
func (r *Recorder) Success(ctx context.Context, action, details string, tokens int) model.LogEntry {
	return r.Record(ctx, action, model.LogStatusSuccess, details, tokens)
}

// Failure records a failed or degraded action.
func (r *Recorder) Failure(ctx context.Context, action, details string, tokens int) model.LogEntry {
	return r.Record(ctx, action, model.LogStatusError, details, tokens)
}

// Record appends an entry to every sink. Sink failures are logged and
// otherwise ignored.
func (r *Recorder) Record(ctx context.Context, action string, status model.LogStatus, details string, tokens int) model.LogEntry {
	entry := model.LogEntry{
		ID:         r.newID(),
		Timestamp:  r.now(),
		Action:     action,
		Status:     status,
		Details:    details,
		TokensUsed: tokens,
	}

	level := slog.LevelInfo
	if status == model.LogStatusError {
		level = slog.LevelWarn
	}
	r.logger.Log(ctx, level, action,
		"status", status,
		"details", details,
		"tokens", tokens)

	for _, sink := range r.sinks {
		if err := sink.Append(ctx, entry); err != nil {
			r.logger.Error("Failed to append audit entry",
				"action", action,
				"error", err)
		}
	}
	return entry
}
