// Package service defines the interfaces shared between the core and its adapters.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/clash-cost/internal/model"
)

// KeyValueStore is the persistence sink for serialized collections.
type KeyValueStore interface {
	// Load returns the stored value and whether the key exists.
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
}

// LogSink receives audit log entries. Entries are append-only.
type LogSink interface {
	Append(ctx context.Context, entry model.LogEntry) error
}

// LogReader lists audit log entries newest first.
type LogReader interface {
	List(ctx context.Context, limit int) ([]model.LogEntry, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	// Sleep waits between attempts; nil means a context-aware timer.
	Sleep        func(ctx context.Context, d time.Duration) error
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
