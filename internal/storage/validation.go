// Package storage provides the SQLite persistence layer: a key/value table
// for serialized collections and the audit log table.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/clash-cost/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrInvalidStatus  = errors.New("invalid log status")
	ErrInvalidLogItem = errors.New("invalid log entry")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateLogEntry(entry model.LogEntry) error {
	if strings.TrimSpace(entry.Action) == "" {
		return fmt.Errorf("%w: action is required", ErrInvalidLogItem)
	}
	switch entry.Status {
	case model.LogStatusSuccess, model.LogStatusError:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, entry.Status)
	}
	if entry.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidLogItem)
	}
	return nil
}
