package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/clash-cost/internal/model"
)

// Append stores an audit log entry.
func (s *SQLiteStorage) Append(ctx context.Context, entry model.LogEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateLogEntry(entry); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, timestamp, action, status, details, tokens_used)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Timestamp.UTC(), entry.Action, string(entry.Status), entry.Details, entry.TokensUsed)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// List returns up to limit audit entries, newest first. A limit of zero or
// less returns everything.
func (s *SQLiteStorage) List(ctx context.Context, limit int) ([]model.LogEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, action, status, details, tokens_used
		FROM audit_log
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.LogEntry
	for rows.Next() {
		var (
			entry     model.LogEntry
			status    string
			timestamp time.Time
		)
		if err := rows.Scan(&entry.ID, &timestamp, &entry.Action, &status, &entry.Details, &entry.TokensUsed); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.Status = model.LogStatus(status)
		entry.Timestamp = timestamp
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit log: %w", err)
	}
	return entries, nil
}

// ClearLog deletes every audit entry.
func (s *SQLiteStorage) ClearLog(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM audit_log`); err != nil {
		return fmt.Errorf("failed to clear audit log: %w", err)
	}
	return nil
}
