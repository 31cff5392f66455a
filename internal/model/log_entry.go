package model

import "time"

// LogStatus is the outcome recorded for an audit log entry.
type LogStatus string

const (
	// LogStatusSuccess records a successful action.
	LogStatusSuccess LogStatus = "success"
	// LogStatusError records a failed or degraded action.
	LogStatusError LogStatus = "error"
)

// LogEntry is one line of the audit log.
type LogEntry struct {
	Timestamp  time.Time
	ID         string
	Action     string
	Status     LogStatus
	Details    string
	TokensUsed int
}
