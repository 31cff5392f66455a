package tui

import (
	"github.com/Veraticus/clash-cost/internal/engine"
	"github.com/Veraticus/clash-cost/internal/model"
)

// tickMsg triggers a poll of the run status and the tracker.
type tickMsg struct{}

// startedMsg is sent when the engine announces the run.
type startedMsg struct {
	run model.BulkRun
}

// selectedMsg is sent before each candidate is processed.
type selectedMsg struct {
	key string
	run model.BulkRun
}

// finishedMsg is sent when the run returns.
type finishedMsg struct {
	err     error
	summary *engine.BulkSummary
}
