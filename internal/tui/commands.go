package tui

import (
	"cmp"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/clash-cost/internal/engine"
	"github.com/Veraticus/clash-cost/internal/model"
)

// programObserver forwards engine callbacks into the program's message loop.
type programObserver struct {
	send func(tea.Msg)
}

var _ engine.Observer = programObserver{}

func (o programObserver) BulkStarted(run model.BulkRun) {
	o.send(startedMsg{run: run})
}

func (o programObserver) Selected(run model.BulkRun, key string) {
	o.send(selectedMsg{run: run, key: key})
}

// BulkFinished is a no-op; the run result arrives as finishedMsg.
func (o programObserver) BulkFinished(engine.BulkSummary) {}

func sortOperations(ops []operationLine) {
	slices.SortFunc(ops, func(a, b operationLine) int {
		if c := cmp.Compare(a.id.Kind, b.id.Kind); c != 0 {
			return c
		}
		return cmp.Compare(a.id.Key, b.id.Key)
	})
}
