package workspace

import (
	"context"
	"slices"

	"github.com/Veraticus/clash-cost/internal/model"
)

// Snapshot is the exportable form of a workspace.
type Snapshot struct {
	Works     []model.WorkItem `json:"works"`
	Scenarios []model.Scenario `json:"scenarios"`
}

// Export copies both collections.
func (w *Workspace) Export() Snapshot {
	return Snapshot{
		Works:     nonNil(w.Works()),
		Scenarios: nonNil(w.Scenarios()),
	}
}

// Import replaces the collections present in snap. A nil collection leaves
// the current one untouched.
func (w *Workspace) Import(ctx context.Context, snap Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev := w.snapshot()
	var keys []string
	if snap.Works != nil {
		w.works = slices.Clone(snap.Works)
		keys = append(keys, WorksKey)
	}
	if snap.Scenarios != nil {
		w.scenarios = make([]model.Scenario, len(snap.Scenarios))
		for i, s := range snap.Scenarios {
			w.scenarios[i] = cloneScenario(s)
		}
		keys = append(keys, ScenariosKey)
	}
	return w.commit(ctx, prev, keys...)
}
