// Package workspace owns the work item and scenario collections. Every
// mutation is persisted through a key/value store before it returns.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/Veraticus/clash-cost/internal/common"
	"github.com/Veraticus/clash-cost/internal/model"
	"github.com/Veraticus/clash-cost/internal/service"
)

// Keys under which the collections are persisted.
const (
	WorksKey     = "works"
	ScenariosKey = "scenarios"
)

// ErrInvalidQuantity is returned for quantities that are not positive and finite.
var ErrInvalidQuantity = errors.New("quantity must be a positive number")

// Workspace is the in-memory view of the estimation data.
type Workspace struct {
	store     service.KeyValueStore
	works     []model.WorkItem
	scenarios []model.Scenario
	mu        sync.RWMutex
}

// Open loads the collections from store. Missing keys start empty.
func Open(ctx context.Context, store service.KeyValueStore) (*Workspace, error) {
	w := &Workspace{store: store}

	if err := loadCollection(ctx, store, WorksKey, &w.works); err != nil {
		return nil, err
	}
	if err := loadCollection(ctx, store, ScenariosKey, &w.scenarios); err != nil {
		return nil, err
	}
	return w, nil
}

func loadCollection[T any](ctx context.Context, store service.KeyValueStore, key string, dst *[]T) error {
	data, ok, err := store.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// state is a copy of both collections taken before a mutation.
type state struct {
	works     []model.WorkItem
	scenarios []model.Scenario
}

// snapshot copies the collections. Callers hold the write lock.
func (w *Workspace) snapshot() state {
	prev := state{works: slices.Clone(w.works)}
	if w.scenarios != nil {
		prev.scenarios = make([]model.Scenario, len(w.scenarios))
		for i, s := range w.scenarios {
			prev.scenarios[i] = cloneScenario(s)
		}
	}
	return prev
}

// commit writes the named collections. When a save fails the collections
// are restored to prev and keys already written are saved again, so memory
// and store keep matching. Callers hold the write lock.
func (w *Workspace) commit(ctx context.Context, prev state, keys ...string) error {
	for i, key := range keys {
		if err := w.save(ctx, key); err != nil {
			w.works, w.scenarios = prev.works, prev.scenarios
			for _, written := range keys[:i] {
				_ = w.save(ctx, written)
			}
			return err
		}
	}
	return nil
}

func (w *Workspace) save(ctx context.Context, key string) error {
	var value any
	switch key {
	case WorksKey:
		value = nonNil(w.works)
	case ScenariosKey:
		value = nonNil(w.scenarios)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := w.store.Save(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Works returns a copy of every work item.
func (w *Workspace) Works() []model.WorkItem {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.works)
}

// WorksByCategory returns the work items of one category.
func (w *Workspace) WorksByCategory(categoryID string) []model.WorkItem {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []model.WorkItem
	for _, item := range w.works {
		if item.CategoryID == categoryID {
			out = append(out, item)
		}
	}
	return out
}

// HasWorks reports whether the category holds at least one work item.
func (w *Workspace) HasWorks(categoryID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.ContainsFunc(w.works, func(item model.WorkItem) bool {
		return item.CategoryID == categoryID
	})
}

// Work returns the work item with the given id.
func (w *Workspace) Work(id string) (model.WorkItem, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.workLocked(id)
}

func (w *Workspace) workLocked(id string) (model.WorkItem, bool) {
	for _, item := range w.works {
		if item.ID == id {
			return item, true
		}
	}
	return model.WorkItem{}, false
}

// Scenarios returns a deep copy of every scenario.
func (w *Workspace) Scenarios() []model.Scenario {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]model.Scenario, len(w.scenarios))
	for i, s := range w.scenarios {
		out[i] = cloneScenario(s)
	}
	return out
}

// ScenariosForKey returns the scenarios of one matrix cell.
func (w *Workspace) ScenariosForKey(key model.MatrixKey) []model.Scenario {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []model.Scenario
	for _, s := range w.scenarios {
		if s.MatrixKey == key {
			out = append(out, cloneScenario(s))
		}
	}
	return out
}

// HasScenarios reports whether any scenario exists for the matrix cell.
func (w *Workspace) HasScenarios(key model.MatrixKey) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.ContainsFunc(w.scenarios, func(s model.Scenario) bool {
		return s.MatrixKey == key
	})
}

// Scenario returns the scenario with the given id.
func (w *Workspace) Scenario(id string) (model.Scenario, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if i := w.scenarioIndex(id); i >= 0 {
		return cloneScenario(w.scenarios[i]), true
	}
	return model.Scenario{}, false
}

func (w *Workspace) scenarioIndex(id string) int {
	return slices.IndexFunc(w.scenarios, func(s model.Scenario) bool { return s.ID == id })
}

func cloneScenario(s model.Scenario) model.Scenario {
	s.Works = slices.Clone(s.Works)
	return s
}

// AddWorks appends work items.
func (w *Workspace) AddWorks(ctx context.Context, items ...model.WorkItem) error {
	if len(items) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	prev := w.snapshot()
	w.works = append(w.works, items...)
	return w.commit(ctx, prev, WorksKey)
}

// AddScenarios appends scenarios.
func (w *Workspace) AddScenarios(ctx context.Context, scenarios ...model.Scenario) error {
	if len(scenarios) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	prev := w.snapshot()
	for _, s := range scenarios {
		w.scenarios = append(w.scenarios, cloneScenario(s))
	}
	return w.commit(ctx, prev, ScenariosKey)
}

// ReplaceScenarioWorks sets the work list of a scenario.
func (w *Workspace) ReplaceScenarioWorks(ctx context.Context, scenarioID string, works []model.ScenarioWork) error {
	return w.updateScenario(ctx, scenarioID, func(s *model.Scenario) error {
		s.Works = slices.Clone(works)
		return nil
	})
}

// AcceptPending resolves the pending items of a category: accepted when the
// score reaches minScore, rejected otherwise.
func (w *Workspace) AcceptPending(ctx context.Context, categoryID string, minScore float64) (accepted, rejected int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev := w.snapshot()
	for i := range w.works {
		item := &w.works[i]
		if item.CategoryID != categoryID || item.Status != model.WorkStatusPending {
			continue
		}
		if item.Score >= minScore {
			item.Status = model.WorkStatusAccepted
			accepted++
		} else {
			item.Status = model.WorkStatusRejected
			rejected++
		}
	}
	if accepted+rejected == 0 {
		return 0, 0, nil
	}
	if err := w.commit(ctx, prev, WorksKey); err != nil {
		return 0, 0, err
	}
	return accepted, rejected, nil
}

// SetWorkStatus changes the status of one work item.
func (w *Workspace) SetWorkStatus(ctx context.Context, workID string, status model.WorkStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid work status %q", status)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	i := slices.IndexFunc(w.works, func(item model.WorkItem) bool { return item.ID == workID })
	if i < 0 {
		return fmt.Errorf("work %s: %w", workID, common.ErrNotFound)
	}
	prev := w.snapshot()
	w.works[i].Status = status
	return w.commit(ctx, prev, WorksKey)
}

// AddScenarioWork adds a work item with quantity 1. Adding a work the
// scenario already references does nothing.
func (w *Workspace) AddScenarioWork(ctx context.Context, scenarioID, workID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.workLocked(workID); !ok {
		return fmt.Errorf("work %s: %w", workID, common.ErrNotFound)
	}
	i := w.scenarioIndex(scenarioID)
	if i < 0 {
		return fmt.Errorf("scenario %s: %w", scenarioID, common.ErrNotFound)
	}
	if w.scenarios[i].HasWork(workID) {
		return nil
	}
	prev := w.snapshot()
	w.scenarios[i].Works = append(w.scenarios[i].Works, model.ScenarioWork{WorkID: workID, Quantity: 1, Active: true})
	return w.commit(ctx, prev, ScenariosKey)
}

// RemoveScenarioWork removes a work item from a scenario.
func (w *Workspace) RemoveScenarioWork(ctx context.Context, scenarioID, workID string) error {
	return w.updateScenario(ctx, scenarioID, func(s *model.Scenario) error {
		s.Works = slices.DeleteFunc(s.Works, func(sw model.ScenarioWork) bool { return sw.WorkID == workID })
		return nil
	})
}

// SetScenarioWorkQuantity changes the quantity of a scenario entry.
func (w *Workspace) SetScenarioWorkQuantity(ctx context.Context, scenarioID, workID string, quantity float64) error {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return ErrInvalidQuantity
	}
	return w.updateEntry(ctx, scenarioID, workID, func(sw *model.ScenarioWork) {
		sw.Quantity = quantity
	})
}

// ToggleScenarioWork flips whether an entry counts toward the scenario cost.
func (w *Workspace) ToggleScenarioWork(ctx context.Context, scenarioID, workID string) error {
	return w.updateEntry(ctx, scenarioID, workID, func(sw *model.ScenarioWork) {
		sw.Active = !sw.Active
	})
}

func (w *Workspace) updateEntry(ctx context.Context, scenarioID, workID string, fn func(*model.ScenarioWork)) error {
	return w.updateScenario(ctx, scenarioID, func(s *model.Scenario) error {
		j := slices.IndexFunc(s.Works, func(sw model.ScenarioWork) bool { return sw.WorkID == workID })
		if j < 0 {
			return fmt.Errorf("work %s in scenario %s: %w", workID, scenarioID, common.ErrNotFound)
		}
		fn(&s.Works[j])
		return nil
	})
}

func (w *Workspace) updateScenario(ctx context.Context, scenarioID string, fn func(*model.Scenario) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.scenarioIndex(scenarioID)
	if i < 0 {
		return fmt.Errorf("scenario %s: %w", scenarioID, common.ErrNotFound)
	}
	prev := w.snapshot()
	if err := fn(&w.scenarios[i]); err != nil {
		w.works, w.scenarios = prev.works, prev.scenarios
		return err
	}
	return w.commit(ctx, prev, ScenariosKey)
}

// ScenarioCost returns the cost of one scenario.
func (w *Workspace) ScenarioCost(scenarioID string) (float64, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	i := w.scenarioIndex(scenarioID)
	if i < 0 {
		return 0, fmt.Errorf("scenario %s: %w", scenarioID, common.ErrNotFound)
	}
	return w.scenarios[i].Cost(w.workLocked), nil
}

// CellCost summarizes the scenario costs of one matrix cell. ok is false
// when the cell has no scenarios.
func (w *Workspace) CellCost(key model.MatrixKey) (model.CellCost, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var costs []float64
	for _, s := range w.scenarios {
		if s.MatrixKey == key {
			costs = append(costs, s.Cost(w.workLocked))
		}
	}
	return model.SummarizeCosts(costs)
}

// Reset clears both collections.
func (w *Workspace) Reset(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev := w.snapshot()
	w.works = nil
	w.scenarios = nil
	return w.commit(ctx, prev, WorksKey, ScenariosKey)
}
