package fixtures

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/Veraticus/clash-cost/internal/model"
	"github.com/Veraticus/clash-cost/internal/workspace"
)

// Builder provides a fluent interface for constructing test data.
type Builder interface {
	// WithWork adds an accepted work item.
	WithWork(id, categoryID, name string, price float64) Builder

	// WithWorkItem adds a work item as given.
	WithWorkItem(item model.WorkItem) Builder

	// WithScenario adds a scenario for one matrix cell.
	WithScenario(id string, key model.MatrixKey, name string, entries ...model.ScenarioWork) Builder

	// WithFixture adds the works and scenarios of a predefined fixture.
	WithFixture(fixture Fixture) Builder

	// Build stores the data in ws and returns it.
	Build(ctx context.Context, ws *workspace.Workspace) (Data, error)
}

// Data is the seeded content of a workspace.
type Data struct {
	Works     []model.WorkItem
	Scenarios []model.Scenario
}

// MustWork returns the work with the given id or fails the test.
func (d Data) MustWork(t *testing.T, id string) model.WorkItem {
	t.Helper()
	i := slices.IndexFunc(d.Works, func(w model.WorkItem) bool { return w.ID == id })
	if i < 0 {
		t.Fatalf("work %q not found in test data", id)
	}
	return d.Works[i]
}

// MustScenario returns the scenario with the given id or fails the test.
func (d Data) MustScenario(t *testing.T, id string) model.Scenario {
	t.Helper()
	i := slices.IndexFunc(d.Scenarios, func(s model.Scenario) bool { return s.ID == id })
	if i < 0 {
		t.Fatalf("scenario %q not found in test data", id)
	}
	return d.Scenarios[i]
}

type dataBuilder struct {
	t    *testing.T
	data Data
}

// NewBuilder creates an empty builder for the given test.
func NewBuilder(t *testing.T) Builder {
	t.Helper()
	return &dataBuilder{t: t}
}

func (b *dataBuilder) WithWork(id, categoryID, name string, price float64) Builder {
	return b.WithWorkItem(model.WorkItem{
		ID:         id,
		CategoryID: categoryID,
		Name:       name,
		Unit:       "pcs",
		Source:     "fixture",
		Price:      price,
		Score:      1,
		Status:     model.WorkStatusAccepted,
	})
}

func (b *dataBuilder) WithWorkItem(item model.WorkItem) Builder {
	b.data.Works = append(b.data.Works, item)
	return b
}

func (b *dataBuilder) WithScenario(id string, key model.MatrixKey, name string, entries ...model.ScenarioWork) Builder {
	b.data.Scenarios = append(b.data.Scenarios, model.Scenario{
		ID:        id,
		MatrixKey: key,
		Name:      name,
		Works:     append([]model.ScenarioWork{}, entries...),
	})
	return b
}

func (b *dataBuilder) WithFixture(fixture Fixture) Builder {
	b.data.Works = append(b.data.Works, fixture.Works()...)
	for _, s := range fixture.Scenarios() {
		s.Works = slices.Clone(s.Works)
		b.data.Scenarios = append(b.data.Scenarios, s)
	}
	return b
}

func (b *dataBuilder) Build(ctx context.Context, ws *workspace.Workspace) (Data, error) {
	b.t.Helper()

	if err := b.validate(); err != nil {
		return Data{}, err
	}
	if len(b.data.Works) > 0 {
		if err := ws.AddWorks(ctx, b.data.Works...); err != nil {
			return Data{}, fmt.Errorf("failed to seed works: %w", err)
		}
	}
	if len(b.data.Scenarios) > 0 {
		if err := ws.AddScenarios(ctx, b.data.Scenarios...); err != nil {
			return Data{}, fmt.Errorf("failed to seed scenarios: %w", err)
		}
	}
	return Data{Works: ws.Works(), Scenarios: ws.Scenarios()}, nil
}

// validate rejects duplicate ids and entries pointing at unknown works.
func (b *dataBuilder) validate() error {
	works := make(map[string]struct{}, len(b.data.Works))
	for _, w := range b.data.Works {
		if _, dup := works[w.ID]; dup {
			return fmt.Errorf("duplicate work id %q", w.ID)
		}
		works[w.ID] = struct{}{}
	}
	scenarios := make(map[string]struct{}, len(b.data.Scenarios))
	for _, s := range b.data.Scenarios {
		if _, dup := scenarios[s.ID]; dup {
			return fmt.Errorf("duplicate scenario id %q", s.ID)
		}
		scenarios[s.ID] = struct{}{}
		for _, sw := range s.Works {
			if _, ok := works[sw.WorkID]; !ok {
				return fmt.Errorf("scenario %q references unknown work %q", s.ID, sw.WorkID)
			}
		}
	}
	return nil
}
