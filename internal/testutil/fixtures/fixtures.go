package fixtures

import "github.com/Veraticus/clash-cost/internal/model"

// Fixture is a predefined set of works and scenarios.
type Fixture interface {
	Name() string
	Description() string
	Works() []model.WorkItem
	Scenarios() []model.Scenario
}

type fixture struct {
	name        string
	description string
	works       []model.WorkItem
	scenarios   []model.Scenario
}

func (f *fixture) Name() string                { return f.name }
func (f *fixture) Description() string         { return f.description }
func (f *fixture) Works() []model.WorkItem     { return f.works }
func (f *fixture) Scenarios() []model.Scenario { return f.scenarios }

// Cells used by the predefined fixtures.
var (
	CellWallsDrainage = model.MatrixKey{Row: "KR_WALLS", Col: "VK_K"}
	CellDrainageWalls = model.MatrixKey{Row: "VK_K", Col: "KR_WALLS"}
)

// Predefined fixtures for common test scenarios.
var (
	// FixtureEmpty seeds nothing.
	FixtureEmpty Fixture = &fixture{
		name:        "Empty",
		description: "No works and no scenarios",
	}

	// FixtureCellRange gives CellWallsDrainage two priced scenarios with
	// costs 3000 and 501, and CellDrainageWalls one scenario without works.
	FixtureCellRange Fixture = &fixture{
		name:        "CellRange",
		description: "One cell with a cost range and one unpriced cell",
		works: []model.WorkItem{
			{ID: "drill", CategoryID: "KR_WALLS", Name: "Drilling", Unit: "pcs", Price: 1500, Score: 0.9, Status: model.WorkStatusAccepted},
			{ID: "seal", CategoryID: "KR_WALLS", Name: "Sealing", Unit: "m", Price: 250.5, Score: 0.8, Status: model.WorkStatusAccepted},
		},
		scenarios: []model.Scenario{
			{ID: "s3", MatrixKey: CellDrainageWalls, Name: "Reroute pipe", Works: []model.ScenarioWork{}},
			{ID: "s1", MatrixKey: CellWallsDrainage, Name: "Core drill",
				Works: []model.ScenarioWork{Entry("drill", 2), Inactive("seal", 1)}},
			{ID: "s2", MatrixKey: CellWallsDrainage, Name: "Seal only",
				Works: []model.ScenarioWork{Entry("seal", 2)}},
		},
	}

	// FixtureReview holds pending works on both sides of the score threshold.
	FixtureReview Fixture = &fixture{
		name:        "Review",
		description: "Pending works awaiting acceptance",
		works: []model.WorkItem{
			{ID: "tray", CategoryID: "EOM", Name: "Cable tray", Unit: "m", Price: 40, Score: 0.95, Status: model.WorkStatusPending},
			{ID: "socket", CategoryID: "EOM", Name: "Socket", Unit: "pcs", Price: 12, Score: 0.2, Status: model.WorkStatusPending},
			{ID: "duct", CategoryID: "OV_VENT", Name: "Duct", Unit: "m", Price: 75, Score: 0.5, Status: model.WorkStatusPending},
		},
	}
)

// Entry is an active scenario entry.
func Entry(workID string, quantity float64) model.ScenarioWork {
	return model.ScenarioWork{WorkID: workID, Quantity: quantity, Active: true}
}

// Inactive is a scenario entry excluded from the cost.
func Inactive(workID string, quantity float64) model.ScenarioWork {
	return model.ScenarioWork{WorkID: workID, Quantity: quantity}
}
