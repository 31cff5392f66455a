package model

import "math"

// ScenarioWork references a work item inside a scenario.
type ScenarioWork struct {
	WorkID   string  `json:"workId"`
	Quantity float64 `json:"quantity"`
	Active   bool    `json:"active"`
}

// Scenario is a proposed remediation for a matrix cell.
type Scenario struct {
	ID          string         `json:"id"`
	MatrixKey   MatrixKey      `json:"matrixKey"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Works       []ScenarioWork `json:"works"`
}

// HasWork reports whether the scenario already references workID.
func (s Scenario) HasWork(workID string) bool {
	for _, sw := range s.Works {
		if sw.WorkID == workID {
			return true
		}
	}
	return false
}

// Cost sums price × quantity over active entries. Missing items and NaN
// values contribute zero.
func (s Scenario) Cost(lookup func(id string) (WorkItem, bool)) float64 {
	var total float64
	for _, sw := range s.Works {
		if !sw.Active {
			continue
		}
		var price float64
		if w, ok := lookup(sw.WorkID); ok && !math.IsNaN(w.Price) {
			price = w.Price
		}
		qty := sw.Quantity
		if math.IsNaN(qty) {
			qty = 0
		}
		total += price * qty
	}
	return total
}

// CellCost summarizes scenario costs for one matrix cell.
type CellCost struct {
	Min   float64
	Max   float64
	Count int
}

// SummarizeCosts reduces the scenario costs of one cell. Min and Max ignore
// zero costs; Count includes every scenario. ok is false for an empty cell.
func SummarizeCosts(costs []float64) (CellCost, bool) {
	if len(costs) == 0 {
		return CellCost{}, false
	}

	summary := CellCost{Count: len(costs)}
	first := true
	for _, c := range costs {
		if c <= 0 {
			continue
		}
		if first {
			summary.Min, summary.Max = c, c
			first = false
			continue
		}
		summary.Min = math.Min(summary.Min, c)
		summary.Max = math.Max(summary.Max, c)
	}
	return summary, true
}
