package sheets

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/Veraticus/clash-cost/internal/model"
)

// CostSource is the workspace view a report is built from.
type CostSource interface {
	Scenarios() []model.Scenario
	ScenarioCost(scenarioID string) (float64, error)
	CellCost(key model.MatrixKey) (model.CellCost, bool)
}

// ScenarioRow is one line of the scenario detail section.
type ScenarioRow struct {
	Row         string
	Col         string
	Name        string
	Description string
	Works       int
	Cost        float64
}

// MatrixReport is the data written to the spreadsheet.
type MatrixReport struct {
	Cells       map[model.MatrixKey]model.CellCost
	Currency    string
	Disciplines []model.Discipline
	Scenarios   []ScenarioRow
}

// BuildReport collects cell summaries for every off-diagonal pair and the cost
// of every scenario. Scenarios are ordered by matrix row, then column.
func BuildReport(src CostSource, disciplines []model.Discipline, lang model.Language) (MatrixReport, error) {
	report := MatrixReport{
		Cells:       make(map[model.MatrixKey]model.CellCost),
		Currency:    lang.CurrencySymbol(),
		Disciplines: disciplines,
	}

	codes := make(map[string]string, len(disciplines))
	order := make(map[string]int, len(disciplines))
	for i, d := range disciplines {
		codes[d.ID] = disciplineLabel(d)
		order[d.ID] = i
		for _, c := range disciplines {
			key := model.MatrixKey{Row: d.ID, Col: c.ID}
			if key.Diagonal() {
				continue
			}
			if cell, ok := src.CellCost(key); ok {
				report.Cells[key] = cell
			}
		}
	}

	rank := func(id string) int {
		if i, ok := order[id]; ok {
			return i
		}
		return len(disciplines)
	}
	scenarios := src.Scenarios()
	slices.SortStableFunc(scenarios, func(a, b model.Scenario) int {
		if c := cmp.Compare(rank(a.MatrixKey.Row), rank(b.MatrixKey.Row)); c != 0 {
			return c
		}
		return cmp.Compare(rank(a.MatrixKey.Col), rank(b.MatrixKey.Col))
	})

	for _, s := range scenarios {
		cost, err := src.ScenarioCost(s.ID)
		if err != nil {
			return MatrixReport{}, fmt.Errorf("failed to cost scenario %s: %w", s.ID, err)
		}
		report.Scenarios = append(report.Scenarios, ScenarioRow{
			Row:         labelOr(codes, s.MatrixKey.Row),
			Col:         labelOr(codes, s.MatrixKey.Col),
			Name:        s.Name,
			Description: s.Description,
			Works:       activeWorks(s),
			Cost:        cost,
		})
	}

	return report, nil
}

func activeWorks(s model.Scenario) int {
	n := 0
	for _, w := range s.Works {
		if w.Active {
			n++
		}
	}
	return n
}

func disciplineLabel(d model.Discipline) string {
	return d.Code + " " + d.Name
}

func labelOr(labels map[string]string, id string) string {
	if l, ok := labels[id]; ok {
		return l
	}
	return id
}

// FormatCell renders a cell summary as "<currency><min> - <max> (<n> var)".
func FormatCell(cell model.CellCost, currency string) string {
	value := currency + formatAmount(cell.Min)
	if cell.Min != cell.Max {
		value += " - " + formatAmount(cell.Max)
	}
	return fmt.Sprintf("%s (%d var)", value, cell.Count)
}

func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
