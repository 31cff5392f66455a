package engine

import (
	"context"
	"fmt"

	"github.com/Veraticus/clash-cost/internal/common"
	"github.com/Veraticus/clash-cost/internal/llm"
	"github.com/Veraticus/clash-cost/internal/model"
	"github.com/Veraticus/clash-cost/internal/progress"
)

// Audit actions.
const (
	ActionLoadWorks         = "Load Works"
	ActionClassifyWorks     = "Classify Works"
	ActionGenerateScenarios = "Generate Scenarios"
	ActionMatchWorks        = "Match Works"
)

// Progress labels.
const (
	labelParsing     = "Parsing page..."
	labelClassifying = "Classifying..."
	labelAnalyzing   = "Generating scenarios..."
	labelMatching    = "Matching works..."
	labelFinalizing  = "Finalizing..."
)

// MatchOutcome reports what MatchScenario did.
type MatchOutcome int

const (
	// MatchOutcomeMatched means works were attached to the scenario.
	MatchOutcomeMatched MatchOutcome = iota
	// MatchOutcomeEmpty means the backend matched nothing; the scenario is unchanged.
	MatchOutcomeEmpty
)

// LoadWorks extracts, scores and stores works for one category. A scoring
// failure is logged and the works are stored with score 0.
func (e *Engine) LoadWorks(ctx context.Context, categoryID string) error {
	if e.cfg.Source == "" {
		return common.NewUserError("set estimate.source_url before loading works", ErrMissingSource)
	}
	disc, err := e.discipline(categoryID)
	if err != nil {
		return err
	}
	category := disc.Descriptor()

	op := model.LoadOperation(categoryID)
	e.tracker.Start(op, labelParsing)
	defer e.tracker.Stop(op)

	tokens := 0
	extracted, err := e.estimator.ExtractItems(ctx, e.cfg.Source, category, e.cfg.Language)
	tokens += extracted.TokensUsed
	if err != nil {
		e.recorder.Failure(ctx, ActionLoadWorks, fmt.Sprintf("%s (%s): %v", disc.Code, disc.Name, err), tokens)
		return fmt.Errorf("failed to extract works for %s: %w", categoryID, err)
	}

	e.tracker.SetLabel(op, labelClassifying, nil)

	scores, err := e.estimator.ScoreItems(ctx, extracted.Items, category)
	tokens += scores.TokensUsed
	if err != nil {
		e.logger.Warn("Classification failed, works will be loaded without scores",
			"category", categoryID,
			"error", err)
		e.recorder.Failure(ctx, ActionClassifyWorks, fmt.Sprintf("Classification failed for %s: %v", disc.Code, err), scores.TokensUsed)
		scores = llm.ScoreResult{}
	}

	e.tracker.SetLabel(op, labelFinalizing, progress.Percent(95))

	works := make([]model.WorkItem, 0, len(extracted.Items))
	for _, item := range extracted.Items {
		score := scores.ScoreFor(item.Name)
		status := model.WorkStatusPending
		if score >= e.cfg.MinScore {
			status = model.WorkStatusAccepted
		}
		works = append(works, model.WorkItem{
			ID:         e.newID(),
			CategoryID: categoryID,
			Name:       item.Name,
			Price:      item.Price,
			Currency:   model.NormalizeCurrency(item.Currency),
			Unit:       item.Unit,
			Source:     e.cfg.Source,
			Score:      score,
			Status:     status,
		})
	}

	if err := e.workspace.AddWorks(ctx, works...); err != nil {
		e.recorder.Failure(ctx, ActionLoadWorks, fmt.Sprintf("%s (%s): %v", disc.Code, disc.Name, err), tokens)
		return err
	}

	e.recorder.Success(ctx, ActionLoadWorks,
		fmt.Sprintf("[Status: %d] Loaded %d works for %s", extracted.Status, len(works), disc.Code), tokens)
	return nil
}

// GenerateScenarios proposes scenarios for one matrix cell and stores them.
func (e *Engine) GenerateScenarios(ctx context.Context, key model.MatrixKey) error {
	if key.Diagonal() {
		return common.NewUserError("a category cannot collide with itself", fmt.Errorf("invalid matrix key %s", key))
	}
	row, err := e.discipline(key.Row)
	if err != nil {
		return err
	}
	col, err := e.discipline(key.Col)
	if err != nil {
		return err
	}

	op := model.GenerateOperation(key)
	e.tracker.Start(op, labelAnalyzing)
	defer e.tracker.Stop(op)

	proposed, err := e.estimator.ProposeResolutions(ctx, row.Descriptor(), col.Descriptor(), e.cfg.Language)
	if err != nil {
		e.recorder.Failure(ctx, ActionGenerateScenarios,
			fmt.Sprintf("Row: %s vs Col: %s. Error: %v", row.Code, col.Code, err), proposed.TokensUsed)
		return fmt.Errorf("failed to generate scenarios for %s: %w", key, err)
	}

	e.tracker.SetLabel(op, labelFinalizing, progress.Percent(95))

	scenarios := make([]model.Scenario, 0, len(proposed.Resolutions))
	for _, r := range proposed.Resolutions {
		scenarios = append(scenarios, model.Scenario{
			ID:          e.newID(),
			MatrixKey:   key,
			Name:        r.Name,
			Description: r.Description,
			Works:       []model.ScenarioWork{},
		})
	}

	if err := e.workspace.AddScenarios(ctx, scenarios...); err != nil {
		e.recorder.Failure(ctx, ActionGenerateScenarios,
			fmt.Sprintf("Row: %s vs Col: %s. Error: %v", row.Code, col.Code, err), proposed.TokensUsed)
		return err
	}

	e.recorder.Success(ctx, ActionGenerateScenarios,
		fmt.Sprintf("[Status: %d] Row: %s vs Col: %s. Generated %d scenarios.", proposed.Status, row.Code, col.Code, len(scenarios)),
		proposed.TokensUsed)
	return nil
}

// MatchScenario asks the backend which works of the scenario's row category
// the scenario needs and replaces its work list. A match that yields nothing
// is logged and reported as MatchOutcomeEmpty without an error.
func (e *Engine) MatchScenario(ctx context.Context, scenarioID string) (MatchOutcome, error) {
	scenario, ok := e.workspace.Scenario(scenarioID)
	if !ok {
		return MatchOutcomeEmpty, fmt.Errorf("scenario %s: %w", scenarioID, common.ErrNotFound)
	}

	candidates := e.workspace.WorksByCategory(scenario.MatrixKey.Row)
	if len(candidates) == 0 {
		e.recorder.Failure(ctx, ActionMatchWorks, fmt.Sprintf("No works found for scenario %s.", scenario.Name), 0)
		return MatchOutcomeEmpty, fmt.Errorf("%w: %s", ErrNoCandidateWorks, scenario.Name)
	}

	op := model.MatchOperation(scenarioID)
	e.tracker.Start(op, labelMatching)
	defer e.tracker.Stop(op)

	matched, err := e.estimator.MatchItems(ctx, llm.Resolution{Name: scenario.Name, Description: scenario.Description}, candidates)
	if err != nil {
		e.recorder.Failure(ctx, ActionMatchWorks, fmt.Sprintf("Scenario '%s': %v", scenario.Name, err), matched.TokensUsed)
		return MatchOutcomeEmpty, fmt.Errorf("failed to match works for scenario %s: %w", scenarioID, err)
	}

	if len(matched.Matches) == 0 {
		e.recorder.Failure(ctx, ActionMatchWorks,
			fmt.Sprintf("[Status: %d] Scenario: '%s'. Backend could not match any works.\n\nRaw Response:\n%s", matched.Status, scenario.Name, matched.Raw),
			matched.TokensUsed)
		return MatchOutcomeEmpty, nil
	}

	works := make([]model.ScenarioWork, 0, len(matched.Matches))
	for _, m := range matched.Matches {
		works = append(works, model.ScenarioWork{WorkID: m.WorkID, Quantity: m.Quantity, Active: true})
	}
	if err := e.workspace.ReplaceScenarioWorks(ctx, scenarioID, works); err != nil {
		e.recorder.Failure(ctx, ActionMatchWorks, fmt.Sprintf("Scenario '%s': %v", scenario.Name, err), matched.TokensUsed)
		return MatchOutcomeEmpty, err
	}

	e.recorder.Success(ctx, ActionMatchWorks,
		fmt.Sprintf("[Status: %d] Scenario: '%s'. Matched %d works.", matched.Status, scenario.Name, len(works)),
		matched.TokensUsed)
	return MatchOutcomeMatched, nil
}
