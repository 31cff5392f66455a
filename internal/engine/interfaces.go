package engine

import (
	"context"

	"github.com/Veraticus/clash-cost/internal/llm"
	"github.com/Veraticus/clash-cost/internal/model"
)

// Estimator runs the backend stages for one item at a time.
type Estimator interface {
	ExtractItems(ctx context.Context, source string, category model.CategoryDescriptor, lang model.Language) (llm.ExtractResult, error)
	ScoreItems(ctx context.Context, items []llm.RawItem, category model.CategoryDescriptor) (llm.ScoreResult, error)
	ProposeResolutions(ctx context.Context, row, col model.CategoryDescriptor, lang model.Language) (llm.ProposeResult, error)
	MatchItems(ctx context.Context, resolution llm.Resolution, candidates []model.WorkItem) (llm.MatchResult, error)
}

// Observer follows a bulk run. Selected is called before each candidate is
// processed with the run state and the candidate key (category id, matrix
// key or scenario id).
type Observer interface {
	BulkStarted(run model.BulkRun)
	Selected(run model.BulkRun, key string)
	BulkFinished(summary BulkSummary)
}

type nopObserver struct{}

func (nopObserver) BulkStarted(model.BulkRun) {}
func (nopObserver) Selected(model.BulkRun, string) {}
func (nopObserver) BulkFinished(BulkSummary) {}
