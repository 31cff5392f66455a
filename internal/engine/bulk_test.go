package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/clash-cost/internal/common"
	"github.com/Veraticus/clash-cost/internal/llm"
	"github.com/Veraticus/clash-cost/internal/model"
)

func TestRunBulk_LoadSkipsPopulatedCategories(t *testing.T) {
	h := newHarness(t, nil)
	h.addWork(t, "existing", "VK")

	summary, err := h.engine.RunBulk(context.Background(), model.BulkLoad, NewStopToken())
	require.NoError(t, err)

	assert.Equal(t, []string{"KR", "EOM"}, h.est.extracted)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Total)
	assert.False(t, summary.Stopped)
	assert.Nil(t, h.engine.Status())

	assert.Equal(t, []time.Duration{DefaultLoadDelay}, h.sleeps)
	assert.Equal(t, []string{"KR", "EOM"}, h.observer.selected)
	require.Len(t, h.observer.runs, 2)
	assert.Equal(t, model.BulkRun{Kind: model.BulkLoad, Label: "Loading KR...", Total: 2, Current: 1}, h.observer.runs[0])
	assert.Equal(t, 2, h.observer.runs[1].Current)

	entries := h.entries(t)
	assert.Equal(t, "Bulk Load", entries[0].Action)
	assert.Contains(t, entries[0].Details, "Success: 2, Failed: 0, Skipped: 1.")
}

func TestRunBulk_FailuresAreIsolated(t *testing.T) {
	h := newHarness(t, nil)
	h.est.extract = func(_ context.Context, category model.CategoryDescriptor) (llm.ExtractResult, error) {
		switch category.Code {
		case "KR":
			return llm.ExtractResult{}, &common.EmptyResultError{Stage: "extract", Message: "no items extracted for category KR"}
		case "VK":
			panic("boom")
		}
		return llm.ExtractResult{Items: []llm.RawItem{{Name: "Tray", Unit: "m", Price: 5}}}, nil
	}

	summary, err := h.engine.RunBulk(context.Background(), model.BulkLoad, NewStopToken())
	require.NoError(t, err)

	assert.Equal(t, []string{"KR", "VK", "EOM"}, h.est.extracted)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	assert.False(t, h.ws.HasWorks("KR"))
	assert.False(t, h.ws.HasWorks("VK"))
	assert.True(t, h.ws.HasWorks("EOM"))
}

func TestRunBulk_GenerateCandidates(t *testing.T) {
	h := newHarness(t, nil)
	h.addWork(t, "w1", "KR")
	h.addWork(t, "w2", "EOM")
	require.NoError(t, h.ws.AddScenarios(context.Background(),
		model.Scenario{ID: "s1", MatrixKey: model.MatrixKey{Row: "KR", Col: "VK"}, Name: "Existing"}))

	summary, err := h.engine.RunBulk(context.Background(), model.BulkGenerate, NewStopToken())
	require.NoError(t, err)

	assert.Equal(t, []string{"KR:EOM", "EOM:KR", "EOM:VK"}, h.est.proposed)
	assert.Equal(t, []string{"KR:EOM", "EOM:KR", "EOM:VK"}, h.observer.selected)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, "Thinking KR:EOM...", h.observer.runs[0].Label)
	for _, key := range h.est.proposed {
		k, err := model.ParseMatrixKey(key)
		require.NoError(t, err)
		assert.False(t, k.Diagonal())
	}
}

func TestRunBulk_MatchCandidates(t *testing.T) {
	h := newHarness(t, nil)
	h.addWork(t, "w1", "KR")
	ctx := context.Background()
	require.NoError(t, h.ws.AddScenarios(ctx,
		model.Scenario{ID: "done", MatrixKey: model.MatrixKey{Row: "KR", Col: "VK"}, Name: "Done",
			Works: []model.ScenarioWork{{WorkID: "w1", Quantity: 1, Active: false}}},
		model.Scenario{ID: "todo", MatrixKey: model.MatrixKey{Row: "KR", Col: "EOM"}, Name: "A rather long scenario name"},
		model.Scenario{ID: "empty-row", MatrixKey: model.MatrixKey{Row: "VK", Col: "KR"}, Name: "Orphan"},
		model.Scenario{ID: "nothing", MatrixKey: model.MatrixKey{Row: "KR", Col: "VK"}, Name: "Nothing"},
	))
	h.est.match = func(resolution llm.Resolution, candidates []model.WorkItem) (llm.MatchResult, error) {
		if resolution.Name == "Nothing" {
			return llm.MatchResult{}, nil
		}
		return llm.MatchResult{Matches: []llm.Match{{WorkID: candidates[0].ID, Quantity: 3}}}, nil
	}

	summary, err := h.engine.RunBulk(ctx, model.BulkMatch, NewStopToken())
	require.NoError(t, err)

	assert.Equal(t, []string{"A rather long scenario name", "Nothing"}, h.est.matched)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, "Matching... A rather long s...", h.observer.runs[0].Label)

	todo, _ := h.ws.Scenario("todo")
	assert.Equal(t, []model.ScenarioWork{{WorkID: "w1", Quantity: 3, Active: true}}, todo.Works)
	nothing, _ := h.ws.Scenario("nothing")
	assert.Empty(t, nothing.Works)
}

func TestRunBulk_StopAfterCandidate(t *testing.T) {
	h := newHarness(t, nil)
	token := NewStopToken()
	h.est.extract = func(_ context.Context, category model.CategoryDescriptor) (llm.ExtractResult, error) {
		if category.Code == "VK" {
			h.engine.Stop(token)
			assert.Equal(t, "Stopping...", h.engine.Status().Label)
		}
		return llm.ExtractResult{Items: []llm.RawItem{{Name: category.Code, Unit: "m", Price: 1}}}, nil
	}

	summary, err := h.engine.RunBulk(context.Background(), model.BulkLoad, token)
	require.NoError(t, err)

	assert.True(t, summary.Stopped)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, []string{"KR", "VK"}, h.est.extracted)
	assert.True(t, h.ws.HasWorks("KR"))
	assert.True(t, h.ws.HasWorks("VK"))
	assert.False(t, h.ws.HasWorks("EOM"))

	var stopped bool
	for _, e := range h.entries(t) {
		if e.Details == "Operation stopped by user." {
			stopped = true
			assert.Equal(t, model.LogStatusError, e.Status)
		}
	}
	assert.True(t, stopped)
}

func TestRunBulk_TokenIsClearedAtStart(t *testing.T) {
	h := newHarness(t, nil)
	token := NewStopToken()
	token.Stop()

	summary, err := h.engine.RunBulk(context.Background(), model.BulkLoad, token)
	require.NoError(t, err)
	assert.False(t, summary.Stopped)
	assert.Equal(t, 3, summary.Succeeded)
}

func TestRunBulk_ContextCanceled(t *testing.T) {
	h := newHarness(t, func(c *Config) {
		c.Bulk.Sleep = func(context.Context, time.Duration) error {
			return context.Canceled
		}
	})

	summary, err := h.engine.RunBulk(context.Background(), model.BulkLoad, NewStopToken())
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, summary.Stopped)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, []string{"KR"}, h.est.extracted)
	assert.Nil(t, h.engine.Status())
}

func TestRunBulk_NoOp(t *testing.T) {
	h := newHarness(t, nil)
	for _, d := range testDisciplines {
		h.addWork(t, "w-"+d.ID, d.ID)
	}

	summary, err := h.engine.RunBulk(context.Background(), model.BulkLoad, NewStopToken())
	require.NoError(t, err)

	assert.True(t, summary.NoOp)
	assert.Equal(t, 3, summary.Skipped)
	assert.Empty(t, h.est.extracted)
	assert.Empty(t, h.observer.started)
	require.Len(t, h.observer.finished, 1)

	entries := h.entries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, model.LogStatusSuccess, entries[0].Status)
}

func TestRunBulk_Gates(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		kind    model.BulkKind
		wantErr error
	}{
		{
			name:    "automation disabled",
			mutate:  func(c *Config) { c.AutomationEnabled = false },
			kind:    model.BulkMatch,
			wantErr: ErrAutomationDisabled,
		},
		{
			name:    "load without source",
			mutate:  func(c *Config) { c.Source = "" },
			kind:    model.BulkLoad,
			wantErr: ErrMissingSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.mutate)
			summary, err := h.engine.RunBulk(context.Background(), tt.kind, NewStopToken())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, summary)
			assert.Empty(t, h.entries(t))
		})
	}
}

func TestRunBulk_RejectsConcurrentRun(t *testing.T) {
	h := newHarness(t, nil)
	var nested error
	h.est.extract = func(ctx context.Context, category model.CategoryDescriptor) (llm.ExtractResult, error) {
		if nested == nil {
			_, nested = h.engine.RunBulk(ctx, model.BulkGenerate, NewStopToken())
		}
		return llm.ExtractResult{Items: []llm.RawItem{{Name: category.Code, Unit: "m", Price: 1}}}, nil
	}

	_, err := h.engine.RunBulk(context.Background(), model.BulkLoad, NewStopToken())
	require.NoError(t, err)
	assert.True(t, errors.Is(nested, ErrBulkRunActive))

	_, err = h.engine.RunBulk(context.Background(), model.BulkGenerate, NewStopToken())
	assert.NoError(t, err)
}

func TestStopToken_NilSafe(t *testing.T) {
	var token *StopToken
	token.Stop()
	assert.False(t, token.Stopped())

	summary, err := newHarness(t, nil).engine.RunBulk(context.Background(), model.BulkLoad, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Succeeded)
}
