package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/clash-cost/internal/engine"
	"github.com/Veraticus/clash-cost/internal/model"
)

func TestBulkProgress_Lifecycle(t *testing.T) {
	var out bytes.Buffer
	p := NewBulkProgress(&out)

	p.BulkStarted(model.BulkRun{Kind: model.BulkLoad, Total: 2, Label: "Starting..."})
	p.Selected(model.BulkRun{Kind: model.BulkLoad, Total: 2, Current: 1, Label: "Loading KR..."}, "KR")
	p.Selected(model.BulkRun{Kind: model.BulkLoad, Total: 2, Current: 2, Label: "Loading VK..."}, "VK")
	p.BulkFinished(engine.BulkSummary{Kind: model.BulkLoad, Succeeded: 1, Failed: 1, Skipped: 3, Total: 2, Elapsed: 1500 * time.Millisecond})

	got := out.String()
	assert.Contains(t, got, "Loading VK...")
	assert.Contains(t, got, "Bulk Load Complete")
	assert.Contains(t, got, "Succeeded: 1")
	assert.Contains(t, got, "Failed: 1")
	assert.Contains(t, got, "Skipped: 3")
	assert.Nil(t, p.bar)
}

func TestBulkProgress_SelectedWithoutStart(t *testing.T) {
	var out bytes.Buffer
	p := NewBulkProgress(&out)
	p.Selected(model.BulkRun{Current: 1, Total: 1, Label: "Loading KR..."}, "KR")
	assert.Empty(t, out.String())
}

func TestRenderSummary(t *testing.T) {
	tests := []struct {
		name    string
		summary engine.BulkSummary
		want    []string
	}{
		{
			name:    "no-op",
			summary: engine.BulkSummary{Kind: model.BulkGenerate, NoOp: true},
			want:    []string{"Bulk Generate Complete", "Nothing to do"},
		},
		{
			name:    "stopped",
			summary: engine.BulkSummary{Kind: model.BulkMatch, Succeeded: 2, Stopped: true},
			want:    []string{"Bulk Match Stopped", "Succeeded: 2"},
		},
		{
			name:    "completed",
			summary: engine.BulkSummary{Kind: model.BulkLoad, Succeeded: 4, Elapsed: 2 * time.Second},
			want:    []string{"Bulk Load Complete", "Time taken: 2s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderSummary(tt.summary)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
		})
	}
}
