package llm

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover(t *testing.T) {
	tests := []struct {
		want any
		name string
		raw  string
	}{
		{
			name: "prose and json fence",
			raw:  "Sure! ```json\n[{\"name\":\"Local Shift\",\"description\":\"Move pipe 200mm\"}]\n```",
			want: []any{map[string]any{"name": "Local Shift", "description": "Move pipe 200mm"}},
		},
		{
			name: "truncated array salvaged to last complete object",
			raw:  `[{"name":"A"},{"name":"B"`,
			want: []any{map[string]any{"name": "A"}},
		},
		{
			name: "truncated array without closing brace",
			raw:  `[{"name":"A"`,
			want: nil,
		},
		{
			name: "empty input is an empty object",
			raw:  "",
			want: map[string]any{},
		},
		{
			name: "no json opener is an empty object",
			raw:  "I cannot help with that.",
			want: map[string]any{},
		},
		{
			name: "object before array",
			raw:  `Result: {"items":[{"name":"Drill"}]}`,
			want: map[string]any{"items": []any{map[string]any{"name": "Drill"}}},
		},
		{
			name: "plain fence",
			raw:  "```\n{\"a\":1}\n```",
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "broken object is not salvaged",
			raw:  `{"items":[{"name":"A"}`,
			want: nil,
		},
		{
			name: "trailing prose after array is cut at last object",
			raw:  `[{"name":"A"}] hope this helps`,
			want: []any{map[string]any{"name": "A"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recover(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Recover() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRecoverJSON(t *testing.T) {
	doc, ok := RecoverJSON("```json\n{\"scenarios\":[]}\n```")
	require.True(t, ok)
	assert.JSONEq(t, `{"scenarios":[]}`, string(doc))

	_, ok = RecoverJSON("[{")
	assert.False(t, ok)
}

func TestRecoverArray(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantLen int
		wantOK  bool
	}{
		{name: "bare array", doc: `[{"name":"A"},{"name":"B"}]`, wantLen: 2, wantOK: true},
		{name: "scenarios key", doc: `{"scenarios":[{"name":"Reroute"}]}`, wantLen: 1, wantOK: true},
		{name: "items key", doc: `{"items":[{"name":"A"}]}`, wantLen: 1, wantOK: true},
		{name: "first array property", doc: `{"note":"x","solutions":[{"name":"A"}],"other":[1,2,3]}`, wantLen: 1, wantOK: true},
		{name: "null conventional key falls through", doc: `{"scenarios":null,"alt":[{"name":"A"}]}`, wantLen: 1, wantOK: true},
		{name: "no array", doc: `{"name":"A"}`, wantLen: 0, wantOK: false},
		{name: "empty object", doc: `{}`, wantLen: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, ok := recoverArray(json.RawMessage(tt.doc), "scenarios", "items")
			assert.Equal(t, tt.wantOK, ok)
			assert.Len(t, list, tt.wantLen)
		})
	}
}
