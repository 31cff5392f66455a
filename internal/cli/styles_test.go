package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatters(t *testing.T) {
	tests := []struct {
		format func(string) string
		name   string
		icon   string
	}{
		{name: "success", format: FormatSuccess, icon: SuccessIcon},
		{name: "error", format: FormatError, icon: ErrorIcon},
		{name: "warning", format: FormatWarning, icon: WarningIcon},
		{name: "info", format: FormatInfo, icon: InfoIcon},
		{name: "prompt", format: FormatPrompt, icon: "→"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.format("message")
			assert.Contains(t, got, tt.icon)
			assert.Contains(t, got, "message")
		})
	}
}

func TestRenderBox(t *testing.T) {
	got := RenderBox("Bulk match", "Succeeded: 3")

	lines := strings.Split(got, "\n")
	require.Greater(t, len(lines), 2)
	assert.Contains(t, got, "Bulk match")
	assert.Contains(t, got, "Succeeded: 3")
	assert.Less(t, strings.Index(got, "Bulk match"), strings.Index(got, "Succeeded: 3"))
}

func TestRenderTable(t *testing.T) {
	got := RenderTable(
		[]string{"ID", "Name"},
		[][]string{
			{"w1", "Cable tray"},
			{"w22", "Fire damper relocation"},
			{"w3"},
		},
	)

	lines := strings.Split(got, "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, got, "Fire damper relocation")

	nameCol := strings.Index(lines[len(lines)-2], "Fire")
	assert.Equal(t, nameCol, strings.Index(lines[len(lines)-3], "Cable"))
}
