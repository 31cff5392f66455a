package themes

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestGetDisciplineIcon(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{id: "KR_WALLS", want: "🧱"},
		{id: "EOM", want: "⚡"},
		{id: "VK_K", want: "🚰"},
		{id: "UNKNOWN", want: "📦"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, GetDisciplineIcon(tt.id))
		})
	}
}

func TestGetTheme(t *testing.T) {
	assert.Equal(t, lipgloss.Color("#cba6f7"), GetTheme("catppuccin-mocha").ProgressFull)
	assert.Equal(t, lipgloss.Color("#ea580c"), GetTheme("anything").ProgressFull)
	assert.Equal(t, lipgloss.Color("#404040"), GetTheme("").ProgressEmpty)
}
