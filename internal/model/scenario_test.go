package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioCost(t *testing.T) {
	works := map[string]WorkItem{
		"drill": {ID: "drill", Price: 1500},
		"seal":  {ID: "seal", Price: 200},
		"nan":   {ID: "nan", Price: math.NaN()},
	}
	lookup := func(id string) (WorkItem, bool) {
		w, ok := works[id]
		return w, ok
	}

	tests := []struct {
		name  string
		works []ScenarioWork
		want  float64
	}{
		{name: "empty", want: 0},
		{
			name:  "active entries only",
			works: []ScenarioWork{{WorkID: "drill", Quantity: 2, Active: true}, {WorkID: "seal", Quantity: 3, Active: false}},
			want:  3000,
		},
		{
			name:  "missing work counts zero",
			works: []ScenarioWork{{WorkID: "gone", Quantity: 5, Active: true}, {WorkID: "seal", Quantity: 1.5, Active: true}},
			want:  300,
		},
		{
			name:  "NaN price and quantity count zero",
			works: []ScenarioWork{{WorkID: "nan", Quantity: 1, Active: true}, {WorkID: "drill", Quantity: math.NaN(), Active: true}},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Scenario{Works: tt.works}
			assert.InDelta(t, tt.want, s.Cost(lookup), 1e-9)
		})
	}
}

func TestSummarizeCosts(t *testing.T) {
	_, ok := SummarizeCosts(nil)
	assert.False(t, ok)

	got, ok := SummarizeCosts([]float64{0, 0})
	require.True(t, ok)
	assert.Equal(t, CellCost{Min: 0, Max: 0, Count: 2}, got)

	got, ok = SummarizeCosts([]float64{0, 500, 120, 900})
	require.True(t, ok)
	assert.Equal(t, CellCost{Min: 120, Max: 900, Count: 4}, got)
}

func TestMatrixKey(t *testing.T) {
	key, err := ParseMatrixKey("AR_WALLS:VK_PIPE")
	require.NoError(t, err)
	assert.Equal(t, MatrixKey{Row: "AR_WALLS", Col: "VK_PIPE"}, key)
	assert.Equal(t, "AR_WALLS:VK_PIPE", key.String())
	assert.False(t, key.Diagonal())
	assert.True(t, MatrixKey{Row: "A", Col: "A"}.Diagonal())

	for _, bad := range []string{"", "A", "A:", ":B", "A:B:C"} {
		_, err := ParseMatrixKey(bad)
		assert.Error(t, err, bad)
	}

	data, err := json.Marshal(Scenario{ID: "s1", MatrixKey: key})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"matrixKey":"AR_WALLS:VK_PIPE"`)

	var back Scenario
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, key, back.MatrixKey)
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "RUB", want: ""},
		{in: "руб", want: ""},
		{in: " usd ", want: ""},
		{in: "$", want: ""},
		{in: "EUR", want: "EUR"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCurrency(tt.in))
		})
	}

	assert.Equal(t, "₽", WorkItem{Currency: "RUB"}.DisplayCurrency(LanguageRussian))
	assert.Equal(t, "$", WorkItem{}.DisplayCurrency(LanguageEnglish))
	assert.Equal(t, "EUR", WorkItem{Currency: "EUR"}.DisplayCurrency(LanguageEnglish))
}
