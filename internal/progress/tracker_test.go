package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Veraticus/clash-cost/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var walls = model.LoadOperation("AR_WALLS")

func TestTracker_Lifecycle(t *testing.T) {
	tr := NewTracker(WithInterval(time.Hour))
	defer tr.Close()

	_, ok := tr.Get(walls)
	assert.False(t, ok)

	tr.Start(walls, "Parsing")
	got, ok := tr.Get(walls)
	require.True(t, ok)
	assert.Equal(t, model.OperationProgress{Label: "Parsing", Percent: StartPercent}, got)

	tr.SetLabel(walls, "Classifying", nil)
	got, _ = tr.Get(walls)
	assert.Equal(t, "Classifying", got.Label)
	assert.Equal(t, StartPercent, got.Percent)

	tr.SetLabel(walls, "Finalizing", Percent(95))
	got, _ = tr.Get(walls)
	assert.Equal(t, model.OperationProgress{Label: "Finalizing", Percent: 95}, got)

	tr.Stop(walls)
	_, ok = tr.Get(walls)
	assert.False(t, ok)
	assert.Empty(t, tr.Snapshot())
}

func TestTracker_AbsentIDsAreNoops(t *testing.T) {
	tr := NewTracker()
	defer tr.Close()

	tr.SetLabel(walls, "ghost", Percent(50))
	tr.Stop(walls)

	_, ok := tr.Get(walls)
	assert.False(t, ok)
}

func TestTracker_RampCapsAtCeiling(t *testing.T) {
	tr := NewTracker(WithInterval(time.Millisecond), WithStep(func() float64 { return 2.9 }))
	defer tr.Close()

	tr.Start(walls, "Parsing")

	require.Eventually(t, func() bool {
		p, _ := tr.Get(walls)
		return p.Percent == CeilingPercent
	}, 5*time.Second, time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	p, _ := tr.Get(walls)
	assert.Equal(t, CeilingPercent, p.Percent)
}

func TestTracker_RestartResetsProgress(t *testing.T) {
	tr := NewTracker(WithInterval(time.Millisecond), WithStep(func() float64 { return 1 }))
	defer tr.Close()

	tr.Start(walls, "first")
	require.Eventually(t, func() bool {
		p, _ := tr.Get(walls)
		return p.Percent > 20
	}, 5*time.Second, time.Millisecond)

	tr.Start(walls, "second")
	p, ok := tr.Get(walls)
	require.True(t, ok)
	assert.Equal(t, "second", p.Label)
	assert.Less(t, p.Percent, 20.0)
}

func TestTracker_IdsOfDifferentKindsDoNotCollide(t *testing.T) {
	tr := NewTracker(WithInterval(time.Hour))
	defer tr.Close()

	load := model.LoadOperation("X")
	match := model.MatchOperation("X")
	tr.Start(load, "load")
	tr.Start(match, "match")
	tr.Stop(load)

	snap := tr.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, "match", snap[match].Label)
}

func TestTracker_CloseStopsAllTickers(t *testing.T) {
	tr := NewTracker(WithInterval(time.Millisecond))
	for _, id := range []string{"a", "b", "c"} {
		tr.Start(model.LoadOperation(id), id)
	}

	tr.Close()
	assert.Empty(t, tr.Snapshot())

	tr.Start(walls, "after close")
	_, ok := tr.Get(walls)
	assert.False(t, ok)

	goleak.VerifyNone(t)
}
