package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/clash-cost/internal/engine"
)

func TestLoadGenerateMatchFlow(t *testing.T) {
	h := newCLIHarness(t)

	assert.Contains(t, h.mustRun(t, "load", "KR_WALLS"), "KR_WALLS now has 2 works (1 accepted)")

	out := h.mustRun(t, "generate", "KR_WALLS", "VK_K")
	assert.Contains(t, out, "KR_WALLS:VK_K has 1 scenarios")
	assert.Contains(t, out, "Reroute VK (K)")

	out = h.mustRun(t, "bulk", "match")
	assert.Contains(t, out, "Bulk Match Complete")
	assert.Contains(t, out, "Succeeded")

	assert.Contains(t, h.mustRun(t, "scenarios", "cost", "KR_WALLS:VK_K"), "$240 (1 var)")
	assert.Contains(t, h.mustRun(t, "bulk", "match"), "Nothing to do")

	assert.Equal(t, []string{
		"extract:KR",
		"propose:KR:VK (K)",
		"match:Reroute VK (K)",
	}, h.est.calls)

	logs := h.mustRun(t, "logs")
	assert.Contains(t, logs, engine.ActionLoadWorks)
	assert.Contains(t, logs, engine.ActionGenerateScenarios)
	assert.Contains(t, logs, engine.ActionMatchWorks)

	assert.Contains(t, h.mustRun(t, "logs", "--clear"), "Audit log cleared")
	assert.Contains(t, h.mustRun(t, "logs"), "The audit log is empty")
}

func TestMatchWithoutResult(t *testing.T) {
	h := newCLIHarness(t)
	importFixture(t, h)
	h.est.noMatch = true

	assert.Contains(t, h.mustRun(t, "match", "s1"), "No suitable works found")
	assert.Contains(t, h.mustRun(t, "scenarios", "cost", "KR_WALLS:VK_K"), "$100 (1 var)")

	h.est.noMatch = false
	assert.Contains(t, h.mustRun(t, "match", "s1"), "Matched 1 works, cost $200")
}

func TestLoadRequiresSource(t *testing.T) {
	h := newCLIHarness(t)
	t.Setenv("CLASH_ESTIMATE_SOURCE_URL", "")

	_, err := h.run(t, "", "load", "KR_WALLS")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrMissingSource)
	assert.Empty(t, h.est.calls)
}

func TestGenerateRejectsDiagonal(t *testing.T) {
	h := newCLIHarness(t)
	_, err := h.run(t, "", "generate", "KR_WALLS:KR_WALLS")
	assert.ErrorContains(t, err, "row and column must differ")
}

func TestBulkLoad(t *testing.T) {
	h := newCLIHarness(t)

	out := h.mustRun(t, "bulk", "load")
	assert.Contains(t, out, "Bulk Load Complete")
	assert.Contains(t, h.mustRun(t, "works", "list", "EOM"), "Core drilling EOM, SS")

	assert.Contains(t, h.mustRun(t, "bulk", "load"), "Nothing to do")

	_, err := h.run(t, "", "bulk", "sideways")
	assert.ErrorContains(t, err, "unknown bulk kind")
}

func TestMigrateCommand(t *testing.T) {
	h := newCLIHarness(t)
	assert.Contains(t, h.mustRun(t, "migrate"), "Database migrations completed")
	assert.Contains(t, h.mustRun(t, "migrate", "--status"), "Schema version: 2 (latest 2)")
}

func TestDetectCommand(t *testing.T) {
	h := newCLIHarness(t)

	locator := filepath.Join(h.dir, "report.xml")
	require.NoError(t, os.WriteFile(locator, []byte(`<exchange><clashtest>
  <left><clashselection><locator>lcop_selection_set_tree/АР/Фасад</locator></clashselection></left>
  <right><clashselection><locator>lcop_selection_set_tree/КР/Стены</locator></clashselection></right>
</clashtest></exchange>`), 0o600))

	named := filepath.Join(h.dir, "16_КР + ИТП (Изоляция).xml")
	require.NoError(t, os.WriteFile(named, []byte("<exchange><clashtest"), 0o600))

	out := h.mustRun(t, "detect", locator, named)
	assert.Contains(t, out, "AR_FACADE (unknown)")
	assert.Contains(t, out, "AR_FACADE:KR_WALLS")
	assert.Contains(t, out, "OV_ITP (unknown)")
	assert.Contains(t, out, "locator")

	_, err := h.run(t, "", "detect", filepath.Join(h.dir, "missing.xml"))
	assert.ErrorContains(t, err, "failed to open")
}
