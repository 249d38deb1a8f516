package nest

import (
	"testing"

	"github.com/piwi3910/CarpetNest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareScenarios_InventoryNotConsumed(t *testing.T) {
	carpets := []model.Carpet{
		rectCarpet("c1", "gray", "ord-1", 400, 300),
		rectCarpet("c2", "gray", "ord-1", 500, 350),
	}
	inventory := []model.SheetType{model.NewSheetType("Gray 200x140", 200, 140, "gray", 3)}
	scenarios := BuildDefaultScenarios(defaultTestSettings())

	results := CompareScenarios(scenarios, carpets, inventory)

	require.Len(t, results, len(scenarios))
	assert.Equal(t, 0, inventory[0].Used, "what-if runs must not consume stock")
}

func TestCompareScenarios_ReportsStatsPerScenario(t *testing.T) {
	carpets := []model.Carpet{
		rectCarpet("c1", "gray", "ord-1", 400, 300),
		rectCarpet("c2", "gray", "ord-1", 500, 350),
	}
	inventory := []model.SheetType{model.NewSheetType("Gray 200x140", 200, 140, "gray", 3)}
	scenarios := []Scenario{{Name: "Current Settings", Settings: defaultTestSettings()}}

	results := CompareScenarios(scenarios, carpets, inventory)

	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, "Current Settings", r.Scenario.Name)
	assert.Equal(t, 1, r.SheetsUsed)
	assert.Equal(t, 2, r.PlacedCount)
	assert.Equal(t, 0, r.UnplacedCount)
	assert.InDelta(t, 100.0-r.Result.TotalUsage(), r.WastePercent, 1e-9)
	assert.Greater(t, r.WastePercent, 0.0)
}

func TestBuildDefaultScenarios_VariantsFromBase(t *testing.T) {
	base := defaultTestSettings() // as-given order, gap 2mm, four rotations

	scenarios := BuildDefaultScenarios(base)

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	require.Len(t, scenarios, 5)
	assert.Equal(t, "Current Settings", names[0])
	assert.Contains(t, names, "Largest First")
	assert.Contains(t, names, "Genetic Ordering")
	assert.Contains(t, names, "Gap 1.0mm (half)")
	assert.Contains(t, names, "No Rotation")
}

func TestBuildDefaultScenarios_SkipsRedundantVariants(t *testing.T) {
	base := defaultTestSettings()
	base.Ordering = model.OrderingAreaDesc
	base.MinGap = 0.8
	base.Rotations = []float64{0}

	scenarios := BuildDefaultScenarios(base)

	require.Len(t, scenarios, 2, "only the genetic variant differs from this base")
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, "Genetic Ordering", scenarios[1].Name)
}
