package nest

import (
	"fmt"

	"github.com/piwi3910/CarpetNest/internal/model"
)

// Scenario defines a named settings variant to evaluate.
type Scenario struct {
	Name     string
	Settings model.NestSettings
}

// ScenarioResult holds the nesting outcome and summary statistics for a
// single scenario.
type ScenarioResult struct {
	Scenario      Scenario
	Result        model.NestResult
	SheetsUsed    int
	PlacedCount   int
	WastePercent  float64
	UnplacedCount int
}

// CompareScenarios nests the same carpets under each scenario against a
// private copy of the inventory, so what-if runs never consume real
// stock. Results keep scenario order for side-by-side display.
func CompareScenarios(scenarios []Scenario, carpets []model.Carpet, inventory []model.SheetType) []ScenarioResult {
	results := make([]ScenarioResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		scratch := append([]model.SheetType(nil), inventory...)
		result := New(scenario.Settings).Nest(carpets, scratch)

		results = append(results, ScenarioResult{
			Scenario:      scenario,
			Result:        result,
			SheetsUsed:    len(result.Sheets),
			PlacedCount:   result.PlacedCount(),
			WastePercent:  100.0 - result.TotalUsage(),
			UnplacedCount: len(result.Unplaced),
		})
	}
	return results
}

// BuildDefaultScenarios generates what-if variants of the base settings,
// varying the knobs that move the sheet count in practice: ordering
// strategy, gap width and rotation trials.
func BuildDefaultScenarios(base model.NestSettings) []Scenario {
	scenarios := []Scenario{
		{Name: "Current Settings", Settings: base},
	}

	if base.Ordering != model.OrderingAreaDesc {
		s := base
		s.Ordering = model.OrderingAreaDesc
		scenarios = append(scenarios, Scenario{Name: "Largest First", Settings: s})
	}
	if base.Ordering != model.OrderingGenetic {
		s := base
		s.Ordering = model.OrderingGenetic
		scenarios = append(scenarios, Scenario{Name: "Genetic Ordering", Settings: s})
	}

	// Tighter gap (simulate a finer knife)
	if base.MinGap > 1.0 {
		s := base
		s.MinGap = base.MinGap * 0.5
		scenarios = append(scenarios, Scenario{
			Name:     fmt.Sprintf("Gap %.1fmm (half)", s.MinGap),
			Settings: s,
		})
	}

	if len(base.Rotations) > 1 {
		s := base
		s.Rotations = []float64{0}
		scenarios = append(scenarios, Scenario{Name: "No Rotation", Settings: s})
	}

	return scenarios
}
