package nest

import (
	"fmt"
	"testing"

	"github.com/piwi3910/CarpetNest/internal/model"
)

func makeTestCarpets() []model.Carpet {
	return []model.Carpet{
		rectCarpet("c1", "gray", "ord-1", 400, 300),
		rectCarpet("c2", "gray", "ord-1", 200, 150),
		rectCarpet("c3", "gray", "ord-2", 500, 400),
		rectCarpet("c4", "gray", "ord-2", 300, 300),
	}
}

func makeTestInventory(count int) []model.SheetType {
	return []model.SheetType{model.NewSheetType("Gray 200x140", 200, 140, "gray", count)}
}

func makeGeneticSettings() model.NestSettings {
	s := defaultTestSettings()
	s.Ordering = model.OrderingGenetic
	return s
}

func TestGeneticOrderingPlacesAllCarpets(t *testing.T) {
	n := New(makeGeneticSettings())

	result := n.Nest(makeTestCarpets(), makeTestInventory(3))

	totalPlaced := 0
	for _, sheet := range result.Sheets {
		totalPlaced += len(sheet.Placed)
	}
	if totalPlaced != 4 {
		t.Errorf("expected 4 carpets placed, got %d", totalPlaced)
	}
	if len(result.Unplaced) != 0 {
		t.Errorf("expected 0 unplaced carpets, got %d", len(result.Unplaced))
	}
}

func TestGeneticOrderingDeterministic(t *testing.T) {
	first := New(makeGeneticSettings()).OrderGenetic(makeTestCarpets(), makeTestInventory(3))
	second := New(makeGeneticSettings()).OrderGenetic(makeTestCarpets(), makeTestInventory(3))

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("position %d: %s vs %s - the fixed seed should reproduce the order",
				i, first[i].ID, second[i].ID)
		}
	}
}

func TestGeneticOrderingIsPermutation(t *testing.T) {
	carpets := make([]model.Carpet, 0, 8)
	for i := 1; i <= 8; i++ {
		carpets = append(carpets, rectCarpet(fmt.Sprintf("c%d", i), "gray", "ord-1", float64(100+i*30), 200))
	}

	ordered := New(makeGeneticSettings()).OrderGenetic(carpets, makeTestInventory(3))

	if len(ordered) != len(carpets) {
		t.Fatalf("expected %d carpets, got %d", len(carpets), len(ordered))
	}
	seen := make(map[string]bool)
	for _, c := range ordered {
		if seen[c.ID] {
			t.Errorf("duplicate carpet %s in genetic order", c.ID)
		}
		seen[c.ID] = true
	}
	for _, c := range carpets {
		if !seen[c.ID] {
			t.Errorf("missing carpet %s in genetic order", c.ID)
		}
	}
}

func TestGeneticOrderingSmallInputPassthrough(t *testing.T) {
	carpets := []model.Carpet{
		rectCarpet("c1", "gray", "ord-1", 400, 300),
		rectCarpet("c2", "gray", "ord-1", 200, 150),
	}

	ordered := New(makeGeneticSettings()).OrderGenetic(carpets, makeTestInventory(3))

	if len(ordered) != 2 || ordered[0].ID != "c1" || ordered[1].ID != "c2" {
		t.Errorf("fewer than 3 carpets should come back in input order, got %d entries", len(ordered))
	}
}

func TestGeneticOrderingMatchesGreedySheetCount(t *testing.T) {
	// Two oversized mats plus four half-height ones need two sheets however
	// they are ordered; the search must not do worse than largest-first.
	carpets := []model.Carpet{
		rectCarpet("big1", "gray", "ord-1", 950, 1250),
		rectCarpet("big2", "gray", "ord-1", 950, 1250),
	}
	for i := 1; i <= 4; i++ {
		carpets = append(carpets, rectCarpet(fmt.Sprintf("small%d", i), "gray", "ord-2", 950, 620))
	}

	greedySettings := defaultTestSettings()
	greedySettings.Ordering = model.OrderingAreaDesc
	greedyResult := New(greedySettings).Nest(carpets, makeTestInventory(4))

	geneticResult := New(makeGeneticSettings()).Nest(carpets, makeTestInventory(4))

	if len(geneticResult.Sheets) > len(greedyResult.Sheets) {
		t.Errorf("genetic used %d sheets, greedy used %d - the search should do at least as well",
			len(geneticResult.Sheets), len(greedyResult.Sheets))
	}
	if len(geneticResult.Unplaced) != 0 {
		t.Errorf("expected 0 unplaced carpets, got %d", len(geneticResult.Unplaced))
	}
}

func TestOrderCrossoverPreservesAllIndices(t *testing.T) {
	g := newGeneticOrderer(defaultTestSettings(), DefaultGeneticConfig(), makeTestCarpets(), makeTestInventory(3), 123)

	parent1 := chromosome{order: []int{0, 1, 2, 3}}
	parent2 := chromosome{order: []int{3, 2, 1, 0}}

	child := g.orderCrossover(parent1, parent2)

	if len(child.order) != 4 {
		t.Fatalf("expected 4 genes, got %d", len(child.order))
	}
	seen := make(map[int]bool)
	for _, idx := range child.order {
		if seen[idx] {
			t.Errorf("duplicate index %d in child", idx)
		}
		seen[idx] = true
	}
	for i := 0; i < 4; i++ {
		if !seen[i] {
			t.Errorf("missing index %d in child", i)
		}
	}
}
