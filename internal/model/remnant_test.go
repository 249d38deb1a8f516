package model

import (
	"math"
	"testing"
)

func placedSheetWithRect(w, h float64) PlacedSheet {
	return PlacedSheet{
		SheetNumber: 1,
		TypeName:    "EVA 140x200 black",
		Color:       "black",
		Width:       1400,
		Height:      2000,
		Placed: []PlacedCarpet{
			{Polygon: rect(w, h)},
		},
	}
}

func TestDetectRemnantsEmptySheetIsOneRemnant(t *testing.T) {
	ps := PlacedSheet{SheetNumber: 3, TypeName: "EVA", Color: "grey", Width: 1400, Height: 2000}
	remnants := DetectRemnants(ps, 1450, 2)
	if len(remnants) != 1 {
		t.Fatalf("expected 1 remnant for an empty sheet, got %d", len(remnants))
	}
	r := remnants[0]
	if r.Width != 1400 || r.Height != 2000 {
		t.Errorf("expected full-sheet remnant, got %vx%v", r.Width, r.Height)
	}
	if r.Value != 1450 {
		t.Errorf("empty sheet remnant should carry full price, got %v", r.Value)
	}
}

func TestDetectRemnantsRightStrip(t *testing.T) {
	// One 400x2000 carpet on a 1400x2000 sheet leaves a ~1000mm right strip.
	ps := placedSheetWithRect(400, 2000)
	remnants := DetectRemnants(ps, 0, 2)
	if len(remnants) != 1 {
		t.Fatalf("expected 1 remnant, got %d", len(remnants))
	}
	r := remnants[0]
	if math.Abs(r.X-402) > 1e-9 {
		t.Errorf("expected strip to start at 402 (carpet edge + gap), got %v", r.X)
	}
	if math.Abs(r.Width-998) > 1e-9 {
		t.Errorf("expected strip width 998, got %v", r.Width)
	}
	if r.Height != 2000 {
		t.Errorf("expected full-height strip, got %v", r.Height)
	}
}

func TestDetectRemnantsRightAndTopStrips(t *testing.T) {
	// A 400x500 carpet leaves both a right strip and a top strip.
	ps := placedSheetWithRect(400, 500)
	remnants := DetectRemnants(ps, 0, 0)
	if len(remnants) != 2 {
		t.Fatalf("expected 2 remnants, got %d", len(remnants))
	}
	// Sorted by area descending: right strip (1000x2000) first.
	if remnants[0].Area() < remnants[1].Area() {
		t.Error("remnants must be sorted largest first")
	}
	top := remnants[1]
	if top.Y != 500 {
		t.Errorf("expected top strip to start at y=500, got %v", top.Y)
	}
	// Top strip must not overlap the right strip
	if top.Width > 400 {
		t.Errorf("top strip must stop at the material edge, got width %v", top.Width)
	}
}

func TestDetectRemnantsSkipsNarrowStrips(t *testing.T) {
	// Carpet covers all but 100mm of the width: below MinRemnantDimension.
	ps := placedSheetWithRect(1300, 2000)
	remnants := DetectRemnants(ps, 0, 0)
	if len(remnants) != 0 {
		t.Errorf("expected no remnants for a narrow strip, got %d", len(remnants))
	}
}

func TestDetectRemnantsProportionalValue(t *testing.T) {
	ps := placedSheetWithRect(400, 2000)
	remnants := DetectRemnants(ps, 1400, 0)
	if len(remnants) != 1 {
		t.Fatalf("expected 1 remnant, got %d", len(remnants))
	}
	// Right strip is 1000/1400 of the sheet area.
	want := 1000.0 / 1400.0 * 1400
	if math.Abs(remnants[0].Value-want) > 1e-6 {
		t.Errorf("expected prorated value %.2f, got %.2f", want, remnants[0].Value)
	}
}

func TestRemnantToSheetPreset(t *testing.T) {
	r := Remnant{
		SheetNumber: 2,
		TypeName:    "EVA 140x200 black",
		Color:       "black",
		Width:       900,
		Height:      2000,
		Value:       932.14,
	}
	sp := r.ToSheetPreset()
	if sp.Width != 90 || sp.Height != 200 {
		t.Errorf("expected 90x200 cm preset, got %vx%v", sp.Width, sp.Height)
	}
	if sp.Color != "black" {
		t.Errorf("expected color carried over, got %s", sp.Color)
	}
	if sp.Price != r.Value {
		t.Errorf("expected price %v, got %v", r.Value, sp.Price)
	}
}

func TestDetectAllRemnants(t *testing.T) {
	result := NestResult{
		Sheets: []PlacedSheet{
			placedSheetWithRect(400, 2000),
			{SheetNumber: 2, TypeName: "unknown type", Width: 1400, Height: 2000},
		},
	}
	all := DetectAllRemnants(result, map[string]float64{"EVA 140x200 black": 1450}, 2)
	if len(all) != 2 {
		t.Fatalf("expected 2 remnants across sheets, got %d", len(all))
	}
	if TotalRemnantArea(all) <= 0 {
		t.Error("expected positive total remnant area")
	}
}
