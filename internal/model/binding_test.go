package model

import (
	"math"
	"testing"
)

func TestCalculateBinding(t *testing.T) {
	result := NestResult{
		Sheets: []PlacedSheet{
			{
				Placed: []PlacedCarpet{
					{Carpet: Carpet{OrderID: "ord-1"}, Polygon: rect(100, 50)},  // perimeter 300
					{Carpet: Carpet{OrderID: "ord-1"}, Polygon: rect(200, 100)}, // perimeter 600
				},
			},
			{
				Placed: []PlacedCarpet{
					{Carpet: Carpet{OrderID: "ord-2"}, Polygon: rect(50, 50)}, // perimeter 200
				},
			},
		},
	}

	summary := CalculateBinding(result, 10)
	if math.Abs(summary.TotalLinearMM-1100) > 1e-9 {
		t.Errorf("expected 1100mm of binding, got %v", summary.TotalLinearMM)
	}
	if summary.CarpetCount != 3 {
		t.Errorf("expected 3 mats, got %d", summary.CarpetCount)
	}
	if summary.TotalWithWasteMM != math.Ceil(1100*1.1) {
		t.Errorf("expected waste-adjusted total %v, got %v", math.Ceil(1100*1.1), summary.TotalWithWasteMM)
	}
	if math.Abs(summary.TotalLinearM-1.1) > 1e-9 {
		t.Errorf("expected 1.1m, got %v", summary.TotalLinearM)
	}
}

func TestCalculateBindingEmptyResult(t *testing.T) {
	summary := CalculateBinding(NestResult{}, 10)
	if summary.TotalLinearMM != 0 || summary.CarpetCount != 0 {
		t.Errorf("expected zero summary for empty result, got %+v", summary)
	}
}

func TestCalculateOrderBinding(t *testing.T) {
	result := NestResult{
		Sheets: []PlacedSheet{
			{
				Placed: []PlacedCarpet{
					{Carpet: Carpet{OrderID: "zakaz-b"}, Polygon: rect(100, 50)},
					{Carpet: Carpet{OrderID: "zakaz-a"}, Polygon: rect(50, 50)},
					{Carpet: Carpet{OrderID: "zakaz-b"}, Polygon: rect(100, 50)},
				},
			},
		},
	}

	orders := CalculateOrderBinding(result)
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	// Sorted by order ID
	if orders[0].OrderID != "zakaz-a" || orders[1].OrderID != "zakaz-b" {
		t.Errorf("expected sorted order IDs, got %v %v", orders[0].OrderID, orders[1].OrderID)
	}
	if orders[1].CarpetCount != 2 {
		t.Errorf("expected 2 mats for zakaz-b, got %d", orders[1].CarpetCount)
	}
	if math.Abs(orders[1].TotalLength-600) > 1e-9 {
		t.Errorf("expected 600mm for zakaz-b, got %v", orders[1].TotalLength)
	}
}
