package model

import (
	"math"
	"sort"
)

// BindingSummary holds the edge binding tape requirements for a nest result.
// Cut mats are edge-serged along their full outline, so the requirement is
// the sum of placed polygon perimeters plus a waste allowance.
type BindingSummary struct {
	TotalLinearMM    float64 `json:"total_linear_mm"`     // Total binding length in mm (no waste)
	TotalLinearM     float64 `json:"total_linear_m"`      // Total binding length in meters (no waste)
	WastePercent     float64 `json:"waste_percent"`       // Waste percentage applied
	TotalWithWasteMM float64 `json:"total_with_waste_mm"` // Total with waste in mm
	TotalWithWasteM  float64 `json:"total_with_waste_m"`  // Total with waste in meters
	CarpetCount      int     `json:"carpet_count"`        // Number of mats needing binding
}

// CalculateBinding computes the binding tape needed for all placed carpets.
// wastePercent is the additional percentage for waste (e.g., 10 for 10%).
func CalculateBinding(result NestResult, wastePercent float64) BindingSummary {
	var totalMM float64
	var count int

	for _, sheet := range result.Sheets {
		for _, pc := range sheet.Placed {
			totalMM += pc.Polygon.Perimeter()
			count++
		}
	}

	wasteFactor := 1.0 + wastePercent/100.0
	totalWithWaste := math.Ceil(totalMM * wasteFactor)

	return BindingSummary{
		TotalLinearMM:    totalMM,
		TotalLinearM:     totalMM / 1000.0,
		WastePercent:     wastePercent,
		TotalWithWasteMM: totalWithWaste,
		TotalWithWasteM:  totalWithWaste / 1000.0,
		CarpetCount:      count,
	}
}

// OrderBinding is a per-order breakdown of binding needs.
type OrderBinding struct {
	OrderID     string  `json:"order_id"`
	CarpetCount int     `json:"carpet_count"`
	TotalLength float64 `json:"total_length"` // mm for the whole order
}

// CalculateOrderBinding returns binding lengths grouped by order, sorted by
// order ID for stable reporting.
func CalculateOrderBinding(result NestResult) []OrderBinding {
	byOrder := map[string]*OrderBinding{}
	for _, sheet := range result.Sheets {
		for _, pc := range sheet.Placed {
			ob, ok := byOrder[pc.Carpet.OrderID]
			if !ok {
				ob = &OrderBinding{OrderID: pc.Carpet.OrderID}
				byOrder[pc.Carpet.OrderID] = ob
			}
			ob.CarpetCount++
			ob.TotalLength += pc.Polygon.Perimeter()
		}
	}

	results := make([]OrderBinding, 0, len(byOrder))
	for _, ob := range byOrder {
		results = append(results, *ob)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].OrderID < results[j].OrderID
	})
	return results
}
