package model

import "math"

// PurchaseEstimate holds the results of a sheet purchasing calculation,
// made before nesting from raw carpet areas.
type PurchaseEstimate struct {
	TotalCarpetArea   float64 `json:"total_carpet_area"`   // Total area of all carpets (sq mm)
	TotalSquareM      float64 `json:"total_square_m"`      // Total area in square meters
	SheetArea         float64 `json:"sheet_area"`          // Area of one sheet (sq mm)
	SheetsNeededExact float64 `json:"sheets_needed_exact"` // Exact fractional number of sheets
	SheetsNeededMin   int     `json:"sheets_needed_min"`   // Minimum sheets (ceiling of exact)
	SheetsWithWaste   int     `json:"sheets_with_waste"`   // Recommended sheets including waste factor
	WastePercent      float64 `json:"waste_percent"`       // Waste factor applied (e.g., 15 for 15%)
	EstimatedCost     float64 `json:"estimated_cost"`      // Total cost if pricing available
	PricePerSheet     float64 `json:"price_per_sheet"`     // Price used for estimation
}

const sqmmPerSquareMeter = 1000000.0

// CalculatePurchaseEstimate computes how many sheets to buy for a carpet list
// before nesting. Each carpet is costed at its bounding box grown by the
// placement gap, since nesting cannot pack tighter than that.
func CalculatePurchaseEstimate(carpets []Carpet, sheet SheetPreset, gap, wastePercent float64) PurchaseEstimate {
	var totalArea float64
	for _, c := range carpets {
		w, h := c.Polygon.Size()
		totalArea += (w + gap) * (h + gap)
	}

	sheetW, sheetH := sheet.Width*10, sheet.Height*10
	sheetArea := sheetW * sheetH
	if sheetArea <= 0 {
		return PurchaseEstimate{
			TotalCarpetArea: totalArea,
			TotalSquareM:    totalArea / sqmmPerSquareMeter,
			WastePercent:    wastePercent,
		}
	}

	exactSheets := totalArea / sheetArea
	minSheets := int(math.Ceil(exactSheets))

	wasteFactor := 1.0 + wastePercent/100.0
	sheetsWithWaste := int(math.Ceil(exactSheets * wasteFactor))
	if sheetsWithWaste < minSheets {
		sheetsWithWaste = minSheets
	}

	return PurchaseEstimate{
		TotalCarpetArea:   totalArea,
		TotalSquareM:      totalArea / sqmmPerSquareMeter,
		SheetArea:         sheetArea,
		SheetsNeededExact: exactSheets,
		SheetsNeededMin:   minSheets,
		SheetsWithWaste:   sheetsWithWaste,
		WastePercent:      wastePercent,
		EstimatedCost:     float64(sheetsWithWaste) * sheet.Price,
		PricePerSheet:     sheet.Price,
	}
}

// CostSummary holds the actual material cost of a completed nest.
type CostSummary struct {
	SheetsUsed    int     `json:"sheets_used"`
	MaterialCost  float64 `json:"material_cost"`  // Sum of consumed sheet prices
	UsedValue     float64 `json:"used_value"`     // Cost share of the material actually covered by mats
	WasteValue    float64 `json:"waste_value"`    // Cost share of uncovered material
	RemnantCredit float64 `json:"remnant_credit"` // Value of recoverable remnants
	NetCost       float64 `json:"net_cost"`       // MaterialCost − RemnantCredit
}

// CalculateCost prices a nest result. prices maps sheet type names to
// per-sheet prices; sheets of unknown types cost zero.
func CalculateCost(result NestResult, prices map[string]float64, remnants []Remnant) CostSummary {
	var summary CostSummary
	for _, sheet := range result.Sheets {
		price := prices[sheet.TypeName]
		summary.SheetsUsed++
		summary.MaterialCost += price
		if sheet.TotalArea() > 0 {
			share := sheet.UsedArea() / sheet.TotalArea()
			summary.UsedValue += price * share
			summary.WasteValue += price * (1 - share)
		}
	}
	for _, r := range remnants {
		summary.RemnantCredit += r.Value
	}
	summary.NetCost = summary.MaterialCost - summary.RemnantCredit
	return summary
}
