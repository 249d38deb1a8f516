package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
)

// Remnant represents a usable rectangular leftover area on a cut sheet.
type Remnant struct {
	ID          string  `json:"id"`
	SheetNumber int     `json:"sheet_number"` // Which placed sheet it came from
	TypeName    string  `json:"sheet_type"`
	Color       string  `json:"color"`
	X           float64 `json:"x"`      // Position on the sheet (mm from left)
	Y           float64 `json:"y"`      // Position on the sheet (mm from bottom)
	Width       float64 `json:"width"`  // Usable width (mm)
	Height      float64 `json:"height"` // Usable height (mm)
	Value       float64 `json:"value"`  // Sheet price prorated by area (0 if price unknown)
}

// Area returns the area of the remnant in square mm.
func (r Remnant) Area() float64 {
	return r.Width * r.Height
}

// ToSheetPreset converts a remnant into a sheet preset so it can re-enter
// the inventory for future nests. Dimensions convert back to cm.
func (r Remnant) ToSheetPreset() SheetPreset {
	name := fmt.Sprintf("Remnant %s #%d", r.TypeName, r.SheetNumber)
	return NewSheetPreset(name, r.Width/10, r.Height/10, r.Color, r.Value)
}

// MinRemnantDimension is the minimum width or height (in mm) for a leftover
// strip to be worth keeping. Narrower strips are waste.
const MinRemnantDimension = 200.0

// MinRemnantArea is the minimum area (in sq mm) for a remnant to be kept.
const MinRemnantArea = 60000.0 // 200mm x 300mm equivalent

// DetectRemnants identifies the rectangular strips of a placed sheet that no
// carpet reaches into: the strip right of all placed bounding boxes and the
// strip above them. gap is the clearance kept from the placed material.
func DetectRemnants(ps PlacedSheet, price, gap float64) []Remnant {
	if len(ps.Placed) == 0 {
		return []Remnant{{
			ID:          uuid.New().String()[:8],
			SheetNumber: ps.SheetNumber,
			TypeName:    ps.TypeName,
			Color:       ps.Color,
			Width:       ps.Width,
			Height:      ps.Height,
			Value:       price,
		}}
	}

	var maxRight, maxTop float64
	for _, pc := range ps.Placed {
		_, max := pc.Polygon.BoundingBox()
		if max.X+gap > maxRight {
			maxRight = max.X + gap
		}
		if max.Y+gap > maxTop {
			maxTop = max.Y + gap
		}
	}

	var remnants []Remnant

	rightStripW := ps.Width - maxRight
	if rightStripW >= MinRemnantDimension && ps.Height >= MinRemnantDimension && rightStripW*ps.Height >= MinRemnantArea {
		remnants = append(remnants, Remnant{
			ID:          uuid.New().String()[:8],
			SheetNumber: ps.SheetNumber,
			TypeName:    ps.TypeName,
			Color:       ps.Color,
			X:           maxRight,
			Y:           0,
			Width:       rightStripW,
			Height:      ps.Height,
		})
	}

	// Top strip stops at the right edge of the material so it never overlaps
	// the right strip.
	topStripH := ps.Height - maxTop
	usableTopW := math.Min(maxRight, ps.Width)
	if topStripH >= MinRemnantDimension && usableTopW >= MinRemnantDimension && topStripH*usableTopW >= MinRemnantArea {
		remnants = append(remnants, Remnant{
			ID:          uuid.New().String()[:8],
			SheetNumber: ps.SheetNumber,
			TypeName:    ps.TypeName,
			Color:       ps.Color,
			X:           0,
			Y:           maxTop,
			Width:       usableTopW,
			Height:      topStripH,
		})
	}

	if price > 0 {
		totalArea := ps.TotalArea()
		for i := range remnants {
			remnants[i].Value = remnants[i].Area() / totalArea * price
		}
	}

	sort.Slice(remnants, func(i, j int) bool {
		return remnants[i].Area() > remnants[j].Area()
	})

	return remnants
}

// DetectAllRemnants finds remnants across all sheets of a nest result.
// prices maps sheet type names to per-sheet prices; missing entries mean
// the remnant value stays zero.
func DetectAllRemnants(result NestResult, prices map[string]float64, gap float64) []Remnant {
	var all []Remnant
	for _, sheet := range result.Sheets {
		all = append(all, DetectRemnants(sheet, prices[sheet.TypeName], gap)...)
	}
	return all
}

// TotalRemnantArea returns the total area of all remnants in square mm.
func TotalRemnantArea(remnants []Remnant) float64 {
	var total float64
	for _, r := range remnants {
		total += r.Area()
	}
	return total
}
