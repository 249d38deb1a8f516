// Package export renders nesting results to shareable files: per-sheet
// layout reports and QR-coded piece labels.
package export

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/CarpetNest/internal/model"
)

// pieceColor represents an RGB fill color for a placed carpet.
type pieceColor struct {
	R, G, B int
}

// piecePalette is cycled per order so every mat of one order shares a color.
var piecePalette = []pieceColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// bindingWastePercent is the tape allowance shown on the summary page. It
// matches the default binding allowance in the app config.
const bindingWastePercent = 10.0

// ExportPDF generates a PDF document for a nest result. Each placed sheet is
// rendered on its own page with the carpet outlines drawn to scale, followed
// by a summary page with totals, binding tape needs, and material cost.
// prices maps sheet type names to per-sheet prices; pass nil to skip costing.
func ExportPDF(path string, result model.NestResult, settings model.NestSettings, prices map[string]float64) error {
	if len(result.Sheets) == 0 {
		return fmt.Errorf("no sheets to export")
	}

	palette := orderPalette(result)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	// Render each sheet on its own page
	for _, sheet := range result.Sheets {
		pdf.AddPage()
		renderSheetPage(pdf, sheet, settings, palette)
	}

	// Summary page
	pdf.AddPage()
	renderSummaryPage(pdf, result, settings, prices)

	return pdf.OutputFileAndClose(path)
}

// orderPalette assigns a palette color to every order ID in first-appearance
// order, so colors stay stable across pages and legends.
func orderPalette(result model.NestResult) map[string]pieceColor {
	palette := map[string]pieceColor{}
	next := 0
	for _, sheet := range result.Sheets {
		for _, pc := range sheet.Placed {
			if _, ok := palette[pc.Carpet.OrderID]; !ok {
				palette[pc.Carpet.OrderID] = piecePalette[next%len(piecePalette)]
				next++
			}
		}
	}
	return palette
}

// renderSheetPage draws a single placed sheet on the current PDF page.
func renderSheetPage(pdf *fpdf.Fpdf, sheet model.PlacedSheet, settings model.NestSettings, palette map[string]pieceColor) {
	// Title
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Sheet %d: %s, %s (%.0f x %.0f mm)",
		sheet.SheetNumber, sheet.TypeName, sheet.Color, sheet.Width, sheet.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	// Stats line
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Mats: %d | Used area: %.0f mm\xb2 | Sheet area: %.0f mm\xb2 | Usage: %.1f%%",
		len(sheet.Placed), sheet.UsedArea(), sheet.TotalArea(), sheet.UsagePercent())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	// Calculate drawing area
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	// Calculate scale to fit the sheet within the drawing area
	scaleX := drawWidth / sheet.Width
	scaleY := drawHeight / sheet.Height
	scale := math.Min(scaleX, scaleY)

	canvasW := sheet.Width * scale
	canvasH := sheet.Height * scale

	// Center the drawing horizontally
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Draw the sheet background tinted by its EVA color
	r, g, b := sheetFill(sheet.Color)
	pdf.SetFillColor(r, g, b)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	// Hatch the usable leftover strips so the operator knows what to keep
	drawRemnantZones(pdf, sheet, settings, scale, offsetX, offsetY, canvasH)

	// Draw placed mats. Sheet coordinates have Y up; the page has Y down,
	// so the outline is flipped to keep the drawing true to the table.
	for _, pc := range sheet.Placed {
		col := palette[pc.Carpet.OrderID]

		points := make([]fpdf.PointType, len(pc.Polygon))
		for i, p := range pc.Polygon {
			points[i] = fpdf.PointType{
				X: offsetX + p.X*scale,
				Y: offsetY + canvasH - p.Y*scale,
			}
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Polygon(points, "FD")

		drawMatLabel(pdf, pc, scale, offsetX, offsetY, canvasH)
	}

	// Dimension annotations along the edges
	drawDimensionAnnotations(pdf, sheet, scale, offsetX, offsetY, canvasW, canvasH)

	// Order legend at bottom of page
	drawOrderLegend(pdf, sheet, palette, offsetY+canvasH+5)
}

// sheetFill maps an EVA sheet color name to a light background tint that
// keeps the mat fills readable.
func sheetFill(color string) (r, g, b int) {
	switch color {
	case "black":
		return 130, 130, 130
	case "dark grey":
		return 170, 170, 170
	case "grey":
		return 205, 205, 205
	case "brown":
		return 200, 170, 140
	case "white":
		return 250, 250, 250
	default:
		return 225, 225, 225
	}
}

// drawMatLabel writes the order and filename at the mat's bounding box
// center when the mat is large enough to hold them.
func drawMatLabel(pdf *fpdf.Fpdf, pc model.PlacedCarpet, scale, offsetX, offsetY, canvasH float64) {
	min, max := pc.Polygon.BoundingBox()
	bw := (max.X - min.X) * scale
	bh := (max.Y - min.Y) * scale
	if bw <= 15 || bh <= 8 {
		return
	}

	cx := offsetX + (min.X+max.X)/2*scale
	cy := offsetY + canvasH - (min.Y+max.Y)/2*scale

	pdf.SetFont("Helvetica", "", labelFontSize(bw, bh))
	pdf.SetTextColor(0, 0, 0)

	order := pc.Carpet.OrderID
	file := pc.Carpet.Filename

	// First line: order ID
	orderW := pdf.GetStringWidth(order)
	if orderW < bw-2 {
		pdf.SetXY(cx-orderW/2, cy-4)
		pdf.CellFormat(orderW, 4, order, "", 0, "C", false, 0, "")
	}

	// Second line: source file
	fileW := pdf.GetStringWidth(file)
	if bh > 14 && fileW < bw-2 {
		pdf.SetXY(cx-fileW/2, cy)
		pdf.CellFormat(fileW, 4, file, "", 0, "C", false, 0, "")
	}
}

// drawRemnantZones hatches the leftover strips that clear the keep
// thresholds, so the report doubles as a remnant harvest sheet.
func drawRemnantZones(pdf *fpdf.Fpdf, sheet model.PlacedSheet, settings model.NestSettings, scale, offsetX, offsetY, canvasH float64) {
	remnants := model.DetectRemnants(sheet, 0, settings.MinGap)

	for _, rem := range remnants {
		zx := offsetX + rem.X*scale
		zy := offsetY + canvasH - (rem.Y+rem.Height)*scale
		zw := rem.Width * scale
		zh := rem.Height * scale

		pdf.SetFillColor(220, 240, 220)
		pdf.SetDrawColor(0, 140, 0)
		pdf.SetLineWidth(0.3)
		pdf.Rect(zx, zy, zw, zh, "FD")

		drawHatchPattern(pdf, zx, zy, zw, zh)

		// Label for larger zones
		if zw > 25 && zh > 8 {
			pdf.SetFont("Helvetica", "B", 6)
			pdf.SetTextColor(0, 120, 0)
			label := fmt.Sprintf("REMNANT %.0fx%.0f", rem.Width, rem.Height)
			labelW := pdf.GetStringWidth(label)
			pdf.SetXY(zx+(zw-labelW)/2, zy+zh/2-2)
			pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
		}
	}

	// Reset text color
	pdf.SetTextColor(0, 0, 0)
}

// drawHatchPattern draws diagonal lines inside a rectangle to mark zones.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(0, 140, 0)
	pdf.SetLineWidth(0.15)

	spacing := 4.0
	maxDist := w + h

	for d := spacing; d < maxDist; d += spacing {
		// Line from bottom-left to top-right diagonal
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)

		pdf.Line(x1, y1, x2, y2)
	}
}

// drawDimensionAnnotations adds width and height labels outside the sheet rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, sheet model.PlacedSheet, scale, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	// Width annotation (below the sheet)
	widthLabel := fmt.Sprintf("%.0f mm", sheet.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	// Height annotation (to the left of the sheet, rotated)
	heightLabel := fmt.Sprintf("%.0f mm", sheet.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	// Reset text color
	pdf.SetTextColor(0, 0, 0)
}

// drawOrderLegend renders a compact per-order legend at the bottom of the
// sheet page, with the mat count per order on this sheet.
func drawOrderLegend(pdf *fpdf.Fpdf, sheet model.PlacedSheet, palette map[string]pieceColor, startY float64) {
	if len(sheet.Placed) == 0 {
		return
	}

	counts := map[string]int{}
	var orders []string
	for _, pc := range sheet.Placed {
		if counts[pc.Carpet.OrderID] == 0 {
			orders = append(orders, pc.Carpet.OrderID)
		}
		counts[pc.Carpet.OrderID]++
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Orders on sheet:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for _, order := range orders {
		col := palette[order]
		label := fmt.Sprintf("%s (%d)", order, counts[order])
		labelW := pdf.GetStringWidth(label) + 6

		// Wrap to next line if needed
		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		// Color swatch
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		// Label text
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the final summary page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.NestResult, settings model.NestSettings, prices map[string]float64) {
	// Title
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Nesting Summary", "", 0, "L", false, 0, "")

	// Separator line
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	binding := model.CalculateBinding(result, bindingWastePercent)

	// Overall statistics
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Sheets Used", fmt.Sprintf("%d", len(result.Sheets))},
		{"Overall Usage", fmt.Sprintf("%.1f%%", result.TotalUsage())},
		{"Mats Placed", fmt.Sprintf("%d", result.PlacedCount())},
		{"Unplaced Mats", fmt.Sprintf("%d", len(result.Unplaced))},
		{"Binding Tape", fmt.Sprintf("%.1f m (incl. %.0f%% waste)", binding.TotalWithWasteM, binding.WastePercent)},
	}

	if len(prices) > 0 {
		remnants := model.DetectAllRemnants(result, prices, settings.MinGap)
		cost := model.CalculateCost(result, prices, remnants)
		summaryItems = append(summaryItems,
			struct{ label, value string }{"Material Cost", fmt.Sprintf("%.2f", cost.MaterialCost)},
			struct{ label, value string }{"Remnant Credit", fmt.Sprintf("%.2f", cost.RemnantCredit)},
			struct{ label, value string }{"Net Cost", fmt.Sprintf("%.2f", cost.NetCost)},
		)
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	// Per-sheet breakdown table
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Sheet Breakdown", "", 0, "L", false, 0, "")
	y += 9

	// Table header
	colWidths := []float64{20, 60, 35, 25, 30, 60}
	headers := []string{"Sheet", "Type", "Color", "Mats", "Usage", "Used / Total Area"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	// Table rows
	pdf.SetFont("Helvetica", "", 9)
	for i, sheet := range result.Sheets {
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", sheet.SheetNumber),
			sheet.TypeName,
			sheet.Color,
			fmt.Sprintf("%d", len(sheet.Placed)),
			fmt.Sprintf("%.1f%%", sheet.UsagePercent()),
			fmt.Sprintf("%.0f / %.0f mm\xb2", sheet.UsedArea(), sheet.TotalArea()),
		}

		// Alternate row background
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	// Unplaced mats warning
	if len(result.Unplaced) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Unplaced Mats", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)

		for _, line := range unplacedLines(result.Unplaced) {
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(200, 5, line, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	// Nest settings summary
	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Nest Settings", "", 0, "L", false, 0, "")
	y += 9

	spanLimit := "unlimited"
	if settings.MaxSheetsPerOrder > 0 {
		spanLimit = fmt.Sprintf("%d sheets", settings.MaxSheetsPerOrder)
	}

	settingsItems := []struct {
		label string
		value string
	}{
		{"Min Gap", fmt.Sprintf("%.1f mm", settings.MinGap)},
		{"Order Span Limit", spanLimit},
		{"Ordering", string(settings.Ordering)},
		{"Knife Offset", fmt.Sprintf("%.2f mm", settings.KnifeOffset)},
		{"Cut Depth", fmt.Sprintf("%.1f mm (%.1f mm per pass)", settings.CutDepth, settings.PassDepth)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	// Footer
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by CarpetNest - EVA Mat Nesting", "", 0, "C", false, 0, "")
}

// unplacedLines groups unplaced carpets by order and file for the warning
// list, so a ten-copy order shows as one line.
func unplacedLines(unplaced []model.Carpet) []string {
	type key struct {
		order string
		file  string
	}
	counts := map[key]int{}
	sizes := map[key][2]float64{}
	var keys []key

	for _, c := range unplaced {
		k := key{order: c.OrderID, file: c.Filename}
		if counts[k] == 0 {
			keys = append(keys, k)
			w, h := c.Polygon.Size()
			sizes[k] = [2]float64{w, h}
		}
		counts[k]++
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].order != keys[j].order {
			return keys[i].order < keys[j].order
		}
		return keys[i].file < keys[j].file
	})

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		size := sizes[k]
		lines = append(lines, fmt.Sprintf("- %s / %s: %.0f x %.0f mm (qty: %d)",
			k.order, k.file, size[0], size[1], counts[k]))
	}
	return lines
}

// labelFontSize returns an appropriate font size based on the mat bounding
// box dimensions on the page.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
