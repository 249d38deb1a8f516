package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/CarpetNest/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each mat label's QR code. The
// workshop scans these to route cut mats back to their orders.
type LabelInfo struct {
	OrderID     string  `json:"order"`
	Filename    string  `json:"filename"`
	SheetNumber int     `json:"sheet"`
	SheetType   string  `json:"sheet_type"`
	Color       string  `json:"color"`
	Width       float64 `json:"width_mm"`
	Height      float64 `json:"height_mm"`
	Angle       float64 `json:"angle"`
}

// Label layout constants for Avery L7160-compatible sheets (3 columns,
// 7 rows per A4 page, 63.5mm x 38.1mm per label).
const (
	labelPageWidth  = 210.0 // A4 width in mm
	labelPageHeight = 297.0 // A4 height in mm
	labelMarginTop  = 15.15 // mm
	labelMarginLeft = 7.25  // mm
	labelWidth      = 63.5  // mm per label
	labelHeight     = 38.1  // mm per label
	labelColGap     = 2.5   // mm between columns
	labelCols       = 3
	labelRows       = 7
	labelsPerPage   = labelCols * labelRows
	qrSize          = 30.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded labels, one per placed mat.
// Each label carries the order ID, source file, and sheet number as text
// plus a QR code with the same data as JSON. Labels are laid out for
// Avery L7160 sheets (3 columns x 7 rows on A4).
func ExportLabels(path string, result model.NestResult) error {
	if len(result.Sheets) == 0 {
		return fmt.Errorf("no sheets to generate labels for")
	}

	labels := CollectLabelInfos(result)
	if len(labels) == 0 {
		return fmt.Errorf("no mats placed to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		// Add new page when needed
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*(labelWidth+labelColGap)
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, i, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.Filename, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, seq int, info LabelInfo) error {
	// Draw light border for cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	// Generate QR code PNG bytes
	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	// Register QR image with a unique name
	imgName := fmt.Sprintf("qr_%d", seq)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	// Place QR code on the right side of the label
	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	// Text area (left side of label)
	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	// Order ID (bold, larger)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding+2)
	pdf.CellFormat(textW, 4.5, truncateToWidth(pdf, info.OrderID, textW), "", 1, "L", false, 0, "")

	// Source file
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+8)
	pdf.CellFormat(textW, 3.5, truncateToWidth(pdf, info.Filename, textW), "", 1, "L", false, 0, "")

	// Dimensions
	pdf.SetXY(textX, y+labelPadding+12.5)
	dims := fmt.Sprintf("%.0f x %.0f mm", info.Width, info.Height)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	// Sheet and material info
	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+17)
	sheetInfo := fmt.Sprintf("Sheet %d, %s", info.SheetNumber, info.Color)
	pdf.CellFormat(textW, 3, sheetInfo, "", 1, "L", false, 0, "")

	// Rotation indicator
	if info.Angle != 0 {
		pdf.SetXY(textX, y+labelPadding+20.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, fmt.Sprintf("Rotated %.0f\xb0", info.Angle), "", 0, "L", false, 0, "")
	}

	// Reset text color
	pdf.SetTextColor(0, 0, 0)

	return nil
}

// truncateToWidth shortens a string with an ellipsis until it fits the
// given width at the current font.
func truncateToWidth(pdf *fpdf.Fpdf, s string, maxW float64) string {
	if pdf.GetStringWidth(s) <= maxW {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > maxW {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// CollectLabelInfos extracts label information from a nest result for use
// in testing or alternative export formats.
func CollectLabelInfos(result model.NestResult) []LabelInfo {
	var labels []LabelInfo
	for _, sheet := range result.Sheets {
		for _, pc := range sheet.Placed {
			w, h := pc.Polygon.Size()
			labels = append(labels, LabelInfo{
				OrderID:     pc.Carpet.OrderID,
				Filename:    pc.Carpet.Filename,
				SheetNumber: sheet.SheetNumber,
				SheetType:   sheet.TypeName,
				Color:       sheet.Color,
				Width:       w,
				Height:      h,
				Angle:       pc.Angle,
			})
		}
	}
	return labels
}
