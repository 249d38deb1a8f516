package gcode

import (
	"fmt"

	"github.com/piwi3910/CarpetNest/internal/geometry"
	"github.com/piwi3910/CarpetNest/internal/model"
)

// RapidCrossing records a blade-up traverse that passes over a mat cut
// earlier in the same program. Cut EVA is no longer held by the surrounding
// sheet; a freed edge can lift and snag the knife holder on the way past.
type RapidCrossing struct {
	SheetNumber int     `json:"sheet_number"`
	FromMat     string  `json:"from_mat"`
	ToMat       string  `json:"to_mat"`
	OverMat     string  `json:"over_mat"`
	FromX       float64 `json:"from_x"`
	FromY       float64 `json:"from_y"`
	ToX         float64 `json:"to_x"`
	ToY         float64 `json:"to_y"`
}

// CheckRapidCrossings replays the traverses a generated program makes
// between mats and reports every one that passes over an already-cut mat.
// Mats are cut in placement order, the knife parks on each outline's start
// point after closing the loop, and the program begins at the sheet origin.
func CheckRapidCrossings(result model.NestResult, settings model.NestSettings) []RapidCrossing {
	var crossings []RapidCrossing

	for _, sheet := range result.Sheets {
		from := model.Point2D{}
		fromLabel := "start"

		for i, pc := range sheet.Placed {
			// Degenerate outlines are skipped by the generator, so the
			// knife never travels to them.
			path := offsetOutline(pc.Polygon, settings.KnifeOffset)
			if len(path) < 3 {
				continue
			}
			to := path[0]
			toLabel := matLabel(pc)

			// Only mats cut before this traverse are freed.
			for j := 0; j < i; j++ {
				if geometry.SegmentCrossesPolygon(from, to, sheet.Placed[j].Polygon) {
					crossings = append(crossings, RapidCrossing{
						SheetNumber: sheet.SheetNumber,
						FromMat:     fromLabel,
						ToMat:       toLabel,
						OverMat:     matLabel(sheet.Placed[j]),
						FromX:       from.X,
						FromY:       from.Y,
						ToX:         to.X,
						ToY:         to.Y,
					})
				}
			}

			from = to
			fromLabel = toLabel
		}
	}

	return crossings
}

// matLabel identifies a placed mat in crossing reports.
func matLabel(pc model.PlacedCarpet) string {
	return pc.Carpet.OrderID + "/" + pc.Carpet.Filename
}

// FormatCrossingWarnings produces human-readable warning messages from
// crossing data, one line per crossing.
func FormatCrossingWarnings(crossings []RapidCrossing) []string {
	var warnings []string
	for _, c := range crossings {
		msg := fmt.Sprintf(
			"Sheet %d: rapid from %s to %s passes over freed mat %s ((%.0f, %.0f) to (%.0f, %.0f))",
			c.SheetNumber, c.FromMat, c.ToMat, c.OverMat,
			c.FromX, c.FromY, c.ToX, c.ToY,
		)
		warnings = append(warnings, msg)
	}
	return warnings
}
