package nest

import (
	"math"

	"github.com/piwi3910/CarpetNest/internal/geometry"
	"github.com/piwi3910/CarpetNest/internal/model"
)

const (
	// globalFitFraction is the share of the sheet dimension the largest
	// carpet may occupy before a global shrink kicks in.
	globalFitFraction = 0.90

	// individualFitFraction is the target size, relative to the sheet, for
	// a carpet that still exceeds the sheet after the global pass.
	individualFitFraction = 0.95

	// scaleSkipThreshold treats shrink factors this close to 1 as a no-op
	// so repeated normalization cannot keep nibbling at the geometry.
	scaleSkipThreshold = 0.99
)

// NormalizeScale prepares carpets for a reference sheet size. When the
// largest carpet exceeds 90% of a sheet dimension, one global factor
// shrinks every carpet uniformly so relative proportions between mats of
// a set survive. Any carpet still larger than the sheet after that is
// shrunk individually around its own centroid to 95% of the sheet.
// Carpets are never enlarged, and the call is a no-op when everything
// already fits.
func NormalizeScale(carpets []model.Carpet, sheetW, sheetH float64) []model.Carpet {
	if len(carpets) == 0 || sheetW <= 0 || sheetH <= 0 {
		return carpets
	}

	var maxW, maxH float64
	for _, c := range carpets {
		w, h := c.Polygon.Size()
		maxW = math.Max(maxW, w)
		maxH = math.Max(maxH, h)
	}

	global := 1.0
	if maxW > globalFitFraction*sheetW || maxH > globalFitFraction*sheetH {
		global = math.Min(globalFitFraction*sheetW/maxW, globalFitFraction*sheetH/maxH)
	}
	if global >= scaleSkipThreshold {
		global = 1.0
	}

	out := make([]model.Carpet, len(carpets))
	for i, c := range carpets {
		poly := c.Polygon
		scaled := false

		if global < 1.0 {
			poly = geometry.ScaleAbout(poly, global, poly.Centroid())
			scaled = true
		}

		// A carpet still larger than the sheet itself gets an extra shrink
		// of its own, down to 95% of the sheet.
		if w, h := poly.Size(); w > sheetW || h > sheetH {
			f := math.Min(individualFitFraction*sheetW/w, individualFitFraction*sheetH/h)
			if f < scaleSkipThreshold {
				poly = geometry.ScaleAbout(poly, f, poly.Centroid())
				scaled = true
			}
		}

		if scaled {
			poly = requadrant(poly)
		}
		c.Polygon = poly
		out[i] = c
	}
	return out
}

// requadrant shifts a ring whose bounding box went negative back into the
// non-negative quadrant.
func requadrant(p model.Polygon) model.Polygon {
	min, _ := p.BoundingBox()
	var dx, dy float64
	if min.X < 0 {
		dx = -min.X
	}
	if min.Y < 0 {
		dy = -min.Y
	}
	if dx == 0 && dy == 0 {
		return p
	}
	return geometry.Translate(p, dx, dy)
}
