package nest

import (
	"fmt"
	"math"

	"github.com/piwi3910/CarpetNest/internal/geometry"
	"github.com/piwi3910/CarpetNest/internal/model"
)

// boundsTol absorbs floating point error when checking that a placement
// stays inside the sheet.
const boundsTol = 0.1

const (
	fineStep      = 2.0      // mm grid for small carpets
	coarseStep    = 15.0     // mm grid for large carpets
	fineAreaLimit = 250000.0 // mm² bbox area; above this the coarse grid applies
)

// GridStep returns the candidate grid spacing for a carpet with the given
// bounding box area. Small carpets search a fine grid for tight packing;
// large ones use a coarse grid to bound the candidate count.
func GridStep(bboxArea float64) float64 {
	if bboxArea <= fineAreaLimit {
		return fineStep
	}
	return coarseStep
}

// PlaceOnSheet places carpets onto one empty sheet of the given mm
// dimensions, in input order, first fit. Returns the placements made and
// the carpets that found no position.
func (n *Nester) PlaceOnSheet(carpets []model.Carpet, width, height float64) ([]model.PlacedCarpet, []model.Carpet) {
	return n.placeWithObstacles(carpets, width, height, nil)
}

// rotatedForm is one pre-rotated orientation of a carpet. Rotation runs
// once per angle so candidate trials only pay for a translation.
type rotatedForm struct {
	angle    float64
	polygon  model.Polygon
	min, max model.Point2D
}

// placeWithObstacles is the placement core shared by fresh sheets, filler
// backfill and consolidation moves. Obstacles are placements already
// committed to the sheet; they block space but are not returned.
func (n *Nester) placeWithObstacles(carpets []model.Carpet, width, height float64, obstacles []model.PlacedCarpet) ([]model.PlacedCarpet, []model.Carpet) {
	var placed []model.PlacedCarpet
	var unplaced []model.Carpet
	total := len(carpets)

	for i, c := range carpets {
		forms := n.rotatedForms(c, width, height)
		pc, ok := n.tryPlace(c, forms, width, height, obstacles, placed)
		if ok {
			placed = append(placed, pc)
			n.report(float64(i+1)/float64(total)*100, fmt.Sprintf("placed %s", c.Filename))
		} else {
			unplaced = append(unplaced, c)
			n.report(float64(i+1)/float64(total)*100, fmt.Sprintf("no fit for %s", c.Filename))
		}
	}
	return placed, unplaced
}

// rotatedForms rotates the carpet to every configured trial angle and
// drops orientations whose bounding box cannot fit the sheet at all. An
// empty result means the carpet is oversized in every orientation and
// skips the grid search entirely.
func (n *Nester) rotatedForms(c model.Carpet, width, height float64) []rotatedForm {
	angles := n.Settings.Rotations
	if len(angles) == 0 {
		angles = []float64{0}
	}
	forms := make([]rotatedForm, 0, len(angles))
	for _, angle := range angles {
		rotated := geometry.Rotate(c.Polygon, angle)
		min, max := rotated.BoundingBox()
		if max.X-min.X > width+boundsTol || max.Y-min.Y > height+boundsTol {
			continue
		}
		forms = append(forms, rotatedForm{angle: angle, polygon: rotated, min: min, max: max})
	}
	return forms
}

// position is a candidate bbox-min placement point on the sheet.
type position struct {
	x, y float64
}

// tryPlace walks the candidate positions in generation order and returns
// the first in-bounds, collision-free placement. Lower rotation angles are
// tried before higher at each candidate, so results are deterministic for
// identical input ordering.
func (n *Nester) tryPlace(c model.Carpet, forms []rotatedForm, width, height float64, obstacles, placed []model.PlacedCarpet) (model.PlacedCarpet, bool) {
	if len(forms) == 0 {
		return model.PlacedCarpet{}, false
	}
	minGap := n.Settings.MinGap

	for _, cand := range n.candidates(c, width, height, obstacles, placed) {
		for _, f := range forms {
			fw := f.max.X - f.min.X
			fh := f.max.Y - f.min.Y
			if cand.x < -boundsTol || cand.y < -boundsTol ||
				cand.x+fw > width+boundsTol || cand.y+fh > height+boundsTol {
				continue
			}
			dx := cand.x - f.min.X
			dy := cand.y - f.min.Y
			trial := f.polygon.Translate(dx, dy)
			if collidesAny(trial, obstacles, minGap) || collidesAny(trial, placed, minGap) {
				continue
			}
			return model.PlacedCarpet{
				Carpet:  c,
				Polygon: trial,
				XOffset: dx,
				YOffset: dy,
				Angle:   f.angle,
			}, true
		}
	}
	return model.PlacedCarpet{}, false
}

func collidesAny(trial model.Polygon, existing []model.PlacedCarpet, minGap float64) bool {
	for i := range existing {
		if geometry.Collides(trial, existing[i].Polygon, minGap) {
			return true
		}
	}
	return false
}

// candidates generates trial positions for one carpet: grid points along
// the sheet's bottom and left edges, then contour points immediately right
// of and above each existing placement's bounding box so shapes nestle
// against neighbors instead of only sheet edges. The first carpet on an
// empty sheet goes straight to the origin. Duplicates are removed keeping
// first occurrence, which preserves the edge-before-contour trial order.
func (n *Nester) candidates(c model.Carpet, width, height float64, obstacles, placed []model.PlacedCarpet) []position {
	if len(obstacles) == 0 && len(placed) == 0 {
		return []position{{0, 0}}
	}

	cw, ch := c.Polygon.Size()
	step := GridStep(cw * ch)
	gap := math.Max(n.Settings.MinGap, 0)

	var out []position
	seen := make(map[position]bool)
	add := func(x, y float64) {
		p := position{x, y}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for x := 0.0; x <= width-cw+1e-9; x += step {
		add(x, 0)
	}
	for y := 0.0; y <= height-ch+1e-9; y += step {
		add(0, y)
	}
	for _, pc := range obstacles {
		pMin, pMax := pc.Polygon.BoundingBox()
		add(pMax.X+gap, pMin.Y)
		add(pMin.X, pMax.Y+gap)
	}
	for _, pc := range placed {
		pMin, pMax := pc.Polygon.BoundingBox()
		add(pMax.X+gap, pMin.Y)
		add(pMin.X, pMax.Y+gap)
	}
	return out
}
