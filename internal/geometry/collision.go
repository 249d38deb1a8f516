package geometry

import (
	"math"

	"github.com/piwi3910/CarpetNest/internal/model"
)

var degenerateChecks int

// DegenerateCheckCount reports how many collision checks were skipped
// because a ring was degenerate or produced a NaN distance.
func DegenerateCheckCount() int {
	return degenerateChecks
}

// ResetCollisionStats clears the degenerate check counter.
func ResetCollisionStats() {
	degenerateChecks = 0
}

// Overlaps reports whether the interiors of a and b intersect. Rings that
// only touch along edges or at vertices do not overlap.
func Overlaps(a, b model.Polygon) bool {
	na, nb := len(a), len(b)
	if na < 3 || nb < 3 {
		return false
	}
	aMin, aMax := a.BoundingBox()
	bMin, bMax := b.BoundingBox()
	if aMax.X < bMin.X || bMax.X < aMin.X || aMax.Y < bMin.Y || bMax.Y < aMin.Y {
		return false
	}
	for i := 0; i < na; i++ {
		a1 := a[i]
		a2 := a[(i+1)%na]
		for j := 0; j < nb; j++ {
			if segmentsCrossProperly(a1, a2, b[j], b[(j+1)%nb]) {
				return true
			}
		}
	}
	// No proper edge crossing: the interiors still overlap when one ring
	// sits inside the other, which shows as a vertex strictly inside.
	for _, pt := range a {
		if pointInPolygon(pt, b) {
			return true
		}
	}
	for _, pt := range b {
		if pointInPolygon(pt, a) {
			return true
		}
	}
	// Touching rings can share all their boundary samples; test interior
	// sample points so coincident rings are still caught.
	if pointInPolygon(interiorPoint(a), b) || pointInPolygon(interiorPoint(b), a) {
		return true
	}
	return false
}

// interiorPoint returns a point expected to lie inside a simple ring: the
// centroid when it is interior, otherwise the midpoint of the first edge
// midline probe that lands inside.
func interiorPoint(p model.Polygon) model.Point2D {
	c := p.Centroid()
	if pointInPolygon(c, p) {
		return c
	}
	n := len(p)
	for i := 0; i < n; i++ {
		a := p[i]
		b := p[(i+1)%n]
		mid := model.Point2D{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
		probe := model.Point2D{X: (mid.X + c.X) / 2, Y: (mid.Y + c.Y) / 2}
		if pointInPolygon(probe, p) {
			return probe
		}
	}
	return c
}

// Collides reports whether placing a and b together violates the minimum
// gap: the interiors overlap, or the boundary distance is below minGap.
// Exact touching counts as a collision only when a positive gap is
// required. Degenerate rings and NaN distances report no collision so a
// single broken outline cannot block a whole sheet; such checks are
// counted for diagnostics.
func Collides(a, b model.Polygon, minGap float64) bool {
	if len(a) < 3 || len(b) < 3 || !finiteRing(a) || !finiteRing(b) {
		degenerateChecks++
		return false
	}
	aMin, aMax := a.BoundingBox()
	bMin, bMax := b.BoundingBox()
	gap := math.Max(minGap, 0)
	if aMax.X+gap < bMin.X || bMax.X+gap < aMin.X ||
		aMax.Y+gap < bMin.Y || bMax.Y+gap < aMin.Y {
		return false
	}
	if Overlaps(a, b) {
		return true
	}
	if minGap <= 0 {
		return false
	}
	d := Distance(a, b)
	if math.IsNaN(d) {
		degenerateChecks++
		return false
	}
	return d < minGap
}

// finiteRing reports whether every coordinate in p is a finite number.
func finiteRing(p model.Polygon) bool {
	for _, pt := range p {
		if math.IsNaN(pt.X) || math.IsNaN(pt.Y) || math.IsInf(pt.X, 0) || math.IsInf(pt.Y, 0) {
			return false
		}
	}
	return true
}

