package geometry

import (
	"math"

	"github.com/piwi3910/CarpetNest/internal/model"
)

// minValidArea is the area below which a ring is treated as degenerate.
const minValidArea = 1e-9

// IsValid reports whether p is a usable simple ring: at least three
// distinct vertices, finite coordinates, non-zero area and no
// self-intersection between non-adjacent edges.
func IsValid(p model.Polygon) bool {
	if len(p) < 3 {
		return false
	}
	for _, pt := range p {
		if math.IsNaN(pt.X) || math.IsNaN(pt.Y) || math.IsInf(pt.X, 0) || math.IsInf(pt.Y, 0) {
			return false
		}
	}
	if p.Area() < minValidArea {
		return false
	}
	return !selfIntersects(p)
}

// selfIntersects checks every pair of non-adjacent edges. Carpet outlines
// carry a few dozen vertices at most, so the quadratic scan is fine.
func selfIntersects(p model.Polygon) bool {
	n := len(p)
	for i := 0; i < n; i++ {
		a1 := p[i]
		a2 := p[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// Skip edges sharing a vertex with edge i, including the
			// wrap-around pair (last edge, first edge).
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			b1 := p[j]
			b2 := p[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

// orient returns the signed area of the triangle abc: positive when c is
// left of the directed line ab, negative when right, zero when collinear.
func orient(a, b, c model.Point2D) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// onSegment reports whether collinear point p lies within the bounding box
// of segment ab.
func onSegment(a, b, p model.Point2D) bool {
	return math.Min(a.X, b.X)-coincidentTol <= p.X && p.X <= math.Max(a.X, b.X)+coincidentTol &&
		math.Min(a.Y, b.Y)-coincidentTol <= p.Y && p.Y <= math.Max(a.Y, b.Y)+coincidentTol
}

// segmentsIntersect reports whether segments a1a2 and b1b2 share any
// point, including endpoint touches and collinear overlap.
func segmentsIntersect(a1, a2, b1, b2 model.Point2D) bool {
	o1 := orient(a1, a2, b1)
	o2 := orient(a1, a2, b2)
	o3 := orient(b1, b2, a1)
	o4 := orient(b1, b2, a2)

	if ((o1 > 0 && o2 < 0) || (o1 < 0 && o2 > 0)) &&
		((o3 > 0 && o4 < 0) || (o3 < 0 && o4 > 0)) {
		return true
	}
	if o1 == 0 && onSegment(a1, a2, b1) {
		return true
	}
	if o2 == 0 && onSegment(a1, a2, b2) {
		return true
	}
	if o3 == 0 && onSegment(b1, b2, a1) {
		return true
	}
	if o4 == 0 && onSegment(b1, b2, a2) {
		return true
	}
	return false
}

// segmentsCrossProperly reports whether the segments cross at a single
// interior point of both. Touching at an endpoint or collinear overlap is
// not a proper crossing.
func segmentsCrossProperly(a1, a2, b1, b2 model.Point2D) bool {
	o1 := orient(a1, a2, b1)
	o2 := orient(a1, a2, b2)
	o3 := orient(b1, b2, a1)
	o4 := orient(b1, b2, a2)
	return ((o1 > 0 && o2 < 0) || (o1 < 0 && o2 > 0)) &&
		((o3 > 0 && o4 < 0) || (o3 < 0 && o4 > 0))
}

// pointOnBoundary reports whether pt lies on an edge of p.
func pointOnBoundary(pt model.Point2D, p model.Polygon) bool {
	n := len(p)
	for i := 0; i < n; i++ {
		a := p[i]
		b := p[(i+1)%n]
		if math.Abs(orient(a, b, pt)) < 1e-7 && onSegment(a, b, pt) {
			return true
		}
	}
	return false
}

// pointInPolygon reports whether pt lies strictly inside p. Points on the
// boundary are reported as outside.
func pointInPolygon(pt model.Point2D, p model.Polygon) bool {
	if pointOnBoundary(pt, p) {
		return false
	}
	inside := false
	n := len(p)
	for i := 0; i < n; i++ {
		a := p[i]
		b := p[(i+1)%n]
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := a.X + (pt.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if pt.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// SegmentCrossesPolygon reports whether the segment from a to b touches
// the ring p: it crosses an edge, grazes the boundary, or runs inside.
func SegmentCrossesPolygon(a, b model.Point2D, p model.Polygon) bool {
	n := len(p)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		if segmentsIntersect(a, b, p[i], p[(i+1)%n]) {
			return true
		}
	}
	// No edge contact means the segment is entirely inside or entirely
	// outside; one endpoint decides which.
	return pointInPolygon(a, p)
}

// pointSegmentDistance returns the distance from pt to segment ab.
func pointSegmentDistance(pt, a, b model.Point2D) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return math.Hypot(pt.X-a.X, pt.Y-a.Y)
	}
	t := ((pt.X-a.X)*abx + (pt.Y-a.Y)*aby) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(pt.X-(a.X+t*abx), pt.Y-(a.Y+t*aby))
}

// segmentDistance returns the minimum distance between two segments.
// Intersecting segments have distance zero.
func segmentDistance(a1, a2, b1, b2 model.Point2D) float64 {
	if segmentsIntersect(a1, a2, b1, b2) {
		return 0
	}
	d := pointSegmentDistance(a1, b1, b2)
	d = math.Min(d, pointSegmentDistance(a2, b1, b2))
	d = math.Min(d, pointSegmentDistance(b1, a1, a2))
	return math.Min(d, pointSegmentDistance(b2, a1, a2))
}

// Distance returns the minimum distance between the boundaries of a and b,
// or zero when they overlap or touch. Either ring being contained in the
// other also gives zero.
func Distance(a, b model.Polygon) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.NaN()
	}
	if Overlaps(a, b) {
		return 0
	}
	best := math.Inf(1)
	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		a1 := a[i]
		a2 := a[(i+1)%na]
		for j := 0; j < nb; j++ {
			d := segmentDistance(a1, a2, b[j], b[(j+1)%nb])
			if d < best {
				best = d
			}
		}
	}
	return best
}
