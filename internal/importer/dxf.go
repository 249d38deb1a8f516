package importer

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"github.com/piwi3910/CarpetNest/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// chainTolerance is the maximum distance in mm between endpoints for loose
// LINE/ARC segments to be considered connected.
const chainTolerance = 0.01

// segment represents a line segment between two 2D points, used for chaining
// disconnected LINE and ARC entities into closed rings.
type segment struct {
	start model.Point2D
	end   model.Point2D
}

// ImportDXF reads a carpet outline from a DXF file. Mat drawings typically
// hold one closed contour per file plus decorative grooves inside it; the
// closed shape with the largest area (LWPOLYLINE, CIRCLE, or chain of
// connected LINEs/ARCs) is taken as the cutting outline and translated so its
// bounding box starts at the origin. Returned warnings describe entities that
// were skipped or repaired.
func ImportDXF(path string) (model.Polygon, []string, error) {
	drawing, err := dxf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open DXF file: %w", err)
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		return nil, nil, fmt.Errorf("DXF file contains no entities")
	}

	var warnings []string
	var rings []model.Polygon
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			ring := lwPolylineToRing(e)
			if len(ring) >= 3 {
				rings = append(rings, ring)
			} else {
				warnings = append(warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			rings = append(rings, circleToRing(e, 64))

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			if len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point2D{X: e.End[0], Y: e.End[1]},
			})

		default:
			// Unsupported entity types are silently skipped
		}
	}

	chained, open := chainSegments(segments, chainTolerance)
	rings = append(rings, chained...)
	if open > 0 {
		warnings = append(warnings, fmt.Sprintf("Closed %d unclosed segment chains implicitly", open))
	}

	if len(rings) == 0 {
		return nil, warnings, fmt.Errorf("no closed outline found")
	}

	// Largest area wins: the outer mat contour encloses any groove pattern.
	sort.Slice(rings, func(i, j int) bool {
		return rings[i].Area() > rings[j].Area()
	})
	outline := rings[0]

	min, max := outline.BoundingBox()
	width := max.X - min.X
	height := max.Y - min.Y
	if width < 0.01 || height < 0.01 {
		return nil, warnings, fmt.Errorf("outline is degenerate (%.2f x %.2f mm)", width, height)
	}

	return outline.Translate(-min.X, -min.Y), warnings, nil
}

// CarpetResult holds the carpets resolved from order rows plus any per-file
// problems encountered along the way.
type CarpetResult struct {
	Carpets  []model.Carpet
	Errors   []string
	Warnings []string
}

// BuildCarpets resolves order rows against a directory of DXF files and
// expands quantities into individual carpets. Each DXF file is parsed once;
// rows whose file cannot be read produce an error and are dropped.
func BuildCarpets(rows []OrderRow, dxfDir string) CarpetResult {
	result := CarpetResult{}
	outlines := map[string]model.Polygon{}
	failed := map[string]bool{}

	for _, row := range rows {
		if _, seen := outlines[row.Filename]; seen || failed[row.Filename] {
			continue
		}

		path := row.Filename
		if !filepath.IsAbs(path) {
			path = filepath.Join(dxfDir, path)
		}

		outline, warnings, err := ImportDXF(path)
		for _, w := range warnings {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", row.Filename, w))
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", row.Filename, err))
			failed[row.Filename] = true
			continue
		}
		outlines[row.Filename] = outline
	}

	result.Carpets = ExpandRows(rows, outlines)
	return result
}

// ExpandRows turns order rows into carpets using the given outline per
// filename. Quantity N expands into N carpets sharing filename, order, color,
// and priority, each with its own carpet ID so placement can track the copies
// separately. Rows whose filename has no outline are skipped.
func ExpandRows(rows []OrderRow, outlines map[string]model.Polygon) []model.Carpet {
	var carpets []model.Carpet
	for _, row := range rows {
		outline, ok := outlines[row.Filename]
		if !ok {
			continue
		}
		for i := 0; i < row.Quantity; i++ {
			carpets = append(carpets, model.NewCarpet(outline.Clone(), row.Filename, row.Color, row.OrderID, row.Priority))
		}
	}
	return carpets
}

// lwPolylineToRing converts a DXF LWPOLYLINE entity to an open ring.
// Bulge values on vertices produce interpolated arc segments; a repeated
// closing vertex is dropped.
func lwPolylineToRing(lw *entity.LwPolyline) model.Polygon {
	var ring model.Polygon

	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := model.Point2D{X: v[0], Y: v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		if math.Abs(bulge) > 1e-9 {
			// This vertex has a bulge: interpolate an arc to the next vertex.
			// All but the last arc point are added; the next vertex follows
			// naturally on the next iteration.
			nextIdx := (i + 1) % len(lw.Vertices)
			next := model.Point2D{X: lw.Vertices[nextIdx][0], Y: lw.Vertices[nextIdx][1]}
			arcPts := bulgeArcPoints(current, next, bulge, 32)
			ring = append(ring, arcPts[:len(arcPts)-1]...)
		} else {
			ring = append(ring, current)
		}
	}

	// The ring is implicitly closed; drop an explicit closing vertex.
	if len(ring) >= 2 && pointsClose(ring[0], ring[len(ring)-1], chainTolerance) {
		ring = ring[:len(ring)-1]
	}

	return ring
}

// bulgeArcPoints interpolates the arc between two polyline vertices described
// by a DXF bulge factor (the tangent of a quarter of the included angle).
func bulgeArcPoints(p1, p2 model.Point2D, bulge float64, numSegments int) []model.Point2D {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return []model.Point2D{p1, p2}
	}

	sagitta := math.Abs(bulge) * chord / 2
	radius := (chord*chord/(4*sagitta) + sagitta) / 2

	// The arc center sits on the chord's perpendicular bisector. A positive
	// bulge arcs counter-clockwise from p1 to p2, which puts the center on
	// the left of the travel direction; a negative bulge mirrors it.
	mx := (p1.X + p2.X) / 2
	my := (p1.Y + p2.Y) / 2
	perpX := -dy / chord
	perpY := dx / chord
	if bulge < 0 {
		perpX, perpY = -perpX, -perpY
	}
	cx := mx + perpX*(radius-sagitta)
	cy := my + perpY*(radius-sagitta)

	startAngle := math.Atan2(p1.Y-cy, p1.X-cx)
	endAngle := math.Atan2(p2.Y-cy, p2.X-cx)
	if bulge < 0 {
		// Clockwise arc
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else {
		// Counter-clockwise arc
		if endAngle < startAngle {
			endAngle += 2 * math.Pi
		}
	}

	pts := make([]model.Point2D, 0, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startAngle + t*(endAngle-startAngle)
		pts = append(pts, model.Point2D{
			X: cx + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		})
	}
	return pts
}

// circleToRing approximates a circle as a regular polygon.
func circleToRing(c *entity.Circle, numSegments int) model.Polygon {
	ring := make(model.Polygon, numSegments)
	cx, cy, r := c.Center[0], c.Center[1], c.Radius
	for i := 0; i < numSegments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numSegments)
		ring[i] = model.Point2D{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}
	return ring
}

// arcToPoints converts a DXF ARC entity to a series of line points.
func arcToPoints(a *entity.Arc, numSegments int) []model.Point2D {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius
	startDeg := a.Angle[0]
	endDeg := a.Angle[1]

	startRad := startDeg * math.Pi / 180
	endRad := endDeg * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]model.Point2D, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = model.Point2D{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}
	return pts
}

// pointsToSegments converts a point sequence to a slice of connected segments.
func pointsToSegments(pts []model.Point2D) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects individual segments into rings. Endpoints within the
// tolerance are considered coincident. Chains of three or more points that do
// not close are kept anyway (the implicit edge back to the first point closes
// them) and counted so the caller can warn about sloppy drawings.
func chainSegments(segs []segment, tolerance float64) ([]model.Polygon, int) {
	if len(segs) == 0 {
		return nil, 0
	}

	used := make([]bool, len(segs))
	var rings []model.Polygon
	open := 0

	for {
		// Find the first unused segment
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := []model.Point2D{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		// Try to extend the chain
		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		if len(chain) < 3 {
			continue
		}

		if pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			// Remove the duplicate closing point
			chain = chain[:len(chain)-1]
		} else {
			open++
		}

		if len(chain) >= 3 {
			rings = append(rings, model.Polygon(chain))
		}
	}

	return rings, open
}

// pointsClose checks whether two points are within the given tolerance.
func pointsClose(a, b model.Point2D, tolerance float64) bool {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx+dy*dy) <= tolerance
}
