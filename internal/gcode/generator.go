// Package gcode produces and analyzes programs for CNC drag-knife tables.
package gcode

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/CarpetNest/internal/model"
)

// Generator produces cutting programs from a nested sheet layout.
type Generator struct {
	Settings model.NestSettings
	profile  model.CutterProfile
}

func New(settings model.NestSettings) *Generator {
	return &Generator{
		Settings: settings,
		profile:  model.GetProfile(settings.CutterProfile),
	}
}

// GenerateSheet produces the cutting program for a single placed sheet.
// Mats are cut in placement order.
func (g *Generator) GenerateSheet(sheet model.PlacedSheet) string {
	var b strings.Builder

	g.writeHeader(&b, sheet)

	for i, pc := range sheet.Placed {
		g.writeMat(&b, pc, i+1)
	}

	g.writeFooter(&b)
	return b.String()
}

// GenerateAll produces one program string per sheet.
func (g *Generator) GenerateAll(result model.NestResult) []string {
	var programs []string
	for _, sheet := range result.Sheets {
		programs = append(programs, g.GenerateSheet(sheet))
	}
	return programs
}

func (g *Generator) writeHeader(b *strings.Builder, sheet model.PlacedSheet) {
	p := g.profile

	// Write file header comment
	b.WriteString(p.CommentPrefix)
	b.WriteString(fmt.Sprintf(" CarpetNest program - Sheet %d (%s, %s)\n", sheet.SheetNumber, sheet.TypeName, sheet.Color))
	b.WriteString(p.CommentPrefix)
	b.WriteString(fmt.Sprintf(" Sheet: %.1f x %.1f mm\n", sheet.Width, sheet.Height))
	b.WriteString(p.CommentPrefix)
	b.WriteString(fmt.Sprintf(" Mats: %d, Usage: %.1f%%\n", len(sheet.Placed), sheet.UsagePercent()))
	b.WriteString(p.CommentPrefix)
	b.WriteString(fmt.Sprintf(" Knife offset: %.2fmm, Feed: %.0f mm/min, Plunge: %.0f mm/min\n",
		g.Settings.KnifeOffset, g.Settings.FeedRate, g.Settings.PlungeRate))
	b.WriteString(p.CommentPrefix)
	b.WriteString(fmt.Sprintf(" Depth: %.1fmm in %.1fmm passes\n", g.Settings.CutDepth, g.Settings.PassDepth))
	b.WriteString(p.CommentPrefix)
	b.WriteString(fmt.Sprintf(" Profile: %s\n", p.Name))
	b.WriteString("\n")

	// Write startup codes
	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}

	// Park at origin with the blade up
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(0), g.format(0)))
	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))

	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(p.CommentPrefix + " === Job complete ===\n")

	// Write end codes
	for _, code := range p.EndCode {
		// Replace [SafeZ] placeholder
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ))
		b.WriteString(code + "\n")
	}
}

// writeMat emits the multi-pass outline cut for one placed mat. The knife
// rides the outline offset outward by half the blade width so the kerf
// falls in the waste and the mat keeps its drawn size.
func (g *Generator) writeMat(b *strings.Builder, pc model.PlacedCarpet, matNum int) {
	path := offsetOutline(pc.Polygon, g.Settings.KnifeOffset)
	if len(path) < 3 {
		b.WriteString(g.comment(fmt.Sprintf("WARNING: mat %d outline has fewer than 3 points, skipping", matNum)))
		return
	}

	w, h := pc.Polygon.Size()
	b.WriteString(g.comment(fmt.Sprintf("--- Mat %d: %s / %s (%.1f x %.1f)%s ---",
		matNum, pc.Carpet.OrderID, pc.Carpet.Filename, w, h, angleStr(pc.Angle))))

	passDepth := g.Settings.PassDepth
	if passDepth <= 0 {
		passDepth = g.Settings.CutDepth
	}
	numPasses := int(math.Ceil(g.Settings.CutDepth / passDepth))
	if numPasses < 1 {
		numPasses = 1
	}

	for pass := 1; pass <= numPasses; pass++ {
		depth := float64(pass) * passDepth
		if depth > g.Settings.CutDepth {
			depth = g.Settings.CutDepth
		}

		b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%.2fmm", pass, numPasses, depth)))

		// Rapid to the path start
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.profile.RapidMove,
			g.format(path[0].X), g.format(path[0].Y)))
		// Plunge the blade
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", g.profile.FeedMove,
			g.format(-depth), g.format(g.Settings.PlungeRate)))

		// Follow the outline
		for i := 1; i < len(path); i++ {
			b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", g.profile.FeedMove,
				g.format(path[i].X), g.format(path[i].Y),
				g.format(g.Settings.FeedRate)))
		}
		// Close the loop back to the start
		b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", g.profile.FeedMove,
			g.format(path[0].X), g.format(path[0].Y),
			g.format(g.Settings.FeedRate)))

		// Retract between passes
		b.WriteString(fmt.Sprintf("%s Z%s\n", g.profile.RapidMove, g.format(g.Settings.SafeZ)))
	}

	b.WriteString("\n")
}

// offsetOutline shifts every vertex outward along the averaged normal of
// its two adjacent edges. Outward depends on winding: a counter-clockwise
// ring keeps its interior left of travel, so the offset goes right, and a
// clockwise ring mirrors that.
func offsetOutline(outline model.Polygon, dist float64) model.Polygon {
	n := len(outline)
	if n < 3 || dist == 0 {
		return outline
	}

	sign := 1.0
	if ringSignedArea(outline) > 0 {
		sign = -1.0
	}

	result := make(model.Polygon, n)
	for i := 0; i < n; i++ {
		prev := outline[(i-1+n)%n]
		curr := outline[i]
		next := outline[(i+1)%n]

		// Edge vectors
		e1x := curr.X - prev.X
		e1y := curr.Y - prev.Y
		e2x := next.X - curr.X
		e2y := next.Y - curr.Y

		// Left normals of the adjacent edges, flipped outward by winding
		n1x, n1y := normalize(-e1y, e1x)
		n2x, n2y := normalize(-e2y, e2x)

		nx := sign * (n1x + n2x) / 2
		ny := sign * (n1y + n2y) / 2
		nLen := math.Sqrt(nx*nx + ny*ny)
		if nLen > 1e-9 {
			nx /= nLen
			ny /= nLen
		}

		result[i] = model.Point2D{
			X: curr.X + nx*dist,
			Y: curr.Y + ny*dist,
		}
	}
	return result
}

// ringSignedArea is the shoelace sum: positive for counter-clockwise rings.
func ringSignedArea(p model.Polygon) float64 {
	var sum float64
	n := len(p)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return sum / 2
}

// comment wraps text in the profile's comment syntax.
func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	format := fmt.Sprintf("%%.%df", g.profile.DecimalPlaces)
	return fmt.Sprintf(format, v)
}

func angleStr(angle float64) string {
	if angle == 0 {
		return ""
	}
	return fmt.Sprintf(" [rotated %.0f deg]", angle)
}

// normalize returns a unit vector in the given direction.
func normalize(x, y float64) (float64, float64) {
	length := math.Sqrt(x*x + y*y)
	if length < 1e-9 {
		return 0, 0
	}
	return x / length, y / length
}
