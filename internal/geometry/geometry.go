// Package geometry provides the polygon transforms and collision tests the
// nesting engine is built on. All functions are pure: they never modify
// their inputs and return fresh rings.
//
// Transform results are run through a repair step before being returned.
// A transform of a valid simple polygon stays valid in exact arithmetic,
// but floating point can produce coincident vertices or sliver
// self-intersections; repair removes degenerate vertices and, when the
// ring still cannot be fixed, falls back to the untransformed original so
// an invalid shape never propagates into placement.
package geometry

import (
	"math"

	"github.com/piwi3910/CarpetNest/internal/model"
)

// coincidentTol is the distance under which two consecutive vertices are
// considered the same point and merged during repair.
const coincidentTol = 1e-9

var repairFallbacks int

// RepairFallbackCount reports how many transform results could not be
// repaired and fell back to their original ring since the last reset.
func RepairFallbackCount() int {
	return repairFallbacks
}

// ResetRepairStats clears the fallback counter.
func ResetRepairStats() {
	repairFallbacks = 0
}

// Rotate returns the polygon rotated by angleDeg degrees counter-clockwise
// about its centroid. An angle of 0 returns the input ring unchanged so
// repeated no-op rotations cannot accumulate floating point drift.
func Rotate(p model.Polygon, angleDeg float64) model.Polygon {
	if angleDeg == 0 || len(p) == 0 {
		return p
	}
	c := p.Centroid()
	rad := angleDeg * math.Pi / 180.0
	sin, cos := math.Sin(rad), math.Cos(rad)

	result := make(model.Polygon, len(p))
	for i, pt := range p {
		dx := pt.X - c.X
		dy := pt.Y - c.Y
		result[i] = model.Point2D{
			X: c.X + dx*cos - dy*sin,
			Y: c.Y + dx*sin + dy*cos,
		}
	}
	return RepairOrFallback(result, p)
}

// Translate returns the polygon shifted by dx, dy, with the same repair
// policy as Rotate.
func Translate(p model.Polygon, dx, dy float64) model.Polygon {
	if len(p) == 0 {
		return p
	}
	return RepairOrFallback(p.Translate(dx, dy), p)
}

// ScaleAbout returns the polygon scaled by factor about the given center.
// Factors at or above 1 are clamped to 1: scaling never enlarges a carpet.
func ScaleAbout(p model.Polygon, factor float64, center model.Point2D) model.Polygon {
	if len(p) == 0 || factor >= 1.0 {
		return p
	}
	result := make(model.Polygon, len(p))
	for i, pt := range p {
		result[i] = model.Point2D{
			X: center.X + (pt.X-center.X)*factor,
			Y: center.Y + (pt.Y-center.Y)*factor,
		}
	}
	return RepairOrFallback(result, p)
}

// RepairOrFallback returns p if it is a valid simple ring, otherwise a
// repaired copy, otherwise the original. Every transform site shares this
// one policy so the fallback behavior stays identical everywhere.
func RepairOrFallback(p, original model.Polygon) model.Polygon {
	if IsValid(p) {
		return p
	}
	repaired := dedupeRing(p)
	if IsValid(repaired) {
		return repaired
	}
	repairFallbacks++
	return original
}

// dedupeRing removes consecutive coincident vertices, including a closing
// vertex equal to the first.
func dedupeRing(p model.Polygon) model.Polygon {
	if len(p) == 0 {
		return p
	}
	result := make(model.Polygon, 0, len(p))
	for _, pt := range p {
		if len(result) > 0 {
			last := result[len(result)-1]
			if math.Abs(pt.X-last.X) < coincidentTol && math.Abs(pt.Y-last.Y) < coincidentTol {
				continue
			}
		}
		result = append(result, pt)
	}
	// Drop an explicit closing vertex
	if len(result) > 1 {
		first, last := result[0], result[len(result)-1]
		if math.Abs(first.X-last.X) < coincidentTol && math.Abs(first.Y-last.Y) < coincidentTol {
			result = result[:len(result)-1]
		}
	}
	return result
}
