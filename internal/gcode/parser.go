package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/piwi3910/CarpetNest/internal/model"
)

// MoveType classifies a parsed toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: blade-up travel
	MoveFeed                    // G1: cutting move in the XY plane
	MovePlunge                  // G1 with Z decreasing: blade entering the material
	MoveRetract                 // G0/G1 with Z increasing: blade lifting out
)

// Move is a single parsed movement with absolute endpoints.
type Move struct {
	Type     MoveType
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	FeedRate float64
}

// XYLength returns the horizontal travel of the move in mm.
func (m Move) XYLength() float64 {
	return math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)
}

// ZLength returns the vertical travel of the move in mm.
func (m Move) ZLength() float64 {
	return math.Abs(m.ToZ - m.FromZ)
}

var coordRe = regexp.MustCompile(`([XYZF])(-?\d+\.?\d*)`)

// ParseProgram parses a cutting program into a slice of structured moves.
// It tracks absolute position state and classifies each G0/G1 command by
// its movement characteristics (rapid, feed, plunge, retract).
func ParseProgram(code string) []Move {
	var moves []Move

	// Current machine state
	curX, curY, curZ := 0.0, 0.0, 0.0
	curFeed := 0.0

	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Strip inline comments (semicolon or parenthetical)
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		if idx := strings.Index(line, "("); idx >= 0 {
			if end := strings.Index(line, ")"); end > idx {
				line = line[:idx] + line[end+1:]
			}
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Determine command type
		isRapid := false
		isFeed := false
		upper := strings.ToUpper(line)
		if strings.HasPrefix(upper, "G0 ") || strings.HasPrefix(upper, "G00 ") || upper == "G0" || upper == "G00" {
			isRapid = true
		} else if strings.HasPrefix(upper, "G1 ") || strings.HasPrefix(upper, "G01 ") || upper == "G1" || upper == "G01" {
			isFeed = true
		}

		if !isRapid && !isFeed {
			continue
		}

		// Parse coordinates from this line
		newX, newY, newZ, newFeed := curX, curY, curZ, curFeed
		for _, m := range coordRe.FindAllStringSubmatch(upper, -1) {
			val, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				newX = val
			case "Y":
				newY = val
			case "Z":
				newZ = val
			case "F":
				newFeed = val
			}
		}

		moves = append(moves, Move{
			Type:     classifyMove(isRapid, curZ, newZ, curX, curY, newX, newY),
			FromX:    curX,
			FromY:    curY,
			FromZ:    curZ,
			ToX:      newX,
			ToY:      newY,
			ToZ:      newZ,
			FeedRate: newFeed,
		})

		curX, curY, curZ, curFeed = newX, newY, newZ, newFeed
	}

	return moves
}

// classifyMove determines the MoveType based on movement characteristics.
func classifyMove(isRapid bool, fromZ, toZ, fromX, fromY, toX, toY float64) MoveType {
	zDelta := toZ - fromZ
	hasXY := fromX != toX || fromY != toY

	switch {
	case isRapid:
		if zDelta > 0 {
			return MoveRetract
		}
		return MoveRapid
	case zDelta < -0.001 && !hasXY:
		// Z going down (more negative) without XY movement = plunge
		return MovePlunge
	case zDelta > 0.001 && !hasXY:
		// Z going up without XY movement = retract
		return MoveRetract
	default:
		return MoveFeed
	}
}

// ProgramStats summarizes a parsed cutting program.
type ProgramStats struct {
	CutLength     float64 // Blade-down travel in mm
	RapidLength   float64 // Blade-up XY travel in mm
	PlungeCount   int     // Blade entries (one per pass per mat)
	MoveCount     int
	EstimatedMins float64 // Run time estimate in minutes
}

// rapidRate approximates blade-up travel speed for time estimates. Knife
// tables do not state their true rapid rate in the program.
const rapidRate = 6000.0

// ProgramStatistics aggregates parsed moves into program stats. Moves
// without an explicit feed rate fall back to the settings feeds.
func ProgramStatistics(moves []Move, settings model.NestSettings) ProgramStats {
	stats := ProgramStats{MoveCount: len(moves)}

	for _, m := range moves {
		switch m.Type {
		case MoveRapid, MoveRetract:
			stats.RapidLength += m.XYLength()
			stats.EstimatedMins += (m.XYLength() + m.ZLength()) / rapidRate

		case MovePlunge:
			stats.PlungeCount++
			feed := m.FeedRate
			if feed <= 0 {
				feed = settings.PlungeRate
			}
			if feed > 0 {
				stats.EstimatedMins += m.ZLength() / feed
			}

		case MoveFeed:
			stats.CutLength += m.XYLength()
			feed := m.FeedRate
			if feed <= 0 {
				feed = settings.FeedRate
			}
			if feed > 0 {
				stats.EstimatedMins += m.XYLength() / feed
			}
		}
	}

	return stats
}
