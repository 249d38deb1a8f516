package gcode

import (
	"math"
	"testing"
)

func TestParseProgram_Empty(t *testing.T) {
	moves := ParseProgram("")
	if len(moves) != 0 {
		t.Errorf("expected 0 moves for empty input, got %d", len(moves))
	}
}

func TestParseProgram_CommentsOnly(t *testing.T) {
	code := `; This is a comment
; Another comment
(parenthetical comment)
`
	moves := ParseProgram(code)
	if len(moves) != 0 {
		t.Errorf("expected 0 moves for comments-only input, got %d", len(moves))
	}
}

func TestParseProgram_RapidMove(t *testing.T) {
	code := "G0 X10.000 Y20.000\n"
	moves := ParseProgram(code)
	if len(moves) != 1 {
		t.Fatalf("expected 1 move, got %d", len(moves))
	}
	m := moves[0]
	if m.Type != MoveRapid {
		t.Errorf("expected MoveRapid, got %d", m.Type)
	}
	if m.FromX != 0 || m.FromY != 0 {
		t.Errorf("expected from (0,0), got (%.3f, %.3f)", m.FromX, m.FromY)
	}
	if m.ToX != 10 || m.ToY != 20 {
		t.Errorf("expected to (10,20), got (%.3f, %.3f)", m.ToX, m.ToY)
	}
}

func TestParseProgram_FeedMove(t *testing.T) {
	code := "G0 X0.000 Y0.000\nG1 X100.000 Y0.000 F1000.0\n"
	moves := ParseProgram(code)
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(moves))
	}
	m := moves[1]
	if m.Type != MoveFeed {
		t.Errorf("expected MoveFeed, got %d", m.Type)
	}
	if m.ToX != 100 || m.ToY != 0 {
		t.Errorf("expected to (100,0), got (%.3f, %.3f)", m.ToX, m.ToY)
	}
	if m.FeedRate != 1000 {
		t.Errorf("expected feed rate 1000, got %.1f", m.FeedRate)
	}
}

func TestParseProgram_PlungeMove(t *testing.T) {
	code := "G0 X10.000 Y10.000\nG0 Z5.000\nG1 Z-6.000 F300.0\n"
	moves := ParseProgram(code)
	if len(moves) != 3 {
		t.Fatalf("expected 3 moves, got %d", len(moves))
	}
	m := moves[2]
	if m.Type != MovePlunge {
		t.Errorf("expected MovePlunge, got %d", m.Type)
	}
	if m.FromZ != 5 || m.ToZ != -6 {
		t.Errorf("expected Z from 5 to -6, got %.3f to %.3f", m.FromZ, m.ToZ)
	}
}

func TestParseProgram_RetractMove(t *testing.T) {
	code := "G0 X10.000 Y10.000\nG1 Z-6.000 F300.0\nG0 Z5.000\n"
	moves := ParseProgram(code)
	if len(moves) != 3 {
		t.Fatalf("expected 3 moves, got %d", len(moves))
	}
	m := moves[2]
	if m.Type != MoveRetract {
		t.Errorf("expected MoveRetract, got %d", m.Type)
	}
	if m.ToZ != 5 {
		t.Errorf("expected retract to Z=5, got Z=%.3f", m.ToZ)
	}
}

func TestParseProgram_InlineComment(t *testing.T) {
	code := "G1 X50.000 Y50.000 F1000.0 ; cutting move\n"
	moves := ParseProgram(code)
	if len(moves) != 1 {
		t.Fatalf("expected 1 move, got %d", len(moves))
	}
	if moves[0].ToX != 50 || moves[0].ToY != 50 {
		t.Errorf("expected to (50,50), got (%.3f, %.3f)", moves[0].ToX, moves[0].ToY)
	}
}

func TestParseProgram_NonMovementLines(t *testing.T) {
	code := `G90
G21
G17
M2
G0 X0.000 Y0.000
G0 X10.000 Y10.000
`
	moves := ParseProgram(code)
	if len(moves) != 2 {
		t.Errorf("expected 2 moves (only G0 lines), got %d", len(moves))
	}
}

func TestParseProgram_CommandVariants(t *testing.T) {
	code := "G00 X10.000 Y0.000\ng01 x20.000 y0.000 f500.0\n"
	moves := ParseProgram(code)
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(moves))
	}
	if moves[0].Type != MoveRapid {
		t.Errorf("expected G00 parsed as rapid, got %d", moves[0].Type)
	}
	if moves[1].Type != MoveFeed || moves[1].ToX != 20 {
		t.Errorf("expected lowercase g01 parsed as feed to X=20, got type %d to X=%.3f",
			moves[1].Type, moves[1].ToX)
	}
}

func TestParseProgram_StateTracking(t *testing.T) {
	code := `G0 X10.000 Y20.000
G0 Z5.000
G1 Z-6.000 F300.0
G1 X100.000 Y20.000 F1000.0
G1 X100.000 Y80.000
G0 Z5.000
`
	moves := ParseProgram(code)
	if len(moves) != 6 {
		t.Fatalf("expected 6 moves, got %d", len(moves))
	}

	// Verify position state is tracked across moves
	// Move 3 (index 2): plunge at X=10, Y=20
	if moves[2].FromX != 10 || moves[2].FromY != 20 {
		t.Errorf("move 2: expected from (10,20), got (%.3f, %.3f)", moves[2].FromX, moves[2].FromY)
	}
	// Move 4 (index 3): feed from (10,20) to (100,20)
	if moves[3].FromX != 10 || moves[3].ToX != 100 {
		t.Errorf("move 3: expected X from 10 to 100, got %.3f to %.3f", moves[3].FromX, moves[3].ToX)
	}
	// Move 5 (index 4): feed from (100,20) to (100,80)
	if moves[4].FromX != 100 || moves[4].FromY != 20 || moves[4].ToY != 80 {
		t.Errorf("move 4: expected from (100,20) to (100,80), got (%.3f,%.3f) to (%.3f,%.3f)",
			moves[4].FromX, moves[4].FromY, moves[4].ToX, moves[4].ToY)
	}
}

func TestParseProgram_FeedRateSticky(t *testing.T) {
	code := `G1 X10.000 Y10.000 F1000.0
G1 X20.000 Y20.000
`
	moves := ParseProgram(code)
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(moves))
	}
	// Feed rate should persist from previous command
	if moves[1].FeedRate != 1000 {
		t.Errorf("expected sticky feed rate 1000, got %.1f", moves[1].FeedRate)
	}
}

func TestParseProgram_FullCutSequence(t *testing.T) {
	// A realistic single-mat program as the generator emits it
	code := `; CarpetNest program - Sheet 1 (EVA 140x200, black)
G90
G21
G0 X0.000 Y0.000
G0 Z5.000

; --- Mat 1: ORD-1 / front_left.dxf (100.0 x 50.0) ---
; Pass 1/1, depth=6.00mm
G0 X9.646 Y9.646
G1 Z-6.000 F300.000
G1 X110.354 Y9.646 F1000.000
G1 X110.354 Y60.354 F1000.000
G1 X9.646 Y60.354 F1000.000
G1 X9.646 Y9.646 F1000.000
G0 Z5.000

; === Job complete ===
G0 Z5.000
G0 X0 Y0
M2
`
	moves := ParseProgram(code)

	// Count move types
	counts := map[MoveType]int{}
	for _, m := range moves {
		counts[m.Type]++
	}

	if counts[MoveRapid] < 2 {
		t.Errorf("expected at least 2 rapid moves, got %d", counts[MoveRapid])
	}
	if counts[MoveFeed] != 4 {
		t.Errorf("expected 4 feed moves (rectangle perimeter), got %d", counts[MoveFeed])
	}
	if counts[MovePlunge] != 1 {
		t.Errorf("expected 1 plunge move, got %d", counts[MovePlunge])
	}
	if counts[MoveRetract] != 2 {
		t.Errorf("expected 2 retract moves, got %d", counts[MoveRetract])
	}
}

func TestClassifyMove(t *testing.T) {
	tests := []struct {
		name    string
		isRapid bool
		fromZ   float64
		toZ     float64
		fromX   float64
		fromY   float64
		toX     float64
		toY     float64
		want    MoveType
	}{
		{"rapid XY", true, 5, 5, 0, 0, 10, 20, MoveRapid},
		{"rapid retract", true, -6, 5, 10, 20, 10, 20, MoveRetract},
		{"rapid with Z up", true, 0, 5, 0, 0, 0, 0, MoveRetract},
		{"feed XY", false, -6, -6, 0, 0, 100, 0, MoveFeed},
		{"plunge", false, 5, -6, 10, 20, 10, 20, MovePlunge},
		{"retract feed", false, -6, 0, 10, 20, 10, 20, MoveRetract},
		{"feed with slight Z", false, -6, -6.0001, 0, 0, 100, 0, MoveFeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyMove(tt.isRapid, tt.fromZ, tt.toZ, tt.fromX, tt.fromY, tt.toX, tt.toY)
			if got != tt.want {
				t.Errorf("classifyMove() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseProgram_NegativeCoordinates(t *testing.T) {
	code := "G0 X-3.000 Y-3.000\n"
	moves := ParseProgram(code)
	if len(moves) != 1 {
		t.Fatalf("expected 1 move, got %d", len(moves))
	}
	if moves[0].ToX != -3 || moves[0].ToY != -3 {
		t.Errorf("expected to (-3,-3), got (%.3f, %.3f)", moves[0].ToX, moves[0].ToY)
	}
}

func TestProgramStatistics_SquareCut(t *testing.T) {
	code := `G0 X10.000 Y10.000
G1 Z-6.000 F300.000
G1 X110.000 Y10.000 F1000.000
G1 X110.000 Y60.000 F1000.000
G1 X10.000 Y60.000 F1000.000
G1 X10.000 Y10.000 F1000.000
G0 Z5.000
`
	moves := ParseProgram(code)
	stats := ProgramStatistics(moves, newTestSettings())

	if stats.MoveCount != 7 {
		t.Errorf("expected 7 moves, got %d", stats.MoveCount)
	}
	if math.Abs(stats.CutLength-300) > 1e-9 {
		t.Errorf("expected cut length 300 (100+50+100+50), got %.3f", stats.CutLength)
	}
	if math.Abs(stats.RapidLength-math.Sqrt(200)) > 1e-9 {
		t.Errorf("expected rapid length %.3f, got %.3f", math.Sqrt(200), stats.RapidLength)
	}
	if stats.PlungeCount != 1 {
		t.Errorf("expected 1 plunge, got %d", stats.PlungeCount)
	}

	// Approach at the rapid rate, plunge 6mm at F300, 300mm of cutting at
	// F1000, retract 11mm at the rapid rate.
	want := math.Sqrt(200)/6000 + 6.0/300 + 300.0/1000 + 11.0/6000
	if math.Abs(stats.EstimatedMins-want) > 1e-9 {
		t.Errorf("expected estimate %.6f min, got %.6f", want, stats.EstimatedMins)
	}
}

func TestProgramStatistics_FeedFallback(t *testing.T) {
	// No F words anywhere: times come from the settings feeds
	code := "G1 X100.000 Y0.000\nG1 Z-5.000\n"
	moves := ParseProgram(code)
	stats := ProgramStatistics(moves, newTestSettings())

	if math.Abs(stats.CutLength-100) > 1e-9 {
		t.Errorf("expected cut length 100, got %.3f", stats.CutLength)
	}
	want := 100.0/1000 + 5.0/300
	if math.Abs(stats.EstimatedMins-want) > 1e-9 {
		t.Errorf("expected estimate %.6f min, got %.6f", want, stats.EstimatedMins)
	}
}

func TestProgramStatistics_ZeroFeedGuard(t *testing.T) {
	settings := newTestSettings()
	settings.FeedRate = 0
	settings.PlungeRate = 0
	moves := ParseProgram("G1 X100.000 Y0.000\nG1 Z-5.000\n")
	stats := ProgramStatistics(moves, settings)

	if math.Abs(stats.CutLength-100) > 1e-9 {
		t.Errorf("expected cut length 100, got %.3f", stats.CutLength)
	}
	if stats.EstimatedMins != 0 {
		t.Errorf("expected no time estimate without any feed rate, got %.6f", stats.EstimatedMins)
	}
}

func TestProgramStatistics_Empty(t *testing.T) {
	stats := ProgramStatistics(nil, newTestSettings())
	if stats.MoveCount != 0 || stats.CutLength != 0 || stats.EstimatedMins != 0 {
		t.Errorf("expected zero stats for no moves, got %+v", stats)
	}
}

func TestProgramStatistics_GeneratedProgram(t *testing.T) {
	gen := New(newTestSettings())
	code := gen.GenerateSheet(newTestSheet())

	stats := ProgramStatistics(ParseProgram(code), newTestSettings())

	if stats.PlungeCount != 1 {
		t.Errorf("expected 1 plunge for a single-pass single-mat program, got %d", stats.PlungeCount)
	}
	// The knife rides 0.5mm outside a 100x50 outline, so the cut is slightly
	// longer than the 300mm perimeter.
	if stats.CutLength <= 300 || stats.CutLength >= 310 {
		t.Errorf("expected cut length just over the mat perimeter, got %.3f", stats.CutLength)
	}
	if stats.RapidLength <= 0 {
		t.Error("expected nonzero rapid travel")
	}
	if stats.EstimatedMins <= 0 {
		t.Error("expected a positive time estimate")
	}
}
