package gcode

import (
	"math"
	"strings"
	"testing"

	"github.com/piwi3910/CarpetNest/internal/model"
)

// newTestSettings returns NestSettings suitable for testing with predictable output.
func newTestSettings() model.NestSettings {
	s := model.DefaultSettings()
	s.KnifeOffset = 0.5
	s.FeedRate = 1000.0
	s.PlungeRate = 300.0
	s.SafeZ = 5.0
	s.CutDepth = 6.0
	s.PassDepth = 6.0
	s.CutterProfile = "Generic"
	return s
}

// newTestMat places a 100x50 rectangular mat with its corner at (10, 10).
// The outline winds counter-clockwise.
func newTestMat() model.PlacedCarpet {
	outline := model.Polygon{
		{X: 10, Y: 10}, {X: 110, Y: 10}, {X: 110, Y: 60}, {X: 10, Y: 60},
	}
	return model.PlacedCarpet{
		Carpet: model.Carpet{
			ID:       "test1",
			Filename: "front_left.dxf",
			OrderID:  "ORD-1",
			Color:    "black",
			Polygon:  outline.Translate(-10, -10),
		},
		Polygon: outline,
		XOffset: 10,
		YOffset: 10,
	}
}

func newTestSheet() model.PlacedSheet {
	return model.PlacedSheet{
		SheetNumber: 1,
		TypeName:    "EVA 140x200",
		Width:       1400,
		Height:      2000,
		Color:       "black",
		Placed:      []model.PlacedCarpet{newTestMat()},
	}
}

func TestGenerateSheet_Header(t *testing.T) {
	gen := New(newTestSettings())
	code := gen.GenerateSheet(newTestSheet())

	if !strings.Contains(code, "; CarpetNest program - Sheet 1 (EVA 140x200, black)") {
		t.Error("expected program title comment with sheet number, type and color")
	}
	if !strings.Contains(code, "; Sheet: 1400.0 x 2000.0 mm") {
		t.Error("expected sheet dimensions comment")
	}
	if !strings.Contains(code, "; Profile: Generic") {
		t.Error("expected profile name comment")
	}
	if !strings.Contains(code, "; Knife offset: 0.50mm") {
		t.Error("expected knife offset comment")
	}
}

func TestGenerateSheet_StartupAndPark(t *testing.T) {
	gen := New(newTestSettings())
	code := gen.GenerateSheet(newTestSheet())

	if !strings.Contains(code, "G90\n") {
		t.Error("expected absolute positioning in startup codes")
	}
	if !strings.Contains(code, "G21\n") {
		t.Error("expected metric units in startup codes")
	}
	if !strings.Contains(code, "G0 X0.000 Y0.000") {
		t.Error("expected park at origin after startup")
	}
	if !strings.Contains(code, "G0 Z5.000") {
		t.Error("expected blade raised to safe height after startup")
	}
}

func TestGenerateSheet_Footer(t *testing.T) {
	gen := New(newTestSettings())
	code := gen.GenerateSheet(newTestSheet())

	if !strings.Contains(code, "=== Job complete ===") {
		t.Error("expected job complete comment in footer")
	}
	if !strings.Contains(code, "G0 X0 Y0\n") {
		t.Error("expected return to origin in end codes")
	}
	if !strings.HasSuffix(strings.TrimSpace(code), "M2") {
		t.Error("expected program end command as the last line")
	}
	if strings.Contains(code, "[SafeZ]") {
		t.Error("expected [SafeZ] placeholder to be substituted in end codes")
	}
}

func TestGenerateSheet_SinglePass(t *testing.T) {
	gen := New(newTestSettings())
	code := gen.GenerateSheet(newTestSheet())

	if n := strings.Count(code, "Pass "); n != 1 {
		t.Errorf("expected 1 pass with CutDepth == PassDepth, got %d", n)
	}
	if !strings.Contains(code, "Pass 1/1, depth=6.00mm") {
		t.Error("expected full-depth single pass comment")
	}
	if !strings.Contains(code, "G1 Z-6.000 F300.000") {
		t.Error("expected plunge to cut depth at the plunge rate")
	}
}

func TestGenerateSheet_MultiPass(t *testing.T) {
	settings := newTestSettings()
	settings.CutDepth = 12.0
	settings.PassDepth = 6.0
	gen := New(settings)
	code := gen.GenerateSheet(newTestSheet())

	if n := strings.Count(code, "Pass "); n != 2 {
		t.Errorf("expected 2 passes for CutDepth 12 with PassDepth 6, got %d", n)
	}
	if !strings.Contains(code, "Pass 1/2, depth=6.00mm") {
		t.Error("expected first pass at 6mm")
	}
	if !strings.Contains(code, "Pass 2/2, depth=12.00mm") {
		t.Error("expected second pass at 12mm")
	}
}

func TestGenerateSheet_FinalPassClampedToCutDepth(t *testing.T) {
	settings := newTestSettings()
	settings.CutDepth = 10.0
	settings.PassDepth = 6.0
	gen := New(settings)
	code := gen.GenerateSheet(newTestSheet())

	// 6mm then 10mm, never 12mm
	if !strings.Contains(code, "Pass 2/2, depth=10.00mm") {
		t.Error("expected final pass clamped to the cut depth")
	}
	if strings.Contains(code, "depth=12.00mm") {
		t.Error("final pass must not exceed the cut depth")
	}
}

func TestGenerateSheet_MatComment(t *testing.T) {
	gen := New(newTestSettings())
	code := gen.GenerateSheet(newTestSheet())

	if !strings.Contains(code, "--- Mat 1: ORD-1 / front_left.dxf (100.0 x 50.0) ---") {
		t.Error("expected mat comment with order, filename and size")
	}
	if strings.Contains(code, "rotated") {
		t.Error("expected no rotation note for an unrotated mat")
	}
}

func TestGenerateSheet_RotatedMatComment(t *testing.T) {
	sheet := newTestSheet()
	sheet.Placed[0].Angle = 90
	gen := New(newTestSettings())
	code := gen.GenerateSheet(sheet)

	if !strings.Contains(code, "[rotated 90 deg]") {
		t.Error("expected rotation note for a rotated mat")
	}
}

func TestGenerateSheet_ClosesLoopAtOffsetStart(t *testing.T) {
	gen := New(newTestSettings())
	code := gen.GenerateSheet(newTestSheet())

	// Corner (10, 10) offset 0.5mm outward along the diagonal bisector:
	// 10 - 0.5/sqrt(2) = 9.646
	if !strings.Contains(code, "G0 X9.646 Y9.646") {
		t.Error("expected rapid to the offset path start")
	}
	if n := strings.Count(code, "G1 X9.646 Y9.646 F1000.000"); n != 1 {
		t.Errorf("expected exactly 1 closing feed move back to the path start, got %d", n)
	}
}

func TestGenerateSheet_SkipsDegenerateOutline(t *testing.T) {
	sheet := newTestSheet()
	sheet.Placed[0].Polygon = model.Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}}
	gen := New(newTestSettings())
	code := gen.GenerateSheet(sheet)

	if !strings.Contains(code, "WARNING: mat 1 outline has fewer than 3 points") {
		t.Error("expected warning comment for a degenerate outline")
	}
	if strings.Contains(code, "Pass ") {
		t.Error("expected no cutting passes for a degenerate outline")
	}
}

func TestGenerateSheet_Mach3Profile(t *testing.T) {
	settings := newTestSettings()
	settings.CutterProfile = "Mach3"
	gen := New(settings)
	code := gen.GenerateSheet(newTestSheet())

	if !strings.Contains(code, "G0 Z5.0000") {
		t.Error("expected 4 decimal places for the Mach3 profile")
	}
	if !strings.Contains(code, "G28 X0 Y0") {
		t.Error("expected Mach3 return-home end code")
	}
	if !strings.Contains(code, "M30\n") {
		t.Error("expected Mach3 program end command")
	}
}

func TestGenerateAll_OneProgramPerSheet(t *testing.T) {
	second := newTestSheet()
	second.SheetNumber = 2
	result := model.NestResult{Sheets: []model.PlacedSheet{newTestSheet(), second}}

	gen := New(newTestSettings())
	programs := gen.GenerateAll(result)

	if len(programs) != 2 {
		t.Fatalf("expected 2 programs, got %d", len(programs))
	}
	if !strings.Contains(programs[0], "Sheet 1 (") {
		t.Error("expected first program to carry sheet number 1")
	}
	if !strings.Contains(programs[1], "Sheet 2 (") {
		t.Error("expected second program to carry sheet number 2")
	}
}

func TestOffsetOutline_ExpandsCounterClockwiseRing(t *testing.T) {
	ring := model.Polygon{
		{X: 10, Y: 10}, {X: 110, Y: 10}, {X: 110, Y: 60}, {X: 10, Y: 60},
	}
	offset := offsetOutline(ring, 1.0)

	min, max := offset.BoundingBox()
	if min.X >= 10 || min.Y >= 10 || max.X <= 110 || max.Y <= 60 {
		t.Errorf("expected offset ring to grow outward, got bbox (%.3f, %.3f)-(%.3f, %.3f)",
			min.X, min.Y, max.X, max.Y)
	}
}

func TestOffsetOutline_ExpandsClockwiseRing(t *testing.T) {
	ring := model.Polygon{
		{X: 10, Y: 10}, {X: 10, Y: 60}, {X: 110, Y: 60}, {X: 110, Y: 10},
	}
	offset := offsetOutline(ring, 1.0)

	min, max := offset.BoundingBox()
	if min.X >= 10 || min.Y >= 10 || max.X <= 110 || max.Y <= 60 {
		t.Errorf("expected offset to stay outward regardless of winding, got bbox (%.3f, %.3f)-(%.3f, %.3f)",
			min.X, min.Y, max.X, max.Y)
	}
}

func TestOffsetOutline_CornerDistance(t *testing.T) {
	ring := model.Polygon{
		{X: 10, Y: 10}, {X: 110, Y: 10}, {X: 110, Y: 60}, {X: 10, Y: 60},
	}
	offset := offsetOutline(ring, 1.0)

	// A right-angle corner moves the full offset distance along its bisector.
	want := 10.0 - 1.0/math.Sqrt2
	if math.Abs(offset[0].X-want) > 1e-6 || math.Abs(offset[0].Y-want) > 1e-6 {
		t.Errorf("expected corner at (%.6f, %.6f), got (%.6f, %.6f)",
			want, want, offset[0].X, offset[0].Y)
	}
}

func TestOffsetOutline_ZeroDistance(t *testing.T) {
	ring := model.Polygon{
		{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 50, Y: 50},
	}
	offset := offsetOutline(ring, 0)

	if len(offset) != 3 {
		t.Fatalf("expected ring unchanged, got %d points", len(offset))
	}
	for i := range ring {
		if offset[i] != ring[i] {
			t.Errorf("point %d changed: %v != %v", i, offset[i], ring[i])
		}
	}
}

func TestRingSignedArea(t *testing.T) {
	ccw := model.Polygon{
		{X: 10, Y: 10}, {X: 110, Y: 10}, {X: 110, Y: 60}, {X: 10, Y: 60},
	}
	if a := ringSignedArea(ccw); math.Abs(a-5000) > 1e-9 {
		t.Errorf("expected +5000 for a counter-clockwise 100x50 ring, got %f", a)
	}

	cw := model.Polygon{
		{X: 10, Y: 10}, {X: 10, Y: 60}, {X: 110, Y: 60}, {X: 110, Y: 10},
	}
	if a := ringSignedArea(cw); math.Abs(a+5000) > 1e-9 {
		t.Errorf("expected -5000 for a clockwise 100x50 ring, got %f", a)
	}
}

func TestAngleStr(t *testing.T) {
	if s := angleStr(0); s != "" {
		t.Errorf("expected empty string for zero angle, got %q", s)
	}
	if s := angleStr(90); s != " [rotated 90 deg]" {
		t.Errorf("unexpected rotation note: %q", s)
	}
}
