package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/CarpetNest/internal/model"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.pdf")

	result := buildNestResult()
	err := ExportLabels(path, result)
	if err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportLabels_EmptyResult(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.pdf")

	err := ExportLabels(path, model.NestResult{})
	if err == nil {
		t.Fatal("expected error for empty result, got nil")
	}
}

func TestExportLabels_NoPlacements(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "no_placements.pdf")

	result := model.NestResult{
		Sheets: []model.PlacedSheet{
			{SheetNumber: 1, TypeName: "EVA 140x200", Width: 1400, Height: 2000, Color: "grey"},
		},
	}
	err := ExportLabels(path, result)
	if err == nil {
		t.Fatal("expected error for result with no placements, got nil")
	}
}

func TestCollectLabelInfos(t *testing.T) {
	result := buildNestResult()
	labels := CollectLabelInfos(result)

	if len(labels) != 4 {
		t.Fatalf("expected 4 labels, got %d", len(labels))
	}

	// First label comes from the first mat on the first sheet
	if labels[0].OrderID != "ORD-1" {
		t.Errorf("expected first label order ORD-1, got %q", labels[0].OrderID)
	}
	if labels[0].Filename != "front_left.dxf" {
		t.Errorf("expected filename front_left.dxf, got %q", labels[0].Filename)
	}
	if labels[0].SheetNumber != 5 {
		t.Errorf("expected the global sheet number 5, got %d", labels[0].SheetNumber)
	}
	if labels[0].Width != 600 || labels[0].Height != 400 {
		t.Errorf("wrong dimensions: got %.0fx%.0f, want 600x400", labels[0].Width, labels[0].Height)
	}

	// Third label is the rotated trunk mat
	if labels[2].Angle != 90 {
		t.Errorf("expected angle 90 for rotated mat, got %.0f", labels[2].Angle)
	}

	// Fourth label comes from the second sheet
	if labels[3].SheetNumber != 6 || labels[3].Color != "black" {
		t.Errorf("expected sheet 6 / black for last label, got %d / %q",
			labels[3].SheetNumber, labels[3].Color)
	}
}

func TestLabelInfo_QRPayloadKeys(t *testing.T) {
	// Workshop scanners route mats by these JSON keys; renaming them
	// breaks deployed readers.
	info := LabelInfo{
		OrderID:     "ORD-7",
		Filename:    "rear.dxf",
		SheetNumber: 3,
		SheetType:   "EVA 140x200",
		Color:       "black",
		Width:       800,
		Height:      500,
	}

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	for _, key := range []string{"order", "filename", "sheet", "color"} {
		if _, ok := payload[key]; !ok {
			t.Errorf("QR payload missing key %q", key)
		}
	}
	if payload["order"] != "ORD-7" {
		t.Errorf("expected order ORD-7 in payload, got %v", payload["order"])
	}
	if payload["sheet"] != float64(3) {
		t.Errorf("expected sheet 3 in payload, got %v", payload["sheet"])
	}
}

func TestExportLabels_MultiPage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "many_labels.pdf")

	// 25 mats overflow the 21-label page
	var placed []model.PlacedCarpet
	for i := 0; i < 25; i++ {
		placed = append(placed, placedMat(
			fmt.Sprintf("ORD-%d", i/3+1),
			fmt.Sprintf("mat_%d.dxf", i+1),
			"grey",
			rectAt(float64(i)*10, 0, 300, 200),
			0,
		))
	}

	result := model.NestResult{
		Sheets: []model.PlacedSheet{
			{SheetNumber: 1, TypeName: "EVA 140x200", Width: 1400, Height: 2000, Color: "grey", Placed: placed},
		},
	}

	err := ExportLabels(path, result)
	if err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}

	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("PDF file missing or empty: %v", err)
	}
}
