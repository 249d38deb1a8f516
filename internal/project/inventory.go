package project

import (
	"os"
	"strings"

	"github.com/piwi3910/CarpetNest/internal/model"
)

// DefaultInventoryPath returns ~/.carpetnest/inventory.json.
func DefaultInventoryPath() (string, error) {
	return defaultPath("inventory.json")
}

// SaveInventory writes the inventory to the given JSON file.
func SaveInventory(path string, inv model.Inventory) error {
	return writeJSON(path, inv)
}

// LoadInventory reads the inventory from the given JSON file. A missing
// file seeds the default stock catalog and writes it back, so the first
// run leaves an editable file behind.
func LoadInventory(path string) (model.Inventory, error) {
	var inv model.Inventory
	if err := readJSON(path, &inv); err != nil {
		if os.IsNotExist(err) {
			inv = model.DefaultInventory()
			return inv, SaveInventory(path, inv)
		}
		return model.Inventory{}, err
	}
	return inv, nil
}

// LoadOrCreateInventory loads the inventory from the default path,
// creating it with default entries when absent. The resolved path is
// returned so callers can save back to the same file.
func LoadOrCreateInventory() (model.Inventory, string, error) {
	path, err := DefaultInventoryPath()
	if err != nil {
		return model.DefaultInventory(), "", err
	}
	inv, err := LoadInventory(path)
	return inv, path, err
}

// ExportInventory exports the inventory to a user-specified JSON file.
func ExportInventory(path string, inv model.Inventory) error {
	return SaveInventory(path, inv)
}

// ImportInventory merges the inventory in the given file into existing.
// Entries are deduplicated by what they describe rather than by ID: two
// workshops exporting the same "EVA 140x200 black" stock assign it
// different IDs, so sheet presets dedupe on name+color and knives on
// name, case-insensitively. Existing entries always win.
func ImportInventory(path string, existing model.Inventory) (model.Inventory, error) {
	var imported model.Inventory
	if err := readJSON(path, &imported); err != nil {
		return existing, err
	}

	knives := make(map[string]bool, len(existing.Knives))
	for _, k := range existing.Knives {
		knives[knifeKey(k)] = true
	}
	for _, k := range imported.Knives {
		if !knives[knifeKey(k)] {
			existing.Knives = append(existing.Knives, k)
			knives[knifeKey(k)] = true
		}
	}

	sheets := make(map[string]bool, len(existing.Sheets))
	for _, s := range existing.Sheets {
		sheets[sheetKey(s)] = true
	}
	for _, s := range imported.Sheets {
		if !sheets[sheetKey(s)] {
			existing.Sheets = append(existing.Sheets, s)
			sheets[sheetKey(s)] = true
		}
	}

	return existing, nil
}

func knifeKey(k model.KnifeProfile) string {
	return strings.ToLower(strings.TrimSpace(k.Name))
}

func sheetKey(s model.SheetPreset) string {
	return strings.ToLower(strings.TrimSpace(s.Name)) + "|" + strings.ToLower(strings.TrimSpace(s.Color))
}
