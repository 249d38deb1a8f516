package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/piwi3910/CarpetNest/internal/model"
)

// Save writes a project (carpets, inventory, settings, and any nest
// result) to the given path as JSON.
func Save(path string, proj model.Project) error {
	return writeJSON(path, proj)
}

// Load reads a project from the given path.
func Load(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, err
	}
	var proj model.Project
	if err := json.Unmarshal(data, &proj); err != nil {
		return model.Project{}, fmt.Errorf("failed to parse project file: %w", err)
	}
	if proj.Carpets == nil {
		proj.Carpets = []model.Carpet{}
	}
	if proj.Inventory == nil {
		proj.Inventory = []model.SheetType{}
	}
	return proj, nil
}
