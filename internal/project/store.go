// Package project persists workshop data as JSON under ~/.carpetnest/:
// app config, sheet inventory, nest templates, custom cutter profiles,
// and saved projects.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// dirName is the per-user data directory under $HOME.
const dirName = ".carpetnest"

// defaultPath returns ~/.carpetnest/<file>.
func defaultPath(file string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName, file), nil
}

// writeJSON marshals v with indentation and writes it to path, creating
// missing parent directories.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// readJSON reads path into v. Missing files surface as os.ErrNotExist so
// callers can substitute their defaults.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
