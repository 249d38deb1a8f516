package project

import (
	"os"
	"path/filepath"

	"github.com/piwi3910/CarpetNest/internal/model"
)

// DefaultConfigDir returns the per-user configuration directory,
// ~/.carpetnest on every platform.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, dirName)
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
func SaveAppConfig(path string, config model.AppConfig) error {
	return writeJSON(path, config)
}

// LoadAppConfig reads an AppConfig from the given path. A missing file is
// not an error; first runs get the stock defaults.
func LoadAppConfig(path string) (model.AppConfig, error) {
	var config model.AppConfig
	if err := readJSON(path, &config); err != nil {
		if os.IsNotExist(err) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, err
	}
	if config.RecentOrders == nil {
		config.RecentOrders = []string{}
	}
	return config, nil
}
