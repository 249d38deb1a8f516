package project

import (
	"errors"
	"os"

	"github.com/piwi3910/CarpetNest/internal/model"
)

// DefaultProfilesPath returns ~/.carpetnest/profiles.json, the store for
// custom cutter profiles.
func DefaultProfilesPath() (string, error) {
	return defaultPath("profiles.json")
}

// SaveCustomProfiles saves custom cutter profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []model.CutterProfile) error {
	return writeJSON(path, profiles)
}

// LoadCustomProfiles loads custom cutter profiles from a JSON file.
// Returns an empty slice if the file does not exist. Loaded profiles are
// never marked built-in, whatever the file claims.
func LoadCustomProfiles(path string) ([]model.CutterProfile, error) {
	var profiles []model.CutterProfile
	if err := readJSON(path, &profiles); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.CutterProfile{}, nil
		}
		return nil, err
	}
	for i := range profiles {
		profiles[i].IsBuiltIn = false
	}
	return profiles, nil
}

// SaveCustomProfilesToDefault saves custom profiles to the default path.
func SaveCustomProfilesToDefault(profiles []model.CutterProfile) error {
	path, err := DefaultProfilesPath()
	if err != nil {
		return err
	}
	return SaveCustomProfiles(path, profiles)
}

// LoadCustomProfilesFromDefault loads custom profiles from the default path.
func LoadCustomProfilesFromDefault() ([]model.CutterProfile, error) {
	path, err := DefaultProfilesPath()
	if err != nil {
		return nil, err
	}
	return LoadCustomProfiles(path)
}

// ExportProfile writes a single profile to a JSON file for sharing.
func ExportProfile(path string, profile model.CutterProfile) error {
	profile.IsBuiltIn = false
	return writeJSON(path, profile)
}

// ImportProfile reads a single shared profile from a JSON file.
func ImportProfile(path string) (model.CutterProfile, error) {
	var profile model.CutterProfile
	if err := readJSON(path, &profile); err != nil {
		return model.CutterProfile{}, err
	}
	profile.IsBuiltIn = false
	if profile.Name == "" {
		return model.CutterProfile{}, errors.New("imported profile has no name")
	}
	return profile, nil
}
