package model

import "fmt"

// CutterProfile defines a post-processor configuration for different
// knife-table controllers.
type CutterProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Units       string `json:"units"` // "mm" or "inches"

	StartCode []string `json:"start_code"` // Commands at start of file
	EndCode   []string `json:"end_code"`   // Commands at end of file

	RapidMove string `json:"rapid_move"` // G0 or equivalent
	FeedMove  string `json:"feed_move"`  // G1 or equivalent

	CommentPrefix string `json:"comment_prefix"` // Comment start (e.g., ";")
	CommentSuffix string `json:"comment_suffix"` // Comment end (e.g., ")" for Fanuc)

	DecimalPlaces int  `json:"decimal_places"` // Coordinate precision
	IsBuiltIn     bool `json:"is_built_in"`    // Built-ins cannot be edited or removed
}

// Built-in cutter profiles. The Generic profile must stay last: GetProfile
// falls back to it.
var CutterProfiles = []CutterProfile{
	{
		Name:          "Grbl",
		Description:   "Grbl-driven knife tables (Arduino CNC shields)",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17"},
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		RapidMove:     "G0",
		FeedMove:      "G1",
		CommentPrefix: ";",
		CommentSuffix: "",
		DecimalPlaces: 3,
		IsBuiltIn:     true,
	},
	{
		Name:          "Mach3",
		Description:   "Mach3 CNC control software",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		EndCode:       []string{"G0 Z[SafeZ]", "G28 X0 Y0", "M30"},
		RapidMove:     "G0",
		FeedMove:      "G1",
		CommentPrefix: ";",
		CommentSuffix: "",
		DecimalPlaces: 4,
		IsBuiltIn:     true,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC (formerly EMC2)",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		RapidMove:     "G0",
		FeedMove:      "G1",
		CommentPrefix: ";",
		CommentSuffix: "",
		DecimalPlaces: 4,
		IsBuiltIn:     true,
	},
	{
		Name:          "Generic",
		Description:   "Generic standard GCode",
		Units:         "mm",
		StartCode:     []string{"G90", "G21"},
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		RapidMove:     "G0",
		FeedMove:      "G1",
		CommentPrefix: ";",
		CommentSuffix: "",
		DecimalPlaces: 3,
		IsBuiltIn:     true,
	},
}

// CustomProfiles holds user-defined cutter profiles loaded from disk.
var CustomProfiles []CutterProfile

// AllProfiles returns built-in profiles followed by custom ones.
func AllProfiles() []CutterProfile {
	all := make([]CutterProfile, 0, len(CutterProfiles)+len(CustomProfiles))
	all = append(all, CutterProfiles...)
	all = append(all, CustomProfiles...)
	return all
}

// GetProfile returns a profile by name, searching built-ins then custom
// profiles, or the Generic profile if not found.
func GetProfile(name string) CutterProfile {
	for _, p := range AllProfiles() {
		if p.Name == name {
			return p
		}
	}
	return CutterProfiles[len(CutterProfiles)-1]
}

// GetProfileNames returns the names of all available profiles.
func GetProfileNames() []string {
	var names []string
	for _, p := range AllProfiles() {
		names = append(names, p.Name)
	}
	return names
}

// NewCustomProfile creates a custom profile inheriting the Generic defaults.
func NewCustomProfile(name string) CutterProfile {
	p := CutterProfiles[len(CutterProfiles)-1]
	p.Name = name
	p.Description = ""
	p.IsBuiltIn = false
	return p
}

// AddCustomProfile adds or updates a custom profile. Names of built-in
// profiles are rejected.
func AddCustomProfile(p CutterProfile) error {
	for _, b := range CutterProfiles {
		if b.Name == p.Name {
			return fmt.Errorf("profile name %q is reserved by a built-in profile", p.Name)
		}
	}
	p.IsBuiltIn = false
	for i := range CustomProfiles {
		if CustomProfiles[i].Name == p.Name {
			CustomProfiles[i] = p
			return nil
		}
	}
	CustomProfiles = append(CustomProfiles, p)
	return nil
}

// RemoveCustomProfile removes a custom profile by name.
func RemoveCustomProfile(name string) error {
	for _, b := range CutterProfiles {
		if b.Name == name {
			return fmt.Errorf("cannot remove built-in profile %q", name)
		}
	}
	for i := range CustomProfiles {
		if CustomProfiles[i].Name == name {
			CustomProfiles = append(CustomProfiles[:i], CustomProfiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("custom profile %q not found", name)
}
