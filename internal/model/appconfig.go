package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default nesting settings applied to new projects
	DefaultMinGap            float64 `json:"default_min_gap"`
	DefaultMaxSheetsPerOrder int     `json:"default_max_sheets_per_order"`
	DefaultConsolidateBelow  float64 `json:"default_consolidate_below"`
	DefaultKnifeOffset       float64 `json:"default_knife_offset"`
	DefaultFeedRate          float64 `json:"default_feed_rate"`
	DefaultPlungeRate        float64 `json:"default_plunge_rate"`
	DefaultSafeZ             float64 `json:"default_safe_z"`
	DefaultCutDepth          float64 `json:"default_cut_depth"`
	DefaultPassDepth         float64 `json:"default_pass_depth"`
	DefaultCutterProfile     string  `json:"default_cutter_profile"`
	DefaultSheetColor        string  `json:"default_sheet_color"` // Assumed when an order row has no color

	// Application preferences
	BindingWastePercent float64  `json:"binding_waste_percent"` // Extra binding tape allowance
	RecentOrders        []string `json:"recent_orders"`         // Recently loaded order files
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultMinGap:            defaults.MinGap,
		DefaultMaxSheetsPerOrder: defaults.MaxSheetsPerOrder,
		DefaultConsolidateBelow:  defaults.ConsolidateBelow,
		DefaultKnifeOffset:       defaults.KnifeOffset,
		DefaultFeedRate:          defaults.FeedRate,
		DefaultPlungeRate:        defaults.PlungeRate,
		DefaultSafeZ:             defaults.SafeZ,
		DefaultCutDepth:          defaults.CutDepth,
		DefaultPassDepth:         defaults.PassDepth,
		DefaultCutterProfile:     defaults.CutterProfile,
		DefaultSheetColor:        "grey",
		BindingWastePercent:      10.0,
		RecentOrders:             []string{},
	}
}

// ApplyToSettings copies the default values from AppConfig into a NestSettings
// struct. Used when starting a new nest so it inherits the saved defaults.
func (c AppConfig) ApplyToSettings(s *NestSettings) {
	s.MinGap = c.DefaultMinGap
	s.MaxSheetsPerOrder = c.DefaultMaxSheetsPerOrder
	s.ConsolidateBelow = c.DefaultConsolidateBelow
	s.KnifeOffset = c.DefaultKnifeOffset
	s.FeedRate = c.DefaultFeedRate
	s.PlungeRate = c.DefaultPlungeRate
	s.SafeZ = c.DefaultSafeZ
	s.CutDepth = c.DefaultCutDepth
	s.PassDepth = c.DefaultPassDepth
	s.CutterProfile = c.DefaultCutterProfile
}
