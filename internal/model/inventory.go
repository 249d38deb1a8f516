package model

import "github.com/google/uuid"

// KnifeProfile represents a reusable cutting knife configuration.
type KnifeProfile struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	KnifeOffset float64 `json:"knife_offset"` // Half blade width in mm
	FeedRate    float64 `json:"feed_rate"`
	PlungeRate  float64 `json:"plunge_rate"`
	SafeZ       float64 `json:"safe_z"`
	CutDepth    float64 `json:"cut_depth"`
	PassDepth   float64 `json:"pass_depth"`
}

// NewKnifeProfile creates a new KnifeProfile with a generated ID.
func NewKnifeProfile(name string, offset, feedRate, plungeRate, safeZ, cutDepth, passDepth float64) KnifeProfile {
	return KnifeProfile{
		ID:          uuid.New().String()[:8],
		Name:        name,
		KnifeOffset: offset,
		FeedRate:    feedRate,
		PlungeRate:  plungeRate,
		SafeZ:       safeZ,
		CutDepth:    cutDepth,
		PassDepth:   passDepth,
	}
}

// ApplyToSettings copies this knife profile's parameters into the given NestSettings.
func (kp KnifeProfile) ApplyToSettings(s *NestSettings) {
	s.KnifeOffset = kp.KnifeOffset
	s.FeedRate = kp.FeedRate
	s.PlungeRate = kp.PlungeRate
	s.SafeZ = kp.SafeZ
	s.CutDepth = kp.CutDepth
	s.PassDepth = kp.PassDepth
}

// SheetPreset represents a reusable stock sheet definition. Dimensions are
// in cm as the material is sold.
type SheetPreset struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Width  float64 `json:"width"`  // cm
	Height float64 `json:"height"` // cm
	Color  string  `json:"color"`
	Price  float64 `json:"price"` // Per sheet, in workshop currency
}

// NewSheetPreset creates a new SheetPreset with a generated ID.
func NewSheetPreset(name string, width, height float64, color string, price float64) SheetPreset {
	return SheetPreset{
		ID:     uuid.New().String()[:8],
		Name:   name,
		Width:  width,
		Height: height,
		Color:  color,
		Price:  price,
	}
}

// ToSheetType converts a SheetPreset into an allocatable SheetType with the
// given sheet count.
func (sp SheetPreset) ToSheetType(count int) SheetType {
	return NewSheetType(sp.Name, sp.Width, sp.Height, sp.Color, count)
}

// Inventory holds the workshop's saved knife profiles and sheet presets.
type Inventory struct {
	Knives []KnifeProfile `json:"knives"`
	Sheets []SheetPreset  `json:"sheets"`
}

// DefaultInventory returns an inventory populated with common EVA stock.
func DefaultInventory() Inventory {
	return Inventory{
		Knives: []KnifeProfile{
			NewKnifeProfile("Drag Knife 0.9mm", 0.45, 3000, 800, 5.0, 10.0, 5.0),
			NewKnifeProfile("Oscillating Knife 1.5mm", 0.75, 5000, 1000, 5.0, 10.0, 10.0),
			NewKnifeProfile("Drag Knife 0.6mm (thin EVA)", 0.3, 3500, 800, 5.0, 6.0, 6.0),
		},
		Sheets: []SheetPreset{
			NewSheetPreset("EVA 140x200 black", 140, 200, "black", 1450),
			NewSheetPreset("EVA 140x200 grey", 140, 200, "grey", 1450),
			NewSheetPreset("EVA 140x200 dark grey", 140, 200, "dark grey", 1450),
			NewSheetPreset("EVA 130x140 black", 130, 140, "black", 980),
			NewSheetPreset("EVA 130x140 grey", 130, 140, "grey", 980),
			NewSheetPreset("EVA 100x150 brown", 100, 150, "brown", 820),
		},
	}
}

// FindKnifeByID returns a pointer to the knife with the given ID, or nil.
func (inv *Inventory) FindKnifeByID(id string) *KnifeProfile {
	for i := range inv.Knives {
		if inv.Knives[i].ID == id {
			return &inv.Knives[i]
		}
	}
	return nil
}

// FindSheetByID returns a pointer to the sheet preset with the given ID, or nil.
func (inv *Inventory) FindSheetByID(id string) *SheetPreset {
	for i := range inv.Sheets {
		if inv.Sheets[i].ID == id {
			return &inv.Sheets[i]
		}
	}
	return nil
}

// KnifeNames returns the knife profile names for menu listings.
func (inv *Inventory) KnifeNames() []string {
	names := make([]string, len(inv.Knives))
	for i, k := range inv.Knives {
		names[i] = k.Name
	}
	return names
}

// SheetNames returns the sheet preset names for menu listings.
func (inv *Inventory) SheetNames() []string {
	names := make([]string, len(inv.Sheets))
	for i, s := range inv.Sheets {
		names[i] = s.Name
	}
	return names
}

// FindKnifeByName returns a pointer to the first knife with the given name, or nil.
func (inv *Inventory) FindKnifeByName(name string) *KnifeProfile {
	for i := range inv.Knives {
		if inv.Knives[i].Name == name {
			return &inv.Knives[i]
		}
	}
	return nil
}

// FindSheetByName returns a pointer to the first sheet preset with the given name, or nil.
func (inv *Inventory) FindSheetByName(name string) *SheetPreset {
	for i := range inv.Sheets {
		if inv.Sheets[i].Name == name {
			return &inv.Sheets[i]
		}
	}
	return nil
}
