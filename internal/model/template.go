package model

import (
	"time"

	"github.com/google/uuid"
)

// NestTemplate represents a reusable nesting configuration for a recurring
// car model: its carpet set, sheet inventory, and settings, but never
// nest results.
type NestTemplate struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"` // Usually the car model, e.g. "Lada Vesta SW"
	Description string       `json:"description"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
	Carpets     []Carpet     `json:"carpets"`
	Inventory   []SheetType  `json:"inventory"`
	Settings    NestSettings `json:"settings"`
}

// NewNestTemplate creates a new template from the given project data.
// It copies carpets, inventory, and settings but intentionally excludes results.
func NewNestTemplate(name, description string, carpets []Carpet, inventory []SheetType, settings NestSettings) NestTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	return NestTemplate{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Carpets:     copyCarpets(carpets),
		Inventory:   copyInventory(inventory),
		Settings:    settings,
	}
}

// ToProject creates a new Project from this template. Carpets get fresh IDs
// and order assignment so they are independent of the template; inventory
// usage counters reset.
func (t NestTemplate) ToProject(projectName, orderID string) Project {
	carpets := make([]Carpet, len(t.Carpets))
	for i, c := range t.Carpets {
		carpets[i] = NewCarpet(c.Polygon.Clone(), c.Filename, c.Color, orderID, c.Priority)
	}

	inventory := make([]SheetType, len(t.Inventory))
	for i, s := range t.Inventory {
		inventory[i] = NewSheetType(s.Name, s.Width, s.Height, s.Color, s.Count)
	}

	return Project{
		Name:      projectName,
		Carpets:   carpets,
		Inventory: inventory,
		Settings:  t.Settings,
	}
}

// TemplateStore holds a collection of nest templates.
type TemplateStore struct {
	Templates []NestTemplate `json:"templates"`
}

// NewTemplateStore creates an empty template store.
func NewTemplateStore() TemplateStore {
	return TemplateStore{
		Templates: []NestTemplate{},
	}
}

// Add adds a template to the store.
func (ts *TemplateStore) Add(t NestTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the template with the given ID, or nil.
func (ts *TemplateStore) FindByID(id string) *NestTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].ID == id {
			return &ts.Templates[i]
		}
	}
	return nil
}

// Names returns the template names for menu listings.
func (ts *TemplateStore) Names() []string {
	names := make([]string, len(ts.Templates))
	for i, t := range ts.Templates {
		names[i] = t.Name
	}
	return names
}

// FindByName returns a pointer to the first template with the given name, or nil.
func (ts *TemplateStore) FindByName(name string) *NestTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}

// Upsert adds tpl, replacing any existing template with the same name.
// A replaced template keeps its original creation time.
func (ts *TemplateStore) Upsert(tpl NestTemplate) {
	if existing := ts.FindByName(tpl.Name); existing != nil {
		tpl.CreatedAt = existing.CreatedAt
		ts.Remove(existing.ID)
	}
	ts.Add(tpl)
}

// copyCarpets creates an independent copy of a carpet slice.
func copyCarpets(carpets []Carpet) []Carpet {
	if carpets == nil {
		return []Carpet{}
	}
	cp := make([]Carpet, len(carpets))
	for i, c := range carpets {
		cp[i] = c
		cp[i].Polygon = c.Polygon.Clone()
	}
	return cp
}

// copyInventory creates an independent copy of a sheet type slice.
func copyInventory(inventory []SheetType) []SheetType {
	if inventory == nil {
		return []SheetType{}
	}
	cp := make([]SheetType, len(inventory))
	copy(cp, inventory)
	return cp
}
