package model

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// Priority ranks a carpet within an order.
type Priority int

const (
	PriorityMandatory Priority = 1 // Must be placed; drives sheet consumption
	PriorityFiller    Priority = 2 // Placed only into leftover space on open sheets
)

func (p Priority) String() string {
	if p == PriorityFiller {
		return "Filler"
	}
	return "Mandatory"
}

// Point2D represents a 2D coordinate in mm.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon represents a closed simple outline as a sequence of 2D points.
// The ring is implicitly closed: the last point connects back to the first.
type Polygon []Point2D

// BoundingBox returns the min and max corners of the polygon.
func (p Polygon) BoundingBox() (min, max Point2D) {
	if len(p) == 0 {
		return Point2D{}, Point2D{}
	}
	min = Point2D{X: p[0].X, Y: p[0].Y}
	max = Point2D{X: p[0].X, Y: p[0].Y}
	for _, pt := range p[1:] {
		if pt.X < min.X {
			min.X = pt.X
		}
		if pt.Y < min.Y {
			min.Y = pt.Y
		}
		if pt.X > max.X {
			max.X = pt.X
		}
		if pt.Y > max.Y {
			max.Y = pt.Y
		}
	}
	return min, max
}

// Size returns the bounding box width and height.
func (p Polygon) Size() (w, h float64) {
	min, max := p.BoundingBox()
	return max.X - min.X, max.Y - min.Y
}

// Translate shifts all points by dx, dy.
func (p Polygon) Translate(dx, dy float64) Polygon {
	result := make(Polygon, len(p))
	for i, pt := range p {
		result[i] = Point2D{X: pt.X + dx, Y: pt.Y + dy}
	}
	return result
}

// Area returns the enclosed area via the shoelace formula.
func (p Polygon) Area() float64 {
	return math.Abs(p.signedArea())
}

func (p Polygon) signedArea() float64 {
	if len(p) < 3 {
		return 0
	}
	var sum float64
	for i := range p {
		j := (i + 1) % len(p)
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return sum / 2
}

// Perimeter returns the total edge length of the closed ring.
func (p Polygon) Perimeter() float64 {
	if len(p) < 2 {
		return 0
	}
	var total float64
	for i := range p {
		j := (i + 1) % len(p)
		dx := p[j].X - p[i].X
		dy := p[j].Y - p[i].Y
		total += math.Sqrt(dx*dx + dy*dy)
	}
	return total
}

// Centroid returns the area centroid of the ring. Degenerate rings
// (near-zero area) fall back to the bounding box center.
func (p Polygon) Centroid() Point2D {
	a := p.signedArea()
	if math.Abs(a) < 1e-9 {
		min, max := p.BoundingBox()
		return Point2D{X: (min.X + max.X) / 2, Y: (min.Y + max.Y) / 2}
	}
	var cx, cy float64
	for i := range p {
		j := (i + 1) % len(p)
		cross := p[i].X*p[j].Y - p[j].X*p[i].Y
		cx += (p[i].X + p[j].X) * cross
		cy += (p[i].Y + p[j].Y) * cross
	}
	return Point2D{X: cx / (6 * a), Y: cy / (6 * a)}
}

// Clone returns an independent copy of the ring.
func (p Polygon) Clone() Polygon {
	result := make(Polygon, len(p))
	copy(result, p)
	return result
}

// Carpet represents one mat to be cut. Carpets are immutable inputs:
// placement never modifies them, it produces PlacedCarpet records instead.
type Carpet struct {
	ID       string   `json:"id"`       // Stable identity; guards against duplicate placement
	Filename string   `json:"filename"` // Source DXF file, used in reports and labels
	Color    string   `json:"color"`    // Must match a sheet's color to be eligible
	OrderID  string   `json:"order_id"` // Groups carpets scheduled together
	Priority Priority `json:"priority"`
	Polygon  Polygon  `json:"polygon"` // mm, normalized so the bbox min corner is near (0,0)
}

func NewCarpet(polygon Polygon, filename, color, orderID string, priority Priority) Carpet {
	return Carpet{
		ID:       uuid.New().String()[:8],
		Filename: filename,
		Color:    color,
		OrderID:  orderID,
		Priority: priority,
		Polygon:  polygon,
	}
}

// PlacedCarpet is a carpet with its realized transform on a sheet.
type PlacedCarpet struct {
	Carpet  Carpet  `json:"carpet"`
	Polygon Polygon `json:"polygon"`  // Transformed outline in sheet coordinates (mm)
	XOffset float64 `json:"x_offset"` // Translation applied after rotation (mm)
	YOffset float64 `json:"y_offset"` // mm
	Angle   float64 `json:"angle"`    // Rotation about the carpet centroid (degrees)
}

// SheetType describes a class of stock sheets in inventory.
// Width/Height are in cm as stocked; placement works in mm.
type SheetType struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`  // cm
	Height float64 `json:"height"` // cm
	Color  string  `json:"color"`
	Count  int     `json:"count"` // Total sheets available
	Used   int     `json:"used"`  // Sheets consumed so far
}

func NewSheetType(name string, w, h float64, color string, count int) SheetType {
	return SheetType{
		Name:   name,
		Width:  w,
		Height: h,
		Color:  color,
		Count:  count,
	}
}

// Remaining returns how many sheets of this type are still available.
func (s SheetType) Remaining() int {
	return s.Count - s.Used
}

// SizeMM returns the sheet dimensions in mm, matching polygon units.
func (s SheetType) SizeMM() (w, h float64) {
	return s.Width * 10, s.Height * 10
}

// PlacedSheet is one consumed sheet instance with its placed carpets.
type PlacedSheet struct {
	SheetNumber int            `json:"sheet_number"` // Global, monotonic, assigned when the sheet is opened
	TypeName    string         `json:"sheet_type"`
	Width       float64        `json:"width"`  // mm
	Height      float64        `json:"height"` // mm
	Color       string         `json:"color"`
	Placed      []PlacedCarpet `json:"placed"`
}

// UsedArea returns the total area covered by placed carpets.
func (ps PlacedSheet) UsedArea() float64 {
	var total float64
	for _, pc := range ps.Placed {
		total += pc.Polygon.Area()
	}
	return total
}

// TotalArea returns the sheet area.
func (ps PlacedSheet) TotalArea() float64 {
	return ps.Width * ps.Height
}

// UsagePercent returns the material usage percentage.
func (ps PlacedSheet) UsagePercent() float64 {
	ta := ps.TotalArea()
	if ta == 0 {
		return 0
	}
	return ps.UsedArea() / ta * 100.0
}

// Orders returns the sorted set of order IDs present on the sheet.
func (ps PlacedSheet) Orders() []string {
	seen := map[string]bool{}
	var orders []string
	for _, pc := range ps.Placed {
		if !seen[pc.Carpet.OrderID] {
			seen[pc.Carpet.OrderID] = true
			orders = append(orders, pc.Carpet.OrderID)
		}
	}
	sort.Strings(orders)
	return orders
}

// OrderingStrategy selects how carpets are sequenced before first-fit placement.
type OrderingStrategy string

const (
	OrderingAsGiven  OrderingStrategy = "as-given"  // Preserve caller order (reproducible baseline)
	OrderingAreaDesc OrderingStrategy = "area-desc" // Largest carpets first
	OrderingGenetic  OrderingStrategy = "genetic"   // Permutation search (slower, often fewer sheets)
)

// NestSettings holds nesting and cutter configuration.
type NestSettings struct {
	// Nesting settings
	MinGap            float64          `json:"min_gap"`              // Clearance between carpets in mm
	MaxSheetsPerOrder int              `json:"max_sheets_per_order"` // Span limit per order; 0 = unlimited
	Rotations         []float64        `json:"rotations"`            // Trial angles in degrees, in trial order
	Ordering          OrderingStrategy `json:"ordering"`
	ConsolidateBelow  float64          `json:"consolidate_below"` // Usage %% under which a sheet is a migration donor

	// Cutter / program settings
	KnifeOffset   float64 `json:"knife_offset"`   // Outward path offset in mm (half blade width)
	FeedRate      float64 `json:"feed_rate"`      // Cutting feed mm/min
	PlungeRate    float64 `json:"plunge_rate"`    // Knife plunge feed mm/min
	SafeZ         float64 `json:"safe_z"`         // Retract height mm
	CutDepth      float64 `json:"cut_depth"`      // Material thickness mm
	PassDepth     float64 `json:"pass_depth"`     // Depth per pass mm
	CutterProfile string  `json:"cutter_profile"` // Post-processor profile name
}

func DefaultSettings() NestSettings {
	return NestSettings{
		MinGap:            2.0,
		MaxSheetsPerOrder: 0,
		Rotations:         []float64{0, 90, 180, 270},
		Ordering:          OrderingAsGiven,
		ConsolidateBelow:  50.0,
		KnifeOffset:       0.45,
		FeedRate:          3000.0,
		PlungeRate:        800.0,
		SafeZ:             5.0,
		CutDepth:          10.0,
		PassDepth:         5.0,
		CutterProfile:     "Generic",
	}
}

// NestResult holds the full allocation outcome.
type NestResult struct {
	Sheets   []PlacedSheet `json:"sheets"`
	Unplaced []Carpet      `json:"unplaced"`
}

// TotalUsage returns the overall material usage percentage across all sheets.
func (nr NestResult) TotalUsage() float64 {
	var used, total float64
	for _, s := range nr.Sheets {
		used += s.UsedArea()
		total += s.TotalArea()
	}
	if total == 0 {
		return 0
	}
	return used / total * 100.0
}

// PlacedCount returns the number of carpets placed across all sheets.
func (nr NestResult) PlacedCount() int {
	n := 0
	for _, s := range nr.Sheets {
		n += len(s.Placed)
	}
	return n
}

// Project ties everything together for save/load.
type Project struct {
	Name      string       `json:"name"`
	Carpets   []Carpet     `json:"carpets"`
	Inventory []SheetType  `json:"inventory"`
	Settings  NestSettings `json:"settings"`
	Result    *NestResult  `json:"result,omitempty"`
}

func NewProject() Project {
	return Project{
		Name:      "Untitled",
		Carpets:   []Carpet{},
		Inventory: []SheetType{},
		Settings:  DefaultSettings(),
	}
}
