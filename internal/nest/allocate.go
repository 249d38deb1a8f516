package nest

import (
	"fmt"

	"github.com/piwi3910/CarpetNest/internal/model"
)

// orderSpan tracks the window of sheet numbers an order occupies.
type orderSpan struct {
	min, max int
}

// spanAllows reports whether adding sheet num to the order's window keeps
// the span (max - min + 1) within the limit. A limit of zero or below
// means unlimited.
func spanAllows(sp orderSpan, num, limit int) bool {
	if limit <= 0 {
		return true
	}
	lo, hi := sp.min, sp.max
	if num < lo {
		lo = num
	}
	if num > hi {
		hi = num
	}
	return hi-lo+1 <= limit
}

func recordSpan(spans map[string]orderSpan, orderID string, num int) {
	sp, ok := spans[orderID]
	if !ok {
		spans[orderID] = orderSpan{min: num, max: num}
		return
	}
	if num < sp.min {
		sp.min = num
	}
	if num > sp.max {
		sp.max = num
	}
	spans[orderID] = sp
}

// Allocate distributes carpets across the sheet inventory and then runs
// the consolidation pass. Mandatory carpets are processed to completion
// first; filler carpets afterwards go only into residual space of sheets
// already open. Inventory Used counters are mutated through the passed
// slice.
func (n *Nester) Allocate(carpets []model.Carpet, inventory []model.SheetType) model.NestResult {
	result := n.allocate(carpets, inventory)
	before := len(result.Sheets)
	result.Sheets = n.Consolidate(result.Sheets, inventory)
	if closed := before - len(result.Sheets); closed > 0 {
		n.report(100, fmt.Sprintf("consolidation closed %d sheets", closed))
	}
	n.report(100, "nesting complete")
	return result
}

// allocate runs the allocation loop without consolidation. The split
// exists so ordering searches can evaluate candidate sequences cheaply.
func (n *Nester) allocate(carpets []model.Carpet, inventory []model.SheetType) model.NestResult {
	var mandatory, filler []model.Carpet
	for _, c := range carpets {
		if c.Priority == model.PriorityFiller {
			filler = append(filler, c)
		} else {
			mandatory = append(mandatory, c)
		}
	}

	total := len(carpets)
	limit := n.Settings.MaxSheetsPerOrder
	spans := make(map[string]orderSpan)
	nextNumber := 1

	// The placer runs quiet here; the allocator reports its own milestones
	// against the full carpet count instead of per-sheet fractions.
	quiet := &Nester{Settings: n.Settings}

	var sheets []model.PlacedSheet
	var unplaced []model.Carpet

	resolved := func() int {
		count := len(unplaced)
		for _, s := range sheets {
			count += len(s.Placed)
		}
		return count
	}
	percent := func() float64 {
		if total == 0 {
			return 100
		}
		return float64(resolved()) / float64(total) * 100
	}

	pending := append([]model.Carpet(nil), mandatory...)
	for len(pending) > 0 {
		front := pending[0]

		// Sheet numbers only grow, so once an order's span cannot admit
		// the next number it never recovers; the carpet is final.
		if sp, ok := spans[front.OrderID]; ok && !spanAllows(sp, nextNumber, limit) {
			unplaced = append(unplaced, front)
			pending = pending[1:]
			n.report(percent(), fmt.Sprintf("sheet limit reached for order %s", front.OrderID))
			continue
		}

		placedAny := false
		for ti := range inventory {
			t := &inventory[ti]
			if t.Color != front.Color || t.Remaining() <= 0 {
				continue
			}
			w, h := t.SizeMM()
			num := nextNumber
			eligible := eligibleForSheet(pending, front.Color, num, spans, limit)

			t.Used++
			nextNumber++
			placed, _ := quiet.placeWithObstacles(eligible, w, h, nil)
			if len(placed) == 0 {
				// Nothing landed on this type. Release the sheet so the
				// numbering stays contiguous and used stays honest.
				t.Used--
				nextNumber--
				continue
			}

			sheets = append(sheets, model.PlacedSheet{
				SheetNumber: num,
				TypeName:    t.Name,
				Width:       w,
				Height:      h,
				Color:       t.Color,
				Placed:      placed,
			})
			for _, pc := range placed {
				recordSpan(spans, pc.Carpet.OrderID, num)
			}
			pending = withoutPlaced(pending, placed)
			placedAny = true
			n.report(percent(), fmt.Sprintf("sheet %d (%s): placed %d carpets", num, t.Name, len(placed)))
			break
		}
		if placedAny {
			continue
		}

		if !colorAvailable(inventory, front.Color) {
			// The color is out of stock; every pending carpet of that
			// color is unplaceable.
			pending, unplaced = dropColor(pending, front.Color, unplaced)
			n.report(percent(), fmt.Sprintf("no %s sheets left", front.Color))
		} else {
			// Sheets of the color remain but none can host this carpet.
			unplaced = append(unplaced, front)
			pending = pending[1:]
			n.report(percent(), fmt.Sprintf("no fit for %s on any %s sheet", front.Filename, front.Color))
		}
	}

	// Filler carpets use leftover space on sheets already open. They never
	// open a sheet, so they cannot grow inventory consumption.
	for _, c := range filler {
		var landed bool
		for si := range sheets {
			s := &sheets[si]
			if s.Color != c.Color {
				continue
			}
			if sp, ok := spans[c.OrderID]; ok && !spanAllows(sp, s.SheetNumber, limit) {
				continue
			}
			placed, _ := quiet.placeWithObstacles([]model.Carpet{c}, s.Width, s.Height, s.Placed)
			if len(placed) == 1 {
				s.Placed = append(s.Placed, placed[0])
				recordSpan(spans, c.OrderID, s.SheetNumber)
				landed = true
				break
			}
		}
		if landed {
			n.report(percent(), fmt.Sprintf("filler %s placed", c.Filename))
		} else {
			unplaced = append(unplaced, c)
			n.report(percent(), fmt.Sprintf("filler %s left out", c.Filename))
		}
	}

	return model.NestResult{Sheets: sheets, Unplaced: unplaced}
}

// eligibleForSheet filters pending carpets down to those allowed on sheet
// num: color must match and the order span must stay within the limit.
func eligibleForSheet(pending []model.Carpet, color string, num int, spans map[string]orderSpan, limit int) []model.Carpet {
	var eligible []model.Carpet
	for _, c := range pending {
		if c.Color != color {
			continue
		}
		if sp, ok := spans[c.OrderID]; ok && !spanAllows(sp, num, limit) {
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible
}

// withoutPlaced removes placed carpets from pending, preserving order.
func withoutPlaced(pending []model.Carpet, placed []model.PlacedCarpet) []model.Carpet {
	placedIDs := make(map[string]bool, len(placed))
	for _, pc := range placed {
		placedIDs[pc.Carpet.ID] = true
	}
	var rest []model.Carpet
	for _, c := range pending {
		if !placedIDs[c.ID] {
			rest = append(rest, c)
		}
	}
	return rest
}

// dropColor moves every pending carpet of the color to unplaced.
func dropColor(pending []model.Carpet, color string, unplaced []model.Carpet) ([]model.Carpet, []model.Carpet) {
	var rest []model.Carpet
	for _, c := range pending {
		if c.Color == color {
			unplaced = append(unplaced, c)
		} else {
			rest = append(rest, c)
		}
	}
	return rest, unplaced
}

func colorAvailable(inventory []model.SheetType, color string) bool {
	for _, t := range inventory {
		if t.Color == color && t.Remaining() > 0 {
			return true
		}
	}
	return false
}
