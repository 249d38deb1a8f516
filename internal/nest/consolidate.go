package nest

import (
	"sort"

	"github.com/piwi3910/CarpetNest/internal/model"
)

// Consolidate migrates carpets off sparsely used sheets into free space on
// fuller sheets of the same color, then drops sheets that end up empty and
// releases their inventory. The input snapshot is never modified; callers
// get a fresh sheet list. A carpet moves atomically: it leaves its source
// and joins exactly one destination in the same step, and a failed
// destination attempt leaves it where it was.
func (n *Nester) Consolidate(sheets []model.PlacedSheet, inventory []model.SheetType) []model.PlacedSheet {
	if len(sheets) < 2 {
		return sheets
	}
	out := cloneSheets(sheets)
	quiet := &Nester{Settings: n.Settings}
	limit := n.Settings.MaxSheetsPerOrder

	// Emptiest sheets first: they are the cheapest to clear completely.
	for _, di := range usageOrder(out, true) {
		donor := &out[di]
		if donor.UsagePercent() >= n.Settings.ConsolidateBelow {
			continue
		}
		carpets := append([]model.PlacedCarpet(nil), donor.Placed...)
		for _, pc := range carpets {
			for _, ri := range usageOrder(out, false) {
				if ri == di {
					continue
				}
				recv := &out[ri]
				// A move to an empty sheet can never reduce the count.
				if recv.Color != pc.Carpet.Color || len(recv.Placed) == 0 {
					continue
				}
				if !spanHoldsAfterMove(out, pc.Carpet, recv.SheetNumber, limit) {
					continue
				}
				placed, _ := quiet.placeWithObstacles([]model.Carpet{pc.Carpet}, recv.Width, recv.Height, recv.Placed)
				if len(placed) != 1 {
					continue
				}
				donor.Placed = removeByID(donor.Placed, pc.Carpet.ID)
				recv.Placed = append(recv.Placed, placed[0])
				break
			}
		}
	}

	var kept []model.PlacedSheet
	for _, s := range out {
		if len(s.Placed) == 0 {
			releaseSheet(inventory, s.TypeName)
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

// cloneSheets copies the sheet list with fresh placement slices so moves
// never touch the caller's snapshot. Polygon rings are shared; they are
// read-only to the consolidation pass.
func cloneSheets(sheets []model.PlacedSheet) []model.PlacedSheet {
	out := make([]model.PlacedSheet, len(sheets))
	copy(out, sheets)
	for i := range out {
		out[i].Placed = append([]model.PlacedCarpet(nil), sheets[i].Placed...)
	}
	return out
}

// usageOrder returns sheet indices sorted by usage, ascending for donor
// selection or descending for receiver selection. Ties keep sheet order
// so runs stay deterministic.
func usageOrder(sheets []model.PlacedSheet, ascending bool) []int {
	idx := make([]int, len(sheets))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ua := sheets[idx[a]].UsagePercent()
		ub := sheets[idx[b]].UsagePercent()
		if ascending {
			return ua < ub
		}
		return ua > ub
	})
	return idx
}

// spanHoldsAfterMove checks the order span that would result from moving
// the carpet onto sheet toNum: the remaining placements of the order plus
// the destination must still fit the limit.
func spanHoldsAfterMove(sheets []model.PlacedSheet, moved model.Carpet, toNum, limit int) bool {
	if limit <= 0 {
		return true
	}
	lo, hi := toNum, toNum
	for _, s := range sheets {
		for _, pc := range s.Placed {
			if pc.Carpet.OrderID != moved.OrderID || pc.Carpet.ID == moved.ID {
				continue
			}
			if s.SheetNumber < lo {
				lo = s.SheetNumber
			}
			if s.SheetNumber > hi {
				hi = s.SheetNumber
			}
		}
	}
	return hi-lo+1 <= limit
}

func removeByID(placed []model.PlacedCarpet, id string) []model.PlacedCarpet {
	var rest []model.PlacedCarpet
	for _, pc := range placed {
		if pc.Carpet.ID != id {
			rest = append(rest, pc)
		}
	}
	return rest
}

// releaseSheet gives one consumed sheet back to the first matching
// inventory type.
func releaseSheet(inventory []model.SheetType, typeName string) {
	for i := range inventory {
		if inventory[i].Name == typeName && inventory[i].Used > 0 {
			inventory[i].Used--
			return
		}
	}
}
