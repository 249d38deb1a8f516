// Package nest implements the carpet placement and allocation engine. It
// packs simple polygons onto a limited inventory of rectangular EVA
// sheets, matching colors, keeping each order within a bounded span of
// sheet numbers, and filling residual space with low priority carpets.
//
// Placement is greedy first-fit: carpets are processed in the configured
// order and the first collision-free candidate position wins. That makes
// results deterministic for identical input order, which the tests rely
// on, at the cost of global optimality. The ordering is injectable via
// NestSettings.Ordering so callers can trade speed for tighter packing.
package nest

import (
	"github.com/piwi3910/CarpetNest/internal/model"
)

// ProgressFunc receives placement progress. It is invoked synchronously
// after each carpet is resolved and must return quickly; it cannot alter
// the outcome of the run.
type ProgressFunc func(percent float64, status string)

// Nester runs the nesting pipeline.
type Nester struct {
	Settings model.NestSettings
	Progress ProgressFunc
}

func New(settings model.NestSettings) *Nester {
	return &Nester{Settings: settings}
}

// Nest runs the full pipeline: scale normalization against the largest
// available sheet, carpet ordering, inventory allocation and the
// consolidation pass. Inventory Used counters are updated through the
// passed slice.
func (n *Nester) Nest(carpets []model.Carpet, inventory []model.SheetType) model.NestResult {
	if w, h, ok := referenceSheet(inventory); ok {
		carpets = NormalizeScale(carpets, w, h)
	}
	carpets = n.orderedCarpets(carpets, inventory)
	return n.Allocate(carpets, inventory)
}

// referenceSheet returns the mm dimensions of the largest sheet type that
// still has stock, used as the target for scale normalization.
func referenceSheet(inventory []model.SheetType) (w, h float64, ok bool) {
	var bestArea float64
	for _, t := range inventory {
		if t.Remaining() <= 0 {
			continue
		}
		tw, th := t.SizeMM()
		if tw*th > bestArea {
			bestArea = tw * th
			w, h = tw, th
			ok = true
		}
	}
	return w, h, ok
}

func (n *Nester) report(percent float64, status string) {
	if n.Progress == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	n.Progress(percent, status)
}
