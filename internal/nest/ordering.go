package nest

import (
	"sort"

	"github.com/piwi3910/CarpetNest/internal/model"
)

// orderedCarpets sequences carpets for the placement loop. Unknown
// strategies fall back to the given order.
func (n *Nester) orderedCarpets(carpets []model.Carpet, inventory []model.SheetType) []model.Carpet {
	switch n.Settings.Ordering {
	case model.OrderingAreaDesc:
		out := append([]model.Carpet(nil), carpets...)
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Polygon.Area() > out[j].Polygon.Area()
		})
		return out
	case model.OrderingGenetic:
		return n.OrderGenetic(carpets, inventory)
	default:
		return carpets
	}
}
