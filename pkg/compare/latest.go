package compare

import (
	"github.com/sahkovertailu/sahkovertailu/pkg/types"
)

// LatestComponents keeps one component per recognised type: the most recently
// priced one with a non-zero price. When two rows of a type share PricedAt the
// later row wins. The result is in canonical type order, so the pricing
// engine's last-one-wins rule no longer depends on how rows were stored.
func LatestComponents(components []types.PriceComponent) []types.PriceComponent {
	latest := make(map[types.ComponentType]types.PriceComponent, len(types.ComponentTypes))
	for _, c := range components {
		if !c.ComponentType.Known() || c.Price.IsZero() {
			continue
		}
		if prev, ok := latest[c.ComponentType]; ok && c.PricedAt.Before(prev.PricedAt) {
			continue
		}
		latest[c.ComponentType] = c
	}

	out := make([]types.PriceComponent, 0, len(latest))
	for _, t := range types.ComponentTypes {
		if c, ok := latest[t]; ok {
			out = append(out, c)
		}
	}
	return out
}
